package paxcol

import (
	"errors"
	"fmt"

	"github.com/hupe1980/paxcol/fault"
)

var (
	// ErrOutOfRange is returned for positions, offsets or sizes outside valid bounds.
	ErrOutOfRange = fault.ErrOutOfRange
	// ErrLogic is returned for invalid column kinds, formats and schemas.
	ErrLogic = fault.ErrLogic
	// ErrCompression is returned when a codec fails.
	ErrCompression = fault.ErrCompression
	// ErrUnsupportedCodec is returned for unknown or disabled codecs.
	ErrUnsupportedCodec = fault.ErrUnsupportedCodec
)

// ErrRowWidth indicates a row with the wrong number of values.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrRowWidth struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrRowWidth) Error() string {
	return fmt.Sprintf("row width mismatch: expected %d values, got %d", e.Expected, e.Actual)
}

func (e *ErrRowWidth) Unwrap() error { return e.cause }

// ErrColumn wraps a failure of one column with its schema position.
type ErrColumn struct {
	Index int
	Name  string
	cause error
}

func (e *ErrColumn) Error() string {
	return fmt.Sprintf("column %d (%s): %v", e.Index, e.Name, e.cause)
}

func (e *ErrColumn) Unwrap() error { return e.cause }

// translateError normalizes errors returned by the facade. Faults keep their
// marks so errors.Is against the sentinels above keeps working.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ErrColumn
	if errors.As(err, &ce) {
		return err
	}
	for _, sentinel := range []error{ErrOutOfRange, ErrLogic, ErrCompression, ErrUnsupportedCodec} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrLogic, err)
}
