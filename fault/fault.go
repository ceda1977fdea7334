package fault

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrOutOfRange marks a position, offset or length outside valid bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrLogic marks an invalid column kind and format combination or an
	// unsupported feature.
	ErrLogic = errors.New("logic error")

	// ErrCompression marks a codec-level failure.
	ErrCompression = errors.New("compression failed")

	// ErrUnsupportedCodec marks an unknown or disabled codec id.
	ErrUnsupportedCodec = errors.New("unsupported codec")
)

// OutOfRangef returns an error marked with ErrOutOfRange.
func OutOfRangef(format string, args ...any) error {
	return errors.WrapWithDepthf(1, ErrOutOfRange, format, args...)
}

// Logicf returns an error marked with ErrLogic.
func Logicf(format string, args ...any) error {
	return errors.WrapWithDepthf(1, ErrLogic, format, args...)
}

// UnsupportedCodecf returns an error marked with ErrUnsupportedCodec.
func UnsupportedCodecf(format string, args ...any) error {
	return errors.WrapWithDepthf(1, ErrUnsupportedCodec, format, args...)
}

// Compressionf wraps a codec failure and marks it with ErrCompression.
// cause may be nil when the codec only reported a bad length.
func Compressionf(cause error, format string, args ...any) error {
	if cause == nil {
		return errors.WrapWithDepthf(1, ErrCompression, format, args...)
	}
	return &marked{cause: errors.WrapWithDepthf(1, cause, format, args...), mark: ErrCompression}
}

// marked attaches a sentinel to an error chain while keeping its cause.
type marked struct {
	cause error
	mark  error
}

func (m *marked) Error() string        { return m.cause.Error() }
func (m *marked) Unwrap() error        { return m.cause }
func (m *marked) Is(target error) bool { return target == m.mark }

// Wrapf adds context to err, keeping its marks. It returns nil for a nil err.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.WrapWithDepthf(1, err, format, args...)
}

// Assertf panics with an assertion failure. It is reserved for API misuse
// and broken internal invariants, never for bad input data.
func Assertf(format string, args ...any) {
	panic(errors.AssertionFailedWithDepthf(1, format, args...))
}

// IsAssertion reports whether v, typically the value returned by recover,
// is an assertion failure raised by Assertf.
func IsAssertion(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	return errors.HasAssertionFailure(err)
}

// Is reports whether err matches target. It is a convenience re-export so
// callers do not need to import an errors package just to classify faults.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
