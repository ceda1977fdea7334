package column

import (
	"encoding/binary"
)

// Datum is an opaque value handle handed to the host engine. It is either
// NULL, a by-value word of up to eight bytes, or a by-reference byte slice.
type Datum struct {
	word  uint64
	ref   []byte
	size  uint8
	byRef bool
	null  bool
}

// NullDatum returns the NULL handle.
func NullDatum() Datum { return Datum{null: true} }

// WordDatum returns a by-value handle of the given byte size.
func WordDatum(w uint64, size int) Datum { return Datum{word: w, size: uint8(size)} }

// RefDatum returns a by-reference handle. The bytes are not copied.
func RefDatum(b []byte) Datum { return Datum{ref: b, byRef: true} }

func (d Datum) IsNull() bool  { return d.null }
func (d Datum) ByRef() bool   { return d.byRef }
func (d Datum) Word() uint64  { return d.word }
func (d Datum) Bytes() []byte { return d.ref }

// Converter translates between raw column bytes and Datum handles.
type Converter interface {
	BytesToValue(b []byte, byValue bool) Datum
	ValueToBytes(d Datum) []byte
}

// DefaultConverter stores values of at most eight bytes by value as a
// little-endian word and everything else by reference.
type DefaultConverter struct{}

func (DefaultConverter) BytesToValue(b []byte, byValue bool) Datum {
	if !byValue || len(b) > 8 {
		return RefDatum(b)
	}
	var buf [8]byte
	copy(buf[:], b)
	return WordDatum(binary.LittleEndian.Uint64(buf[:]), len(b))
}

func (DefaultConverter) ValueToBytes(d Datum) []byte {
	switch {
	case d.null:
		return nil
	case d.byRef:
		return d.ref
	default:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], d.word)
		return append([]byte(nil), buf[:d.size]...)
	}
}
