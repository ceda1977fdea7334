package column

import (
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/bitset"
)

// BitPackedColumn stores one-bit booleans, eight per byte.
type BitPackedColumn struct {
	base
	values *bitset.Bitmap8
	stream []byte
}

var _ Column = (*BitPackedColumn)(nil)

// NewBitPacked creates a writable bit-packed column. The kind follows the
// format.
func NewBitPacked(format Format, opts ...Option) (*BitPackedColumn, error) {
	o := applyOptions(opts)
	kind := o.kind
	if kind == 0 {
		kind = KindBitPacked
		if format == FormatVec {
			kind = KindVecBitPacked
		}
	}
	if err := checkKind(format, kind, KindBitPacked, KindVecBitPacked); err != nil {
		return nil, err
	}
	return &BitPackedColumn{
		base:   newBase(format, kind, o),
		values: bitset.New(o.capacity),
	}, nil
}

// OpenBitPacked builds a sealed, read-only bit-packed column.
func OpenBitPacked(format Format, s Streams, opts ...Option) (*BitPackedColumn, error) {
	c, err := NewBitPacked(format, append(opts, WithCapacity(0), WithEncoding(s.Encoding.Kind, s.Encoding.Level))...)
	if err != nil {
		return nil, err
	}
	if err := c.restore(s); err != nil {
		return nil, err
	}
	if want := bitset.BitsToBytes(c.positions()); len(s.Data) < want {
		return nil, fault.OutOfRangef("bit-packed data stream has %d bytes, want %d", len(s.Data), want)
	}
	c.values = bitset.FromBytes(s.Data, c.positions())
	c.stream = s.Stream
	if c.stream == nil {
		c.stream = c.values.Bytes()
	}
	if c.encoding.Encoded() {
		c.originLen = s.OriginLength
	}
	return c, nil
}

func (c *BitPackedColumn) TypeLength() int { return 1 }

// Append appends one boolean encoded as a single byte, zero meaning false.
func (c *BitPackedColumn) Append(v []byte) error {
	c.mustWritable("Append")
	if len(v) != 1 {
		return fault.Logicf("bit-packed column expects 1 byte, got %d", len(v))
	}
	c.values.Append(v[0] != 0)
	c.appendPresence(true)
	return nil
}

func (c *BitPackedColumn) AppendNull() error {
	c.mustWritable("AppendNull")
	if c.format == FormatVec {
		c.values.Append(false)
	}
	c.appendPresence(false)
	return nil
}

func (c *BitPackedColumn) AppendToast([]byte) error {
	c.mustWritable("AppendToast")
	return fault.Logicf("bit-packed column cannot hold toasted values")
}

func (c *BitPackedColumn) AppendExternalToast([]byte) (int, error) {
	c.mustWritable("AppendExternalToast")
	return 0, fault.Logicf("bit-packed column cannot hold toasted values")
}

func (c *BitPackedColumn) Seal() error {
	if c.sealed {
		return nil
	}
	raw := c.values.Bytes()
	stream, enc, err := encodeStream(c.registry, raw, c.encoding)
	if err != nil {
		return err
	}
	c.stream, c.encoding = stream, enc
	if enc.Encoded() {
		c.originLen = len(raw)
	}
	c.sealed = true
	return nil
}

func (c *BitPackedColumn) Buffer() []byte {
	c.mustSealed("Buffer")
	return c.stream
}

// BufferAt returns a one-byte slice holding 0 or 1. A vectorized null row
// yields a valid zero-length slice.
func (c *BitPackedColumn) BufferAt(pos int) ([]byte, error) {
	c.mustSealed("BufferAt")
	if err := c.checkPos(pos); err != nil {
		return nil, err
	}
	if c.format == FormatVec && c.IsNull(pos) {
		return []byte{}, nil
	}
	if c.values.Test(pos) {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// RangeBuffer returns the packed bytes covering [start, start+n). start
// must fall on a byte boundary.
func (c *BitPackedColumn) RangeBuffer(start, n int) ([]byte, error) {
	c.mustSealed("RangeBuffer")
	if err := c.checkRange(start, n); err != nil {
		return nil, err
	}
	if start%8 != 0 {
		return nil, fault.Logicf("bit-packed range start %d is not byte aligned", start)
	}
	raw := c.values.Bytes()
	return raw[start/8 : bitset.BitsToBytes(start+n)], nil
}

func (c *BitPackedColumn) Datum(pos int) (Datum, error) {
	v, err := c.BufferAt(pos)
	if err != nil {
		return Datum{}, err
	}
	if len(v) == 0 {
		return NullDatum(), nil
	}
	return c.toDatum(v, true), nil
}

func (c *BitPackedColumn) PhysicalSize() int {
	return len(c.values.Raw()) + c.metaSize()
}
