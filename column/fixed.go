package column

import (
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/mem"
)

// FixedColumn stores values of a fixed byte width.
//
// While unencoded every value occupies a slot of the type length rounded up
// to the type alignment; encoded columns use the bare type length.
type FixedColumn struct {
	base
	typeLen int
	slot    int
	data    []byte
	stream  []byte
}

var _ Column = (*FixedColumn)(nil)

// NewFixed creates a writable fixed-width column.
func NewFixed(format Format, typeLen int, opts ...Option) (*FixedColumn, error) {
	o := applyOptions(opts)
	if typeLen <= 0 {
		return nil, fault.Logicf("fixed column needs a positive type length, got %d", typeLen)
	}
	kind := o.kind
	if kind == 0 {
		kind = KindFixed
	}
	if err := checkKind(format, kind, KindFixed, KindVecDecimal); err != nil {
		return nil, err
	}

	c := &FixedColumn{
		base:    newBase(format, kind, o),
		typeLen: typeLen,
	}
	c.slot = c.slotWidth()
	c.data = make([]byte, 0, o.capacity*c.slot)
	return c, nil
}

// OpenFixed builds a sealed, read-only fixed-width column from decoded
// streams.
func OpenFixed(format Format, typeLen int, s Streams, opts ...Option) (*FixedColumn, error) {
	c, err := NewFixed(format, typeLen, append(opts, WithCapacity(0), WithEncoding(s.Encoding.Kind, s.Encoding.Level))...)
	if err != nil {
		return nil, err
	}
	if err := c.restore(s); err != nil {
		return nil, err
	}
	if want := c.positions() * c.slot; len(s.Data) != want {
		return nil, fault.OutOfRangef("fixed data stream has %d bytes, want %d (%d positions of %d)", len(s.Data), want, c.positions(), c.slot)
	}
	c.data = s.Data
	if c.data == nil {
		c.data = []byte{}
	}
	c.stream = s.Stream
	if c.stream == nil {
		c.stream = c.data
	}
	c.originLen = -1
	if c.encoding.Encoded() {
		c.originLen = s.OriginLength
	}
	return c, nil
}

func (c *FixedColumn) slotWidth() int {
	if c.encoding.Encoded() {
		return c.typeLen
	}
	return mem.AlignUp(c.typeLen, c.typeAlign)
}

func (c *FixedColumn) TypeLength() int { return c.typeLen }

// Append appends one non-null value of exactly TypeLength bytes.
func (c *FixedColumn) Append(v []byte) error {
	c.mustWritable("Append")
	if len(v) != c.typeLen {
		return fault.Logicf("fixed column expects %d bytes, got %d", c.typeLen, len(v))
	}
	c.data = append(c.data, v...)
	c.data = appendZero(c.data, c.slot-c.typeLen)
	c.appendPresence(true)
	return nil
}

// AppendNull records a null row. The vectorized layout also writes a
// zero-filled slot.
func (c *FixedColumn) AppendNull() error {
	c.mustWritable("AppendNull")
	if c.format == FormatVec {
		c.data = appendZero(c.data, c.slot)
	}
	c.appendPresence(false)
	return nil
}

func (c *FixedColumn) AppendToast([]byte) error {
	c.mustWritable("AppendToast")
	return fault.Logicf("fixed-width column cannot hold toasted values")
}

func (c *FixedColumn) AppendExternalToast([]byte) (int, error) {
	c.mustWritable("AppendExternalToast")
	return 0, fault.Logicf("fixed-width column cannot hold toasted values")
}

// Seal encodes the data stream and makes the column read-only.
func (c *FixedColumn) Seal() error {
	if c.sealed {
		return nil
	}
	stream, enc, err := encodeStream(c.registry, c.data, c.encoding)
	if err != nil {
		return err
	}
	c.encoding = enc
	if enc.Encoded() {
		c.originLen = len(c.data)
	} else if aligned := c.slotWidth(); aligned != c.slot {
		// Encoding fell back to raw, so slots take their aligned width.
		c.data = repack(c.data, c.typeLen, c.slot, aligned)
		c.slot = aligned
		stream = c.data
	}
	c.stream = stream
	c.sealed = true
	return nil
}

func (c *FixedColumn) Buffer() []byte {
	c.mustSealed("Buffer")
	return c.stream
}

// BufferAt returns the value at pos. In the vectorized layout a null row
// yields a valid zero-length slice.
func (c *FixedColumn) BufferAt(pos int) ([]byte, error) {
	c.mustSealed("BufferAt")
	if err := c.checkPos(pos); err != nil {
		return nil, err
	}
	off := pos * c.slot
	if c.format == FormatVec && c.IsNull(pos) {
		return c.data[off:off:off], nil
	}
	return c.data[off : off+c.typeLen : off+c.typeLen], nil
}

func (c *FixedColumn) RangeBuffer(start, n int) ([]byte, error) {
	c.mustSealed("RangeBuffer")
	if err := c.checkRange(start, n); err != nil {
		return nil, err
	}
	return c.data[start*c.slot : (start+n)*c.slot], nil
}

func (c *FixedColumn) Datum(pos int) (Datum, error) {
	v, err := c.BufferAt(pos)
	if err != nil {
		return Datum{}, err
	}
	if c.format == FormatVec && c.IsNull(pos) {
		return NullDatum(), nil
	}
	return c.toDatum(v, c.typeLen <= 8), nil
}

func (c *FixedColumn) PhysicalSize() int {
	return len(c.data) + c.metaSize()
}

func appendZero(b []byte, n int) []byte {
	for ; n > 0; n-- {
		b = append(b, 0)
	}
	return b
}

func repack(data []byte, typeLen, from, to int) []byte {
	n := len(data) / from
	out := make([]byte, n*to)
	for i := 0; i < n; i++ {
		copy(out[i*to:i*to+typeLen], data[i*from:i*from+typeLen])
	}
	return out
}
