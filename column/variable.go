package column

import (
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/conv"
)

// VarColumn stores variable-width values addressed through an int32
// offsets array.
//
// In the vectorized layout a null row adds an empty offsets entry; in the
// ORC-like layout it adds nothing. Values are packed back to back; the type
// alignment only governs offsets stream padding in the row-group layout.
type VarColumn struct {
	base
	offsets []int32
	data    []byte
	stream  []byte

	offsetsEncoding  Encoding
	offsetsOriginLen int
	offsetsStream    []byte
}

var _ VariableColumn = (*VarColumn)(nil)

// NewVariable creates a writable variable-width column.
func NewVariable(format Format, opts ...Option) (*VarColumn, error) {
	o := applyOptions(opts)
	kind := o.kind
	if kind == 0 {
		kind = KindNonFixed
	}
	if err := checkKind(format, kind, KindNonFixed, KindBpChar, KindVecBpChar, KindVecNoHeader, KindDecimal); err != nil {
		return nil, err
	}
	return &VarColumn{
		base:             newBase(format, kind, o),
		offsets:          make([]int32, 0, o.capacity),
		data:             make([]byte, 0, o.capacity),
		offsetsEncoding:  o.offsetsEncoding,
		offsetsOriginLen: -1,
	}, nil
}

// OpenVariable builds a sealed, read-only variable-width column from
// decoded streams. s.Offsets must include the trailing end offset.
func OpenVariable(format Format, s Streams, opts ...Option) (*VarColumn, error) {
	opts = append(opts,
		WithCapacity(0),
		WithEncoding(s.Encoding.Kind, s.Encoding.Level),
		WithOffsetsEncoding(s.OffsetsEncoding.Kind, s.OffsetsEncoding.Level),
	)
	c, err := NewVariable(format, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.restore(s); err != nil {
		return nil, err
	}
	if err := checkOffsets(s.Offsets, c.positions(), len(s.Data)); err != nil {
		return nil, err
	}
	c.offsets = s.Offsets[:len(s.Offsets)-1]
	c.data = s.Data
	if c.data == nil {
		c.data = []byte{}
	}
	c.stream = s.Stream
	if c.stream == nil {
		c.stream = c.data
	}
	c.offsetsStream = s.OffsetsStream
	if c.offsetsStream == nil {
		c.offsetsStream = conv.Int32sToBytes(s.Offsets)
	}
	if c.encoding.Encoded() {
		c.originLen = s.OriginLength
	}
	if c.offsetsEncoding.Encoded() {
		c.offsetsOriginLen = s.OffsetsOriginLength
	}
	return c, nil
}

func checkOffsets(offsets []int32, positions, dataLen int) error {
	if len(offsets) != positions+1 {
		return fault.OutOfRangef("offsets stream has %d entries, want %d", len(offsets), positions+1)
	}
	prev := int32(0)
	for i, off := range offsets {
		if off < prev {
			return fault.OutOfRangef("offset %d at entry %d precedes %d", off, i, prev)
		}
		prev = off
	}
	if int(prev) != dataLen {
		return fault.OutOfRangef("last offset %d does not match data length %d", prev, dataLen)
	}
	return nil
}

func (c *VarColumn) TypeLength() int { return -1 }

// Append appends one non-null value.
func (c *VarColumn) Append(v []byte) error {
	c.mustWritable("Append")
	if err := c.appendValue(v); err != nil {
		return err
	}
	c.appendPresence(true)
	return nil
}

func (c *VarColumn) appendValue(v []byte) error {
	start, err := conv.IntToInt32(len(c.data))
	if err != nil {
		return err
	}
	if _, err := conv.IntToInt32(len(c.data) + len(v)); err != nil {
		return err
	}
	c.offsets = append(c.offsets, start)
	c.data = append(c.data, v...)
	return nil
}

// AppendNull records a null row. The vectorized layout also adds an empty
// offsets entry.
func (c *VarColumn) AppendNull() error {
	c.mustWritable("AppendNull")
	if c.format == FormatVec {
		if err := c.appendValue(nil); err != nil {
			return err
		}
	}
	c.appendPresence(false)
	return nil
}

// AppendToast appends a value already converted by the toast subsystem and
// records its row in the toast bookkeeping.
func (c *VarColumn) AppendToast(v []byte) error {
	c.mustWritable("AppendToast")
	row := c.rows
	if err := c.Append(v); err != nil {
		return err
	}
	return c.addToast(row)
}

// Seal encodes the data and offsets streams and makes the column read-only.
func (c *VarColumn) Seal() error {
	if c.sealed {
		return nil
	}
	stream, enc, err := encodeStream(c.registry, c.data, c.encoding)
	if err != nil {
		return err
	}
	raw := conv.Int32sToBytes(c.Offsets(true))
	offStream, offEnc, err := encodeStream(c.registry, raw, c.offsetsEncoding)
	if err != nil {
		return err
	}

	c.stream, c.encoding = stream, enc
	if enc.Encoded() {
		c.originLen = len(c.data)
	}
	c.offsetsStream, c.offsetsEncoding = offStream, offEnc
	if offEnc.Encoded() {
		c.offsetsOriginLen = len(raw)
	}
	c.sealed = true
	return nil
}

func (c *VarColumn) Offsets(appendLast bool) []int32 {
	if !appendLast {
		return c.offsets
	}
	out := make([]int32, len(c.offsets)+1)
	copy(out, c.offsets)
	out[len(c.offsets)] = int32(len(c.data))
	return out
}

func (c *VarColumn) OffsetsBuffer() []byte {
	c.mustSealed("OffsetsBuffer")
	return c.offsetsStream
}

func (c *VarColumn) OffsetsEncoding() Encoding { return c.offsetsEncoding }
func (c *VarColumn) OffsetsOriginLength() int  { return c.offsetsOriginLen }

func (c *VarColumn) Buffer() []byte {
	c.mustSealed("Buffer")
	return c.stream
}

func (c *VarColumn) end(pos int) int {
	if pos+1 < len(c.offsets) {
		return int(c.offsets[pos+1])
	}
	return len(c.data)
}

// BufferAt returns the value at pos. In the vectorized layout a null row
// yields a nil slice.
func (c *VarColumn) BufferAt(pos int) ([]byte, error) {
	c.mustSealed("BufferAt")
	if err := c.checkPos(pos); err != nil {
		return nil, err
	}
	if c.format == FormatVec && c.IsNull(pos) {
		return nil, nil
	}
	start, end := int(c.offsets[pos]), c.end(pos)
	return c.data[start:end:end], nil
}

func (c *VarColumn) RangeBuffer(start, n int) ([]byte, error) {
	c.mustSealed("RangeBuffer")
	if err := c.checkRange(start, n); err != nil {
		return nil, err
	}
	if n == 0 {
		return c.data[:0], nil
	}
	return c.data[c.offsets[start]:c.end(start+n-1)], nil
}

func (c *VarColumn) Datum(pos int) (Datum, error) {
	v, err := c.BufferAt(pos)
	if err != nil {
		return Datum{}, err
	}
	if v == nil {
		return NullDatum(), nil
	}
	return c.toDatum(v, false), nil
}

func (c *VarColumn) PhysicalSize() int {
	return len(c.data) + 4*len(c.offsets) + c.metaSize()
}
