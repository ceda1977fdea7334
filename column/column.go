package column

import (
	flatbits "github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/bitset"
	"github.com/hupe1980/paxcol/internal/conv"
)

// DefaultCapacity is the initial row capacity of a new column.
const DefaultCapacity = 2048

// Column is one attribute's values across a row group.
type Column interface {
	Kind() Kind
	Format() Format
	// TypeLength is the fixed value width, or -1 for variable width.
	TypeLength() int
	TypeAlign() int
	Attributes() map[string]string

	Rows() int
	NonNullRows() int
	RangeNonNullRows(start, n int) (int, error)
	HasNull() bool
	AllNull() bool
	IsNull(row int) bool
	// NullBitmap returns the serialized presence bitmap, or nil when the
	// column has no nulls.
	NullBitmap() []byte

	Append(v []byte) error
	AppendNull() error
	AppendToast(v []byte) error
	AppendExternalToast(p []byte) (int, error)

	Seal() error
	Sealed() bool

	// Buffer returns the serialized data stream.
	Buffer() []byte
	BufferAt(pos int) ([]byte, error)
	RangeBuffer(start, n int) ([]byte, error)
	Datum(pos int) (Datum, error)

	PhysicalSize() int
	Encoding() Encoding
	// OriginLength is the data stream size before encoding, or -1 when the
	// stream is not encoded.
	OriginLength() int

	ToastCount() int
	ToastIndexes() []int32
	IsToast(row int) bool
	ExternalToast() []byte
	SetExternalToast(buf []byte)
}

// VariableColumn is a Column with an offsets stream.
type VariableColumn interface {
	Column
	// Offsets returns the start offset of every position, plus the end
	// offset of the data when appendLast is set.
	Offsets(appendLast bool) []int32
	OffsetsBuffer() []byte
	OffsetsEncoding() Encoding
	OffsetsOriginLength() int
}

// Option configures a new column.
type Option func(*options)

type options struct {
	capacity        int
	typeAlign       int
	encoding        Encoding
	offsetsEncoding Encoding
	kind            Kind
	attrs           map[string]string
	converter       Converter
	registry        *codec.Registry
}

// WithCapacity sets the initial row capacity.
func WithCapacity(rows int) Option {
	return func(o *options) { o.capacity = rows }
}

// WithTypeAlign sets the type alignment supplied by the type system.
func WithTypeAlign(align int) Option {
	return func(o *options) { o.typeAlign = align }
}

// WithEncoding sets the data stream encoding.
func WithEncoding(kind EncodingKind, level int) Option {
	return func(o *options) { o.encoding = Encoding{Kind: kind, Level: level} }
}

// WithOffsetsEncoding sets the offsets stream encoding of variable columns.
func WithOffsetsEncoding(kind EncodingKind, level int) Option {
	return func(o *options) { o.offsetsEncoding = Encoding{Kind: kind, Level: level} }
}

// WithKind overrides the in-memory kind, e.g. KindBpChar for char(n).
func WithKind(kind Kind) Option {
	return func(o *options) { o.kind = kind }
}

// WithAttributes attaches type attributes such as the declared length.
func WithAttributes(attrs map[string]string) Option {
	return func(o *options) { o.attrs = attrs }
}

// WithConverter sets the Datum converter.
func WithConverter(c Converter) Option {
	return func(o *options) { o.converter = c }
}

// WithRegistry sets the codec registry used by stream encodings.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) { o.registry = r }
}

func applyOptions(optFns []Option) options {
	o := options{
		capacity:  DefaultCapacity,
		typeAlign: 1,
		converter: DefaultConverter{},
		registry:  codec.Builtin(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.typeAlign < 1 {
		o.typeAlign = 1
	}
	if o.capacity < 0 {
		o.capacity = 0
	}
	return o
}

// base holds the state shared by every column implementation.
type base struct {
	kind      Kind
	format    Format
	typeAlign int
	attrs     map[string]string
	capacity  int

	rows    int
	nonNull int
	nulls   *bitset.Bitmap8 // nil until the first null

	encoding  Encoding
	originLen int

	toastIdx []int32
	toastMap *flatbits.BitSet
	external []byte

	sealed    bool
	converter Converter
	registry  *codec.Registry
}

func newBase(format Format, kind Kind, o options) base {
	return base{
		kind:      kind,
		format:    format,
		typeAlign: o.typeAlign,
		attrs:     o.attrs,
		capacity:  o.capacity,
		encoding:  o.encoding,
		originLen: -1,
		converter: o.converter,
		registry:  o.registry,
	}
}

func (b *base) Kind() Kind                    { return b.kind }
func (b *base) Format() Format                { return b.format }
func (b *base) TypeAlign() int                { return b.typeAlign }
func (b *base) Attributes() map[string]string { return b.attrs }
func (b *base) Rows() int                     { return b.rows }
func (b *base) NonNullRows() int              { return b.nonNull }
func (b *base) HasNull() bool                 { return b.nulls != nil }
func (b *base) AllNull() bool                 { return b.nulls != nil && b.nonNull == 0 }
func (b *base) Sealed() bool                  { return b.sealed }
func (b *base) Encoding() Encoding            { return b.encoding }
func (b *base) OriginLength() int             { return b.originLen }
func (b *base) ToastCount() int               { return len(b.toastIdx) }
func (b *base) ToastIndexes() []int32         { return b.toastIdx }
func (b *base) ExternalToast() []byte         { return b.external }
func (b *base) SetExternalToast(buf []byte)   { b.external = buf }

func (b *base) IsNull(row int) bool {
	return b.nulls != nil && row >= 0 && row < b.rows && !b.nulls.Test(row)
}

func (b *base) NullBitmap() []byte {
	if b.nulls == nil {
		return nil
	}
	return b.nulls.Bytes()
}

func (b *base) IsToast(row int) bool {
	return b.toastMap != nil && row >= 0 && b.toastMap.Test(uint(row))
}

func (b *base) RangeNonNullRows(start, n int) (int, error) {
	if start < 0 || n < 0 || start+n > b.rows {
		return 0, fault.OutOfRangef("row range [%d, %d) exceeds %d rows", start, start+n, b.rows)
	}
	if b.nulls == nil {
		return n, nil
	}
	return b.nulls.CountOnes(start, n), nil
}

// positions is the number of entries in the data array.
func (b *base) positions() int {
	if b.format == FormatVec {
		return b.rows
	}
	return b.nonNull
}

func (b *base) checkPos(pos int) error {
	if pos < 0 || pos >= b.positions() {
		return fault.OutOfRangef("position %d out of range [0, %d) in %s column", pos, b.positions(), b.format)
	}
	return nil
}

func (b *base) checkRange(start, n int) error {
	if start < 0 || n < 0 || start+n > b.positions() {
		return fault.OutOfRangef("range [%d, %d) out of range [0, %d) in %s column", start, start+n, b.positions(), b.format)
	}
	return nil
}

func (b *base) mustWritable(op string) {
	if b.sealed {
		fault.Assertf("%s on a sealed %s column", op, b.kind)
	}
}

func (b *base) mustSealed(op string) {
	if !b.sealed {
		fault.Assertf("%s on an unsealed %s column", op, b.kind)
	}
}

// appendPresence records the null state of the next row. The bitmap is
// created lazily and back-filled when the first null arrives.
func (b *base) appendPresence(present bool) {
	if !present && b.nulls == nil {
		b.nulls = bitset.New(max(b.capacity, b.rows+1))
		b.nulls.AppendN(true, b.rows)
	}
	if b.nulls != nil {
		b.nulls.Append(present)
	}
	b.rows++
	if present {
		b.nonNull++
	}
}

func (b *base) addToast(row int) error {
	idx, err := conv.IntToInt32(row)
	if err != nil {
		return err
	}
	if b.toastMap == nil {
		b.toastMap = flatbits.New(uint(max(b.capacity, row+1)))
	}
	b.toastIdx = append(b.toastIdx, idx)
	b.toastMap.Set(uint(row))
	return nil
}

func (b *base) AppendExternalToast(p []byte) (int, error) {
	b.mustWritable("AppendExternalToast")
	off := len(b.external)
	b.external = append(b.external, p...)
	return off, nil
}

// restore installs decoded presence and toast state on a read-path column.
func (b *base) restore(s Streams) error {
	if s.Rows < 0 {
		return fault.OutOfRangef("negative row count %d", s.Rows)
	}
	b.rows = s.Rows
	b.nonNull = s.Rows
	if s.Nulls != nil {
		if len(s.Nulls) < bitset.BitsToBytes(s.Rows) {
			return fault.OutOfRangef("presence bitmap has %d bytes, %d rows need %d", len(s.Nulls), s.Rows, bitset.BitsToBytes(s.Rows))
		}
		b.nulls = bitset.FromBytes(s.Nulls, s.Rows)
		b.nonNull = b.nulls.Count()
	}
	for _, idx := range s.ToastIndexes {
		row, err := conv.Int32ToInt(idx)
		if err != nil {
			return err
		}
		if row >= s.Rows {
			return fault.OutOfRangef("toast index %d exceeds %d rows", row, s.Rows)
		}
		if err := b.addToast(row); err != nil {
			return err
		}
	}
	b.external = s.External
	b.sealed = true
	return nil
}

func (b *base) metaSize() int {
	n := 4*len(b.toastIdx) + len(b.external)
	if b.nulls != nil {
		n += len(b.nulls.Raw())
	}
	return n
}

func (b *base) toDatum(v []byte, byValue bool) Datum {
	return b.converter.BytesToValue(v, byValue)
}

// Streams carries the decoded streams of one read-path column.
type Streams struct {
	// Rows is the total row count including nulls.
	Rows int
	// Nulls is the presence bitmap, nil when the column has no nulls.
	Nulls        []byte
	ToastIndexes []int32
	// Data is the decoded data stream; Stream is the serialized form and
	// defaults to Data.
	Data   []byte
	Stream []byte
	// Offsets includes the trailing end offset. Variable columns only.
	Offsets       []int32
	OffsetsStream []byte

	Encoding            Encoding
	OriginLength        int
	OffsetsEncoding     Encoding
	OffsetsOriginLength int

	External []byte
}

// RowToPosition maps a row index to a data position. For null rows it
// returns null=true and no position.
func RowToPosition(c Column, row int) (pos int, null bool, err error) {
	if row < 0 || row >= c.Rows() {
		return 0, false, fault.OutOfRangef("row %d out of range [0, %d)", row, c.Rows())
	}
	if c.IsNull(row) {
		return 0, true, nil
	}
	if c.Format() == FormatVec {
		return row, false, nil
	}
	pos, err = c.RangeNonNullRows(0, row)
	return pos, false, err
}

// ValueAt reads the value of a row regardless of format. Null rows return
// a nil slice and null=true.
func ValueAt(c Column, row int) (v []byte, null bool, err error) {
	pos, null, err := RowToPosition(c, row)
	if err != nil || null {
		return nil, null, err
	}
	v, err = c.BufferAt(pos)
	return v, false, err
}
