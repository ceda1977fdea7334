package rowgroup

import (
	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/arena"
	"github.com/hupe1980/paxcol/internal/conv"
	"github.com/hupe1980/paxcol/internal/mem"
)

// Option configures a Group.
type Option func(*options)

type options struct {
	align    int
	strict   bool
	registry *codec.Registry
}

// WithAlignment sets the stream alignment for FormatVec. Defaults to
// mem.MemoryAlign.
func WithAlignment(align int) Option {
	return func(o *options) { o.align = align }
}

// WithStrict enables the additional checks on external toast layout.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithRegistry sets the codec registry used to decode streams.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) { o.registry = r }
}

func applyOptions(optFns []Option) options {
	o := options{
		align:    mem.MemoryAlign,
		registry: codec.Builtin(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.align <= 0 {
		o.align = mem.MemoryAlign
	}
	return o
}

// Group is an ordered set of columns assembled into one buffer. Column
// slots may be nil for projected-away columns; nil slots contribute no
// streams.
type Group struct {
	format  column.Format
	columns []column.Column
	opts    options

	data     *arena.Buffer
	external *arena.Buffer
	sizes    []int
}

// New creates a Group over columns. All present columns must share format.
func New(format column.Format, columns []column.Column, optFns ...Option) (*Group, error) {
	if format != column.FormatORC && format != column.FormatVec {
		return nil, fault.Logicf("unknown storage format %d", format)
	}
	for i, c := range columns {
		if c == nil {
			continue
		}
		if c.Format() != format {
			return nil, fault.Logicf("column %d is %s, group is %s", i, c.Format(), format)
		}
	}
	return &Group{
		format:  format,
		columns: columns,
		opts:    applyOptions(optFns),
	}, nil
}

// Format returns the storage format of the group.
func (g *Group) Format() column.Format { return g.format }

// Len returns the number of column slots, including nil ones.
func (g *Group) Len() int { return len(g.columns) }

// Column returns the column in slot i, or nil.
func (g *Group) Column(i int) column.Column {
	if i < 0 || i >= len(g.columns) {
		return nil
	}
	return g.columns[i]
}

// Columns returns all column slots.
func (g *Group) Columns() []column.Column { return g.columns }

// Rows returns the row count of the first present column.
func (g *Group) Rows() int {
	for _, c := range g.columns {
		if c != nil {
			return c.Rows()
		}
	}
	return 0
}

// PhysicalSize sums the in-memory footprint of the present columns.
func (g *Group) PhysicalSize() int {
	n := 0
	for _, c := range g.columns {
		if c != nil {
			n += c.PhysicalSize()
		}
	}
	return n
}

// ToastCount sums the toasted values of the present columns.
func (g *Group) ToastCount() int {
	n := 0
	for _, c := range g.columns {
		if c != nil {
			n += c.ToastCount()
		}
	}
	return n
}

// Seal seals every present column.
func (g *Group) Seal() error {
	for i, c := range g.columns {
		if c == nil {
			continue
		}
		if err := c.Seal(); err != nil {
			return fault.Wrapf(err, "seal column %d", i)
		}
	}
	return nil
}

// piece is one stream of a column ready to be laid out.
type piece struct {
	kind    StreamKind
	rows    int
	payload []byte
	encoded bool
	// typeAlign is the column's type alignment, used to pad ORC offsets.
	typeAlign int
}

func (g *Group) pieces(i int, c column.Column) ([]piece, error) {
	withOffsets, err := column.StreamSet(g.format, c.Kind())
	if err != nil {
		return nil, fault.Wrapf(err, "column %d", i)
	}

	out := make([]piece, 0, 4)
	if c.HasNull() {
		out = append(out, piece{kind: StreamPresence, rows: c.Rows(), payload: c.NullBitmap()})
	}
	if n := c.ToastCount(); n > 0 {
		out = append(out, piece{kind: StreamToast, rows: n, payload: conv.Int32sToBytes(c.ToastIndexes())})
	}
	if withOffsets {
		vc, ok := c.(column.VariableColumn)
		if !ok {
			return nil, fault.Logicf("column %d of kind %s has no offsets stream", i, c.Kind())
		}
		rows := c.NonNullRows()
		if g.format == column.FormatVec {
			rows = c.Rows()
		}
		out = append(out, piece{
			kind:      StreamOffset,
			rows:      rows,
			payload:   vc.OffsetsBuffer(),
			encoded:   vc.OffsetsEncoding().Encoded(),
			typeAlign: c.TypeAlign(),
		})
	}
	out = append(out, piece{
		kind:    StreamData,
		rows:    c.NonNullRows(),
		payload: c.Buffer(),
		encoded: c.Encoding().Encoded(),
	})
	return out, nil
}

// padding returns the bytes to place after p when it starts at offset start.
func (g *Group) padding(p piece, start int) int {
	if g.format == column.FormatVec {
		if p.encoded {
			return 0
		}
		return mem.Padding(len(p.payload), g.opts.align)
	}
	if p.kind != StreamOffset {
		return 0
	}
	return mem.Padding(start+len(p.payload), p.typeAlign)
}

func (g *Group) columnEncoding(c column.Column) ColumnEncoding {
	enc := ColumnEncoding{
		Data:                c.Encoding(),
		DataOriginLength:    c.OriginLength(),
		Offsets:             column.Encoding{Kind: column.NoEncoded},
		OffsetsOriginLength: -1,
	}
	if vc, ok := c.(column.VariableColumn); ok {
		enc.Offsets = vc.OffsetsEncoding()
		enc.OffsetsOriginLength = vc.OffsetsOriginLength()
	}
	if enc.Data.Encoded() && enc.DataOriginLength < 0 {
		fault.Assertf("encoded data stream without origin length")
	}
	if enc.Offsets.Encoded() && enc.OffsetsOriginLength < 0 {
		fault.Assertf("encoded offsets stream without origin length")
	}
	if g.format == column.FormatVec {
		if enc.Data.Encoded() {
			enc.DataOriginLength = mem.AlignUp(enc.DataOriginLength, g.opts.align)
		}
		if enc.Offsets.Encoded() {
			enc.OffsetsOriginLength = mem.AlignUp(enc.OffsetsOriginLength, g.opts.align)
		}
	}
	return enc
}

// Measure seals the columns, reports every stream and column encoding to
// the visitors in buffer order and returns the total buffer size.
// Either visitor may be nil.
func (g *Group) Measure(sv StreamVisitor, ev EncodingVisitor) (int, error) {
	if err := g.Seal(); err != nil {
		return 0, err
	}
	total := 0
	for i, c := range g.columns {
		if c == nil {
			continue
		}
		ps, err := g.pieces(i, c)
		if err != nil {
			return 0, err
		}
		for _, p := range ps {
			pad := g.padding(p, total)
			length := len(p.payload) + pad
			total += length
			if sv != nil {
				sv(Stream{Kind: p.kind, Rows: p.rows, Length: length, Padding: pad})
			}
		}
		if ev != nil {
			ev(g.columnEncoding(c))
		}
	}
	return total, nil
}

// Buffer measures the group and combines all streams into one buffer of
// exactly the measured size. A previously combined buffer is discarded.
func (g *Group) Buffer(sv StreamVisitor, ev EncodingVisitor) ([]byte, error) {
	if g.data != nil && g.data.Used() > 0 {
		g.data = nil
	}
	total, err := g.Measure(sv, ev)
	if err != nil {
		return nil, err
	}
	buf := arena.NewBufferFrom(mem.AllocAligned(total))
	if err := g.combine(buf); err != nil {
		return nil, err
	}
	if buf.Used() != total || buf.Available() != 0 {
		fault.Assertf("combined %d bytes, measured %d, %d left", buf.Used(), total, buf.Available())
	}
	g.data = buf
	return buf.Bytes(), nil
}

func (g *Group) combine(buf *arena.Buffer) error {
	for i, c := range g.columns {
		if c == nil {
			continue
		}
		ps, err := g.pieces(i, c)
		if err != nil {
			return err
		}
		for _, p := range ps {
			pad := g.padding(p, buf.Used())
			if err := buf.Write(p.payload); err != nil {
				fault.Assertf("column %d %s stream: %v", i, p.kind, err)
			}
			if err := buf.WriteZero(pad); err != nil {
				fault.Assertf("column %d %s padding: %v", i, p.kind, err)
			}
		}
	}
	return nil
}
