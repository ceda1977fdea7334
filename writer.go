package paxcol

import (
	"context"
	"time"

	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/rowgroup"
	"github.com/hupe1980/paxcol/toast"
)

// Stripe is one flushed row group: the combined column buffer, the external
// toast arena and the layout a footer would persist.
type Stripe struct {
	Format column.Format   `json:"format"`
	Rows   int             `json:"rows"`
	Data   []byte          `json:"-"`
	Arena  []byte          `json:"-"`
	Layout rowgroup.Layout `json:"layout"`
}

// Writer appends rows into the columns of one row group and flushes them as
// a Stripe. A Writer is single-use and not safe for concurrent use.
type Writer struct {
	format  column.Format
	schema  Schema
	columns []column.Column
	opts    options
	logger  *Logger
	stats   toast.Stats
	rows    int
	err     error
	flushed bool
}

// NewWriter creates a Writer for schema in the given format.
func NewWriter(format column.Format, schema Schema, optFns ...Option) (*Writer, error) {
	o := applyOptions(optFns)
	if schema.Len() == 0 {
		return nil, translateError(fault.Logicf("schema has no fields"))
	}
	cols := make([]column.Column, schema.Len())
	for i := range schema.Fields {
		c, err := schema.newColumn(format, i, o.registry)
		if err != nil {
			return nil, &ErrColumn{Index: i, Name: schema.Fields[i].Name, cause: err}
		}
		cols[i] = c
	}
	return &Writer{
		format:  format,
		schema:  schema,
		columns: cols,
		opts:    o,
		logger:  o.logger.WithFormat(format).WithColumns(schema.Len()),
	}, nil
}

// Rows returns the number of rows appended so far.
func (w *Writer) Rows() int { return w.rows }

// ToastStats returns the toast decisions made so far.
func (w *Writer) ToastStats() toast.Stats { return w.stats }

// AppendRow appends one row. values has one entry per field; a nil entry is
// a null. Values of variable-width fields are toasted according to the
// field's storage class. A failure in the middle of a row leaves the writer
// unusable.
func (w *Writer) AppendRow(values [][]byte) error {
	if w.flushed {
		fault.Assertf("AppendRow after Flush")
	}
	if w.err != nil {
		return w.err
	}
	if len(values) != len(w.columns) {
		return &ErrRowWidth{
			Expected: len(w.columns),
			Actual:   len(values),
			cause:    fault.Logicf("row %d has %d values", w.rows, len(values)),
		}
	}
	for i, v := range values {
		f := w.schema.Fields[i]
		if v == nil || f.Variable() {
			continue
		}
		if want := fixedSize(f); len(v) != want {
			return &ErrColumn{Index: i, Name: f.Name, cause: fault.Logicf("row %d: value has %d bytes, want %d", w.rows, len(v), want)}
		}
	}

	for i, v := range values {
		if err := w.appendValue(i, v); err != nil {
			w.err = &ErrColumn{Index: i, Name: w.schema.Fields[i].Name, cause: err}
			return w.err
		}
	}
	w.rows++
	return nil
}

func fixedSize(f Field) int {
	if f.BitPacked {
		return 1
	}
	return f.Width
}

func (w *Writer) appendValue(i int, v []byte) error {
	c := w.columns[i]
	f := w.schema.Fields[i]
	if v == nil {
		return c.AppendNull()
	}
	if !f.Variable() || f.Storage == toast.Plain {
		return c.Append(v)
	}

	before := len(c.ExternalToast())
	kind, err := toast.Write(c, v, f.Storage, w.opts.toast)
	if err != nil {
		return err
	}
	w.stats.Record(kind, len(c.ExternalToast())-before)
	if kind != toast.KindPlain {
		w.opts.metricsCollector.RecordToast(kind)
	}
	return nil
}

// Flush seals the columns and assembles them into a Stripe. Flushing twice
// is a programming error.
func (w *Writer) Flush(ctx context.Context) (*Stripe, error) {
	if w.flushed {
		fault.Assertf("writer flushed twice")
	}
	if w.err != nil {
		return nil, w.err
	}
	w.flushed = true

	start := time.Now()
	stripe, err := w.flush()
	err = translateError(err)

	size := 0
	if stripe != nil {
		size = len(stripe.Data) + len(stripe.Arena)
	}
	w.opts.metricsCollector.RecordFlush(w.rows, size, time.Since(start), err)
	w.logger.LogFlush(ctx, w.rows, size, w.stats.Toasted(), err)
	if err != nil {
		return nil, err
	}
	return stripe, nil
}

func (w *Writer) flush() (*Stripe, error) {
	g, err := rowgroup.New(w.format, w.columns,
		rowgroup.WithAlignment(w.opts.alignment),
		rowgroup.WithStrict(w.opts.strict),
		rowgroup.WithRegistry(w.opts.registry),
	)
	if err != nil {
		return nil, err
	}

	rec := rowgroup.NewRecorder(w.format)
	data, err := g.Buffer(rec.Stream, rec.Encoding)
	if err != nil {
		return nil, err
	}
	arena, sizes := g.ExternalToast()
	if w.opts.strict {
		if err := g.VerifyExternalToasts(); err != nil {
			return nil, err
		}
	}

	layout := rec.Layout()
	if len(arena) > 0 {
		layout.ExternalSizes = sizes
	}
	return &Stripe{
		Format: w.format,
		Rows:   w.rows,
		Data:   data,
		Arena:  arena,
		Layout: layout,
	}, nil
}
