package paxcol

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/paxcol/batch"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/rowgroup"
	"github.com/hupe1980/paxcol/toast"
)

// Reader serves values of a decoded Stripe. It is safe for concurrent use.
type Reader struct {
	stripe  *Stripe
	schema  Schema
	columns []column.Column
	opts    options
	logger  *Logger
}

// OpenReader decodes stripe with schema.
func OpenReader(ctx context.Context, stripe *Stripe, schema Schema, optFns ...Option) (*Reader, error) {
	o := applyOptions(optFns)

	start := time.Now()
	cols, err := openColumns(stripe, schema, o)
	err = translateError(err)
	o.metricsCollector.RecordOpen(time.Since(start), err)

	if err != nil {
		o.logger.LogOpen(ctx, 0, 0, err)
		return nil, err
	}
	logger := o.logger.WithFormat(stripe.Format).WithColumns(schema.Len())
	logger.LogOpen(ctx, stripe.Rows, len(stripe.Data), nil)
	return &Reader{
		stripe:  stripe,
		schema:  schema,
		columns: cols,
		opts:    o,
		logger:  logger,
	}, nil
}

func openColumns(stripe *Stripe, schema Schema, o options) ([]column.Column, error) {
	if stripe == nil {
		return nil, fault.Logicf("nil stripe")
	}
	if stripe.Layout.Format != 0 && stripe.Layout.Format != stripe.Format {
		return nil, fault.Logicf("layout format %s does not match stripe format %s", stripe.Layout.Format, stripe.Format)
	}
	cols, err := rowgroup.Decode(stripe.Data, stripe.Layout, schema.specs(o.projection), rowgroup.WithRegistry(o.registry))
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		if c != nil && c.Rows() != stripe.Rows {
			return nil, &ErrColumn{Index: i, Name: schema.Fields[i].Name, cause: fault.OutOfRangef("column has %d rows, stripe has %d", c.Rows(), stripe.Rows)}
		}
	}

	g, err := rowgroup.New(stripe.Format, cols,
		rowgroup.WithStrict(o.strict),
		rowgroup.WithRegistry(o.registry),
	)
	if err != nil {
		return nil, err
	}
	if sizes := stripe.Layout.ExternalSizes; len(sizes) > 0 {
		if err := g.SetExternalToast(stripe.Arena, sizes); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// Rows returns the number of rows in the stripe.
func (r *Reader) Rows() int { return r.stripe.Rows }

// Schema returns the reader's schema.
func (r *Reader) Schema() Schema { return r.schema }

// Column returns the decoded column of field i, or nil when it was not
// projected.
func (r *Reader) Column(i int) column.Column {
	if i < 0 || i >= len(r.columns) {
		return nil
	}
	return r.columns[i]
}

func (r *Reader) column(i int) (column.Column, error) {
	c := r.Column(i)
	if c == nil {
		return nil, fault.Logicf("field %d is not decoded", i)
	}
	return c, nil
}

// Value returns the value of field col at row. Toasted values are
// reconstructed; null rows return null=true.
func (r *Reader) Value(ctx context.Context, col, row int) (v []byte, null bool, err error) {
	c, err := r.column(col)
	if err != nil {
		return nil, false, err
	}
	v, null, err = column.ValueAt(c, row)
	if err != nil || null {
		return nil, null, err
	}
	if !c.IsToast(row) {
		return v, false, nil
	}
	out, err := toast.Detoast(v, c.ExternalToast(), r.opts.registry)
	if err != nil {
		r.logger.LogDetoast(ctx, col, row, err)
		return nil, false, err
	}
	return out, false, nil
}

// Datum returns the value of field col at row as a Datum.
func (r *Reader) Datum(ctx context.Context, col, row int) (column.Datum, error) {
	c, err := r.column(col)
	if err != nil {
		return column.Datum{}, err
	}
	if c.IsToast(row) {
		v, _, err := r.Value(ctx, col, row)
		if err != nil {
			return column.Datum{}, err
		}
		return column.RefDatum(v), nil
	}
	pos, null, err := column.RowToPosition(c, row)
	if err != nil {
		return column.Datum{}, err
	}
	if null {
		return column.NullDatum(), nil
	}
	return c.Datum(pos)
}

// Nulls returns the presence bitmap of rows [begin, begin+n) of field col
// for an output batch. deleted marks invisible rows, where visibility bit
// visBegin corresponds to row begin; nil keeps all rows.
func (r *Reader) Nulls(col, begin, n int, deleted *roaring.Bitmap, visBegin int) (batch.Nulls, error) {
	c, err := r.column(col)
	if err != nil {
		return batch.Nulls{}, err
	}
	return batch.NullsForRange(c, deleted, visBegin, begin, n)
}
