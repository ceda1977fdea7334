package rowgroup

import (
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/arena"
	"github.com/hupe1980/paxcol/toast"
)

// ExternalToast combines the external toast payloads of all columns into one
// arena, in column order, and returns it with the per-slot sizes. Nil slots
// and columns without external payloads get size 0. After the first call
// the columns reference their part of the arena and later calls return the
// same result.
func (g *Group) ExternalToast() ([]byte, []int) {
	if g.external != nil {
		return g.external.Bytes(), g.sizes
	}

	parts := make([][]byte, len(g.columns))
	sizes := make([]int, len(g.columns))
	for i, c := range g.columns {
		if c == nil {
			continue
		}
		parts[i] = c.ExternalToast()
		sizes[i] = len(parts[i])
	}

	g.external = arena.Concat(parts)
	g.sizes = sizes

	views, err := arena.Partition(g.external.Bytes(), sizes)
	if err != nil {
		fault.Assertf("partition of a freshly combined arena: %v", err)
	}
	for i, c := range g.columns {
		if c != nil && sizes[i] > 0 {
			c.SetExternalToast(views[i])
		}
	}
	return g.external.Bytes(), g.sizes
}

// SetExternalToast distributes a combined arena back to the columns. sizes
// has one entry per column slot. Slots that are nil, hold no toasts or have
// size 0 are skipped; the cursor still advances past their bytes.
func (g *Group) SetExternalToast(buf []byte, sizes []int) error {
	if len(sizes) != len(g.columns) {
		return fault.Logicf("got %d external sizes for %d columns", len(sizes), len(g.columns))
	}
	views, err := arena.Partition(buf, sizes)
	if err != nil {
		return err
	}
	used := 0
	for i, c := range g.columns {
		used += sizes[i]
		if c == nil || sizes[i] == 0 {
			continue
		}
		if c.ToastCount() == 0 {
			return fault.Logicf("column %d has %d external bytes but no toasted values", i, sizes[i])
		}
		c.SetExternalToast(views[i])
	}
	if g.opts.strict {
		if used != len(buf) {
			return fault.OutOfRangef("external arena has %d bytes, columns claim %d", len(buf), used)
		}
		if err := g.VerifyExternalToasts(); err != nil {
			return err
		}
	}
	g.external = arena.Wrap(buf)
	g.sizes = sizes
	return nil
}

// VerifyExternalToasts checks that the external pointers of every column
// tile its external buffer in row order without gaps. It seals the columns.
func (g *Group) VerifyExternalToasts() error {
	if err := g.Seal(); err != nil {
		return err
	}
	for i, c := range g.columns {
		if c == nil || c.ToastCount() == 0 {
			continue
		}
		if err := verifyColumnToasts(c); err != nil {
			return fault.Wrapf(err, "column %d", i)
		}
	}
	return nil
}

func verifyColumnToasts(c column.Column) error {
	next := 0
	for _, idx := range c.ToastIndexes() {
		row := int(idx)
		v, null, err := column.ValueAt(c, row)
		if err != nil {
			return err
		}
		if null {
			return fault.OutOfRangef("toast index %d points at a null row", row)
		}
		h, err := toast.ParseHeader(v)
		if err != nil {
			return fault.Wrapf(err, "row %d", row)
		}
		if h.Kind != toast.KindExternal {
			continue
		}
		if h.Offset != next {
			return fault.OutOfRangef("row %d external payload at %d, expected %d", row, h.Offset, next)
		}
		next += h.StoredSize
	}
	if have := len(c.ExternalToast()); next != have {
		return fault.OutOfRangef("external payloads cover %d bytes of %d", next, have)
	}
	return nil
}
