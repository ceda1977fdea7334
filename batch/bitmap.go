package batch

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/bitset"
	"github.com/hupe1980/paxcol/internal/mem"
)

// alloc returns a zeroed buffer of n bytes backed by an allocation padded
// to mem.MemoryAlign.
func alloc(n int) []byte {
	return mem.AllocAligned(mem.AlignUp(n, mem.MemoryAlign))[:n]
}

// ExtractBitmapRange copies the presence bits [begin, begin+n) of bm into a
// new bitmap of BitsToBytes(n) bytes. begin must be a multiple of 8. Bytes
// beyond the end of bm are zero, so missing rows read as null.
func ExtractBitmapRange(bm []byte, begin, n int) ([]byte, error) {
	if begin < 0 || n < 0 {
		return nil, fault.OutOfRangef("bitmap range [%d, %d) is negative", begin, begin+n)
	}
	if begin%8 != 0 {
		return nil, fault.Logicf("bitmap range begin %d is not byte aligned", begin)
	}
	size := bitset.BitsToBytes(n)
	out := alloc(size)
	if from := begin / 8; from < len(bm) {
		copy(out, bm[from:])
	}
	return out, nil
}

// RecomputeVisibleNulls compacts the presence bits [begin, begin+n) of bm
// to the rows not contained in deleted. Row begin+i maps to visibility bit
// visBegin+i. want is the expected number of visible rows; a different
// count is ErrOutOfRange. It returns the compacted bitmap and the number of
// visible nulls.
func RecomputeVisibleNulls(bm []byte, deleted *roaring.Bitmap, visBegin, begin, n, want int) ([]byte, int, error) {
	if begin < 0 || n < 0 || visBegin < 0 || want < 0 {
		return nil, 0, fault.OutOfRangef("negative visibility range")
	}
	src := bitset.FromBytes(bm, begin+n)
	dst := bitset.New(want)

	nulls, idx := 0, 0
	for i := 0; i < n; i++ {
		if deleted != nil && deleted.Contains(uint32(visBegin+i)) {
			continue
		}
		if src.Test(begin + i) {
			if idx < want {
				dst.Set(idx)
			}
		} else {
			nulls++
		}
		idx++
	}
	if idx != want {
		return nil, 0, fault.OutOfRangef("range has %d visible rows, want %d", idx, want)
	}

	out := alloc(bitset.BitsToBytes(want))
	copy(out, dst.Raw())
	return out, nulls, nil
}

// VisibleRows counts the rows in [visBegin, visBegin+n) not contained in
// deleted.
func VisibleRows(deleted *roaring.Bitmap, visBegin, n int) int {
	if deleted == nil || n <= 0 {
		return max(n, 0)
	}
	last := uint32(visBegin + n - 1)
	gone := deleted.Rank(last)
	if visBegin > 0 {
		gone -= deleted.Rank(uint32(visBegin - 1))
	}
	return n - int(gone)
}

// Nulls is the presence bitmap of one output batch.
type Nulls struct {
	// Bitmap has one bit per output row, set for non-null rows.
	Bitmap []byte
	// Count is the number of null output rows.
	Count int
}

// NullsForRange builds the output presence bitmap of rows [begin, begin+n)
// of c. With a nil deleted map the range is copied as is; otherwise deleted
// rows are dropped and visBegin is the visibility bit of row begin. It
// returns a zero Nulls when the column has no nulls.
func NullsForRange(c column.Column, deleted *roaring.Bitmap, visBegin, begin, n int) (Nulls, error) {
	if !c.HasNull() {
		return Nulls{}, nil
	}
	if deleted == nil {
		nonNull, err := c.RangeNonNullRows(begin, n)
		if err != nil {
			return Nulls{}, err
		}
		bm, err := ExtractBitmapRange(c.NullBitmap(), begin, n)
		if err != nil {
			return Nulls{}, err
		}
		return Nulls{Bitmap: bm, Count: n - nonNull}, nil
	}
	if begin < 0 || begin+n > c.Rows() {
		return Nulls{}, fault.OutOfRangef("row range [%d, %d) exceeds %d rows", begin, begin+n, c.Rows())
	}
	bm, count, err := RecomputeVisibleNulls(c.NullBitmap(), deleted, visBegin, begin, n, VisibleRows(deleted, visBegin, n))
	if err != nil {
		return Nulls{}, err
	}
	return Nulls{Bitmap: bm, Count: count}, nil
}
