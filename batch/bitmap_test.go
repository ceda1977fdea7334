package batch

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/mem"
)

func TestExtractBitmapRange(t *testing.T) {
	bm := []byte{0xFF, 0x0F}

	tests := []struct {
		name  string
		begin int
		n     int
		want  []byte
	}{
		{"whole", 0, 16, []byte{0xFF, 0x0F}},
		{"first byte", 0, 5, []byte{0xFF}},
		{"second byte", 8, 8, []byte{0x0F}},
		{"tail past end is zero", 8, 16, []byte{0x0F, 0x00}},
		{"entirely past end", 24, 12, []byte{0x00, 0x00}},
		{"empty", 8, 0, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBitmapRange(bm, tt.begin, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, mem.IsAligned(cap(got), mem.MemoryAlign))
		})
	}
}

func TestExtractBitmapRange_DoesNotAlias(t *testing.T) {
	bm := []byte{0xAA}
	got, err := ExtractBitmapRange(bm, 0, 8)
	require.NoError(t, err)
	got[0] = 0
	assert.Equal(t, byte(0xAA), bm[0])
}

func TestExtractBitmapRange_Errors(t *testing.T) {
	_, err := ExtractBitmapRange([]byte{0xFF}, 3, 4)
	assert.ErrorIs(t, err, fault.ErrLogic)

	_, err = ExtractBitmapRange([]byte{0xFF}, -8, 4)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}

// presence has rows 1, 3 and 6 null.
var presence = []byte{0b10110101}

func TestRecomputeVisibleNulls(t *testing.T) {
	deleted := roaring.BitmapOf(11, 14)

	got, nulls, err := RecomputeVisibleNulls(presence, deleted, 10, 0, 8, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b00101011}, got)
	assert.Equal(t, 2, nulls)
	assert.True(t, mem.IsAligned(cap(got), mem.MemoryAlign))
}

func TestRecomputeVisibleNulls_NoDeletes(t *testing.T) {
	got, nulls, err := RecomputeVisibleNulls(presence, roaring.New(), 0, 0, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, presence, got)
	assert.Equal(t, 3, nulls)

	got, nulls, err = RecomputeVisibleNulls(presence, nil, 0, 0, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, presence, got)
	assert.Equal(t, 3, nulls)
}

func TestRecomputeVisibleNulls_Offset(t *testing.T) {
	bm := []byte{0x00, 0b00000110}
	deleted := roaring.BitmapOf(1)

	got, nulls, err := RecomputeVisibleNulls(bm, deleted, 0, 8, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b00000010}, got)
	assert.Equal(t, 2, nulls)
}

func TestRecomputeVisibleNulls_CountMismatch(t *testing.T) {
	deleted := roaring.BitmapOf(11, 14)

	_, _, err := RecomputeVisibleNulls(presence, deleted, 10, 0, 8, 5)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)

	_, _, err = RecomputeVisibleNulls(presence, deleted, 10, 0, 8, 7)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}

func TestVisibleRows(t *testing.T) {
	deleted := roaring.BitmapOf(0, 3, 4, 9)

	assert.Equal(t, 6, VisibleRows(deleted, 0, 10))
	assert.Equal(t, 3, VisibleRows(deleted, 3, 5))
	assert.Equal(t, 4, VisibleRows(deleted, 5, 4))
	assert.Equal(t, 5, VisibleRows(nil, 2, 5))
	assert.Equal(t, 0, VisibleRows(deleted, 3, 0))
}

func nullableColumn(t testing.TB, rows int, null func(int) bool) column.Column {
	t.Helper()
	c, err := column.NewFixed(column.FormatVec, 4)
	require.NoError(t, err)
	for i := 0; i < rows; i++ {
		if null(i) {
			require.NoError(t, c.AppendNull())
			continue
		}
		require.NoError(t, c.Append([]byte{1, 2, 3, 4}))
	}
	return c
}

func TestNullsForRange(t *testing.T) {
	c := nullableColumn(t, 20, func(i int) bool { return i%4 == 0 })

	got, err := NullsForRange(c, nil, 0, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b11101110}, got.Bitmap)
	assert.Equal(t, 2, got.Count)

	got, err = NullsForRange(c, nil, 0, 16, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b00001110}, got.Bitmap)
	assert.Equal(t, 1, got.Count)

	deleted := roaring.BitmapOf(100, 101)
	got, err = NullsForRange(c, deleted, 100, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b00111011}, got.Bitmap)
	assert.Equal(t, 1, got.Count)

	_, err = NullsForRange(c, deleted, 100, 16, 8)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}

func TestNullsForRange_NoNulls(t *testing.T) {
	c := nullableColumn(t, 10, func(int) bool { return false })

	got, err := NullsForRange(c, nil, 0, 0, 10)
	require.NoError(t, err)
	assert.Nil(t, got.Bitmap)
	assert.Zero(t, got.Count)
}
