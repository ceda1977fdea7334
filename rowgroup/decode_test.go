package rowgroup

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
)

func specFor(c column.Column) ColumnSpec {
	if c.Kind() == column.KindBitPacked || c.Kind() == column.KindVecBitPacked {
		return ColumnSpec{BitPacked: true}
	}
	return ColumnSpec{TypeLength: c.TypeLength(), TypeAlign: c.TypeAlign(), Kind: c.Kind()}
}

func TestDecode_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		format := column.FormatORC
		if i%2 == 1 {
			format = column.FormatVec
		}
		t.Run(fmt.Sprintf("%s/%d", format, i), func(t *testing.T) {
			g := randomGroup(t, rng, format, true)
			buf, layout := record(t, g)

			var (
				want  []column.Column
				specs []ColumnSpec
			)
			for _, c := range g.Columns() {
				if c != nil {
					want = append(want, c)
					specs = append(specs, specFor(c))
				}
			}

			got, err := Decode(buf, layout, specs)
			require.NoError(t, err)
			require.Len(t, got, len(want))

			for ci, w := range want {
				c := got[ci]
				require.Equal(t, w.Kind(), c.Kind())
				require.Equal(t, w.Rows(), c.Rows())
				require.Equal(t, w.NonNullRows(), c.NonNullRows())
				for row := 0; row < w.Rows(); row++ {
					wv, wnull, err := column.ValueAt(w, row)
					require.NoError(t, err)
					gv, gnull, err := column.ValueAt(c, row)
					require.NoError(t, err)
					assert.Equal(t, wnull, gnull, "column %d row %d", ci, row)
					if !wnull {
						assert.Equal(t, wv, gv, "column %d row %d", ci, row)
					}
				}
			}
		})
	}
}

func TestDecode_Skip(t *testing.T) {
	a := vecInts(t, column.FormatORC, i32(1), nil, i32(3))
	b := varColumn(t, column.FormatORC, 4, str("ab"), str("cde"))
	g, err := New(column.FormatORC, []column.Column{a, b})
	require.NoError(t, err)
	buf, layout := record(t, g)

	got, err := Decode(buf, layout, []ColumnSpec{{Skip: true}, {TypeLength: -1, TypeAlign: 4}})
	require.NoError(t, err)
	assert.Nil(t, got[0])

	v, err := got[1].BufferAt(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("cde"), v)
}

func TestDecode_Errors(t *testing.T) {
	a := vecInts(t, column.FormatVec, i32(1), nil, i32(3))
	g, err := New(column.FormatVec, []column.Column{a})
	require.NoError(t, err)
	buf, layout := record(t, g)

	_, err = Decode(buf, layout, nil)
	assert.ErrorIs(t, err, fault.ErrLogic)

	_, err = Decode(buf[:len(buf)-1], layout, []ColumnSpec{{TypeLength: 4, TypeAlign: 4}})
	assert.ErrorIs(t, err, fault.ErrOutOfRange)

	_, err = Decode(buf, layout, []ColumnSpec{{TypeLength: 8, TypeAlign: 8}})
	assert.ErrorIs(t, err, fault.ErrOutOfRange)

	_, err = Decode(buf, layout, []ColumnSpec{{TypeLength: -1}})
	assert.ErrorIs(t, err, fault.ErrLogic)
}
