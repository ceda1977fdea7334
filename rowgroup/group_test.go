package rowgroup

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/mem"
)

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// vecInts builds a vectorized int32 column; nil entries are nulls.
func vecInts(t *testing.T, format column.Format, vals ...*int32) *column.FixedColumn {
	t.Helper()
	c, err := column.NewFixed(format, 4, column.WithTypeAlign(4))
	require.NoError(t, err)
	for _, v := range vals {
		if v == nil {
			require.NoError(t, c.AppendNull())
			continue
		}
		require.NoError(t, c.Append(int32Bytes(*v)))
	}
	return c
}

func varColumn(t *testing.T, format column.Format, align int, vals ...*string) *column.VarColumn {
	t.Helper()
	c, err := column.NewVariable(format, column.WithTypeAlign(align))
	require.NoError(t, err)
	for _, v := range vals {
		if v == nil {
			require.NoError(t, c.AppendNull())
			continue
		}
		require.NoError(t, c.Append([]byte(*v)))
	}
	return c
}

func i32(v int32) *int32   { return &v }
func str(s string) *string { return &s }

func record(t *testing.T, g *Group) ([]byte, Layout) {
	t.Helper()
	rec := NewRecorder(g.Format())
	buf, err := g.Buffer(rec.Stream, rec.Encoding)
	require.NoError(t, err)
	return buf, rec.Layout()
}

func requireAssertion(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected an assertion failure")
		assert.True(t, fault.IsAssertion(r))
	}()
	fn()
}

func TestNew_Errors(t *testing.T) {
	_, err := New(column.Format(9), nil)
	assert.ErrorIs(t, err, fault.ErrLogic)

	c := vecInts(t, column.FormatORC, i32(1))
	_, err = New(column.FormatVec, []column.Column{c})
	assert.ErrorIs(t, err, fault.ErrLogic)
}

func TestBuffer_VecNullableInts(t *testing.T) {
	c := vecInts(t, column.FormatVec, i32(1), nil, i32(3), nil, i32(5))
	g, err := New(column.FormatVec, []column.Column{c})
	require.NoError(t, err)

	buf, layout := record(t, g)
	require.Len(t, layout.Columns, 1)
	assert.Equal(t, []Stream{
		{Kind: StreamPresence, Rows: 5, Length: 8, Padding: 7},
		{Kind: StreamData, Rows: 3, Length: 24, Padding: 4},
	}, layout.Columns[0].Streams)
	assert.Len(t, buf, 32)
	assert.Equal(t, byte(0b10101), buf[0])
	assert.Equal(t, int32Bytes(3), buf[16:20])
	assert.Equal(t, -1, layout.Columns[0].Encoding.DataOriginLength)
}

func TestBuffer_ORCOffsetsPadding(t *testing.T) {
	c := varColumn(t, column.FormatORC, 8, str("ab"), nil, str("cde"))
	g, err := New(column.FormatORC, []column.Column{c})
	require.NoError(t, err)

	buf, layout := record(t, g)
	assert.Equal(t, []Stream{
		{Kind: StreamPresence, Rows: 3, Length: 1, Padding: 0},
		{Kind: StreamOffset, Rows: 2, Length: 15, Padding: 3},
		{Kind: StreamData, Rows: 2, Length: 5, Padding: 0},
	}, layout.Columns[0].Streams)
	require.Len(t, buf, 21)
	assert.Equal(t, []byte("abcde"), buf[16:])
	assert.Equal(t, int32Bytes(5), buf[9:13])
}

func TestBuffer_VecOffsetsCoverAllRows(t *testing.T) {
	c := varColumn(t, column.FormatVec, 1, str("ab"), nil, str("cde"))
	g, err := New(column.FormatVec, []column.Column{c})
	require.NoError(t, err)

	buf, layout := record(t, g)
	assert.Equal(t, []Stream{
		{Kind: StreamPresence, Rows: 3, Length: 8, Padding: 7},
		{Kind: StreamOffset, Rows: 3, Length: 16, Padding: 0},
		{Kind: StreamData, Rows: 2, Length: 8, Padding: 3},
	}, layout.Columns[0].Streams)
	require.Len(t, buf, 32)
	assert.Equal(t, int32Bytes(2), buf[16:20])
	assert.Equal(t, int32Bytes(5), buf[20:24])
}

func TestBuffer_NilSlotsAndNoNulls(t *testing.T) {
	a := vecInts(t, column.FormatVec, i32(7), i32(8))
	g, err := New(column.FormatVec, []column.Column{nil, a, nil})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Nil(t, g.Column(0))
	assert.Nil(t, g.Column(5))
	assert.Equal(t, 2, g.Rows())

	buf, layout := record(t, g)
	require.Len(t, layout.Columns, 1)
	assert.Equal(t, []Stream{{Kind: StreamData, Rows: 2, Length: 8, Padding: 0}}, layout.Columns[0].Streams)
	assert.Equal(t, append(int32Bytes(7), int32Bytes(8)...), buf)
}

func TestBuffer_EncodedStreamsAreNotPadded(t *testing.T) {
	c, err := column.NewVariable(column.FormatVec,
		column.WithEncoding(column.CompressZstd, 3),
		column.WithOffsetsEncoding(column.CompressZstd, 3),
	)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		require.NoError(t, c.Append([]byte("repetitive value")))
	}
	g, err := New(column.FormatVec, []column.Column{c})
	require.NoError(t, err)

	buf, layout := record(t, g)
	cl := layout.Columns[0]
	require.Len(t, cl.Streams, 2)
	for _, s := range cl.Streams {
		assert.Zero(t, s.Padding, s.Kind.String())
	}
	assert.Equal(t, cl.Size(), len(buf))
	assert.Equal(t, column.CompressZstd, cl.Encoding.Data.Kind)
	assert.Equal(t, mem.AlignUp(200*16, 8), cl.Encoding.DataOriginLength)
	assert.Equal(t, mem.AlignUp(201*4, 8), cl.Encoding.OffsetsOriginLength)
}

type invalidKind struct{ column.Column }

func (invalidKind) Kind() column.Kind { return column.KindInvalid }

func TestMeasure_InvalidKind(t *testing.T) {
	for _, format := range []column.Format{column.FormatORC, column.FormatVec} {
		c := vecInts(t, format, i32(1))
		g, err := New(format, []column.Column{invalidKind{c}})
		require.NoError(t, err)

		_, err = g.Measure(nil, nil)
		assert.ErrorIs(t, err, fault.ErrLogic)
		_, err = g.Buffer(nil, nil)
		assert.ErrorIs(t, err, fault.ErrLogic)
	}
}

type lostOffsets struct{ column.Column }

func (lostOffsets) Kind() column.Kind { return column.KindNonFixed }

func TestMeasure_MissingOffsetsStream(t *testing.T) {
	c := vecInts(t, column.FormatVec, i32(1))
	g, err := New(column.FormatVec, []column.Column{lostOffsets{c}})
	require.NoError(t, err)

	_, err = g.Measure(nil, nil)
	assert.ErrorIs(t, err, fault.ErrLogic)
}

func TestBuffer_Recombine(t *testing.T) {
	c := varColumn(t, column.FormatVec, 4, str("x"), nil, str("yz"))
	g, err := New(column.FormatVec, []column.Column{c})
	require.NoError(t, err)

	first, l1 := record(t, g)
	first = append([]byte(nil), first...)
	second, l2 := record(t, g)
	assert.Equal(t, first, second)
	assert.Equal(t, l1, l2)
}

func TestMeasure_SealsColumns(t *testing.T) {
	c := vecInts(t, column.FormatVec, i32(1))
	g, err := New(column.FormatVec, []column.Column{c})
	require.NoError(t, err)

	_, err = g.Measure(nil, nil)
	require.NoError(t, err)
	assert.True(t, c.Sealed())
	requireAssertion(t, func() { _ = c.Append(int32Bytes(2)) })
}

// randomGroup builds a group of mixed columns with random nulls.
func randomGroup(t testing.TB, rng *rand.Rand, format column.Format, encoded bool) *Group {
	t.Helper()
	rows := rng.Intn(40)
	encodings := []column.EncodingKind{column.NoEncoded}
	if encoded {
		encodings = append(encodings, column.CompressLZ4, column.CompressZstd, column.CompressZlib, column.CompressSnappy)
	}

	var cols []column.Column
	for i, n := 0, 1+rng.Intn(5); i < n; i++ {
		enc := column.WithEncoding(encodings[rng.Intn(len(encodings))], 1)
		var (
			c   column.Column
			err error
		)
		switch rng.Intn(3) {
		case 0:
			c, err = column.NewFixed(format, 1+rng.Intn(12), column.WithTypeAlign(1<<rng.Intn(4)), enc)
		case 1:
			c, err = column.NewVariable(format, column.WithTypeAlign(1<<rng.Intn(4)), enc)
		default:
			c, err = column.NewBitPacked(format, enc)
		}
		require.NoError(t, err)

		nullRate := rng.Intn(3)
		for r := 0; r < rows; r++ {
			if nullRate > 0 && rng.Intn(3) < nullRate {
				require.NoError(t, c.AppendNull())
				continue
			}
			v := make([]byte, c.TypeLength())
			if c.TypeLength() < 0 {
				v = make([]byte, rng.Intn(20))
			}
			if len(v) > 0 {
				v[0] = byte(rng.Intn(2))
			}
			require.NoError(t, c.Append(v))
		}
		cols = append(cols, c)
		if rng.Intn(4) == 0 {
			cols = append(cols, nil)
		}
	}
	g, err := New(format, cols)
	require.NoError(t, err)
	return g
}

func TestBuffer_ByteAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		format := column.FormatORC
		if i%2 == 1 {
			format = column.FormatVec
		}
		g := randomGroup(t, rng, format, true)

		total, err := g.Measure(nil, nil)
		require.NoError(t, err)

		buf, layout := record(t, g)
		require.Len(t, buf, total)
		assert.Equal(t, total, layout.Size())

		offset := 0
		for _, cl := range layout.Columns {
			for _, s := range cl.Streams {
				assert.GreaterOrEqual(t, s.Padding, 0)
				if format == column.FormatVec {
					assert.Less(t, s.Padding, mem.MemoryAlign)
					if s.Padding > 0 {
						assert.True(t, mem.IsAligned(s.Length, mem.MemoryAlign), "padded %s stream length %d", s.Kind, s.Length)
					}
				} else if s.Kind != StreamOffset {
					assert.Zero(t, s.Padding)
				}
				offset += s.Length
			}
		}
		assert.Equal(t, total, offset)
	}
}

func TestBuffer_VecStreamsStartAligned(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		g := randomGroup(t, rng, column.FormatVec, false)
		_, layout := record(t, g)

		offset := 0
		for _, cl := range layout.Columns {
			for _, s := range cl.Streams {
				assert.True(t, mem.IsAligned(offset, mem.MemoryAlign), "%s stream starts at %d", s.Kind, offset)
				offset += s.Length
			}
		}
	}
}

func TestPhysicalSizeAndToastCount(t *testing.T) {
	a := vecInts(t, column.FormatVec, i32(1), nil)
	b := varColumn(t, column.FormatVec, 1, str("abc"))
	require.NoError(t, b.AppendToast([]byte{0x01, 0, 0, 0, 3, 0, 0, 0}))

	g, err := New(column.FormatVec, []column.Column{a, nil, b})
	require.NoError(t, err)
	assert.Equal(t, a.PhysicalSize()+b.PhysicalSize(), g.PhysicalSize())
	assert.Equal(t, 1, g.ToastCount())

	_, layout := record(t, g)
	kinds := make([]StreamKind, 0)
	for _, s := range layout.Columns[1].Streams {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []StreamKind{StreamToast, StreamOffset, StreamData}, kinds)
	assert.Equal(t, 1, layout.Columns[1].Streams[0].Rows)
	assert.Equal(t, 8, layout.Columns[1].Streams[0].Length)
}

func TestStreamKind_Text(t *testing.T) {
	for _, k := range []StreamKind{StreamPresence, StreamToast, StreamOffset, StreamData} {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got StreamKind
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, k, got)
	}
	var k StreamKind
	assert.Error(t, k.UnmarshalText([]byte("footer")))
	assert.Equal(t, "stream(9)", StreamKind(9).String())
}
