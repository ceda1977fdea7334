package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paxcol/fault"
)

func TestBuffer_Write(t *testing.T) {
	a := NewBuffer(8)

	require.NoError(t, a.Write([]byte{1, 2, 3}))
	require.NoError(t, a.WriteZero(2))
	assert.Equal(t, 5, a.Used())
	assert.Equal(t, 3, a.Available())

	off, err := a.Alloc(3)
	require.NoError(t, err)
	assert.Equal(t, 5, off)
	assert.Equal(t, 0, a.Available())

	assert.ErrorIs(t, a.Write([]byte{9}), ErrArenaFull)
	assert.ErrorIs(t, a.WriteZero(1), ErrArenaFull)
	_, err = a.Alloc(1)
	assert.ErrorIs(t, err, ErrArenaFull)

	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, a.Bytes())
}

func TestBuffer_Get(t *testing.T) {
	a := Wrap([]byte("hello world"))

	v, err := a.Get(6, 5)
	require.NoError(t, err)
	assert.Equal(t, "world", string(v))
	assert.Equal(t, 5, cap(v))

	_, err = a.Get(8, 5)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}

func TestBuffer_Reset(t *testing.T) {
	a := NewBuffer(4)
	require.NoError(t, a.Write([]byte{7, 7}))
	a.Reset()

	assert.Equal(t, 0, a.Used())
	assert.Equal(t, 4, a.Available())
	assert.Equal(t, []byte{0, 0, 0, 0}, a.buf)
}

func TestConcatPartition(t *testing.T) {
	parts := [][]byte{[]byte("aaa"), nil, []byte("bb"), []byte("c")}
	a := Concat(parts)
	assert.Equal(t, "aaabbc", string(a.Bytes()))
	assert.Equal(t, 0, a.Available())

	got, err := Partition(a.Bytes(), []int{3, 0, 2, 1})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "aaa", string(got[0]))
	assert.Nil(t, got[1])
	assert.Equal(t, "bb", string(got[2]))
	assert.Equal(t, "c", string(got[3]))

	_, err = Partition(a.Bytes(), []int{3, 4})
	assert.ErrorIs(t, err, fault.ErrOutOfRange)

	_, err = Partition(a.Bytes(), []int{-1})
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}
