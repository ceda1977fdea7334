package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsMarkSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"out of range", OutOfRangef("row %d", 7), ErrOutOfRange},
		{"logic", Logicf("kind %d", 3), ErrLogic},
		{"unsupported codec", UnsupportedCodecf("codec %d", 9), ErrUnsupportedCodec},
		{"compression", Compressionf(errors.New("corrupt"), "lz4"), ErrCompression},
		{"compression no cause", Compressionf(nil, "short"), ErrCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, errors.Is(tt.err, tt.target))
			assert.True(t, Is(tt.err, tt.target))
		})
	}
}

func TestCompressionfKeepsCause(t *testing.T) {
	cause := errors.New("corrupt block")
	err := Compressionf(cause, "zstd: decode")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "corrupt block")
	assert.Contains(t, err.Error(), "zstd: decode")
}

func TestSentinelsAreDistinct(t *testing.T) {
	err := UnsupportedCodecf("codec %d", 42)
	assert.False(t, errors.Is(err, ErrCompression))
	assert.False(t, errors.Is(err, ErrLogic))
	assert.Contains(t, err.Error(), "codec 42")
}

func TestAssertf(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.True(t, IsAssertion(r))
	}()
	Assertf("column %d is not sealed", 1)
}

func TestIsAssertionRejectsOtherValues(t *testing.T) {
	assert.False(t, IsAssertion(nil))
	assert.False(t, IsAssertion("boom"))
	assert.False(t, IsAssertion(Logicf("not an assertion")))
}

func TestWrapf(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "column %d", 1))

	err := Wrapf(OutOfRangef("row 9"), "column %d", 3)
	require.Error(t, err)
	assert.True(t, Is(err, ErrOutOfRange))
	assert.Contains(t, err.Error(), "column 3")
}
