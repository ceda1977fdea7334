package mem

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)
		assert.Equal(t, size, cap(buf))

		ptr := unsafe.Pointer(&buf[0])
		addr := uintptr(ptr)
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)

		for _, b := range buf {
			assert.Zero(t, b)
		}
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{7, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{5, 4, 8},
		{5, 1, 5},
		{5, 0, 5},
		{7, 3, 9},
		{12, 2, 12},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.n, tt.align), func(t *testing.T) {
			assert.Equal(t, tt.want, AlignUp(tt.n, tt.align))
			assert.Equal(t, tt.want-tt.n, Padding(tt.n, tt.align))
			assert.True(t, IsAligned(AlignUp(tt.n, tt.align), tt.align))
		})
	}
}

func BenchmarkAllocAligned(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = AllocAligned(size)
			}
		})
	}
}
