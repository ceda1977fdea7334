package mem

import (
	"unsafe"
)

// Alignment is the base address alignment of AllocAligned buffers.
const Alignment = 64

// MemoryAlign is the stream boundary used by the vectorized layout.
const MemoryAlign = 8

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte is 64-byte aligned.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	// Cap the slice so appends never spill into the slack.
	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// AlignUp rounds n up to the next multiple of align.
// An align of 0 or 1 leaves n unchanged.
func AlignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	if align&(align-1) == 0 {
		return (n + align - 1) &^ (align - 1)
	}
	return (n + align - 1) / align * align
}

// Padding returns the number of zero bytes needed after n bytes to reach
// the next multiple of align.
func Padding(n, align int) int {
	return AlignUp(n, align) - n
}

// IsAligned reports whether n is a multiple of align.
func IsAligned(n, align int) bool {
	return align <= 1 || n%align == 0
}
