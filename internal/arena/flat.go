package arena

import (
	"errors"

	"github.com/hupe1980/paxcol/fault"
)

var (
	ErrArenaFull = errors.New("arena is full")
)

// Buffer is an owned, fixed-capacity byte region with a write cursor.
//
// The row-group assembler allocates one Buffer of the exact measured size
// and fills it front to back; after filling, Used equals the capacity and
// Available is zero.
type Buffer struct {
	buf  []byte
	used int
}

// NewBuffer creates a zeroed Buffer with the given capacity.
func NewBuffer(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	return &Buffer{buf: make([]byte, size)}
}

// NewBufferFrom wraps an existing allocation as an empty Buffer.
// The slice length is the capacity; its contents are overwritten by writes.
func NewBufferFrom(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Wrap wraps an existing byte slice as a completely filled Buffer.
func Wrap(buf []byte) *Buffer {
	return &Buffer{buf: buf, used: len(buf)}
}

// Write appends p at the cursor.
// It returns ErrArenaFull if p does not fit.
func (a *Buffer) Write(p []byte) error {
	if len(p) > a.Available() {
		return ErrArenaFull
	}
	a.used += copy(a.buf[a.used:], p)
	return nil
}

// WriteZero appends n zero bytes at the cursor.
func (a *Buffer) WriteZero(n int) error {
	if n > a.Available() {
		return ErrArenaFull
	}
	clear(a.buf[a.used : a.used+n])
	a.used += n
	return nil
}

// Alloc reserves size bytes at the cursor and returns their offset.
func (a *Buffer) Alloc(size int) (int, error) {
	if size > a.Available() {
		return 0, ErrArenaFull
	}
	off := a.used
	a.used += size
	return off, nil
}

// Get returns the view [offset, offset+size) of the written region.
func (a *Buffer) Get(offset, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+size > a.used {
		return nil, fault.OutOfRangef("arena view [%d, %d) exceeds %d used bytes", offset, offset+size, a.used)
	}
	return a.buf[offset : offset+size : offset+size], nil
}

// Bytes returns the written region.
func (a *Buffer) Bytes() []byte {
	return a.buf[:a.used]
}

// Used returns the number of written bytes.
func (a *Buffer) Used() int {
	return a.used
}

// Available returns the number of bytes left before the buffer is full.
func (a *Buffer) Available() int {
	return len(a.buf) - a.used
}

// Capacity returns the total size of the buffer.
func (a *Buffer) Capacity() int {
	return len(a.buf)
}

// Reset rewinds the cursor and zeroes the written region.
func (a *Buffer) Reset() {
	clear(a.buf[:a.used])
	a.used = 0
}

// Concat copies parts back to back into a single Buffer sized to fit.
func Concat(parts [][]byte) *Buffer {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	a := NewBuffer(total)
	for _, p := range parts {
		a.used += copy(a.buf[a.used:], p)
	}
	return a
}

// Partition splits buf into consecutive slices of the given sizes.
// A zero size yields a nil slice. Each slice is capped so it cannot grow
// into its neighbour.
func Partition(buf []byte, sizes []int) ([][]byte, error) {
	out := make([][]byte, len(sizes))
	curr := 0
	for i, size := range sizes {
		if size < 0 {
			return nil, fault.OutOfRangef("partition %d has negative size %d", i, size)
		}
		if size == 0 {
			continue
		}
		if curr+size > len(buf) {
			return nil, fault.OutOfRangef("partition %d [%d, %d) exceeds arena size %d", i, curr, curr+size, len(buf))
		}
		out[i] = buf[curr : curr+size : curr+size]
		curr += size
	}
	return out, nil
}
