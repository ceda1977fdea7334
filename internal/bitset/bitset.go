package bitset

import (
	"math/bits"
)

// BitsToBytes returns the minimal number of bytes holding n bits.
func BitsToBytes(n int) int {
	return (n + 7) >> 3
}

// Bitmap8 is a growable byte-packed bitmap.
type Bitmap8 struct {
	raw []byte
	n   int // logical length in bits
}

// New creates an empty Bitmap8 with room for capacity bits.
func New(capacity int) *Bitmap8 {
	if capacity < 0 {
		capacity = 0
	}
	return &Bitmap8{raw: make([]byte, 0, BitsToBytes(capacity))}
}

// FromBytes wraps serialized bitmap bytes covering n bits.
// The bytes are not copied.
func FromBytes(raw []byte, n int) *Bitmap8 {
	return &Bitmap8{raw: raw, n: n}
}

// grow ensures the bitmap holds at least n bits.
func (b *Bitmap8) grow(n int) {
	if n <= b.n {
		return
	}
	need := BitsToBytes(n)
	for len(b.raw) < need {
		b.raw = append(b.raw, 0)
	}
	b.n = n
}

// Append adds one bit at the end.
func (b *Bitmap8) Append(v bool) {
	i := b.n
	b.grow(i + 1)
	if v {
		b.raw[i>>3] |= 1 << (i & 7)
	}
}

// AppendN adds n copies of v at the end.
func (b *Bitmap8) AppendN(v bool, n int) {
	if n <= 0 {
		return
	}
	start := b.n
	b.grow(start + n)
	if !v {
		return
	}
	for i := start; i < start+n; i++ {
		b.raw[i>>3] |= 1 << (i & 7)
	}
}

// Set sets bit i, growing the bitmap if needed.
func (b *Bitmap8) Set(i int) {
	b.grow(i + 1)
	b.raw[i>>3] |= 1 << (i & 7)
}

// Clear clears bit i, growing the bitmap if needed.
func (b *Bitmap8) Clear(i int) {
	b.grow(i + 1)
	b.raw[i>>3] &^= 1 << (i & 7)
}

// Test reports whether bit i is set. Bits beyond the stored bytes read as
// clear.
func (b *Bitmap8) Test(i int) bool {
	if i < 0 {
		return false
	}
	idx := i >> 3
	if idx >= len(b.raw) {
		return false
	}
	return b.raw[idx]&(1<<(i&7)) != 0
}

// Len returns the logical length in bits.
func (b *Bitmap8) Len() int {
	return b.n
}

// CountOnes returns the number of set bits in [start, start+n).
func (b *Bitmap8) CountOnes(start, n int) int {
	if n <= 0 {
		return 0
	}
	end := start + n
	count := 0

	// Leading partial byte
	for start < end && start&7 != 0 {
		if b.Test(start) {
			count++
		}
		start++
	}

	// Whole bytes
	for start+8 <= end {
		idx := start >> 3
		if idx >= len(b.raw) {
			return count
		}
		count += bits.OnesCount8(b.raw[idx])
		start += 8
	}

	// Trailing partial byte
	for start < end {
		if b.Test(start) {
			count++
		}
		start++
	}
	return count
}

// Count returns the number of set bits over the logical length.
func (b *Bitmap8) Count() int {
	return b.CountOnes(0, b.n)
}

// MinimalStoredBytes returns the serialized size for n bits.
func (b *Bitmap8) MinimalStoredBytes(n int) int {
	return BitsToBytes(n)
}

// Bytes returns the serialized bitmap: the minimal bytes covering Len bits.
// The returned slice aliases the bitmap.
func (b *Bitmap8) Bytes() []byte {
	need := BitsToBytes(b.n)
	if need > len(b.raw) {
		need = len(b.raw)
	}
	return b.raw[:need]
}

// Raw returns all stored bytes, which may exceed the minimal size.
func (b *Bitmap8) Raw() []byte {
	return b.raw
}

// Clone returns a deep copy.
func (b *Bitmap8) Clone() *Bitmap8 {
	raw := make([]byte, len(b.raw))
	copy(raw, b.raw)
	return &Bitmap8{raw: raw, n: b.n}
}
