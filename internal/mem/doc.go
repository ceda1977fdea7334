// Package mem provides memory allocation and alignment utilities.
//
// # Aligned Allocation
//
// AllocAligned returns byte slices whose first element sits on a 64-byte
// boundary, so serialized row groups can be handed to vectorized readers
// without an extra copy.
//
// # Alignment Arithmetic
//
// AlignUp and Padding implement the rounding used by the stream layout:
// fixed MemoryAlign boundaries in the vectorized layout and per-type
// alignment for offsets streams in the ORC-like layout.
package mem
