// Package bitset provides Bitmap8, the byte-packed presence bitmap used for
// column null tracking.
//
// Layout:
//   - Bit i lives in byte i/8 at bit position i%8 (least significant first)
//   - A set bit means the row holds a value; a clear bit means NULL
//   - The serialized form is the minimal number of bytes for the row count
//
// Bitmap8 is not safe for concurrent mutation. Once a column is sealed its
// bitmap is only read.
package bitset
