// Package batch slices presence bitmaps for vectorized output batches.
//
// A presence bitmap has bit i set when row i holds a value. Batches start
// on byte boundaries, so a range can be copied byte-wise; rows past the
// stored bitmap read as null. When some rows are deleted, the bitmap is
// recomputed over the visible rows only.
package batch
