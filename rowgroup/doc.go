// Package rowgroup lays out the columns of a row group into one contiguous
// buffer and reads them back.
//
// Assembly is two-phase. Measure walks every present column's streams
// (presence bitmap, toast indexes, offsets, data), reports each one to a
// StreamVisitor and sums their padded lengths. Buffer then allocates exactly
// that many bytes and copies the streams in the same order. Any difference
// between the measured and the written byte count is an assertion failure.
//
// Padding depends on the format:
//
//   - FormatVec pads every stream to the group alignment, except streams
//     that are compressed.
//   - FormatORC only pads the offsets stream, so that the data stream
//     following it starts on the column's type alignment.
//
// The external toast payloads of all columns are combined into one arena in
// column order, without gaps.
package rowgroup
