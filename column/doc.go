// Package column implements single-attribute storage for a row group.
//
// A column is either fixed width, variable width or bit packed, and uses one
// of two layouts:
//
//   - FormatVec: null rows keep a placeholder slot in the data array, so a
//     position is the row index.
//   - FormatORC: null rows are omitted from the data array, so a position is
//     the row index minus the nulls before it.
//
// Columns are appended in row order, sealed, and then read. Reading an
// unsealed column or mutating a sealed one panics with an assertion failure
// (see package fault); bad positions return fault.ErrOutOfRange.
//
// Read-path columns are built from decoded streams with OpenFixed,
// OpenVariable and OpenBitPacked and are read-only.
package column
