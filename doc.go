// Package paxcol writes and reads PAX row groups: batches of rows stored
// column by column in one contiguous buffer.
//
// # Quick Start
//
//	schema, _ := paxcol.NewSchema(
//	    paxcol.Field{Name: "id", Width: 8, TypeAlign: 8},
//	    paxcol.Field{Name: "body", Width: -1, TypeAlign: 4, Storage: toast.Extended},
//	)
//	w, _ := paxcol.NewWriter(column.FormatVec, schema)
//	_ = w.AppendRow([][]byte{id, body})
//	_ = w.AppendRow([][]byte{id2, nil}) // nil is a null
//	stripe, _ := w.Flush(ctx)
//
//	r, _ := paxcol.OpenReader(ctx, stripe, schema)
//	v, null, _ := r.Value(ctx, 1, 0)
//
// # Formats
//
// column.FormatORC omits null rows from the data streams; the position of a
// row is its index minus the nulls before it. column.FormatVec keeps a
// placeholder for every row, so positions equal row indexes, and pads every
// raw stream to the memory alignment.
//
// # Toasting
//
// Large variable-width values are compressed inline or moved to an external
// arena that is flushed alongside the stripe. The decision follows the
// field's toast.StorageClass and the writer's toast.Config.
//
// # Errors
//
// Failures are classified by ErrOutOfRange, ErrLogic, ErrCompression and
// ErrUnsupportedCodec; match them with errors.Is. API misuse, such as
// flushing a Writer twice, panics with an assertion failure.
package paxcol
