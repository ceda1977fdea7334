// Package toast decides how oversized values are stored and reconstructs
// them on read.
//
// A value is kept plain, compressed inline behind an 8-byte header, or moved
// to the column's external buffer with a 24-byte header left inline. The
// decision is driven by the column's StorageClass and an explicit Config.
//
// Compression is only accepted when it saves more than two bytes, counting
// the header when one is written.
package toast
