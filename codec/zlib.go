package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/hupe1980/paxcol/fault"
)

// zlibLevel treats level 0 as 1 and clamps to the valid range.
func zlibLevel(level int) int {
	switch {
	case level <= 0:
		return zlib.BestSpeed
	case level > zlib.BestCompression:
		return zlib.BestCompression
	default:
		return level
	}
}

// ZlibCodec is zlib (deflate) compression.
type ZlibCodec struct{}

func (ZlibCodec) ID() ID       { return Zlib }
func (ZlibCodec) Name() string { return "zlib" }

// CompressBound mirrors zlib's compressBound.
func (ZlibCodec) CompressBound(n int) int {
	return n + n>>12 + n>>14 + n>>25 + 13
}

func (ZlibCodec) Compress(dst, src []byte, level int) (int, error) {
	var buf bytes.Buffer
	buf.Grow(len(dst))

	w, err := zlib.NewWriterLevel(&buf, zlibLevel(level))
	if err != nil {
		return 0, fault.Compressionf(err, "zlib: create writer")
	}
	if _, err := w.Write(src); err != nil {
		return 0, fault.Compressionf(err, "zlib: compress %d bytes", len(src))
	}
	if err := w.Close(); err != nil {
		return 0, fault.Compressionf(err, "zlib: flush")
	}
	if buf.Len() > len(dst) {
		return 0, ErrIncompressible
	}
	return copy(dst, buf.Bytes()), nil
}

func (ZlibCodec) Decompress(dst, src []byte) (int, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, fault.Compressionf(err, "zlib: read header")
	}
	defer r.Close()

	// A short output is fine only when the stream ends cleanly, which for
	// zlib includes a verified checksum.
	n := 0
	for n < len(dst) {
		m, err := r.Read(dst[n:])
		n += m
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fault.Compressionf(err, "zlib: decompress %d bytes", len(src))
		}
	}

	// dst is full; any remaining output means it was too small.
	var extra [1]byte
	for {
		m, err := r.Read(extra[:])
		if m > 0 {
			return 0, fault.Compressionf(nil, "zlib: output exceeds destination %d", len(dst))
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fault.Compressionf(err, "zlib: decompress %d bytes", len(src))
		}
	}
}
