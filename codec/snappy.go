package codec

import (
	"github.com/klauspost/compress/s2"

	"github.com/hupe1980/paxcol/fault"
)

// SnappyCodec is Snappy block compression, produced by the s2 encoder in
// its Snappy-compatible mode. The level is ignored.
type SnappyCodec struct{}

func (SnappyCodec) ID() ID       { return Snappy }
func (SnappyCodec) Name() string { return "snappy" }

func (SnappyCodec) CompressBound(n int) int {
	bound := s2.MaxEncodedLen(n)
	if bound < 0 {
		return n
	}
	return bound
}

func (c SnappyCodec) Compress(dst, src []byte, _ int) (int, error) {
	if len(dst) < c.CompressBound(len(src)) {
		// EncodeSnappy would allocate instead of failing.
		out := s2.EncodeSnappy(nil, src)
		if len(out) > len(dst) {
			return 0, ErrIncompressible
		}
		return copy(dst, out), nil
	}
	out := s2.EncodeSnappy(dst, src)
	return len(out), nil
}

func (SnappyCodec) Decompress(dst, src []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return 0, fault.Compressionf(err, "snappy: read length")
	}
	if n > len(dst) {
		return 0, fault.Compressionf(nil, "snappy: output %d bytes exceeds destination %d", n, len(dst))
	}
	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, fault.Compressionf(err, "snappy: decompress %d bytes", len(src))
	}
	return len(out), nil
}
