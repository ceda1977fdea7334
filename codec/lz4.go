package codec

import (
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/paxcol/fault"
)

// LZ4Codec is LZ4 block compression. The level is ignored.
type LZ4Codec struct{}

func (LZ4Codec) ID() ID       { return LZ4 }
func (LZ4Codec) Name() string { return "lz4" }

func (LZ4Codec) CompressBound(n int) int {
	return lz4.CompressBlockBound(n)
}

func (LZ4Codec) Compress(dst, src []byte, _ int) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		if len(dst) < lz4.CompressBlockBound(len(src)) {
			return 0, ErrIncompressible
		}
		return 0, fault.Compressionf(err, "lz4: compress %d bytes", len(src))
	}
	if n == 0 {
		return 0, ErrIncompressible
	}
	return n, nil
}

func (LZ4Codec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fault.Compressionf(err, "lz4: decompress %d bytes into %d", len(src), len(dst))
	}
	return n, nil
}
