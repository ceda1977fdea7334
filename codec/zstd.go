package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/paxcol/fault"
)

// Encoder pools per speed level; zstd.EncoderLevel values are small ints.
var (
	zstdEncoderPools [zstd.SpeedBestCompression + 1]sync.Pool
	zstdDecoderPool  sync.Pool
)

func getZstdEncoder(level zstd.EncoderLevel) (*zstd.Encoder, error) {
	if v := zstdEncoderPools[level].Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
}

func putZstdEncoder(level zstd.EncoderLevel, enc *zstd.Encoder) {
	zstdEncoderPools[level].Put(enc)
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// zstdLevel maps a zstd command-line level to an encoder speed.
// Level 0 selects the default speed.
func zstdLevel(level int) zstd.EncoderLevel {
	if level <= 0 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(level)
}

// ZstdCodec is Zstandard compression.
type ZstdCodec struct{}

func (ZstdCodec) ID() ID       { return Zstd }
func (ZstdCodec) Name() string { return "zstd" }

// CompressBound mirrors ZSTD_COMPRESSBOUND.
func (ZstdCodec) CompressBound(n int) int {
	bound := n + n>>8
	if n < 128<<10 {
		bound += (128<<10 - n) >> 11
	}
	return bound
}

func (ZstdCodec) Compress(dst, src []byte, level int) (int, error) {
	lvl := zstdLevel(level)
	enc, err := getZstdEncoder(lvl)
	if err != nil {
		return 0, fault.Compressionf(err, "zstd: create encoder")
	}
	defer putZstdEncoder(lvl, enc)

	// Capacity is pinned to len(dst); growing past it means a reallocation.
	out := enc.EncodeAll(src, dst[:0:len(dst)])
	if len(out) > len(dst) {
		return 0, ErrIncompressible
	}
	return len(out), nil
}

func (ZstdCodec) Decompress(dst, src []byte) (int, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return 0, fault.Compressionf(err, "zstd: create decoder")
	}
	defer putZstdDecoder(dec)

	out, err := dec.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return 0, fault.Compressionf(err, "zstd: decompress %d bytes", len(src))
	}
	if len(out) > len(dst) {
		return 0, fault.Compressionf(nil, "zstd: output %d bytes exceeds destination %d", len(out), len(dst))
	}
	return len(out), nil
}
