package column

import (
	"errors"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/fault"
)

// encodeStream applies enc to raw. When the codec cannot shrink the input
// into its bound the stream stays raw and the returned encoding is
// NoEncoded.
func encodeStream(reg *codec.Registry, raw []byte, enc Encoding) ([]byte, Encoding, error) {
	if !enc.Encoded() {
		return raw, enc, nil
	}
	id, err := enc.Kind.CodecID()
	if err != nil {
		return nil, enc, err
	}
	c, err := reg.Lookup(id)
	if err != nil {
		return nil, enc, err
	}
	out, err := codec.CompressAll(c, raw, enc.Level)
	if errors.Is(err, codec.ErrIncompressible) {
		return raw, Encoding{Kind: NoEncoded}, nil
	}
	if err != nil {
		return nil, enc, err
	}
	return out, enc, nil
}

// DecodeStream reverses a stream encoding. originLen bounds the decoded
// size; a vectorized layout reports it rounded up to the alignment, so the
// decoded stream may be shorter.
func DecodeStream(reg *codec.Registry, stream []byte, enc Encoding, originLen int) ([]byte, error) {
	if !enc.Encoded() {
		return stream, nil
	}
	if originLen < 0 {
		return nil, fault.Logicf("encoded %s stream without origin length", enc.Kind)
	}
	id, err := enc.Kind.CodecID()
	if err != nil {
		return nil, err
	}
	c, err := reg.Lookup(id)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, originLen)
	n, err := c.Decompress(dst, stream)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
