package toast

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/conv"
)

// Kind is the representation chosen for a value.
type Kind uint8

const (
	KindPlain Kind = iota
	KindCompressed
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCompressed:
		return "compressed"
	case KindExternal:
		return "external"
	default:
		return fmt.Sprintf("toast(%d)", uint8(k))
	}
}

const (
	tagCompressed = 0x01
	tagExternal   = 0x02

	// CompressedHeaderSize precedes inline compressed bytes:
	// tag, codec, two zero bytes, original size (uint32).
	CompressedHeaderSize = 8

	// ExternalHeaderSize is the inline pointer to an external payload:
	// tag, codec, two zero bytes, stored size (uint32), original size
	// (uint64), offset into the column's external buffer (uint64).
	ExternalHeaderSize = 24

	// minSaving is the number of bytes compression must save beyond the
	// header before it is accepted.
	minSaving = 2
)

// Value is the outcome of a toast decision.
type Value struct {
	Kind         Kind
	Codec        codec.ID
	OriginalSize int
	// Data is the plain value or the compressed bytes for KindCompressed.
	Data []byte
	// Payload is the external bytes for KindExternal, possibly compressed.
	Payload []byte
}

// Encode returns the inline form of v. offset is the payload position in
// the column's external buffer and is ignored for other kinds.
func (v Value) Encode(offset int) ([]byte, error) {
	switch v.Kind {
	case KindPlain:
		return v.Data, nil
	case KindCompressed:
		orig, err := conv.IntToUint32(v.OriginalSize)
		if err != nil {
			return nil, err
		}
		out := make([]byte, CompressedHeaderSize+len(v.Data))
		out[0] = tagCompressed
		out[1] = byte(v.Codec)
		binary.LittleEndian.PutUint32(out[4:], orig)
		copy(out[CompressedHeaderSize:], v.Data)
		return out, nil
	case KindExternal:
		stored, err := conv.IntToUint32(len(v.Payload))
		if err != nil {
			return nil, err
		}
		if offset < 0 {
			return nil, fault.OutOfRangef("negative external offset %d", offset)
		}
		out := make([]byte, ExternalHeaderSize)
		out[0] = tagExternal
		out[1] = byte(v.Codec)
		binary.LittleEndian.PutUint32(out[4:], stored)
		binary.LittleEndian.PutUint64(out[8:], uint64(v.OriginalSize))
		binary.LittleEndian.PutUint64(out[16:], uint64(offset))
		return out, nil
	default:
		return nil, fault.Logicf("unknown toast kind %d", v.Kind)
	}
}

// Header is the parsed inline form of a toasted value.
type Header struct {
	Kind         Kind
	Codec        codec.ID
	OriginalSize int
	StoredSize   int
	// Offset is the payload position in the external buffer.
	Offset int
	// Data is the inline compressed bytes for KindCompressed.
	Data []byte
}

// ParseHeader decodes the inline form written by Value.Encode.
func ParseHeader(b []byte) (Header, error) {
	if len(b) == 0 {
		return Header{}, fault.OutOfRangef("empty toast value")
	}
	switch b[0] {
	case tagCompressed:
		if len(b) < CompressedHeaderSize {
			return Header{}, fault.OutOfRangef("compressed toast header needs %d bytes, got %d", CompressedHeaderSize, len(b))
		}
		return Header{
			Kind:         KindCompressed,
			Codec:        codec.ID(b[1]),
			OriginalSize: int(binary.LittleEndian.Uint32(b[4:])),
			StoredSize:   len(b) - CompressedHeaderSize,
			Data:         b[CompressedHeaderSize:],
		}, nil
	case tagExternal:
		if len(b) != ExternalHeaderSize {
			return Header{}, fault.OutOfRangef("external toast header needs %d bytes, got %d", ExternalHeaderSize, len(b))
		}
		orig, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(b[8:]))
		if err != nil {
			return Header{}, err
		}
		off, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(b[16:]))
		if err != nil {
			return Header{}, err
		}
		return Header{
			Kind:         KindExternal,
			Codec:        codec.ID(b[1]),
			StoredSize:   int(binary.LittleEndian.Uint32(b[4:])),
			OriginalSize: orig,
			Offset:       off,
		}, nil
	default:
		return Header{}, fault.Logicf("unknown toast tag 0x%02x", b[0])
	}
}

// RawSize returns the reconstructed size of a toasted value.
func RawSize(b []byte) (int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return 0, err
	}
	return h.OriginalSize, nil
}

// Make decides the representation of value under class and cfg.
func Make(value []byte, class StorageClass, cfg Config) (Value, error) {
	plain := Value{Kind: KindPlain, OriginalSize: len(value), Data: value}
	if !cfg.Enabled {
		return plain, nil
	}

	switch class {
	case Plain:
		return plain, nil

	case Main:
		if len(value) < cfg.MinCompressSize {
			return plain, nil
		}
		compressed, ok, err := compress(value, cfg, CompressedHeaderSize)
		if err != nil || !ok {
			return plain, err
		}
		return Value{Kind: KindCompressed, Codec: cfg.Codec, OriginalSize: len(value), Data: compressed}, nil

	case External:
		if len(value) < cfg.MinExternalSize {
			return plain, nil
		}
		return Value{Kind: KindExternal, Codec: codec.Invalid, OriginalSize: len(value), Payload: value}, nil

	case Extended:
		var (
			compressed []byte
			ok         bool
			err        error
		)
		if len(value) >= cfg.MinCompressSize {
			compressed, ok, err = compress(value, cfg, 0)
			if err != nil {
				return plain, err
			}
		}
		inline := len(value)
		if ok {
			inline = CompressedHeaderSize + len(compressed)
		}
		if inline >= cfg.MinExternalSize {
			if ok {
				return Value{Kind: KindExternal, Codec: cfg.Codec, OriginalSize: len(value), Payload: compressed}, nil
			}
			return Value{Kind: KindExternal, Codec: codec.Invalid, OriginalSize: len(value), Payload: value}, nil
		}
		if ok && accepted(len(compressed), CompressedHeaderSize, len(value)) {
			return Value{Kind: KindCompressed, Codec: cfg.Codec, OriginalSize: len(value), Data: compressed}, nil
		}
		return plain, nil

	default:
		return plain, fault.Logicf("unknown storage class %d", class)
	}
}

// accepted is the compression acceptance rule.
func accepted(stored, header, original int) bool {
	return stored+header < original-minSaving
}

// compress runs the configured codec and applies the acceptance rule with
// the given header size. ok is false when the result is rejected.
func compress(value []byte, cfg Config, header int) (out []byte, ok bool, err error) {
	c, err := cfg.registry().Lookup(cfg.Codec)
	if err != nil {
		return nil, false, err
	}
	out, err = codec.CompressAll(c, value, cfg.Level)
	if errors.Is(err, codec.ErrIncompressible) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !accepted(len(out), header, len(value)) {
		return nil, false, nil
	}
	return out, true, nil
}

// Sink receives values from Write. Columns implement it.
type Sink interface {
	Append(v []byte) error
	AppendToast(v []byte) error
	AppendExternalToast(p []byte) (int, error)
}

// Write decides the representation of value and appends it to sink.
func Write(sink Sink, value []byte, class StorageClass, cfg Config) (Kind, error) {
	v, err := Make(value, class, cfg)
	if err != nil {
		return KindPlain, err
	}
	switch v.Kind {
	case KindPlain:
		return KindPlain, sink.Append(value)
	case KindCompressed:
		enc, err := v.Encode(0)
		if err != nil {
			return v.Kind, err
		}
		return v.Kind, sink.AppendToast(enc)
	default:
		off, err := sink.AppendExternalToast(v.Payload)
		if err != nil {
			return v.Kind, err
		}
		enc, err := v.Encode(off)
		if err != nil {
			return v.Kind, err
		}
		return v.Kind, sink.AppendToast(enc)
	}
}

// Detoast reconstructs a toasted value. external is the column's external
// buffer and may be nil for inline values.
func Detoast(b, external []byte, reg *codec.Registry) ([]byte, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, h.OriginalSize)
	n, err := detoast(dst, h, external, reg)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// DetoastInto reconstructs a toasted value into dst and returns the number
// of bytes written. dst must hold the original size.
func DetoastInto(dst, b, external []byte, reg *codec.Registry) (int, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return 0, err
	}
	return detoast(dst, h, external, reg)
}

func detoast(dst []byte, h Header, external []byte, reg *codec.Registry) (int, error) {
	if len(dst) < h.OriginalSize {
		return 0, fault.OutOfRangef("detoast destination holds %d bytes, value needs %d", len(dst), h.OriginalSize)
	}
	src := h.Data
	if h.Kind == KindExternal {
		if h.Offset > len(external) || h.StoredSize > len(external)-h.Offset {
			return 0, fault.OutOfRangef("external toast [%d, %d) exceeds external buffer of %d bytes", h.Offset, h.Offset+h.StoredSize, len(external))
		}
		src = external[h.Offset : h.Offset+h.StoredSize]
	}

	if h.Codec == codec.Invalid {
		if len(src) != h.OriginalSize {
			return 0, fault.OutOfRangef("uncompressed toast stores %d bytes, header says %d", len(src), h.OriginalSize)
		}
		return copy(dst, src), nil
	}

	if reg == nil {
		reg = codec.Builtin()
	}
	c, err := reg.Lookup(h.Codec)
	if err != nil {
		return 0, err
	}
	n, err := c.Decompress(dst[:h.OriginalSize], src)
	if err != nil {
		return 0, err
	}
	if n != h.OriginalSize {
		return 0, fault.Compressionf(nil, "%s: detoast produced %d bytes, expected %d", c.Name(), n, h.OriginalSize)
	}
	return n, nil
}
