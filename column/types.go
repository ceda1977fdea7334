package column

import (
	"fmt"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/fault"
)

// Format is the physical layout family of a column or row group.
type Format uint8

const (
	// FormatORC omits null rows from the data array.
	FormatORC Format = iota + 1
	// FormatVec keeps a placeholder slot for every null row.
	FormatVec
)

func (f Format) String() string {
	switch f {
	case FormatORC:
		return "orc"
	case FormatVec:
		return "vec"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat resolves "orc" or "vec".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "orc", "porc", "non-vectorized":
		return FormatORC, nil
	case "vec", "vectorized", "porc_vec":
		return FormatVec, nil
	default:
		return 0, fault.Logicf("unknown format %q", s)
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Kind is the in-memory type of a column. It selects the stream set the
// assembler writes and is validated against the format.
type Kind uint8

const (
	KindInvalid      Kind = 1
	KindFixed        Kind = 2
	KindNonFixed     Kind = 3
	KindDecimal      Kind = 4
	KindVecDecimal   Kind = 5
	KindBpChar       Kind = 6
	KindVecBpChar    Kind = 7
	KindBitPacked    Kind = 8
	KindVecBitPacked Kind = 9
	KindVecNoHeader  Kind = 10
)

var kindNames = map[Kind]string{
	KindInvalid:      "invalid",
	KindFixed:        "fixed",
	KindNonFixed:     "non-fixed",
	KindDecimal:      "decimal",
	KindVecDecimal:   "vec-decimal",
	KindBpChar:       "bpchar",
	KindVecBpChar:    "vec-bpchar",
	KindBitPacked:    "bitpacked",
	KindVecBitPacked: "vec-bitpacked",
	KindVecNoHeader:  "vec-no-header",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// StreamSet reports whether a kind writes an offsets stream in front of its
// data stream under the given format. Kinds that are not valid for the
// format return fault.ErrLogic.
func StreamSet(format Format, kind Kind) (withOffsets bool, err error) {
	switch format {
	case FormatVec:
		switch kind {
		case KindVecBpChar, KindVecNoHeader, KindNonFixed:
			return true, nil
		case KindVecBitPacked, KindVecDecimal, KindFixed:
			return false, nil
		}
	case FormatORC:
		switch kind {
		case KindBpChar, KindDecimal, KindNonFixed:
			return true, nil
		case KindBitPacked, KindFixed:
			return false, nil
		}
	}
	return false, fault.Logicf("invalid column type %s for format %s", kind, format)
}

// checkKind validates kind against the format and the kinds a column
// implementation can hold.
func checkKind(format Format, kind Kind, allowed ...Kind) error {
	if _, err := StreamSet(format, kind); err != nil {
		return err
	}
	for _, k := range allowed {
		if k == kind {
			return nil
		}
	}
	return fault.Logicf("column type %s is not supported by this column width", kind)
}

// EncodingKind identifies how a stream is encoded.
type EncodingKind uint8

const (
	NoEncoded EncodingKind = iota
	CompressZstd
	CompressZlib
	CompressLZ4
	CompressSnappy
)

func (k EncodingKind) String() string {
	switch k {
	case NoEncoded:
		return "none"
	case CompressZstd:
		return "zstd"
	case CompressZlib:
		return "zlib"
	case CompressLZ4:
		return "lz4"
	case CompressSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(k))
	}
}

// ParseEncodingKind resolves an encoding name as printed by String.
func ParseEncodingKind(s string) (EncodingKind, error) {
	for k := NoEncoded; k <= CompressSnappy; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	if s == "" {
		return NoEncoded, nil
	}
	return NoEncoded, fault.Logicf("unknown encoding %q", s)
}

func (k EncodingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EncodingKind) UnmarshalText(b []byte) error {
	v, err := ParseEncodingKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// CodecID returns the codec backing a compressed encoding kind.
func (k EncodingKind) CodecID() (codec.ID, error) {
	switch k {
	case CompressZstd:
		return codec.Zstd, nil
	case CompressZlib:
		return codec.Zlib, nil
	case CompressLZ4:
		return codec.LZ4, nil
	case CompressSnappy:
		return codec.Snappy, nil
	default:
		return codec.Invalid, fault.UnsupportedCodecf("encoding %s has no codec", k)
	}
}

// EncodingFor maps a codec id to its encoding kind.
func EncodingFor(id codec.ID) EncodingKind {
	switch id {
	case codec.Zstd:
		return CompressZstd
	case codec.Zlib:
		return CompressZlib
	case codec.LZ4:
		return CompressLZ4
	case codec.Snappy:
		return CompressSnappy
	default:
		return NoEncoded
	}
}

// Encoding is the encoding kind and compression level of one stream.
type Encoding struct {
	Kind  EncodingKind `json:"kind" yaml:"kind"`
	Level int          `json:"level,omitempty" yaml:"level,omitempty"`
}

// Encoded reports whether the stream is stored in a non-raw form.
func (e Encoding) Encoded() bool {
	return e.Kind != NoEncoded
}
