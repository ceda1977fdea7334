// Package codec defines the compression plug-in contract and the built-in
// codecs used for toasting values and encoding column streams.
//
// Codec ids are persisted inside toasted values and stream encodings, so an
// id must never be reassigned once data has been written with it.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/paxcol/fault"
)

// ID identifies a codec. It is stored in toast headers.
type ID uint8

const (
	// Invalid means "not compressed"; payloads are copied verbatim.
	Invalid ID = 0
	LZ4     ID = 1
	Zstd    ID = 2
	Zlib    ID = 3
	Snappy  ID = 4
)

func (id ID) String() string {
	switch id {
	case Invalid:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	case Zlib:
		return "zlib"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("codec(%d)", uint8(id))
	}
}

// ParseID resolves a codec name as written in configuration files.
func ParseID(name string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "invalid":
		return Invalid, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	case "zlib":
		return Zlib, nil
	case "snappy":
		return Snappy, nil
	default:
		return Invalid, fault.UnsupportedCodecf("unknown codec name %q", name)
	}
}

// ErrIncompressible is returned by Compress when the output does not fit
// into dst. Callers keep the value uncompressed.
var ErrIncompressible = errors.New("codec: output does not fit destination")

// Codec compresses and decompresses byte blocks.
// Implementations must be safe for concurrent use.
type Codec interface {
	ID() ID
	Name() string

	// CompressBound returns the worst-case compressed size for n input bytes.
	CompressBound(n int) int

	// Compress writes the compressed form of src into dst and returns the
	// number of bytes written. dst's length is its capacity.
	Compress(dst, src []byte, level int) (int, error)

	// Decompress writes the decompressed form of src into dst and returns
	// the number of bytes written.
	Decompress(dst, src []byte) (int, error)
}

// Registry maps codec ids to implementations. Individual ids can be
// disabled; a disabled id behaves like an unknown one.
type Registry struct {
	mu       sync.RWMutex
	codecs   map[ID]Codec
	disabled map[ID]bool
}

// NewRegistry creates a registry holding the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{
		codecs:   make(map[ID]Codec, len(codecs)),
		disabled: make(map[ID]bool),
	}
	for _, c := range codecs {
		r.codecs[c.ID()] = c
	}
	return r
}

// Default returns a new registry with every built-in codec enabled.
func Default() *Registry {
	return NewRegistry(LZ4Codec{}, ZstdCodec{}, ZlibCodec{}, SnappyCodec{})
}

var builtin = Default()

// Builtin returns the shared registry of built-in codecs. Callers that need
// to disable codecs should build their own registry with Default.
func Builtin() *Registry {
	return builtin
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.ID()] = c
}

// Disable makes id unavailable for lookups.
func (r *Registry) Disable(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[id] = true
}

// Enable re-enables a previously disabled id.
func (r *Registry) Enable(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.disabled, id)
}

// Lookup returns the codec registered for id.
func (r *Registry) Lookup(id ID) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.disabled[id] {
		return nil, fault.UnsupportedCodecf("codec %s is disabled", id)
	}
	c, ok := r.codecs[id]
	if !ok {
		return nil, fault.UnsupportedCodecf("codec %s is not registered", id)
	}
	return c, nil
}

// ByName returns the codec registered under its stable name.
func (r *Registry) ByName(name string) (Codec, error) {
	id, err := ParseID(name)
	if err != nil {
		return nil, err
	}
	return r.Lookup(id)
}

// CompressAll compresses src with the codec into a freshly sized buffer.
// ErrIncompressible is passed through untouched.
func CompressAll(c Codec, src []byte, level int) ([]byte, error) {
	dst := make([]byte, c.CompressBound(len(src)))
	n, err := c.Compress(dst, src, level)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// DecompressAll decompresses src, which must expand to exactly size bytes.
func DecompressAll(c Codec, src []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := c.Decompress(dst, src)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fault.Compressionf(nil, "%s: decompressed %d bytes, expected %d", c.Name(), n, size)
	}
	return dst, nil
}
