package toast

import (
	"fmt"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/fault"
)

const (
	// DefaultMinCompressSize is the smallest value considered for inline
	// compression.
	DefaultMinCompressSize = 2048

	// DefaultMinExternalSize is the smallest value moved out of line.
	DefaultMinExternalSize = 1 << 20
)

// Config controls the toast decision.
type Config struct {
	// Enabled turns toasting on. When false every value is stored plain.
	Enabled bool

	// Codec compresses inline and pre-compressed external values.
	Codec codec.ID
	Level int

	MinCompressSize int
	MinExternalSize int

	// Registry resolves Codec. Nil selects codec.Builtin.
	Registry *codec.Registry
}

// DefaultConfig returns toasting enabled with LZ4.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Codec:           codec.LZ4,
		MinCompressSize: DefaultMinCompressSize,
		MinExternalSize: DefaultMinExternalSize,
	}
}

func (c Config) registry() *codec.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return codec.Builtin()
}

// StorageClass is the per-column toast policy.
type StorageClass uint8

const (
	// Plain never toasts.
	Plain StorageClass = iota
	// Extended compresses inline, then externalizes what is still too big.
	Extended
	// External externalizes without compression.
	External
	// Main compresses inline and never externalizes.
	Main
)

func (s StorageClass) String() string {
	switch s {
	case Plain:
		return "plain"
	case Extended:
		return "extended"
	case External:
		return "external"
	case Main:
		return "main"
	default:
		return fmt.Sprintf("storage(%d)", uint8(s))
	}
}

// ParseStorageClass resolves a storage class name.
func ParseStorageClass(s string) (StorageClass, error) {
	switch s {
	case "", "plain", "p":
		return Plain, nil
	case "extended", "x":
		return Extended, nil
	case "external", "e":
		return External, nil
	case "main", "m":
		return Main, nil
	default:
		return Plain, fault.Logicf("unknown storage class %q", s)
	}
}
