package paxcol

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/mem"
	"github.com/hupe1980/paxcol/toast"
)

// Config is the YAML document form of the writer and reader settings.
//
//	format: vec
//	alignment: 8
//	strict: true
//	log_level: debug
//	toast:
//	  codec: zstd
//	  min_external_size: 65536
//	fields:
//	  - {name: id, type: int8}
//	  - {name: body, type: text, storage: extended, encoding: lz4}
type Config struct {
	Format    string        `yaml:"format"`
	Alignment int           `yaml:"alignment"`
	Strict    bool          `yaml:"strict"`
	LogLevel  string        `yaml:"log_level"`
	Toast     ToastConfig   `yaml:"toast"`
	Fields    []FieldConfig `yaml:"fields,omitempty"`
}

// ToastConfig is the YAML form of toast.Config.
type ToastConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Codec           string `yaml:"codec"`
	Level           int    `yaml:"level"`
	MinCompressSize int    `yaml:"min_compress_size"`
	MinExternalSize int    `yaml:"min_external_size"`
}

// FieldConfig is the YAML form of a Field.
type FieldConfig struct {
	Name string `yaml:"name"`
	// Type is one of bool, int2, int4, int8, float4, float8, text, bpchar.
	Type            string            `yaml:"type"`
	Storage         string            `yaml:"storage,omitempty"`
	Encoding        string            `yaml:"encoding,omitempty"`
	Level           int               `yaml:"level,omitempty"`
	OffsetsEncoding string            `yaml:"offsets_encoding,omitempty"`
	Attributes      map[string]string `yaml:"attributes,omitempty"`
}

// DefaultConfig returns the settings used when no document is given.
func DefaultConfig() Config {
	return Config{
		Format:    column.FormatVec.String(),
		Alignment: mem.MemoryAlign,
		LogLevel:  "info",
		Toast: ToastConfig{
			Enabled:         true,
			Codec:           codec.LZ4.String(),
			MinCompressSize: toast.DefaultMinCompressSize,
			MinExternalSize: toast.DefaultMinExternalSize,
		},
	}
}

// LoadConfig reads a YAML document from path.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(b)
}

// ParseConfig parses a YAML document. Omitted keys keep their defaults.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fault.Logicf("parse config: %v", err)
	}
	if _, err := cfg.Options(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// StorageFormat returns the parsed format.
func (c Config) StorageFormat() (column.Format, error) {
	return column.ParseFormat(c.Format)
}

// ToastSettings returns the parsed toast configuration.
func (c Config) ToastSettings() (toast.Config, error) {
	id, err := codec.ParseID(c.Toast.Codec)
	if err != nil {
		return toast.Config{}, err
	}
	return toast.Config{
		Enabled:         c.Toast.Enabled,
		Codec:           id,
		Level:           c.Toast.Level,
		MinCompressSize: c.Toast.MinCompressSize,
		MinExternalSize: c.Toast.MinExternalSize,
	}, nil
}

// Level returns the parsed log level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fault.Logicf("log level %q: %v", c.LogLevel, err)
	}
	return level, nil
}

// Options converts the config to functional options.
func (c Config) Options() ([]Option, error) {
	if _, err := c.StorageFormat(); err != nil {
		return nil, err
	}
	tc, err := c.ToastSettings()
	if err != nil {
		return nil, err
	}
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	if c.Alignment <= 0 || c.Alignment&(c.Alignment-1) != 0 {
		return nil, fault.Logicf("alignment %d is not a positive power of two", c.Alignment)
	}
	return []Option{
		WithToast(tc),
		WithAlignment(c.Alignment),
		WithStrict(c.Strict),
		WithLogLevel(level),
	}, nil
}

// Schema builds the schema described by the fields section.
func (c Config) Schema() (Schema, error) {
	format, err := c.StorageFormat()
	if err != nil {
		return Schema{}, err
	}
	fields := make([]Field, len(c.Fields))
	for i, fc := range c.Fields {
		f, err := fc.field(format)
		if err != nil {
			return Schema{}, err
		}
		fields[i] = f
	}
	return NewSchema(fields...)
}

func (fc FieldConfig) field(format column.Format) (Field, error) {
	f := Field{Name: fc.Name, Attributes: fc.Attributes}
	switch fc.Type {
	case "bool":
		f.BitPacked = true
	case "int2":
		f.Width, f.TypeAlign = 2, 2
	case "int4", "float4":
		f.Width, f.TypeAlign = 4, 4
	case "int8", "float8":
		f.Width, f.TypeAlign = 8, 8
	case "text", "bytea", "varchar":
		f.Width, f.TypeAlign = -1, 4
	case "bpchar":
		f.Width, f.TypeAlign = -1, 4
		f.Kind = column.KindBpChar
		if format == column.FormatVec {
			f.Kind = column.KindVecBpChar
		}
	default:
		return Field{}, fault.Logicf("field %q has unknown type %q", fc.Name, fc.Type)
	}

	var err error
	if f.Storage, err = toast.ParseStorageClass(fc.Storage); err != nil {
		return Field{}, err
	}
	if f.Encoding.Kind, err = column.ParseEncodingKind(fc.Encoding); err != nil {
		return Field{}, err
	}
	f.Encoding.Level = fc.Level
	if f.OffsetsEncoding.Kind, err = column.ParseEncodingKind(fc.OffsetsEncoding); err != nil {
		return Field{}, err
	}
	f.OffsetsEncoding.Level = fc.Level
	return f, nil
}
