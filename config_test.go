package paxcol

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/toast"
)

const testConfig = `
format: orc
strict: true
log_level: debug
toast:
  codec: zstd
  level: 5
  min_external_size: 4096
fields:
  - {name: id, type: int8}
  - {name: ok, type: bool}
  - {name: body, type: text, storage: extended, encoding: lz4}
  - {name: tag, type: bpchar, offsets_encoding: zlib}
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	format, err := cfg.StorageFormat()
	require.NoError(t, err)
	assert.Equal(t, column.FormatORC, format)
	assert.Equal(t, 8, cfg.Alignment)

	tc, err := cfg.ToastSettings()
	require.NoError(t, err)
	assert.True(t, tc.Enabled)
	assert.Equal(t, codec.Zstd, tc.Codec)
	assert.Equal(t, 5, tc.Level)
	assert.Equal(t, toast.DefaultMinCompressSize, tc.MinCompressSize)
	assert.Equal(t, 4096, tc.MinExternalSize)

	schema, err := cfg.Schema()
	require.NoError(t, err)
	require.Equal(t, 4, schema.Len())
	assert.Equal(t, Field{Name: "id", Width: 8, TypeAlign: 8}, schema.Fields[0])
	assert.True(t, schema.Fields[1].BitPacked)
	assert.Equal(t, toast.Extended, schema.Fields[2].Storage)
	assert.Equal(t, column.CompressLZ4, schema.Fields[2].Encoding.Kind)
	assert.Equal(t, column.KindBpChar, schema.Fields[3].Kind)
	assert.Equal(t, column.CompressZlib, schema.Fields[3].OffsetsEncoding.Kind)

	opts, err := cfg.Options()
	require.NoError(t, err)
	o := applyOptions(opts)
	assert.True(t, o.strict)
	assert.Equal(t, codec.Zstd, o.toast.Codec)
	assert.NotNil(t, o.toast.Registry)
}

func TestParseConfig_VecBpChar(t *testing.T) {
	cfg, err := ParseConfig([]byte("fields: [{name: c, type: bpchar}]"))
	require.NoError(t, err)
	schema, err := cfg.Schema()
	require.NoError(t, err)
	assert.Equal(t, column.KindVecBpChar, schema.Fields[0].Kind)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"yaml", "format: [orc"},
		{"format", "format: parquet"},
		{"codec", "toast: {codec: brotli}"},
		{"log level", "log_level: loud"},
		{"alignment", "alignment: 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}

	cfg, err := ParseConfig([]byte("fields: [{name: x, type: uuid}]"))
	require.NoError(t, err)
	_, err = cfg.Schema()
	assert.ErrorIs(t, err, ErrLogic)

	cfg, err = ParseConfig([]byte("fields: [{name: x, type: int4, storage: sometimes}]"))
	require.NoError(t, err)
	_, err = cfg.Schema()
	assert.ErrorIs(t, err, ErrLogic)
}

func TestConfig_Level(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	assert.ErrorIs(t, err, ErrLogic)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pax.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "orc", cfg.Format)
	assert.Len(t, cfg.Fields, 4)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	b, err := cfg.Marshal()
	require.NoError(t, err)

	got, err := ParseConfig(b)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
