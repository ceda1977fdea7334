package paxcol

import (
	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/rowgroup"
	"github.com/hupe1980/paxcol/toast"
)

// Field describes one column of a Schema.
type Field struct {
	Name string
	// Width is the fixed value size in bytes, or -1 for variable width.
	Width int
	// BitPacked stores one-byte booleans as single bits.
	BitPacked bool
	// TypeAlign is the value alignment. Defaults to 1.
	TypeAlign int
	// Kind overrides the default column kind, e.g. column.KindBpChar.
	Kind column.Kind
	// Storage is the toast policy of a variable-width field.
	Storage         toast.StorageClass
	Encoding        column.Encoding
	OffsetsEncoding column.Encoding
	Attributes      map[string]string
}

// Variable reports whether the field has variable width.
func (f Field) Variable() bool {
	return !f.BitPacked && f.Width < 0
}

// Schema is the ordered list of fields of a row group.
type Schema struct {
	Fields []Field
}

// NewSchema validates fields and returns a Schema.
func NewSchema(fields ...Field) (Schema, error) {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return Schema{}, fault.Logicf("field %d has no name", i)
		}
		if _, ok := seen[f.Name]; ok {
			return Schema{}, fault.Logicf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch {
		case f.BitPacked:
		case f.Width == 0 || f.Width < -1:
			return Schema{}, fault.Logicf("field %q has invalid width %d", f.Name, f.Width)
		}
		if f.Storage != toast.Plain && !f.Variable() {
			return Schema{}, fault.Logicf("field %q: storage %s needs a variable-width field", f.Name, f.Storage)
		}
	}
	return Schema{Fields: fields}, nil
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.Fields) }

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (f Field) columnOptions(reg *codec.Registry) []column.Option {
	opts := []column.Option{
		column.WithEncoding(f.Encoding.Kind, f.Encoding.Level),
		column.WithRegistry(reg),
	}
	if f.TypeAlign > 0 {
		opts = append(opts, column.WithTypeAlign(f.TypeAlign))
	}
	if f.Kind != 0 {
		opts = append(opts, column.WithKind(f.Kind))
	}
	if f.Attributes != nil {
		opts = append(opts, column.WithAttributes(f.Attributes))
	}
	return opts
}

// newColumn creates the writable column for field i.
func (s Schema) newColumn(format column.Format, i int, reg *codec.Registry) (column.Column, error) {
	f := s.Fields[i]
	opts := f.columnOptions(reg)
	switch {
	case f.BitPacked:
		return column.NewBitPacked(format, opts...)
	case f.Variable():
		opts = append(opts, column.WithOffsetsEncoding(f.OffsetsEncoding.Kind, f.OffsetsEncoding.Level))
		return column.NewVariable(format, opts...)
	default:
		return column.NewFixed(format, f.Width, opts...)
	}
}

// specs returns the decode specs of the fields. Fields outside keep are
// skipped; a nil keep decodes all fields.
func (s Schema) specs(keep map[int]bool) []rowgroup.ColumnSpec {
	out := make([]rowgroup.ColumnSpec, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = rowgroup.ColumnSpec{
			TypeLength: f.Width,
			BitPacked:  f.BitPacked,
			TypeAlign:  f.TypeAlign,
			Kind:       f.Kind,
			Skip:       keep != nil && !keep[i],
		}
		if f.Variable() {
			out[i].TypeLength = -1
		}
	}
	return out
}
