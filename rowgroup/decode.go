package rowgroup

import (
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/fault"
	"github.com/hupe1980/paxcol/internal/conv"
)

// ColumnSpec tells Decode how to rebuild one column of a layout.
type ColumnSpec struct {
	// TypeLength is the fixed value width, or -1 for variable width.
	TypeLength int
	// BitPacked selects a bit-packed boolean column.
	BitPacked bool
	// TypeAlign is the column's type alignment. Defaults to 1.
	TypeAlign int
	// Kind overrides the default kind for the format, e.g. a decimal kind.
	Kind column.Kind
	// Skip leaves the column slot nil without decoding its streams.
	Skip bool
}

// Decode rebuilds read-only columns from a combined buffer and the layout
// recorded while producing it. specs has one entry per layout column. The
// returned slice has nil entries for skipped columns.
func Decode(buf []byte, layout Layout, specs []ColumnSpec, optFns ...Option) ([]column.Column, error) {
	if len(specs) != len(layout.Columns) {
		return nil, fault.Logicf("got %d column specs for %d layout columns", len(specs), len(layout.Columns))
	}
	if size := layout.Size(); size != len(buf) {
		return nil, fault.OutOfRangef("layout describes %d bytes, buffer has %d", size, len(buf))
	}
	o := applyOptions(optFns)

	out := make([]column.Column, len(specs))
	cur := 0
	for i, cl := range layout.Columns {
		size := cl.Size()
		if specs[i].Skip {
			cur += size
			continue
		}
		c, err := decodeColumn(buf[cur:cur+size], layout.Format, cl, specs[i], o)
		if err != nil {
			return nil, fault.Wrapf(err, "decode column %d", i)
		}
		out[i] = c
		cur += size
	}
	return out, nil
}

func decodeColumn(buf []byte, format column.Format, cl ColumnLayout, spec ColumnSpec, o options) (column.Column, error) {
	var (
		s          column.Streams
		offsets    []byte
		hasOffsets bool
		dataRows   = -1
	)
	s.Rows = -1

	cur := 0
	for _, st := range cl.Streams {
		if st.Padding < 0 || st.Padding > st.Length {
			return nil, fault.OutOfRangef("%s stream padding %d exceeds length %d", st.Kind, st.Padding, st.Length)
		}
		raw := buf[cur : cur+st.Length-st.Padding]
		cur += st.Length

		switch st.Kind {
		case StreamPresence:
			s.Nulls = raw
			s.Rows = st.Rows
		case StreamToast:
			idx, err := conv.BytesToInt32s(raw)
			if err != nil {
				return nil, err
			}
			if len(idx) != st.Rows {
				return nil, fault.OutOfRangef("toast stream has %d indexes, want %d", len(idx), st.Rows)
			}
			s.ToastIndexes = idx
		case StreamOffset:
			offsets = raw
			hasOffsets = true
		case StreamData:
			s.Stream = raw
			dataRows = st.Rows
		default:
			return nil, fault.Logicf("unknown stream kind %d", st.Kind)
		}
	}
	if dataRows < 0 {
		return nil, fault.OutOfRangef("column has no data stream")
	}
	if s.Rows < 0 {
		s.Rows = dataRows
	}

	enc := cl.Encoding
	s.Encoding, s.OriginLength = enc.Data, enc.DataOriginLength
	s.OffsetsEncoding, s.OffsetsOriginLength = enc.Offsets, enc.OffsetsOriginLength

	data, err := column.DecodeStream(o.registry, s.Stream, enc.Data, enc.DataOriginLength)
	if err != nil {
		return nil, err
	}
	s.Data = data

	opts := []column.Option{column.WithRegistry(o.registry)}
	if spec.TypeAlign > 0 {
		opts = append(opts, column.WithTypeAlign(spec.TypeAlign))
	}
	if spec.Kind != 0 {
		opts = append(opts, column.WithKind(spec.Kind))
	}

	switch {
	case spec.BitPacked:
		return column.OpenBitPacked(format, s, opts...)
	case spec.TypeLength > 0 && !hasOffsets:
		return column.OpenFixed(format, spec.TypeLength, s, opts...)
	case hasOffsets:
		raw, err := column.DecodeStream(o.registry, offsets, enc.Offsets, enc.OffsetsOriginLength)
		if err != nil {
			return nil, err
		}
		if s.Offsets, err = conv.BytesToInt32s(raw); err != nil {
			return nil, err
		}
		s.OffsetsStream = offsets
		return column.OpenVariable(format, s, opts...)
	default:
		return nil, fault.Logicf("variable-width column without offsets stream")
	}
}
