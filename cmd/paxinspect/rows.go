package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/hupe1980/paxcol"
)

// readRows decodes a stream of JSON objects and passes each one to fn as a
// row ordered by fields.
func readRows(r io.Reader, fields []paxcol.FieldConfig, fn func([][]byte) error) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	for line := 1; ; line++ {
		var obj map[string]any
		if err := dec.Decode(&obj); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		row := make([][]byte, len(fields))
		for i, f := range fields {
			v, err := encodeValue(f.Type, obj[f.Name])
			if err != nil {
				return fmt.Errorf("row %d field %q: %w", line, f.Name, err)
			}
			row[i] = v
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}

// encodeValue converts a decoded JSON value to the little-endian byte form
// of typ. A nil value is a null.
func encodeValue(typ string, v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case "bool":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case "int2", "int4", "int8":
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("want number, got %T", v)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, err
		}
		return putInt(typ, i)
	case "float4", "float8":
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("want number, got %T", v)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		if typ == "float4" {
			return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f))), nil
		}
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)), nil
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return []byte(s), nil
	}
}

func putInt(typ string, i int64) ([]byte, error) {
	switch typ {
	case "int2":
		if i < math.MinInt16 || i > math.MaxInt16 {
			return nil, fmt.Errorf("%d overflows int2", i)
		}
		return binary.LittleEndian.AppendUint16(nil, uint16(i)), nil
	case "int4":
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("%d overflows int4", i)
		}
		return binary.LittleEndian.AppendUint32(nil, uint32(i)), nil
	default:
		return binary.LittleEndian.AppendUint64(nil, uint64(i)), nil
	}
}
