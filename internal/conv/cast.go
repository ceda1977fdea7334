package conv

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/paxcol/fault"
)

// IntToInt32 converts int to int32 safely. Offsets streams store int32.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fault.OutOfRangef("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fault.OutOfRangef("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fault.OutOfRangef("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fault.OutOfRangef("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// Int32ToInt converts a stored int32 offset to int, rejecting negatives.
func Int32ToInt(v int32) (int, error) {
	if v < 0 {
		return 0, fault.OutOfRangef("negative offset %d", v)
	}
	return int(v), nil
}

// Int32sToBytes serializes vals as little-endian int32s.
func Int32sToBytes(vals []int32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(v))
	}
	return out
}

// BytesToInt32s parses little-endian int32s. The length must be a
// multiple of four.
func BytesToInt32s(b []byte) ([]int32, error) {
	if len(b)%4 != 0 {
		return nil, fault.OutOfRangef("int32 stream length %d is not a multiple of 4", len(b))
	}
	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}
