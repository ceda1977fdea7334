// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between Go's int and the fixed-width integers stored in
// offsets streams, toast indexes and toast headers. Failures are reported as
// fault.ErrOutOfRange.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
