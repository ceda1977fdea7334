package paxcol

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/paxcol/toast"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// metric provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordFlush is called after each row group flush.
	// rows and bytes describe the stripe, err is nil if successful.
	RecordFlush(rows, bytes int, duration time.Duration, err error)

	// RecordToast is called for every value the writer toasted.
	RecordToast(kind toast.Kind)

	// RecordOpen is called after a stripe is decoded for reading.
	RecordOpen(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFlush(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordToast(toast.Kind)                     {}
func (NoopMetricsCollector) RecordOpen(time.Duration, error)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FlushCount      atomic.Int64
	FlushErrors     atomic.Int64
	FlushRows       atomic.Int64
	FlushBytes      atomic.Int64
	FlushTotalNanos atomic.Int64
	ToastCompressed atomic.Int64
	ToastExternal   atomic.Int64
	OpenCount       atomic.Int64
	OpenErrors      atomic.Int64
	OpenTotalNanos  atomic.Int64
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(rows, bytes int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushRows.Add(int64(rows))
	b.FlushBytes.Add(int64(bytes))
}

// RecordToast implements MetricsCollector.
func (b *BasicMetricsCollector) RecordToast(kind toast.Kind) {
	switch kind {
	case toast.KindCompressed:
		b.ToastCompressed.Add(1)
	case toast.KindExternal:
		b.ToastExternal.Add(1)
	}
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FlushCount:      b.FlushCount.Load(),
		FlushErrors:     b.FlushErrors.Load(),
		FlushRows:       b.FlushRows.Load(),
		FlushBytes:      b.FlushBytes.Load(),
		FlushAvgNanos:   avg(b.FlushTotalNanos.Load(), b.FlushCount.Load()),
		ToastCompressed: b.ToastCompressed.Load(),
		ToastExternal:   b.ToastExternal.Load(),
		OpenCount:       b.OpenCount.Load(),
		OpenErrors:      b.OpenErrors.Load(),
		OpenAvgNanos:    avg(b.OpenTotalNanos.Load(), b.OpenCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FlushCount      int64
	FlushErrors     int64
	FlushRows       int64
	FlushBytes      int64
	FlushAvgNanos   int64
	ToastCompressed int64
	ToastExternal   int64
	OpenCount       int64
	OpenErrors      int64
	OpenAvgNanos    int64
}
