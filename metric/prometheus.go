package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/paxcol"
	"github.com/hupe1980/paxcol/toast"
)

var _ paxcol.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements paxcol.MetricsCollector with Prometheus
// counters and histograms.
type PrometheusCollector struct {
	flushes       *prometheus.CounterVec
	flushRows     prometheus.Counter
	flushBytes    prometheus.Histogram
	flushDuration prometheus.Histogram
	toasts        *prometheus.CounterVec
	opens         *prometheus.CounterVec
	openDuration  prometheus.Histogram
}

// NewPrometheusCollector creates the collector's metrics under namespace and
// registers them with reg. A nil reg skips registration.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	p := &PrometheusCollector{
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Total count of row group flushes.",
		}, []string{"status"}),
		flushRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushed_rows_total",
			Help:      "Total count of rows in flushed row groups.",
		}),
		flushBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stripe_size_bytes",
			Help:      "Size of flushed stripes including the external toast arena.",
			// 4KB to 1GB.
			Buckets: prometheus.ExponentialBuckets(4096, 4, 10),
		}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time spent assembling row groups.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 9),
		}),
		toasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasted_values_total",
			Help:      "Total count of values stored compressed or externally.",
		}, []string{"kind"}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opens_total",
			Help:      "Total count of stripes decoded for reading.",
		}, []string{"status"}),
		openDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "open_duration_seconds",
			Help:      "Time spent decoding stripes.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 9),
		}),
	}
	if reg == nil {
		return p, nil
	}
	for _, c := range []prometheus.Collector{p.flushes, p.flushRows, p.flushBytes, p.flushDuration, p.toasts, p.opens, p.openDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordFlush implements paxcol.MetricsCollector.
func (p *PrometheusCollector) RecordFlush(rows, bytes int, duration time.Duration, err error) {
	p.flushes.WithLabelValues(status(err)).Inc()
	p.flushDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	p.flushRows.Add(float64(rows))
	p.flushBytes.Observe(float64(bytes))
}

// RecordToast implements paxcol.MetricsCollector.
func (p *PrometheusCollector) RecordToast(kind toast.Kind) {
	p.toasts.WithLabelValues(kind.String()).Inc()
}

// RecordOpen implements paxcol.MetricsCollector.
func (p *PrometheusCollector) RecordOpen(duration time.Duration, err error) {
	p.opens.WithLabelValues(status(err)).Inc()
	p.openDuration.Observe(duration.Seconds())
}
