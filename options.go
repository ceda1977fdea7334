package paxcol

import (
	"log/slog"

	"github.com/hupe1980/paxcol/codec"
	"github.com/hupe1980/paxcol/internal/mem"
	"github.com/hupe1980/paxcol/toast"
)

type options struct {
	toast            toast.Config
	alignment        int
	strict           bool
	registry         *codec.Registry
	projection       map[int]bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Writer and Reader behavior.
type Option func(*options)

// WithToast sets the toast configuration used by the writer.
//
// Example:
//
//	cfg := toast.DefaultConfig()
//	cfg.Codec = codec.Zstd
//	w, _ := paxcol.NewWriter(column.FormatVec, schema, paxcol.WithToast(cfg))
func WithToast(cfg toast.Config) Option {
	return func(o *options) {
		o.toast = cfg
	}
}

// WithAlignment sets the stream alignment of the vectorized format.
func WithAlignment(align int) Option {
	return func(o *options) {
		o.alignment = align
	}
}

// WithStrict enables additional layout checks on flush and open.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithRegistry sets the codec registry for stream and toast compression.
// If nil is passed, codec.Builtin is used.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) {
		if r == nil {
			r = codec.Builtin()
		}
		o.registry = r
	}
}

// WithProjection makes a Reader decode only the fields at the given schema
// positions. Reading any other field returns ErrLogic. Writers ignore it.
func WithProjection(fields ...int) Option {
	return func(o *options) {
		o.projection = make(map[int]bool, len(fields))
		for _, i := range fields {
			o.projection[i] = true
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &paxcol.BasicMetricsCollector{}
//	w, _ := paxcol.NewWriter(column.FormatVec, schema, paxcol.WithMetricsCollector(metrics))
//	// ... write and flush ...
//	stats := metrics.GetStats()
//	fmt.Printf("Flushes: %d, Avg latency: %dns\n", stats.FlushCount, stats.FlushAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		toast:            toast.DefaultConfig(),
		alignment:        mem.MemoryAlign,
		registry:         codec.Builtin(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.toast.Registry == nil {
		o.toast.Registry = o.registry
	}
	return o
}
