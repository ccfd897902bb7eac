package knn

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/knn/resource"
)

type options struct {
	workers            int
	chunkSize          int
	metricsCollector   MetricsCollector
	logger             *Logger
	resourceController *resource.Controller
	failFast           bool
}

// Option configures a Classifier.
type Option func(*options)

// WithWorkers sets the maximum number of goroutines that classify test rows
// concurrently. Values below 1 select runtime.GOMAXPROCS(0).
//
// Predictions are identical for every worker count.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunkSize sets the number of contiguous test rows handled per task.
// Cancellation is observed between chunks. Values below 1 select a size
// that gives each worker about four chunks.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &knn.BasicMetricsCollector{}
//	clf, _ := knn.New(knn.DefaultConfig(), knn.WithMetricsCollector(metrics))
//	// ... use clf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.ClassifyCount, stats.ClassifyAvgNanos)
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
//
// Example with JSON logging:
//
//	logger := knn.NewJSONLogger(slog.LevelInfo)
//	clf, _ := knn.New(knn.DefaultConfig(), knn.WithLogger(logger))
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

// WithResourceController bounds memory and concurrent runs with rc.
// The controller may be shared by several classifiers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

// WithFailFast makes runs fail with resource.ErrBusy when no run slot or
// not enough memory budget is free, instead of waiting for one.
func WithFailFast(enabled bool) Option {
	return func(o *options) {
		o.failFast = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
