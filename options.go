package elgo

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/elgo/resource"
)

type options struct {
	workers          int
	metricsObserver  MetricsObserver
	logger           *Logger
	controller       *resource.Controller
	progressInterval time.Duration
}

// Option configures a Reasoner.
type Option func(*options)

// WithWorkers sets the number of saturation workers per run.
// If n <= 0, runtime.GOMAXPROCS(0) is used.
//
// The result of a classification never depends on the number of workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetricsObserver configures a telemetry hook that receives per-run rule
// application counts, progress and incremental statistics.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsObserver:
//
//	metrics := &elgo.BasicMetricsObserver{}
//	r := elgo.New(idx, elgo.WithMetricsObserver(metrics))
//	// ... classify ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Rules: %d\n", stats.ClassifyCount, stats.Rules.Total())
func WithMetricsObserver(mo MetricsObserver) Option {
	return func(o *options) {
		o.metricsObserver = mo
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := elgo.NewJSONLogger(slog.LevelInfo)
//	r := elgo.New(idx, elgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithResourceController shares a worker budget between reasoners.
// Workers of every run acquire a slot from the controller before processing.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithProgressInterval sets the minimum time between two OnProgress calls.
// It is ignored when a resource controller is configured.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsObserver: NoopMetricsObserver{},
		logger:          NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.metricsObserver == nil {
		o.metricsObserver = NoopMetricsObserver{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil {
		o.controller = resource.NewController(resource.Config{
			MaxWorkers:       int64(o.workers),
			ProgressInterval: o.progressInterval,
		})
	}
	return o
}
