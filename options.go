package hfcand

import (
	"log/slog"

	"github.com/hupe1980/hfcand/jettag"
	"github.com/hupe1980/hfcand/resource"
)

type options struct {
	logger           *Logger
	logLevel         *slog.Level
	metricsCollector MetricsCollector
	workers          int
	batchSize        int
	clusterer        jettag.Clusterer
	rc               *resource.Controller
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel creates a text logger at level. It is ignored when
// WithLogger is also given.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logLevel = &level
	}
}

// WithMetricsCollector configures a collector for builder callbacks and
// per-event outcomes. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hfcand.BasicMetricsCollector{}
//	c, _ := hfcand.New(cfg, hfcand.WithMetricsCollector(metrics))
//	// ... process events ...
//	fmt.Println(metrics.GetStats().Candidates)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers sets the number of events processed concurrently by
// ProcessEvents and Run. Values below 1 mean one worker.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBatchSize sets how many events Run reads before dispatching them.
// The default is 16 events per worker.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithClusterer enables jet tagging with the given clustering algorithm.
func WithClusterer(c jettag.Clusterer) Option {
	return func(o *options) {
		o.clusterer = c
	}
}

// WithResourceController shares worker slots and the in-flight memory
// budget with other components. It overrides WithWorkers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
