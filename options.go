package splatq

import (
	"log/slog"
	"math/rand/v2"

	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/table"
)

type options struct {
	rand             *rand.Rand
	strategy         Strategy
	kdTreeThreshold  int
	accelerator      accel.Accelerator
	requireDevice    bool
	initialCentroids *table.Table
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a clustering run.
type Option func(*options)

// WithSeed seeds centroid initialization. Runs with the same seed and input
// produce the same result on the CPU strategies.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source used for centroid initialization.
// The source is consumed by the run and must not be shared with concurrent
// runs.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithStrategy forces an assignment strategy. The default, StrategyAuto,
// prefers a device, then the kd-tree above the kd-tree threshold, then brute
// force.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithKDTreeThreshold sets the cluster count above which StrategyAuto uses
// the kd-tree.
// Default: 1000
func WithKDTreeThreshold(k int) Option {
	return func(o *options) {
		o.kdTreeThreshold = k
	}
}

// WithAccelerator supplies a device provider for the assignment phase.
// The accelerator is caller-owned; Cluster acquires one device per run and
// never releases the accelerator.
//
// Example:
//
//	acc := parallel.New(func(o *parallel.Options) { o.Workers = 8 })
//	res, _ := splatq.Cluster(ctx, points, 4096, 20, splatq.WithAccelerator(acc))
func WithAccelerator(a accel.Accelerator) Option {
	return func(o *options) {
		o.accelerator = a
	}
}

// WithRequireDevice makes device acquisition or dispatch failures fatal,
// reported as ErrDeviceUnavailable.
func WithRequireDevice() Option {
	return func(o *options) {
		o.requireDevice = true
	}
}

// WithInitialCentroids replaces random initialization with a warm start.
// The table must have k rows and the columns of the point table.
func WithInitialCentroids(centroids *table.Table) Option {
	return func(o *options) {
		o.initialCentroids = centroids
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &splatq.BasicMetricsCollector{}
//	res, _ := splatq.Cluster(ctx, points, 256, 20, splatq.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.ClusterCount, stats.ClusterAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
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
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
