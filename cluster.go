package splatq

import (
	"context"
	"time"

	"github.com/dev-reflct/splatq/internal/kmeans"
	"github.com/dev-reflct/splatq/table"
)

// Strategy selects how the assignment phase finds nearest centroids.
type Strategy = kmeans.Strategy

const (
	StrategyAuto       = kmeans.Auto
	StrategyBruteForce = kmeans.BruteForce
	StrategyKDTree     = kmeans.KDTree
	StrategyDevice     = kmeans.Device
)

// ParseStrategy parses "auto", "brute-force", "kd-tree" or "device".
func ParseStrategy(s string) (Strategy, error) { return kmeans.ParseStrategy(s) }

// Result is the outcome of Cluster.
//
// Centroids is the codebook: k rows with the columns of the point table,
// stored as float32. Labels[i] is the codebook row for point row i.
type Result = kmeans.Result

// Cluster partitions the rows of points into k clusters with at most
// iterations assignment passes. Every column of points is a quantization
// dimension; callers cluster attribute groups separately.
//
// Cluster either returns a complete result or an error:
//   - ErrEmptyInput when points has no rows.
//   - ErrInvalidParameter when k or iterations is not positive.
//   - ErrSchema (as *ErrDimensionMismatch) when warm-start centroids do not
//     match the point columns.
//   - ErrDeviceUnavailable when WithRequireDevice is set and the device fails.
//   - ctx.Err() when ctx is done before an iteration starts.
//
// A table with fewer rows than k is not an error: the result is a clone of
// the table with identity labels and Result.Degenerate set.
func Cluster(ctx context.Context, points *table.Table, k, iterations int, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)

	rows := 0
	if points != nil {
		rows = points.NumRows()
	}
	log := o.logger.WithK(k)

	start := time.Now()
	res, err := kmeans.Run(ctx, points, kmeans.Config{
		K:                k,
		Iterations:       iterations,
		Rand:             o.rand,
		Strategy:         o.strategy,
		KDTreeThreshold:  o.kdTreeThreshold,
		Accelerator:      o.accelerator,
		RequireDevice:    o.requireDevice,
		InitialCentroids: o.initialCentroids,
		Logger:           log.Logger,
		OnIteration: func(s kmeans.IterationStats) {
			o.metricsCollector.RecordIteration(s.Strategy, s.Changed, s.Duration)
		},
	})
	elapsed := time.Since(start)
	err = translateError(err)

	if err != nil {
		o.metricsCollector.RecordCluster(rows, k, 0, false, elapsed, err)
		log.LogCluster(ctx, rows, k, nil, elapsed, err)
		return nil, err
	}

	if res.Degenerate {
		o.metricsCollector.RecordDegenerate()
	}
	if res.DeviceFallback {
		o.metricsCollector.RecordFallback()
		log.LogFallback(ctx, res.Strategy)
	}
	o.metricsCollector.RecordCluster(rows, k, res.Iterations, res.Converged, elapsed, nil)
	log.LogCluster(ctx, rows, k, res, elapsed, nil)
	return res, nil
}
