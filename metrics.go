package splatq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCluster is called after each clustering run.
	// rows and k describe the input, iterations the passes run,
	// err is nil if successful.
	RecordCluster(rows, k, iterations int, converged bool, duration time.Duration, err error)

	// RecordIteration is called after each assignment pass.
	// changed is the number of labels that moved.
	RecordIteration(strategy Strategy, changed int, duration time.Duration)

	// RecordFallback is called when a run abandons its device.
	RecordFallback()

	// RecordDegenerate is called when a table has fewer rows than k.
	RecordDegenerate()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCluster(int, int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordIteration(Strategy, int, time.Duration)            {}
func (NoopMetricsCollector) RecordFallback()                                         {}
func (NoopMetricsCollector) RecordDegenerate()                                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ClusterCount      atomic.Int64
	ClusterErrors     atomic.Int64
	ClusterConverged  atomic.Int64
	ClusterTotalNanos atomic.Int64
	RowsClustered     atomic.Int64
	IterationCount    atomic.Int64
	IterationNanos    atomic.Int64
	LabelsChanged     atomic.Int64
	DeviceIterations  atomic.Int64
	FallbackCount     atomic.Int64
	DegenerateCount   atomic.Int64
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(rows, k, iterations int, converged bool, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClusterErrors.Add(1)
		return
	}
	b.RowsClustered.Add(int64(rows))
	if converged {
		b.ClusterConverged.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(strategy Strategy, changed int, duration time.Duration) {
	b.IterationCount.Add(1)
	b.IterationNanos.Add(duration.Nanoseconds())
	b.LabelsChanged.Add(int64(changed))
	if strategy == StrategyDevice {
		b.DeviceIterations.Add(1)
	}
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback() {
	b.FallbackCount.Add(1)
}

// RecordDegenerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDegenerate() {
	b.DegenerateCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ClusterCount:      b.ClusterCount.Load(),
		ClusterErrors:     b.ClusterErrors.Load(),
		ClusterConverged:  b.ClusterConverged.Load(),
		ClusterAvgNanos:   avg(b.ClusterTotalNanos.Load(), b.ClusterCount.Load()),
		RowsClustered:     b.RowsClustered.Load(),
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: avg(b.IterationNanos.Load(), b.IterationCount.Load()),
		LabelsChanged:     b.LabelsChanged.Load(),
		DeviceIterations:  b.DeviceIterations.Load(),
		FallbackCount:     b.FallbackCount.Load(),
		DegenerateCount:   b.DegenerateCount.Load(),
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
	ClusterCount      int64
	ClusterErrors     int64
	ClusterConverged  int64
	ClusterAvgNanos   int64
	RowsClustered     int64
	IterationCount    int64
	IterationAvgNanos int64
	LabelsChanged     int64
	DeviceIterations  int64
	FallbackCount     int64
	DegenerateCount   int64
}
