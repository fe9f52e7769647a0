// Package testutil provides deterministic data generators for tests and
// benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 3)          // flat row-major, [0, 1)
//	points, truth := rng.ClusteredPoints(1000, 3, 8, 0.05)
//
// # Tables
//
//	t := testutil.Table(points, 3, "x", "y", "z")
//	t, truth := rng.ClusteredTable(1000, 8, 0.05, "x", "y", "z")
//
// # Reference Metrics
//
//	inertia := testutil.Inertia(points, centroids, labels, dim)
package testutil
