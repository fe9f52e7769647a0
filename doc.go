// Package splatq quantizes Gaussian-Splat attribute tables with k-means.
//
// Splat datasets hold millions of records, each with a position, scale,
// rotation quaternion, opacity and a block of spherical-harmonic color
// coefficients. splatq compresses each attribute group into a codebook of
// cluster centroids plus a per-record index into that codebook.
//
// # Quick Start
//
//	points, _ := table.New(
//	    table.NewColumn("x", xs),
//	    table.NewColumn("y", ys),
//	    table.NewColumn("z", zs),
//	)
//	res, _ := splatq.Cluster(ctx, points, 256, 20, splatq.WithSeed(1))
//	// res.Centroids has 256 rows with columns x, y, z.
//	// res.Labels[i] is the centroid of row i.
//
// # Assignment Strategies
//
// The engine picks an assignment strategy per run:
//
//   - Brute force: scans every centroid per point. Used for small k.
//   - KD-tree: exact branch-and-bound search over the centroids. Used when k
//     exceeds the kd-tree threshold (1000 by default).
//   - Device: delegates assignment to an accel.Accelerator, such as the
//     goroutine pool in accel/parallel.
//
// A device that cannot be acquired, or fails mid-run, degrades to the CPU
// strategies unless WithRequireDevice is set.
//
// # Determinism
//
// With WithSeed (or WithRand) and the CPU strategies, two runs over the same
// input produce identical centroids and labels. The brute-force and kd-tree
// strategies agree label for label.
//
// # Degenerate Input
//
// When the table has fewer rows than k, Cluster returns a clone of the table
// as the codebook and the identity labeling, with Result.Degenerate set.
//
// # Pipelines
//
// Package splat splits a full splat table into attribute groups and clusters
// them concurrently; package codebook packs the results into artifacts and
// publishes them to a blobstore.BlobStore.
package splatq
