// Package codebook turns clustering results into stored artifacts.
//
// A Codebook pairs the centroid table of one attribute group with the
// per-splat labels that index into it. Codebooks serialize to a compact
// binary format (see Marshal) and are published as a run: one blob per
// group under "<run-id>/", a manifest describing them, and finally the
// CURRENT pointer. Readers that follow CURRENT never observe a partial run.
package codebook
