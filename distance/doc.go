// Package distance provides the squared Euclidean kernels used for centroid
// assignment.
//
// The kernels accumulate four independent partial sums per step so the
// compiler can keep them in registers and schedule the multiplies in parallel.
// Every assignment strategy goes through the same kernel, which keeps the
// brute-force and tree-accelerated paths numerically identical.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	idx, d := distance.Nearest(point, centroids, dim)
package distance
