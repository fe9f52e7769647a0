package distance

import "math"

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}

// SquaredL2Bounded is SquaredL2 with early termination: once the running sum
// exceeds bound the partial sum is returned. The result is exact whenever it
// is <= bound, and any returned value > bound implies the full distance is
// > bound as well.
func SquaredL2Bounded(a, b []float32, bound float32) float32 {
	n := len(a)
	b = b[:n]

	var s0, s1, s2, s3 float32
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
		if partial := (s0 + s1) + (s2 + s3); partial > bound {
			return partial
		}
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return (s0 + s1) + (s2 + s3)
}

// Nearest scans a row-major matrix of centroids (len = k*dim) and returns the
// index of the closest one to point together with its squared distance. Ties
// resolve to the lowest index. Returns -1 when there are no centroids.
func Nearest(point, centroids []float32, dim int) (int, float32) {
	best := -1
	bestDist := float32(math.MaxFloat32)
	if dim <= 0 {
		return best, bestDist
	}
	k := len(centroids) / dim
	for c := 0; c < k; c++ {
		off := c * dim
		d := SquaredL2Bounded(point, centroids[off:off+dim], bestDist)
		if d < bestDist || best < 0 {
			best = c
			bestDist = d
		}
	}
	return best, bestDist
}
