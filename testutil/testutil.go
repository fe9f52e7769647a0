package testutil

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/dev-reflct/splatq/table"
)

// RNG wraps a seeded generator. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

func newSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(newSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(newSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.FillUniformRange(dst, 0, 1)
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformPoints returns num points of dim coordinates in [0, 1), flat and
// row-major.
func (r *RNG) UniformPoints(num, dim int) []float32 {
	points := make([]float32, num*dim)
	r.FillUniform(points)
	return points
}

// ClusteredPoints returns num points scattered with Gaussian noise of the
// given spread around clusters centers drawn from [0, 1). Point i belongs to
// cluster i%clusters, which is also returned.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float32) ([]float32, []int) {
	centers := r.UniformPoints(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]float32, num*dim)
	truth := make([]int, num)
	for i := range num {
		c := i % clusters
		truth[i] = c
		for j := range dim {
			points[i*dim+j] = centers[c*dim+j] + float32(r.rand.NormFloat64())*spread
		}
	}
	return points, truth
}

// Table builds a float32 table from flat row-major points, one column per
// name.
func Table(points []float32, dim int, names ...string) *table.Table {
	if len(names) != dim {
		panic(fmt.Sprintf("testutil: %d names for dim %d", len(names), dim))
	}
	n := len(points) / dim
	cols := make([]*table.Column, dim)
	for j, name := range names {
		data := make([]float32, n)
		for i := range data {
			data[i] = points[i*dim+j]
		}
		cols[j] = table.NewColumn(name, data)
	}
	return table.MustNew(cols...)
}

// UniformTable returns num uniform rows with the named columns.
func (r *RNG) UniformTable(num int, names ...string) *table.Table {
	return Table(r.UniformPoints(num, len(names)), len(names), names...)
}

// ClusteredTable is ClusteredPoints as a table.
func (r *RNG) ClusteredTable(num, clusters int, spread float32, names ...string) (*table.Table, []int) {
	points, truth := r.ClusteredPoints(num, len(names), clusters, spread)
	return Table(points, len(names), names...), truth
}

// Inertia returns the sum of squared distances from each point to its
// labeled centroid, accumulated in float64.
func Inertia(points, centroids []float32, labels []uint32, dim int) float64 {
	var sum float64
	for i, l := range labels {
		p := points[i*dim : (i+1)*dim]
		c := centroids[int(l)*dim : (int(l)+1)*dim]
		for j := range dim {
			d := float64(p[j]) - float64(c[j])
			sum += d * d
		}
	}
	return sum
}

// Purity returns the fraction of points whose label agrees with the
// majority label of their true cluster. 1 means every true cluster was
// recovered intact.
func Purity(truth []int, labels []uint32) float64 {
	if len(truth) == 0 {
		return 1
	}
	counts := make(map[int]map[uint32]int)
	for i, c := range truth {
		if counts[c] == nil {
			counts[c] = make(map[uint32]int)
		}
		counts[c][labels[i]]++
	}
	agree := 0
	for _, m := range counts {
		best := 0
		for _, n := range m {
			best = max(best, n)
		}
		agree += best
	}
	return float64(agree) / float64(len(truth))
}
