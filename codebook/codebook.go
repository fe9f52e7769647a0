package codebook

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dev-reflct/splatq"
	"github.com/dev-reflct/splatq/table"
	"gonum.org/v1/gonum/stat"
)

// Codebook is the quantized form of one attribute group.
type Codebook struct {
	// Group names the attribute group, e.g. "positions".
	Group string

	// K is the requested cluster count. Degenerate codebooks hold fewer
	// centroids than K.
	K int

	// Iterations and Converged are copied from the clustering result.
	Iterations int
	Converged  bool
	Degenerate bool

	// Centroids has one row per codebook entry.
	Centroids *table.Table

	// Labels maps each splat to its centroid row.
	Labels []uint32

	membersOnce sync.Once
	members     []*roaring.Bitmap
}

// FromResult wraps a clustering result.
func FromResult(group string, k int, res *splatq.Result) *Codebook {
	return &Codebook{
		Group:      group,
		K:          k,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Degenerate: res.Degenerate,
		Centroids:  res.Centroids,
		Labels:     res.Labels,
	}
}

// NumCentroids returns the number of centroid rows.
func (cb *Codebook) NumCentroids() int { return cb.Centroids.NumRows() }

// NumRows returns the number of labeled splats.
func (cb *Codebook) NumRows() int { return len(cb.Labels) }

func (cb *Codebook) buildMembers() {
	cb.members = make([]*roaring.Bitmap, cb.NumCentroids())
	for c := range cb.members {
		cb.members[c] = roaring.New()
	}
	for i, l := range cb.Labels {
		if int(l) < len(cb.members) {
			cb.members[l].Add(uint32(i))
		}
	}
	for _, m := range cb.members {
		m.RunOptimize()
	}
}

// Members returns the splat rows assigned to centroid c. The bitmap is
// shared and must not be modified. An out-of-range c yields an empty bitmap.
func (cb *Codebook) Members(c int) *roaring.Bitmap {
	cb.membersOnce.Do(cb.buildMembers)
	if c < 0 || c >= len(cb.members) {
		return roaring.New()
	}
	return cb.members[c]
}

// Sizes returns the member count of every centroid.
func (cb *Codebook) Sizes() []int {
	sizes := make([]int, cb.NumCentroids())
	for c := range sizes {
		sizes[c] = int(cb.Members(c).GetCardinality())
	}
	return sizes
}

// Empty returns the number of centroids without members.
func (cb *Codebook) Empty() int {
	n := 0
	for _, s := range cb.Sizes() {
		if s == 0 {
			n++
		}
	}
	return n
}

// Decode writes the quantized attributes of splat i into row.
func (cb *Codebook) Decode(i int, row table.Row) error {
	if i < 0 || i >= len(cb.Labels) {
		return fmt.Errorf("%w: %d not in [0, %d)", table.ErrIndex, i, len(cb.Labels))
	}
	return cb.Centroids.GetRow(int(cb.Labels[i]), row)
}

// Reconstruct expands the codebook to one row per splat, with each row
// replaced by its centroid.
func (cb *Codebook) Reconstruct() (*table.Table, error) {
	n := len(cb.Labels)
	cols := make([]*table.Column, 0, cb.Centroids.NumColumns())
	for _, src := range cb.Centroids.Columns() {
		dst, err := table.Zeros(src.Name(), src.Type(), n)
		if err != nil {
			return nil, err
		}
		for i, l := range cb.Labels {
			dst.Set(i, src.At(int(l)))
		}
		cols = append(cols, dst)
	}
	return table.New(cols...)
}

// DistortionStats summarizes per-splat squared quantization error.
type DistortionStats struct {
	Mean   float64
	StdDev float64
	P95    float64
	Max    float64
	RMSE   float64
}

// Distortion compares points against their centroids. points must have the
// labeled row count and every centroid column.
func (cb *Codebook) Distortion(points *table.Table) (DistortionStats, error) {
	if points.NumRows() != len(cb.Labels) {
		return DistortionStats{}, fmt.Errorf("%w: %d points for %d labels", table.ErrSchema, points.NumRows(), len(cb.Labels))
	}
	if len(cb.Labels) == 0 {
		return DistortionStats{}, nil
	}

	errs := make([]float64, len(cb.Labels))
	for _, cc := range cb.Centroids.Columns() {
		pc := points.Column(cc.Name())
		if pc == nil {
			return DistortionStats{}, fmt.Errorf("%w: column %q missing from points", table.ErrSchema, cc.Name())
		}
		for i, l := range cb.Labels {
			d := pc.At(i) - cc.At(int(l))
			errs[i] += d * d
		}
	}

	var s DistortionStats
	s.Mean, s.StdDev = stat.MeanStdDev(errs, nil)
	if len(errs) < 2 {
		s.StdDev = 0
	}
	slices.Sort(errs)
	s.P95 = stat.Quantile(0.95, stat.Empirical, errs, nil)
	s.Max = errs[len(errs)-1]
	s.RMSE = math.Sqrt(s.Mean)
	return s, nil
}
