package codebook

import (
	"context"
	"testing"

	"github.com/dev-reflct/splatq"
	"github.com/dev-reflct/splatq/table"
	"github.com/dev-reflct/splatq/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFixture returns a codebook with two centroids over (x, y) and the
// points it was built from.
func newFixture(t *testing.T) (*Codebook, *table.Table) {
	t.Helper()
	centroids := table.MustNew(
		table.NewColumn("x", []float32{0, 10}),
		table.NewColumn("y", []float32{0, 10}),
	)
	points := table.MustNew(
		table.NewColumn("x", []float32{1, -1, 10, 12, 0}),
		table.NewColumn("y", []float32{0, 0, 9, 10, 2}),
	)
	return &Codebook{
		Group:      "positions",
		K:          2,
		Iterations: 3,
		Converged:  true,
		Centroids:  centroids,
		Labels:     []uint32{0, 0, 1, 1, 0},
	}, points
}

func TestFromResult(t *testing.T) {
	points := table.MustNew(
		table.NewColumn("x", []float32{0, 0.1, 5, 5.1}),
	)
	res, err := splatq.Cluster(context.Background(), points, 2, 10, splatq.WithSeed(1))
	require.NoError(t, err)

	cb := FromResult("scales", 2, res)
	assert.Equal(t, "scales", cb.Group)
	assert.Equal(t, 2, cb.K)
	assert.Equal(t, res.Iterations, cb.Iterations)
	assert.Equal(t, res.Converged, cb.Converged)
	assert.Equal(t, 2, cb.NumCentroids())
	assert.Equal(t, 4, cb.NumRows())
	assert.Equal(t, cb.Labels[0], cb.Labels[1])
	assert.Equal(t, cb.Labels[2], cb.Labels[3])
	assert.NotEqual(t, cb.Labels[0], cb.Labels[2])
}

func TestMembersAndSizes(t *testing.T) {
	cb, _ := newFixture(t)

	assert.Equal(t, []uint32{0, 1, 4}, cb.Members(0).ToArray())
	assert.Equal(t, []uint32{2, 3}, cb.Members(1).ToArray())
	assert.True(t, cb.Members(2).IsEmpty())
	assert.True(t, cb.Members(-1).IsEmpty())
	assert.Equal(t, []int{3, 2}, cb.Sizes())
	assert.Equal(t, 0, cb.Empty())

	cb2 := &Codebook{
		Centroids: table.MustNew(table.NewColumn("x", []float32{1, 2, 3})),
		Labels:    []uint32{2, 2},
	}
	assert.Equal(t, []int{0, 0, 2}, cb2.Sizes())
	assert.Equal(t, 2, cb2.Empty())
}

func TestDecode(t *testing.T) {
	cb, _ := newFixture(t)
	row := table.Row{}

	require.NoError(t, cb.Decode(3, row))
	assert.Equal(t, table.Row{"x": 10, "y": 10}, row)
	require.NoError(t, cb.Decode(4, row))
	assert.Equal(t, table.Row{"x": 0, "y": 0}, row)

	assert.ErrorIs(t, cb.Decode(5, row), table.ErrIndex)
	assert.ErrorIs(t, cb.Decode(-1, row), table.ErrIndex)
}

func TestReconstruct(t *testing.T) {
	cb, _ := newFixture(t)
	out, err := cb.Reconstruct()
	require.NoError(t, err)

	assert.Equal(t, 5, out.NumRows())
	assert.Equal(t, []string{"x", "y"}, out.ColumnNames())
	xs, ok := table.Data[float32](out.Column("x"))
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0, 10, 10, 0}, xs)
}

func TestDistortion(t *testing.T) {
	cb, points := newFixture(t)

	s, err := cb.Distortion(points)
	require.NoError(t, err)
	// Squared errors: 1, 1, 1, 4, 4.
	assert.InDelta(t, 2.2, s.Mean, 1e-9)
	assert.InDelta(t, 4, s.Max, 1e-9)
	assert.InDelta(t, 4, s.P95, 1e-9)
	assert.InDelta(t, 1.6431676725, s.StdDev, 1e-9)
	assert.InDelta(t, 1.4832396974, s.RMSE, 1e-9)

	t.Run("row mismatch", func(t *testing.T) {
		_, err := cb.Distortion(table.MustNew(table.NewColumn("x", []float32{1})))
		assert.ErrorIs(t, err, table.ErrSchema)
	})

	t.Run("missing column", func(t *testing.T) {
		pts := table.MustNew(table.NewColumn("x", make([]float32, 5)))
		_, err := cb.Distortion(pts)
		assert.ErrorIs(t, err, table.ErrSchema)
	})

	t.Run("single row", func(t *testing.T) {
		one := &Codebook{
			Centroids: table.MustNew(table.NewColumn("x", []float32{3})),
			Labels:    []uint32{0},
		}
		s, err := one.Distortion(table.MustNew(table.NewColumn("x", []float32{1})))
		require.NoError(t, err)
		assert.Equal(t, DistortionStats{Mean: 4, P95: 4, Max: 4, RMSE: 2}, s)
	})
}

func TestDistortionShrinksWithK(t *testing.T) {
	rng := testutil.NewRNG(3)
	xy := make([]float32, 4000)
	rng.FillUniformRange(xy, 0, 100)
	points := testutil.Table(xy, 2, "x", "y")

	var prev float64
	for i, k := range []int{4, 16, 64} {
		res, err := splatq.Cluster(context.Background(), points, k, 10, splatq.WithSeed(9))
		require.NoError(t, err)
		s, err := FromResult("positions", k, res).Distortion(points)
		require.NoError(t, err)
		if i > 0 {
			assert.Less(t, s.Mean, prev, "k=%d", k)
		}
		prev = s.Mean
	}
}
