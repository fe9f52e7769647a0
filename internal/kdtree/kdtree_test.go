package kdtree

import (
	"math/rand/v2"
	"testing"

	"github.com/dev-reflct/splatq/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(r *rand.Rand, n, dim int) []float32 {
	m := make([]float32, n*dim)
	for i := range m {
		m[i] = r.Float32()*200 - 100
	}
	return m
}

func TestBuild(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		tree := Build(nil, 3)
		assert.Equal(t, 0, tree.Len())
		idx, _ := tree.FindNearest([]float32{0, 0, 0})
		assert.Equal(t, -1, idx)
	})

	t.Run("single", func(t *testing.T) {
		tree := Build([]float32{1, 2}, 2)
		require.Equal(t, 1, tree.Len())
		idx, d := tree.FindNearest([]float32{4, 6})
		assert.Equal(t, 0, idx)
		assert.InDelta(t, 25, d, 1e-6)
	})

	t.Run("every centroid becomes a node", func(t *testing.T) {
		r := rand.New(rand.NewPCG(7, 7))
		tree := Build(randomMatrix(r, 1001, 4), 4)
		assert.Equal(t, 1001, tree.Len())
		assert.Equal(t, 4, tree.Dim())
	})
}

func TestFindNearest_MatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))

	for _, tc := range []struct {
		k, dim int
	}{
		{1, 1}, {2, 3}, {17, 2}, {256, 3}, {1500, 3}, {2048, 9}, {300, 45},
	} {
		centroids := randomMatrix(r, tc.k, tc.dim)
		tree := Build(centroids, tc.dim)

		for q := 0; q < 500; q++ {
			point := randomMatrix(r, 1, tc.dim)
			wantIdx, wantDist := distance.Nearest(point, centroids, tc.dim)
			gotIdx, gotDist := tree.FindNearest(point)
			require.Equal(t, wantIdx, gotIdx, "k=%d dim=%d query=%d", tc.k, tc.dim, q)
			require.Equal(t, wantDist, gotDist)
		}
	}
}

func TestFindNearest_TiesResolveToLowestIndex(t *testing.T) {
	// Integer grid with every centroid duplicated: many exact ties.
	const dim = 2
	var centroids []float32
	for rep := 0; rep < 3; rep++ {
		for x := 0; x < 10; x++ {
			for y := 0; y < 10; y++ {
				centroids = append(centroids, float32(x), float32(y))
			}
		}
	}
	tree := Build(centroids, dim)

	for x := -1; x <= 10; x++ {
		for y := -1; y <= 10; y++ {
			for _, off := range []float32{0, 0.5} {
				point := []float32{float32(x) + off, float32(y) + off}
				wantIdx, _ := distance.Nearest(point, centroids, dim)
				gotIdx, _ := tree.FindNearest(point)
				require.Equal(t, wantIdx, gotIdx, "point=%v", point)
				assert.Less(t, gotIdx, 100, "duplicate copies must never win")
			}
		}
	}
}

func TestFindNearest_DegenerateDimension(t *testing.T) {
	// All centroids share x, so the tree must split on y.
	centroids := []float32{5, 0, 5, 1, 5, 2, 5, 3, 5, 4}
	tree := Build(centroids, 2)

	idx, d := tree.FindNearest([]float32{5, 3.2})
	assert.Equal(t, 3, idx)
	assert.InDelta(t, 0.04, d, 1e-5)
}

func BenchmarkFindNearest(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	centroids := randomMatrix(r, 4096, 3)
	tree := Build(centroids, 3)
	queries := randomMatrix(r, 1024, 3)

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		q := queries[(i%1024)*3 : (i%1024)*3+3]
		tree.FindNearest(q)
		i++
	}
}

func BenchmarkBuild(b *testing.B) {
	r := rand.New(rand.NewPCG(5, 6))
	centroids := randomMatrix(r, 4096, 45)
	b.ReportAllocs()
	for b.Loop() {
		Build(centroids, 45)
	}
}
