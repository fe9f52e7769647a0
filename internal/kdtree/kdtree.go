package kdtree

import (
	"math"

	"github.com/dev-reflct/splatq/distance"
)

const noChild = -1

type node struct {
	centroid int32 // pivot centroid index
	dim      int32 // split dimension, -1 for leaves
	left     int32
	right    int32
}

// Tree is a static kd-tree over k centroids of dimension dim.
//
// The tree references the centroid matrix passed to Build; the caller must not
// modify it while the tree is in use.
type Tree struct {
	nodes []node
	data  []float32
	dim   int
	root  int32
}

// Build constructs a tree over a row-major centroid matrix of len k*dim.
func Build(centroids []float32, dim int) *Tree {
	t := &Tree{data: centroids, dim: dim, root: noChild}
	if dim <= 0 {
		return t
	}
	k := len(centroids) / dim
	if k == 0 {
		return t
	}

	idx := make([]int32, k)
	for i := range idx {
		idx[i] = int32(i)
	}
	t.nodes = make([]node, 0, k)
	t.root = t.build(idx)
	return t
}

// Len returns the number of centroids in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Dim returns the dimensionality of the indexed centroids.
func (t *Tree) Dim() int { return t.dim }

func (t *Tree) build(idx []int32) int32 {
	switch len(idx) {
	case 0:
		return noChild
	case 1:
		t.nodes = append(t.nodes, node{centroid: idx[0], dim: -1, left: noChild, right: noChild})
		return int32(len(t.nodes) - 1)
	}

	d := t.widestDim(idx)
	mid := len(idx) / 2
	t.nthElement(idx, mid, d)

	self := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{centroid: idx[mid], dim: int32(d)})

	left := t.build(idx[:mid])
	right := t.build(idx[mid+1:])
	t.nodes[self].left = left
	t.nodes[self].right = right
	return self
}

// widestDim returns the dimension with the largest value range over idx.
func (t *Tree) widestDim(idx []int32) int {
	best, bestSpread := 0, float32(-1)
	for d := 0; d < t.dim; d++ {
		lo := float32(math.MaxFloat32)
		hi := float32(-math.MaxFloat32)
		for _, c := range idx {
			v := t.data[int(c)*t.dim+d]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if spread := hi - lo; spread > bestSpread {
			best, bestSpread = d, spread
		}
	}
	return best
}

func (t *Tree) key(c int32, d int) float32 {
	return t.data[int(c)*t.dim+d]
}

// nthElement partially orders idx along dimension d so that idx[nth] holds
// the element that would be there after a full sort, everything before it is
// <= and everything after it is >=.
func (t *Tree) nthElement(idx []int32, nth, d int) {
	lo, hi := 0, len(idx)-1
	for hi > lo {
		mid := lo + (hi-lo)/2
		pv := median3(t.key(idx[lo], d), t.key(idx[mid], d), t.key(idx[hi], d))

		i, j := lo, hi
		for i <= j {
			for t.key(idx[i], d) < pv {
				i++
			}
			for t.key(idx[j], d) > pv {
				j--
			}
			if i <= j {
				idx[i], idx[j] = idx[j], idx[i]
				i++
				j--
			}
		}

		switch {
		case nth <= j:
			hi = j
		case nth >= i:
			lo = i
		default:
			return
		}
	}
}

func median3(a, b, c float32) float32 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

// FindNearest returns the index of the centroid closest to point and its
// squared distance. Ties resolve to the lowest centroid index. An empty tree
// returns -1.
func (t *Tree) FindNearest(point []float32) (int, float32) {
	s := searcher{tree: t, point: point, best: -1, bestDist: float32(math.MaxFloat32)}
	s.visit(t.root)
	return int(s.best), s.bestDist
}

type searcher struct {
	tree     *Tree
	point    []float32
	best     int32
	bestDist float32
}

func (s *searcher) visit(n int32) {
	if n == noChild {
		return
	}
	t := s.tree
	nd := &t.nodes[n]
	off := int(nd.centroid) * t.dim

	d := distance.SquaredL2Bounded(s.point, t.data[off:off+t.dim], s.bestDist)
	if s.best < 0 || d < s.bestDist || (d == s.bestDist && nd.centroid < s.best) {
		s.best = nd.centroid
		s.bestDist = d
	}

	if nd.dim < 0 {
		return
	}

	diff := s.point[nd.dim] - t.data[off+int(nd.dim)]
	near, far := nd.left, nd.right
	if diff > 0 {
		near, far = far, near
	}

	s.visit(near)
	// Any centroid across the plane is at least |diff| away along nd.dim.
	if diff*diff <= s.bestDist {
		s.visit(far)
	}
}
