// Package kdtree implements the nearest-centroid index used when the number
// of clusters is large.
//
// The tree is built once per clustering iteration over a row-major centroid
// matrix and is never mutated afterwards. Each node stores one pivot centroid
// (the median along the dimension of largest spread) and the indices of its
// two subtrees; all nodes live in a single slice.
//
// FindNearest is an exact branch-and-bound search. It evaluates distances
// with the same kernel as the brute-force scan and breaks ties by the lowest
// centroid index, so both strategies label every point identically.
package kdtree
