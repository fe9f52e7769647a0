// Package kmeans implements Lloyd's k-means over columnar tables.
//
// One engine drives initialization, assignment, centroid update and the
// convergence check. Assignment is pluggable: a brute-force scan for small
// cluster counts, an exact kd-tree search for large ones, or an external
// accel.Device. All strategies share the squared-L2 kernels of package
// distance, so the CPU strategies agree label for label.
package kmeans
