// Package accel defines the port through which the clustering engine hands its
// assignment phase to a parallel compute device.
//
// An Accelerator is injected by the caller. For every clustering run the
// engine asks it for a Device; the Device stays owned by the Accelerator and
// is never closed by the engine. Work is submitted with Dispatch and completes
// asynchronously: the engine blocks on the returned Fence before it reads the
// labels and moves on to the centroid update.
//
// The engine treats a missing or failing device as a normal condition and
// falls back to its CPU strategies, unless the caller made device execution
// mandatory, in which case ErrDeviceUnavailable is reported.
package accel
