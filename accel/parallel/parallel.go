// Package parallel provides an accel.Accelerator that runs the assignment
// phase on a bounded pool of goroutines.
//
// It follows the device contract of package accel: Dispatch returns
// immediately, the work proceeds in the background, and the fence completes
// once every label has been written. A device accepts one dispatch at a time.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/distance"
	"github.com/dev-reflct/splatq/internal/kdtree"
	"golang.org/x/sync/errgroup"
)

// Options configures the worker pool.
type Options struct {
	// Workers is the number of goroutines per dispatch.
	// Default: runtime.GOMAXPROCS(0)
	Workers int

	// ChunkSize is the number of points handed to a worker at once.
	// Default: 4096
	ChunkSize int

	// KDTreeThreshold switches the per-point search to a kd-tree when the
	// number of centroids exceeds it.
	// Default: 1000
	KDTreeThreshold int
}

// DefaultOptions returns the default pool settings.
func DefaultOptions() Options {
	return Options{
		Workers:         runtime.GOMAXPROCS(0),
		ChunkSize:       4096,
		KDTreeThreshold: 1000,
	}
}

// Accelerator hands out worker-pool devices.
type Accelerator struct {
	opts     Options
	acquired atomic.Int64
}

// New creates an accelerator.
func New(optFns ...func(*Options)) *Accelerator {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 4096
	}
	return &Accelerator{opts: opts}
}

// Acquire implements accel.Accelerator. Every call returns an independent
// device, so concurrent clustering runs never share one.
func (a *Accelerator) Acquire(ctx context.Context) (accel.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", accel.ErrDeviceUnavailable, err)
	}
	id := a.acquired.Add(1)
	return &Device{opts: a.opts, name: fmt.Sprintf("cpu-pool-%d", id)}, nil
}

// Acquired returns how many devices have been handed out.
func (a *Accelerator) Acquired() int64 { return a.acquired.Load() }

// Device is a worker-pool device.
type Device struct {
	opts       Options
	name       string
	inflight   atomic.Bool
	dispatches atomic.Int64
}

// Name implements accel.Device.
func (d *Device) Name() string { return d.name }

// Dispatches returns the number of completed or running dispatches.
func (d *Device) Dispatches() int64 { return d.dispatches.Load() }

// Dispatch implements accel.Device.
func (d *Device) Dispatch(ctx context.Context, b *accel.Batch) (*accel.Fence, error) {
	if err := validate(b); err != nil {
		return nil, err
	}
	if !d.inflight.CompareAndSwap(false, true) {
		return nil, accel.ErrBusy
	}
	d.dispatches.Add(1)

	fence := accel.NewFence()
	go func() {
		err := d.run(ctx, b)
		d.inflight.Store(false)
		fence.Signal(err)
	}()
	return fence, nil
}

func (d *Device) run(ctx context.Context, b *accel.Batch) error {
	var tree *kdtree.Tree
	if d.opts.KDTreeThreshold > 0 && b.K > d.opts.KDTreeThreshold {
		tree = kdtree.Build(b.CentroidData, b.Dim)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	n := b.NumPoints()
	dim := b.Dim
	for start := 0; start < n; start += d.opts.ChunkSize {
		end := min(start+d.opts.ChunkSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				point := b.PointData[i*dim : (i+1)*dim]
				var idx int
				if tree != nil {
					idx, _ = tree.FindNearest(point)
				} else {
					idx, _ = distance.Nearest(point, b.CentroidData, dim)
				}
				b.Labels[i] = uint32(idx)
			}
			return nil
		})
	}
	return g.Wait()
}

func validate(b *accel.Batch) error {
	switch {
	case b == nil:
		return fmt.Errorf("parallel: nil batch")
	case b.Dim <= 0 || b.K <= 0:
		return fmt.Errorf("parallel: invalid batch shape dim=%d k=%d", b.Dim, b.K)
	case len(b.CentroidData) != b.K*b.Dim:
		return fmt.Errorf("parallel: centroid data has %d values, want %d", len(b.CentroidData), b.K*b.Dim)
	case len(b.PointData) != len(b.Labels)*b.Dim:
		return fmt.Errorf("parallel: point data has %d values, want %d", len(b.PointData), len(b.Labels)*b.Dim)
	}
	return nil
}
