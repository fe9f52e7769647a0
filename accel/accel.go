package accel

import (
	"context"
	"errors"
	"sync"

	"github.com/dev-reflct/splatq/table"
)

var (
	// ErrDeviceUnavailable is returned when no usable device context can be
	// obtained or a device fails while its use is mandatory.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrBusy is returned by devices that already have a dispatch in flight.
	ErrBusy = errors.New("device busy")
)

// Accelerator produces device contexts for clustering runs.
// Implementations must be safe for concurrent use; independent runs may
// acquire devices at the same time.
type Accelerator interface {
	// Acquire returns a device for one clustering run. It returns an error
	// wrapping ErrDeviceUnavailable when no device can be used.
	Acquire(ctx context.Context) (Device, error)
}

// Device performs the assignment phase for one clustering run.
type Device interface {
	// Name identifies the device in logs.
	Name() string

	// Dispatch starts an assignment pass over batch. The labels in batch are
	// valid only after the returned fence has completed without error.
	Dispatch(ctx context.Context, batch *Batch) (*Fence, error)
}

// Batch carries the inputs and output buffer of one assignment pass.
//
// Points and Centroids are the engine's tables. PointData and CentroidData
// are the same values flattened row-major with Dim values per row, so devices
// can upload them without walking the tables. Devices must not modify any
// input.
type Batch struct {
	Points       *table.Table
	Centroids    *table.Table
	PointData    []float32
	CentroidData []float32
	Dim          int
	K            int

	// Labels has one entry per point row. The device writes the index of the
	// nearest centroid, in [0, K), for every row.
	Labels []uint32
}

// NumPoints returns the number of point rows in the batch.
func (b *Batch) NumPoints() int { return len(b.Labels) }

// Fence signals completion of a dispatch.
type Fence struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFence returns a fence that has not completed.
func NewFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

// Signal completes the fence with err. Only the first call has an effect.
func (f *Fence) Signal(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed once the fence completes.
func (f *Fence) Done() <-chan struct{} { return f.done }

// Wait blocks until the fence completes or ctx is done.
func (f *Fence) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unavailable is an Accelerator that never yields a device. It is useful for
// exercising fallback paths.
type Unavailable struct{}

// Acquire implements Accelerator.
func (Unavailable) Acquire(context.Context) (Device, error) {
	return nil, ErrDeviceUnavailable
}
