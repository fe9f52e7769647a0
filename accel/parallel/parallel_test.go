package parallel

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBatch(r *rand.Rand, n, k, dim int) *accel.Batch {
	pts := make([]float32, n*dim)
	for i := range pts {
		pts[i] = r.Float32()*10 - 5
	}
	cents := make([]float32, k*dim)
	for i := range cents {
		cents[i] = r.Float32()*10 - 5
	}
	return &accel.Batch{
		PointData:    pts,
		CentroidData: cents,
		Dim:          dim,
		K:            k,
		Labels:       make([]uint32, n),
	}
}

func TestDevice_Dispatch(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 12))

	for _, tc := range []struct {
		name      string
		n, k, dim int
	}{
		{"brute force", 10000, 16, 3},
		{"kd-tree", 3000, 1200, 3},
		{"single chunk", 10, 4, 45},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := New(func(o *Options) {
				o.Workers = 4
				o.ChunkSize = 512
			})
			dev, err := a.Acquire(context.Background())
			require.NoError(t, err)

			b := randomBatch(r, tc.n, tc.k, tc.dim)
			fence, err := dev.Dispatch(context.Background(), b)
			require.NoError(t, err)
			require.NoError(t, fence.Wait(context.Background()))

			for i := 0; i < tc.n; i++ {
				want, _ := distance.Nearest(b.PointData[i*tc.dim:(i+1)*tc.dim], b.CentroidData, tc.dim)
				require.Equal(t, uint32(want), b.Labels[i], "row %d", i)
			}
		})
	}
}

func TestDevice_RejectsConcurrentDispatch(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	a := New(func(o *Options) { o.Workers = 1 })
	dev, err := a.Acquire(context.Background())
	require.NoError(t, err)
	d := dev.(*Device)

	// Hold the in-flight slot to simulate a running dispatch.
	require.True(t, d.inflight.CompareAndSwap(false, true))
	_, err = d.Dispatch(context.Background(), randomBatch(r, 10, 2, 2))
	assert.ErrorIs(t, err, accel.ErrBusy)

	d.inflight.Store(false)
	fence, err := d.Dispatch(context.Background(), randomBatch(r, 10, 2, 2))
	require.NoError(t, err)
	require.NoError(t, fence.Wait(context.Background()))
	assert.Equal(t, int64(1), d.Dispatches())
}

func TestDevice_InvalidBatch(t *testing.T) {
	dev, err := New().Acquire(context.Background())
	require.NoError(t, err)

	_, err = dev.Dispatch(context.Background(), nil)
	assert.Error(t, err)

	_, err = dev.Dispatch(context.Background(), &accel.Batch{Dim: 2, K: 1, CentroidData: []float32{1}})
	assert.Error(t, err)
}

func TestDevice_Canceled(t *testing.T) {
	r := rand.New(rand.NewPCG(2, 2))
	dev, err := New().Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fence, err := dev.Dispatch(ctx, randomBatch(r, 100000, 8, 3))
	require.NoError(t, err)
	assert.ErrorIs(t, fence.Wait(context.Background()), context.Canceled)
}

func TestAccelerator_IndependentDevices(t *testing.T) {
	a := New()
	d1, err := a.Acquire(context.Background())
	require.NoError(t, err)
	d2, err := a.Acquire(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, d1, d2)
	assert.NotEqual(t, d1.Name(), d2.Name())
	assert.Equal(t, int64(2), a.Acquired())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Acquire(ctx)
	assert.ErrorIs(t, err, accel.ErrDeviceUnavailable)
}
