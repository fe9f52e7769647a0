package kmeans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/distance"
	"github.com/dev-reflct/splatq/internal/kdtree"
	"github.com/dev-reflct/splatq/table"
	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// DefaultKDTreeThreshold is the cluster count above which Auto switches from
// brute force to the kd-tree.
const DefaultKDTreeThreshold = 1000

// chunkSize is the number of points scanned against each centroid in one
// brute-force block.
const chunkSize = 256

// Config parameterizes one clustering run.
type Config struct {
	// K is the number of clusters.
	K int

	// Iterations is the maximum number of assignment passes.
	Iterations int

	// Rand drives centroid initialization. A nil Rand draws a random seed.
	Rand *rand.Rand

	// Strategy selects the assignment strategy. Default: Auto.
	Strategy Strategy

	// KDTreeThreshold is the cluster count above which Auto uses the
	// kd-tree. Default: DefaultKDTreeThreshold.
	KDTreeThreshold int

	// Accelerator optionally supplies a device for the assignment phase.
	Accelerator accel.Accelerator

	// RequireDevice turns device acquisition or dispatch failures into
	// accel.ErrDeviceUnavailable instead of falling back to the CPU.
	RequireDevice bool

	// InitialCentroids optionally replaces random initialization. It must
	// have K rows and the columns of the point table.
	InitialCentroids *table.Table

	// Logger receives per-iteration debug records. Default: discard.
	Logger *slog.Logger

	// OnIteration, if set, is called after every assignment pass.
	OnIteration func(IterationStats)
}

// IterationStats describes one assignment pass.
type IterationStats struct {
	Iteration int
	Changed   int
	Strategy  Strategy
	Duration  time.Duration
}

// Result is the outcome of a clustering run.
type Result struct {
	// Centroids has K rows and the point table's column names, as float32.
	// In the degenerate case it is a clone of the point table.
	Centroids *table.Table

	// Labels holds, per point row, the index of its centroid.
	Labels []uint32

	// Iterations is the number of assignment passes run.
	Iterations int

	// Converged reports whether two consecutive passes produced the same
	// labels.
	Converged bool

	// Strategy is the assignment strategy used by the final pass.
	Strategy Strategy

	// Degenerate reports that the table had fewer rows than K and was
	// returned unclustered with identity labels.
	Degenerate bool

	// DeviceFallback reports that a device was requested or offered but the
	// run continued on the CPU.
	DeviceFallback bool

	// Device names the device used, if any.
	Device string
}

// Run clusters the rows of points into cfg.K groups.
//
// A run either returns a complete result or an error; no partial centroid
// table is exposed. Cancellation is checked at the top of every iteration.
func Run(ctx context.Context, points *table.Table, cfg Config) (*Result, error) {
	if err := validate(points, &cfg); err != nil {
		return nil, err
	}

	if points.NumRows() < cfg.K {
		return degenerate(points), nil
	}

	e, err := newEngine(points, cfg)
	if err != nil {
		return nil, err
	}
	return e.run(ctx)
}

func validate(points *table.Table, cfg *Config) error {
	if points == nil || points.NumRows() == 0 {
		return ErrEmptyInput
	}
	if points.NumColumns() == 0 {
		return fmt.Errorf("%w: point table has no columns", table.ErrSchema)
	}
	if cfg.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidParameter, cfg.K)
	}
	if cfg.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParameter, cfg.Iterations)
	}
	if cfg.KDTreeThreshold <= 0 {
		cfg.KDTreeThreshold = DefaultKDTreeThreshold
	}
	if init := cfg.InitialCentroids; init != nil {
		if init.NumColumns() != points.NumColumns() {
			return &ErrDimensionMismatch{Expected: points.NumColumns(), Actual: init.NumColumns()}
		}
		for _, name := range points.ColumnNames() {
			if !init.HasColumn(name) {
				return &ErrDimensionMismatch{Expected: points.NumColumns(), Actual: init.NumColumns(), Column: name}
			}
		}
		if init.NumRows() != cfg.K {
			return fmt.Errorf("%w: initial centroids have %d rows, k is %d", ErrInvalidParameter, init.NumRows(), cfg.K)
		}
	}
	return nil
}

func degenerate(points *table.Table) *Result {
	labels := make([]uint32, points.NumRows())
	for i := range labels {
		labels[i] = uint32(i)
	}
	return &Result{
		Centroids:  points.Clone(),
		Labels:     labels,
		Degenerate: true,
	}
}

type engine struct {
	cfg    Config
	log    *slog.Logger
	rng    *rand.Rand
	points *table.Table
	names  []string

	n, k, dim int

	// data and cents are row-major views of points and centroids.
	data  []float32
	cents []float32

	centroids *table.Table
	scratch   table.Row

	labels []uint32
	prev   []uint32

	sums   []float64
	tmp    []float64
	counts []int
	best   []float32

	strategy Strategy
	device   accel.Device
	batch    *accel.Batch
	fallback bool
}

func newEngine(points *table.Table, cfg Config) (*engine, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n, k, dim := points.NumRows(), cfg.K, points.NumColumns()
	e := &engine{
		cfg:     cfg,
		log:     log,
		rng:     rng,
		points:  points,
		names:   points.ColumnNames(),
		n:       n,
		k:       k,
		dim:     dim,
		data:    points.Float32Rows(nil),
		scratch: make(table.Row, dim),
		labels:  make([]uint32, n),
		prev:    make([]uint32, n),
		sums:    make([]float64, k*dim),
		tmp:     make([]float64, dim),
		counts:  make([]int, k),
	}

	cols := make([]*table.Column, dim)
	for j, name := range e.names {
		c, err := table.Zeros(name, table.Float32, k)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	centroids, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	e.centroids = centroids
	return e, nil
}

func (e *engine) run(ctx context.Context) (*Result, error) {
	if err := e.init(); err != nil {
		return nil, err
	}
	if err := e.selectStrategy(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	for iter := 0; iter < e.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		e.labels, e.prev = e.prev, e.labels
		if err := e.assign(ctx); err != nil {
			return nil, err
		}
		changed := e.changed()
		res.Iterations = iter + 1

		e.log.Debug("kmeans iteration",
			slog.Int("iteration", iter),
			slog.Int("changed", changed),
			slog.String("strategy", e.strategy.String()),
		)
		if e.cfg.OnIteration != nil {
			e.cfg.OnIteration(IterationStats{
				Iteration: iter,
				Changed:   changed,
				Strategy:  e.strategy,
				Duration:  time.Since(start),
			})
		}

		// The first pass has nothing to compare against.
		if iter > 0 && changed == 0 {
			res.Converged = true
			break
		}
		if err := e.update(); err != nil {
			return nil, err
		}
	}

	res.Centroids = e.centroids
	res.Labels = e.labels
	res.Strategy = e.strategy
	res.DeviceFallback = e.fallback
	if e.device != nil {
		res.Device = e.device.Name()
	}
	return res, nil
}

// init fills the centroid table, either from the warm start or from k
// distinct rows sampled uniformly without replacement.
func (e *engine) init() error {
	if init := e.cfg.InitialCentroids; init != nil {
		for j := 0; j < e.k; j++ {
			if err := init.GetRow(j, e.scratch); err != nil {
				return err
			}
			if err := e.centroids.SetRow(j, e.scratch); err != nil {
				return err
			}
		}
	} else {
		chosen := make(map[int]struct{}, e.k)
		for j := 0; j < e.k; {
			idx := e.rng.IntN(e.n)
			if _, dup := chosen[idx]; dup {
				continue
			}
			chosen[idx] = struct{}{}
			if err := e.points.GetRow(idx, e.scratch); err != nil {
				return err
			}
			if err := e.centroids.SetRow(j, e.scratch); err != nil {
				return err
			}
			j++
		}
	}
	e.cents = e.centroids.Float32Rows(e.cents)
	return nil
}

func (e *engine) cpuStrategy() Strategy {
	switch e.cfg.Strategy {
	case BruteForce, KDTree:
		return e.cfg.Strategy
	}
	if e.k > e.cfg.KDTreeThreshold {
		return KDTree
	}
	return BruteForce
}

func (e *engine) selectStrategy(ctx context.Context) error {
	wantDevice := e.cfg.Strategy == Device || (e.cfg.Strategy == Auto && e.cfg.Accelerator != nil)
	if !wantDevice {
		e.strategy = e.cpuStrategy()
		return nil
	}

	if e.cfg.Accelerator == nil {
		return e.deviceFailed(errors.New("no accelerator supplied"))
	}
	dev, err := e.cfg.Accelerator.Acquire(ctx)
	if err == nil && dev == nil {
		err = errors.New("accelerator returned no device")
	}
	if err != nil {
		return e.deviceFailed(err)
	}

	e.device = dev
	e.strategy = Device
	e.batch = &accel.Batch{
		Points:       e.points,
		Centroids:    e.centroids,
		PointData:    e.data,
		CentroidData: e.cents,
		Dim:          e.dim,
		K:            e.k,
		Labels:       make([]uint32, e.n),
	}
	e.log.Debug("kmeans device acquired", slog.String("device", dev.Name()))
	return nil
}

// deviceFailed either reports err as ErrDeviceUnavailable or switches the run
// to a CPU strategy.
func (e *engine) deviceFailed(err error) error {
	if e.cfg.RequireDevice {
		return fmt.Errorf("%w: %w", accel.ErrDeviceUnavailable, err)
	}
	e.device = nil
	e.batch = nil
	e.fallback = true
	e.strategy = e.cpuStrategy()
	e.log.Warn("kmeans device unavailable, using cpu",
		slog.String("strategy", e.strategy.String()),
		slog.String("error", err.Error()),
	)
	return nil
}

func (e *engine) assign(ctx context.Context) error {
	switch e.strategy {
	case Device:
		err := e.assignDevice(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err := e.deviceFailed(err); err != nil {
			return err
		}
		return e.assign(ctx)
	case KDTree:
		e.assignKDTree()
	default:
		e.assignBruteForce()
	}
	return nil
}

func (e *engine) assignDevice(ctx context.Context) error {
	e.batch.CentroidData = e.cents
	fence, err := e.device.Dispatch(ctx, e.batch)
	if err != nil {
		return fmt.Errorf("dispatch on %s: %w", e.device.Name(), err)
	}
	if err := fence.Wait(ctx); err != nil {
		return fmt.Errorf("wait on %s: %w", e.device.Name(), err)
	}
	for i, l := range e.batch.Labels {
		if int(l) >= e.k {
			return fmt.Errorf("%s returned label %d for row %d, k is %d", e.device.Name(), l, i, e.k)
		}
	}
	copy(e.labels, e.batch.Labels)
	return nil
}

// assignBruteForce scans centroids against blocks of points so a block and
// the current centroid stay cache resident. Centroids are visited in index
// order and replace the best only on strictly smaller distance, which breaks
// ties toward the lowest index.
func (e *engine) assignBruteForce() {
	if e.best == nil {
		e.best = make([]float32, chunkSize)
	}
	dim := e.dim
	for start := 0; start < e.n; start += chunkSize {
		end := min(start+chunkSize, e.n)
		best := e.best[:end-start]
		for i := range best {
			best[i] = math.MaxFloat32
		}
		for j := 0; j < e.k; j++ {
			c := e.cents[j*dim : (j+1)*dim]
			for i := start; i < end; i++ {
				b := &best[i-start]
				d := distance.SquaredL2Bounded(e.data[i*dim:(i+1)*dim], c, *b)
				if d < *b || j == 0 {
					*b = d
					e.labels[i] = uint32(j)
				}
			}
		}
	}
}

func (e *engine) assignKDTree() {
	tree := kdtree.Build(e.cents, e.dim)
	dim := e.dim
	for i := 0; i < e.n; i++ {
		idx, _ := tree.FindNearest(e.data[i*dim : (i+1)*dim])
		e.labels[i] = uint32(idx)
	}
}

func (e *engine) changed() int {
	changed := 0
	for i, l := range e.labels {
		if l != e.prev[i] {
			changed++
		}
	}
	return changed
}

// update recomputes every non-empty centroid as the mean of its members.
// Empty clusters keep their previous centroid.
func (e *engine) update() error {
	dim := e.dim
	clear(e.sums)
	clear(e.counts)

	for i, l := range e.labels {
		vek.FromFloat32_Into(e.tmp, e.data[i*dim:(i+1)*dim])
		vek.Add_Inplace(e.sums[int(l)*dim:(int(l)+1)*dim], e.tmp)
		e.counts[l]++
	}

	for j, count := range e.counts {
		if count == 0 {
			continue
		}
		sum := e.sums[j*dim : (j+1)*dim]
		vek.MulNumber_Inplace(sum, 1/float64(count))
		vek32.FromFloat64_Into(e.cents[j*dim:(j+1)*dim], sum)

		for d, name := range e.names {
			e.scratch[name] = float64(e.cents[j*dim+d])
		}
		if err := e.centroids.SetRow(j, e.scratch); err != nil {
			return fmt.Errorf("update centroid %d: %w", j, err)
		}
	}
	return nil
}
