package splat

import (
	"context"
	"fmt"

	"github.com/dev-reflct/splatq"
	"github.com/dev-reflct/splatq/accel"
	"github.com/dev-reflct/splatq/blobstore"
	"github.com/dev-reflct/splatq/codebook"
	"github.com/dev-reflct/splatq/resource"
	"github.com/dev-reflct/splatq/table"
	"golang.org/x/sync/errgroup"
)

// Compressor clusters the attribute groups of splat tables.
type Compressor struct {
	cfg         Config
	accelerator accel.Accelerator
	logger      *splatq.Logger
	metrics     splatq.MetricsCollector
	resources   *resource.Controller
}

// Option configures a Compressor.
type Option func(*Compressor)

// WithAccelerator offers a device to every group.
func WithAccelerator(a accel.Accelerator) Option {
	return func(c *Compressor) { c.accelerator = a }
}

// WithLogger sets the logger.
func WithLogger(l *splatq.Logger) Option {
	return func(c *Compressor) { c.logger = l }
}

// WithMetricsCollector sets the metrics collector shared by all groups.
func WithMetricsCollector(mc splatq.MetricsCollector) Option {
	return func(c *Compressor) { c.metrics = mc }
}

// WithResources replaces the controller built from Config.Resources.
func WithResources(rc *resource.Controller) Option {
	return func(c *Compressor) { c.resources = rc }
}

// NewCompressor validates cfg and returns a Compressor.
func NewCompressor(cfg Config, optFns ...Option) (*Compressor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Compressor{
		cfg:     cfg,
		logger:  splatq.NoopLogger(),
		metrics: splatq.NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(c)
	}
	if c.resources == nil {
		c.resources = resource.NewController(resource.Config{
			MemoryLimitBytes:   cfg.Resources.MemoryLimitBytes,
			MaxWorkers:         cfg.Resources.MaxWorkers,
			IOLimitBytesPerSec: cfg.Resources.IOLimitBytesPerSec,
		})
	}
	return c, nil
}

// Resources returns the controller bounding this compressor.
func (c *Compressor) Resources() *resource.Controller { return c.resources }

func (c *Compressor) groups(t *table.Table) ([]Group, error) {
	groups := c.cfg.Groups
	if len(groups) == 0 {
		groups = DefaultGroups(t)
	}
	for _, g := range groups {
		if err := g.validate(t); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// Compress clusters every group of t and returns one codebook per group in
// group order. The first failing group cancels the others.
func (c *Compressor) Compress(ctx context.Context, t *table.Table) ([]*codebook.Codebook, error) {
	if t == nil || t.NumRows() == 0 {
		return nil, splatq.ErrEmptyInput
	}
	if missing := MissingColumns(t); len(missing) > 0 {
		return nil, fmt.Errorf("%w: not a gaussian splat table, missing %v", table.ErrSchema, missing)
	}
	if c.cfg.FilterNonFinite {
		filtered, removed, err := FilterNonFinite(t)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			c.logger.WarnContext(ctx, "dropped non-finite rows", "removed", removed, "kept", filtered.NumRows())
		}
		if filtered.NumRows() == 0 {
			return nil, splatq.ErrEmptyInput
		}
		t = filtered
	}

	groups, err := c.groups(t)
	if err != nil {
		return nil, err
	}

	books := make([]*codebook.Codebook, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		g.Go(func() error {
			cb, err := c.compressGroup(gctx, t, i, grp)
			if err != nil {
				return fmt.Errorf("group %s: %w", grp.Name, err)
			}
			books[i] = cb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Compressor) compressGroup(ctx context.Context, t *table.Table, i int, grp Group) (*codebook.Codebook, error) {
	points, err := t.Select(grp.Columns...)
	if err != nil {
		return nil, err
	}

	release, err := c.resources.Reserve(ctx, resource.ClusterBytes(points.NumRows(), points.NumColumns(), grp.K))
	if err != nil {
		return nil, err
	}
	defer release()

	strategy, err := c.cfg.strategy(grp.Strategy)
	if err != nil {
		return nil, err
	}
	opts := []splatq.Option{
		splatq.WithSeed(c.cfg.Seed + uint64(i)),
		splatq.WithStrategy(strategy),
		splatq.WithLogger(c.logger.WithGroup(grp.Name)),
		splatq.WithMetricsCollector(c.metrics),
	}
	if c.cfg.KDTreeThreshold > 0 {
		opts = append(opts, splatq.WithKDTreeThreshold(c.cfg.KDTreeThreshold))
	}
	if c.accelerator != nil {
		opts = append(opts, splatq.WithAccelerator(c.accelerator))
	}
	if c.cfg.RequireDevice {
		opts = append(opts, splatq.WithRequireDevice())
	}

	res, err := splatq.Cluster(ctx, points, grp.K, grp.Iterations, opts...)
	if err != nil {
		return nil, err
	}
	return codebook.FromResult(grp.Name, grp.K, res), nil
}

// CompressAndPublish compresses t and publishes the codebooks to store as
// a new run.
func (c *Compressor) CompressAndPublish(ctx context.Context, t *table.Table, store blobstore.BlobStore) (*codebook.Manifest, error) {
	books, err := c.Compress(ctx, t)
	if err != nil {
		return nil, err
	}
	comp, err := codebook.ParseCompression(c.cfg.Compression)
	if err != nil {
		return nil, err
	}
	return codebook.Publish(ctx, store, books, func(o *codebook.PublishOptions) {
		o.Compression = comp
		o.Resources = c.resources
		o.Logger = c.logger
	})
}
