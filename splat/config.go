package splat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dev-reflct/splatq"
	"github.com/dev-reflct/splatq/codebook"
	"gopkg.in/yaml.v3"
)

// ErrConfig is returned for invalid pipeline configuration.
var ErrConfig = errors.New("splat: invalid config")

// Config describes a compression pipeline. The zero value plus
// DefaultGroups is a usable configuration.
type Config struct {
	// Groups to cluster. Empty means DefaultGroups of the input table.
	Groups []Group `yaml:"groups,omitempty"`

	// Seed makes runs reproducible. Group i is seeded with Seed+i.
	Seed uint64 `yaml:"seed"`

	// Strategy is "auto", "brute-force", "kd-tree" or "device".
	Strategy string `yaml:"strategy,omitempty"`

	// KDTreeThreshold is the k above which auto picks the kd-tree.
	KDTreeThreshold int `yaml:"kdtree_threshold,omitempty"`

	// RequireDevice fails instead of falling back to the CPU.
	RequireDevice bool `yaml:"require_device,omitempty"`

	// FilterNonFinite drops rows with NaN or infinite values first.
	FilterNonFinite bool `yaml:"filter_non_finite,omitempty"`

	// Compression is "none", "lz4" or "zstd" for published artifacts.
	Compression string `yaml:"compression,omitempty"`

	Resources ResourceConfig `yaml:"resources,omitempty"`
}

// ResourceConfig bounds concurrent work.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes,omitempty"`
	MaxWorkers         int64 `yaml:"max_workers,omitempty"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec,omitempty"`
}

// DefaultConfig returns the defaults: auto strategy, zstd artifacts and
// default groups.
func DefaultConfig() Config {
	return Config{
		Strategy:    splatq.StrategyAuto.String(),
		Compression: codebook.CompressionZstd.String(),
	}
}

// LoadConfig decodes YAML from r over DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

// Validate checks everything that does not depend on the input table.
func (c Config) Validate() error {
	if _, err := c.strategy(c.Strategy); err != nil {
		return err
	}
	if _, err := codebook.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if c.KDTreeThreshold < 0 {
		return fmt.Errorf("%w: negative kdtree_threshold", ErrConfig)
	}
	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if err := g.validate(nil); err != nil {
			return err
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate group %q", ErrConfig, g.Name)
		}
		seen[g.Name] = true
		if _, err := c.strategy(g.Strategy); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) strategy(s string) (splatq.Strategy, error) {
	if s == "" {
		s = c.Strategy
	}
	if s == "" {
		return splatq.StrategyAuto, nil
	}
	st, err := splatq.ParseStrategy(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return st, nil
}
