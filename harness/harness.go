// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package harness checks the search layouts against binary search and
// measures their query latency across data sizes.
package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/cilium/hive/cell"
	"github.com/spf13/pflag"

	"github.com/flatsearch/flatsearch"
)

var Cell = cell.Module(
	"search-harness",
	"Integrity checks and latency sweeps over the search layouts",

	cell.Config(DefaultConfig),
	cell.Provide(
		newHiveHarness,

		layoutsCommand,
		queryCommand,
		verifyCommand,
		benchCommand,
	),
)

type Config struct {
	// Seed offsets the fixed data and query seeds.
	Seed int64

	// Queries is the number of random targets checked by Verify.
	Queries int

	// VerifySize is the number of keys Verify builds the layouts from.
	VerifySize int

	// BenchQueries is the number of random targets timed per round.
	BenchQueries int

	// Rounds is the number of timed passes per layout and size.
	Rounds int

	// Workers bounds the goroutines used by Verify. Zero means GOMAXPROCS.
	Workers int

	// ProgressInterval throttles progress logging.
	ProgressInterval time.Duration
}

var DefaultConfig = Config{
	Seed:             0,
	Queries:          10_000,
	VerifySize:       100_000,
	BenchQueries:     1_000_000,
	Rounds:           1,
	Workers:          0,
	ProgressInterval: 5 * time.Second,
}

func (def Config) Flags(flags *pflag.FlagSet) {
	flags.Int64("seed", def.Seed, "Offset added to the data and query seeds")
	flags.Int("queries", def.Queries, "Number of random queries checked by the integrity check")
	flags.Int("verify-size", def.VerifySize, "Number of keys used by the integrity check")
	flags.Int("bench-queries", def.BenchQueries, "Number of random queries timed per round")
	flags.Int("rounds", def.Rounds, "Number of timed rounds per layout and size")
	flags.Int("workers", def.Workers, "Goroutines used by the integrity check (0 for GOMAXPROCS)")
	flags.Duration("progress-interval", def.ProgressInterval, "Minimum interval between progress messages")
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Queries < 0 {
		errs = append(errs, fmt.Errorf("queries must not be negative, got %d", cfg.Queries))
	}
	if cfg.VerifySize < 0 {
		errs = append(errs, fmt.Errorf("verify-size must not be negative, got %d", cfg.VerifySize))
	}
	if cfg.BenchQueries < 1 {
		errs = append(errs, fmt.Errorf("bench-queries must be positive, got %d", cfg.BenchQueries))
	}
	if cfg.Rounds < 1 {
		errs = append(errs, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", cfg.Workers))
	}
	return errors.Join(errs...)
}

// The data and query seeds used for every run, offset by Config.Seed.
const (
	dataSeed  = 222
	querySeed = 22
)

type Harness struct {
	cfg      Config
	log      *slog.Logger
	registry *flatsearch.Registry
}

func New(cfg Config, log *slog.Logger, registry *flatsearch.Registry) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid harness config: %w", err)
	}
	return &Harness{cfg: cfg, log: log, registry: registry}, nil
}

type params struct {
	cell.In

	Config   Config
	Log      *slog.Logger
	Registry *flatsearch.Registry
}

func newHiveHarness(p params) (*Harness, error) {
	return New(p.Config, p.Log, p.Registry)
}

func (h *Harness) Config() Config {
	return h.cfg
}

func (h *Harness) Registry() *flatsearch.Registry {
	return h.registry
}

func (h *Harness) workers() int {
	if h.cfg.Workers > 0 {
		return h.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (h *Harness) dataSeed() uint64  { return uint64(dataSeed + h.cfg.Seed) }
func (h *Harness) querySeed() uint64 { return uint64(querySeed + h.cfg.Seed) }
