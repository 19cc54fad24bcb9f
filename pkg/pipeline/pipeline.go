// Package pipeline runs ordering strategies end to end for tarper.
//
// A run scans the source directory, builds the archive cost oracle (wrapped
// in the cost cache and an evaluation tracker), executes one strategy from
// the catalog, measures the resulting ordering and optionally writes the
// final archive. The CLI uses this package for every command that searches,
// so defaults and validation live here in one place.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:     "./src",
//	    Target:     "./out/src",
//	    Strategy:   "mcts",
//	    Scheme:     "zst",
//	    Iterations: 5000,
//	})
//	if err != nil {
//	    var serr *pipeline.StrategyError
//	    if errors.As(err, &serr) && serr.HasBest {
//	        // serr.Best is the cheapest ordering measured before the failure
//	    }
//	    return err
//	}
//	fmt.Println(result.Cost, result.Archive)
//
// [Runner.ExecuteAll] runs every catalog strategy over the same scan.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/oracle"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config files
// =============================================================================

const (
	// DefaultStrategy is the strategy used when none is given.
	DefaultStrategy = "mcts"

	// DefaultScheme is the compression scheme used when none is given.
	DefaultScheme = oracle.Gzip

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultCacheTTL is how long measured costs stay cached.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for a run.
type Options struct {
	// Source is the directory whose files are ordered.
	Source string `json:"source"`
	// Target is the archive path prefix. When set, each run writes
	// <Target>_<strategy>.tar.<scheme>.
	Target string `json:"target,omitempty"`
	// Strategy is the catalog name of the strategy to run.
	Strategy string `json:"strategy,omitempty"`
	// Scheme is the compression scheme ("gz" or "zst").
	Scheme string `json:"scheme,omitempty"`
	// Seed seeds every random decision of the run. Nil means DefaultSeed;
	// zero is a valid seed.
	Seed *uint64 `json:"seed,omitempty"`

	// Search tuning, see strategy.Options.
	Iterations         int     `json:"iterations,omitempty"`
	ExplorationRatio   float64 `json:"exploration_ratio,omitempty"`
	PruneCount         int     `json:"prune_count,omitempty"`
	PruneInterval      int     `json:"prune_interval,omitempty"`
	InitSamples        int     `json:"init_samples,omitempty"`
	InitSwaps          int     `json:"init_swaps,omitempty"`
	Mutate             bool    `json:"mutate,omitempty"`
	Candidates         int     `json:"candidates,omitempty"`
	RestartProbability *float64 `json:"restart_probability,omitempty"`
	Binsort            string  `json:"binsort,omitempty"`

	// CacheTTL bounds the lifetime of cached costs.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Logger overrides the runner's logger for this run (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// SetDefaults fills empty fields.
func (o *Options) SetDefaults() {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.Scheme == "" {
		o.Scheme = string(DefaultScheme)
	}
	if o.Seed == nil {
		seed := DefaultSeed
		o.Seed = &seed
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source directory is required")
	}
	if err := errors.ValidatePath(o.Source); err != nil {
		return err
	}
	if o.Target != "" {
		if err := errors.ValidatePath(o.Target); err != nil {
			return err
		}
	}
	o.SetDefaults()

	scheme, err := oracle.ParseScheme(o.Scheme)
	if err != nil {
		return err
	}
	o.Scheme = string(scheme)

	if err := errors.ValidateName(errors.ErrCodeInvalidStrategy, "strategy", o.Strategy); err != nil {
		return err
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative, got %s", o.CacheTTL)
	}
	so := o.StrategyOptions()
	so.SetDefaults()
	if err := so.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// StrategyOptions returns the search tuning part of o.
func (o *Options) StrategyOptions() strategy.Options {
	return strategy.Options{
		Iterations:         o.Iterations,
		ExplorationRatio:   o.ExplorationRatio,
		PruneCount:         o.PruneCount,
		PruneInterval:      o.PruneInterval,
		InitSamples:        o.InitSamples,
		InitSwaps:          o.InitSwaps,
		Mutate:             o.Mutate,
		Candidates:         o.Candidates,
		RestartProbability: o.RestartProbability,
		Binsort:            o.Binsort,
	}
}

// ArchivePath returns the final archive path for strategy name, or "" when
// no target is set.
func (o *Options) ArchivePath(name string) string {
	if o.Target == "" {
		return ""
	}
	return o.Target + "_" + name + oracle.Scheme(o.Scheme).Extension()
}

// =============================================================================
// Results
// =============================================================================

// Result describes one finished strategy run.
type Result struct {
	// RunID identifies the run in logs and metrics.
	RunID uuid.UUID

	// Strategy is the catalog name of the strategy.
	Strategy string

	// Order is the ordering the strategy produced.
	Order []string

	// Cost is the compressed size of Order. Measured is false when the
	// ordering could not be measured (fewer than two files or an oracle
	// failure).
	Cost     int64
	Measured bool

	// Archive is the path of the written archive, if any.
	Archive string

	// Stats contains evaluation counts and timing.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Files       int
	Evaluations int
	Failures    int
	Duration    time.Duration
}

// StrategyError reports a failed strategy together with the cheapest
// ordering measured before it failed.
type StrategyError struct {
	Strategy string
	Best     []string
	Cost     int64
	HasBest  bool
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }
