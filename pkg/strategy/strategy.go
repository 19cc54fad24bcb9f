package strategy

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/observability"
	"github.com/matzehuels/tarper/pkg/oracle"
	"github.com/matzehuels/tarper/pkg/scan"
	"github.com/matzehuels/tarper/pkg/search"
)

// Strategy produces an ordering of the files in an [Env].
type Strategy interface {
	// Name is the catalog key, e.g. "mcts".
	Name() string
	// Describe is a one-line summary for listings.
	Describe() string
	// Evaluates reports whether the strategy calls the cost oracle.
	Evaluates() bool
	// Order returns a permutation of env's file identifiers.
	Order(ctx context.Context, env *Env) ([]string, error)
}

// Tuning defaults.
const (
	DefaultIterations         = 1000
	DefaultPruneCount         = 5
	DefaultPruneInterval      = 100
	DefaultInitSamples        = 512
	DefaultInitSwaps          = 5
	DefaultCandidates         = 4
	DefaultRestartProbability = 0.05
	DefaultHeartbeat          = 1000
	DefaultBinsort            = "binsort"
)

// Options tunes the searching strategies. Zero fields take the defaults
// above, except RestartProbability where only nil does; see
// [Options.SetDefaults].
type Options struct {
	// Iterations is the evaluation budget of counted, hillclimb and mcts.
	Iterations int
	// ExplorationRatio is the selection ratio of the tree search.
	ExplorationRatio float64
	// PruneCount is the width kept by each periodic prune.
	PruneCount int
	// PruneInterval is the number of iterations between prunes.
	PruneInterval int
	// InitSamples is the number of random perturbations recorded before the
	// tree search starts.
	InitSamples int
	// InitSwaps is the number of random swaps per initial perturbation.
	InitSwaps int
	// Mutate makes the tree search extend paths with mutation (Tree.NewPath)
	// instead of crossover (Tree.CombinedPath).
	Mutate bool
	// Candidates is the number of single-swap candidates per hill-climbing round.
	Candidates int
	// RestartProbability is the chance that hill climbing adopts a round's
	// best candidate even when it is no improvement. Nil means the default;
	// a zero probability turns random restarts off.
	RestartProbability *float64
	// Heartbeat is the number of iterations between progress logs.
	Heartbeat int
	// Binsort is the executable used by the binsort strategy.
	Binsort string
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.ExplorationRatio == 0 {
		o.ExplorationRatio = search.DefaultRatio
	}
	if o.PruneCount == 0 {
		o.PruneCount = DefaultPruneCount
	}
	if o.PruneInterval == 0 {
		o.PruneInterval = DefaultPruneInterval
	}
	if o.InitSamples == 0 {
		o.InitSamples = DefaultInitSamples
	}
	if o.InitSwaps == 0 {
		o.InitSwaps = DefaultInitSwaps
	}
	if o.Candidates == 0 {
		o.Candidates = DefaultCandidates
	}
	if o.RestartProbability == nil {
		p := DefaultRestartProbability
		o.RestartProbability = &p
	}
	if o.Heartbeat == 0 {
		o.Heartbeat = DefaultHeartbeat
	}
	if o.Binsort == "" {
		o.Binsort = DefaultBinsort
	}
}

// Validate rejects settings no strategy can work with.
func (o *Options) Validate() error {
	switch {
	case o.Iterations < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "iterations must not be negative, got %d", o.Iterations)
	case o.ExplorationRatio <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "exploration ratio must be positive, got %g", o.ExplorationRatio)
	case o.PruneCount < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "prune count must not be negative, got %d", o.PruneCount)
	case o.PruneInterval <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "prune interval must be positive, got %d", o.PruneInterval)
	case o.InitSamples < 0 || o.InitSwaps < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "initial samples and swaps must not be negative")
	case o.Candidates <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "candidates must be positive, got %d", o.Candidates)
	case o.RestartProbability != nil && (*o.RestartProbability < 0 || *o.RestartProbability > 1):
		return errors.New(errors.ErrCodeInvalidConfig, "restart probability must be within [0, 1], got %g", *o.RestartProbability)
	}
	return nil
}

// Env is everything a strategy may use during one run.
type Env struct {
	// Root is the scanned source directory.
	Root string
	// Files are the scanned files; their Path fields are the identifiers.
	Files []scan.File
	// Oracle measures orderings. Static strategies ignore it.
	Oracle oracle.Oracle
	// Rand drives every random decision.
	Rand *rand.Rand
	// Logger receives progress; nil means log.Default().
	Logger *log.Logger
	// Hooks receives search events; nil means observability.Search().
	Hooks observability.SearchHooks
	// Options tunes the search.
	Options Options
}

// Paths returns the file identifiers in scan order.
func (e *Env) Paths() []string { return scan.Paths(e.Files) }

// prepare fills defaults in place.
func (e *Env) prepare() error {
	if e.Rand == nil {
		e.Rand = search.NewRand(0)
	}
	if e.Logger == nil {
		e.Logger = log.Default()
	}
	if e.Hooks == nil {
		e.Hooks = observability.Search()
	}
	e.Options.SetDefaults()
	return e.Options.Validate()
}

// searchable validates env for a strategy that calls the oracle.
func (e *Env) searchable() error {
	if e.Oracle == nil {
		return errors.New(errors.ErrCodeInternal, "no cost oracle configured")
	}
	return errors.ValidateFileSet(e.Paths())
}

// Catalog maps strategy names to implementations, preserving registration
// order.
type Catalog struct {
	byName map[string]Strategy
	names  []string
}

// NewCatalog registers strategies in order. It panics on a duplicate name.
func NewCatalog(strategies ...Strategy) *Catalog {
	c := &Catalog{byName: make(map[string]Strategy)}
	for _, s := range strategies {
		if err := c.Register(s); err != nil {
			panic(err)
		}
	}
	return c
}

// Register adds s. Names must be lowercase alphanumeric and unique.
func (c *Catalog) Register(s Strategy) error {
	if err := errors.ValidateName(errors.ErrCodeInvalidStrategy, "strategy", s.Name()); err != nil {
		return err
	}
	if _, dup := c.byName[s.Name()]; dup {
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy %q registered twice", s.Name())
	}
	c.byName[s.Name()] = s
	c.names = append(c.names, s.Name())
	return nil
}

// Get returns the strategy called name.
func (c *Catalog) Get(name string) (Strategy, error) {
	if s, ok := c.byName[name]; ok {
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStrategy,
		"unknown strategy %q (available: %s)", name, strings.Join(c.names, ", "))
}

// Names returns the registered names in registration order.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// All returns the registered strategies in registration order.
func (c *Catalog) All() []Strategy {
	out := make([]Strategy, len(c.names))
	for i, n := range c.names {
		out[i] = c.byName[n]
	}
	return out
}

// Default returns the catalog of every built-in strategy.
func Default() *Catalog {
	return NewCatalog(
		Swapping{},
		SwappingWithPermutation{},
		Random{},
		MCTS{},
		PermuteWithinDirectory{},
		Identity{},
		NonNaiveSimilarity{},
		NaiveSimilarity{},
		NonNaiveSimilarityWithSwap{},
		BySize{},
		Binsort{},
		HillClimb{},
		Counted{},
	)
}

// Run fills env defaults, checks that a searching strategy has an oracle and
// at least two distinct files, and runs s.
func Run(ctx context.Context, s Strategy, env *Env) ([]string, error) {
	if err := env.prepare(); err != nil {
		return nil, err
	}
	if s.Evaluates() {
		if err := env.searchable(); err != nil {
			return nil, err
		}
	}
	return s.Order(ctx, env)
}
