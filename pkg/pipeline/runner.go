package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tarper/pkg/cache"
	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/observability"
	"github.com/matzehuels/tarper/pkg/oracle"
	"github.com/matzehuels/tarper/pkg/scan"
	"github.com/matzehuels/tarper/pkg/search"
	"github.com/matzehuels/tarper/pkg/strategy"
)

// Runner executes strategies with a shared cost cache.
//
// The Runner is stateless except for the cache, catalog and logger - it
// doesn't store results. Multiple goroutines can use the same Runner with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog *strategy.Catalog
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: strategy.Default(),
		Logger:  logger,
	}
}

// Execute runs the strategy named in opts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	s, err := r.Catalog.Get(opts.Strategy)
	if err != nil {
		return nil, err
	}
	files, arc, err := r.prepare(opts)
	if err != nil {
		return nil, err
	}
	defer arc.Close()

	return r.run(ctx, opts, s, files, arc)
}

// ExecuteAll runs every catalog strategy in registration order over one
// scan. A failing strategy does not stop the others; its error is joined
// into the returned error and it has no entry in the results. Strategies
// this machine cannot run (UNSUPPORTED, such as binsort without its
// executable) are skipped with a warning instead. Cancellation stops the
// loop.
func (r *Runner) ExecuteAll(ctx context.Context, opts Options) ([]*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	files, arc, err := r.prepare(opts)
	if err != nil {
		return nil, err
	}
	defer arc.Close()

	var results []*Result
	var errs []error
	for _, s := range r.Catalog.All() {
		res, err := r.run(ctx, opts, s, files, arc)
		if err != nil {
			if ctx.Err() != nil {
				return results, stderrors.Join(append(errs, err)...)
			}
			if errors.Is(err, errors.ErrCodeUnsupported) {
				r.Logger.Warn("Skipped strategy", "strategy", s.Name(), "reason", errors.UserMessage(err))
				continue
			}
			r.Logger.Error("Strategy failed", "strategy", s.Name(), "err", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, stderrors.Join(errs...)
}

func (r *Runner) prepare(opts Options) ([]scan.File, *oracle.Archive, error) {
	start := time.Now()
	files, err := scan.Walk(opts.Source)
	if err != nil {
		return nil, nil, err
	}
	r.Logger.Info("Scanned source", "dir", opts.Source, "files", len(files),
		"duration", time.Since(start).Truncate(time.Millisecond))

	arc, err := oracle.NewArchive(opts.Source, oracle.Scheme(opts.Scheme))
	if err != nil {
		return nil, nil, err
	}
	return files, arc, nil
}

func (r *Runner) run(ctx context.Context, opts Options, s strategy.Strategy, files []scan.File, arc *oracle.Archive) (*Result, error) {
	id := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}
	logger = logger.With("run", id.String()[:8])
	hooks := observability.Search()

	cached := oracle.NewCached(arc, r.Cache, r.Keyer, opts.Source, arc.Scheme(), opts.CacheTTL)
	tracker := oracle.NewTracker(cached, s.Name())
	env := &strategy.Env{
		Root:    opts.Source,
		Files:   files,
		Oracle:  tracker,
		Rand:    search.NewRand(*opts.Seed),
		Logger:  logger,
		Hooks:   hooks,
		Options: opts.StrategyOptions(),
	}

	hooks.OnRunStart(ctx, s.Name(), len(files))
	start := time.Now()
	order, err := strategy.Run(ctx, s, env)
	if err == nil {
		err = errors.ValidatePermutation(scan.Paths(files), order)
	}
	if err != nil {
		best, cost, ok := tracker.Best()
		hooks.OnRunComplete(ctx, s.Name(), tracker.Evaluations(), cost, time.Since(start), err)
		return nil, &StrategyError{Strategy: s.Name(), Best: best, Cost: cost, HasBest: ok, Err: err}
	}

	res := &Result{
		RunID:    id,
		Strategy: s.Name(),
		Order:    order,
	}
	if len(order) >= errors.MinFiles {
		cost, err := tracker.Cost(ctx, order)
		switch {
		case err == nil:
			res.Cost, res.Measured = cost, true
		case ctx.Err() != nil:
			return nil, &StrategyError{Strategy: s.Name(), Err: ctx.Err()}
		default:
			logger.Warn("Could not measure final ordering", "err", err)
		}
	}
	res.Stats = Stats{
		Files:       len(files),
		Evaluations: tracker.Evaluations(),
		Failures:    tracker.Failures(),
		Duration:    time.Since(start),
	}
	hooks.OnRunComplete(ctx, s.Name(), res.Stats.Evaluations, res.Cost, res.Stats.Duration, nil)

	if path := opts.ArchivePath(s.Name()); path != "" {
		if err := WriteArchiveFile(ctx, path, opts.Source, order, arc.Scheme()); err != nil {
			return nil, &StrategyError{Strategy: s.Name(), Best: order, Cost: res.Cost, HasBest: res.Measured, Err: err}
		}
		res.Archive = path
		logger.Info("Wrote archive", "path", path)
	}

	logger.Info("Finished", "strategy", s.Name(), "cost", res.Cost,
		"evaluations", res.Stats.Evaluations, "duration", res.Stats.Duration.Truncate(time.Millisecond))
	return res, nil
}

// WriteArchiveFile writes the archive of order to path through a temporary
// file in the same directory, so an interrupted write never leaves a
// truncated archive under the final name. Missing directories are created.
func WriteArchiveFile(ctx context.Context, path, root string, order []string, scheme oracle.Scheme) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create archive directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tarper-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create archive")
	}
	defer os.Remove(tmp.Name())

	if err := oracle.WriteArchive(ctx, tmp, root, order, scheme); err != nil {
		tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
