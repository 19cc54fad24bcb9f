package strategy

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tarper/pkg/errors"
)

// improves reports whether candidate beats reference by the two-byte noise
// margin.
func improves(candidate, reference int64) bool {
	return candidate+1 < reference
}

// run tracks one searching strategy: the current best, logging and hooks.
type run struct {
	name    string
	env     *Env
	logger  *log.Logger
	start   time.Time
	best    []string
	cost    int64
	skipped int
}

func newRun(name string, env *Env) *run {
	return &run{
		name:   name,
		env:    env,
		logger: env.Logger.With("strategy", name),
		start:  time.Now(),
	}
}

// reference measures the starting ordering. Any failure is fatal.
func (r *run) reference(ctx context.Context, order []string) error {
	cost, err := r.env.Oracle.Cost(ctx, order)
	if err != nil {
		return fmt.Errorf("measure starting order: %w", err)
	}
	r.best, r.cost = slices.Clone(order), cost
	r.logger.Info("Starting", "files", len(order), "cost", cost)
	r.env.Hooks.OnImprove(ctx, r.name, cost)
	return nil
}

// measure returns the cost of order. ok is false when the oracle failed
// recoverably; the candidate is then skipped. Other errors are returned.
func (r *run) measure(ctx context.Context, order []string) (cost int64, ok bool, err error) {
	cost, err = r.env.Oracle.Cost(ctx, order)
	if err == nil {
		return cost, true, nil
	}
	if errors.Recoverable(err) {
		r.skipped++
		r.logger.Debug("Skipping candidate", "err", err)
		return 0, false, nil
	}
	return 0, false, err
}

// offer records order as the new best if it improves on the current best by
// the noise margin.
func (r *run) offer(ctx context.Context, iteration int, order []string, cost int64) bool {
	if !improves(cost, r.cost) {
		return false
	}
	r.logger.Info("New best", "iteration", iteration, "cost", cost, "saved", r.cost-cost)
	r.best, r.cost = slices.Clone(order), cost
	r.env.Hooks.OnImprove(ctx, r.name, cost)
	return true
}

// tick logs a heartbeat every Options.Heartbeat iterations and reports
// cancellation.
func (r *run) tick(ctx context.Context, iteration int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hb := r.env.Options.Heartbeat; hb > 0 && iteration > 0 && iteration%hb == 0 {
		r.logger.Debug("Searching...", "iteration", iteration, "best", r.cost,
			"elapsed", time.Since(r.start).Truncate(time.Millisecond))
	}
	return nil
}

// done logs the final result and returns the best ordering.
func (r *run) done() []string {
	r.logger.Info("Done", "cost", r.cost, "skipped", r.skipped,
		"elapsed", time.Since(r.start).Truncate(time.Millisecond))
	return r.best
}

// swapRandom exchanges two uniformly drawn positions, which may coincide.
func swapRandom(env *Env, order []string) {
	i, j := env.Rand.IntN(len(order)), env.Rand.IntN(len(order))
	order[i], order[j] = order[j], order[i]
}
