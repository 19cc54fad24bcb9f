package strategy

import (
	"context"
	"slices"
)

// HillClimb is probabilistic hill climbing.
//
// Each round draws Options.Candidates single-swap neighbours of the current
// ordering; every candidate costs one iteration of the budget. The cheapest
// candidate of the round becomes the new best if it beats the best by the
// noise margin. It also becomes the current ordering if it beats the
// current one by the margin or, with Options.RestartProbability, regardless,
// which lets the climb leave local minima.
type HillClimb struct{}

func (HillClimb) Name() string    { return "hillclimb" }
func (HillClimb) Evaluates() bool { return true }
func (HillClimb) Describe() string {
	return "probabilistic hill climbing with random sideways moves"
}

func (s HillClimb) Order(ctx context.Context, env *Env) ([]string, error) {
	r := newRun(s.Name(), env)
	if err := r.reference(ctx, env.Paths()); err != nil {
		return nil, err
	}
	current, currentCost := slices.Clone(r.best), r.cost
	budget := env.Options.Iterations

	for iteration := 0; iteration < budget; {
		if err := r.tick(ctx, iteration); err != nil {
			return nil, err
		}

		var candidate []string
		var candidateCost int64
		for c := 0; c < env.Options.Candidates && iteration < budget; c++ {
			iteration++
			next := slices.Clone(current)
			swapRandom(env, next)

			cost, ok, err := r.measure(ctx, next)
			if err != nil {
				return nil, err
			}
			if ok && (candidate == nil || cost < candidateCost) {
				candidate, candidateCost = next, cost
			}
		}
		if candidate == nil {
			continue
		}

		r.offer(ctx, iteration, candidate, candidateCost)
		switch {
		case improves(candidateCost, currentCost):
			current, currentCost = candidate, candidateCost
		case env.Rand.Float64() < *env.Options.RestartProbability:
			r.logger.Debug("Switched randomly", "iteration", iteration,
				"current", currentCost, "candidate", candidateCost, "best", r.cost)
			current, currentCost = candidate, candidateCost
		}
	}
	return r.done(), nil
}
