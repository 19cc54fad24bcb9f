package strategy

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tarper/pkg/search"
)

// MCTS searches orderings with a pruned prefix tree.
//
// It is only loosely modelled on Monte Carlo tree search: there are no
// rollouts or visit counts. The tree is seeded with the scan order and
// Options.InitSamples random perturbations of it. Every iteration then
// selects a leaf, derives a new complete ordering from its path by
// crossover (or mutation with Options.Mutate), measures it and folds the
// cost back into the tree.
//
// During the first half of the budget selection samples freely. During the
// second half the first len(files)/(budget/i) levels follow the best known
// prefix, capped so that at least three positions remain free, which
// concentrates effort on the tail of good orderings. Every
// Options.PruneInterval iterations the tree is pruned to Options.PruneCount
// children per level; once the run is past a third of its budget the prune
// keeps full width for the first len(files)/(budget/i) levels.
type MCTS struct{}

func (MCTS) Name() string    { return "mcts" }
func (MCTS) Evaluates() bool { return true }
func (MCTS) Describe() string {
	return "tree search over ordering prefixes with crossover and pruning"
}

func (s MCTS) Order(ctx context.Context, env *Env) ([]string, error) {
	r := newRun(s.Name(), env)
	files := env.Paths()
	n := len(files)
	opts := env.Options

	tree, err := s.initialize(ctx, r, files)
	if err != nil {
		return nil, err
	}

	budget := opts.Iterations
	for i := 0; i < budget; i++ {
		if err := r.tick(ctx, i); err != nil {
			return nil, err
		}
		if i%opts.PruneInterval == 0 {
			depth := 0
			if i > 0 && budget/i <= 2 {
				depth = n / (budget / i)
			}
			removed := tree.Prune(opts.PruneCount, depth)
			r.logger.Debug("Pruned", "iteration", i, "depth", depth, "removed", removed, "leaves", tree.Size())
			env.Hooks.OnPrune(ctx, s.Name(), removed, tree.Size())
		}

		depth := 0
		if i > 0 && i >= budget/2 {
			depth = n / (budget / i)
			if depth+3 >= n {
				depth = n - 3
			}
			depth = max(depth, 0)
		}
		leaf := tree.ChoosePath(opts.ExplorationRatio, depth)

		path, err := s.extend(tree, files, leaf.Path(), depth, opts.Mutate)
		if err != nil {
			return nil, err
		}
		cost, ok, err := r.measure(ctx, path)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, err := tree.Update(path, cost); err != nil {
			return nil, err
		}
		if r.logger.GetLevel() <= log.DebugLevel {
			r.logger.Debug("Evaluated", "iteration", i, "cost", cost, "ranks", tree.SampleRanks(path))
		}
		r.offer(ctx, i, path, cost)
	}

	best := tree.BestPath()
	if cost, ok := tree.Best(); ok && len(best) == n {
		r.best, r.cost = best, cost
	}
	r.logger.Debug("Tree", "leaves", tree.Size(), "nodes", tree.NodeCount())
	return r.done(), nil
}

// initialize records the scan order and InitSamples perturbations of it,
// each made of InitSwaps random swaps.
func (s MCTS) initialize(ctx context.Context, r *run, files []string) (*search.Tree, error) {
	env := r.env
	tree := search.NewTree(env.Rand)
	tree.SetSampleOrder(files)

	if err := r.reference(ctx, files); err != nil {
		return nil, err
	}
	if _, err := tree.Update(files, r.cost); err != nil {
		return nil, err
	}

	for k := 0; k < env.Options.InitSamples; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		order := slices.Clone(files)
		for range env.Options.InitSwaps {
			swapRandom(env, order)
		}
		cost, ok, err := r.measure(ctx, order)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, err := tree.Update(order, cost); err != nil {
			return nil, err
		}
		r.offer(ctx, 0, order, cost)
	}
	r.logger.Debug("Initialized", "samples", env.Options.InitSamples, "leaves", tree.Size())
	return tree, nil
}

// extend derives a complete ordering from path. Mutation needs at least
// three files; smaller sets always use crossover.
func (MCTS) extend(tree *search.Tree, files, path []string, depth int, mutate bool) ([]string, error) {
	if mutate && len(files) > 2 {
		return tree.NewPath(files, path, depth)
	}
	return tree.CombinedPath(files, path, depth)
}
