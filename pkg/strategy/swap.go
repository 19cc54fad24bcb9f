package strategy

import (
	"context"
	"slices"

	"github.com/matzehuels/tarper/pkg/similarity"
)

// adjacentSwap hill-climbs from start by exchanging neighbours.
//
// Position i is swapped with i+1; an improving swap is kept and the scan
// steps back three positions (clamped at 0) before advancing again, so
// earlier pairs affected by the move are re-examined. The scan ends when
// i+1 reaches the end. Every accepted swap lowers the cost by at least two
// bytes, so the scan terminates.
func adjacentSwap(ctx context.Context, r *run, start []string) ([]string, error) {
	if err := r.reference(ctx, start); err != nil {
		return nil, err
	}

	for i, iteration := 0, 1; i+1 < len(r.best); iteration++ {
		if err := r.tick(ctx, iteration); err != nil {
			return nil, err
		}
		next := slices.Clone(r.best)
		next[i], next[i+1] = next[i+1], next[i]

		cost, ok, err := r.measure(ctx, next)
		if err != nil {
			return nil, err
		}
		if ok && r.offer(ctx, iteration, next, cost) {
			i = max(0, i-3)
		}
		i++
	}
	return r.done(), nil
}

// Swapping hill-climbs adjacent swaps from the scan order.
type Swapping struct{}

func (Swapping) Name() string    { return "swapping" }
func (Swapping) Evaluates() bool { return true }
func (Swapping) Describe() string {
	return "adjacent-swap hill climbing from the scan order"
}

func (s Swapping) Order(ctx context.Context, env *Env) ([]string, error) {
	return adjacentSwap(ctx, newRun(s.Name(), env), env.Paths())
}

// SwappingWithPermutation hill-climbs adjacent swaps from a random
// permutation within each directory.
type SwappingWithPermutation struct{}

func (SwappingWithPermutation) Name() string    { return "swappingwithpermutation" }
func (SwappingWithPermutation) Evaluates() bool { return true }
func (SwappingWithPermutation) Describe() string {
	return "adjacent-swap hill climbing from a per-directory shuffle"
}

func (s SwappingWithPermutation) Order(ctx context.Context, env *Env) ([]string, error) {
	return adjacentSwap(ctx, newRun(s.Name(), env), permuteWithinDirectory(env))
}

// NonNaiveSimilarityWithSwap hill-climbs adjacent swaps from the
// similarity chain.
type NonNaiveSimilarityWithSwap struct{}

func (NonNaiveSimilarityWithSwap) Name() string    { return "nonnaivesimilaritywithswap" }
func (NonNaiveSimilarityWithSwap) Evaluates() bool { return true }
func (NonNaiveSimilarityWithSwap) Describe() string {
	return "similarity chain refined by adjacent-swap hill climbing"
}

func (s NonNaiveSimilarityWithSwap) Order(ctx context.Context, env *Env) ([]string, error) {
	start, err := similarityChain(env)
	if err != nil {
		return nil, err
	}
	return adjacentSwap(ctx, newRun(s.Name(), env), start)
}

// Counted hill-climbs random single swaps for the iteration budget.
type Counted struct{}

func (Counted) Name() string    { return "counted" }
func (Counted) Evaluates() bool { return true }
func (Counted) Describe() string {
	return "random single-swap hill climbing for a fixed budget"
}

func (s Counted) Order(ctx context.Context, env *Env) ([]string, error) {
	r := newRun(s.Name(), env)
	if err := r.reference(ctx, env.Paths()); err != nil {
		return nil, err
	}

	for i := 1; i <= env.Options.Iterations; i++ {
		if err := r.tick(ctx, i); err != nil {
			return nil, err
		}
		next := slices.Clone(r.best)
		swapRandom(env, next)

		cost, ok, err := r.measure(ctx, next)
		if err != nil {
			return nil, err
		}
		if ok {
			r.offer(ctx, i, next, cost)
		}
	}
	return r.done(), nil
}

// similarityChain shuffles the files and chains them by similarity. The
// shuffle decides ties between equally similar files.
func similarityChain(env *Env) ([]string, error) {
	paths := env.Paths()
	env.Rand.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })

	counts, err := tokenize(env.Root, paths, similarity.MinTokenLength)
	if err != nil {
		return nil, err
	}
	return similarity.Order(paths, counts), nil
}
