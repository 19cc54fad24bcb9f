package search

import (
	"slices"

	"github.com/matzehuels/tarper/pkg/errors"
)

// CrossoverRate is the per-position probability that [Tree.CombinedPath]
// splices in a follower from the second ordering.
const CrossoverRate = 0.1

// CombinedPath builds a new ordering of files from path by crossover.
//
// A second ordering is sampled with ChoosePath(DefaultRatio, forcedDepth).
// path is then copied element by element, skipping entries already placed;
// after placing an element, with probability [CrossoverRate] the element that
// follows it in the second ordering is placed right after it, unless it has
// been placed already.
//
// The result must contain every file exactly once. Anything else is a logic
// error and is reported as INVARIANT_VIOLATION.
func (t *Tree) CombinedPath(files, path []string, forcedDepth int) ([]string, error) {
	second := t.ChoosePath(DefaultRatio, forcedDepth).Path()
	next := make(map[string]string, len(second))
	for i := 0; i+1 < len(second); i++ {
		next[second[i]] = second[i+1]
	}

	combined := make([]string, 0, len(files))
	chosen := make(map[string]bool, len(files))
	for _, f := range path {
		if chosen[f] {
			continue
		}
		combined = append(combined, f)
		chosen[f] = true

		if t.rng.Float64() < CrossoverRate {
			if follower, ok := next[f]; ok && !chosen[follower] {
				combined = append(combined, follower)
				chosen[follower] = true
			}
		}
	}

	if err := errors.ValidatePermutation(files, combined); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "combined path")
	}
	return combined, nil
}

// NewPath builds a new ordering of files by mutation.
//
// It keeps a prefix of path whose length is drawn uniformly from
// [max(forcedDepth, 1), len(files)-1) and appends the remaining files in
// random order. An empty draw range is INVALID_INPUT; a result that is not a
// permutation of files is INVARIANT_VIOLATION.
func (t *Tree) NewPath(files, path []string, forcedDepth int) ([]string, error) {
	lo := max(forcedDepth, 1)
	span := len(files) - 1 - lo
	if span <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"cannot mutate %d files with forced depth %d", len(files), forcedDepth)
	}
	keep := min(lo+t.rng.IntN(span), len(path))

	prefix := slices.Clone(path[:keep])
	kept := make(map[string]bool, keep)
	for _, f := range prefix {
		kept[f] = true
	}
	var trailing []string
	for _, f := range files {
		if !kept[f] {
			trailing = append(trailing, f)
		}
	}
	t.rng.Shuffle(len(trailing), func(i, j int) {
		trailing[i], trailing[j] = trailing[j], trailing[i]
	})
	out := append(prefix, trailing...)

	if err := errors.ValidatePermutation(files, out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "new path")
	}
	return out, nil
}
