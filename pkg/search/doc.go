// Package search implements the prefix tree that drives tarper's
// tree-structured best-first search over file orderings.
//
// # The Ordering Problem
//
// Compressors exploit redundancy between neighbouring bytes, so the order in
// which files are concatenated into an archive changes its compressed size.
// The number of orderings is n!, and every evaluation is expensive (an archive
// has to be built and compressed), so the search has to decide carefully which
// orderings are worth measuring.
//
// # The Prefix Tree
//
// Every path from the root of a [Tree] to a [Node] is a prefix of an ordering.
// Each node caches the best (lowest) and worst (highest) cost observed among
// all evaluated orderings that share its prefix. [Tree.Update] records one
// evaluated ordering, creating missing nodes on the way down; nothing else
// ever inserts nodes.
//
// # Selection
//
// [Tree.ChoosePath] walks from the root to a leaf in two phases: a forced
// greedy phase that follows [Tree.BestChild] for a fixed number of levels, and
// a stochastic phase that samples children in proportion to [Weight]. The
// weight gives every child a floor of 1/ratio and adds a bonus for how much
// of the parent's worst-to-best spread the child accounts for, so larger
// ratios prefer cheap subtrees more strongly while never starving the rest.
//
// # Pruning
//
// [Tree.Prune] bounds the width of the tree by keeping only the cheapest
// children at each level. The retention budget stays at its full value for
// the first depth levels and then shrinks by one per retained sibling, so the
// most promising branches near the root survive longest.
//
// # Path Operators
//
// [Tree.CombinedPath] is a crossover operator that splices followers from a
// second sampled ordering into an existing one. [Tree.NewPath] is a mutation
// operator that keeps a random-length prefix and shuffles the rest. Both
// verify that they return a full permutation of the file set and report an
// INVARIANT_VIOLATION error otherwise.
//
// # Randomness
//
// Every random decision goes through the *rand.Rand passed to [NewTree].
// Children are always visited in key order before a draw, so two trees fed
// the same updates with the same seed make the same choices.
//
// A Tree is not safe for concurrent use.
package search
