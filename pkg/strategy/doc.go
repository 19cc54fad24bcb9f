// Package strategy implements the orderings tarper can produce.
//
// A [Strategy] turns the scanned files of a source tree into an ordering.
// Static strategies (default, size, random, permutewithindirectory,
// naivesimilarity, nonnaivesimilarity, binsort) compute the ordering directly.
// Searching strategies (swapping, swappingwithpermutation,
// nonnaivesimilaritywithswap, counted, hillclimb, mcts) repeatedly ask the
// cost oracle for the compressed size of candidate orderings and keep the
// cheapest one.
//
// # Noise Margin
//
// Archive sizes can drift by a byte between runs over identical input, so a
// candidate only counts as an improvement when it is at least two bytes
// smaller than the reference:
//
//	improves(candidate, reference) == candidate+1 < reference
//
// # Failures
//
// The first measurement of a search is its reference and must succeed; any
// error there is returned. Later oracle failures (ORACLE_FAILURE) skip the
// candidate without recording a cost. Invariant violations and context
// cancellation end the run immediately.
//
// # Catalog
//
// [Default] returns a [Catalog] with every strategy registered in a fixed
// order, which is also the order `tarper run --all` uses.
package strategy
