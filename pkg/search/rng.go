package search

import "math/rand/v2"

// NewRand returns a deterministic PCG-backed random source for seed.
// The same seed always yields the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
