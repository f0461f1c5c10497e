// Package rng provides the single seedable random source of a simulation run.
// Topology generation, risk sampling, the scheduler and every transition
// decision draw from the same Source, so a seed fully determines a run.
//
// A Source is NOT safe for concurrent use. The engine is single-threaded.
package rng

import "math/rand/v2"

// streamSalt selects the PCG stream for a given seed.
const streamSalt = 0x9e3779b97f4a7c15

// Source wraps a PCG generator and counts draws.
type Source struct {
	r     *rand.Rand
	seed  uint64
	draws uint64
}

// New creates a Source seeded with seed.
func New(seed uint64) *Source {
	s := &Source{}
	s.Reseed(seed)
	return s
}

// Reseed resets the generator to the start of the stream for seed.
func (s *Source) Reseed(seed uint64) {
	s.r = rand.New(rand.NewPCG(seed, seed^streamSalt))
	s.seed = seed
	s.draws = 0
}

// Seed returns the seed the Source was last (re)seeded with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Draws returns how many values have been consumed since the last reseed.
func (s *Source) Draws() uint64 {
	return s.draws
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	s.draws++
	return s.r.Float64()
}

// Chance draws one uniform value and reports whether it falls below p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// IntN returns a uniform int in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	s.draws++
	return s.r.IntN(n)
}

// Shuffle permutes n elements uniformly (Fisher-Yates) using swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		swap(i, j)
	}
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](s *Source, items []T) T {
	return items[s.IntN(len(items))]
}
