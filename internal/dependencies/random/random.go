package random

import (
	mathrand "math/rand/v2"
)

// Random provides random number generation that can be mocked or seeded
// for testing. Game logic must never reach for an ambient global source.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Range returns a random int in [lo, hi] inclusive
	Range(lo, hi int) int

	// Float64 returns a random float64 in [0, 1)
	Float64() float64

	// Perm returns a random permutation of [0, n)
	Perm(n int) []int
}

// PCG implements Random using math/rand/v2, optionally seeded
type PCG struct {
	rng *mathrand.Rand
}

// New creates a PCG source seeded from the global generator
func New() *PCG {
	return NewSeeded(mathrand.Uint64(), mathrand.Uint64())
}

// NewSeeded creates a deterministic PCG source
func NewSeeded(seed1, seed2 uint64) *PCG {
	return &PCG{rng: mathrand.New(mathrand.NewPCG(seed1, seed2))}
}

// Intn returns a random int in [0, n)
func (r *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// Range returns a random int in [lo, hi] inclusive
func (r *PCG) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.IntN(hi-lo+1)
}

// Float64 returns a random float64 in [0, 1)
func (r *PCG) Float64() float64 {
	return r.rng.Float64()
}

// Perm returns a random permutation of [0, n)
func (r *PCG) Perm(n int) []int {
	return r.rng.Perm(n)
}
