package draw

import "math/rand/v2"

// RandomSource abstracts the randomness behind draws so tests can pin
// the rolls.
type RandomSource interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// IntN returns a uniform value in [0,n).
	IntN(n int) int
}

type defaultRandomSource struct{}

func (defaultRandomSource) Float64() float64 { return rand.Float64() }
func (defaultRandomSource) IntN(n int) int   { return rand.IntN(n) }

// NewRandomSource returns the production source backed by the shared
// PRNG.
func NewRandomSource() RandomSource {
	return defaultRandomSource{}
}

// NewSeededRandomSource returns a deterministic source for tests and
// reproducible simulations.
func NewSeededRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed))
}
