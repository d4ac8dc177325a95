package engine

import (
	"math/rand/v2"
)

// Selector picks a move from a ranked list, modelling imperfect play.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector drawing from rng. A nil rng gets a freshly
// seeded generator.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// Pick returns an index into a ranked list of n moves. Starting from the best
// move, each draw above intelligence moves one rank down, stopping at the last
// move. intelligence 1 always returns 0.
func (s *Selector) Pick(n int, intelligence float64) int {
	rank := 0
	for rank < n-1 && s.rng.Float64() > intelligence {
		rank++
	}
	return rank
}
