package board

// Tally counts how often each exact board has occurred.
//
// A Tally is persistent: Record returns a new Tally and never changes the
// receiver, so sibling search branches each see only the visits along their own
// path. Internally a Tally is a flat map of counts plus a short chain of
// recorded boards layered on top; Flatten folds the chain back into a map.
// The nil *Tally is a valid empty tally.
type Tally struct {
	parent *Tally
	board  Board

	// counts is only set on a flattened root and is never written after
	// construction.
	counts map[Board]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: map[Board]int{}}
}

// Record returns a tally with one more visit of b.
func (t *Tally) Record(b Board) *Tally {
	return &Tally{parent: t, board: b}
}

// Count returns how many times b has been recorded.
func (t *Tally) Count(b Board) int {
	n := 0
	for node := t; node != nil; node = node.parent {
		if node.counts != nil {
			n += node.counts[b]
			continue
		}
		if node.board == b {
			n++
		}
	}
	return n
}

// Flatten returns an equivalent tally backed by a single map.
// Long-lived tallies (one per game) should be flattened after each move so
// lookups during search stay short.
func (t *Tally) Flatten() *Tally {
	counts := make(map[Board]int)
	for node := t; node != nil; node = node.parent {
		if node.counts != nil {
			for b, n := range node.counts {
				counts[b] += n
			}
			continue
		}
		counts[node.board]++
	}
	return &Tally{counts: counts}
}

// Len returns the number of distinct boards recorded.
func (t *Tally) Len() int {
	return len(t.Flatten().counts)
}

// Repeated reports whether b has occurred more than twice, i.e. the current
// occurrence is at least the third.
func (t *Tally) Repeated(b Board) bool {
	return t.Count(b) > 2
}
