package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hailam/minichess/internal/board"
)

// Search constants
const (
	// TieBreakWeight scales the per-ply static evaluation nudge. It keeps the
	// adjustment well under a pawn so it only orders otherwise equal lines.
	TieBreakWeight = 0.0001

	// Infinity bounds the alpha-beta window.
	Infinity = math.MaxFloat64

	// minMateMultiplier is the floor for scaling distant forced wins.
	minMateMultiplier = 0.1
)

// ErrIllegalPosition means the search reached a board that no legal move can
// produce. It indicates a move generation defect.
var ErrIllegalPosition = errors.New("engine: illegal position evaluated")

// EvaluatedMove is a move with its search score and the boards the engine
// expects to follow it.
type EvaluatedMove struct {
	board.Move
	Score float64
	// Line holds the anticipated boards, starting with the board right after
	// the move.
	Line []board.Board
}

// Searcher performs the alpha-beta search.
type Searcher struct {
	rootDepth int
	nodes     uint64
}

// NewSearcher creates a new searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// Nodes returns the number of nodes searched since the last Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Reset clears the node counter.
func (s *Searcher) Reset() {
	s.nodes = 0
}

// SearchDepth runs a full-window search of the given depth and returns the
// root moves ranked best first for side. order fixes the root move order; it
// must be the legal moves of side.
func (s *Searcher) SearchDepth(b board.Board, side board.Color, tally *board.Tally, order []board.Move, depth int) (float64, []EvaluatedMove, error) {
	s.rootDepth = depth
	return s.evaluate(b, order, side, tally, depth, -Infinity, Infinity)
}

// evaluate scores b for side to move with depth plies remaining.
// alpha is the best score white can already force, beta the best black can.
func (s *Searcher) evaluate(b board.Board, moves []board.Move, side board.Color, tally *board.Tally, depth int, alpha, beta float64) (float64, []EvaluatedMove, error) {
	s.nodes++

	out, err := Classify(b, board.TurnOf(side), tally, moves)
	if err != nil {
		return 0, nil, err
	}
	if out.Over {
		v := out.Value
		if math.Abs(v) >= WinWhiteValue {
			v *= s.mateMultiplier(depth)
		}
		return v, nil, nil
	}

	if depth == 0 {
		return Evaluate(b), nil, nil
	}

	them := side.Other()
	ranked := make([]EvaluatedMove, 0, len(moves))

	for _, m := range moves {
		after := b.Apply(m)
		if after.IllegalAfterMove(side) {
			return 0, nil, fmt.Errorf("%w: %s after %s", ErrIllegalPosition, after.Encode(), m)
		}

		// The child's window is shifted by the tie-break so that cutoffs
		// compare the same quantity the parent ranks on.
		tb := s.tieBreak(after, depth)
		childScore, childRanked, err := s.evaluate(
			after, after.LegalMoves(them), them, tally.Record(after),
			depth-1, alpha-tb, beta-tb,
		)
		if err != nil {
			return 0, nil, err
		}

		line := []board.Board{after}
		if len(childRanked) > 0 {
			line = append(line, childRanked[0].Line...)
		}

		score := childScore + tb
		ranked = append(ranked, EvaluatedMove{Move: m, Score: score, Line: line})

		if side == board.White {
			alpha = max(alpha, score)
		} else {
			beta = min(beta, score)
		}
		if beta <= alpha {
			break
		}
	}

	sortRanked(ranked, side)
	return ranked[0].Score, ranked, nil
}

// mateMultiplier scales forced wins found deeper in the tree so faster mates
// score higher.
func (s *Searcher) mateMultiplier(depth int) float64 {
	pliesUsed := s.rootDepth - depth
	return math.Max(minMateMultiplier, 1-0.1*float64(pliesUsed))
}

// tieBreak returns the small adjustment for reaching after at the given
// remaining depth.
func (s *Searcher) tieBreak(after board.Board, depth int) float64 {
	return TieBreakWeight * Evaluate(after) * float64(s.rootDepth-depth)
}

// sortRanked orders moves best first for side. The sort is stable, so equal
// scores keep generation order.
func sortRanked(ranked []EvaluatedMove, side board.Color) {
	if side == board.White {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
		return
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
}
