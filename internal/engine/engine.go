package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/board"
)

var (
	// ErrGameOver is returned when asked to search a position that has already ended.
	ErrGameOver = errors.New("engine: game is over")

	ErrUnknownDifficulty = errors.New("engine: unknown difficulty")
)

// SearchInfo contains information about a completed search iteration.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	Best  board.Move
	Line  []board.Board
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	MaxDepth           int           // Deepest iteration, at least 1
	ThinkTime          time.Duration // Checked between iterations (0 = no limit)
	IterativeDeepening bool          // When false, a single pass at MaxDepth
}

// DefaultLimits are the reference search settings.
var DefaultLimits = SearchLimits{
	MaxDepth:           14,
	ThinkTime:          2 * time.Second,
	IterativeDeepening: true,
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty reads a difficulty name as printed by String.
func ParseDifficulty(name string) (Difficulty, error) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
}

// DifficultyPreset bundles search limits with an intelligence factor.
type DifficultyPreset struct {
	Limits       SearchLimits
	Intelligence float64
}

// DifficultySettings maps difficulty to search settings.
var DifficultySettings = map[Difficulty]DifficultyPreset{
	Easy:   {Limits: SearchLimits{MaxDepth: 2, ThinkTime: 500 * time.Millisecond, IterativeDeepening: true}, Intelligence: 0.6},
	Medium: {Limits: SearchLimits{MaxDepth: 4, ThinkTime: time.Second, IterativeDeepening: true}, Intelligence: 0.85},
	Hard:   {Limits: DefaultLimits, Intelligence: 1},
}

// Result is the outcome of a search.
type Result struct {
	// Ranked holds every legal move, best first for the side to move.
	Ranked []EvaluatedMove
	// Chosen is the move picked by the selector.
	Chosen     EvaluatedMove
	ChosenRank int
	// Best is the top-ranked move regardless of the selector.
	Best    board.Move
	Score   float64
	Depth   int
	Nodes   uint64
	Elapsed time.Duration
}

// Engine is the 5x5 chess AI.
type Engine struct {
	searcher     *Searcher
	selector     *Selector
	limits       SearchLimits
	intelligence [2]float64
	log          zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with the default limits and perfect play for
// both sides.
func NewEngine() *Engine {
	return &Engine{
		searcher:     NewSearcher(),
		selector:     NewSelector(nil),
		limits:       DefaultLimits,
		intelligence: [2]float64{1, 1},
		log:          zerolog.Nop(),
	}
}

// SetLogger sets the logger used for search diagnostics.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.log = l
}

// SetRand replaces the selector's random source.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.selector = NewSelector(rng)
}

// SetLimits sets the search limits. A depth below 1 is raised to 1.
func (e *Engine) SetLimits(l SearchLimits) {
	if l.MaxDepth < 1 {
		l.MaxDepth = 1
	}
	e.limits = l
}

// Limits returns the current search limits.
func (e *Engine) Limits() SearchLimits {
	return e.limits
}

// SetIntelligence sets the intelligence factor for a side, clamped to [0, 1].
func (e *Engine) SetIntelligence(c board.Color, factor float64) {
	if !c.Valid() {
		return
	}
	e.intelligence[c] = math.Min(1, math.Max(0, factor))
}

// Intelligence returns the intelligence factor for a side.
func (e *Engine) Intelligence(c board.Color) float64 {
	if !c.Valid() {
		return 1
	}
	return e.intelligence[c]
}

// SetDifficulty applies a preset to the limits and to both sides.
func (e *Engine) SetDifficulty(d Difficulty) {
	preset, ok := DifficultySettings[d]
	if !ok {
		preset = DifficultySettings[Medium]
	}
	e.SetLimits(preset.Limits)
	e.SetIntelligence(board.White, preset.Intelligence)
	e.SetIntelligence(board.Black, preset.Intelligence)
}

// Search ranks the legal moves of the side to move and picks one. tally
// holds the boards seen so far in the game, including b.
func (e *Engine) Search(b board.Board, turn board.Turn, tally *board.Tally) (Result, error) {
	side, ok := turn.Side()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidTurn, turn)
	}

	moves := b.LegalMoves(side)
	out, err := Classify(b, turn, tally, moves)
	if err != nil {
		return Result{}, err
	}
	if out.Over {
		return Result{}, fmt.Errorf("%w: %s", ErrGameOver, out.Next)
	}

	tm := NewTimeManager(e.limits.ThinkTime)
	tm.Start()
	e.searcher.Reset()

	e.log.Debug().
		Str("board", b.Encode()).
		Str("side", side.String()).
		Int("moves", len(moves)).
		Int("max_depth", e.limits.MaxDepth).
		Dur("budget", tm.Budget()).
		Msg("search started")

	firstDepth := 1
	if !e.limits.IterativeDeepening {
		firstDepth = e.limits.MaxDepth
	}

	var (
		ranked []EvaluatedMove
		score  float64
		depth  int
	)
	order := moves

	for d := firstDepth; d <= e.limits.MaxDepth; d++ {
		if ranked != nil && tm.Exhausted() {
			e.log.Debug().Int("depth", depth).Dur("elapsed", tm.Elapsed()).Msg("think time exhausted")
			break
		}

		s, r, err := e.searcher.SearchDepth(b, side, tally, order, d)
		if err != nil {
			return Result{}, fmt.Errorf("search %s at depth %d: %w", b.Encode(), d, err)
		}

		steady := ranked != nil && sameRanking(ranked, r)
		ranked, score, depth = r, s, d

		e.log.Debug().
			Int("depth", d).
			Str("best", r[0].Move.String()).
			Float64("score", s).
			Uint64("nodes", e.searcher.Nodes()).
			Dur("elapsed", tm.Elapsed()).
			Msg("depth complete")

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: d,
				Score: s,
				Nodes: e.searcher.Nodes(),
				Time:  tm.Elapsed(),
				Best:  r[0].Move,
				Line:  r[0].Line,
			})
		}

		if steady {
			e.log.Debug().Int("depth", d).Msg("ranking steady")
			break
		}

		order = make([]board.Move, len(r))
		for i := range r {
			order[i] = r[i].Move
		}
	}

	rank := e.selector.Pick(len(ranked), e.intelligence[side])
	res := Result{
		Ranked:     ranked,
		Chosen:     ranked[rank],
		ChosenRank: rank,
		Best:       ranked[0].Move,
		Score:      score,
		Depth:      depth,
		Nodes:      e.searcher.Nodes(),
		Elapsed:    tm.Elapsed(),
	}

	e.log.Info().
		Str("side", side.String()).
		Str("move", res.Chosen.Move.String()).
		Int("rank", rank).
		Str("score", ScoreString(res.Chosen.Score)).
		Int("depth", depth).
		Msg("move selected")

	return res, nil
}

// sameRanking reports whether two iterations produced the same ordering,
// scores and line lengths.
func sameRanking(a, b []EvaluatedMove) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Move.String() != b[i].Move.String() ||
			a[i].Score != b[i].Score ||
			len(a[i].Line) != len(b[i].Line) {
			return false
		}
	}
	return true
}

// Perft counts leaf nodes of the legal move tree (for debugging move generation).
func (e *Engine) Perft(b board.Board, side board.Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := b.LegalMoves(side)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		nodes += e.Perft(b.Apply(m), side.Other(), depth-1)
	}
	return nodes
}

// ScoreString converts a score to a human-readable string.
func ScoreString(score float64) string {
	if score >= WinWhiteValue*minMateMultiplier {
		return "White mates"
	}
	if score <= WinBlackValue*minMateMultiplier {
		return "Black mates"
	}
	return fmt.Sprintf("%+.2f", score)
}
