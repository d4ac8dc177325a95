package engine

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/minichess/internal/board"
)

func fixedDepth(depth int) SearchLimits {
	return SearchLimits{MaxDepth: depth, IterativeDeepening: false}
}

func TestSearchBasic(t *testing.T) {
	b := board.StartingBoard()
	eng := NewEngine()
	eng.SetLimits(fixedDepth(2))

	res, err := eng.Search(b, board.WhiteToMove, board.NewTally().Record(b))
	require.NoError(t, err)
	require.Len(t, res.Ranked, 6)
	assert.NotEqual(t, board.NoMove, res.Best)
	assert.Equal(t, res.Best, res.Chosen.Move)
	assert.Equal(t, 0, res.ChosenRank)
	assert.Equal(t, 2, res.Depth)
	assert.Positive(t, res.Nodes)

	for i := 1; i < len(res.Ranked); i++ {
		assert.GreaterOrEqual(t, res.Ranked[i-1].Score, res.Ranked[i].Score, "white ranking must be descending")
	}
	t.Logf("Best move: %s (%s)", res.Best, ScoreString(res.Score))
}

func TestSearchBlackRanksAscending(t *testing.T) {
	b := board.StartingBoard().Apply(board.Move{From: board.Loc(3, 0), To: board.Loc(2, 0), Piece: board.WhitePawn})
	eng := NewEngine()
	eng.SetLimits(fixedDepth(2))

	res, err := eng.Search(b, board.BlackToMove, board.NewTally().Record(b))
	require.NoError(t, err)
	for i := 1; i < len(res.Ranked); i++ {
		assert.LessOrEqual(t, res.Ranked[i-1].Score, res.Ranked[i].Score, "black ranking must be ascending")
	}
	assert.Equal(t, board.Black, res.Best.Piece.Color())
}

func TestSearchDeterministic(t *testing.T) {
	b := board.StartingBoard()
	tally := board.NewTally().Record(b)

	run := func() Result {
		eng := NewEngine()
		eng.SetLimits(fixedDepth(3))
		res, err := eng.Search(b, board.WhiteToMove, tally)
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()
	assert.Equal(t, first.Best, second.Best)
	assert.Equal(t, first.Score, second.Score)
	require.Len(t, second.Ranked, len(first.Ranked))
	for i := range first.Ranked {
		assert.Equal(t, first.Ranked[i].Move, second.Ranked[i].Move)
		assert.Equal(t, first.Ranked[i].Score, second.Ranked[i].Score)
	}
}

// minimax is an unpruned reference search using the same scoring rules.
func minimax(b board.Board, side board.Color, tally *board.Tally, depth, rootDepth int) (float64, []EvaluatedMove) {
	out, err := Classify(b, board.TurnOf(side), tally, nil)
	if err != nil {
		panic(err)
	}
	if out.Over {
		v := out.Value
		if math.Abs(v) >= WinWhiteValue {
			v *= math.Max(minMateMultiplier, 1-0.1*float64(rootDepth-depth))
		}
		return v, nil
	}
	if depth == 0 {
		return Evaluate(b), nil
	}

	var ranked []EvaluatedMove
	for _, m := range b.LegalMoves(side) {
		after := b.Apply(m)
		tb := TieBreakWeight * Evaluate(after) * float64(rootDepth-depth)
		child, _ := minimax(after, side.Other(), tally.Record(after), depth-1, rootDepth)
		ranked = append(ranked, EvaluatedMove{Move: m, Score: child + tb})
	}
	sortRanked(ranked, side)
	return ranked[0].Score, ranked
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	positions := []struct {
		name string
		enc  string
		side board.Color
	}{
		{"start", board.StartEncoding, board.White},
		{"open middlegame", "rbk.n/p.p.p/.p.q./.P.P./R.KQN", board.Black},
		{"queen vs rook", "...rk/...../.Q.../...../K....", board.White},
	}

	for _, tc := range positions {
		t.Run(tc.name, func(t *testing.T) {
			b := board.MustParseBoard(tc.enc)
			tally := board.NewTally().Record(b)
			require.GreaterOrEqual(t, len(b.LegalMoves(tc.side)), 3)

			const depth = 3
			want, wantRanked := minimax(b, tc.side, tally, depth, depth)

			s := NewSearcher()
			got, ranked, err := s.SearchDepth(b, tc.side, tally, b.LegalMoves(tc.side), depth)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-9)

			// The pruned search must pick a move minimax rates as best.
			found := false
			for _, em := range wantRanked {
				if em.Move == ranked[0].Move {
					found = true
					assert.InDelta(t, want, em.Score, 1e-9, "alpha-beta picked %s", em.Move)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	b := board.MustParseBoard("k..../...../..K../...../.Q...")
	eng := NewEngine()
	eng.SetLimits(fixedDepth(1))

	res, err := eng.Search(b, board.WhiteToMove, board.NewTally().Record(b))
	require.NoError(t, err)
	assert.Equal(t, "Q b1->b4", res.Best.String())
	assert.InDelta(t, WinWhiteValue*0.9, res.Score, 1)
	assert.Equal(t, "White mates", ScoreString(res.Score))

	// The mirrored position is a mate for black.
	res, err = eng.Search(b.Transposed(), board.BlackToMove, nil)
	require.NoError(t, err)
	assert.Equal(t, "q b5->b2", res.Best.String())
	assert.Equal(t, "Black mates", ScoreString(res.Score))
}

func TestFasterMateScoresHigher(t *testing.T) {
	s := NewSearcher()
	s.rootDepth = 5
	assert.InDelta(t, 1.0, s.mateMultiplier(5), 1e-12)
	assert.InDelta(t, 0.8, s.mateMultiplier(3), 1e-12)
	assert.InDelta(t, 0.1, s.mateMultiplier(-20), 1e-12)
}

func TestSearchAnticipatedLine(t *testing.T) {
	b := board.StartingBoard()
	eng := NewEngine()
	eng.SetLimits(fixedDepth(3))

	res, err := eng.Search(b, board.WhiteToMove, nil)
	require.NoError(t, err)
	line := res.Ranked[0].Line
	require.Len(t, line, 3)
	assert.Equal(t, b.Apply(res.Best), line[0])
}

func TestSearchErrors(t *testing.T) {
	eng := NewEngine()
	eng.SetLimits(fixedDepth(1))

	_, err := eng.Search(board.StartingBoard(), board.NotStarted, nil)
	assert.ErrorIs(t, err, ErrInvalidTurn)

	mated := board.MustParseBoard("k..../.Q.../..K../...../.....")
	_, err = eng.Search(mated, board.BlackToMove, nil)
	assert.ErrorIs(t, err, ErrGameOver)

	noKing := board.MustParseBoard("...../...../..Q../...../....K")
	_, err = eng.Search(noKing, board.BlackToMove, nil)
	assert.ErrorIs(t, err, board.ErrMissingKing)
	_, err = eng.Search(noKing, board.WhiteToMove, nil)
	assert.ErrorIs(t, err, board.ErrMissingKing)
	assert.NotErrorIs(t, err, ErrGameOver)
}

func TestIterativeDeepening(t *testing.T) {
	b := board.StartingBoard()
	eng := NewEngine()
	eng.SetLimits(SearchLimits{MaxDepth: 3, IterativeDeepening: true})

	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		assert.NotEqual(t, board.NoMove, info.Best)
	}

	res, err := eng.Search(b, board.WhiteToMove, nil)
	require.NoError(t, err)
	require.NotEmpty(t, depths)
	assert.Equal(t, 1, depths[0])
	for i := 1; i < len(depths); i++ {
		assert.Equal(t, depths[i-1]+1, depths[i])
	}
	assert.Equal(t, depths[len(depths)-1], res.Depth)
	assert.LessOrEqual(t, res.Depth, 3)
}

func TestIterativeDeepeningStopsWhenSteady(t *testing.T) {
	// A single legal move gives the same ranking at every depth.
	b := board.MustParseBoard("k..../.Q.../...../...../....K")
	eng := NewEngine()
	eng.SetLimits(SearchLimits{MaxDepth: 8, IterativeDeepening: true})

	res, err := eng.Search(b, board.BlackToMove, nil)
	require.NoError(t, err)
	require.Len(t, res.Ranked, 1)
	assert.Less(t, res.Depth, 8)
}

func TestIterativeDeepeningStopsOnThinkTime(t *testing.T) {
	// The budget runs out during the first iteration, which still completes.
	eng := NewEngine()
	eng.SetLimits(SearchLimits{MaxDepth: 10, ThinkTime: time.Nanosecond, IterativeDeepening: true})

	infos := 0
	eng.OnInfo = func(SearchInfo) { infos++ }

	res, err := eng.Search(board.StartingBoard(), board.WhiteToMove, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Depth)
	assert.Equal(t, 1, infos)
	assert.Len(t, res.Ranked, 6)
	assert.NotEqual(t, board.NoMove, res.Best)
}

func TestTimeManager(t *testing.T) {
	tm := NewTimeManager(0)
	tm.Start()
	assert.Equal(t, time.Duration(0), tm.Budget())
	assert.False(t, tm.Exhausted(), "zero budget never runs out")

	tm = NewTimeManager(time.Nanosecond)
	tm.Start()
	time.Sleep(time.Millisecond)
	assert.Equal(t, time.Nanosecond, tm.Budget())
	assert.True(t, tm.Exhausted())
	assert.GreaterOrEqual(t, tm.Elapsed(), time.Millisecond)

	tm = NewTimeManager(time.Hour)
	tm.Start()
	assert.False(t, tm.Exhausted())
}

func TestMateScaledByRootDepth(t *testing.T) {
	// The mate lands one ply below the root whatever the search depth, so it
	// always scores 0.9 of a win.
	b := board.MustParseBoard("k..../...../..K../...../.Q...")
	tally := board.NewTally().Record(b)

	for depth := 1; depth <= 4; depth++ {
		s := NewSearcher()
		top, ranked, err := s.SearchDepth(b, board.White, tally, b.LegalMoves(board.White), depth)
		require.NoError(t, err)
		assert.InDelta(t, 899999.1, top, 1e-6, "depth %d", depth)
		assert.Equal(t, "Q b1->b4", ranked[0].Move.String(), "depth %d", depth)
	}

	eng := NewEngine()
	eng.SetLimits(SearchLimits{MaxDepth: 4, IterativeDeepening: true})
	res, err := eng.Search(b, board.WhiteToMove, tally)
	require.NoError(t, err)
	assert.InDelta(t, 899999.1, res.Score, 1e-6)
	assert.Equal(t, "Q b1->b4", res.Best.String())
}

func TestTieBreakOneBelowRoot(t *testing.T) {
	// At depth 2 each reply's leaf value carries one ply of tie-break weight,
	// black picks the lowest and white the highest of those. Root moves get
	// no weight of their own.
	b := board.StartingBoard()
	tally := board.NewTally().Record(b)

	want := -Infinity
	for _, m := range b.LegalMoves(board.White) {
		after := b.Apply(m)
		reply := Infinity
		for _, r := range after.LegalMoves(board.Black) {
			reply = math.Min(reply, Evaluate(after.Apply(r))*(1+TieBreakWeight))
		}
		want = math.Max(want, reply)
	}

	s := NewSearcher()
	top, ranked, err := s.SearchDepth(b, board.White, tally, b.LegalMoves(board.White), 2)
	require.NoError(t, err)
	require.Len(t, ranked, 6)
	assert.InDelta(t, want, top, 1e-9)
	assert.Equal(t, top, ranked[0].Score)
}

func TestSameRanking(t *testing.T) {
	m1 := board.Move{From: board.Loc(3, 0), To: board.Loc(2, 0), Piece: board.WhitePawn}
	m2 := board.Move{From: board.Loc(3, 1), To: board.Loc(2, 1), Piece: board.WhitePawn}
	a := []EvaluatedMove{{Move: m1, Score: 1}, {Move: m2, Score: 0}}

	assert.True(t, sameRanking(a, []EvaluatedMove{{Move: m1, Score: 1}, {Move: m2, Score: 0}}))
	assert.False(t, sameRanking(a, []EvaluatedMove{{Move: m2, Score: 1}, {Move: m1, Score: 0}}))
	assert.False(t, sameRanking(a, []EvaluatedMove{{Move: m1, Score: 2}, {Move: m2, Score: 0}}))
	assert.False(t, sameRanking(a, []EvaluatedMove{{Move: m1, Score: 1, Line: make([]board.Board, 1)}, {Move: m2, Score: 0}}))
	assert.False(t, sameRanking(a, a[:1]))
}

func TestSelector(t *testing.T) {
	sel := NewSelector(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, sel.Pick(10, 1))
	}
	for i := 0; i < 100; i++ {
		r := sel.Pick(10, 0.5)
		assert.GreaterOrEqual(t, r, 0)
		assert.Less(t, r, 10)
	}
	assert.Equal(t, 0, sel.Pick(1, 0))
}

func TestSelectorDoesNotAffectRanking(t *testing.T) {
	b := board.StartingBoard()

	perfect := NewEngine()
	perfect.SetLimits(fixedDepth(2))
	want, err := perfect.Search(b, board.WhiteToMove, nil)
	require.NoError(t, err)

	weak := NewEngine()
	weak.SetLimits(fixedDepth(2))
	weak.SetRand(rand.New(rand.NewPCG(3, 4)))
	weak.SetIntelligence(board.White, 0)
	got, err := weak.Search(b, board.WhiteToMove, nil)
	require.NoError(t, err)

	assert.Equal(t, want.Best, got.Best)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, got.Ranked[got.ChosenRank].Move, got.Chosen.Move)
}

func TestDifficulty(t *testing.T) {
	eng := NewEngine()
	eng.SetDifficulty(Easy)
	assert.Equal(t, 2, eng.Limits().MaxDepth)
	assert.InDelta(t, 0.6, eng.Intelligence(board.White), 1e-12)
	assert.InDelta(t, 0.6, eng.Intelligence(board.Black), 1e-12)

	eng.SetDifficulty(Hard)
	assert.Equal(t, DefaultLimits, eng.Limits())
	assert.Equal(t, "hard", Hard.String())

	eng.SetIntelligence(board.Black, 3)
	assert.Equal(t, 1.0, eng.Intelligence(board.Black))
	eng.SetIntelligence(board.Black, -1)
	assert.Equal(t, 0.0, eng.Intelligence(board.Black))

	eng.SetLimits(SearchLimits{MaxDepth: 0})
	assert.Equal(t, 1, eng.Limits().MaxDepth)
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	got, err := ParseDifficulty("HARD")
	require.NoError(t, err)
	assert.Equal(t, Hard, got)

	_, err = ParseDifficulty("grandmaster")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
	_, err = ParseDifficulty("")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestEnginePerft(t *testing.T) {
	eng := NewEngine()
	b := board.StartingBoard()
	assert.Equal(t, uint64(1), eng.Perft(b, board.White, 0))
	assert.Equal(t, uint64(6), eng.Perft(b, board.White, 1))
	assert.Equal(t, uint64(36), eng.Perft(b, board.White, 2))
}

func TestScoreString(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "+0.00"},
		{1.05, "+1.05"},
		{-3.5, "-3.50"},
		{WinWhiteValue, "White mates"},
		{WinWhiteValue * 0.1, "White mates"},
		{WinBlackValue * 0.5, "Black mates"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreString(tt.score))
	}
}
