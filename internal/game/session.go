// Package game runs a single minichess game between humans and the engine.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

var (
	ErrIllegalMove   = errors.New("game: illegal move")
	ErrGameOver      = errors.New("game: game is over")
	ErrNotEngineTurn = errors.New("game: side to move is played by a human")
)

// Player describes who controls a side.
type Player struct {
	Human        bool
	Intelligence float64 // Only used for engine players
}

// Session holds the state of one game: the board, whose turn it is, the
// boards seen so far and the moves played.
type Session struct {
	engine  *engine.Engine
	players [2]Player
	log     zerolog.Logger

	start   board.Board
	first   board.Color
	board   board.Board
	turn    board.Turn
	tally   *board.Tally
	moveMap board.MoveMap
	history []board.Move

	// Callbacks
	OnGameOver func(result board.Turn)
}

// NewSession starts a game from start with white to move. Both sides are
// played by eng at full strength until SetPlayer says otherwise.
func NewSession(eng *engine.Engine, start board.Board) *Session {
	s := &Session{
		engine:  eng,
		players: [2]Player{{Intelligence: 1}, {Intelligence: 1}},
		log:     zerolog.Nop(),
		start:   start,
		first:   board.White,
	}
	s.Restart()
	return s
}

// SetLogger sets the logger used for game events.
func (s *Session) SetLogger(l zerolog.Logger) {
	s.log = l
}

// SetPlayer configures who plays side c.
func (s *Session) SetPlayer(c board.Color, p Player) {
	if c.Valid() {
		s.players[c] = p
	}
}

// Player returns the configuration of side c.
func (s *Session) Player(c board.Color) Player {
	return s.players[c]
}

// Restart resets the game to the starting board with a fresh tally.
// The side that moved first in the previous game moves first again.
func (s *Session) Restart() {
	s.clear()
	s.settle(board.TurnOf(s.first))
}

// Reset starts a new game from another board. side is the first to move.
func (s *Session) Reset(start board.Board, side board.Color) {
	if !side.Valid() {
		side = board.White
	}
	s.start = start
	s.first = side
	s.Restart()
}

// clear drops all game state back to the starting board.
func (s *Session) clear() {
	s.board = s.start
	s.tally = board.NewTally().Record(s.start)
	s.history = nil
	s.turn = board.NotStarted
	s.moveMap = nil
}

// Stop abandons the game without a result.
func (s *Session) Stop() {
	s.turn = board.NotStarted
	s.moveMap = nil
}

// Board returns the current board.
func (s *Session) Board() board.Board { return s.board }

// Turn returns the side to move, or the result once the game is over.
func (s *Session) Turn() board.Turn { return s.turn }

// Tally returns the boards seen so far.
func (s *Session) Tally() *board.Tally { return s.tally }

// MoveMap returns the legal moves of the side to move, keyed by start and end
// cell. It is empty when the game is not in progress.
func (s *Session) MoveMap() board.MoveMap {
	if s.moveMap == nil {
		return board.MoveMap{}
	}
	return s.moveMap
}

// History returns the moves played so far.
func (s *Session) History() []board.Move {
	out := make([]board.Move, len(s.history))
	copy(out, s.history)
	return out
}

// Result returns a status line for the current turn marker.
func (s *Session) Result() string {
	switch s.turn {
	case board.NotStarted:
		return "Game not started."
	case board.WhiteWins:
		return "White wins!"
	case board.BlackWins:
		return "Black wins!"
	case board.DrawRepetition:
		return "Draw by repetition."
	case board.DrawStalemate:
		return "Draw by stalemate."
	case board.DrawMaterial:
		return "Draw by material."
	case board.WhiteToMove:
		return "White's turn."
	case board.BlackToMove:
		return "Black's turn."
	default:
		return s.turn.String()
	}
}

// Play makes the move from one cell to another, e.g. Play("a2", "a3").
func (s *Session) Play(from, to string) error {
	if !s.turn.Playing() {
		return fmt.Errorf("%w: %s", ErrGameOver, s.turn)
	}
	m, ok := s.moveMap.Lookup(from, to)
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}
	return s.PlayMove(m)
}

// PlayMove makes a legal move for the side to move.
func (s *Session) PlayMove(m board.Move) error {
	side, ok := s.turn.Side()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameOver, s.turn)
	}
	if legal, ok := s.moveMap.Lookup(m.From.String(), m.To.String()); !ok || legal != m {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	s.board = s.board.Apply(m)
	s.tally = s.tally.Record(s.board).Flatten()
	s.history = append(s.history, m)

	s.log.Info().
		Int("ply", len(s.history)).
		Str("side", side.String()).
		Str("move", m.String()).
		Str("board", s.board.Encode()).
		Msg("move played")

	s.settle(s.turn.Next())
	return nil
}

// Think searches the current position for the side to move without playing.
func (s *Session) Think() (engine.Result, error) {
	side, ok := s.turn.Side()
	if !ok {
		return engine.Result{}, fmt.Errorf("%w: %s", ErrGameOver, s.turn)
	}
	s.engine.SetIntelligence(side, s.players[side].Intelligence)
	return s.engine.Search(s.board, s.turn, s.tally)
}

// EngineMove searches for the side to move and plays the selected move.
func (s *Session) EngineMove() (engine.Result, error) {
	side, ok := s.turn.Side()
	if !ok {
		return engine.Result{}, fmt.Errorf("%w: %s", ErrGameOver, s.turn)
	}
	if s.players[side].Human {
		return engine.Result{}, fmt.Errorf("%w: %s", ErrNotEngineTurn, side)
	}

	res, err := s.Think()
	if err != nil {
		return engine.Result{}, err
	}
	if err := s.PlayMove(res.Chosen.Move); err != nil {
		return engine.Result{}, err
	}
	return res, nil
}

// EngineToMove reports whether the engine plays the side to move.
func (s *Session) EngineToMove() bool {
	side, ok := s.turn.Side()
	return ok && !s.players[side].Human
}

// settle classifies the current board with next to move and updates the turn
// marker and the move map.
func (s *Session) settle(next board.Turn) {
	side, _ := next.Side()
	moves := s.board.LegalMoves(side)

	out, err := engine.Classify(s.board, next, s.tally, moves)
	if err != nil {
		// Only a board without a king gets here; treat it as abandoned.
		s.log.Error().Err(err).Str("board", s.board.Encode()).Msg("cannot classify board")
		s.Stop()
		return
	}

	if out.Over {
		s.turn = out.Next
		s.moveMap = nil
		s.log.Info().
			Str("result", s.turn.String()).
			Int("plies", len(s.history)).
			Msg("game over")
		if s.OnGameOver != nil {
			s.OnGameOver(s.turn)
		}
		return
	}

	s.turn = next
	s.moveMap = board.NewMoveMap(moves)
}
