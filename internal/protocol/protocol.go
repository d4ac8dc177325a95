// Package protocol implements a line-oriented text interface to a minichess
// game, in the spirit of UCI.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/game"
)

// Protocol reads commands from in and writes responses to out.
type Protocol struct {
	engine  *engine.Engine
	session *game.Session
	in      io.Reader
	out     io.Writer
	log     zerolog.Logger
}

// New creates a protocol handler driving session with eng.
func New(eng *engine.Engine, session *game.Session, in io.Reader, out io.Writer) *Protocol {
	return &Protocol{
		engine:  eng,
		session: session,
		in:      in,
		out:     out,
		log:     zerolog.Nop(),
	}
}

// SetLogger sets the logger used for diagnostics.
func (p *Protocol) SetLogger(l zerolog.Logger) {
	p.log = l
}

// Run processes commands until quit or end of input.
func (p *Protocol) Run() error {
	scanner := bufio.NewScanner(p.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		p.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

		switch cmd {
		case "new":
			p.handleNew()
		case "position":
			p.handlePosition(args)
		case "moves":
			p.handleMoves()
		case "play":
			p.handlePlay(args)
		case "go":
			p.handleGo(args)
		case "eval":
			p.println("eval", engine.ScoreString(engine.Evaluate(p.session.Board())))
		case "perft":
			p.handlePerft(args)
		case "difficulty":
			p.handleDifficulty(args)
		case "status":
			p.println("status", p.session.Result())
		case "d":
			fmt.Fprint(p.out, p.session.Board().String())
		case "quit":
			return nil
		default:
			p.println("info string unknown command", cmd)
		}
	}

	return scanner.Err()
}

func (p *Protocol) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Protocol) fail(err error) {
	p.log.Warn().Err(err).Msg("command failed")
	p.println("error", err.Error())
}

// handleNew restarts the game from the session's starting board.
func (p *Protocol) handleNew() {
	p.session.Restart()
	p.println("status", p.session.Result())
}

// handlePosition parses and sets up a position.
// Formats:
//   - position start
//   - position start moves a2a3 b4b3
//   - position <encoded board> [white|black]
//   - position <encoded board> [white|black] moves a2a3
func (p *Protocol) handlePosition(args []string) {
	if len(args) == 0 {
		p.println("info string position requires start or a board")
		return
	}

	var b board.Board
	if args[0] == "start" {
		b = board.StartingBoard()
	} else {
		parsed, err := board.ParseBoard(args[0])
		if err != nil {
			p.fail(err)
			return
		}
		b = parsed
	}

	side := board.White
	rest := args[1:]
	if len(rest) > 0 && (rest[0] == "white" || rest[0] == "black") {
		if rest[0] == "black" {
			side = board.Black
		}
		rest = rest[1:]
	}
	p.session.Reset(b, side)

	if len(rest) == 0 {
		return
	}
	if rest[0] != "moves" {
		p.println("info string expected moves, got", rest[0])
		return
	}

	for _, text := range rest[1:] {
		if err := p.playText(text); err != nil {
			p.fail(err)
			return
		}
	}
}

// playText resolves coordinate text against the side to move and plays it.
func (p *Protocol) playText(text string) error {
	side, ok := p.session.Turn().Side()
	if !ok {
		return fmt.Errorf("%w: %s", game.ErrGameOver, p.session.Turn())
	}
	m, err := p.session.Board().ParseMove(side, text)
	if err != nil {
		return fmt.Errorf("%w: %w", game.ErrIllegalMove, err)
	}
	return p.session.PlayMove(m)
}

// handleDifficulty applies a preset to the engine and to every engine-played
// side. Human sides keep playing as before.
func (p *Protocol) handleDifficulty(args []string) {
	if len(args) == 0 {
		p.println("info string difficulty requires easy, medium or hard")
		return
	}
	d, err := engine.ParseDifficulty(args[0])
	if err != nil {
		p.fail(err)
		return
	}

	p.engine.SetDifficulty(d)
	for _, side := range []board.Color{board.White, board.Black} {
		pl := p.session.Player(side)
		pl.Intelligence = p.engine.Intelligence(side)
		p.session.SetPlayer(side, pl)
	}

	limits := p.engine.Limits()
	p.println("info string difficulty", d, "depth", limits.MaxDepth, "movetime", limits.ThinkTime.Milliseconds())
}

// handleMoves lists the legal moves of the side to move, one origin per line.
func (p *Protocol) handleMoves() {
	mm := p.session.MoveMap()
	for _, from := range mm.Origins() {
		p.println("moves", from, strings.Join(mm.Destinations(from), " "))
	}
	p.println("moves total", mm.Len())
}

func (p *Protocol) handlePlay(args []string) {
	if len(args) == 0 {
		p.println("info string play requires a move")
		return
	}
	if err := p.playText(strings.Join(args, "")); err != nil {
		p.fail(err)
		return
	}
	p.reportResult()
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth       int
	MoveTime    time.Duration
	NoDeepening bool
}

// handleGo searches for the side to move and plays the selected move.
func (p *Protocol) handleGo(args []string) {
	opts := parseGoOptions(args)

	saved := p.engine.Limits()
	p.engine.SetLimits(calculateLimits(saved, opts))
	defer p.engine.SetLimits(saved)

	p.engine.OnInfo = p.sendInfo
	defer func() { p.engine.OnInfo = nil }()

	res, err := p.session.EngineMove()
	if err != nil {
		p.fail(err)
		return
	}

	p.println("bestmove", res.Chosen.Move.Coordinates(),
		"rank", res.ChosenRank,
		"score", engine.ScoreString(res.Chosen.Score))
	p.reportResult()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "nodeepening":
			opts.NoDeepening = true
		}
	}

	return opts
}

// calculateLimits applies GoOptions on top of the engine's configured limits.
func calculateLimits(base engine.SearchLimits, opts GoOptions) engine.SearchLimits {
	limits := base
	if opts.Depth > 0 {
		limits.MaxDepth = opts.Depth
	}
	if opts.MoveTime > 0 {
		limits.ThinkTime = opts.MoveTime
	}
	if opts.NoDeepening {
		limits.IterativeDeepening = false
	}
	return limits
}

// sendInfo outputs one line per completed search depth.
func (p *Protocol) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		"score " + engine.ScoreString(info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.Best != board.NoMove {
		parts = append(parts, "best "+info.Best.Coordinates())
	}
	parts = append(parts, fmt.Sprintf("line %d", len(info.Line)))

	p.println("info " + strings.Join(parts, " "))
}

// reportResult prints the outcome once the game has ended.
func (p *Protocol) reportResult() {
	if turn := p.session.Turn(); !turn.Playing() {
		p.println("result", turn.String(), p.session.Result())
	}
}

// handlePerft runs a perft test.
func (p *Protocol) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	side, ok := p.session.Turn().Side()
	if !ok {
		p.fail(fmt.Errorf("%w: %s", game.ErrGameOver, p.session.Turn()))
		return
	}

	start := time.Now()
	nodes := p.engine.Perft(p.session.Board(), side, depth)
	elapsed := time.Since(start)

	p.println("nodes", nodes)
	p.println("time", elapsed.Milliseconds())
}
