// Command minichess plays 5x5 chess: engine self-play, or a text protocol on
// stdin and stdout.
package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/game"
	"github.com/hailam/minichess/internal/protocol"
	"github.com/hailam/minichess/internal/storage"
)

var (
	configPath = flag.String("config", "", "path to a minichess.yaml config file")
	selfPlay   = flag.Int("selfplay", 0, "play N engine-vs-engine games and exit")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	// Setup logging
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	var store *storage.Storage
	if cfg.Storage.Enabled {
		store, err = storage.Open(cfg.Storage.Dir)
		if err != nil {
			log.Warn().Err(err).Msg("Storage unavailable, results will not be recorded")
		} else {
			defer store.Close()
			rememberPreferences(store, cfg)
		}
	}

	eng := engine.NewEngine()
	eng.SetLogger(log.Logger)
	eng.SetLimits(cfg.SearchLimits())

	start, _ := cfg.StartBoard() // checked by Validate
	session := game.NewSession(eng, start)
	session.SetLogger(log.Logger)
	for _, side := range []board.Color{board.White, board.Black} {
		session.SetPlayer(side, game.Player{Human: cfg.Human(side), Intelligence: cfg.Intelligence(side)})
	}
	if store != nil {
		session.OnGameOver = func(result board.Turn) {
			if err := store.RecordResult(result); err != nil {
				log.Error().Err(err).Msg("Failed to record result")
			}
		}
	}

	if *selfPlay > 0 {
		runSelfPlay(session, *selfPlay, cfg.Players.MoveDelay)
		logStats(store)
		return
	}

	p := protocol.New(eng, session, os.Stdin, os.Stdout)
	p.SetLogger(log.Logger)
	if err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Protocol loop failed")
	}
}

// runSelfPlay plays n games with the engine on both sides.
func runSelfPlay(session *game.Session, n int, delay time.Duration) {
	for _, side := range []board.Color{board.White, board.Black} {
		p := session.Player(side)
		p.Human = false
		session.SetPlayer(side, p)
	}

	for i := 0; i < n; i++ {
		session.Restart()
		for session.Turn().Playing() {
			if delay > 0 {
				time.Sleep(delay)
			}
			if _, err := session.EngineMove(); err != nil {
				log.Error().Err(err).Int("game", i+1).Msg("Engine move failed")
				session.Stop()
				break
			}
		}
		log.Info().
			Int("game", i+1).
			Str("result", session.Turn().String()).
			Int("plies", len(session.History())).
			Msg("Game finished")
	}
}

// rememberPreferences fills unset config keys from the last run and saves
// the resulting settings for the next one.
func rememberPreferences(store *storage.Storage, cfg *config.Config) {
	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load preferences")
		prefs = storage.DefaultPreferences()
	}
	if !prefs.LastPlayed.IsZero() {
		log.Debug().
			Time("last_played", prefs.LastPlayed).
			Int("max_depth", prefs.MaxDepth).
			Str("difficulty", prefs.Difficulty).
			Msg("Previous preferences")
	}
	if err := cfg.ApplyPreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("Ignoring stored preferences")
	}

	cfg.StorePreferences(prefs)
	if err := store.SavePreferences(prefs); err != nil {
		log.Warn().Err(err).Msg("Failed to save preferences")
	}
}

func logStats(store *storage.Storage) {
	if store == nil {
		return
	}
	stats, err := store.LoadStats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load stats")
		return
	}
	log.Info().
		Int("games", stats.GamesPlayed).
		Int("white_wins", stats.WhiteWins).
		Int("black_wins", stats.BlackWins).
		Int("draws", stats.Draws()).
		Float64("white_score", stats.WhiteScore()).
		Msg("Statistics")
}
