package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores the engine and player settings chosen by the user.
type Preferences struct {
	MaxDepth           int           `json:"max_depth"`
	ThinkTime          time.Duration `json:"think_time"`
	IterativeDeepening bool          `json:"iterative_deepening"`
	Difficulty         string        `json:"difficulty,omitempty"` // Empty means no preset
	WhiteHuman         bool          `json:"white_human"`
	BlackHuman         bool          `json:"black_human"`
	WhiteIntelligence  float64       `json:"white_intelligence"`
	BlackIntelligence  float64       `json:"black_intelligence"`
	LastPlayed         time.Time     `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		MaxDepth:           engine.DefaultLimits.MaxDepth,
		ThinkTime:          engine.DefaultLimits.ThinkTime,
		IterativeDeepening: engine.DefaultLimits.IterativeDeepening,
		WhiteIntelligence:  1,
		BlackIntelligence:  1,
	}
}

// Stats stores aggregate game results
type Stats struct {
	GamesPlayed     int `json:"games_played"`
	WhiteWins       int `json:"white_wins"`
	BlackWins       int `json:"black_wins"`
	DrawsStalemate  int `json:"draws_stalemate"`
	DrawsRepetition int `json:"draws_repetition"`
	DrawsMaterial   int `json:"draws_material"`
}

// Draws returns the total number of drawn games.
func (s *Stats) Draws() int {
	return s.DrawsStalemate + s.DrawsRepetition + s.DrawsMaterial
}

// WhiteScore returns white's score as a percentage (0-100), counting draws
// as half a point.
func (s *Stats) WhiteScore() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return (float64(s.WhiteWins) + float64(s.Draws())/2) / float64(s.GamesPlayed) * 100
}

// ErrNotFinished is returned when recording a turn marker that is not a result.
var ErrNotFinished = errors.New("storage: game is not finished")

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database under dir. An empty dir selects the platform data
// directory.
func Open(dir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbDir, err)
	}

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that is discarded on Close.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	if err := s.get(keyPreferences, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *Stats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}
	if err := s.get(keyStats, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordResult adds a finished game to the statistics.
func (s *Storage) RecordResult(result board.Turn) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats := &Stats{}
		if err := readJSON(txn, keyStats, stats); err != nil {
			return err
		}

		switch result {
		case board.WhiteWins:
			stats.WhiteWins++
		case board.BlackWins:
			stats.BlackWins++
		case board.DrawStalemate:
			stats.DrawsStalemate++
		case board.DrawRepetition:
			stats.DrawsRepetition++
		case board.DrawMaterial:
			stats.DrawsMaterial++
		default:
			return fmt.Errorf("%w: %s", ErrNotFinished, result)
		}
		stats.GamesPlayed++

		return writeJSON(txn, keyStats, stats)
	})
}

func (s *Storage) put(key string, v any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return writeJSON(txn, key, v)
	})
}

func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, key, v)
	})
}

// readJSON decodes key into v, leaving v untouched if the key is absent.
func readJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func writeJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}
