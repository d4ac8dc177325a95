// Package config loads minichess settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/storage"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Players PlayersConfig `mapstructure:"players"`
	Board   BoardConfig   `mapstructure:"board"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`

	// explicit holds the preference keys set by the config file or the
	// environment. Stored preferences never override them.
	explicit map[string]bool
}

type SearchConfig struct {
	MaxDepth           int           `mapstructure:"max_depth"`
	IterativeDeepening bool          `mapstructure:"iterative_deepening"`
	ThinkTime          time.Duration `mapstructure:"think_time"`
	// Difficulty names an engine preset (easy, medium, hard). When set it
	// replaces the limits above and both intelligence factors.
	Difficulty string `mapstructure:"difficulty"`
}

type PlayerConfig struct {
	Human        bool    `mapstructure:"human"`
	Intelligence float64 `mapstructure:"intelligence"`
}

type PlayersConfig struct {
	White     PlayerConfig  `mapstructure:"white"`
	Black     PlayerConfig  `mapstructure:"black"`
	MoveDelay time.Duration `mapstructure:"move_delay"`
}

type BoardConfig struct {
	Start string `mapstructure:"start"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"` // Empty means the platform data directory
}

// Keys that are also remembered in storage.Preferences.
const (
	keyMaxDepth           = "search.max_depth"
	keyIterativeDeepening = "search.iterative_deepening"
	keyThinkTime          = "search.think_time"
	keyDifficulty         = "search.difficulty"
	keyWhiteHuman         = "players.white.human"
	keyWhiteIntelligence  = "players.white.intelligence"
	keyBlackHuman         = "players.black.human"
	keyBlackIntelligence  = "players.black.intelligence"
)

var preferenceKeys = []string{
	keyMaxDepth, keyIterativeDeepening, keyThinkTime, keyDifficulty,
	keyWhiteHuman, keyWhiteIntelligence, keyBlackHuman, keyBlackIntelligence,
}

const envPrefix = "MINICHESS"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads configuration. path names an explicit file; when empty,
// minichess.yaml is looked up in the working directory and ./config.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("minichess")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variables
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envKeyReplacer)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// viper's IsSet also reports defaults, so look at the sources directly.
	for _, key := range preferenceKeys {
		_, inEnv := os.LookupEnv(envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key)))
		if !inEnv && !v.InConfig(key) {
			continue
		}
		if cfg.explicit == nil {
			cfg.explicit = make(map[string]bool)
		}
		cfg.explicit[key] = true
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("search.max_depth", d.Search.MaxDepth)
	v.SetDefault("search.iterative_deepening", d.Search.IterativeDeepening)
	v.SetDefault("search.think_time", d.Search.ThinkTime)
	v.SetDefault("search.difficulty", d.Search.Difficulty)
	v.SetDefault("players.white.human", d.Players.White.Human)
	v.SetDefault("players.white.intelligence", d.Players.White.Intelligence)
	v.SetDefault("players.black.human", d.Players.Black.Human)
	v.SetDefault("players.black.intelligence", d.Players.Black.Intelligence)
	v.SetDefault("players.move_delay", d.Players.MoveDelay)
	v.SetDefault("board.start", d.Board.Start)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.dir", d.Storage.Dir)
}

// Default returns the built-in configuration: both sides played by the
// engine at full strength.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxDepth:           engine.DefaultLimits.MaxDepth,
			IterativeDeepening: engine.DefaultLimits.IterativeDeepening,
			ThinkTime:          engine.DefaultLimits.ThinkTime,
		},
		Players: PlayersConfig{
			White:     PlayerConfig{Intelligence: 1},
			Black:     PlayerConfig{Intelligence: 1},
			MoveDelay: 600 * time.Millisecond,
		},
		Board: BoardConfig{
			Start: board.StartEncoding,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Enabled: true,
		},
	}
}

// Validate checks the values Load cannot check by type alone.
func (c *Config) Validate() error {
	if c.Search.MaxDepth < 1 {
		return fmt.Errorf("%w: search.max_depth must be at least 1, got %d", ErrInvalidConfig, c.Search.MaxDepth)
	}
	if c.Search.ThinkTime < 0 {
		return fmt.Errorf("%w: search.think_time must not be negative", ErrInvalidConfig)
	}
	if c.Search.Difficulty != "" {
		if _, err := engine.ParseDifficulty(c.Search.Difficulty); err != nil {
			return fmt.Errorf("%w: search.difficulty: %w", ErrInvalidConfig, err)
		}
	}
	for _, p := range []struct {
		name string
		cfg  PlayerConfig
	}{{"white", c.Players.White}, {"black", c.Players.Black}} {
		if p.cfg.Intelligence < 0 || p.cfg.Intelligence > 1 {
			return fmt.Errorf("%w: players.%s.intelligence must be within [0, 1], got %g", ErrInvalidConfig, p.name, p.cfg.Intelligence)
		}
	}
	if _, err := c.StartBoard(); err != nil {
		return fmt.Errorf("%w: board.start: %w", ErrInvalidConfig, err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Preset returns the difficulty preset named by search.difficulty, if any.
func (c *Config) Preset() (engine.DifficultyPreset, bool) {
	if c.Search.Difficulty == "" {
		return engine.DifficultyPreset{}, false
	}
	d, err := engine.ParseDifficulty(c.Search.Difficulty)
	if err != nil {
		return engine.DifficultyPreset{}, false
	}
	preset, ok := engine.DifficultySettings[d]
	return preset, ok
}

// SearchLimits converts the search section to engine limits.
func (c *Config) SearchLimits() engine.SearchLimits {
	if preset, ok := c.Preset(); ok {
		return preset.Limits
	}
	return engine.SearchLimits{
		MaxDepth:           c.Search.MaxDepth,
		ThinkTime:          c.Search.ThinkTime,
		IterativeDeepening: c.Search.IterativeDeepening,
	}
}

// Intelligence returns the intelligence factor for a side.
func (c *Config) Intelligence(side board.Color) float64 {
	if preset, ok := c.Preset(); ok {
		return preset.Intelligence
	}
	if side == board.Black {
		return c.Players.Black.Intelligence
	}
	return c.Players.White.Intelligence
}

// Human reports whether a side is played by a person.
func (c *Config) Human(side board.Color) bool {
	if side == board.Black {
		return c.Players.Black.Human
	}
	return c.Players.White.Human
}

// StartBoard parses the configured starting board.
func (c *Config) StartBoard() (board.Board, error) {
	return board.ParseBoard(c.Board.Start)
}

// LogLevel returns the configured zerolog level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Explicit reports whether key was set by the config file or the environment.
func (c *Config) Explicit(key string) bool {
	return c.explicit[key]
}

// ApplyPreferences fills the settings the file and environment left unset
// with the ones remembered from the last run. Preferences that were never
// saved are ignored. When the result would not validate, c is unchanged.
func (c *Config) ApplyPreferences(p *storage.Preferences) error {
	if p == nil || p.LastPlayed.IsZero() {
		return nil
	}

	merged := *c
	if !c.Explicit(keyMaxDepth) {
		merged.Search.MaxDepth = p.MaxDepth
	}
	if !c.Explicit(keyIterativeDeepening) {
		merged.Search.IterativeDeepening = p.IterativeDeepening
	}
	if !c.Explicit(keyThinkTime) {
		merged.Search.ThinkTime = p.ThinkTime
	}
	if !c.Explicit(keyDifficulty) {
		merged.Search.Difficulty = p.Difficulty
	}
	if !c.Explicit(keyWhiteHuman) {
		merged.Players.White.Human = p.WhiteHuman
	}
	if !c.Explicit(keyWhiteIntelligence) {
		merged.Players.White.Intelligence = p.WhiteIntelligence
	}
	if !c.Explicit(keyBlackHuman) {
		merged.Players.Black.Human = p.BlackHuman
	}
	if !c.Explicit(keyBlackIntelligence) {
		merged.Players.Black.Intelligence = p.BlackIntelligence
	}

	if err := merged.Validate(); err != nil {
		return fmt.Errorf("stored preferences: %w", err)
	}
	*c = merged
	return nil
}

// StorePreferences copies the current settings into p.
func (c *Config) StorePreferences(p *storage.Preferences) {
	p.MaxDepth = c.Search.MaxDepth
	p.ThinkTime = c.Search.ThinkTime
	p.IterativeDeepening = c.Search.IterativeDeepening
	p.Difficulty = c.Search.Difficulty
	p.WhiteHuman = c.Players.White.Human
	p.BlackHuman = c.Players.Black.Human
	p.WhiteIntelligence = c.Players.White.Intelligence
	p.BlackIntelligence = c.Players.Black.Intelligence
}
