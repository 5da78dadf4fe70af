// Package config holds the tunables of the game lobby and loads them from the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// MaxHandSize is the largest hand that still leaves a starter card when
// dealing two hands from one deck.
const MaxHandSize = 25

type Config struct {
	GridThinkDelay          time.Duration
	CardThinkDelay          time.Duration
	MediumRandomProbability float64
	HandSize                int
	SessionTTL              time.Duration

	Store      string
	SQLitePath string
	RedisAddr  string

	LogLevel string

	ArenaGames int
	ArenaDir   string
	// Seed drives every random source. Zero picks one from the clock.
	Seed uint64
}

func Default() Config {
	return Config{
		GridThinkDelay:          500 * time.Millisecond,
		CardThinkDelay:          1000 * time.Millisecond,
		MediumRandomProbability: 0.4,
		HandSize:                7,
		SessionTTL:              24 * time.Hour,
		Store:                   StoreSQLite,
		SQLitePath:              "lobby.db",
		RedisAddr:               "localhost:6379",
		LogLevel:                "info",
		ArenaGames:              20,
		ArenaDir:                "experiments",
	}
}

// Load reads the given .env files (".env" when none are named), skipping
// missing ones, and then applies LOBBY_* variables on top of Default.
// Variables already set in the process win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a variable lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.duration("LOBBY_GRID_THINK_DELAY", &c.GridThinkDelay)
	p.duration("LOBBY_CARD_THINK_DELAY", &c.CardThinkDelay)
	p.float("LOBBY_MEDIUM_RANDOM_PROBABILITY", &c.MediumRandomProbability)
	p.int("LOBBY_HAND_SIZE", &c.HandSize)
	p.duration("LOBBY_SESSION_TTL", &c.SessionTTL)
	p.string("LOBBY_STORE", &c.Store)
	p.string("LOBBY_SQLITE_PATH", &c.SQLitePath)
	p.string("LOBBY_REDIS_ADDR", &c.RedisAddr)
	p.string("LOBBY_LOG_LEVEL", &c.LogLevel)
	p.int("LOBBY_ARENA_GAMES", &c.ArenaGames)
	p.string("LOBBY_ARENA_DIR", &c.ArenaDir)
	p.uint("LOBBY_SEED", &c.Seed)

	if p.err != nil {
		return Config{}, p.err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.GridThinkDelay < 0 || c.CardThinkDelay < 0 {
		return fmt.Errorf("think delays must not be negative")
	}
	if c.MediumRandomProbability < 0 || c.MediumRandomProbability > 1 {
		return fmt.Errorf("medium random probability %v outside [0, 1]", c.MediumRandomProbability)
	}
	if c.HandSize < 1 || c.HandSize > MaxHandSize {
		return fmt.Errorf("hand size %d outside 1..%d", c.HandSize, MaxHandSize)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session ttl must not be negative")
	}
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.ArenaGames < 0 {
		return fmt.Errorf("arena games must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("bad log level: %w", err)
	}
	return nil
}

// Level returns the zerolog level named by LogLevel, info when unparseable.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// parser keeps the first conversion error so FromEnv can read linearly.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.lookup(key)
	return v, ok && v != ""
}

func (p *parser) fail(key, v string, err error) {
	p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
}

func (p *parser) string(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = d
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (p *parser) int(key string, dst *int) {
	if v, ok := p.get(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = i
	}
}

func (p *parser) uint(key string, dst *uint64) {
	if v, ok := p.get(key); ok {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = u
	}
}
