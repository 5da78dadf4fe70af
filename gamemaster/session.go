// Package gamemaster runs interactive sessions between a human and a bot. A
// session owns the game state, applies one action at a time and schedules
// the bot's reply after a think delay.
package gamemaster

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lobby/config"
	"lobby/game"
	"lobby/store"
)

// Game type keys for persistence.
const (
	TicTacToeGame = "tictactoe"
	Crazy8sGame   = "crazy8s"
)

const persistTimeout = 2 * time.Second

type Option func(*options)

type options struct {
	cfg        config.Config
	scheduler  Scheduler
	rng        *rand.Rand
	repo       *store.Repository
	owned      store.Store // opened from cfg when no repository is given
	difficulty game.Difficulty
}

func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

func WithRepository(r *store.Repository) Option {
	return func(o *options) {
		if r != nil {
			o.repo = r
		}
	}
}

func WithDifficulty(d game.Difficulty) Option {
	return func(o *options) {
		o.difficulty = d
	}
}

func newOptions(opts []Option) options {
	o := options{
		cfg:        config.Default(),
		scheduler:  ClockScheduler(),
		difficulty: game.Medium,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := o.cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		o.rng = rand.New(rand.NewSource(seed))
	}
	if o.repo == nil {
		o.owned = openStore(o.cfg)
		o.repo = store.NewRepository(o.owned, store.WithTTL(o.cfg.SessionTTL))
	}
	return o
}

// openStore opens the backend named by cfg. A session must stay playable
// without storage, so failures fall back to memory.
func openStore(cfg config.Config) store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s, err := store.Open(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msgf("failed to open %s store, sessions will not outlive the process", cfg.Store)
		return store.NewMemoryStore()
	}
	return s
}

// release closes the store opened by newOptions, if any.
func release(owned store.Store) {
	if owned == nil {
		return
	}
	if err := owned.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close store")
	}
}

// session is the machinery shared by both games: locking, the pending bot
// action, statistics and persistence. All methods expect mu to be held.
type session struct {
	mu         sync.Mutex
	id         uuid.UUID
	gameType   string
	message    string
	difficulty game.Difficulty
	stats      game.Stats
	recorded   bool

	scheduler  Scheduler
	delay      time.Duration
	pending    Timer
	generation uint64

	repo    *store.Repository
	owned   store.Store
	rng     *rand.Rand
	updates chan struct{}
}

func (s *session) setup(gameType string, delay time.Duration, o options) {
	s.id = uuid.New()
	s.gameType = gameType
	s.difficulty = o.difficulty
	s.scheduler = o.scheduler
	s.delay = delay
	s.repo = o.repo
	s.owned = o.owned
	s.rng = o.rng
	s.updates = make(chan struct{}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	stats, err := s.repo.LoadStats(ctx, gameType)
	if err == nil {
		s.stats = stats
	}
}

// schedule replaces any pending bot action with f, to run after the think
// delay. f runs with mu held and is skipped if the session moved on.
func (s *session) schedule(f func()) {
	s.cancelPending()
	gen := s.generation
	s.pending = s.scheduler.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			return
		}
		s.pending = nil
		f()
		s.notify()
	})
}

// cancelPending invalidates the pending bot action, if any.
func (s *session) cancelPending() {
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *session) botThinking() bool {
	return s.pending != nil
}

// reject sets the user-facing message for a refused action and returns err.
func (s *session) reject(err error, message string) error {
	s.message = message
	log.Debug().Err(err).Str("session", s.id.String()).Msgf("%s: rejected action", s.gameType)
	return err
}

// finish records o once per game and persists the statistics immediately.
func (s *session) finish(o game.Outcome) {
	s.cancelPending()
	if s.recorded {
		return
	}
	s.recorded = true
	s.stats.Record(o)
	log.Info().Str("session", s.id.String()).Msgf("%s: game over, human %s (%d games played)", s.gameType, o, s.stats.TotalGames)
	s.saveStats()
}

func (s *session) saveStats() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.repo.SaveStats(ctx, s.gameType, s.stats); err != nil {
		log.Warn().Err(err).Str("session", s.id.String()).Msgf("%s: failed to save statistics", s.gameType)
	}
}

func (s *session) resetStats() {
	s.stats = game.Stats{}
	s.saveStats()
}

func (s *session) hasSaved() bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return s.repo.HasSession(ctx, s.gameType)
}

// notify wakes a waiting observer without blocking.
func (s *session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// restart gives the session a fresh identity for a new game.
func (s *session) restart() {
	s.cancelPending()
	s.id = uuid.New()
	s.recorded = false
}

// shutdown cancels the pending bot action and closes the store the session
// opened itself.
func (s *session) shutdown() {
	s.cancelPending()
	release(s.owned)
	s.owned = nil
}
