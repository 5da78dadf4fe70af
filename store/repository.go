package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lobby/game"
)

// DefaultTTL is how long a saved session stays resumable.
const DefaultTTL = 24 * time.Hour

// Stamp is embedded by persisted session records. The repository fills it in
// on save and checks it on load.
type Stamp struct {
	Timestamp int64 `json:"timestamp"` // unix milliseconds
}

func (s *Stamp) stamp(t time.Time) {
	s.Timestamp = t.UnixMilli()
}

// SavedAt returns the save time carried by the record.
func (s Stamp) SavedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

type stamped interface {
	stamp(t time.Time)
}

// Repository stores one session record and one statistics record per game
// type. Session records expire after the TTL; statistics never do.
type Repository struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type RepositoryOption func(*Repository)

func WithTTL(ttl time.Duration) RepositoryOption {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithRepositoryClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(s Store, opts ...RepositoryOption) *Repository {
	r := &Repository{store: s, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sessionKey(gameType string) string { return gameType + ":session" }
func statsKey(gameType string) string   { return gameType + ":stats" }

// SaveSession stamps record with the current time and writes it.
func (r *Repository) SaveSession(ctx context.Context, gameType string, record stamped) error {
	record.stamp(r.now())
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s session: %w", gameType, err)
	}
	return r.store.Set(ctx, sessionKey(gameType), data, r.ttl)
}

// LoadSession decodes the saved session into record. Stale records are
// dropped and reported as ErrNotFound. Records that do not decode are
// dropped and reported as game.ErrCorruptPersistedState.
func (r *Repository) LoadSession(ctx context.Context, gameType string, record any) error {
	data, err := r.freshSession(ctx, gameType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, record); err != nil {
		return r.DiscardSession(ctx, gameType, err)
	}
	return nil
}

// HasSession reports whether a fresh session record exists.
func (r *Repository) HasSession(ctx context.Context, gameType string) bool {
	_, err := r.freshSession(ctx, gameType)
	return err == nil
}

// DiscardSession deletes a session record that failed validation and returns
// reason wrapped in game.ErrCorruptPersistedState.
func (r *Repository) DiscardSession(ctx context.Context, gameType string, reason error) error {
	log.Warn().Err(reason).Str("game", gameType).Msg("discarding corrupt saved session")
	if err := r.store.Delete(ctx, sessionKey(gameType)); err != nil {
		log.Warn().Err(err).Str("game", gameType).Msg("failed to delete corrupt session")
	}
	return fmt.Errorf("%w: %v", game.ErrCorruptPersistedState, reason)
}

func (r *Repository) DeleteSession(ctx context.Context, gameType string) error {
	return r.store.Delete(ctx, sessionKey(gameType))
}

func (r *Repository) freshSession(ctx context.Context, gameType string) ([]byte, error) {
	data, err := r.store.Get(ctx, sessionKey(gameType))
	if err != nil {
		return nil, err
	}

	var s struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, r.DiscardSession(ctx, gameType, err)
	}
	if s.Timestamp == nil || *s.Timestamp <= 0 {
		return nil, r.DiscardSession(ctx, gameType, errors.New("missing timestamp"))
	}

	age := r.now().Sub(time.UnixMilli(*s.Timestamp))
	if age > r.ttl {
		log.Info().Str("game", gameType).Msgf("saved session is %s old, dropping it", age.Round(time.Second))
		if err := r.store.Delete(ctx, sessionKey(gameType)); err != nil {
			log.Warn().Err(err).Str("game", gameType).Msg("failed to delete stale session")
		}
		return nil, fmt.Errorf("%w: session expired", ErrNotFound)
	}
	return data, nil
}

// LoadStats returns the saved statistics. Missing records yield zero stats
// and ErrNotFound; unreadable ones are deleted.
func (r *Repository) LoadStats(ctx context.Context, gameType string) (game.Stats, error) {
	data, err := r.store.Get(ctx, statsKey(gameType))
	if err != nil {
		return game.Stats{}, err
	}

	var stats game.Stats
	err = json.Unmarshal(data, &stats)
	if err == nil && !stats.Valid() {
		err = fmt.Errorf("inconsistent counters %+v", stats)
	}
	if err != nil {
		log.Warn().Err(err).Str("game", gameType).Msg("discarding corrupt statistics")
		if delErr := r.store.Delete(ctx, statsKey(gameType)); delErr != nil {
			log.Warn().Err(delErr).Str("game", gameType).Msg("failed to delete corrupt statistics")
		}
		return game.Stats{}, fmt.Errorf("%w: %v", game.ErrCorruptPersistedState, err)
	}
	return stats, nil
}

func (r *Repository) SaveStats(ctx context.Context, gameType string, stats game.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode %s statistics: %w", gameType, err)
	}
	return r.store.Set(ctx, statsKey(gameType), data, 0)
}
