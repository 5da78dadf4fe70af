// Package agent turns a difficulty tier into a move-picking bot for each game.
package agent

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"lobby/experiments/metrics"
	"lobby/game"
)

// DefaultRandomProbability is how often a Medium bot falls back to a random
// move.
const DefaultRandomProbability = 0.4

type Agent[M any] interface {
	// FindMove returns the move for the player to move in state and search metrics (if collected)
	FindMove(state game.State[M]) (M, metrics.SearchMetric, error)
	Difficulty() game.Difficulty
	SetDifficulty(d game.Difficulty) error
}

// policy is the pair of strategies a tier blends between.
type policy[S, M any] interface {
	random(state S) (M, error)
	best(state S) (M, metrics.SearchMetric, error)
}

type Option func(*options)

type options struct {
	rng               *rand.Rand
	randomProbability float64
	metrics           bool
}

func defaultOptions() options {
	return options{
		rng:               rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		randomProbability: DefaultRandomProbability,
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithRandomProbability sets the Medium tier's chance of playing randomly.
// Values outside [0, 1] are ignored.
func WithRandomProbability(p float64) Option {
	return func(o *options) {
		if p >= 0 && p <= 1 {
			o.randomProbability = p
		}
	}
}

func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// decide picks between the random and the best policy for difficulty d.
// Easy is always random, Hard always best, and Medium rolls once per decision.
func decide[S, M any](p policy[S, M], state S, d game.Difficulty, o options) (M, metrics.SearchMetric, error) {
	switch d {
	case game.Easy:
		move, err := p.random(state)
		return move, metrics.SearchMetric{}, err
	case game.Medium:
		if o.rng.Float64() < o.randomProbability {
			move, err := p.random(state)
			return move, metrics.SearchMetric{}, err
		}
		return p.best(state)
	case game.Hard:
		return p.best(state)
	}
	var zero M
	return zero, metrics.SearchMetric{}, fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidState, d)
}
