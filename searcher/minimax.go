// Package searcher finds optimal moves in small two-player games by
// exhaustive minimax.
package searcher

import (
	"fmt"

	"lobby/experiments/metrics"
	"lobby/game"
)

// WinScore is the value of an immediate win. Deeper wins score lower so the
// search prefers the fastest win and the slowest loss.
const WinScore = 10

type Option func(*options)

type options struct {
	metrics metrics.Collector
}

func WithMetrics() Option {
	return func(o *options) {
		o.metrics = metrics.NewCollector()
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(o *options) {
		if c != nil {
			o.metrics = c
		}
	}
}

// Result is the outcome of a search from the root player's point of view.
type Result[M any] struct {
	Move  M
	Score int
}

// Minimax searches the full game tree below a state. It keeps its own frame
// stack instead of recursing, so tree depth never grows the goroutine stack.
type Minimax[M any] struct {
	options
}

func NewMinimax[M any](opts ...Option) *Minimax[M] {
	m := &Minimax[M]{options{metrics: metrics.NewDummyCollector()}}
	for _, opt := range opts {
		opt(&m.options)
	}
	return m
}

// validator is implemented by states that can detect malformed positions.
type validator interface {
	Validate() error
}

type frame[M any] struct {
	state      game.State[M]
	moves      []M
	next       int
	depth      int
	maximizing bool
	scored     bool
	best       int
	bestMove   M
}

func (f *frame[M]) fold(score int, move M) {
	switch {
	case !f.scored,
		f.maximizing && score > f.best,
		!f.maximizing && score < f.best:
		f.best, f.bestMove, f.scored = score, move, true
	}
}

// FindMove returns the best move for the player to move. Among equally scored
// moves the first one in LegalMoves order wins.
func (m *Minimax[M]) FindMove(state game.State[M]) (M, error) {
	result, _, err := m.Search(state)
	return result.Move, err
}

// Search evaluates every line of play below state.
func (m *Minimax[M]) Search(state game.State[M]) (Result[M], metrics.SearchMetric, error) {
	if v, ok := state.(validator); ok {
		if err := v.Validate(); err != nil {
			return Result[M]{}, metrics.SearchMetric{}, fmt.Errorf("%w: %v", game.ErrIllegalSearchState, err)
		}
	}
	if game.IsTerminal(state) {
		return Result[M]{}, metrics.SearchMetric{}, fmt.Errorf("%w: no moves left to search", game.ErrIllegalSearchState)
	}

	me := state.Player()
	m.metrics.Start()
	stack := []frame[M]{{state: state, moves: state.LegalMoves(), maximizing: true}}
	for {
		top := &stack[len(stack)-1]
		if top.next == len(top.moves) {
			done := *top
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return Result[M]{Move: done.bestMove, Score: done.best}, m.metrics.Complete(), nil
			}
			parent := &stack[len(stack)-1]
			parent.fold(done.best, parent.moves[parent.next-1])
			continue
		}

		move := top.moves[top.next]
		top.next++
		child := top.state.Play(move)
		depth := top.depth + 1
		m.metrics.AddNode(depth)

		if winner := child.Winner(); winner != "" {
			m.metrics.AddLeaf()
			top.fold(score(winner == me, depth), move)
			continue
		}
		moves := child.LegalMoves()
		if len(moves) == 0 {
			m.metrics.AddLeaf()
			top.fold(0, move)
			continue
		}
		stack = append(stack, frame[M]{
			state:      child,
			moves:      moves,
			depth:      depth,
			maximizing: child.Player() == me,
		})
	}
}

func score(won bool, depth int) int {
	if won {
		return WinScore - depth
	}
	return depth - WinScore
}
