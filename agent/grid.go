package agent

import (
	"fmt"

	"lobby/experiments/metrics"
	"lobby/game"
	"lobby/searcher"
	"lobby/tictactoe"
)

// Grid plays Tic-Tac-Toe. Its best policy is a full minimax search.
type Grid struct {
	options
	difficulty game.Difficulty
	search     *searcher.Minimax[tictactoe.Position]
}

var _ Agent[tictactoe.Position] = (*Grid)(nil)

func NewGrid(d game.Difficulty, opts ...Option) (*Grid, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidState, d)
	}
	g := &Grid{options: defaultOptions(), difficulty: d}
	for _, opt := range opts {
		opt(&g.options)
	}
	var searchOpts []searcher.Option
	if g.metrics {
		searchOpts = append(searchOpts, searcher.WithMetrics())
	}
	g.search = searcher.NewMinimax[tictactoe.Position](searchOpts...)
	return g, nil
}

func (g *Grid) Difficulty() game.Difficulty {
	return g.difficulty
}

func (g *Grid) SetDifficulty(d game.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidState, d)
	}
	g.difficulty = d
	return nil
}

func (g *Grid) FindMove(state game.State[tictactoe.Position]) (tictactoe.Position, metrics.SearchMetric, error) {
	s, ok := state.(tictactoe.State)
	if !ok {
		return tictactoe.Position{}, metrics.SearchMetric{}, fmt.Errorf("%w: not a tic-tac-toe state", game.ErrIllegalSearchState)
	}
	return decide[tictactoe.State, tictactoe.Position](g, s, g.difficulty, g.options)
}

// Choose is FindMove for a bare board.
func (g *Grid) Choose(board tictactoe.Board, turn tictactoe.Mark) (tictactoe.Position, error) {
	move, _, err := g.FindMove(tictactoe.NewState(board, turn))
	return move, err
}

func (g *Grid) random(s tictactoe.State) (tictactoe.Position, error) {
	if err := s.Validate(); err != nil {
		return tictactoe.Position{}, fmt.Errorf("%w: %v", game.ErrIllegalSearchState, err)
	}
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return tictactoe.Position{}, fmt.Errorf("%w: no moves left", game.ErrIllegalSearchState)
	}
	return moves[g.rng.Intn(len(moves))], nil
}

func (g *Grid) best(s tictactoe.State) (tictactoe.Position, metrics.SearchMetric, error) {
	result, metric, err := g.search.Search(s)
	return result.Move, metric, err
}
