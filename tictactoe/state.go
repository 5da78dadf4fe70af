package tictactoe

import (
	"fmt"

	"lobby/game"
)

// State pairs a board with the mark to move so that searchers can walk the
// game tree. The turn is explicit because puzzle positions need not follow
// X-first parity.
type State struct {
	Board Board
	Turn  Mark
}

var _ game.State[Position] = State{}

// NewState returns the search state for board with turn to move.
func NewState(board Board, turn Mark) State {
	return State{Board: board, Turn: turn}
}

func (s State) Player() string {
	return string(s.Turn)
}

func (s State) LegalMoves() []Position {
	if CheckTerminal(s.Board).Winner != Empty {
		return nil
	}
	return LegalMoves(s.Board)
}

// Play writes the mover's mark at p on a copy of the board. p must be legal.
func (s State) Play(p Position) game.State[Position] {
	b := Clone(s.Board)
	b[p.Row][p.Col] = s.Turn
	return State{Board: b, Turn: s.Turn.Other()}
}

func (s State) Winner() string {
	return string(CheckTerminal(s.Board).Winner)
}

// Validate rejects boards with foreign marks and an unknown mover.
func (s State) Validate() error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	if s.Turn != X && s.Turn != O {
		return fmt.Errorf("%w: %q cannot move", game.ErrInvalidState, s.Turn)
	}
	return nil
}
