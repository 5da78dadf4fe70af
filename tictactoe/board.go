// Package tictactoe holds the board model and the rules of the 3x3 grid game.
package tictactoe

import (
	"fmt"

	"lobby/game"
)

// Size is the side length of the board.
const Size = 3

// Mark is the content of a single cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Valid reports whether m is one of Empty, X or O.
func (m Mark) Valid() bool {
	return m == Empty || m == X || m == O
}

// Other returns the opposing player's mark. Empty has no opponent.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// Position addresses a cell by zero-based row and column.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether p lies on the board.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is a fixed-size grid stored row-major. Being an array, it is copied on
// assignment.
type Board [Size][Size]Mark

// EmptyBoard returns a board with every cell empty.
func EmptyBoard() Board {
	return Board{}
}

// Clone returns an independent copy of b.
func Clone(b Board) Board {
	var out Board
	for r := range b {
		copy(out[r][:], b[r][:])
	}
	return out
}

// At returns the mark at p.
func (b Board) At(p Position) Mark {
	return b[p.Row][p.Col]
}

// Validate checks that every cell holds a known mark.
func (b Board) Validate() error {
	for r := range b {
		for c, m := range b[r] {
			if !m.Valid() {
				return fmt.Errorf("%w: cell (%d,%d) holds %q", game.ErrInvalidState, r, c, m)
			}
		}
	}
	return nil
}

// Counts returns how many X and O marks are on the board.
func (b Board) Counts() (xs, os int) {
	for r := range b {
		for _, m := range b[r] {
			switch m {
			case X:
				xs++
			case O:
				os++
			}
		}
	}
	return xs, os
}

// Rows returns the board as nested slices, the shape used for persistence.
func (b Board) Rows() [][]Mark {
	rows := make([][]Mark, Size)
	for r := range b {
		rows[r] = append([]Mark(nil), b[r][:]...)
	}
	return rows
}

// FromRows builds a board from nested slices, rejecting wrong dimensions and
// unknown marks.
func FromRows(rows [][]Mark) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: board has %d rows, want %d", game.ErrInvalidState, len(rows), Size)
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d cells, want %d", game.ErrInvalidState, r, len(row), Size)
		}
		copy(b[r][:], row)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Place returns a copy of b with m written at p. The move must be legal.
func Place(b Board, p Position, m Mark) (Board, error) {
	if m != X && m != O {
		return b, fmt.Errorf("%w: cannot place %q", game.ErrInvalidMove, m)
	}
	if !p.InBounds() {
		return b, fmt.Errorf("%w: %s is off the board", game.ErrInvalidMove, p)
	}
	if b.At(p) != Empty {
		return b, fmt.Errorf("%w: %s is occupied", game.ErrInvalidMove, p)
	}
	out := Clone(b)
	out[p.Row][p.Col] = m
	return out, nil
}
