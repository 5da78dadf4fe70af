package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lobby/game"
	"lobby/tictactoe"
)

const (
	x = tictactoe.X
	o = tictactoe.O
	e = tictactoe.Empty
)

func TestTakesImmediateWin(t *testing.T) {
	board := tictactoe.Board{
		{o, o, e},
		{x, x, e},
		{x, e, e},
	}
	m := NewMinimax[tictactoe.Position]()

	result, _, err := m.Search(tictactoe.NewState(board, o))
	require.NoError(t, err)
	require.Equal(t, tictactoe.Position{Row: 0, Col: 2}, result.Move)
	require.Equal(t, WinScore-1, result.Score)
}

func TestBlocksOpponentWin(t *testing.T) {
	board := tictactoe.Board{
		{x, x, e},
		{e, o, e},
		{e, e, e},
	}
	m := NewMinimax[tictactoe.Position]()

	move, err := m.FindMove(tictactoe.NewState(board, o))
	require.NoError(t, err)
	require.Equal(t, tictactoe.Position{Row: 0, Col: 2}, move)
}

func TestPrefersFasterWin(t *testing.T) {
	// Only (2,2) wins at once; slower forced wins must score lower.
	board := tictactoe.Board{
		{x, o, o},
		{e, x, e},
		{e, e, e},
	}
	result, _, err := NewMinimax[tictactoe.Position]().Search(tictactoe.NewState(board, x))
	require.NoError(t, err)
	require.Equal(t, tictactoe.Position{Row: 2, Col: 2}, result.Move)
	require.Equal(t, WinScore-1, result.Score)
}

func TestEmptyBoardIsDraw(t *testing.T) {
	m := NewMinimax[tictactoe.Position](WithMetrics())
	result, metric, err := m.Search(tictactoe.NewState(tictactoe.EmptyBoard(), x))
	require.NoError(t, err)
	require.Equal(t, 0, result.Score, "Perfect play from the empty board is a draw")
	require.Equal(t, tictactoe.Position{Row: 0, Col: 0}, result.Move, "Ties resolve to the first legal move")
	require.Equal(t, 549945, metric.Nodes)
	require.Equal(t, 9, metric.MaxDepth)
}

func TestRejectsIllegalRoots(t *testing.T) {
	m := NewMinimax[tictactoe.Position]()

	won := tictactoe.Board{
		{x, x, x},
		{o, o, e},
		{e, e, e},
	}
	_, err := m.FindMove(tictactoe.NewState(won, o))
	require.ErrorIs(t, err, game.ErrIllegalSearchState)

	full := tictactoe.Board{
		{x, o, x},
		{x, o, o},
		{o, x, x},
	}
	_, err = m.FindMove(tictactoe.NewState(full, x))
	require.ErrorIs(t, err, game.ErrIllegalSearchState)

	foreign := tictactoe.EmptyBoard()
	foreign[1][1] = "Z"
	_, err = m.FindMove(tictactoe.NewState(foreign, x))
	require.ErrorIs(t, err, game.ErrIllegalSearchState)
}

// Minimax as O never loses, whatever X tries.
func TestNeverLosesAsSecondPlayer(t *testing.T) {
	m := NewMinimax[tictactoe.Position]()
	var explore func(s game.State[tictactoe.Position])
	explore = func(s game.State[tictactoe.Position]) {
		if game.IsTerminal(s) {
			require.NotEqual(t, string(x), s.Winner(), "Minimax lost: %v", s.(tictactoe.State).Board)
			return
		}
		if s.Player() == string(o) {
			move, err := m.FindMove(s)
			require.NoError(t, err)
			explore(s.Play(move))
			return
		}
		for _, move := range s.LegalMoves() {
			explore(s.Play(move))
		}
	}
	explore(tictactoe.NewState(tictactoe.EmptyBoard(), x))
}

func TestHardAgainstHardDraws(t *testing.T) {
	m := NewMinimax[tictactoe.Position]()
	var s game.State[tictactoe.Position] = tictactoe.NewState(tictactoe.EmptyBoard(), x)
	for !game.IsTerminal(s) {
		move, err := m.FindMove(s)
		require.NoError(t, err)
		s = s.Play(move)
	}
	require.Equal(t, "", s.Winner())
}

func TestBotPlayingX(t *testing.T) {
	m := NewMinimax[tictactoe.Position]()

	win := tictactoe.Board{
		{x, x, e},
		{o, o, e},
		{e, e, e},
	}
	move, err := m.FindMove(tictactoe.NewState(win, x))
	require.NoError(t, err)
	require.Equal(t, tictactoe.Position{Row: 0, Col: 2}, move, "X should complete the top row")

	block := tictactoe.Board{
		{o, o, e},
		{x, e, e},
		{e, e, e},
	}
	move, err = m.FindMove(tictactoe.NewState(block, x))
	require.NoError(t, err)
	require.Equal(t, tictactoe.Position{Row: 0, Col: 2}, move, "X should block the top row")
}
