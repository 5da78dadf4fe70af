package crazy8s

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lobby/game"
)

func smallTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(Deal{
		Hands: [][]Card{
			{{Hearts, Two}, {Clubs, Eight}, {Spades, King}},
			{{Diamonds, Nine}, {Hearts, Queen}},
		},
		Stock: []Card{{Clubs, Three}, {Spades, Four}},
		Top:   Card{Hearts, Five},
	})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	table := smallTable(t)
	require.Equal(t, Human, table.Turn)
	require.Equal(t, Card{Hearts, Five}, table.Top())
	require.Equal(t, NoSuit, table.ActiveSuit)

	_, err := NewTable(Deal{Hands: [][]Card{{}}, Top: Card{Hearts, Five}})
	require.ErrorIs(t, err, game.ErrInvalidState)

	_, err = NewTable(Deal{Hands: [][]Card{{{Hearts, Five}}, {}}, Top: Card{Hearts, Five}})
	require.ErrorIs(t, err, game.ErrInvalidState, "Duplicate cards should be rejected")
}

func TestApply(t *testing.T) {
	t.Run("play passes turn", func(t *testing.T) {
		table := smallTable(t)
		require.NoError(t, table.Apply(PlayCard(Card{Hearts, Two}, NoSuit)))
		require.Equal(t, Bot, table.Turn)
		require.Equal(t, Card{Hearts, Two}, table.Top())
		require.Len(t, table.Hands[Human], 2)
	})

	t.Run("wild sets suit", func(t *testing.T) {
		table := smallTable(t)
		require.NoError(t, table.Apply(PlayCard(Card{Clubs, Eight}, Spades)))
		require.Equal(t, Spades, table.ActiveSuit)

		require.NoError(t, table.Apply(DrawCard()))
		require.NoError(t, table.Apply(PlayCard(Card{Spades, King}, NoSuit)))
		require.Equal(t, NoSuit, table.ActiveSuit, "Override should clear after a normal play")
	})

	t.Run("wild without suit", func(t *testing.T) {
		table := smallTable(t)
		require.NoError(t, table.Apply(PlayCard(Card{Clubs, Eight}, NoSuit)))
		require.Equal(t, NoSuit, table.ActiveSuit)
	})

	t.Run("draw", func(t *testing.T) {
		table := smallTable(t)
		require.NoError(t, table.Apply(DrawCard()))
		require.Contains(t, table.Hands[Human], Card{Clubs, Three})
		require.Equal(t, []Card{{Spades, Four}}, table.Stock)
		require.Equal(t, Bot, table.Turn)
	})

	t.Run("rejections leave table unchanged", func(t *testing.T) {
		table := smallTable(t)
		before := table.Clone()

		require.ErrorIs(t, table.Apply(PlayCard(Card{Spades, King}, NoSuit)), game.ErrInvalidMove)
		require.ErrorIs(t, table.Apply(PlayCard(Card{Diamonds, Nine}, NoSuit)), game.ErrInvalidMove)
		require.ErrorIs(t, table.Apply(PlayCard(Card{Clubs, Eight}, "stars")), game.ErrInvalidMove)
		require.Equal(t, before, table)

		table.Stock = nil
		require.ErrorIs(t, table.Apply(DrawCard()), game.ErrInvalidMove)
	})

	t.Run("emptying hand wins", func(t *testing.T) {
		table := smallTable(t)
		table.Hands[Human] = []Card{{Hearts, Two}}
		require.NoError(t, table.Apply(PlayCard(Card{Hearts, Two}, NoSuit)))

		winner, done := table.Finished()
		require.True(t, done)
		require.Equal(t, Human, winner)
		require.Equal(t, "human", table.Winner())
		require.Empty(t, table.LegalMoves())
		require.ErrorIs(t, table.Apply(DrawCard()), game.ErrInvalidMove)
	})
}

func TestLegalMoves(t *testing.T) {
	table := smallTable(t)
	moves := table.LegalMoves()

	require.Equal(t, PlayCard(Card{Hearts, Two}, NoSuit), moves[0])
	for i, s := range Suits {
		require.Equal(t, PlayCard(Card{Clubs, Eight}, s), moves[1+i])
	}
	require.Equal(t, DrawCard(), moves[len(moves)-1])
	require.Len(t, moves, 6)
}

func TestStalemate(t *testing.T) {
	table := smallTable(t)
	require.False(t, table.Stalemate())

	table.Stock = nil
	table.Hands[Human] = []Card{{Spades, King}}
	require.True(t, table.Stalemate())
	require.Empty(t, table.LegalMoves())
	require.True(t, game.IsTerminal[Action](table))
}

func TestPlayIsImmutable(t *testing.T) {
	table := smallTable(t)
	before := table.Clone()

	next := table.Play(DrawCard())
	require.Equal(t, before, table)
	require.Equal(t, "bot", next.Player())
}

func TestSeat(t *testing.T) {
	s, err := ParseSeat("bot")
	require.NoError(t, err)
	require.Equal(t, Bot, s)
	require.Equal(t, Human, s.Other())

	_, err = ParseSeat("dealer")
	require.ErrorIs(t, err, game.ErrInvalidState)
}
