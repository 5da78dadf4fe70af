package crazy8s

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"lobby/game"
)

func TestBuildDeck(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	seen := map[Card]bool{}
	for _, c := range deck {
		require.True(t, c.Valid(), "Card %v should be valid", c)
		require.False(t, seen[c], "Card %v appears twice", c)
		seen[c] = true
	}
	require.Equal(t, Card{Suit: Hearts, Rank: Ace}, deck[0])
	require.Equal(t, Card{Suit: Spades, Rank: King}, deck[DeckSize-1])
}

func TestShuffle(t *testing.T) {
	deck := BuildDeck()
	shuffled := Shuffle(deck, rand.New(rand.NewSource(42)))

	require.Equal(t, BuildDeck(), deck, "Shuffle should not modify its input")
	require.ElementsMatch(t, deck, shuffled, "Shuffle should be a permutation")
	require.NotEqual(t, deck, shuffled, "A 52 card shuffle should move something")

	again := Shuffle(deck, rand.New(rand.NewSource(42)))
	require.Equal(t, shuffled, again, "Same seed should give the same order")
}

func TestShuffleSpreadsFirstCard(t *testing.T) {
	cards := []Card{{Hearts, Ace}, {Hearts, Two}, {Hearts, Three}}
	rng := rand.New(rand.NewSource(3))
	counts := map[Card]int{}
	const n = 3000
	for i := 0; i < n; i++ {
		counts[Shuffle(cards, rng)[0]]++
	}
	for _, c := range cards {
		require.InDelta(t, n/3, counts[c], n/10, "Card %v leads too rarely or too often", c)
	}
}

func TestDealCards(t *testing.T) {
	deck := BuildDeck()

	t.Run("partition", func(t *testing.T) {
		d, err := DealCards(deck, 7, 2)
		require.NoError(t, err)
		require.Len(t, d.Hands, 2)
		require.Equal(t, deck[:7], d.Hands[0])
		require.Equal(t, deck[7:14], d.Hands[1])
		require.Equal(t, deck[14], d.Top)
		require.Equal(t, deck[15:], d.Stock)

		all := append(append(append([]Card{}, d.Hands[0]...), d.Hands[1]...), d.Stock...)
		all = append(all, d.Top)
		require.ElementsMatch(t, deck, all)
	})

	t.Run("exact fit", func(t *testing.T) {
		d, err := DealCards(deck[:15], 7, 2)
		require.NoError(t, err)
		require.Empty(t, d.Stock)
	})

	t.Run("insufficient", func(t *testing.T) {
		_, err := DealCards(deck[:14], 7, 2)
		require.ErrorIs(t, err, game.ErrInsufficientCards)

		_, err = DealCards(deck, 26, 2)
		require.ErrorIs(t, err, game.ErrInsufficientCards)
	})

	t.Run("bad sizes", func(t *testing.T) {
		_, err := DealCards(deck, 0, 2)
		require.ErrorIs(t, err, game.ErrInvalidState)
	})
}
