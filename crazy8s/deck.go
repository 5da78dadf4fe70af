package crazy8s

import (
	"fmt"

	"golang.org/x/exp/rand"
	"lobby/game"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// BuildDeck returns every suit and rank combination once, suits outermost.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a uniformly random permutation of cards using Fisher-Yates.
// The input slice is not modified.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal is a deck split into hands, a stock pile and one exposed card.
type Deal struct {
	Hands [][]Card
	Stock []Card
	Top   Card
}

// DealCards hands out handSize cards to each of numHands hands from the front
// of deck, turns the next card face up and leaves the rest as stock.
func DealCards(deck []Card, handSize, numHands int) (Deal, error) {
	if handSize < 1 || numHands < 1 {
		return Deal{}, fmt.Errorf("%w: cannot deal %d hands of %d cards", game.ErrInvalidState, numHands, handSize)
	}
	need := handSize*numHands + 1
	if len(deck) < need {
		return Deal{}, fmt.Errorf("%w: need %d cards, deck has %d", game.ErrInsufficientCards, need, len(deck))
	}

	d := Deal{Hands: make([][]Card, numHands)}
	next := 0
	for h := 0; h < numHands; h++ {
		d.Hands[h] = append([]Card(nil), deck[next:next+handSize]...)
		next += handSize
	}
	d.Top = deck[next]
	d.Stock = append([]Card(nil), deck[next+1:]...)
	return d, nil
}
