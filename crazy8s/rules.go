package crazy8s

import (
	"fmt"

	"lobby/game"
)

// CanPlay reports whether card may be played on top. Wilds always match.
// Otherwise the card must follow the active suit (or the top card's suit when
// no override is set) or share the top card's rank.
func CanPlay(card, top Card, active Suit) bool {
	if card.IsWild() {
		return true
	}
	suit := top.Suit
	if active != NoSuit {
		suit = active
	}
	if card.Suit == suit {
		return true
	}
	return card.Rank == top.Rank
}

// LegalPlays filters hand down to the cards playable on top, keeping hand
// order. Foreign or duplicated cards are rejected.
func LegalPlays(hand []Card, top Card, active Suit) ([]Card, error) {
	if err := validate(hand, top, active); err != nil {
		return nil, err
	}
	var plays []Card
	for _, c := range hand {
		if CanPlay(c, top, active) {
			plays = append(plays, c)
		}
	}
	return plays, nil
}

// HasPlay reports whether any card in hand can go on top.
func HasPlay(hand []Card, top Card, active Suit) bool {
	for _, c := range hand {
		if CanPlay(c, top, active) {
			return true
		}
	}
	return false
}

// PreferredSuit returns the suit held most often in hand. Ties, including an
// empty hand, resolve to the earliest suit in Suits.
func PreferredSuit(hand []Card) Suit {
	counts := make(map[Suit]int, len(Suits))
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := Suits[0]
	for _, s := range Suits[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

func validate(hand []Card, top Card, active Suit) error {
	if !top.Valid() {
		return fmt.Errorf("%w: foreign top card %v", game.ErrInvalidState, top)
	}
	if active != NoSuit && !active.Valid() {
		return fmt.Errorf("%w: unknown active suit %q", game.ErrInvalidState, active)
	}
	seen := map[Card]bool{top: true}
	for _, c := range hand {
		if !c.Valid() {
			return fmt.Errorf("%w: foreign card %v", game.ErrInvalidState, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate card %v", game.ErrInvalidState, c)
		}
		seen[c] = true
	}
	return nil
}
