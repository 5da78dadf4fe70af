package agent

import (
	"fmt"

	"lobby/crazy8s"
	"lobby/experiments/metrics"
	"lobby/game"
	"lobby/utils"
)

// Cards plays Crazy 8s from what its own seat can see.
type Cards struct {
	options
	difficulty game.Difficulty
}

var _ Agent[crazy8s.Action] = (*Cards)(nil)

func NewCards(d game.Difficulty, opts ...Option) (*Cards, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidState, d)
	}
	c := &Cards{options: defaultOptions(), difficulty: d}
	for _, opt := range opts {
		opt(&c.options)
	}
	return c, nil
}

func (c *Cards) Difficulty() game.Difficulty {
	return c.difficulty
}

func (c *Cards) SetDifficulty(d game.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", game.ErrInvalidState, d)
	}
	c.difficulty = d
	return nil
}

func (c *Cards) FindMove(state game.State[crazy8s.Action]) (crazy8s.Action, metrics.SearchMetric, error) {
	t, ok := state.(*crazy8s.Table)
	if !ok {
		return crazy8s.Action{}, metrics.SearchMetric{}, fmt.Errorf("%w: not a crazy 8s table", game.ErrIllegalSearchState)
	}
	if seat, done := t.Finished(); done {
		return crazy8s.Action{}, metrics.SearchMetric{}, fmt.Errorf("%w: %s already emptied their hand", game.ErrIllegalSearchState, seat)
	}
	return decide[crazy8s.View, crazy8s.Action](c, t.View(t.Turn), c.difficulty, c.options)
}

// Choose picks an action from a seat's view. With nothing playable it asks
// to draw; the caller decides what an empty stock means.
func (c *Cards) Choose(v crazy8s.View) (crazy8s.Action, error) {
	a, _, err := decide[crazy8s.View, crazy8s.Action](c, v, c.difficulty, c.options)
	return a, err
}

func (c *Cards) random(v crazy8s.View) (crazy8s.Action, error) {
	plays, err := legalPlays(v)
	if err != nil {
		return crazy8s.Action{}, err
	}
	if len(plays) == 0 {
		return crazy8s.DrawCard(), nil
	}
	card := plays[c.rng.Intn(len(plays))]
	suit := crazy8s.NoSuit
	if card.IsWild() {
		suit = crazy8s.Suits[c.rng.Intn(len(crazy8s.Suits))]
	}
	return crazy8s.PlayCard(card, suit), nil
}

// best holds wilds back: the first ordinary match in hand order is played,
// and a wild only when nothing else fits. The named suit is the one held most
// often once the wild has left the hand.
func (c *Cards) best(v crazy8s.View) (crazy8s.Action, metrics.SearchMetric, error) {
	plays, err := legalPlays(v)
	if err != nil {
		return crazy8s.Action{}, metrics.SearchMetric{}, err
	}
	if len(plays) == 0 {
		return crazy8s.DrawCard(), metrics.SearchMetric{}, nil
	}
	for _, card := range plays {
		if !card.IsWild() {
			return crazy8s.PlayCard(card, crazy8s.NoSuit), metrics.SearchMetric{}, nil
		}
	}
	wild := plays[0]
	rest := utils.RemoveAt(v.Hand, utils.FindIndex(v.Hand, wild))
	return crazy8s.PlayCard(wild, crazy8s.PreferredSuit(rest)), metrics.SearchMetric{}, nil
}

// legalPlays rejects views of a finished round before filtering the hand.
func legalPlays(v crazy8s.View) ([]crazy8s.Card, error) {
	if len(v.Hand) == 0 || v.OpponentCount == 0 {
		return nil, fmt.Errorf("%w: round is over", game.ErrIllegalSearchState)
	}
	return crazy8s.LegalPlays(v.Hand, v.Top, v.ActiveSuit)
}
