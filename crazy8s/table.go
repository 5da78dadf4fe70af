package crazy8s

import (
	"fmt"

	"lobby/game"
	"lobby/utils"
)

// Seat identifies one side of the table.
type Seat int

const (
	Human Seat = iota
	Bot
)

// Seats lists both seats in play order.
var Seats = []Seat{Human, Bot}

func (s Seat) String() string {
	switch s {
	case Human:
		return "human"
	case Bot:
		return "bot"
	}
	return fmt.Sprintf("seat(%d)", int(s))
}

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	if s == Human {
		return Bot
	}
	return Human
}

// Valid reports whether s is a seat at the table.
func (s Seat) Valid() bool {
	return s == Human || s == Bot
}

// ParseSeat is the inverse of Seat.String.
func ParseSeat(v string) (Seat, error) {
	for _, s := range Seats {
		if s.String() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown seat %q", game.ErrInvalidState, v)
}

// ActionKind distinguishes playing a card from drawing one.
type ActionKind int

const (
	Play ActionKind = iota
	Draw
)

func (k ActionKind) String() string {
	if k == Draw {
		return "draw"
	}
	return "play"
}

// Action is a single decision of the player to move. Suit is only meaningful
// when a wild card is played; leaving it empty keeps the top card's suit.
type Action struct {
	Kind ActionKind
	Card Card
	Suit Suit
}

// PlayCard builds a play action.
func PlayCard(card Card, suit Suit) Action {
	return Action{Kind: Play, Card: card, Suit: suit}
}

// DrawCard builds a draw action.
func DrawCard() Action {
	return Action{Kind: Draw}
}

func (a Action) String() string {
	if a.Kind == Draw {
		return "draw"
	}
	if a.Card.IsWild() && a.Suit != NoSuit {
		return fmt.Sprintf("play %v naming %s", a.Card, a.Suit)
	}
	return fmt.Sprintf("play %v", a.Card)
}

// View is what a seat can see of the table.
type View struct {
	Hand          []Card
	Top           Card
	ActiveSuit    Suit
	StockCount    int
	OpponentCount int
}

// Table is a full Crazy 8s position. It satisfies game.State so the engine
// can drive bot-versus-bot games.
type Table struct {
	Hands      [2][]Card
	Stock      []Card
	Discard    []Card
	ActiveSuit Suit
	Turn       Seat
}

// NewTable lays out a two-hand deal with the human to move.
func NewTable(d Deal) (*Table, error) {
	if len(d.Hands) != len(Seats) {
		return nil, fmt.Errorf("%w: table needs %d hands, got %d", game.ErrInvalidState, len(Seats), len(d.Hands))
	}
	t := &Table{
		Stock:   append([]Card(nil), d.Stock...),
		Discard: []Card{d.Top},
		Turn:    Human,
	}
	for i := range t.Hands {
		t.Hands[i] = append([]Card(nil), d.Hands[i]...)
	}
	return t, t.Validate()
}

// Top returns the exposed discard.
func (t *Table) Top() Card {
	return t.Discard[len(t.Discard)-1]
}

// Hand returns a copy of the cards held by s.
func (t *Table) Hand(s Seat) []Card {
	return append([]Card(nil), t.Hands[s]...)
}

// View returns the information visible from seat s.
func (t *Table) View(s Seat) View {
	return View{
		Hand:          t.Hand(s),
		Top:           t.Top(),
		ActiveSuit:    t.ActiveSuit,
		StockCount:    len(t.Stock),
		OpponentCount: len(t.Hands[s.Other()]),
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		Stock:      append([]Card(nil), t.Stock...),
		Discard:    append([]Card(nil), t.Discard...),
		ActiveSuit: t.ActiveSuit,
		Turn:       t.Turn,
	}
	for i := range t.Hands {
		c.Hands[i] = append([]Card(nil), t.Hands[i]...)
	}
	return c
}

// Validate checks that the table is made of distinct deck cards and that the
// suit override only follows a wild.
func (t *Table) Validate() error {
	if !t.Turn.Valid() {
		return fmt.Errorf("%w: unknown seat to move %d", game.ErrInvalidState, t.Turn)
	}
	if len(t.Discard) == 0 {
		return fmt.Errorf("%w: empty discard pile", game.ErrInvalidState)
	}
	if t.ActiveSuit != NoSuit && (!t.ActiveSuit.Valid() || !t.Top().IsWild()) {
		return fmt.Errorf("%w: suit override %q without a wild on top", game.ErrInvalidState, t.ActiveSuit)
	}
	seen := make(map[Card]bool, DeckSize)
	piles := [][]Card{t.Hands[Human], t.Hands[Bot], t.Stock, t.Discard}
	for _, pile := range piles {
		for _, c := range pile {
			if !c.Valid() {
				return fmt.Errorf("%w: foreign card %v", game.ErrInvalidState, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: duplicate card %v", game.ErrInvalidState, c)
			}
			seen[c] = true
		}
	}
	return nil
}

// LegalPlays returns the cards the seat to move could play.
func (t *Table) LegalPlays() []Card {
	plays, _ := LegalPlays(t.Hands[t.Turn], t.Top(), t.ActiveSuit)
	return plays
}

// Stalemate reports whether the seat to move can neither play nor draw.
func (t *Table) Stalemate() bool {
	return len(t.Stock) == 0 && !HasPlay(t.Hands[t.Turn], t.Top(), t.ActiveSuit)
}

// Finished reports whether some hand has been emptied.
func (t *Table) Finished() (Seat, bool) {
	for _, s := range Seats {
		if len(t.Hands[s]) == 0 {
			return s, true
		}
	}
	return 0, false
}

// Apply performs a for the seat to move. It either fully succeeds or leaves
// the table untouched. Drawing passes the turn, as does any play that does
// not empty the hand.
func (t *Table) Apply(a Action) error {
	if _, done := t.Finished(); done {
		return fmt.Errorf("%w: round is over", game.ErrInvalidMove)
	}
	hand := t.Hands[t.Turn]

	switch a.Kind {
	case Draw:
		if len(t.Stock) == 0 {
			return fmt.Errorf("%w: stock is empty", game.ErrInvalidMove)
		}
		t.Hands[t.Turn] = append(hand, t.Stock[0])
		t.Stock = t.Stock[1:]
	case Play:
		i := utils.FindIndex(hand, a.Card)
		if i < 0 {
			return fmt.Errorf("%w: %v is not in hand", game.ErrInvalidMove, a.Card)
		}
		if !CanPlay(a.Card, t.Top(), t.ActiveSuit) {
			return fmt.Errorf("%w: %v does not match %v", game.ErrInvalidMove, a.Card, t.Top())
		}
		if a.Card.IsWild() && a.Suit != NoSuit && !a.Suit.Valid() {
			return fmt.Errorf("%w: unknown suit %q", game.ErrInvalidMove, a.Suit)
		}
		t.Hands[t.Turn] = utils.RemoveAt(hand, i)
		t.Discard = append(t.Discard, a.Card)
		t.ActiveSuit = NoSuit
		if a.Card.IsWild() {
			t.ActiveSuit = a.Suit
		}
		if len(t.Hands[t.Turn]) == 0 {
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown action %d", game.ErrInvalidMove, a.Kind)
	}

	t.Turn = t.Turn.Other()
	return nil
}

func (t *Table) Player() string {
	return t.Turn.String()
}

// LegalMoves expands every playable wild into one action per suit and adds a
// draw while the stock lasts. A finished or stalemated table has no moves.
func (t *Table) LegalMoves() []Action {
	if _, done := t.Finished(); done {
		return nil
	}
	var moves []Action
	for _, c := range t.LegalPlays() {
		if !c.IsWild() {
			moves = append(moves, PlayCard(c, NoSuit))
			continue
		}
		for _, s := range Suits {
			moves = append(moves, PlayCard(c, s))
		}
	}
	if len(t.Stock) > 0 {
		moves = append(moves, DrawCard())
	}
	return moves
}

func (t *Table) Play(a Action) game.State[Action] {
	next := t.Clone()
	if err := next.Apply(a); err != nil {
		panic(err)
	}
	return next
}

func (t *Table) Winner() string {
	if s, done := t.Finished(); done {
		return s.String()
	}
	return ""
}
