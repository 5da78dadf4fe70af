package gamemaster

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lobby/agent"
	"lobby/crazy8s"
	"lobby/game"
	"lobby/store"
	"lobby/utils"
)

// Phase is the lifecycle stage of a card session.
type Phase string

const (
	Dealing  Phase = "DEALING"
	Playing  Phase = "PLAYING"
	GameOver Phase = "GAME_OVER"
)

// ResultDraw marks a game that ended with the stock exhausted and nobody able
// to play. Other results name the winning seat.
const ResultDraw = "draw"

// Crazy8s is a human against bot card session. The human sits in
// crazy8s.Human and always leads.
type Crazy8s struct {
	session
	table      *crazy8s.Table
	phase      Phase
	result     string
	handSize   int
	bot        *agent.Cards
	lastAction string
}

// Crazy8sView is what the human may see of a card session.
type Crazy8sView struct {
	SessionID     string
	Phase         Phase
	Result        string
	Turn          crazy8s.Seat
	Hand          []crazy8s.Card
	OpponentCount int
	StockCount    int
	Top           crazy8s.Card
	ActiveSuit    crazy8s.Suit
	LegalPlays    []crazy8s.Card
	Message       string
	Difficulty    game.Difficulty
	Stats         game.Stats
	BotThinking   bool
}

// NewCrazy8s deals the first game. It fails with game.ErrInsufficientCards
// when the configured hand size cannot be dealt.
func NewCrazy8s(opts ...Option) (*Crazy8s, error) {
	o := newOptions(opts)
	bot, err := agent.NewCards(o.difficulty,
		agent.WithRand(o.rng),
		agent.WithRandomProbability(o.cfg.MediumRandomProbability))
	if err != nil {
		release(o.owned)
		return nil, err
	}
	c := &Crazy8s{bot: bot, handSize: o.cfg.HandSize}
	c.setup(Crazy8sGame, o.cfg.CardThinkDelay, o)
	if err := c.deal(); err != nil {
		release(o.owned)
		return nil, err
	}
	return c, nil
}

// Updates signals after every change made by a scheduled bot action.
func (c *Crazy8s) Updates() <-chan struct{} {
	return c.updates
}

func (c *Crazy8s) State() Crazy8sView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := Crazy8sView{
		SessionID:     c.id.String(),
		Phase:         c.phase,
		Result:        c.result,
		Turn:          c.table.Turn,
		Hand:          c.table.Hand(crazy8s.Human),
		OpponentCount: len(c.table.Hands[crazy8s.Bot]),
		StockCount:    len(c.table.Stock),
		Top:           c.table.Top(),
		ActiveSuit:    c.table.ActiveSuit,
		Message:       c.message,
		Difficulty:    c.difficulty,
		Stats:         c.stats,
		BotThinking:   c.botThinking(),
	}
	if c.phase == Playing && c.table.Turn == crazy8s.Human {
		v.LegalPlays = c.table.LegalPlays()
	}
	return v
}

func (c *Crazy8s) Stats() game.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// PlayCard plays card from the human's hand. suit names the next suit when
// card is wild and is ignored otherwise.
func (c *Crazy8s) PlayCard(card crazy8s.Card, suit crazy8s.Suit) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkTurn(); err != nil {
		return err
	}
	hand := c.table.Hands[crazy8s.Human]
	if utils.FindIndex(hand, card) < 0 {
		return c.reject(fmt.Errorf("%w: %v is not in hand", game.ErrInvalidMove, card), fmt.Sprintf("You don't hold the %v.", card))
	}
	if !crazy8s.CanPlay(card, c.table.Top(), c.table.ActiveSuit) {
		return c.reject(fmt.Errorf("%w: %v does not match", game.ErrInvalidMove, card), c.mismatchMessage(card))
	}
	if !card.IsWild() {
		suit = crazy8s.NoSuit
	}
	if err := c.table.Apply(crazy8s.PlayCard(card, suit)); err != nil {
		return c.reject(err, fmt.Sprintf("Unknown suit %q.", suit))
	}

	c.lastAction = "You played the " + describe(card, suit) + "."
	c.advance()
	return nil
}

// DrawCard draws for the human and passes the turn. With an empty stock the
// draw is refused while the human still has a play, and ends the game drawn
// otherwise.
func (c *Crazy8s) DrawCard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkTurn(); err != nil {
		return err
	}
	if len(c.table.Stock) == 0 {
		if c.table.Stalemate() {
			c.lastAction = "You have no play."
			c.advance()
			return nil
		}
		return c.reject(fmt.Errorf("%w: stock is empty", game.ErrInvalidMove), "The stock is empty. Play a card.")
	}
	drawn := c.table.Stock[0]
	if err := c.table.Apply(crazy8s.DrawCard()); err != nil {
		return c.reject(err, "You cannot draw now.")
	}
	c.lastAction = fmt.Sprintf("You drew the %v.", drawn)
	c.advance()
	return nil
}

func (c *Crazy8s) checkTurn() error {
	if c.phase != Playing {
		return c.reject(fmt.Errorf("%w: game is over", game.ErrInvalidMove), "The game is over. Start a new game to play again.")
	}
	if c.table.Turn != crazy8s.Human || c.botThinking() {
		return c.reject(fmt.Errorf("%w: not the human's turn", game.ErrInvalidMove), "Wait for your turn.")
	}
	return nil
}

func (c *Crazy8s) mismatchMessage(card crazy8s.Card) string {
	if c.table.ActiveSuit != crazy8s.NoSuit {
		return fmt.Sprintf("The %v does not follow %s.", card, c.table.ActiveSuit)
	}
	return fmt.Sprintf("The %v does not match the %v.", card, c.table.Top())
}

// advance settles the table after an action: an emptied hand wins at once,
// a seat that can neither play nor draw ends the game drawn, and otherwise
// the bot is scheduled when it holds the turn.
func (c *Crazy8s) advance() {
	if seat, done := c.table.Finished(); done {
		c.phase = GameOver
		c.result = seat.String()
		if seat == crazy8s.Human {
			c.message = c.lastAction + " You win!"
			c.finish(game.Win)
		} else {
			c.message = c.lastAction + " The bot wins."
			c.finish(game.Loss)
		}
		return
	}
	if c.table.Stalemate() {
		c.phase = GameOver
		c.result = ResultDraw
		c.message = c.lastAction + " The stock is empty and no play is left. It's a draw."
		c.finish(game.Draw)
		return
	}
	if c.table.Turn == crazy8s.Bot {
		c.schedule(c.botMove)
		c.message = c.lastAction + " The bot is thinking..."
		return
	}
	c.message = c.lastAction + " Your turn."
}

func (c *Crazy8s) botMove() {
	if c.phase != Playing || c.table.Turn != crazy8s.Bot {
		return
	}
	action, err := c.bot.Choose(c.table.View(crazy8s.Bot))
	if err == nil {
		err = c.table.Apply(action)
	}
	if err != nil {
		log.Error().Err(err).Str("session", c.id.String()).Msgf("crazy8s: bot failed to act with %v", action)
		c.message = "The bot could not move."
		return
	}

	log.Debug().Str("session", c.id.String()).Msgf("crazy8s: bot %v", action)
	if action.Kind == crazy8s.Draw {
		c.lastAction = "The bot drew a card."
	} else {
		c.lastAction = "The bot played the " + describe(action.Card, action.Suit) + "."
	}
	c.advance()
}

func describe(card crazy8s.Card, suit crazy8s.Suit) string {
	if card.IsWild() && suit != crazy8s.NoSuit {
		return fmt.Sprintf("%v and named %s", card, suit)
	}
	return card.String()
}

// deal shuffles a fresh deck and starts a game with the human to lead. On
// failure the session keeps its previous table.
func (c *Crazy8s) deal() error {
	deck := crazy8s.Shuffle(crazy8s.BuildDeck(), c.rng)
	d, err := crazy8s.DealCards(deck, c.handSize, len(crazy8s.Seats))
	if err != nil {
		return err
	}
	table, err := crazy8s.NewTable(d)
	if err != nil {
		return err
	}

	c.phase = Dealing
	c.table = table
	c.result = ""
	c.lastAction = ""
	log.Debug().Str("session", c.id.String()).Msgf("crazy8s: dealt %d cards each, %d in stock", c.handSize, len(d.Stock))
	c.phase = Playing
	c.message = fmt.Sprintf("New game. The %v starts the pile. Your turn.", c.table.Top())
	return nil
}

// Reset deals a new game. A non-empty difficulty replaces the current one.
func (c *Crazy8s) Reset(d game.Difficulty) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d != "" {
		if err := c.setDifficulty(d); err != nil {
			return err
		}
	}
	c.restart()
	if err := c.deal(); err != nil {
		return err
	}
	log.Info().Str("session", c.id.String()).Msgf("crazy8s: new game on %s", c.difficulty)
	return nil
}

func (c *Crazy8s) SetDifficulty(d game.Difficulty) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setDifficulty(d)
}

func (c *Crazy8s) setDifficulty(d game.Difficulty) error {
	if err := c.bot.SetDifficulty(d); err != nil {
		return c.reject(err, fmt.Sprintf("Unknown difficulty %q.", d))
	}
	c.difficulty = d
	return nil
}

func (c *Crazy8s) ResetStatistics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetStats()
}

func (c *Crazy8s) HasSavedSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSaved()
}

// Close cancels a pending bot action and closes a store the session opened
// from its config.
func (c *Crazy8s) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown()
}

type crazy8sRecord struct {
	SessionID  string          `json:"sessionId"`
	PlayerHand []crazy8s.Card  `json:"playerHand"`
	BotHand    []crazy8s.Card  `json:"botHand"`
	Stock      []crazy8s.Card  `json:"stock"`
	TopCard    crazy8s.Card    `json:"topCard"`
	ActiveSuit crazy8s.Suit    `json:"activeSuit,omitempty"`
	Turn       string          `json:"turnOwner"`
	Status     Phase           `json:"status"`
	Result     string          `json:"result,omitempty"`
	Difficulty game.Difficulty `json:"difficultyTier"`
	store.Stamp
}

// Save writes the session. Failures are logged and otherwise ignored.
func (c *Crazy8s) Save() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := crazy8sRecord{
		SessionID:  c.id.String(),
		PlayerHand: c.table.Hand(crazy8s.Human),
		BotHand:    c.table.Hand(crazy8s.Bot),
		Stock:      append([]crazy8s.Card(nil), c.table.Stock...),
		TopCard:    c.table.Top(),
		ActiveSuit: c.table.ActiveSuit,
		Turn:       c.table.Turn.String(),
		Status:     c.phase,
		Result:     c.result,
		Difficulty: c.difficulty,
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.repo.SaveSession(ctx, Crazy8sGame, &rec); err != nil {
		log.Warn().Err(err).Str("session", c.id.String()).Msg("crazy8s: failed to save session")
	}
}

// Load restores the saved session. It reports false, leaving the session
// as it was, when nothing usable is saved.
func (c *Crazy8s) Load() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var rec crazy8sRecord
	if err := c.repo.LoadSession(ctx, Crazy8sGame, &rec); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("session", c.id.String()).Msg("crazy8s: no usable saved session")
		}
		return false
	}
	table, err := restoreCrazy8s(rec)
	if err != nil {
		c.repo.DiscardSession(ctx, Crazy8sGame, err)
		return false
	}
	if err := c.bot.SetDifficulty(rec.Difficulty); err != nil {
		c.repo.DiscardSession(ctx, Crazy8sGame, err)
		return false
	}

	c.restart()
	c.table = table
	c.phase = rec.Status
	c.result = rec.Result
	c.difficulty = rec.Difficulty
	c.recorded = c.phase == GameOver
	c.lastAction = "Game restored."
	switch {
	case c.phase == GameOver:
		c.message = "Game restored. The game is over."
	case table.Turn == crazy8s.Bot:
		c.schedule(c.botMove)
		c.message = c.lastAction + " The bot is thinking..."
	default:
		c.message = c.lastAction + " Your turn."
	}
	log.Info().Str("session", c.id.String()).Msgf("crazy8s: restored session saved at %s", rec.SavedAt().Format("2006-01-02 15:04:05"))
	return true
}

func restoreCrazy8s(rec crazy8sRecord) (*crazy8s.Table, error) {
	if !rec.Difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", rec.Difficulty)
	}
	turn, err := crazy8s.ParseSeat(rec.Turn)
	if err != nil {
		return nil, err
	}
	table := &crazy8s.Table{
		Hands:      [2][]crazy8s.Card{rec.PlayerHand, rec.BotHand},
		Stock:      rec.Stock,
		Discard:    []crazy8s.Card{rec.TopCard},
		ActiveSuit: rec.ActiveSuit,
		Turn:       turn,
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	seat, done := table.Finished()
	switch rec.Status {
	case Playing:
		if done || table.Stalemate() || rec.Result != "" {
			return nil, errors.New("game in progress has already ended")
		}
	case GameOver:
		switch {
		case rec.Result == ResultDraw && !done:
		case done && rec.Result == seat.String():
		default:
			return nil, fmt.Errorf("result %q does not match the table", rec.Result)
		}
	default:
		return nil, fmt.Errorf("unknown status %q", rec.Status)
	}
	return table, nil
}
