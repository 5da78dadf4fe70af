package gamemaster

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lobby/agent"
	"lobby/game"
	"lobby/history"
	"lobby/store"
	"lobby/tictactoe"
)

// TicTacToe is a human (X) against bot (O) grid session. The board history
// drives the state: the turn follows from the cursor's parity and the status
// is recomputed from the current board.
type TicTacToe struct {
	session
	history *history.History[tictactoe.Board]
	bot     *agent.Grid
}

const (
	humanMark = tictactoe.X
	botMark   = tictactoe.O
)

// TicTacToeView is a read-only snapshot of a grid session.
type TicTacToeView struct {
	SessionID   string
	Board       tictactoe.Board
	Turn        tictactoe.Mark
	Status      tictactoe.Status
	WinLine     []tictactoe.Position
	Message     string
	Difficulty  game.Difficulty
	Stats       game.Stats
	LegalMoves  []tictactoe.Position
	Cursor      int
	Length      int
	CanUndo     bool
	CanRedo     bool
	BotThinking bool
}

func NewTicTacToe(opts ...Option) (*TicTacToe, error) {
	o := newOptions(opts)
	bot, err := agent.NewGrid(o.difficulty,
		agent.WithRand(o.rng),
		agent.WithRandomProbability(o.cfg.MediumRandomProbability))
	if err != nil {
		release(o.owned)
		return nil, err
	}
	t := &TicTacToe{bot: bot}
	t.setup(TicTacToeGame, o.cfg.GridThinkDelay, o)
	t.history = history.New(tictactoe.EmptyBoard())
	t.refresh()
	return t, nil
}

// Updates signals after every change made by a scheduled bot move.
func (t *TicTacToe) Updates() <-chan struct{} {
	return t.updates
}

func (t *TicTacToe) State() TicTacToeView {
	t.mu.Lock()
	defer t.mu.Unlock()

	board := t.history.Current()
	result := tictactoe.CheckTerminal(board)
	v := TicTacToeView{
		SessionID:   t.id.String(),
		Board:       board,
		Turn:        t.turn(),
		Status:      t.status(),
		WinLine:     result.Line,
		Message:     t.message,
		Difficulty:  t.difficulty,
		Stats:       t.stats,
		Cursor:      t.history.Cursor(),
		Length:      t.history.Len(),
		CanUndo:     t.history.CanUndo(),
		CanRedo:     t.history.CanRedo(),
		BotThinking: t.botThinking(),
	}
	if v.Status == tictactoe.Playing {
		v.LegalMoves = tictactoe.LegalMoves(board)
	}
	return v
}

func (t *TicTacToe) Stats() game.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Moves returns every board in the history, oldest first.
func (t *TicTacToe) Moves() []tictactoe.Board {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Entries()
}

// ApplyMove places the human's mark at p and schedules the bot's reply.
func (t *TicTacToe) ApplyMove(p tictactoe.Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status().Terminal() {
		return t.reject(fmt.Errorf("%w: game is over", game.ErrInvalidMove), "The game is over. Start a new game to play again.")
	}
	if t.turn() != humanMark || t.botThinking() {
		return t.reject(fmt.Errorf("%w: not the human's turn", game.ErrInvalidMove), "Wait for your turn.")
	}
	board, err := tictactoe.Place(t.history.Current(), p, humanMark)
	if err != nil {
		msg := "That cell is already taken."
		if !p.InBounds() {
			msg = "That cell is off the board."
		}
		return t.reject(err, msg)
	}

	t.history.Record(board)
	t.advance()
	return nil
}

// advance updates the message after a move and hands the turn to the bot or
// closes the game.
func (t *TicTacToe) advance() {
	t.refresh()
	switch t.status() {
	case tictactoe.Playing:
		if t.turn() == botMark {
			t.schedule(t.botMove)
			t.refresh()
		}
	case tictactoe.XWon:
		t.finish(game.Win)
	case tictactoe.OWon:
		t.finish(game.Loss)
	case tictactoe.Draw:
		t.finish(game.Draw)
	}
}

func (t *TicTacToe) botMove() {
	if t.status().Terminal() || t.turn() != botMark {
		return
	}
	board := t.history.Current()
	move, err := t.bot.Choose(board, botMark)
	if err != nil {
		log.Error().Err(err).Str("session", t.id.String()).Msg("tictactoe: bot failed to move")
		t.message = "The bot could not move."
		return
	}
	next, err := tictactoe.Place(board, move, botMark)
	if err != nil {
		log.Error().Err(err).Str("session", t.id.String()).Msgf("tictactoe: bot chose illegal move %v", move)
		t.message = "The bot could not move."
		return
	}
	log.Debug().Str("session", t.id.String()).Msgf("tictactoe: bot plays %v", move)
	t.history.Record(next)
	t.advance()
}

// Resume lets the bot move from the current position. It is only needed
// after navigating the history onto a position where the bot is to move.
func (t *TicTacToe) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status().Terminal() || t.turn() != botMark || t.botThinking() {
		return false
	}
	t.schedule(t.botMove)
	t.refresh()
	return true
}

// Undo steps the history back one board. It is refused while the bot is
// thinking and never schedules the bot.
func (t *TicTacToe) Undo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.navigate(func() bool { return t.history.Undo() })
}

func (t *TicTacToe) Redo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.navigate(func() bool { return t.history.Redo() })
}

// JumpTo moves the history cursor to i, clamped to the recorded range, and
// returns the cursor reached.
func (t *TicTacToe) JumpTo(i int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.navigate(func() bool {
		before := t.history.Cursor()
		return t.history.JumpTo(i) != before
	})
	return t.history.Cursor()
}

func (t *TicTacToe) navigate(step func() bool) bool {
	if t.botThinking() {
		t.reject(fmt.Errorf("%w: bot is thinking", game.ErrInvalidMove), "Wait for the bot to move.")
		return false
	}
	if !step() {
		return false
	}
	// A new ending reached from here is a new result. Revisiting the old one
	// through Redo does not count again since only advance records results.
	if !t.status().Terminal() {
		t.recorded = false
	}
	t.refresh()
	return true
}

// Reset starts a new game. A non-empty difficulty replaces the current one.
func (t *TicTacToe) Reset(d game.Difficulty) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if d != "" {
		if err := t.setDifficulty(d); err != nil {
			return err
		}
	}
	t.restart()
	t.history = history.New(tictactoe.EmptyBoard())
	t.refresh()
	log.Info().Str("session", t.id.String()).Msgf("tictactoe: new game on %s", t.difficulty)
	return nil
}

// SetDifficulty changes the bot's tier. A pending bot move uses the new tier.
func (t *TicTacToe) SetDifficulty(d game.Difficulty) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setDifficulty(d)
}

func (t *TicTacToe) setDifficulty(d game.Difficulty) error {
	if err := t.bot.SetDifficulty(d); err != nil {
		return t.reject(err, fmt.Sprintf("Unknown difficulty %q.", d))
	}
	t.difficulty = d
	return nil
}

func (t *TicTacToe) ResetStatistics() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetStats()
}

func (t *TicTacToe) HasSavedSession() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasSaved()
}

// Close cancels a pending bot move and closes a store the session opened
// from its config.
func (t *TicTacToe) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown()
}

func (t *TicTacToe) turn() tictactoe.Mark {
	return tictactoe.TurnAt(t.history.Cursor())
}

func (t *TicTacToe) status() tictactoe.Status {
	return tictactoe.StatusOf(t.history.Current())
}

func (t *TicTacToe) refresh() {
	switch t.status() {
	case tictactoe.XWon:
		t.message = "You win!"
	case tictactoe.OWon:
		t.message = "The bot wins."
	case tictactoe.Draw:
		t.message = "It's a draw."
	default:
		switch {
		case t.turn() == humanMark:
			t.message = "Your turn (X)."
		case t.botThinking():
			t.message = "The bot is thinking..."
		default:
			t.message = "The bot's turn (O). Redo, undo or resume."
		}
	}
}

type ticTacToeRecord struct {
	SessionID  string               `json:"sessionId"`
	Board      [][]tictactoe.Mark   `json:"board"`
	Turn       tictactoe.Mark       `json:"turnOwner"`
	Status     tictactoe.Status     `json:"status"`
	Difficulty game.Difficulty      `json:"difficultyTier"`
	History    [][][]tictactoe.Mark `json:"history"`
	Cursor     int                  `json:"cursor"`
	store.Stamp
}

// Save writes the session. Failures are logged and otherwise ignored.
func (t *TicTacToe) Save() {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.history.Entries()
	rec := ticTacToeRecord{
		SessionID:  t.id.String(),
		Board:      t.history.Current().Rows(),
		Turn:       t.turn(),
		Status:     t.status(),
		Difficulty: t.difficulty,
		History:    make([][][]tictactoe.Mark, len(entries)),
		Cursor:     t.history.Cursor(),
	}
	for i, b := range entries {
		rec.History[i] = b.Rows()
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := t.repo.SaveSession(ctx, TicTacToeGame, &rec); err != nil {
		log.Warn().Err(err).Str("session", t.id.String()).Msg("tictactoe: failed to save session")
	}
}

// Load restores the saved session. It reports false, leaving the session
// as it was, when nothing usable is saved.
func (t *TicTacToe) Load() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var rec ticTacToeRecord
	if err := t.repo.LoadSession(ctx, TicTacToeGame, &rec); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("session", t.id.String()).Msg("tictactoe: no usable saved session")
		}
		return false
	}
	h, err := restoreTicTacToe(rec)
	if err != nil {
		t.repo.DiscardSession(ctx, TicTacToeGame, err)
		return false
	}
	if err := t.bot.SetDifficulty(rec.Difficulty); err != nil {
		t.repo.DiscardSession(ctx, TicTacToeGame, err)
		return false
	}

	t.restart()
	t.history = h
	t.difficulty = rec.Difficulty
	// A finished game was already counted when it ended.
	t.recorded = t.status().Terminal()
	t.refresh()
	if t.turn() == botMark && t.history.AtEnd() && !t.recorded {
		t.schedule(t.botMove)
		t.refresh()
	}
	log.Info().Str("session", t.id.String()).Msgf("tictactoe: restored session saved at %s", rec.SavedAt().Format("2006-01-02 15:04:05"))
	return true
}

func restoreTicTacToe(rec ticTacToeRecord) (*history.History[tictactoe.Board], error) {
	if !rec.Difficulty.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", rec.Difficulty)
	}
	boards := make([]tictactoe.Board, len(rec.History))
	for i, rows := range rec.History {
		b, err := tictactoe.FromRows(rows)
		if err != nil {
			return nil, err
		}
		if i > 0 && !followsFrom(boards[i-1], b, tictactoe.TurnAt(i-1)) {
			return nil, fmt.Errorf("history entry %d is not one move after entry %d", i, i-1)
		}
		boards[i] = b
	}
	h, err := history.Restore(boards, rec.Cursor)
	if err != nil {
		return nil, err
	}
	if boards[0] != tictactoe.EmptyBoard() {
		return nil, errors.New("history does not start from an empty board")
	}
	board, err := tictactoe.FromRows(rec.Board)
	if err != nil {
		return nil, err
	}
	if board != h.Current() {
		return nil, errors.New("board does not match history cursor")
	}
	if rec.Turn != tictactoe.TurnAt(rec.Cursor) {
		return nil, fmt.Errorf("turn %q does not match cursor %d", rec.Turn, rec.Cursor)
	}
	if rec.Status != tictactoe.StatusOf(board) {
		return nil, fmt.Errorf("status %s does not match board", rec.Status)
	}
	return h, nil
}

// followsFrom reports whether next is prev with exactly one empty cell taken
// by mark, played before the game ended.
func followsFrom(prev, next tictactoe.Board, mark tictactoe.Mark) bool {
	if tictactoe.StatusOf(prev).Terminal() {
		return false
	}
	changed := 0
	for r := range prev {
		for c := range prev[r] {
			if prev[r][c] == next[r][c] {
				continue
			}
			if prev[r][c] != tictactoe.Empty || next[r][c] != mark {
				return false
			}
			changed++
		}
	}
	return changed == 1
}
