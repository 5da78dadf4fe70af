package game

import "errors"

var (
	// ErrInvalidMove is returned for moves that target an occupied cell, do not
	// match the discard, or are made out of turn. Sessions recover from it
	// locally and keep their state.
	ErrInvalidMove = errors.New("invalid move")
	// ErrInsufficientCards is returned when a deal asks for more cards than the
	// deck holds.
	ErrInsufficientCards = errors.New("insufficient cards")
	// ErrCorruptPersistedState marks saved data that cannot be restored, either
	// because it is malformed or because it is older than the session TTL.
	ErrCorruptPersistedState = errors.New("corrupt persisted state")
	// ErrIllegalSearchState is returned when a decision procedure is asked to
	// move on a finished or malformed position.
	ErrIllegalSearchState = errors.New("illegal search state")
	// ErrInvalidState marks malformed boards, hands and cards.
	ErrInvalidState = errors.New("invalid state")
)
