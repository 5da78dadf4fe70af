// Package history keeps a linear list of snapshots with a movable cursor for
// undo and redo.
package history

import (
	"fmt"

	"lobby/game"
)

// History is a list of snapshots and the index of the current one. Recording
// while the cursor sits before the end drops every later snapshot.
type History[T any] struct {
	entries []T
	cursor  int
}

// New starts a history holding only initial.
func New[T any](initial T) *History[T] {
	return &History[T]{entries: []T{initial}}
}

// Restore rebuilds a history from persisted entries.
func Restore[T any](entries []T, cursor int) (*History[T], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty history", game.ErrInvalidState)
	}
	if cursor < 0 || cursor >= len(entries) {
		return nil, fmt.Errorf("%w: cursor %d outside history of %d", game.ErrInvalidState, cursor, len(entries))
	}
	return &History[T]{entries: append([]T(nil), entries...), cursor: cursor}, nil
}

// Record truncates the redo tail and appends snapshot as the new current entry.
func (h *History[T]) Record(snapshot T) {
	h.entries = append(h.entries[:h.cursor+1], snapshot)
	h.cursor = len(h.entries) - 1
}

// Undo steps back one entry. It reports false at the start of the history.
func (h *History[T]) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo steps forward one entry. It reports false at the end of the history.
func (h *History[T]) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

// JumpTo moves the cursor to i, clamped to the recorded range, and returns
// the resulting cursor.
func (h *History[T]) JumpTo(i int) int {
	h.cursor = max(0, min(i, len(h.entries)-1))
	return h.cursor
}

func (h *History[T]) CanUndo() bool { return h.cursor > 0 }
func (h *History[T]) CanRedo() bool { return h.cursor < len(h.entries)-1 }
func (h *History[T]) Cursor() int   { return h.cursor }
func (h *History[T]) Len() int      { return len(h.entries) }
func (h *History[T]) Current() T    { return h.entries[h.cursor] }

// AtEnd reports whether the cursor sits on the newest entry.
func (h *History[T]) AtEnd() bool { return !h.CanRedo() }

// Entries returns a copy of every snapshot, oldest first.
func (h *History[T]) Entries() []T {
	return append([]T(nil), h.entries...)
}
