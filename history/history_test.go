package history

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lobby/game"
)

func TestRecordAndUndo(t *testing.T) {
	h := New("empty")
	require.False(t, h.CanUndo())
	require.False(t, h.Undo(), "Undo at the start should be a no-op")

	h.Record("a")
	h.Record("b")
	require.Equal(t, 3, h.Len())
	require.Equal(t, 2, h.Cursor())
	require.Equal(t, "b", h.Current())

	require.True(t, h.Undo())
	require.Equal(t, "a", h.Current())
	require.True(t, h.Redo())
	require.Equal(t, "b", h.Current())
	require.False(t, h.Redo(), "Redo at the end should be a no-op")
	require.True(t, h.AtEnd())
}

func TestRecordTruncatesRedoTail(t *testing.T) {
	h := New(0)
	for i := 1; i <= 4; i++ {
		h.Record(i)
	}
	h.Undo()
	h.Undo()
	require.Equal(t, 2, h.Current())

	h.Record(9)
	require.Equal(t, []int{0, 1, 2, 9}, h.Entries())
	require.Equal(t, 3, h.Cursor())
	require.False(t, h.CanRedo())
}

func TestJumpToClamps(t *testing.T) {
	h := New(0)
	h.Record(1)
	h.Record(2)

	require.Equal(t, 0, h.JumpTo(-5))
	require.Equal(t, 0, h.Current())
	require.Equal(t, 2, h.JumpTo(99))
	require.Equal(t, 1, h.JumpTo(1))
	require.Equal(t, 3, h.Len(), "Jumping should not drop entries")
}

func TestEntriesIsACopy(t *testing.T) {
	h := New(0)
	h.Entries()[0] = 7
	require.Equal(t, 0, h.Current())
}

func TestRestore(t *testing.T) {
	h, err := Restore([]string{"a", "b", "c"}, 1)
	require.NoError(t, err)
	require.Equal(t, "b", h.Current())
	require.True(t, h.CanRedo())

	_, err = Restore([]string{}, 0)
	require.ErrorIs(t, err, game.ErrInvalidState)
	_, err = Restore([]string{"a"}, 1)
	require.ErrorIs(t, err, game.ErrInvalidState)
}
