package tictactoe

// Status is the state of a grid game.
type Status string

const (
	Playing Status = "PLAYING"
	XWon    Status = "X_WON"
	OWon    Status = "O_WON"
	Draw    Status = "DRAW"
)

// Terminal reports whether no further moves are accepted in s.
func (s Status) Terminal() bool {
	return s == XWon || s == OWon || s == Draw
}

// Result is the outcome of a terminal scan. Line is nil when nobody has won.
type Result struct {
	Winner Mark
	Line   []Position
}

// lines lists every winning line in scan order: rows, columns, then the two
// diagonals.
var lines = func() [][Size]Position {
	var out [][Size]Position
	for r := 0; r < Size; r++ {
		var ln [Size]Position
		for c := 0; c < Size; c++ {
			ln[c] = Position{Row: r, Col: c}
		}
		out = append(out, ln)
	}
	for c := 0; c < Size; c++ {
		var ln [Size]Position
		for r := 0; r < Size; r++ {
			ln[r] = Position{Row: r, Col: c}
		}
		out = append(out, ln)
	}
	var diag, anti [Size]Position
	for i := 0; i < Size; i++ {
		diag[i] = Position{Row: i, Col: i}
		anti[i] = Position{Row: i, Col: Size - 1 - i}
	}
	return append(out, diag, anti)
}()

// CheckTerminal returns the first complete line of identical player marks.
// Foreign marks never win; Board.Validate reports them.
func CheckTerminal(b Board) Result {
	for _, ln := range lines {
		first := b.At(ln[0])
		if first != X && first != O {
			continue
		}
		complete := true
		for _, p := range ln[1:] {
			if b.At(p) != first {
				complete = false
				break
			}
		}
		if complete {
			return Result{Winner: first, Line: append([]Position(nil), ln[:]...)}
		}
	}
	return Result{}
}

// IsFull reports whether every cell is taken.
func IsFull(b Board) bool {
	for r := range b {
		for _, m := range b[r] {
			if m == Empty {
				return false
			}
		}
	}
	return true
}

// LegalMoves returns every empty cell in row-major order.
func LegalMoves(b Board) []Position {
	var moves []Position
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b[r][c] == Empty {
				moves = append(moves, Position{Row: r, Col: c})
			}
		}
	}
	return moves
}

// IsLegalMove reports whether p is on the board and empty.
func IsLegalMove(b Board, p Position) bool {
	return p.InBounds() && b.At(p) == Empty
}

// StatusOf derives the game status from the board alone. The board must be
// valid, as boards built through FromRows and Place are.
func StatusOf(b Board) Status {
	switch CheckTerminal(b).Winner {
	case X:
		return XWon
	case O:
		return OWon
	}
	if IsFull(b) {
		return Draw
	}
	return Playing
}

// TurnAt returns the mark to move after n moves have been made. X opens.
func TurnAt(n int) Mark {
	if n%2 == 0 {
		return X
	}
	return O
}
