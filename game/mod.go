package game

// State is a two-player, perfect-information view of a game that a searcher or
// a local engine can drive. Implementations must be immutable: Play always
// returns a new State and never touches the receiver.
type State[M any] interface {
	// Player returns the label of the player to move.
	Player() string
	// LegalMoves returns the moves available to Player, or none once the
	// game is over.
	LegalMoves() []M
	Play(M) State[M]
	// Winner returns the label of the winning player, "" when there is no
	// winner yet or the game ended drawn.
	Winner() string
}

// IsTerminal reports whether no further moves can be played in state.
func IsTerminal[M any](state State[M]) bool {
	return state.Winner() != "" || len(state.LegalMoves()) == 0
}
