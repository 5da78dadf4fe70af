package game

// Outcome is the result of a finished game from the human player's side.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// Stats holds the running counters of one game type. Losses count games won
// by the automated opponent.
type Stats struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	TotalGames int `json:"totalGames"`
}

// Record adds a finished game to the counters.
func (s *Stats) Record(o Outcome) {
	switch o {
	case Win:
		s.Wins++
	case Loss:
		s.Losses++
	case Draw:
		s.Draws++
	default:
		return
	}
	s.TotalGames++
}

// Valid reports whether the counters are consistent with each other.
func (s Stats) Valid() bool {
	if s.Wins < 0 || s.Losses < 0 || s.Draws < 0 {
		return false
	}
	return s.Wins+s.Losses+s.Draws == s.TotalGames
}
