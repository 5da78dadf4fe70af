package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lobby/agent"
	"lobby/experiments/metrics"
	"lobby/game"
)

// Local drives bots against each other in process. Agents are keyed by the
// player label that game.State.Player reports.
type Local[M comparable] struct {
	State    game.State[M]
	Agents   map[string]agent.Agent[M]
	MaxMoves int
}

var _ Engine = (*Local[int])(nil)

func NewLocal[M comparable](state game.State[M], agents map[string]agent.Agent[M]) *Local[M] {
	if len(agents) < 2 {
		panic("need at least two agents")
	}
	return &Local[M]{
		State:    state,
		Agents:   agents,
		MaxMoves: MaxMoves,
	}
}

// Run plays from State until the game ends. State holds the final position
// afterwards.
func (e *Local[M]) Run() (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player(),
		StartTime:      time.Now(),
	}
	log.Debug().Msgf("player %s is starting", gameMetric.StartingPlayer)

	var moveMetrics []metrics.MoveMetric
	for step := 1; !game.IsTerminal(e.State) && step <= e.MaxMoves; step++ {
		player := e.State.Player()
		a, ok := e.Agents[player]
		if !ok {
			return gameMetric, moveMetrics, fmt.Errorf("%w: no agent for player %q", game.ErrInvalidState, player)
		}

		start := time.Now()
		move, searchMetric, err := a.FindMove(e.State)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("player %s failed at step %d: %w", player, step, err)
		}
		if searchMetric.Duration == 0 {
			searchMetric.Duration = time.Since(start)
		}
		if !isLegal(e.State.LegalMoves(), move) {
			return gameMetric, moveMetrics, fmt.Errorf("%w: player %s chose %v at step %d", game.ErrInvalidMove, player, move, step)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         fmt.Sprint(move),
			SearchMetric: searchMetric,
		})
		e.State = e.State.Play(move)
	}

	gameMetric.Winner = e.State.Winner()
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Truncated = !game.IsTerminal(e.State)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	if gameMetric.Truncated {
		log.Warn().Msgf("stopped after %d moves without a result", gameMetric.TotalMoves)
	}
	return gameMetric, moveMetrics, nil
}

func isLegal[M comparable](legal []M, move M) bool {
	for _, m := range legal {
		if m == move {
			return true
		}
	}
	return false
}
