package engine

import "lobby/experiments/metrics"

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till there's a winner, a draw or a max number of moves is reached
	Run() (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
