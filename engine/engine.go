package engine

import (
	"context"
	"mancala/experiments/metrics"
	"mancala/game"
)

// MaxMoves bounds a game in case of a rules regression; Kalah games always end well before it.
const MaxMoves = 1000

type Engine interface {
	// Run plays from start until the game ends
	Run(ctx context.Context, start game.State) (result game.Result, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
