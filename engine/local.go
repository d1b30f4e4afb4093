package engine

import (
	"context"
	"errors"
	"fmt"
	"mancala/agent"
	"mancala/controller"
	"mancala/experiments/metrics"
	"mancala/game"
	"mancala/searcher"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrMaxMoves = errors.New("game exceeded the maximum number of moves")

// LocalEngine drives a self-play game through a single search controller:
// the search keeps running between moves and each agent decides from the
// latest evaluation after thinking for a fixed time.
type LocalEngine struct {
	Controller *controller.Controller
	Agents     [2]agent.Agent
	ThinkTime  time.Duration
	metrics    metrics.Collector
}

func Local(agents [2]agent.Agent, thinkTime time.Duration, options ...controller.Option) *LocalEngine {
	if agents[game.Player1] == nil || agents[game.Player2] == nil {
		panic("need an agent for each player")
	}
	collector := metrics.NewCollector()
	options = append(options, controller.WithSearchOptions(searcher.WithMetrics(collector)))
	return &LocalEngine{
		Controller: controller.New(options...),
		Agents:     agents,
		ThinkTime:  thinkTime,
		metrics:    collector,
	}
}

// Run executes the entire game loop until the game is over.
func (e *LocalEngine) Run(ctx context.Context, start game.State) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: start.ToMove,
		StartTime:      time.Now(),
	}
	if err := e.Controller.Reset(start); err != nil {
		return game.Result{}, gameMetric, nil, fmt.Errorf("starting search: %w", err)
	}
	defer func() {
		if err := e.Controller.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop search")
		}
	}()

	log.Info().Msgf("%s is starting", start.ToMove)

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.Controller.IsTerminal(); step++ {
		if step > MaxMoves {
			return game.Result{}, gameMetric, moveMetrics, ErrMaxMoves
		}

		e.metrics.Start()
		select {
		case <-ctx.Done():
			return game.Result{}, gameMetric, moveMetrics, ctx.Err()
		case <-time.After(e.ThinkTime):
		}

		snapshot := e.Controller.LatestEvaluation()
		player := snapshot.State.ToMove
		move, err := e.Agents[player].FindMove(snapshot)
		if err != nil {
			return game.Result{}, gameMetric, moveMetrics, fmt.Errorf("step %d: %w", step, err)
		}

		search := e.metrics.Complete()
		search.Nodes = snapshot.Nodes
		stats, _ := snapshot.Stats(move)
		var policy [game.HolesPerSide]float64
		for i, candidate := range snapshot.Moves {
			policy[candidate.Move] = snapshot.Proportion(i)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Move:         move,
			Visits:       stats.Visits,
			Score:        stats.Score,
			State:        snapshot.State,
			Policy:       policy,
			SearchMetric: search,
		})
		log.Debug().Int("step", step).Str("player", player.String()).Int("move", int(move)).
			Int("visits", stats.Visits).Float64("score", stats.Score).Msg("playing move")

		if err := e.Controller.CommitMove(move); err != nil {
			return game.Result{}, gameMetric, moveMetrics, fmt.Errorf("step %d: %w", step, err)
		}
	}

	result, _ := e.Controller.TerminalResult()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Scores = result.Scores
	if winner, ok := result.Winner(); ok {
		gameMetric.Winner = winner.String()
	}

	log.Info().Msgf("game over after %d moves: %v", gameMetric.TotalMoves, result.Scores)
	return result, gameMetric, moveMetrics, nil
}

var _ Engine = (*LocalEngine)(nil)
