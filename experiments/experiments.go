package experiments

import (
	"context"
	"fmt"
	"mancala/agent"
	"mancala/controller"
	"mancala/engine"
	"mancala/experiments/metrics"
	"mancala/game"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Experiment plays Games games for each matchup. The two agents of a
// matchup alternate as Player1 from one game to the next.
type Experiment struct {
	RunID     string // Generated when empty
	Name      string
	Games     int
	ThinkTime time.Duration
	OutputDir string
	Agents    []metrics.AgentConfig
	MatchUps  [][2]metrics.AgentConfig

	Options []controller.Option `json:"-"`
}

// SelfPlay pits the evaluation agent against a sampling agent.
func SelfPlay(games int, thinkTime time.Duration, temperature float64, seed uint64) Experiment {
	baseline := metrics.AgentConfig{ID: 1}
	sampler := metrics.AgentConfig{ID: 2, Temperature: temperature, Seed: seed}
	return Experiment{
		Name:      "self_play",
		Games:     games,
		ThinkTime: thinkTime,
		Agents:    []metrics.AgentConfig{baseline, sampler},
		MatchUps:  [][2]metrics.AgentConfig{{baseline, sampler}},
	}
}

// Run plays every game of e and stores the records under e.OutputDir,
// along with a parquet file of training rows. It returns the directory
// holding the records.
func Run(ctx context.Context, e Experiment) (string, error) {
	if e.Games <= 0 {
		return "", fmt.Errorf("experiment %s: need a positive number of games, got %d", e.Name, e.Games)
	}

	if e.RunID == "" {
		e.RunID = uuid.New().String()
	}

	// Store experiment metadata
	writer, err := metrics.NewWriter(e.OutputDir, e.Name)
	if err != nil {
		return "", err
	}
	if err := writer.WriteSetup(e); err != nil {
		return "", err
	}
	if err := writer.WriteAgentConfigs(e.Agents); err != nil {
		return "", err
	}
	log.Info().Msg("stored experiment setup")

	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Str("run", e.RunID).Msgf("starting %s experiment...", e.Name)

	for mi, matchup := range e.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...",
			mi+1, len(e.MatchUps), matchup[0], matchup[1])

		for i := 0; i < e.Games; i++ {
			count++
			configs := matchup
			if i%2 == 1 {
				configs = [2]metrics.AgentConfig{matchup[1], matchup[0]}
			}

			result, gameMetric, moveMetrics, err := runGame(ctx, e, configs, count)
			if err != nil {
				return writer.Dir(), fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     configs[game.Player1].ID,
				Agent2:     configs[game.Player2].ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with scores %v", mi+1, len(e.MatchUps), i+1, result.Scores)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(e.MatchUps))
	}

	log.Info().Msgf("completed %s experiment", e.Name)

	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored move records")

	if err := writer.WriteTrainingRows(e.RunID, gameRecords, moveRecords); err != nil {
		return writer.Dir(), err
	}
	log.Info().Msg("stored training rows")

	return writer.Dir(), nil
}

// runGame plays a single game with configs[p] choosing the moves of player p.
func runGame(ctx context.Context, e Experiment, configs [2]metrics.AgentConfig, id int) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := [2]agent.Agent{
		newAgent(configs[game.Player1], id),
		newAgent(configs[game.Player2], id),
	}
	local := engine.Local(agents, e.ThinkTime, e.Options...)
	return local.Run(ctx, game.NewState())
}

func newAgent(config metrics.AgentConfig, id int) agent.Agent {
	if config.Temperature > 0 {
		// Distinct but reproducible samples per game
		rng := rand.New(rand.NewSource(config.Seed + uint64(id)))
		return agent.NewTrainingAgent(rng, config.Temperature)
	}
	return agent.NewEvaluationAgent()
}
