package agent

import (
	"mancala/game"
	"mancala/searcher"
	"math"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	rng         *rand.Rand
	temperature float64
}

// NewTrainingAgent returns an agent that samples moves in proportion to
// visits^(1/temperature), for varied self-play games.
func NewTrainingAgent(rng *rand.Rand, temperature float64) Agent {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	return trainingAgent{rng: rng, temperature: temperature}
}

func (a trainingAgent) FindMove(snapshot searcher.Snapshot) (game.Move, error) {
	if len(snapshot.Moves) == 0 {
		return 0, ErrNoMoves
	}
	policy := adjustTemperature(snapshot.Moves, a.temperature)
	return snapshot.Moves[sample(a.rng, policy)].Move, nil
}

func adjustTemperature(moves []searcher.MoveStats, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make([]float64, len(moves))
	for i, stats := range moves {
		policy[i] = math.Pow(float64(stats.Visits), exponent)
		sum += policy[i]
	}
	if sum == 0 { // Nothing searched yet
		for i := range policy {
			policy[i] = 1.0 / float64(len(policy))
		}
		return policy
	}
	// Normalize
	for i := range policy {
		policy[i] /= sum
	}
	return policy
}

func sample(rng *rand.Rand, policy []float64) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(policy) - 1 // Fallback in case of rounding errors
}
