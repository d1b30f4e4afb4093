package agent

import (
	"mancala/game"
	"mancala/searcher"

	"golang.org/x/exp/rand"
)

type evaluationAgent struct {
	rng *rand.Rand // Breaks ties when set
}

// NewEvaluationAgent returns an agent that plays the most visited move,
// preferring the earliest hole on ties.
func NewEvaluationAgent() Agent {
	return evaluationAgent{}
}

// NewShuffledEvaluationAgent plays the most visited move like the evaluation
// agent but picks uniformly among tied moves.
func NewShuffledEvaluationAgent(rng *rand.Rand) Agent {
	if rng == nil {
		panic("need a random source to break ties")
	}
	return evaluationAgent{rng: rng}
}

func (a evaluationAgent) FindMove(snapshot searcher.Snapshot) (game.Move, error) {
	best := snapshot.BestMoves()
	if len(best) == 0 {
		return 0, ErrNoMoves
	}
	if a.rng == nil {
		return best[0], nil
	}
	return best[a.rng.Intn(len(best))], nil
}
