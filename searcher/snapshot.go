package searcher

import "mancala/game"

// MoveStats is the evaluation of one legal move at the root. Score is the
// mean final margin for the player to move and is only meaningful when
// Evaluated is set.
type MoveStats struct {
	Move      game.Move
	Visits    int
	Score     float64
	Evaluated bool
}

// Snapshot is an immutable copy of the root statistics at one point in time.
type Snapshot struct {
	State      game.State
	Hash       uint64
	Moves      []MoveStats // In legal move order
	Visits     int         // Iterations that passed through the root's edges
	Nodes      int
	Saturated  bool   // The node limit was reached and stale nodes are being pruned
	Generation uint64 // Incremented whenever the root is replaced
	Terminal   bool
	Result     game.Result
}

// Proportion returns the share of root visits that went to the ith move.
func (s Snapshot) Proportion(i int) float64 {
	if s.Visits == 0 {
		return 0
	}
	return float64(s.Moves[i].Visits) / float64(s.Visits)
}

// Stats returns the statistics for move if it is legal at the root.
func (s Snapshot) Stats(move game.Move) (MoveStats, bool) {
	for _, stats := range s.Moves {
		if stats.Move == move {
			return stats, true
		}
	}
	return MoveStats{}, false
}

// BestMoves returns every move sharing the highest visit count.
func (s Snapshot) BestMoves() []game.Move {
	maxVisits := -1
	var best []game.Move
	for _, stats := range s.Moves {
		switch {
		case stats.Visits > maxVisits:
			maxVisits = stats.Visits
			best = []game.Move{stats.Move}
		case stats.Visits == maxVisits:
			best = append(best, stats.Move)
		}
	}
	return best
}
