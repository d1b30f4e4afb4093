package game

import "errors"

// HolesPerSide is the number of holes on each player's side, not including their store.
const HolesPerSide = 6

// InitialStonesPerHole is the number of stones in each hole at the start of a game.
const InitialStonesPerHole = 4

// TotalStones is the number of stones in play, constant across every reachable state.
const TotalStones = 2 * HolesPerSide * InitialStonesPerHole

var ErrIllegalMove = errors.New("illegal move")

type Player int8

const (
	Player1 Player = iota
	Player2
)

// Other returns the opponent of p.
func (p Player) Other() Player {
	return 1 - p
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "Player1"
	case Player2:
		return "Player2"
	default:
		return "Unknown"
	}
}

// Move selects a hole on the side of the player to move. Hole 0 is the one
// closest to that player's store.
type Move int

// Result holds the final banked stones per player.
type Result struct {
	Scores [2]int
}

// Margin returns the final score difference from p's perspective.
func (r Result) Margin(p Player) int {
	return r.Scores[p] - r.Scores[p.Other()]
}

// Winner returns the player with more stones, or false on a draw.
func (r Result) Winner() (Player, bool) {
	switch {
	case r.Scores[Player1] > r.Scores[Player2]:
		return Player1, true
	case r.Scores[Player2] > r.Scores[Player1]:
		return Player2, true
	default:
		return Player1, false
	}
}
