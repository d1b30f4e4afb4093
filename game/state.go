package game

import (
	"fmt"
	"mancala/utils"
	"strings"

	"github.com/OneOfOne/xxhash"
)

// store marks the sowing cursor sitting on a side's store rather than a hole
const store = -1

// Side holds one player's holes and store.
type Side struct {
	Holes [HolesPerSide]uint8
	Store uint8
}

// Stones returns the number of stones in the holes on this side.
func (s Side) Stones() int {
	return int(utils.Sum(s.Holes[:]...))
}

// State is an immutable Kalah position. Play always returns a new copy, so
// states can be shared freely between tree branches and goroutines.
type State struct {
	Sides  [2]Side
	ToMove Player
}

// NewState returns the standard starting position with Player1 to move.
func NewState() State {
	var s State
	for p := range s.Sides {
		for i := range s.Sides[p].Holes {
			s.Sides[p].Holes[i] = InitialStonesPerHole
		}
	}
	s.ToMove = Player1
	return s
}

func (s State) Player() Player {
	return s.ToMove
}

// LegalMoves returns the non-empty holes of the player to move in ascending
// order, or nil once the game is over.
func (s State) LegalMoves() []Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]Move, 0, HolesPerSide)
	for i, stones := range s.Sides[s.ToMove].Holes {
		if stones > 0 {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

// Play sows the stones of the selected hole and returns the successor state.
func (s State) Play(move Move) (State, error) {
	if utils.FindIndex(s.LegalMoves(), move) < 0 {
		return s, fmt.Errorf("hole %d for %s: %w", move, s.ToMove, ErrIllegalMove)
	}

	mover := s.ToMove
	next := s
	stones := next.Sides[mover].Holes[move]
	next.Sides[mover].Holes[move] = 0

	side := mover
	hole := int(move)
	for ; stones > 0; stones-- {
		switch hole {
		case store:
			side = side.Other()
			hole = HolesPerSide - 1
			next.Sides[side].Holes[hole]++
		case 0:
			hole = store
			next.Sides[side].Store++
		default:
			hole--
			next.Sides[side].Holes[hole]++
		}
	}

	extraTurn := side == mover && hole == store
	if side == mover && hole != store && next.Sides[mover].Holes[hole] == 1 {
		// Last stone landed in an empty hole on the mover's side
		opposite := HolesPerSide - 1 - hole
		next.Sides[mover].Store += next.Sides[mover.Other()].Holes[opposite]
		next.Sides[mover.Other()].Holes[opposite] = 0
	}
	if !extraTurn {
		next.ToMove = mover.Other()
	}

	if next.Stones() != s.Stones() {
		panic(fmt.Sprintf("stone count changed from %d to %d playing hole %d", s.Stones(), next.Stones(), move))
	}
	return next, nil
}

// IsTerminal reports whether either side has run out of stones in its holes.
func (s State) IsTerminal() bool {
	return s.Sides[Player1].Stones() == 0 || s.Sides[Player2].Stones() == 0
}

// Result returns the final scores, sweeping any stones left in the holes to
// their owner's store. It reports false while the game is still in progress.
func (s State) Result() (Result, bool) {
	if !s.IsTerminal() {
		return Result{}, false
	}
	var r Result
	for p, side := range s.Sides {
		r.Scores[p] = int(side.Store) + side.Stones()
	}
	return r, true
}

// Settle returns the terminal position with the remaining stones swept into
// the stores. Non-terminal states are returned unchanged.
func (s State) Settle() State {
	if !s.IsTerminal() {
		return s
	}
	settled := s
	for p := range settled.Sides {
		settled.Sides[p].Store += uint8(settled.Sides[p].Stones())
		settled.Sides[p].Holes = [HolesPerSide]uint8{}
	}
	return settled
}

// Stones returns the total number of stones in holes and stores.
func (s State) Stones() int {
	total := 0
	for _, side := range s.Sides {
		total += side.Stones() + int(side.Store)
	}
	return total
}

func (s State) Hash() uint64 {
	buf := make([]byte, 0, 2*(HolesPerSide+1)+1)
	for _, side := range s.Sides {
		buf = append(buf, side.Holes[:]...)
		buf = append(buf, side.Store)
	}
	buf = append(buf, byte(s.ToMove))
	return xxhash.Checksum64(buf)
}

func (s State) String() string {
	var b strings.Builder
	for p, side := range s.Sides {
		if p > 0 {
			b.WriteString(" | ")
		}
		marker := " "
		if Player(p) == s.ToMove {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s%s %v store=%d", marker, Player(p), side.Holes, side.Store)
	}
	return b.String()
}
