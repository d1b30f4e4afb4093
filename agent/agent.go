package agent

import (
	"errors"
	"mancala/game"
	"mancala/searcher"
)

var ErrNoMoves = errors.New("snapshot has no moves")

type Agent interface {
	// FindMove picks a move for the player to move from the root statistics
	FindMove(snapshot searcher.Snapshot) (game.Move, error)
}
