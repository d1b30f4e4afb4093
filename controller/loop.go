package controller

import (
	"context"
	"fmt"
	"mancala/searcher"
	"time"

	"github.com/rs/zerolog/log"
)

// run owns m until ctx is canceled. Iterations are never interrupted: ctx and
// pending commands are only checked between them.
func (c *Controller) run(ctx context.Context, m *searcher.MCTS, commands <-chan command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Uint64("generation", m.Generation()).Msg("search loop failed")
			err = fmt.Errorf("%w: %v", ErrLoopFailed, r)
		}
	}()

	for {
		if !m.Searchable() {
			// Terminal root, nothing to search until the root changes
			select {
			case <-ctx.Done():
				c.publish(m)
				return nil
			case cmd := <-commands:
				c.handle(m, cmd)
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.publish(m)
			return nil
		case cmd := <-commands:
			c.handle(m, cmd)
		default:
			c.ponder(ctx, m, commands)
			c.publish(m)
		}
	}
}

// ponder runs iterations until a publication is due or the loop has
// something else to do.
func (c *Controller) ponder(ctx context.Context, m *searcher.MCTS, commands <-chan command) int {
	start := time.Now()
	iterations := 0
	for iterations < c.publishEvery && time.Since(start) < c.publishInterval {
		if ctx.Err() != nil || len(commands) > 0 {
			break
		}
		if !m.Simulate() {
			break
		}
		iterations++
	}
	return iterations
}

func (c *Controller) handle(m *searcher.MCTS, cmd command) {
	switch cmd.kind {
	case commitMove:
		reused, err := m.Advance(cmd.move)
		if err != nil {
			cmd.reply <- fmt.Errorf("committing move %d: %w", cmd.move, err)
			return
		}
		log.Debug().Int("move", int(cmd.move)).Bool("reused", reused).Int("nodes", m.Size()).Msg("committed move")
	case resetState:
		m.Reset(cmd.state)
		log.Debug().Str("state", cmd.state.String()).Msg("reset search")
	default:
		panic(fmt.Sprintf("unknown command kind %d", cmd.kind))
	}
	c.publish(m)
	cmd.reply <- nil
}
