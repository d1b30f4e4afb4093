package controller

import (
	"context"
	"errors"
	"mancala/game"
	"mancala/searcher"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotSearching     = errors.New("controller is not searching")
	ErrAlreadySearching = errors.New("controller is already searching")
	ErrLoopFailed       = errors.New("search loop failed")
)

type Status int

const (
	Idle Status = iota
	Searching
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Searching:
		return "Searching"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

const (
	DefaultPublishEvery    = 1000
	DefaultPublishInterval = time.Second / 60
)

type Option func(c *Controller)

func WithSearchOptions(options ...searcher.Option) Option {
	return func(c *Controller) {
		c.searchOptions = append(c.searchOptions, options...)
	}
}

func WithPublishEvery(iterations int) Option {
	return func(c *Controller) {
		if iterations > 0 {
			c.publishEvery = iterations
		}
	}
}

func WithPublishInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.publishInterval = interval
		}
	}
}

type commandKind int

const (
	commitMove commandKind = iota
	resetState
)

type command struct {
	kind  commandKind
	move  game.Move
	state game.State
	reply chan error
}

// Controller runs a search in a background goroutine and publishes
// snapshots of the root statistics. Lifecycle calls are serialized by mu;
// the tree itself is only ever touched by the search goroutine.
type Controller struct {
	mu              sync.Mutex
	status          Status
	searchOptions   []searcher.Option
	publishEvery    int
	publishInterval time.Duration

	commands chan command
	cancel   context.CancelFunc
	group    *errgroup.Group
	loopCtx  context.Context

	latest atomic.Pointer[searcher.Snapshot]
}

func New(options ...Option) *Controller {
	c := &Controller{ // Default values
		status:          Idle,
		publishEvery:    DefaultPublishEvery,
		publishInterval: DefaultPublishInterval,
	}
	for _, option := range options {
		option(c)
	}
	c.latest.Store(&searcher.Snapshot{})
	return c
}

// Start begins searching from state with a fresh tree.
func (c *Controller) Start(state game.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == Searching {
		return ErrAlreadySearching
	}
	c.spawn(state)
	return nil
}

// Stop halts the search at the next iteration boundary. The last snapshot
// stays readable. A non-nil error reports a failure of the search loop.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Searching {
		return ErrNotSearching
	}
	c.cancel()
	err := c.group.Wait()
	c.status = Stopped
	log.Debug().Str("status", c.status.String()).Msg("search stopped")
	return err
}

// CommitMove reroots the search at the position reached by move and resumes
// searching. An illegal move changes nothing.
func (c *Controller) CommitMove(move game.Move) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Searching {
		return ErrNotSearching
	}
	return c.send(command{kind: commitMove, move: move})
}

// Reset discards all statistics and searches state with a brand-new tree.
// From Idle it behaves like Start.
func (c *Controller) Reset(state game.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != Searching {
		c.spawn(state)
		return nil
	}
	return c.send(command{kind: resetState, state: state})
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// LatestEvaluation returns the most recently published snapshot without
// blocking. Before Start it is the zero Snapshot.
func (c *Controller) LatestEvaluation() searcher.Snapshot {
	return *c.latest.Load()
}

func (c *Controller) CurrentState() game.State {
	return c.latest.Load().State
}

func (c *Controller) IsTerminal() bool {
	return c.latest.Load().Terminal
}

func (c *Controller) TerminalResult() (game.Result, bool) {
	snapshot := c.latest.Load()
	return snapshot.Result, snapshot.Terminal
}

// spawn must be called with mu held.
func (c *Controller) spawn(state game.State) {
	m := searcher.NewMCTS(state, c.searchOptions...)
	c.publish(m)

	ctx, cancel := context.WithCancel(context.Background())
	group, loopCtx := errgroup.WithContext(ctx)
	commands := make(chan command, 1)
	c.cancel = cancel
	c.group = group
	c.loopCtx = loopCtx
	c.commands = commands
	c.status = Searching

	group.Go(func() error {
		return c.run(loopCtx, m, commands)
	})
	log.Debug().Str("state", state.String()).Msg("search started")
}

// send hands cmd to the search loop and waits for its reply. It must be
// called with mu held while Searching.
func (c *Controller) send(cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case c.commands <- cmd:
	case <-c.loopCtx.Done():
		return ErrLoopFailed
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-c.loopCtx.Done():
		return ErrLoopFailed
	}
}

func (c *Controller) publish(m *searcher.MCTS) {
	snapshot := m.Snapshot()
	c.latest.Store(&snapshot)
}
