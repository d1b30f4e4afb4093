package searcher

import (
	"fmt"
	"mancala/experiments/metrics"
	"mancala/game"
	"mancala/utils"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(m *MCTS)

// MCTS owns a search tree rooted at a single position. It is not safe for
// concurrent use; the controller confines it to one goroutine.
type MCTS struct {
	cSquared   float64
	maxNodes   int
	reuse      bool
	rng        *rand.Rand
	metrics    metrics.Collector
	tree       *tree
	generation uint64
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.cSquared = c * c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithMaxNodes bounds the node cache. It needs room for the root and one
// child, smaller values are ignored.
func WithMaxNodes(n int) Option {
	return func(m *MCTS) {
		if n >= 2 {
			m.maxNodes = n
		}
	}
}

func WithSubtreeReuse(reuse bool) Option {
	return func(m *MCTS) {
		m.reuse = reuse
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func NewMCTS(state game.State, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		cSquared: DefaultExploration * DefaultExploration,
		maxNodes: DefaultMaxNodes,
		reuse:    true,
		metrics:  metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	m.tree = newTree(state)
	return m
}

// Searchable reports whether another iteration can run, which is the case
// until the root is decided.
func (m *MCTS) Searchable() bool {
	return !m.tree.root().isTerminal()
}

// Saturated reports whether the tree has hit the node limit since it was last
// built from scratch. A saturated tree keeps searching, pruning stale nodes
// to make room. Reused subtrees carry the flag along.
func (m *MCTS) Saturated() bool {
	return m.tree.prunes > 0
}

// Simulate runs one select, expand, rollout and backup iteration. It does
// nothing and returns false when the root is terminal.
func (m *MCTS) Simulate() bool {
	if !m.Searchable() {
		return false
	}
	if len(m.tree.nodes) >= m.maxNodes {
		dropped := m.tree.prune()
		log.Debug().Int("dropped", dropped).Int("kept", len(m.tree.nodes)).Int("prunes", m.tree.prunes).Msg("pruned search tree")
	}
	leaf := m.tree.selectThenExpand(m.cSquared)
	result, plies := rollout(m.tree.nodes[leaf].state, m.rng)
	m.tree.backup(leaf, result)

	m.metrics.AddIteration()
	m.metrics.AddRolloutPlies(plies)
	return true
}

// Iterate runs up to n iterations and returns how many completed.
func (m *MCTS) Iterate(n int) int {
	for i := 0; i < n; i++ {
		if !m.Simulate() {
			return i
		}
	}
	return n
}

// Advance moves the root to the position reached by move. The existing
// subtree is kept when it was already expanded and reuse is enabled. An
// illegal move leaves the tree untouched.
func (m *MCTS) Advance(move game.Move) (reused bool, err error) {
	root := m.tree.root()
	next, err := root.state.Play(move)
	if err != nil {
		return false, fmt.Errorf("advancing root: %w", err)
	}

	ith := utils.FindIndex(root.state.LegalMoves(), move)
	child := root.edges[ith].child
	m.generation++

	if m.reuse && child != noNode {
		sub := m.tree.subtree(child)
		if got, expected := sub.root().state.Hash(), next.Hash(); got != expected {
			panic(fmt.Sprintf("node's state hash %d does not match successor hash %d", got, expected))
		}
		log.Debug().Int("move", int(move)).Int("kept", len(sub.nodes)).Int("dropped", len(m.tree.nodes)-len(sub.nodes)).Msg("rerooted search tree")
		m.tree = sub
		m.metrics.SetTreeReused(true)
		return true, nil
	}

	log.Debug().Int("move", int(move)).Msg("rebuilt search tree")
	m.tree = newTree(next)
	m.metrics.SetTreeReused(false)
	return false, nil
}

// Reset discards all statistics and starts a new tree at state.
func (m *MCTS) Reset(state game.State) {
	m.generation++
	m.tree = newTree(state)
	m.metrics.SetTreeReused(false)
}

func (m *MCTS) Root() game.State {
	return m.tree.root().state
}

// Size returns the number of nodes in the arena.
func (m *MCTS) Size() int {
	return len(m.tree.nodes)
}

// Visits returns the root's visit count, including its creating visit.
func (m *MCTS) Visits() int {
	return m.tree.root().visits
}

func (m *MCTS) Generation() uint64 {
	return m.generation
}

// Snapshot copies the root statistics into a value that later iterations
// cannot alter.
func (m *MCTS) Snapshot() Snapshot {
	root := m.tree.root()
	s := Snapshot{
		State:      root.state,
		Hash:       root.state.Hash(),
		Moves:      make([]MoveStats, len(root.edges)),
		Nodes:      len(m.tree.nodes),
		Generation: m.generation,
	}
	for i, e := range root.edges {
		s.Moves[i] = MoveStats{Move: e.move, Visits: e.visits}
		if e.visits > 0 {
			s.Moves[i].Score = e.rewards / float64(e.visits)
			s.Moves[i].Evaluated = true
		}
		s.Visits += e.visits
	}
	s.Result, s.Terminal = root.state.Result()
	s.Saturated = !s.Terminal && m.Saturated()
	return s
}

// rollout plays uniformly random moves until the game ends and returns the
// final result along with the number of moves played.
func rollout(state game.State, rng *rand.Rand) (game.Result, int) {
	plies := 0
	moves := state.LegalMoves()
	for len(moves) > 0 {
		move := moves[rng.Intn(len(moves))] // Random rollout policy
		next, err := state.Play(move)
		if err != nil {
			panic(fmt.Sprintf("playing enumerated move %d: %v", move, err))
		}
		state = next
		moves = state.LegalMoves()
		plies++
	}
	result, _ := state.Result()
	return result, plies
}
