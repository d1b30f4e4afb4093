package searcher

import (
	"mancala/experiments/metrics"
	"mancala/game"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireVisitAccounting checks the visit invariants of every node. Once a
// tree has been pruned, a re-expanded child restarts its count below the
// statistics its edge kept.
func requireVisitAccounting(t *testing.T, m *MCTS) {
	t.Helper()
	for i, n := range m.tree.nodes {
		if n.isTerminal() {
			continue
		}
		sum := 0
		for _, e := range n.edges {
			sum += e.visits
			if e.child == noNode {
				continue
			}
			if m.Saturated() {
				require.GreaterOrEqual(t, e.visits, m.tree.nodes[e.child].visits, "Node %d: edge visits should cover child visits", i)
			} else {
				require.Equal(t, e.visits, m.tree.nodes[e.child].visits, "Node %d: edge visits should equal child visits", i)
			}
		}
		require.Equal(t, n.visits-1, sum, "Node %d: edge visits should sum to node visits minus its creating visit", i)
	}
}

func TestMCTSSimulate(t *testing.T) {
	t.Run("accounting visits on every node", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(1))

		require.Equal(t, 400, m.Iterate(400))

		require.Equal(t, 401, m.Visits(), "Root should count each iteration plus its creation")
		require.Equal(t, 400, m.Snapshot().Visits, "Snapshot visits should count iterations")
		requireVisitAccounting(t, m)
	})

	t.Run("trying every move before revisiting any", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(1))
		k := len(game.NewState().LegalMoves())

		for i := 1; i <= k; i++ {
			require.True(t, m.Simulate())
			snapshot := m.Snapshot()
			for j, stats := range snapshot.Moves {
				if j < i {
					require.Equal(t, 1, stats.Visits, "Iteration %d: move %d should be tried exactly once", i, j)
				} else {
					require.Equal(t, 0, stats.Visits, "Iteration %d: move %d should be untried", i, j)
					require.False(t, stats.Evaluated, "Untried moves should be flagged as unevaluated")
				}
			}
			require.Equal(t, i+1, m.Size(), "Each iteration should add one node")
		}
	})

	t.Run("exploring monotonically", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(9))

		m.Iterate(300)
		first := m.Snapshot()
		m.Iterate(200)
		second := m.Snapshot()

		require.Equal(t, 300, first.Visits)
		require.Equal(t, 500, second.Visits)
		for i := range first.Moves {
			require.GreaterOrEqual(t, second.Moves[i].Visits, first.Moves[i].Visits, "Move visits should never decrease")
		}
	})

	t.Run("reproducing results with the same seed", func(t *testing.T) {
		a := NewMCTS(game.NewState(), WithSeed(42))
		b := NewMCTS(game.NewState(), WithSeed(42))

		a.Iterate(10000)
		b.Iterate(10000)

		require.Equal(t, a.Snapshot(), b.Snapshot(), "Seeded searches should produce identical snapshots")
	})

	t.Run("bounding scores by the stone margin", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(5))
		m.Iterate(1000)

		for _, stats := range m.Snapshot().Moves {
			require.True(t, stats.Evaluated)
			require.LessOrEqual(t, stats.Score, float64(game.TotalStones))
			require.GreaterOrEqual(t, stats.Score, -float64(game.TotalStones))
		}
	})

	t.Run("stagnating on terminal root", func(t *testing.T) {
		s := game.State{}
		s.Sides[game.Player2].Holes[0] = game.TotalStones
		m := NewMCTS(s, WithSeed(1))

		require.False(t, m.Simulate(), "Should not iterate from a terminal root")
		require.Equal(t, 0, m.Iterate(10))

		snapshot := m.Snapshot()
		require.True(t, snapshot.Terminal)
		require.Empty(t, snapshot.Moves, "Terminal root should have no moves")
		require.Equal(t, [2]int{0, game.TotalStones}, snapshot.Result.Scores)
		require.Equal(t, 0, snapshot.Visits)
	})

	t.Run("searching past the node limit", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(1), WithMaxNodes(50))

		require.Equal(t, 49, m.Iterate(49), "Each iteration should add one node until the cache is full")
		require.Equal(t, 50, m.Size())
		require.False(t, m.Saturated(), "Filling the cache should not prune yet")

		previous := m.Snapshot()
		for round := 0; round < 20; round++ {
			require.Equal(t, 100, m.Iterate(100), "Search should keep iterating with a full cache")
			snapshot := m.Snapshot()

			require.Equal(t, previous.Visits+100, snapshot.Visits, "Root visits should keep growing")
			for i := range snapshot.Moves {
				require.GreaterOrEqual(t, snapshot.Moves[i].Visits, previous.Moves[i].Visits, "Move visits should never decrease")
			}
			require.LessOrEqual(t, m.Size(), 50, "Pruning should keep the cache within its limit")
			require.True(t, snapshot.Saturated)
			require.True(t, m.Searchable())
			requireVisitAccounting(t, m)
			previous = snapshot
		}
	})

	t.Run("keeping saturation across a reused subtree", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(1), WithMaxNodes(20))
		m.Iterate(200)
		require.True(t, m.Saturated())

		_, err := m.Advance(m.Snapshot().BestMoves()[0])

		require.NoError(t, err)
		require.True(t, m.Saturated(), "Reused nodes may still carry pruned statistics")
		require.LessOrEqual(t, m.Size(), 20)
		requireVisitAccounting(t, m)
	})

	t.Run("clearing saturation on reset", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(1), WithMaxNodes(20))
		m.Iterate(200)

		m.Reset(game.NewState())

		require.False(t, m.Saturated(), "A fresh tree should start with a fresh cache status")
		require.False(t, m.Snapshot().Saturated)
	})

	t.Run("evaluating a forced move at the root", func(t *testing.T) {
		s := game.State{ToMove: game.Player1}
		s.Sides[game.Player1].Holes[2] = 1
		s.Sides[game.Player1].Store = 23
		for i := range s.Sides[game.Player2].Holes {
			s.Sides[game.Player2].Holes[i] = 4
		}
		m := NewMCTS(s, WithSeed(1))

		require.Equal(t, 20, m.Iterate(20))

		snapshot := m.Snapshot()
		require.Len(t, snapshot.Moves, 1)
		require.Equal(t, game.Move(2), snapshot.Moves[0].Move)
		require.Equal(t, 20, snapshot.Visits, "Single move roots should still report statistics")
		require.Equal(t, 1.0, snapshot.Proportion(0))
		require.True(t, snapshot.Moves[0].Evaluated)
		requireVisitAccounting(t, m)
	})

	t.Run("collecting metrics", func(t *testing.T) {
		collector := metrics.NewCollector()
		m := NewMCTS(game.NewState(), WithSeed(1), WithMetrics(collector))

		collector.Start()
		m.Iterate(50)
		got := collector.Complete()

		require.Equal(t, 50, got.Iterations)
		require.Greater(t, got.RolloutPlies, 0, "Rollouts from the opening should play moves")
	})
}

func TestMCTSAdvance(t *testing.T) {
	t.Run("reusing an expanded subtree", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(2))
		m.Iterate(600)
		before, ok := m.Snapshot().Stats(3)
		require.True(t, ok)

		reused, err := m.Advance(3)

		require.NoError(t, err)
		require.True(t, reused, "Should keep the expanded subtree")
		expected, err := game.NewState().Play(3)
		require.NoError(t, err)
		require.Equal(t, expected, m.Root(), "Root should be the successor state")
		require.Equal(t, before.Visits, m.Visits(), "Root should keep the child's statistics")
		require.Equal(t, before.Visits-1, m.Snapshot().Visits, "Child's creating visit is not attributed to its edges")
		require.Equal(t, uint64(1), m.Generation())
		requireVisitAccounting(t, m)

		m.Iterate(100)
		requireVisitAccounting(t, m)
	})

	t.Run("rebuilding when reuse is disabled", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(2), WithSubtreeReuse(false))
		m.Iterate(600)

		reused, err := m.Advance(3)

		require.NoError(t, err)
		require.False(t, reused)
		require.Equal(t, 1, m.Size(), "Should start from a single root node")
		require.Equal(t, 0, m.Snapshot().Visits)
	})

	t.Run("rebuilding when the move was never expanded", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(2))
		m.Iterate(2)

		reused, err := m.Advance(4)

		require.NoError(t, err)
		require.False(t, reused)
		expected, err := game.NewState().Play(4)
		require.NoError(t, err)
		require.Equal(t, expected, m.Root())
	})

	t.Run("rejecting an illegal move", func(t *testing.T) {
		m := NewMCTS(game.NewState(), WithSeed(2))
		m.Iterate(200)
		before := m.Snapshot()
		size := m.Size()

		_, err := m.Advance(game.HolesPerSide)

		require.ErrorIs(t, err, game.ErrIllegalMove)
		require.Equal(t, before, m.Snapshot(), "Statistics should not change")
		require.Equal(t, size, m.Size(), "Tree should not change")
		require.Equal(t, uint64(0), m.Generation())
	})
}

func TestMCTSReset(t *testing.T) {
	m := NewMCTS(game.NewState(), WithSeed(2))
	m.Iterate(100)
	next, err := game.NewState().Play(0)
	require.NoError(t, err)

	m.Reset(next)

	require.Equal(t, next, m.Root())
	require.Equal(t, 1, m.Size())
	require.Equal(t, 1, m.Visits())
	require.Equal(t, uint64(1), m.Generation())
}
