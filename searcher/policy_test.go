package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUCT(t *testing.T) {
	t.Run("panics with zero parent visits", func(t *testing.T) {
		require.Panics(t, func() {
			newUCT(4.0, 0)
		}, "Should panic when N is 0")
	})
}

func TestUCTScore(t *testing.T) {
	t.Run("computing UCT value", func(t *testing.T) {
		c := 12.0
		policy := newUCT(c*c, 100)
		got := policy.score(edge{rewards: 50.0, visits: 10})

		expected := 50.0/10 + c*math.Sqrt(math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute W/N + C*sqrt(ln(N_parent)/N)")
	})

	t.Run("ranking untried edges first", func(t *testing.T) {
		policy := newUCT(4.0, 100)

		require.True(t, math.IsInf(policy.score(edge{}), 1), "Untried edges should score +Inf")
	})

	t.Run("no exploration bonus after a single parent visit", func(t *testing.T) {
		policy := newUCT(4.0, 1)

		require.Equal(t, -3.0, policy.score(edge{rewards: -3.0, visits: 1}), "ln(1) should zero the exploration term")
	})

	t.Run("exploration term increases with parent visits", func(t *testing.T) {
		policy1 := newUCT(4.0, 100)
		policy2 := newUCT(4.0, 1000)
		e := edge{rewards: 5.0, visits: 10}

		require.Greater(t, policy2.score(e), policy1.score(e),
			"More parent visits should increase exploration term")
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		policy := newUCT(4.0, 100)

		require.Greater(t, policy.score(edge{rewards: 5.0, visits: 10}), policy.score(edge{rewards: 10.0, visits: 20}),
			"More child visits at the same mean should decrease exploration term")
	})

	t.Run("exploitation term increases with rewards", func(t *testing.T) {
		policy := newUCT(4.0, 100)

		require.Greater(t, policy.score(edge{rewards: 10.0, visits: 10}), policy.score(edge{rewards: 5.0, visits: 10}),
			"More rewards should increase exploitation term")
	})
}

func TestUCTBest(t *testing.T) {
	policy := newUCT(4.0, 30)

	t.Run("picking the earliest untried edge", func(t *testing.T) {
		edges := []edge{{rewards: 100, visits: 10}, {}, {}}
		require.Equal(t, 1, policy.best(edges))
	})

	t.Run("breaking ties by order", func(t *testing.T) {
		edges := []edge{{rewards: 5, visits: 10}, {rewards: 5, visits: 10}, {rewards: -5, visits: 10}}
		require.Equal(t, 0, policy.best(edges))
	})

	t.Run("preferring the higher score", func(t *testing.T) {
		edges := []edge{{rewards: -20, visits: 10}, {rewards: 20, visits: 10}}
		require.Equal(t, 1, policy.best(edges))
	})

	t.Run("returning nothing without edges", func(t *testing.T) {
		require.Equal(t, -1, policy.best(nil))
	})
}
