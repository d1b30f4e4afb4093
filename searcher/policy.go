package searcher

import "math"

// uct scores the edges of one node. The exploration numerator c^2*ln(N)
// depends only on the parent, so it is computed once per selection.
type uct struct {
	numerator float64
}

func newUCT(cSquared float64, parentVisits int) uct {
	if parentVisits <= 0 {
		panic("parent has no visits")
	}
	return uct{numerator: cSquared * math.Log(float64(parentVisits))}
}

// score returns W/n + c*sqrt(ln(N)/n), or +Inf for an untried edge.
func (u uct) score(e edge) float64 {
	if e.visits == 0 {
		return math.Inf(1)
	}
	n := float64(e.visits)
	return e.rewards/n + math.Sqrt(u.numerator/n)
}

// best returns the index of the highest scoring edge, the earliest on ties.
func (u uct) best(edges []edge) int {
	maxIndex := -1
	maxScore := math.Inf(-1)
	for i, e := range edges {
		s := u.score(e)
		if math.IsInf(s, 1) {
			return i
		}
		if s > maxScore {
			maxScore = s
			maxIndex = i
		}
	}
	return maxIndex
}
