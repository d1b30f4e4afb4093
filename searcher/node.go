package searcher

import (
	"fmt"
	"mancala/game"
	"slices"
)

const noNode int32 = -1

// edge holds the statistics of one move out of a node. rewards are stone
// margins from the perspective of the node's player to move.
type edge struct {
	move    game.Move
	child   int32
	rewards float64
	visits  int
}

type node struct {
	state      game.State
	parent     int32
	parentEdge int
	edges      []edge
	visits     int
	lastVisit  uint64 // Tree tick of the latest backup through this node
}

func newNode(state game.State, parent int32, parentEdge int) node {
	moves := state.LegalMoves()
	edges := make([]edge, len(moves))
	for i, move := range moves {
		edges[i] = edge{move: move, child: noNode}
	}
	return node{
		state:      state,
		parent:     parent,
		parentEdge: parentEdge,
		edges:      edges,
	}
}

func (n *node) isTerminal() bool {
	return len(n.edges) == 0
}

// pickChild returns the edge with the highest UCT score. Unvisited edges win
// outright and ties go to the earliest edge.
func (n *node) pickChild(cSquared float64) int {
	if n.visits == 0 {
		panic("node has children but no visits")
	}

	return newUCT(cSquared, n.visits).best(n.edges)
}

// tree is an arena of nodes addressed by index. The root is always index 0.
type tree struct {
	nodes  []node
	tick   uint64 // Number of backups so far
	prunes int
}

func newTree(state game.State) *tree {
	t := &tree{nodes: make([]node, 0, 64)}
	t.add(newNode(state, noNode, -1))
	// The root's own creation counts as its first visit
	t.nodes[0].visits = 1
	return t
}

func (t *tree) root() *node {
	return &t.nodes[0]
}

func (t *tree) add(n node) int32 {
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// selectThenExpand follows UCT from the root and returns the evaluation
// point: a newly added child or a terminal node. Untried moves score +Inf,
// so they are expanded in enumeration order before any sibling is revisited.
// An edge whose subtree was pruned is expanded again when selected.
func (t *tree) selectThenExpand(cSquared float64) int32 {
	current := int32(0)
	for {
		n := &t.nodes[current]
		if n.isTerminal() {
			return current
		}
		ith := n.pickChild(cSquared)
		if n.edges[ith].child == noNode {
			return t.expand(current, ith)
		}
		current = n.edges[ith].child
	}
}

// expand adds a child for the ith move of parent.
func (t *tree) expand(parent int32, ith int) int32 {
	move := t.nodes[parent].edges[ith].move
	state, err := t.nodes[parent].state.Play(move)
	if err != nil {
		panic(fmt.Sprintf("expanding enumerated move %d: %v", move, err))
	}

	child := t.add(newNode(state, parent, ith))
	t.nodes[parent].edges[ith].child = child
	return child
}

// backup adds a visit to every node from leaf to root and credits each
// traversed edge with the margin seen by that edge's player to move.
func (t *tree) backup(leaf int32, result game.Result) {
	t.tick++
	current := leaf
	for current != noNode {
		n := &t.nodes[current]
		n.visits++
		n.lastVisit = t.tick
		if n.parent != noNode {
			parent := &t.nodes[n.parent]
			e := &parent.edges[n.parentEdge]
			e.visits++
			e.rewards += float64(result.Margin(parent.state.ToMove))
		}
		current = n.parent
	}
}

// subtree copies the nodes reachable from root into a fresh arena, remapping
// indices so that root becomes index 0.
func (t *tree) subtree(root int32) *tree {
	return t.compact(root, func(*node) bool { return true })
}

// prune drops roughly the stalest seventh of the nodes and returns how many
// were dropped. Every backup through a node also passes its parent, so a
// node is never more recent than its parent and the kept nodes stay
// connected to the root. Parent edges keep their statistics.
func (t *tree) prune() int {
	if len(t.nodes) < 2 {
		return 0
	}
	ticks := make([]uint64, 0, len(t.nodes)-1)
	for _, n := range t.nodes[1:] {
		ticks = append(ticks, n.lastVisit)
	}
	slices.Sort(ticks)
	cutoff := ticks[len(ticks)/7]
	if cutoff == ticks[0] {
		// Always drop at least the stalest nodes
		cutoff++
	}

	before := len(t.nodes)
	pruned := t.compact(0, func(n *node) bool { return n.lastVisit >= cutoff })
	pruned.prunes = t.prunes + 1
	*t = *pruned
	return before - len(t.nodes)
}

// compact copies root and every descendant accepted by keep, reached only
// through accepted nodes, into a fresh arena. Edges to dropped children are
// unlinked.
func (t *tree) compact(root int32, keep func(n *node) bool) *tree {
	sub := &tree{nodes: make([]node, 0, 64), tick: t.tick, prunes: t.prunes}
	remap := map[int32]int32{root: 0}
	queue := []int32{root}

	for head := 0; head < len(queue); head++ {
		n := t.nodes[queue[head]]

		edges := make([]edge, len(n.edges))
		copy(edges, n.edges)
		for i := range edges {
			old := edges[i].child
			if old == noNode {
				continue
			}
			if !keep(&t.nodes[old]) {
				edges[i].child = noNode
				continue
			}
			remap[old] = int32(len(queue))
			queue = append(queue, old)
			edges[i].child = remap[old]
		}
		n.edges = edges

		if head == 0 {
			n.parent, n.parentEdge = noNode, -1
		} else {
			n.parent = remap[n.parent]
		}
		sub.nodes = append(sub.nodes, n)
	}
	return sub
}
