// Package ordering implements the centrality, interleaving, and DFS
// primitives the planner uses to sequence community groups, communities
// within a group, and group start points.
package ordering

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CentralityGraph is the minimal surface KatzCentrality and DFSOrder need.
// pkg/community.MetaGraph satisfies it directly; a pkg/graphmodel.Graph does
// through the NodeGraph adapter, since its own Nodes returns []*Node.
type CentralityGraph interface {
	Nodes() []int
	Neighbors(node int) []int
}

// KatzCentrality computes Katz centrality for every node of g by solving
// (I - alpha*A)x = beta*1 directly, where A is g's adjacency matrix in the
// order Nodes() returns -- the closed-form fixed point of the power
// iteration x_{t+1} = alpha*A*x_t + beta*1 -- rather than iterating the
// recurrence to an approximate convergence.
func KatzCentrality(g CentralityGraph, alpha, beta float64) map[int]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	scores := make(map[int]float64, n)
	if n == 0 {
		return scores
	}

	index := make(map[int]int, n)
	for i, node := range nodes {
		index[node] = i
	}

	coef := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		coef.Set(i, i, 1)
	}
	for i, node := range nodes {
		for _, nb := range g.Neighbors(node) {
			j, ok := index[nb]
			if !ok {
				continue
			}
			coef.Set(i, j, coef.At(i, j)-alpha)
		}
	}

	rhs := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		rhs.Set(i, 0, beta)
	}

	var x mat.Dense
	if err := x.Solve(coef, rhs); err != nil {
		// (I - alpha*A) is singular for this alpha/graph combination (e.g.
		// alpha too close to the inverse of A's largest eigenvalue): fall
		// back to the uniform beta score rather than propagating a solver
		// error into ordering, which only needs a total order over nodes.
		for _, node := range nodes {
			scores[node] = beta
		}
		return scores
	}
	for i, node := range nodes {
		scores[node] = x.At(i, 0)
	}
	return scores
}

// CentralityOrder sorts g's nodes ascending by Katz centrality (least
// central first), breaking ties by node id for determinism.
func CentralityOrder(g CentralityGraph, alpha, beta float64) []int {
	scores := KatzCentrality(g, alpha, beta)
	nodes := append([]int(nil), g.Nodes()...)
	sort.Slice(nodes, func(i, j int) bool {
		si, sj := scores[nodes[i]], scores[nodes[j]]
		if si != sj {
			return si < sj
		}
		return nodes[i] < nodes[j]
	})
	return nodes
}

// FromEnds returns the interleave sequence 0, L-1, 1, L-2, 2, L-3, ...,
// appending the middle index once if L is odd.
func FromEnds(l int) []int {
	if l <= 0 {
		return nil
	}
	out := make([]int, 0, l)
	lo, hi := 0, l-1
	for lo < hi {
		out = append(out, lo, hi)
		lo++
		hi--
	}
	if lo == hi {
		out = append(out, lo)
	}
	return out
}

// DFSOrder runs a depth-first search of g starting at seed and returns the
// visit order together with each visited node's parent (parent of seed is
// -1). Traversal explores each node's Neighbors in the order that slice
// returns them, which is the deterministic tie-break source: the result is
// stable whenever the caller's adjacency representation is stable.
func DFSOrder(g CentralityGraph, seed int) (order []int, parent map[int]int) {
	visited := make(map[int]bool)
	parent = make(map[int]int)
	parent[seed] = -1

	type frame struct {
		node  int
		edges []int
		next  int
	}

	var stack []frame
	visited[seed] = true
	order = append(order, seed)
	stack = append(stack, frame{node: seed, edges: g.Neighbors(seed)})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.edges) {
			stack = stack[:len(stack)-1]
			continue
		}
		nb := top.edges[top.next]
		top.next++
		if visited[nb] {
			continue
		}
		visited[nb] = true
		parent[nb] = top.node
		order = append(order, nb)
		stack = append(stack, frame{node: nb, edges: g.Neighbors(nb)})
	}

	return order, parent
}
