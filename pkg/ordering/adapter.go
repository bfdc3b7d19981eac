package ordering

import "kgtour/pkg/graphmodel"

// NodeGraph adapts a *graphmodel.Graph to the CentralityGraph interface so
// node-level centrality and DFS ordering can run directly over it.
type NodeGraph struct {
	G *graphmodel.Graph
}

// Nodes returns every node index 0..NumNodes-1.
func (a NodeGraph) Nodes() []int {
	out := make([]int, a.G.NumNodes())
	for i := range out {
		out[i] = i
	}
	return out
}

// Neighbors delegates to the underlying graph's adjacency order.
func (a NodeGraph) Neighbors(n int) []int {
	return a.G.Neighbors(n)
}
