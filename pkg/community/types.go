// Package community partitions a graphmodel.Graph into communities using a
// modularity-maximizing algorithm, builds the meta-graph of communities, and
// indexes the cross-community border connections each community exposes to
// its neighbors.
package community

import (
	"sort"

	"kgtour/pkg/graphmodel"
)

// Partition is a surjective mapping from node index to community id
// 0..K-1.
type Partition struct {
	// CommunityOf[nodeIndex] is the community id that node belongs to.
	CommunityOf []int
	// NumCommunities is K, the number of distinct community ids.
	NumCommunities int
}

// BorderConnection is one cross-community edge as seen from the community it
// exits: the local exit node, the global crossing edge, and the global
// entry node in the neighbor community.
type BorderConnection struct {
	ExitNodeLocal   int
	CrossingEdge    int
	EntryNodeGlobal int
}

// Community is the induced subgraph over one partition cell, together with
// its border index and, once planned, its traversal outputs.
type Community struct {
	ID int

	// ChildToParent[i] is the global node index for local node i.
	ChildToParent []int
	// ParentToChild maps a global node index back to its local index within
	// this community.
	ParentToChild map[int]int

	// Induced subgraph adjacency, in local indices. LocalNeighbors[i] lists
	// the local neighbors of local node i, in the order their underlying
	// global edges were first visited while building the community -- this
	// is the tie-break source for pkg/walk.
	LocalNeighbors [][]int
	// LocalEdgeOf[i][k] is the global edge index backing LocalNeighbors[i][k].
	LocalEdgeOf [][]int

	// BorderConnections maps neighbor community id to the ordered list of
	// border connections exiting toward it.
	BorderConnections map[int][]BorderConnection

	// Filled in exactly once during planning.
	TraversalOrderLocal        []int
	TraversalOrderParentsLocal []int
	Exits                      []int
}

// NumNodes returns the number of nodes in the community's induced subgraph.
func (c *Community) NumNodes() int { return len(c.ChildToParent) }

// Neighbors returns the local neighbor indices of local node i, in the
// order their backing edges were first visited while the community was
// built. This makes *Community satisfy pkg/walk.Subgraph directly.
func (c *Community) Neighbors(i int) []int { return c.LocalNeighbors[i] }

// Global converts a local node index to its global graph index.
func (c *Community) Global(local int) int { return c.ChildToParent[local] }

// Local converts a global node index to its local index within this
// community, if present.
func (c *Community) Local(global int) (int, bool) {
	local, ok := c.ParentToChild[global]
	return local, ok
}

// MetaGraph is the undirected graph whose vertices are community ids and
// whose edges carry the count of cross-community edges between them. A
// connected component of the MetaGraph is a community group.
type MetaGraph struct {
	NumCommunities int
	// neighbors[c] lists the distinct neighbor community ids of c, in the
	// order they were first discovered while scanning the underlying
	// graph's edges.
	neighbors [][]int
	weight    map[[2]int]int
}

func newMetaGraph(n int) *MetaGraph {
	return &MetaGraph{
		NumCommunities: n,
		neighbors:      make([][]int, n),
		weight:         make(map[[2]int]int),
	}
}

func weightKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (mg *MetaGraph) addCrossEdge(a, b int) {
	if a == b {
		return
	}
	key := weightKey(a, b)
	if _, seen := mg.weight[key]; !seen {
		mg.neighbors[a] = append(mg.neighbors[a], b)
		mg.neighbors[b] = append(mg.neighbors[b], a)
	}
	mg.weight[key]++
}

// Neighbors returns the distinct neighbor community ids of c, in discovery
// order.
func (mg *MetaGraph) Neighbors(c int) []int { return mg.neighbors[c] }

// Nodes returns all community ids 0..NumCommunities-1.
func (mg *MetaGraph) Nodes() []int {
	out := make([]int, mg.NumCommunities)
	for i := range out {
		out[i] = i
	}
	return out
}

// Weight returns the number of cross edges between communities a and b.
func (mg *MetaGraph) Weight(a, b int) int {
	return mg.weight[weightKey(a, b)]
}

// Components returns the connected components of the meta-graph as lists of
// community ids, each sorted ascending, in order of each component's
// smallest member id.
func (mg *MetaGraph) Components() [][]int {
	visited := make([]bool, mg.NumCommunities)
	var components [][]int
	for start := 0; start < mg.NumCommunities; start++ {
		if visited[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		visited[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, n)
			for _, nb := range mg.neighbors[n] {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		sort.Ints(comp)
		components = append(components, comp)
	}
	return components
}

// BuildCommunities materializes per-community induced subgraphs from g and
// partition.
func BuildCommunities(g *graphmodel.Graph, partition Partition) []*Community {
	communities := make([]*Community, partition.NumCommunities)
	for cid := range communities {
		communities[cid] = &Community{
			ID:                cid,
			ParentToChild:     make(map[int]int),
			BorderConnections: make(map[int][]BorderConnection),
		}
	}

	for global := 0; global < g.NumNodes(); global++ {
		cid := partition.CommunityOf[global]
		c := communities[cid]
		local := len(c.ChildToParent)
		c.ParentToChild[global] = local
		c.ChildToParent = append(c.ChildToParent, global)
		c.LocalNeighbors = append(c.LocalNeighbors, nil)
		c.LocalEdgeOf = append(c.LocalEdgeOf, nil)
	}

	for ei := 0; ei < g.NumEdges(); ei++ {
		e := g.Edge(ei)
		cu := partition.CommunityOf[e.U]
		cv := partition.CommunityOf[e.V]
		if cu != cv {
			continue
		}
		c := communities[cu]
		lu := c.ParentToChild[e.U]
		lv := c.ParentToChild[e.V]
		c.LocalNeighbors[lu] = append(c.LocalNeighbors[lu], lv)
		c.LocalEdgeOf[lu] = append(c.LocalEdgeOf[lu], ei)
		c.LocalNeighbors[lv] = append(c.LocalNeighbors[lv], lu)
		c.LocalEdgeOf[lv] = append(c.LocalEdgeOf[lv], ei)
	}

	return communities
}
