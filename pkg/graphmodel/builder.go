package graphmodel

import "fmt"

// Builder accumulates triplets into a Graph, applying a merge policy where
// repeat nodes gain a deduplicated description, and repeat edges on the
// same unordered pair are merged by max strength and deduplicated
// description union.
type Builder struct {
	nodes     []*Node
	edges     []*Edge
	nodeIndex map[NodeKey]int
	adjacency [][]int
	warnings  []Warning
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodeIndex: make(map[NodeKey]int),
	}
}

// AddTriplet folds one triplet into the graph under construction. Self-loop
// triplets (subject and object share an identity key) are discarded and
// recorded as a Warning; AddTriplet never returns a fatal error for them,
// since the builder itself cannot fail. The returned error wraps
// ErrSelfLoop purely so callers that want to inspect the reason can, but it
// carries no obligation to stop feeding triplets.
func (b *Builder) AddTriplet(t Triplet) error {
	subjectKey := t.Subject.Key()
	objectKey := t.Object.Key()

	if subjectKey == objectKey {
		b.warnings = append(b.warnings, Warning{
			Kind:    "InvalidTriplet",
			Message: fmt.Sprintf("self-loop on %s discarded", subjectKey),
		})
		return fmt.Errorf("graphmodel: triplet %s -> %s: %w", subjectKey, objectKey, ErrSelfLoop)
	}

	u := b.upsertNode(t.Subject)
	v := b.upsertNode(t.Object)
	b.upsertEdge(u, v, t.Relationship)
	return nil
}

func (b *Builder) upsertNode(e Entity) int {
	key := e.Key()
	if idx, ok := b.nodeIndex[key]; ok {
		b.nodes[idx].Descriptions = appendUnique(b.nodes[idx].Descriptions, e.Description)
		return idx
	}
	idx := len(b.nodes)
	b.nodeIndex[key] = idx
	b.nodes = append(b.nodes, &Node{
		Index:        idx,
		Key:          key,
		Descriptions: appendUnique(nil, e.Description),
	})
	b.adjacency = append(b.adjacency, nil)
	return idx
}

func (b *Builder) upsertEdge(u, v int, rel Relationship) {
	if ei, ok := b.edgeBetween(u, v); ok {
		edge := b.edges[ei]
		edge.Descriptions = appendUnique(edge.Descriptions, rel.Description)
		if rel.Strength > edge.Strength {
			edge.Strength = rel.Strength
		}
		return
	}

	idx := len(b.edges)
	edge := &Edge{
		Index:        idx,
		U:            u,
		V:            v,
		Descriptions: appendUnique(nil, rel.Description),
		Strength:     rel.Strength,
	}
	b.edges = append(b.edges, edge)
	b.adjacency[u] = append(b.adjacency[u], idx)
	b.adjacency[v] = append(b.adjacency[v], idx)
}

func (b *Builder) edgeBetween(u, v int) (int, bool) {
	for _, ei := range b.adjacency[u] {
		if b.edges[ei].Other(u) == v {
			return ei, true
		}
	}
	return -1, false
}

func appendUnique(descriptions []string, next string) []string {
	if next == "" {
		return descriptions
	}
	for _, d := range descriptions {
		if d == next {
			return descriptions
		}
	}
	return append(descriptions, next)
}

// Build finalizes the graph under construction along with any warnings
// collected along the way. The Builder must not be reused afterward.
func (b *Builder) Build() (*Graph, []Warning) {
	g := &Graph{
		nodes:     b.nodes,
		edges:     b.edges,
		nodeIndex: b.nodeIndex,
		adjacency: b.adjacency,
	}
	return g, b.warnings
}

// BuildGraph is a convenience wrapper running a whole triplet list through a
// fresh Builder.
func BuildGraph(triplets []Triplet) (*Graph, []Warning) {
	b := NewBuilder()
	for _, t := range triplets {
		_ = b.AddTriplet(t)
	}
	return b.Build()
}
