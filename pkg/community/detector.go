package community

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	gonumgraph "gonum.org/v1/gonum/graph"
	gonumcommunity "gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"kgtour/pkg/graphmodel"
)

// DetectorConfig tunes the modularity-maximizing pass. A zero Seed draws a
// seed from the wall clock; callers that need reproducible output across
// runs must set Seed explicitly.
type DetectorConfig struct {
	Resolution float64
	// MaxIterations bounds how many independent Louvain restarts Detect
	// runs before keeping the highest-modularity result, the same
	// best-of-N selection gonum's own community package tests use to steady
	// a randomized local search.
	MaxIterations int
	Seed          int64
}

// DefaultDetectorConfig returns sane modularity-maximizer defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Resolution:    1.0,
		MaxIterations: 100,
	}
}

// Detector runs gonum's multiplex Louvain modularity maximizer over a
// graphmodel.Graph treated as a single-layer multiplex. Unlike a Leiden/
// Louvain implementation that exposes its full aggregation dendrogram, this
// module's data model has no notion of a community hierarchy, so Detect
// keeps only the top-level partition of the reduced graph the maximizer
// returns (already expressed in terms of the original graph's node ids).
type Detector struct {
	config DetectorConfig
	rng    *rand.Rand
}

// NewDetector builds a Detector with the given configuration.
func NewDetector(config DetectorConfig) *Detector {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Detector{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Detect partitions g into communities and returns the resulting meta-graph.
func (d *Detector) Detect(ctx context.Context, g *graphmodel.Graph) (Partition, *MetaGraph, error) {
	if err := ctx.Err(); err != nil {
		return Partition{}, nil, err
	}

	n := g.NumNodes()
	if n == 0 {
		return Partition{CommunityOf: nil, NumCommunities: 0}, newMetaGraph(0), nil
	}

	sg := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		sg.AddNode(simple.Node(i))
	}
	for ei := 0; ei < g.NumEdges(); ei++ {
		e := g.Edge(ei)
		sg.SetEdge(simple.Edge{F: simple.Node(e.U), T: simple.Node(e.V)})
	}

	if err := ctx.Err(); err != nil {
		return Partition{}, nil, err
	}

	resolution := d.config.Resolution
	if resolution == 0 {
		resolution = 1.0
	}
	restarts := d.config.MaxIterations
	if restarts <= 0 {
		restarts = 1
	}

	// ModularizeMultiplex's local search is randomized, so gonum's own
	// tests keep the best of several restarts by modularity score rather
	// than trusting a single run; Detect does the same, spending
	// MaxIterations restarts off the Detector's own seeded source instead
	// of a fixed local-moving iteration budget.
	var best *gonumcommunity.ReducedUndirectedMultiplex
	bestScore := math.Inf(-1)
	for i := 0; i < restarts; i++ {
		// Edges are treated as unweighted (weights nil): relationship
		// strength plays no role in community detection, only in edge
		// merging, so the single layer's weight stays at the library's
		// implicit default of 1.
		reducer := gonumcommunity.ModularizeMultiplex(
			gonumcommunity.UndirectedLayers{sg}, nil, []float64{resolution}, true, d.rng,
		)
		reduced, ok := reducer.(*gonumcommunity.ReducedUndirectedMultiplex)
		if !ok {
			return Partition{}, nil, fmt.Errorf("community: unexpected reducer type %T from ModularizeMultiplex", reducer)
		}
		if score := sumScores(gonumcommunity.QMultiplex(reduced, nil, nil, nil)); best == nil || score > bestScore {
			best = reduced
			bestScore = score
		}
		if err := ctx.Err(); err != nil {
			return Partition{}, nil, err
		}
	}

	partition := toPartition(n, best.Communities())
	meta := buildMetaGraph(g, partition)
	return partition, meta, nil
}

func sumScores(qs []float64) float64 {
	var sum float64
	for _, q := range qs {
		sum += q
	}
	return sum
}

// toPartition flattens gonum's community membership -- each inner slice the
// original graph's nodes belonging to one community -- into this package's
// dense Partition. Community ids are assigned in order of each community's
// smallest member node id, so the result is stable regardless of the slice
// order ModularizeMultiplex happens to return.
func toPartition(n int, communities [][]gonumgraph.Node) Partition {
	sort.Slice(communities, func(i, j int) bool {
		return minNodeID(communities[i]) < minNodeID(communities[j])
	})
	communityOf := make([]int, n)
	for cid, members := range communities {
		for _, node := range members {
			communityOf[node.ID()] = cid
		}
	}
	return Partition{CommunityOf: communityOf, NumCommunities: len(communities)}
}

func minNodeID(nodes []gonumgraph.Node) int64 {
	min := nodes[0].ID()
	for _, node := range nodes[1:] {
		if id := node.ID(); id < min {
			min = id
		}
	}
	return min
}

// BuildMetaGraph constructs the meta-graph for an already-known partition,
// without running detection. Useful when a caller has its own partition
// (e.g. from persistence, or from tests) and only needs the cross-community
// adjacency graph.
func BuildMetaGraph(g *graphmodel.Graph, partition Partition) *MetaGraph {
	return buildMetaGraph(g, partition)
}

func buildMetaGraph(g *graphmodel.Graph, partition Partition) *MetaGraph {
	meta := newMetaGraph(partition.NumCommunities)
	for ei := 0; ei < g.NumEdges(); ei++ {
		e := g.Edge(ei)
		cu := partition.CommunityOf[e.U]
		cv := partition.CommunityOf[e.V]
		if cu != cv {
			meta.addCrossEdge(cu, cv)
		}
	}
	return meta
}
