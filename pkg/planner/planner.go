// Package planner orchestrates the full pipeline: building the graph,
// detecting communities, ordering community groups, and stitching every
// group's traversal into the final Plan.
package planner

import (
	"context"
	"fmt"
	"sort"

	"kgtour/pkg/community"
	"kgtour/pkg/graphmodel"
	"kgtour/pkg/groupplan"
	"kgtour/pkg/ordering"
)

// Plan is the top-level planner's output: the global traversal order, each
// entry's parent, and a whole-graph Katz centrality score per entity,
// keyed by its (type, name) identity rather than its internal node index.
type Plan struct {
	GlobalTraversal        []int
	GlobalTraversalParents []int
	EntityCentrality       map[string]float64 `json:"entityCentrality,omitempty"`
}

// Config bundles the tunables the planner hands down to community
// detection.
type Config struct {
	Detector community.DetectorConfig
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{Detector: community.DefaultDetectorConfig()}
}

// katzAlpha/katzBeta are the Katz centrality parameters used for
// community-group start selection.
const (
	katzAlpha = 0.1
	katzBeta  = 1.0
)

// Service is the planner facade, in the shape the rest of this codebase's
// services take: a small struct wrapping the pipeline stages behind one
// orchestration method.
type Service struct {
	cfg Config
}

// NewService builds a Service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Plan runs the full pipeline over triplets and returns the traversal plan
// together with any recoverable build warnings. An empty triplet list is
// not an error: it yields a Plan with empty sequences.
func (s *Service) Plan(ctx context.Context, triplets []graphmodel.Triplet) (*Plan, []graphmodel.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	g, warnings := graphmodel.BuildGraph(triplets)
	if g.NumNodes() == 0 {
		return &Plan{}, warnings, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	detector := community.NewDetector(s.cfg.Detector)
	partition, meta, err := detector.Detect(ctx, g)
	if err != nil {
		return nil, warnings, fmt.Errorf("planner: detect communities: %w", err)
	}

	communities := community.BuildCommunities(g, partition)
	community.BuildBorderIndex(g, partition, communities)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	centralityOrder := ordering.CentralityOrder(meta, katzAlpha, katzBeta)
	components := meta.Components()

	groups := make([]*groupplan.Result, len(components))
	for i, comp := range components {
		result, err := groupplan.PlanGroup(comp, communities, meta, centralityOrder)
		if err != nil {
			return nil, warnings, fmt.Errorf("planner: plan group %d: %w", i, err)
		}
		groups[i] = result
	}

	order := orderGroups(components, groups)

	plan := stitchGroups(groups, order)
	plan.EntityCentrality = entityCentrality(g)
	return plan, warnings, nil
}

// entityCentrality computes whole-graph Katz centrality over g directly
// (as opposed to centralityOrder above, which ranks communities within the
// meta-graph), keyed by entity identity so it survives round-tripping
// through JSON independent of a run's internal node numbering.
func entityCentrality(g *graphmodel.Graph) map[string]float64 {
	scores := ordering.KatzCentrality(ordering.NodeGraph{G: g}, katzAlpha, katzBeta)
	out := make(map[string]float64, len(scores))
	for idx, score := range scores {
		out[g.Node(idx).Key.String()] = score
	}
	return out
}

// orderGroups sorts group indices by community count descending, then
// applies the from-ends permutation.
func orderGroups(components [][]int, groups []*groupplan.Result) []int {
	indices := make([]int, len(components))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return len(components[indices[i]]) > len(components[indices[j]])
	})

	permutation := ordering.FromEnds(len(indices))
	ordered := make([]int, len(indices))
	for pos, permIdx := range permutation {
		ordered[pos] = indices[permIdx]
	}
	return ordered
}

// stitchGroups concatenates each group's traversal in the given order: the
// first parent of every group's contribution stays the sentinel -1.
func stitchGroups(groups []*groupplan.Result, order []int) *Plan {
	plan := &Plan{}
	for _, idx := range order {
		g := groups[idx]
		plan.GlobalTraversal = append(plan.GlobalTraversal, g.GroupTraversal...)
		plan.GlobalTraversalParents = append(plan.GlobalTraversalParents, g.GroupTraversalParents...)
	}
	return plan
}
