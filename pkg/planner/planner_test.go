package planner

import (
	"context"
	"testing"

	"kgtour/pkg/community"
	"kgtour/pkg/graphmodel"
)

func triplet(subject, relation, object string, strength int) graphmodel.Triplet {
	return graphmodel.Triplet{
		Subject:      graphmodel.Entity{Type: "t", Name: subject},
		Relationship: graphmodel.Relationship{Description: relation, Strength: strength},
		Object:       graphmodel.Entity{Type: "t", Name: object},
	}
}

func deterministicConfig() Config {
	return Config{Detector: community.DetectorConfig{
		Resolution:    1.0,
		MaxIterations: 100,
		Seed:          1,
	}}
}

// assertCoverageAndParentValidity checks that every node appears exactly
// once, and every non-sentinel parent both precedes its child in the
// sequence and is a real graph neighbor of it.
func assertCoverageAndParentValidity(t *testing.T, g *graphmodel.Graph, plan *Plan) {
	t.Helper()
	if len(plan.GlobalTraversal) != g.NumNodes() {
		t.Fatalf("GlobalTraversal length = %d, want %d", len(plan.GlobalTraversal), g.NumNodes())
	}
	if len(plan.GlobalTraversal) != len(plan.GlobalTraversalParents) {
		t.Fatalf("traversal/parents length mismatch: %d vs %d", len(plan.GlobalTraversal), len(plan.GlobalTraversalParents))
	}

	seen := make(map[int]bool, g.NumNodes())
	positionOf := make(map[int]int, g.NumNodes())
	for i, n := range plan.GlobalTraversal {
		if seen[n] {
			t.Fatalf("node %d appears more than once in GlobalTraversal", n)
		}
		seen[n] = true
		positionOf[n] = i
	}
	for n := 0; n < g.NumNodes(); n++ {
		if !seen[n] {
			t.Fatalf("node %d missing from GlobalTraversal", n)
		}
	}

	for i, p := range plan.GlobalTraversalParents {
		if p == -1 {
			continue
		}
		if pos, ok := positionOf[p]; !ok || pos >= i {
			t.Fatalf("parent %d of index %d does not precede it", p, i)
		}
		child := plan.GlobalTraversal[i]
		neighbor := false
		for _, nb := range g.Neighbors(p) {
			if nb == child {
				neighbor = true
				break
			}
		}
		if !neighbor {
			t.Fatalf("parent %d is not a graph neighbor of child %d", p, child)
		}
	}
}

func TestPlan_SingleTriangleCoversAllNodes(t *testing.T) {
	triplets := []graphmodel.Triplet{
		triplet("A", "r1", "B", 5),
		triplet("B", "r2", "C", 5),
		triplet("C", "r3", "A", 5),
	}
	svc := NewService(deterministicConfig())
	g, _ := graphmodel.BuildGraph(triplets)

	plan, warnings, err := svc.Plan(context.Background(), triplets)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if g.NumNodes() != 3 || g.NumEdges() != 3 {
		t.Fatalf("expected 3 nodes and 3 edges, got %d nodes %d edges", g.NumNodes(), g.NumEdges())
	}
	assertCoverageAndParentValidity(t, g, plan)
	if plan.GlobalTraversalParents[0] != -1 {
		t.Fatalf("expected first parent to be the sentinel -1")
	}
	if len(plan.EntityCentrality) != g.NumNodes() {
		t.Fatalf("expected a centrality score per entity, got %d for %d nodes", len(plan.EntityCentrality), g.NumNodes())
	}
	for _, n := range g.Nodes() {
		if _, ok := plan.EntityCentrality[n.Key.String()]; !ok {
			t.Fatalf("missing centrality score for entity %s", n.Key.String())
		}
	}
}

func TestPlan_DuplicateEdgeMergesByMaxStrength(t *testing.T) {
	triplets := []graphmodel.Triplet{
		triplet("X", "r", "Y", 3),
		triplet("X", "r'", "Y", 7),
	}
	g, _ := graphmodel.BuildGraph(triplets)
	if g.NumEdges() != 1 {
		t.Fatalf("expected 1 merged edge, got %d", g.NumEdges())
	}
	e := g.Edge(0)
	if e.Strength != 7 {
		t.Fatalf("merged edge strength = %d, want 7 (max of contributors)", e.Strength)
	}
	if len(e.Descriptions) != 2 || e.Descriptions[0] != "r" || e.Descriptions[1] != "r'" {
		t.Fatalf("merged edge descriptions = %v, want [r r']", e.Descriptions)
	}
}

func TestPlan_TwoDisjointPairsProduceTwoGroupStarts(t *testing.T) {
	triplets := []graphmodel.Triplet{
		triplet("A", "r", "B", 1),
		triplet("C", "r", "D", 1),
	}
	svc := NewService(deterministicConfig())
	g, _ := graphmodel.BuildGraph(triplets)

	plan, _, err := svc.Plan(context.Background(), triplets)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	assertCoverageAndParentValidity(t, g, plan)

	sentinels := 0
	for _, p := range plan.GlobalTraversalParents {
		if p == -1 {
			sentinels++
		}
	}
	if sentinels != 2 {
		t.Fatalf("expected 2 parent sentinels (one per disjoint group), got %d", sentinels)
	}
}

func TestPlan_EmptyInputIsNotAnError(t *testing.T) {
	svc := NewService(deterministicConfig())
	plan, warnings, err := svc.Plan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.GlobalTraversal) != 0 || len(plan.GlobalTraversalParents) != 0 {
		t.Fatalf("expected empty plan for empty input, got %+v", plan)
	}
	if warnings != nil {
		t.Fatalf("expected no warnings for empty input, got %v", warnings)
	}
}

func TestPlan_SelfLoopIsRecoverableWarningNotError(t *testing.T) {
	triplets := []graphmodel.Triplet{
		triplet("A", "r", "A", 1),
		triplet("A", "r2", "B", 1),
	}
	svc := NewService(deterministicConfig())
	plan, warnings, err := svc.Plan(context.Background(), triplets)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 self-loop warning, got %v", warnings)
	}
	if len(plan.GlobalTraversal) != 2 {
		t.Fatalf("expected the two real nodes covered, got %v", plan.GlobalTraversal)
	}
}

func TestPlan_DeterministicAcrossRunsWithFixedSeed(t *testing.T) {
	triplets := []graphmodel.Triplet{
		triplet("A", "r", "B", 1),
		triplet("B", "r", "C", 1),
		triplet("C", "r", "D", 1),
		triplet("D", "r", "A", 1),
		triplet("A", "r", "C", 1),
	}
	run := func() *Plan {
		svc := NewService(deterministicConfig())
		plan, _, err := svc.Plan(context.Background(), triplets)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		return plan
	}

	first := run()
	second := run()
	if len(first.GlobalTraversal) != len(second.GlobalTraversal) {
		t.Fatalf("non-deterministic traversal length across runs")
	}
	for i := range first.GlobalTraversal {
		if first.GlobalTraversal[i] != second.GlobalTraversal[i] {
			t.Fatalf("non-deterministic traversal at index %d: %d vs %d", i, first.GlobalTraversal[i], second.GlobalTraversal[i])
		}
		if first.GlobalTraversalParents[i] != second.GlobalTraversalParents[i] {
			t.Fatalf("non-deterministic parent at index %d", i)
		}
	}
}
