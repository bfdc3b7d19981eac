package groupplan

import (
	"testing"

	"kgtour/pkg/community"
	"kgtour/pkg/graphmodel"
	"kgtour/pkg/ordering"
)

func TestPlanGroup_TwoCommunitiesOneBorder(t *testing.T) {
	g, _ := graphmodel.BuildGraph([]graphmodel.Triplet{
		{Subject: graphmodel.Entity{Type: "t", Name: "A"}, Relationship: graphmodel.Relationship{Description: "r", Strength: 1}, Object: graphmodel.Entity{Type: "t", Name: "B"}},
		{Subject: graphmodel.Entity{Type: "t", Name: "C"}, Relationship: graphmodel.Relationship{Description: "r", Strength: 1}, Object: graphmodel.Entity{Type: "t", Name: "D"}},
		{Subject: graphmodel.Entity{Type: "t", Name: "B"}, Relationship: graphmodel.Relationship{Description: "r", Strength: 1}, Object: graphmodel.Entity{Type: "t", Name: "C"}},
	})

	idx := func(name string) int {
		i, ok := g.IndexOf(graphmodel.NodeKey{Type: "t", Name: name})
		if !ok {
			t.Fatalf("node %s not found", name)
		}
		return i
	}

	communityOf := make([]int, g.NumNodes())
	communityOf[idx("A")] = 0
	communityOf[idx("B")] = 0
	communityOf[idx("C")] = 1
	communityOf[idx("D")] = 1
	partition := community.Partition{CommunityOf: communityOf, NumCommunities: 2}

	communities := community.BuildCommunities(g, partition)
	community.BuildBorderIndex(g, partition, communities)
	mg := community.BuildMetaGraph(g, partition)

	centralityOrder := ordering.CentralityOrder(mg, 0.1, 1.0)

	result, err := PlanGroup([]int{0, 1}, communities, mg, centralityOrder)
	if err != nil {
		t.Fatalf("PlanGroup: %v", err)
	}
	if len(result.GroupTraversal) != 4 {
		t.Fatalf("expected 4 nodes across both communities, got %v", result.GroupTraversal)
	}

	seen := make(map[int]bool)
	for _, n := range result.GroupTraversal {
		seen[n] = true
	}
	for _, name := range []string{"A", "B", "C", "D"} {
		if !seen[idx(name)] {
			t.Fatalf("node %s missing from group traversal %v", name, result.GroupTraversal)
		}
	}

	for i := 1; i < len(result.GroupTraversalParents); i++ {
		p := result.GroupTraversalParents[i]
		if p == -1 {
			continue
		}
		child := result.GroupTraversal[i]
		neighbor := false
		for _, nb := range g.Neighbors(p) {
			if nb == child {
				neighbor = true
				break
			}
		}
		if !neighbor {
			t.Fatalf("parent %d is not a graph neighbor of %d", p, child)
		}
	}
}
