package graphmodel

import "testing"

func TestResolver_MergesContainmentMatch(t *testing.T) {
	r := NewResolver(0.5)
	first := r.Canonicalize("tool", "Jira")
	second := r.Canonicalize("tool", "JIRA Cloud")
	if first != second {
		t.Fatalf("expected near-duplicate names to canonicalize together, got %q and %q", first, second)
	}
}

func TestResolver_KeepsDistinctTypesSeparate(t *testing.T) {
	r := NewResolver(0.9)
	a := r.Canonicalize("person", "Alex")
	b := r.Canonicalize("tool", "Alex")
	if a != "Alex" || b != "Alex" {
		t.Fatalf("expected both names preserved, got %q, %q", a, b)
	}
}

func TestResolveTriplets_CollapsesNearDuplicateSubjects(t *testing.T) {
	triplets := []Triplet{
		{Subject: Entity{Type: "tool", Name: "Jira"}, Object: Entity{Type: "tool", Name: "GitHub"}, Relationship: Relationship{Description: "integrates", Strength: 1}},
		{Subject: Entity{Type: "tool", Name: "JIRA Cloud"}, Object: Entity{Type: "tool", Name: "Slack"}, Relationship: Relationship{Description: "integrates", Strength: 1}},
	}
	resolved := ResolveTriplets(triplets, 0.5)

	g, _ := BuildGraph(resolved)
	if _, ok := g.IndexOf(NodeKey{Type: "tool", Name: "Jira"}); !ok {
		t.Fatalf("expected canonical Jira node")
	}
	if g.NumNodes() != 3 {
		t.Fatalf("expected 3 nodes (Jira, GitHub, Slack), got %d", g.NumNodes())
	}
}
