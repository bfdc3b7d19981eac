package graphmodel

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FuzzyNameThreshold is the default similarity score at or above which two
// entity names of the same type are treated as the same node by Resolver.
const FuzzyNameThreshold = 0.85

// Resolver merges near-duplicate entity mentions before they reach the
// Builder, so that e.g. "Jira" and "JIRA Cloud" (score 0.82) collapse into
// one node instead of two when the threshold is 0.82 or lower; at the
// default FuzzyNameThreshold of 0.85 that pair stays separate. NodeKey dedup alone only catches exact (type, name) matches; Resolver
// catches the near-misses extraction tends to produce.
type Resolver struct {
	threshold float32
	// canonical[Type] holds the names already accepted as canonical for
	// that type, in first-seen order, so matching stays deterministic.
	canonical map[string][]string
}

// NewResolver builds a Resolver using FuzzyNameThreshold, or threshold if
// it is > 0.
func NewResolver(threshold float32) *Resolver {
	if threshold <= 0 {
		threshold = FuzzyNameThreshold
	}
	return &Resolver{threshold: threshold, canonical: make(map[string][]string)}
}

// Canonicalize returns the canonical name for (entityType, name): either an
// already-accepted name it's a near-duplicate of, or name itself, freshly
// registered as canonical.
func (r *Resolver) Canonicalize(entityType, name string) string {
	names := r.canonical[entityType]
	for _, existing := range names {
		if fuzzyNameScore(existing, name) >= r.threshold {
			return existing
		}
	}
	r.canonical[entityType] = append(names, name)
	return name
}

// ResolveTriplets rewrites every entity name in triplets through
// Canonicalize, merging near-duplicates before they ever reach a Builder.
func ResolveTriplets(triplets []Triplet, threshold float32) []Triplet {
	r := NewResolver(threshold)
	out := make([]Triplet, len(triplets))
	for i, t := range triplets {
		t.Subject.Name = r.Canonicalize(t.Subject.Type, t.Subject.Name)
		t.Object.Name = r.Canonicalize(t.Object.Type, t.Object.Name)
		out[i] = t
	}
	return out
}

// fuzzyNameScore scores name similarity in [0,1]. Names where one contains
// the other (e.g. "Jira" inside "JIRA Cloud") score by length ratio, since
// the appended qualifier shouldn't dominate an edit-distance comparison;
// anything else is scored as one minus the normalized Levenshtein distance,
// which catches typos and near-misses a pure containment check would miss.
func fuzzyNameScore(a, b string) float32 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := len([]rune(a)), len([]rune(b))
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		// A full substring match is already strong evidence of identity;
		// the length ratio only tiebreaks among containment matches.
		return 0.7 + 0.3*float32(shorter)/float32(longer)
	}

	longer := len([]rune(a))
	if bl := len([]rune(b)); bl > longer {
		longer = bl
	}

	distance := levenshtein.ComputeDistance(a, b)
	score := 1.0 - float32(distance)/float32(longer)
	if score < 0 {
		score = 0
	}
	return score
}
