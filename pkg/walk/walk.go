// Package walk implements the constrained community traversal engine: a
// modified depth-first search that must enter on an allowed node, touch an
// ordered sequence of mid-border checkpoints, and finish on a terminal
// border, while covering every vertex of the community at least once.
package walk

import "errors"

// ErrNoFeasibleWalk is returned when no v0 in the entry set admits a
// complete walk satisfying coverage, checkpoint order, and the terminal
// constraint.
var ErrNoFeasibleWalk = errors.New("walk: no feasible walk")

// Subgraph is the minimal surface Solve needs: a node count and, for each
// local node, its neighbors in a fixed, stable order. pkg/community's
// Community satisfies this directly over its induced subgraph.
type Subgraph interface {
	NumNodes() int
	Neighbors(local int) []int
}

// Result is the raw walk together with its derived traversal order, parent
// list, and exit positions.
type Result struct {
	Path                  []int
	TraversalOrder        []int
	TraversalOrderParents []int
	Exits                 []int
}

// Solve finds a walk through g starting at some node in entries, touching
// each set in mids in order, and ending on a node in last (the terminal
// border constraint is waived when last is empty). entries must be
// non-empty; defaulting it is the caller's responsibility (see
// DefaultEntrySet).
func Solve(g Subgraph, entries []int, mids [][]int, last []int) (*Result, error) {
	lastSet := toSet(last)
	midSets := make([]map[int]bool, len(mids))
	for i, m := range mids {
		midSets[i] = toSet(m)
	}

	for _, v0 := range entries {
		if path, midNodes, ok := attempt(g, v0, midSets, lastSet); ok {
			return buildResult(path, midNodes), nil
		}
	}
	return nil, ErrNoFeasibleWalk
}

// attempt runs the full modified DFS from a single start node. Every forward
// move (priority classes a-c) goes to a never-before-visited node, and
// "visited"/"matched mid borders" are monotonic within one attempt: once
// locked, a checkpoint match is never undone, even if the walk later
// backtracks past the node that matched it. Backtracking (class d) is
// therefore not search-undo but a literal retreat along the walked edges,
// recorded in the returned path like any other move. This lets the search
// be driven by an explicit stack of "open" ancestors rather than recursion:
// each stack entry is popped exactly once, so the whole attempt is bounded
// by O(nodes * max-degree).
func attempt(g Subgraph, v0 int, midSets []map[int]bool, lastSet map[int]bool) ([]int, []int, bool) {
	n := g.NumNodes()
	visited := make([]bool, n)
	visited[v0] = true
	visitedCount := 1
	matchedMids := 0
	var matchedMidNodes []int

	path := []int{v0}
	ancestors := []int{v0}

	for {
		cur := ancestors[len(ancestors)-1]

		if (len(lastSet) == 0 || lastSet[cur]) && visitedCount == n && matchedMids == len(midSets) {
			return path, matchedMidNodes, true
		}

		next, matched := pickCandidate(g, cur, visited, matchedMids, midSets, lastSet)
		if matched {
			visited[next] = true
			visitedCount++
			if matchedMids < len(midSets) && midSets[matchedMids][next] {
				matchedMids++
				matchedMidNodes = append(matchedMidNodes, next)
			}
			path = append(path, next)
			ancestors = append(ancestors, next)
			continue
		}

		ancestors = ancestors[:len(ancestors)-1]
		if len(ancestors) == 0 {
			return nil, nil, false
		}
		path = append(path, ancestors[len(ancestors)-1])
	}
}

// pickCandidate returns the highest-priority unvisited neighbor of cur, in
// this order: (a) neighbors in the currently required mid border, excluding
// last-border members; (b) unvisited interior neighbors;
// (c) unvisited last-border neighbors. Ties within a bucket are broken by
// Neighbors' iteration order, so the result is deterministic whenever the
// caller's Subgraph enumerates neighbors deterministically.
func pickCandidate(g Subgraph, cur int, visited []bool, matchedMids int, midSets []map[int]bool, lastSet map[int]bool) (int, bool) {
	var required map[int]bool
	if matchedMids < len(midSets) {
		required = midSets[matchedMids]
	}

	var a, b, c []int
	for _, nb := range g.Neighbors(cur) {
		if visited[nb] {
			continue
		}
		inLast := lastSet[nb]
		switch {
		case required != nil && required[nb] && !inLast:
			a = append(a, nb)
		case !inLast:
			b = append(b, nb)
		default:
			c = append(c, nb)
		}
	}

	for _, bucket := range [][]int{a, b, c} {
		if len(bucket) > 0 {
			return bucket[0], true
		}
	}
	return 0, false
}

// buildResult derives the traversal order, traversal parents, and exits from
// a raw walk: first-visit subsequence over every position but the last,
// then the raw walk's final node is unconditionally appended even if it
// duplicates an earlier visit.
func buildResult(path []int, matchedMidNodes []int) *Result {
	traversalOrder := make([]int, 0, len(path))
	parents := make([]int, 0, len(path))
	seen := make(map[int]bool, len(path))

	for i := 0; i < len(path)-1; i++ {
		node := path[i]
		if seen[node] {
			continue
		}
		seen[node] = true
		parent := -1
		if i > 0 {
			parent = path[i-1]
		}
		traversalOrder = append(traversalOrder, node)
		parents = append(parents, parent)
	}

	finalNode := path[len(path)-1]
	finalParent := -1
	if len(path) > 1 {
		finalParent = path[len(path)-2]
	}
	traversalOrder = append(traversalOrder, finalNode)
	parents = append(parents, finalParent)

	positionOf := make(map[int]int, len(traversalOrder))
	for i, node := range traversalOrder {
		if _, ok := positionOf[node]; !ok {
			positionOf[node] = i
		}
	}

	exits := make([]int, 0, len(matchedMidNodes)+1)
	for _, node := range matchedMidNodes {
		exits = append(exits, positionOf[node])
	}
	exits = append(exits, len(traversalOrder)-1)

	return &Result{
		Path:                  path,
		TraversalOrder:        traversalOrder,
		TraversalOrderParents: parents,
		Exits:                 exits,
	}
}

func toSet(nodes []int) map[int]bool {
	set := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}

// DefaultEntrySet computes the entry set used when a community is the root
// of its group's DFS: every vertex minus the union of all mid borders and
// the last border. If that difference is empty, it falls back to the last
// border.
func DefaultEntrySet(n int, mids [][]int, last []int) []int {
	excluded := make(map[int]bool)
	for _, m := range mids {
		for _, v := range m {
			excluded[v] = true
		}
	}
	for _, v := range last {
		excluded[v] = true
	}

	var entries []int
	for v := 0; v < n; v++ {
		if !excluded[v] {
			entries = append(entries, v)
		}
	}
	if len(entries) == 0 {
		return append([]int(nil), last...)
	}
	return entries
}
