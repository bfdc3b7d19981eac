// Package groupplan implements the community group planner: within one
// connected component of the meta-graph, it orders the constituent
// communities, solves each with pkg/walk using entry/border sets consistent
// with its neighbors, and stitches the per-community traversals into one
// group traversal.
package groupplan

import (
	"errors"
	"fmt"

	"kgtour/pkg/community"
	"kgtour/pkg/ordering"
	"kgtour/pkg/walk"
)

// ErrDisconnectedBorder signals an internal consistency violation: a child
// community in the meta-graph DFS has no recorded cross-edge to its parent,
// which should be impossible by construction of the meta-graph.
var ErrDisconnectedBorder = errors.New("groupplan: child community has no border connection to its DFS parent")

// Result is one community group's stitched traversal, in global node
// indices, ready for the top-level planner to concatenate.
type Result struct {
	GroupTraversal        []int
	GroupTraversalParents []int
}

// PlanGroup plans one connected component of the meta-graph. memberIDs is
// the component's community ids (as returned by MetaGraph.Components());
// communities is indexed by community id across the whole partition;
// centralityOrder is the global Katz-centrality ascending order over all
// community ids.
func PlanGroup(memberIDs []int, communities []*community.Community, mg *community.MetaGraph, centralityOrder []int) (*Result, error) {
	memberSet := make(map[int]bool, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
	}

	seed := -1
	for _, id := range centralityOrder {
		if memberSet[id] {
			seed = id
			break
		}
	}
	if seed == -1 {
		return &Result{}, nil
	}

	order, parentOf := ordering.DFSOrder(mg, seed)

	childrenOf := make(map[int][]int, len(order))
	positionInOrder := make(map[int]int, len(order))
	for i, c := range order {
		positionInOrder[c] = i
		if p := parentOf[c]; p != -1 {
			childrenOf[p] = append(childrenOf[p], c)
		}
	}
	for p, kids := range childrenOf {
		sortByOrder(kids, positionInOrder)
		childrenOf[p] = kids
	}

	// entrancesFor[child] holds the global entry node ids the child may
	// start from, recorded by its parent during the parent's own planning.
	entrancesFor := make(map[int][]int, len(order))

	for _, cid := range order {
		c := communities[cid]
		kids := childrenOf[cid]

		mids, last, err := borderSets(c, kids)
		if err != nil {
			return nil, err
		}

		var entriesLocal []int
		if parentOf[cid] == -1 {
			entriesLocal = walk.DefaultEntrySet(c.NumNodes(), mids, last)
		} else {
			recorded := entrancesFor[cid]
			for _, g := range recorded {
				if local, ok := c.Local(g); ok {
					entriesLocal = append(entriesLocal, local)
				}
			}
			if len(entriesLocal) == 0 {
				entriesLocal = walk.DefaultEntrySet(c.NumNodes(), mids, last)
			}
		}

		result, err := walk.Solve(c, entriesLocal, mids, last)
		if err != nil {
			return nil, fmt.Errorf("groupplan: community %d: %w", cid, err)
		}
		c.TraversalOrderLocal = result.TraversalOrder
		c.TraversalOrderParentsLocal = result.TraversalOrderParents
		c.Exits = result.Exits

		for i, child := range kids {
			exitLocal := c.TraversalOrderLocal[result.Exits[i]]
			entries, err := entryNodesInto(c, child, exitLocal)
			if err != nil {
				return nil, err
			}
			entrancesFor[child] = append(entrancesFor[child], entries...)
		}
	}

	return stitch(order, communities), nil
}

// borderSets derives the ordered mid borders and the last border for
// community c from its children in DFS order: each child before the last
// contributes a mid border of c's exit nodes toward it; the final child's
// border becomes the terminal border. A community with no children has an
// empty, unconstrained terminal border.
func borderSets(c *community.Community, children []int) (mids [][]int, last []int, err error) {
	if len(children) == 0 {
		return nil, nil, nil
	}
	borders := make([][]int, len(children))
	for i, child := range children {
		conns, ok := c.BorderConnections[child]
		if !ok || len(conns) == 0 {
			return nil, nil, fmt.Errorf("community %d -> %d: %w", c.ID, child, ErrDisconnectedBorder)
		}
		seen := make(map[int]bool, len(conns))
		var border []int
		for _, bc := range conns {
			if !seen[bc.ExitNodeLocal] {
				seen[bc.ExitNodeLocal] = true
				border = append(border, bc.ExitNodeLocal)
			}
		}
		borders[i] = border
	}
	return borders[:len(borders)-1], borders[len(borders)-1], nil
}

// entryNodesInto collects the global entry nodes that child may be entered
// from, given that c exited toward it via local node exitLocal.
func entryNodesInto(c *community.Community, child, exitLocal int) ([]int, error) {
	conns, ok := c.BorderConnections[child]
	if !ok {
		return nil, fmt.Errorf("community %d -> %d: %w", c.ID, child, ErrDisconnectedBorder)
	}
	var entries []int
	for _, bc := range conns {
		if bc.ExitNodeLocal == exitLocal {
			entries = append(entries, bc.EntryNodeGlobal)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("community %d -> %d via node %d: %w", c.ID, child, exitLocal, ErrDisconnectedBorder)
	}
	return entries, nil
}

// stitch concatenates each community's traversal (translated to global node
// indices) in DFS order, then overwrites the first parent of every
// non-first community's contribution with the actual predecessor node.
func stitch(order []int, communities []*community.Community) *Result {
	var groupTraversal, groupTraversalParents []int

	for i, cid := range order {
		c := communities[cid]
		start := len(groupTraversal)
		for _, local := range c.TraversalOrderLocal {
			groupTraversal = append(groupTraversal, c.Global(local))
		}
		for _, localParent := range c.TraversalOrderParentsLocal {
			if localParent == -1 {
				groupTraversalParents = append(groupTraversalParents, -1)
			} else {
				groupTraversalParents = append(groupTraversalParents, c.Global(localParent))
			}
		}
		if i > 0 {
			groupTraversalParents[start] = groupTraversal[start-1]
		}
	}

	return &Result{
		GroupTraversal:        groupTraversal,
		GroupTraversalParents: groupTraversalParents,
	}
}

func sortByOrder(ids []int, positionInOrder map[int]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && positionInOrder[ids[j-1]] > positionInOrder[ids[j]]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
