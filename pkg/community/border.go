package community

import "kgtour/pkg/graphmodel"

// BuildBorderIndex fills in BorderConnections on each community in
// communities: for every cross-community edge (u,v) with u in A and v in B,
// record (u, edge, v) under A's entry for B and (v, edge, u) under B's
// entry for A.
func BuildBorderIndex(g *graphmodel.Graph, partition Partition, communities []*Community) {
	for ei := 0; ei < g.NumEdges(); ei++ {
		e := g.Edge(ei)
		cu := partition.CommunityOf[e.U]
		cv := partition.CommunityOf[e.V]
		if cu == cv {
			continue
		}

		a := communities[cu]
		b := communities[cv]
		uLocal := a.ParentToChild[e.U]
		vLocal := b.ParentToChild[e.V]

		a.BorderConnections[cv] = append(a.BorderConnections[cv], BorderConnection{
			ExitNodeLocal:   uLocal,
			CrossingEdge:    ei,
			EntryNodeGlobal: e.V,
		})
		b.BorderConnections[cu] = append(b.BorderConnections[cu], BorderConnection{
			ExitNodeLocal:   vLocal,
			CrossingEdge:    ei,
			EntryNodeGlobal: e.U,
		})
	}
}
