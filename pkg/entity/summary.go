package entity

import "github.com/nodescape/nodescape/pkg/observability"

// Direction selects which side of a group boundary a summarization pass
// aggregates.
type Direction int

const (
	// Outgoing aggregates edges leaving the group's members.
	Outgoing Direction = iota
	// Incoming aggregates edges entering the group's members.
	Incoming
)

// String returns the direction name used in hooks and API responses.
func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// AggregatedEdges returns the current group edges crossing the group
// boundary in the given direction, one per (counterpart, edge type) pair.
//
// Outgoing: the effective counterpart of an edge is the target's group when
// the target is grouped, otherwise the target itself. Edges looping back
// into the same group and edges whose counterpart group is invisible are
// skipped.
//
// Incoming: the counterpart is always the raw source node, restricted to
// ungrouped sources. Edges whose source already belongs to a group are
// reported once by that group's own outgoing pass, not twice; use
// [Graph.AggregatedGroupEdges] to query those explicitly.
//
// Only visible members, visible edges and visible counterparts contribute.
// Recomputation reuses previously returned *GroupEdge instances whenever
// the derived identity (source, target, type) is unchanged, so callers can
// hold on to instances across passes.
func (g *Graph) AggregatedEdges(grp *Group, dir Direction) []*GroupEdge {
	if dir == Outgoing {
		fresh := g.collectOutgoing(grp)
		result := reconcile(&grp.cache.out, fresh)
		observability.Graph().OnAggregate(string(grp.id), dir.String(), len(result))
		return result
	}
	fresh := g.collectIncoming(grp, false)
	result := reconcile(&grp.cache.in, fresh)
	observability.Graph().OnAggregate(string(grp.id), dir.String(), len(result))
	return result
}

// AggregatedGroupEdges returns the incoming group edges whose counterpart
// source node itself belongs to a group. This is the deduplication
// complement of the plain incoming pass: together the two partitions cover
// every incoming relation exactly once.
func (g *Graph) AggregatedGroupEdges(grp *Group) []*GroupEdge {
	fresh := g.collectIncoming(grp, true)
	result := reconcile(&grp.cache.inGroup, fresh)
	observability.Graph().OnAggregate(string(grp.id), "incoming-grouped", len(result))
	return result
}

// collectOutgoing builds fresh group edges for the outgoing direction.
// Result order is first-contribution order, which is deterministic because
// members and adjacency lists keep insertion order.
func (g *Graph) collectOutgoing(grp *Group) []*GroupEdge {
	seen := make(map[EdgeKey]*GroupEdge)
	var order []*GroupEdge

	for _, m := range grp.members {
		if !m.Visible() {
			continue
		}
		for _, e := range g.outgoing[m.id] {
			if !e.Visible() {
				continue
			}
			target, ok := g.nodes[e.to]
			if !ok || !target.Visible() {
				continue
			}

			counterpart := ID("")
			if target.Grouped() {
				if target.group == grp.id {
					continue // stays inside this group
				}
				tg, ok := g.groups[target.group]
				if !ok || !tg.Visible() {
					continue
				}
				counterpart = tg.id
			} else {
				counterpart = target.id
			}

			key := EdgeKey{From: grp.id, To: counterpart, Type: e.typ}
			ge, ok := seen[key]
			if !ok {
				ge = &GroupEdge{from: grp.id, to: counterpart, typ: e.typ}
				seen[key] = ge
				order = append(order, ge)
			}
			ge.intersect(e)
		}
	}
	return order
}

// collectIncoming builds fresh group edges for the incoming direction. The
// grouped flag partitions counterparts: false keeps only ungrouped source
// nodes, true keeps only sources that belong to some other group.
func (g *Graph) collectIncoming(grp *Group, grouped bool) []*GroupEdge {
	seen := make(map[EdgeKey]*GroupEdge)
	var order []*GroupEdge

	for _, m := range grp.members {
		if !m.Visible() {
			continue
		}
		for _, e := range g.incoming[m.id] {
			if !e.Visible() {
				continue
			}
			src, ok := g.nodes[e.from]
			if !ok || !src.Visible() {
				continue
			}
			if src.group == grp.id {
				continue // stays inside this group
			}
			if src.Grouped() != grouped {
				continue
			}

			key := EdgeKey{From: src.id, To: grp.id, Type: e.typ}
			ge, ok := seen[key]
			if !ok {
				ge = &GroupEdge{from: src.id, to: grp.id, typ: e.typ}
				seen[key] = ge
				order = append(order, ge)
			}
			ge.intersect(e)
		}
	}
	return order
}

// reconcile replaces freshly built group edges with cached instances of the
// same identity key, then swaps the bucket wholesale so no stale entry
// survives. Reused instances get their class set updated in place; external
// references held by the renderer or layout engine stay valid.
func reconcile(bucket *map[EdgeKey]*GroupEdge, fresh []*GroupEdge) []*GroupEdge {
	next := make(map[EdgeKey]*GroupEdge, len(fresh))
	result := make([]*GroupEdge, len(fresh))

	for i, ge := range fresh {
		key := ge.Key()
		if cached, ok := (*bucket)[key]; ok {
			cached.classes = ge.classes
			ge = cached
		}
		next[key] = ge
		result[i] = ge
	}

	*bucket = next
	return result
}
