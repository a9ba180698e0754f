package entity

import "slices"

// Group is a summary vertex standing in for a set of member nodes. Groups
// form a tree via the optional parent reference and carry the aggregation
// cache that keeps group-edge identity stable across recomputations.
type Group struct {
	id     ID
	level  string
	parent ID

	shown   bool // stored visibility flag; effective visibility is derived
	mounted bool
	pending *Point
	pos     Point
	locked  bool

	members []*Node

	cache aggCache
}

// aggCache holds the three directional buckets of reported group edges.
// Splitting incoming counterparts by groupedness prevents the same
// underlying relation from surfacing twice when both a group-to-node and a
// group-to-group direction would report it.
type aggCache struct {
	out     map[EdgeKey]*GroupEdge
	in      map[EdgeKey]*GroupEdge
	inGroup map[EdgeKey]*GroupEdge
}

// ID returns the group's arena-allocated identifier.
func (g *Group) ID() ID { return g.id }

// Level returns the hierarchy level tag used as a placement hint.
func (g *Group) Level() string { return g.level }

// Parent returns the parent element's ID, or empty at the tree root.
func (g *Group) Parent() ID { return g.parent }

// SetParent sets the parent element reference.
func (g *Group) SetParent(id ID) { g.parent = id }

// Visible reports the derived visibility: the stored flag AND at least one
// visible member. A group with no visible members never renders.
func (g *Group) Visible() bool {
	if !g.shown {
		return false
	}
	for _, m := range g.members {
		if m.Visible() {
			return true
		}
	}
	return false
}

// SetVisible sets the stored visibility flag. The effective visibility
// reported by Visible still requires a visible member.
func (g *Group) SetVisible(v bool) { g.shown = v }

// Shown returns the stored visibility flag without the derived member
// check. Serialization uses it so an import restores the flag as saved.
func (g *Group) Shown() bool { return g.shown }

// Mounted reports whether the renderer has materialized the group.
func (g *Group) Mounted() bool { return g.mounted }

// PendingPosition returns the seeded position awaiting mount, if any.
func (g *Group) PendingPosition() (Point, bool) {
	if g.pending == nil {
		return Point{}, false
	}
	return *g.pending, true
}

// Seed assigns a pending position and marks the group as awaiting mount.
func (g *Group) Seed(p Point) {
	g.pending = &p
	g.mounted = false
}

// Mount promotes the pending position (if any) to the live position and
// marks the group as mounted.
func (g *Group) Mount() {
	if g.pending != nil {
		g.pos = *g.pending
		g.pending = nil
	}
	g.mounted = true
}

// Position returns the group's live canvas position.
func (g *Group) Position() Point { return g.pos }

// SetPosition updates the group's live canvas position.
func (g *Group) SetPosition(p Point) { g.pos = p }

// Locked reports whether the group is excluded from force-directed
// movement outside compact mode.
func (g *Group) Locked() bool { return g.locked }

// SetLocked sets the persistent lock flag.
func (g *Group) SetLocked(v bool) { g.locked = v }

// IsGroup reports true: a Group is the summary variant of [Elem].
func (g *Group) IsGroup() bool { return true }

// Members returns the member nodes. The returned slice is a copy; the
// member pointers refer to the live nodes.
func (g *Group) Members() []*Node { return slices.Clone(g.members) }

// MemberCount returns the number of member nodes.
func (g *Group) MemberCount() int { return len(g.members) }

// Contains reports whether the node with the given ID is a member.
func (g *Group) Contains(id ID) bool {
	return slices.ContainsFunc(g.members, func(n *Node) bool { return n.id == id })
}

// attach links a node into the member list. Callers maintain the
// bidirectional invariant via the arena.
func (g *Group) attach(n *Node) {
	g.members = append(g.members, n)
	n.group = g.id
}

// detach unlinks a node from the member list.
func (g *Group) detach(n *Node) {
	g.members = slices.DeleteFunc(g.members, func(m *Node) bool { return m == n })
	if n.group == g.id {
		n.group = ""
	}
}
