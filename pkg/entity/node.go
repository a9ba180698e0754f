package entity

// Node is a real graph vertex observed by the explorer core.
//
// Visibility combines two flags: the user-controlled flag (toggled from the
// UI) and the structural flag (cleared when a filter removes the node from
// the current view). The node renders only when both are set.
type Node struct {
	id    ID
	level string

	shown    bool // user-controlled visibility
	filtered bool // structural exclusion from the current view

	mounted bool
	pending *Point
	pos     Point
	locked  bool

	group ID // owning group, empty when ungrouped
}

// ID returns the node's identifier.
func (n *Node) ID() ID { return n.id }

// Level returns the hierarchy level tag used as a placement hint.
func (n *Node) Level() string { return n.level }

// Visible reports whether the node should currently be drawn:
// user-controlled visibility AND not structurally filtered out.
func (n *Node) Visible() bool { return n.shown && !n.filtered }

// SetVisible sets the user-controlled visibility flag.
func (n *Node) SetVisible(v bool) { n.shown = v }

// Shown returns the user-controlled flag without the filter check.
// Serialization uses it so an import restores the flag as saved.
func (n *Node) Shown() bool { return n.shown }

// SetFiltered sets the structural exclusion flag.
func (n *Node) SetFiltered(v bool) { n.filtered = v }

// Filtered reports the structural exclusion flag on its own.
func (n *Node) Filtered() bool { return n.filtered }

// Mounted reports whether the renderer has materialized the node.
func (n *Node) Mounted() bool { return n.mounted }

// PendingPosition returns the seeded position awaiting mount, if any.
func (n *Node) PendingPosition() (Point, bool) {
	if n.pending == nil {
		return Point{}, false
	}
	return *n.pending, true
}

// Seed assigns a pending position and marks the node as awaiting mount.
// The position becomes live when the renderer confirms the mount.
func (n *Node) Seed(p Point) {
	n.pending = &p
	n.mounted = false
}

// Mount promotes the pending position (if any) to the live position and
// marks the node as mounted. The renderer calls this after its draw pass.
func (n *Node) Mount() {
	if n.pending != nil {
		n.pos = *n.pending
		n.pending = nil
	}
	n.mounted = true
}

// Position returns the node's live canvas position.
func (n *Node) Position() Point { return n.pos }

// SetPosition updates the node's live canvas position.
func (n *Node) SetPosition(p Point) { n.pos = p }

// Locked reports whether the node is excluded from force-directed movement
// outside compact mode.
func (n *Node) Locked() bool { return n.locked }

// SetLocked sets the persistent lock flag.
func (n *Node) SetLocked(v bool) { n.locked = v }

// IsGroup reports false: a Node is the single-vertex variant of [Elem].
func (n *Node) IsGroup() bool { return false }

// GroupID returns the owning group's ID, or empty when ungrouped.
func (n *Node) GroupID() ID { return n.group }

// Grouped reports whether the node currently belongs to a group.
func (n *Node) Grouped() bool { return n.group != "" }
