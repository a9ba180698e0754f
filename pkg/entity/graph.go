package entity

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"

	"github.com/nodescape/nodescape/pkg/errors"
	"github.com/nodescape/nodescape/pkg/observability"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = stderrors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists in the arena.
	ErrDuplicateNodeID = stderrors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = stderrors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = stderrors.New("unknown target node")
)

// Graph is the arena owning every entity of one explorer session. All
// cross-references between entities are resolved through it.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes  map[ID]*Node
	groups map[ID]*Group
	edges  []*Edge

	outgoing map[ID][]*Edge // source node ID -> edges leaving it
	incoming map[ID][]*Edge // target node ID -> edges entering it

	nextGroup int // arena-scoped monotonic group ID allocator
}

// New creates an empty arena.
func New() *Graph {
	return &Graph{
		nodes:    make(map[ID]*Node),
		groups:   make(map[ID]*Group),
		outgoing: make(map[ID][]*Edge),
		incoming: make(map[ID][]*Edge),
	}
}

// AddNode creates a node with the given ID and level tag. New nodes start
// visible, unmounted, unlocked and ungrouped. Returns ErrInvalidNodeID for
// an empty ID or ErrDuplicateNodeID if the ID is already taken.
func (g *Graph) AddNode(id ID, level string) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.nodes[id]; exists {
		return nil, ErrDuplicateNodeID
	}
	n := &Node{id: id, level: level, shown: true}
	g.nodes[id] = n
	return n, nil
}

// AddEdge creates a directed edge of the given type between two existing
// nodes, carrying the given class labels. New edges start visible.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing.
func (g *Graph) AddEdge(from, to ID, typ string, classes ...string) (*Edge, error) {
	if _, ok := g.nodes[from]; !ok {
		return nil, ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return nil, ErrUnknownTargetNode
	}
	e := &Edge{from: from, to: to, typ: typ, visible: true}
	for _, class := range classes {
		e.AddClass(class)
	}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], e)
	g.incoming[to] = append(g.incoming[to], e)
	return e, nil
}

// RemoveEdge removes the given edge instance. No-op when the edge is not
// part of the arena.
func (g *Graph) RemoveEdge(e *Edge) {
	g.edges = slices.DeleteFunc(g.edges, func(x *Edge) bool { return x == e })
	g.outgoing[e.from] = slices.DeleteFunc(g.outgoing[e.from], func(x *Edge) bool { return x == e })
	g.incoming[e.to] = slices.DeleteFunc(g.incoming[e.to], func(x *Edge) bool { return x == e })
}

// RemoveNode removes a node, its incident edges, and its group membership.
// No-op when the ID is unknown.
func (g *Graph) RemoveNode(id ID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, e := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(e)
	}
	for _, e := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(e)
	}
	if n.group != "" {
		if grp, ok := g.groups[n.group]; ok {
			grp.detach(n)
		}
	}
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Group returns the group with the given ID and true, or nil and false.
func (g *Graph) Group(id ID) (*Group, bool) {
	grp, ok := g.groups[id]
	return grp, ok
}

// Elem resolves an ID to either variant.
func (g *Graph) Elem(id ID) (Elem, bool) {
	if n, ok := g.nodes[id]; ok {
		return n, true
	}
	if grp, ok := g.groups[id]; ok {
		return grp, true
	}
	return nil, false
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Groups returns all groups sorted by ID for deterministic iteration.
func (g *Graph) Groups() []*Group {
	groups := make([]*Group, 0, len(g.groups))
	for _, id := range slices.Sorted(maps.Keys(g.groups)) {
		groups = append(groups, g.groups[id])
	}
	return groups
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// Outgoing returns the edges leaving the given node.
// The returned slice is a read-only view.
func (g *Graph) Outgoing(id ID) []*Edge { return g.outgoing[id] }

// Incoming returns the edges entering the given node.
// The returned slice is a read-only view.
func (g *Graph) Incoming(id ID) []*Edge { return g.incoming[id] }

// NodeCount returns the number of nodes in the arena.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the arena.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// CreateGroup allocates a group and adds the given members to it. Each
// member must be ungrouped unless override is set, in which case it is
// moved out of its current group first. On a membership violation the
// group is not created and an error with code NODE_ALREADY_GROUPED
// identifying the node and its owning group is returned.
//
// New groups start with the stored visibility flag set; effective
// visibility still requires a visible member.
func (g *Graph) CreateGroup(level string, members []*Node, override bool) (*Group, error) {
	for _, n := range members {
		if n.group != "" && !override {
			return nil, errors.New(errors.ErrCodeNodeAlreadyGrouped,
				"node %s already belongs to %s", n.id, n.group)
		}
	}
	g.nextGroup++
	grp := &Group{
		id:    ID(fmt.Sprintf("group#%d", g.nextGroup)),
		level: level,
		shown: true,
	}
	g.groups[grp.id] = grp
	for _, n := range members {
		// Validated above; override handling still goes through AddToGroup
		// so the old group's member list stays consistent.
		if err := g.AddToGroup(grp, n, override); err != nil {
			return nil, err
		}
	}
	observability.Graph().OnGroupCreated(string(grp.id), len(grp.members))
	return grp, nil
}

// RestoreGroup recreates a group under a previously allocated ID, as when
// importing a serialized session. The ID must be unused; members must be
// ungrouped. The internal ID allocator advances past restored group#N IDs
// so later CreateGroup calls cannot collide.
func (g *Graph) RestoreGroup(id ID, level string, members []*Node) (*Group, error) {
	if id == "" {
		return nil, ErrInvalidNodeID
	}
	if _, exists := g.groups[id]; exists {
		return nil, ErrDuplicateNodeID
	}
	for _, n := range members {
		if n.group != "" {
			return nil, errors.New(errors.ErrCodeNodeAlreadyGrouped,
				"node %s already belongs to %s", n.id, n.group)
		}
	}
	var seq int
	if _, err := fmt.Sscanf(string(id), "group#%d", &seq); err == nil && seq > g.nextGroup {
		g.nextGroup = seq
	}
	grp := &Group{id: id, level: level, shown: true}
	g.groups[id] = grp
	for _, n := range members {
		grp.attach(n)
	}
	observability.Graph().OnGroupCreated(string(grp.id), len(grp.members))
	return grp, nil
}

// AddToGroup adds a node to a group, maintaining the bidirectional
// membership invariant. When the node already belongs to another group the
// call fails with code NODE_ALREADY_GROUPED unless override is set, in
// which case the node is detached from its current group first.
func (g *Graph) AddToGroup(grp *Group, n *Node, override bool) error {
	if n.group == grp.id {
		return nil
	}
	if n.group != "" {
		if !override {
			return errors.New(errors.ErrCodeNodeAlreadyGrouped,
				"node %s already belongs to %s", n.id, n.group)
		}
		if old, ok := g.groups[n.group]; ok {
			old.detach(n)
		}
	}
	grp.attach(n)
	return nil
}

// RemoveGroupKeepNodes dissolves a group: every member is released back to
// the ungrouped state and the group is removed from the arena. The member
// nodes themselves are untouched.
func (g *Graph) RemoveGroupKeepNodes(grp *Group) {
	for _, n := range slices.Clone(grp.members) {
		grp.detach(n)
	}
	delete(g.groups, grp.id)
	observability.Graph().OnGroupRemoved(string(grp.id))
}

// VisibleElems returns every currently visible node and group, nodes
// first, each sorted by ID.
func (g *Graph) VisibleElems() []Elem {
	var elems []Elem
	for _, n := range g.Nodes() {
		if n.Visible() {
			elems = append(elems, n)
		}
	}
	for _, grp := range g.Groups() {
		if grp.Visible() {
			elems = append(elems, grp)
		}
	}
	return elems
}
