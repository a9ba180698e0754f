// Package entity implements the owned data model of the graph explorer:
// nodes, edges, collapsible node groups, and the derived group edges that
// summarize real edges crossing a group boundary.
//
// All entities live in a single [Graph] arena. Cross-references between
// entities are expressed as [ID] lookups resolved through the arena, never
// as owning pointers, so the cyclic Node ↔ Group ↔ Edge relationships stay
// acyclic at the ownership level.
//
// # Membership
//
// A node belongs to at most one group, and membership is bidirectional: the
// node records its owning group and the group lists the node as a member.
// Adding an already-grouped node to a second group without the explicit
// override flag is a caller bug and fails with code NODE_ALREADY_GROUPED.
//
// # Summarization
//
// [Graph.AggregatedEdges] computes one [GroupEdge] per (counterpart, edge
// type) pair crossing a group boundary. Recomputation preserves the
// identity of previously reported group edges, so downstream consumers can
// track a summarized connection across recomputations instead of treating
// every pass as a fresh edge set. See summary.go.
//
// Graph is not safe for concurrent use; all mutation is expected to happen
// on one logical goroutine (the explorer's event loop).
package entity

// ID identifies a node or a group inside one arena. Node IDs are supplied
// by the caller; group IDs are allocated by the arena and are unique for
// the arena's lifetime.
type ID string

// Point is a position on the 2-D canvas.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns the vector sum p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Elem is the capability set shared by [Node] and [Group]: everything the
// layout side needs without caring which concrete variant it drives.
type Elem interface {
	// ID returns the element's stable identifier.
	ID() ID
	// Level returns the hierarchy level tag used as a placement hint.
	Level() string
	// Visible reports whether the element should currently be drawn.
	Visible() bool
	// Mounted reports whether the renderer has materialized the element.
	Mounted() bool
	// PendingPosition returns the seeded position awaiting mount, if any.
	PendingPosition() (Point, bool)
	// Position returns the element's live canvas position.
	Position() Point
	// SetPosition updates the element's live canvas position.
	SetPosition(Point)
	// Locked reports whether the element is excluded from force-directed
	// movement outside compact mode.
	Locked() bool
	// IsGroup reports which concrete variant the element is.
	IsGroup() bool
}

var (
	_ Elem = (*Node)(nil)
	_ Elem = (*Group)(nil)
)
