package graphio

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/nodescape/nodescape/pkg/entity"
)

// =============================================================================
// Snapshot - Explorer Session Serialization
// =============================================================================

// Snapshot is the canonical serialization format for an explorer session's
// entity graph. Used for API responses, storage backends, and file export.
//
// The format is human-readable and designed for round-trip fidelity:
// export → re-import reproduces the arena, including group membership and
// element positions. Aggregation caches are derived state and never
// serialized.
type Snapshot struct {
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Groups []Group `json:"groups,omitempty" bson:"groups,omitempty"`
	Edges  []Edge  `json:"edges" bson:"edges"`
}

// Node is the serialized form of an [entity.Node].
type Node struct {
	ID       string  `json:"id" bson:"id"`
	Level    string  `json:"level,omitempty" bson:"level,omitempty"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Hidden   bool    `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Filtered bool    `json:"filtered,omitempty" bson:"filtered,omitempty"`
	Locked   bool    `json:"locked,omitempty" bson:"locked,omitempty"`
}

// Group is the serialized form of an [entity.Group]. Members reference node
// IDs; the bidirectional membership link is rebuilt on import.
type Group struct {
	ID      string   `json:"id" bson:"id"`
	Level   string   `json:"level,omitempty" bson:"level,omitempty"`
	Parent  string   `json:"parent,omitempty" bson:"parent,omitempty"`
	X       float64  `json:"x" bson:"x"`
	Y       float64  `json:"y" bson:"y"`
	Hidden  bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Locked  bool     `json:"locked,omitempty" bson:"locked,omitempty"`
	Members []string `json:"members" bson:"members"`
}

// Edge is the serialized form of an [entity.Edge].
type Edge struct {
	From    string   `json:"from" bson:"from"`
	To      string   `json:"to" bson:"to"`
	Type    string   `json:"type,omitempty" bson:"type,omitempty"`
	Classes []string `json:"classes,omitempty" bson:"classes,omitempty"`
	Hidden  bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// =============================================================================
// Arena ↔ Snapshot Conversion
// =============================================================================

// FromGraph converts an arena to its serialization format. Nodes, groups and
// group members are sorted by ID for deterministic output; edges keep
// insertion order.
func FromGraph(g *entity.Graph) Snapshot {
	nodes := g.Nodes()
	groups := g.Groups()
	edges := g.Edges()

	out := Snapshot{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}

	for i, n := range nodes {
		pos := n.Position()
		out.Nodes[i] = Node{
			ID:       string(n.ID()),
			Level:    n.Level(),
			X:        pos.X,
			Y:        pos.Y,
			Hidden:   !n.Shown(),
			Filtered: n.Filtered(),
			Locked:   n.Locked(),
		}
	}

	for _, grp := range groups {
		pos := grp.Position()
		members := make([]string, 0, grp.MemberCount())
		for _, m := range grp.Members() {
			members = append(members, string(m.ID()))
		}
		slices.Sort(members)
		out.Groups = append(out.Groups, Group{
			ID:      string(grp.ID()),
			Level:   grp.Level(),
			Parent:  string(grp.Parent()),
			X:       pos.X,
			Y:       pos.Y,
			Hidden:  !grp.Shown(),
			Locked:  grp.Locked(),
			Members: members,
		})
	}

	for i, e := range edges {
		out.Edges[i] = Edge{
			From:    string(e.From()),
			To:      string(e.To()),
			Type:    e.Type(),
			Classes: e.Classes(),
			Hidden:  !e.Visible(),
		}
	}

	return out
}

// ToGraph converts a snapshot back into an arena. Returns an error when the
// snapshot references unknown nodes or violates membership exclusivity.
func ToGraph(s Snapshot) (*entity.Graph, error) {
	g := entity.New()

	for _, nj := range s.Nodes {
		n, err := g.AddNode(entity.ID(nj.ID), nj.Level)
		if err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
		n.SetPosition(entity.Point{X: nj.X, Y: nj.Y})
		n.Mount()
		n.SetVisible(!nj.Hidden)
		n.SetFiltered(nj.Filtered)
		n.SetLocked(nj.Locked)
	}

	for _, gj := range s.Groups {
		members := make([]*entity.Node, 0, len(gj.Members))
		for _, id := range gj.Members {
			n, ok := g.Node(entity.ID(id))
			if !ok {
				return nil, fmt.Errorf("group %s: unknown member %s", gj.ID, id)
			}
			members = append(members, n)
		}
		grp, err := g.RestoreGroup(entity.ID(gj.ID), gj.Level, members)
		if err != nil {
			return nil, fmt.Errorf("restore group %s: %w", gj.ID, err)
		}
		grp.SetParent(entity.ID(gj.Parent))
		grp.SetPosition(entity.Point{X: gj.X, Y: gj.Y})
		grp.Mount()
		grp.SetVisible(!gj.Hidden)
		grp.SetLocked(gj.Locked)
	}

	for _, ej := range s.Edges {
		e, err := g.AddEdge(entity.ID(ej.From), entity.ID(ej.To), ej.Type, ej.Classes...)
		if err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
		e.SetVisible(!ej.Hidden)
	}

	return g, nil
}

// UnmarshalSnapshot deserializes JSON bytes to a Snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
