package entity

import (
	"testing"

	"github.com/nodescape/nodescape/pkg/errors"
)

func TestAddNode(t *testing.T) {
	g := New()

	if _, err := g.AddNode("a", "l1"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if _, err := g.AddNode("", "l1"); err != ErrInvalidNodeID {
		t.Errorf("empty ID: err = %v, want ErrInvalidNodeID", err)
	}
	if _, err := g.AddNode("a", "l2"); err != ErrDuplicateNodeID {
		t.Errorf("duplicate ID: err = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("node a not found")
	}
	if !n.Visible() {
		t.Error("new node should be visible")
	}
	if n.Mounted() {
		t.Error("new node should be unmounted")
	}
	if n.Grouped() {
		t.Error("new node should be ungrouped")
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode("a", "")
	g.AddNode("b", "")

	e, err := g.AddEdge("a", "b", "calls", "solid", "primary")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if got := e.Classes(); len(got) != 2 || got[0] != "primary" || got[1] != "solid" {
		t.Errorf("Classes() = %v, want [primary solid]", got)
	}

	if _, err := g.AddEdge("x", "b", "calls"); err != ErrUnknownSourceNode {
		t.Errorf("unknown source: err = %v, want ErrUnknownSourceNode", err)
	}
	if _, err := g.AddEdge("a", "x", "calls"); err != ErrUnknownTargetNode {
		t.Errorf("unknown target: err = %v, want ErrUnknownTargetNode", err)
	}

	if got := len(g.Outgoing("a")); got != 1 {
		t.Errorf("Outgoing(a) = %d edges, want 1", got)
	}
	if got := len(g.Incoming("b")); got != 1 {
		t.Errorf("Incoming(b) = %d edges, want 1", got)
	}
}

func TestRemoveNodeCleansUp(t *testing.T) {
	g := New()
	g.AddNode("a", "")
	g.AddNode("b", "")
	g.AddEdge("a", "b", "calls")
	g.AddEdge("b", "a", "calls")

	na, _ := g.Node("a")
	grp, err := g.CreateGroup("", []*Node{na}, false)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	g.RemoveNode("a")

	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
	if grp.Contains("a") {
		t.Error("group should no longer contain removed node")
	}
}

func TestGroupMembershipExclusivity(t *testing.T) {
	g := New()
	g.AddNode("a", "")
	n, _ := g.Node("a")

	groupA, err := g.CreateGroup("", []*Node{n}, false)
	if err != nil {
		t.Fatalf("CreateGroup A: %v", err)
	}

	// Second group without override is an invariant violation.
	if _, err := g.CreateGroup("", []*Node{n}, false); !errors.Is(err, errors.ErrCodeNodeAlreadyGrouped) {
		t.Fatalf("err = %v, want code NODE_ALREADY_GROUPED", err)
	}

	// With override the node moves and A no longer lists it.
	groupB, err := g.CreateGroup("", []*Node{n}, true)
	if err != nil {
		t.Fatalf("CreateGroup B with override: %v", err)
	}
	if n.GroupID() != groupB.ID() {
		t.Errorf("GroupID = %s, want %s", n.GroupID(), groupB.ID())
	}
	if groupA.Contains("a") {
		t.Error("group A should no longer contain the node")
	}
	if !groupB.Contains("a") {
		t.Error("group B should contain the node")
	}
}

func TestGroupIDsMonotonic(t *testing.T) {
	g := New()
	a, _ := g.CreateGroup("", nil, false)
	b, _ := g.CreateGroup("", nil, false)

	if a.ID() != "group#1" || b.ID() != "group#2" {
		t.Errorf("ids = %s, %s, want group#1, group#2", a.ID(), b.ID())
	}

	// IDs are never reused, even after removal.
	g.RemoveGroupKeepNodes(b)
	c, _ := g.CreateGroup("", nil, false)
	if c.ID() != "group#3" {
		t.Errorf("id = %s, want group#3", c.ID())
	}
}

func TestRemoveGroupKeepNodes(t *testing.T) {
	g := New()
	g.AddNode("a", "")
	g.AddNode("b", "")
	na, _ := g.Node("a")
	nb, _ := g.Node("b")

	grp, _ := g.CreateGroup("", []*Node{na, nb}, false)
	g.RemoveGroupKeepNodes(grp)

	if _, ok := g.Group(grp.ID()); ok {
		t.Error("group should be removed from the arena")
	}
	if na.Grouped() || nb.Grouped() {
		t.Error("members should be released back to ungrouped state")
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestGroupVisibilityDerivation(t *testing.T) {
	tests := []struct {
		name        string
		stored      bool
		memberShown []bool
		want        bool
	}{
		{name: "AllMembersHidden", stored: true, memberShown: []bool{false, false}, want: false},
		{name: "OneVisibleMember", stored: true, memberShown: []bool{false, true}, want: true},
		{name: "StoredFlagOff", stored: false, memberShown: []bool{true, true}, want: false},
		{name: "NoMembers", stored: true, memberShown: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			var members []*Node
			for i, shown := range tt.memberShown {
				n, _ := g.AddNode(ID(rune('a'+i)), "")
				n.SetVisible(shown)
				members = append(members, n)
			}
			grp, err := g.CreateGroup("", members, false)
			if err != nil {
				t.Fatalf("CreateGroup: %v", err)
			}
			grp.SetVisible(tt.stored)

			if got := grp.Visible(); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeVisibilityCombinesFlags(t *testing.T) {
	g := New()
	n, _ := g.AddNode("a", "")

	if !n.Visible() {
		t.Fatal("default should be visible")
	}
	n.SetFiltered(true)
	if n.Visible() {
		t.Error("filtered node should not be visible")
	}
	n.SetFiltered(false)
	n.SetVisible(false)
	if n.Visible() {
		t.Error("user-hidden node should not be visible")
	}
}

func TestMountPromotesPendingPosition(t *testing.T) {
	g := New()
	n, _ := g.AddNode("a", "")

	n.Seed(Point{X: 10, Y: 20})
	if n.Mounted() {
		t.Error("seeded node should be pending, not mounted")
	}
	if p, ok := n.PendingPosition(); !ok || p.X != 10 || p.Y != 20 {
		t.Errorf("PendingPosition() = %v, %v", p, ok)
	}

	n.Mount()
	if !n.Mounted() {
		t.Error("node should be mounted after Mount")
	}
	if _, ok := n.PendingPosition(); ok {
		t.Error("pending position should be cleared by Mount")
	}
	if p := n.Position(); p.X != 10 || p.Y != 20 {
		t.Errorf("Position() = %v, want seeded position", p)
	}
}

func TestElemResolvesBothVariants(t *testing.T) {
	g := New()
	g.AddNode("a", "")
	grp, _ := g.CreateGroup("", nil, false)

	e, ok := g.Elem("a")
	if !ok || e.IsGroup() {
		t.Errorf("Elem(a) = %v, %v, want node", e, ok)
	}
	e, ok = g.Elem(grp.ID())
	if !ok || !e.IsGroup() {
		t.Errorf("Elem(%s) = %v, %v, want group", grp.ID(), e, ok)
	}
	if _, ok := g.Elem("missing"); ok {
		t.Error("Elem(missing) should not resolve")
	}
}

func TestVisibleElems(t *testing.T) {
	g := New()
	a, _ := g.AddNode("a", "")
	g.AddNode("b", "")
	hidden, _ := g.AddNode("c", "")
	hidden.SetVisible(false)

	grp, _ := g.CreateGroup("", []*Node{a}, false)

	elems := g.VisibleElems()
	if len(elems) != 3 {
		t.Fatalf("VisibleElems = %d elements, want 3", len(elems))
	}
	ids := map[ID]bool{}
	for _, e := range elems {
		ids[e.ID()] = true
	}
	if !ids["a"] || !ids["b"] || !ids[grp.ID()] {
		t.Errorf("VisibleElems ids = %v", ids)
	}
}
