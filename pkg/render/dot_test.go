package render

import (
	"strings"
	"testing"

	"github.com/nodescape/nodescape/pkg/entity"
)

func buildArena(t *testing.T) *entity.Graph {
	t.Helper()
	g := entity.New()
	for _, id := range []entity.ID{"api", "auth", "db", "cache"} {
		if _, err := g.AddNode(id, ""); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	db, _ := g.Node("db")
	cache, _ := g.Node("cache")
	if _, err := g.CreateGroup("", []*entity.Node{db, cache}, false); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	g.AddEdge("api", "auth", "calls")
	g.AddEdge("api", "db", "reads", "hot")
	g.AddEdge("api", "cache", "reads", "hot", "fast")
	g.AddEdge("db", "auth", "notifies")
	return g
}

func TestToDOTCollapsesGroups(t *testing.T) {
	g := buildArena(t)
	grp := g.Groups()[0]

	dot := ToDOT(g, Options{})

	// Grouped members disappear behind the group vertex.
	if strings.Contains(dot, `"db" [`) || strings.Contains(dot, `"cache" [`) {
		t.Error("grouped members must not render as vertices")
	}
	if !strings.Contains(dot, string(grp.ID())) {
		t.Error("group vertex missing")
	}
	if !strings.Contains(dot, "(2)") {
		t.Error("group label should carry the member count")
	}

	// The two api->member edges summarize to one group edge.
	if got := strings.Count(dot, `"api" -> "`+string(grp.ID())+`"`); got != 1 {
		t.Errorf("api -> group appears %d times, want 1 summarized edge", got)
	}
	// The member->auth edge surfaces as group->auth.
	if !strings.Contains(dot, `"`+string(grp.ID())+`" -> "auth"`) {
		t.Error("outgoing aggregate missing")
	}
	// Real edge between ungrouped endpoints stays.
	if !strings.Contains(dot, `"api" -> "auth"`) {
		t.Error("real edge between ungrouped nodes missing")
	}
}

func TestToDOTShowClasses(t *testing.T) {
	g := buildArena(t)

	dot := ToDOT(g, Options{ShowClasses: true})

	// Intersection of {hot} and {hot, fast} is {hot}.
	if !strings.Contains(dot, "reads [hot]") {
		t.Errorf("intersected classes missing from edge label:\n%s", dot)
	}
}

func TestToDOTSkipsInvisible(t *testing.T) {
	g := buildArena(t)
	auth, _ := g.Node("auth")
	auth.SetVisible(false)

	dot := ToDOT(g, Options{})

	if strings.Contains(dot, `"auth"`) {
		t.Error("invisible node leaked into DOT output")
	}
}

func TestToDOTPositions(t *testing.T) {
	g := buildArena(t)
	api, _ := g.Node("api")
	api.SetPosition(entity.Point{X: 12.5, Y: 40})

	dot := ToDOT(g, Options{ShowPositions: true})

	if !strings.Contains(dot, `pos="12.50,-40.00!"`) {
		t.Errorf("pinned position missing from DOT output:\n%s", dot)
	}
}

func TestToDOTLockedStyling(t *testing.T) {
	g := buildArena(t)
	api, _ := g.Node("api")
	api.SetLocked(true)

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "penwidth=2") {
		t.Error("locked node should render with heavier outline")
	}
}

func TestToDOTEmptyArena(t *testing.T) {
	dot := ToDOT(entity.New(), Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("malformed DOT for empty arena:\n%s", dot)
	}
}
