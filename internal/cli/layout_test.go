package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/graphio"
)

func writeSession(t *testing.T) (string, *entity.Graph) {
	t.Helper()
	g := entity.New()
	for _, id := range []entity.ID{"a", "b", "c"} {
		if _, err := g.AddNode(id, ""); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	g.AddEdge("a", "b", "calls")
	g.AddEdge("b", "c", "calls")

	locked, _ := g.Node("c")
	locked.SetPosition(entity.Point{X: 99, Y: 99})
	locked.SetLocked(true)

	path := filepath.Join(t.TempDir(), "session.json")
	if err := graphio.WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, g
}

func TestRunLayoutWritesPositions(t *testing.T) {
	path, _ := writeSession(t)
	c := New(os.Stderr, log.ErrorLevel)

	out := filepath.Join(filepath.Dir(path), "out.json")
	if err := c.runLayout(context.Background(), path, out, 0, 0, 50); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	g, err := graphio.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	if a.Position() == b.Position() {
		t.Error("layout left connected elements coincident")
	}

	// The locked element keeps its position.
	locked, _ := g.Node("c")
	if p := locked.Position(); p.X != 99 || p.Y != 99 {
		t.Errorf("locked element moved to %v", p)
	}
}

func TestRunLayoutDefaultOutputName(t *testing.T) {
	path, _ := writeSession(t)
	c := New(os.Stderr, log.ErrorLevel)

	if err := c.runLayout(context.Background(), path, "", 0, 0, 10); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	want := filepath.Join(filepath.Dir(path), "session.layout.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output %s missing: %v", want, err)
	}
}

func TestHeadlessViewMountsOnTick(t *testing.T) {
	g := entity.New()
	n, _ := g.AddNode("a", "")
	n.Seed(entity.Point{X: 3, Y: 4})

	v := newHeadlessView(g)

	select {
	case <-v.NextTick():
	default:
		t.Fatal("headless tick must resolve immediately")
	}

	if !n.Mounted() {
		t.Error("seeded node should be mounted after the tick")
	}
	if p, ok := v.Position("a"); !ok || p.X != 3 || p.Y != 4 {
		t.Errorf("Position = %v, %v, want promoted seed position", p, ok)
	}
}

func TestHeadlessViewCenter(t *testing.T) {
	g := entity.New()
	a, _ := g.AddNode("a", "")
	b, _ := g.AddNode("b", "")
	a.SetPosition(entity.Point{X: 0, Y: 0})
	b.SetPosition(entity.Point{X: 10, Y: 20})

	v := newHeadlessView(g)
	if c := v.Center(); c.X != 5 || c.Y != 10 {
		t.Errorf("Center = %v, want centroid (5, 10)", c)
	}

	if c := newHeadlessView(entity.New()).Center(); c.X != 0 || c.Y != 0 {
		t.Errorf("empty session center = %v, want origin", c)
	}
}
