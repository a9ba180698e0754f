package layout

import (
	"context"
	"testing"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/options"
)

// fakeView is a scripted rendering surface. Its tick channel is closed by
// default so mount handshakes resolve immediately; tests that exercise the
// suspension replace it with an open channel.
type fakeView struct {
	tick      chan struct{}
	waiting   chan struct{}
	positions map[entity.ID]entity.Point
	nav       bool
}

func newFakeView() *fakeView {
	tick := make(chan struct{})
	close(tick)
	return &fakeView{
		tick:      tick,
		waiting:   make(chan struct{}, 1),
		positions: make(map[entity.ID]entity.Point),
		nav:       true,
	}
}

func (v *fakeView) NextTick() <-chan struct{} {
	select {
	case v.waiting <- struct{}{}:
	default:
	}
	return v.tick
}

func (v *fakeView) Position(id entity.ID) (entity.Point, bool) {
	p, ok := v.positions[id]
	return p, ok
}

func (v *fakeView) Center() entity.Point { return entity.Point{X: 400, Y: 300} }

func (v *fakeView) SetNavigation(enabled bool) { v.nav = enabled }

// fakeEngine records every run spec and hands out inspectable handles.
type fakeEngine struct {
	specs   []RunSpec
	handles []*fakeHandle
}

type fakeHandle struct{ stops int }

func (h *fakeHandle) Stop() { h.stops++ }

func (e *fakeEngine) Start(spec RunSpec) (Handle, error) {
	h := &fakeHandle{}
	e.specs = append(e.specs, spec)
	e.handles = append(e.handles, h)
	return h, nil
}

func (e *fakeEngine) last(t *testing.T) RunSpec {
	t.Helper()
	if len(e.specs) == 0 {
		t.Fatal("no engine run started")
	}
	return e.specs[len(e.specs)-1]
}

type fixture struct {
	graph  *entity.Graph
	view   *fakeView
	engine *fakeEngine
	opts   options.Options
	coord  *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		graph:  entity.New(),
		view:   newFakeView(),
		engine: &fakeEngine{},
		opts:   options.Defaults(),
	}
	f.coord = NewCoordinator(f.graph, f.view, f.engine, &f.opts)
	f.coord.Activate()
	return f
}

func (f *fixture) addNodes(t *testing.T, ids ...entity.ID) []*entity.Node {
	t.Helper()
	nodes := make([]*entity.Node, len(ids))
	for i, id := range ids {
		n, err := f.graph.AddNode(id, "")
		if err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
		nodes[i] = n
	}
	return nodes
}

func TestRunCancelsPreviousRun(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a", "b")

	if err := f.coord.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := f.coord.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(f.engine.handles) != 2 {
		t.Fatalf("started %d runs, want 2", len(f.engine.handles))
	}
	if f.engine.handles[0].stops != 1 {
		t.Errorf("first handle stops = %d, want 1", f.engine.handles[0].stops)
	}
	if f.engine.handles[1].stops != 0 {
		t.Errorf("second handle stops = %d, want 0 (still the live run)", f.engine.handles[1].stops)
	}
}

func TestDeactivateStopsRun(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a")

	f.coord.Run()
	f.coord.Deactivate()

	if f.engine.handles[0].stops != 1 {
		t.Error("deactivation must cancel the in-flight run")
	}
	if f.coord.Active() {
		t.Error("coordinator should be inactive")
	}
}

func TestInactiveCoordinatorIgnoresEvents(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a")
	f.coord.Deactivate()

	f.coord.Run()
	f.coord.DragEnded()
	f.coord.LockToggled()
	f.coord.Expand(context.Background(), Expansion{Anchor: "a"})

	if len(f.engine.specs) != 0 {
		t.Errorf("started %d runs while inactive, want 0", len(f.engine.specs))
	}
}

func TestLockedNodeFixedOutsideCompactMode(t *testing.T) {
	f := newFixture(t)
	nodes := f.addNodes(t, "a", "b")
	nodes[0].SetLocked(true)

	f.coord.Run()

	spec := f.engine.last(t)
	if !spec.Fixed("a") {
		t.Error("locked node must be held fixed in a normal run")
	}
	if spec.Fixed("b") {
		t.Error("unlocked node must not be held fixed")
	}
}

func TestCompactModeOverridesLocks(t *testing.T) {
	f := newFixture(t)
	nodes := f.addNodes(t, "a", "b", "c")
	nodes[0].SetLocked(true)

	if err := f.coord.SetCompact([]entity.ID{"a", "b"}, nil); err != nil {
		t.Fatalf("SetCompact: %v", err)
	}

	spec := f.engine.last(t)
	if spec.Fixed("a") {
		t.Error("compact mode must override the lock flag")
	}
	if len(spec.Elements) != 2 {
		t.Errorf("compact run over %d elements, want 2", len(spec.Elements))
	}
	if f.view.nav {
		t.Error("navigation should be disabled in compact mode")
	}

	// Exit restores navigation and lock semantics.
	f.coord.SetCompact(nil, nil)
	if !f.view.nav {
		t.Error("navigation should be re-enabled after exit")
	}
	f.coord.Run()
	if !f.engine.last(t).Fixed("a") {
		t.Error("lock flag must hold again outside compact mode")
	}
}

func TestCompactEntryCancelsRunningLayout(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a", "b")

	f.coord.Run()
	f.coord.SetCompact([]entity.ID{"a"}, nil)

	if f.engine.handles[0].stops != 1 {
		t.Error("compact entry must cancel the running layout")
	}
}

func TestExpansionFixedSet(t *testing.T) {
	f := newFixture(t)
	f.opts.ExpansionOnlyThose = true
	f.opts.GroupExpansion = false

	existing := make([]entity.ID, 10)
	for i := range existing {
		existing[i] = entity.ID(rune('a' + i))
	}
	f.addNodes(t, existing...)
	f.addNodes(t, "anchor")
	fresh := f.addNodes(t, "new1", "new2")

	err := f.coord.Expand(context.Background(), Expansion{Anchor: "anchor", Nodes: fresh})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	spec := f.engine.last(t)
	for _, id := range existing {
		if !spec.Fixed(id) {
			t.Errorf("pre-existing node %s must be pinned", id)
		}
	}
	for _, id := range []entity.ID{"anchor", "new1", "new2"} {
		if spec.Fixed(id) {
			t.Errorf("%s must not be pinned", id)
		}
	}
}

func TestExpansionSeedsBeforeRunning(t *testing.T) {
	f := newFixture(t)
	f.opts.GroupExpansion = false
	f.addNodes(t, "anchor")
	f.view.positions["anchor"] = entity.Point{X: 10, Y: 10}
	fresh := f.addNodes(t, "n1", "n2")

	if err := f.coord.Expand(context.Background(), Expansion{Anchor: "anchor", Nodes: fresh}); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// First revealed node seeds at the anchor's live position.
	if p, ok := fresh[0].PendingPosition(); !ok || p.X != 10 || p.Y != 10 {
		t.Errorf("first node pending = %v, %v, want anchor position", p, ok)
	}
	if len(f.engine.specs) != 1 {
		t.Fatalf("started %d runs, want 1", len(f.engine.specs))
	}
}

func TestExpansionGroupsLargeReveals(t *testing.T) {
	f := newFixture(t)
	f.opts.GroupExpansion = true
	f.opts.ExpansionGroupLimit = 3
	f.addNodes(t, "anchor")
	fresh := f.addNodes(t, "n1", "n2", "n3")

	if err := f.coord.Expand(context.Background(), Expansion{Anchor: "anchor", Nodes: fresh}); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	groups := f.graph.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	grp := groups[0]
	if grp.MemberCount() != 3 {
		t.Errorf("group has %d members, want 3", grp.MemberCount())
	}

	// Seeded offset from the anchor, off both axes.
	p, ok := grp.PendingPosition()
	if !ok {
		t.Fatal("group has no pending position")
	}
	if p.X == 0 || p.Y == 0 {
		t.Errorf("group seed %v must be off-axis relative to the anchor", p)
	}

	// Individual nodes were not ring-seeded.
	if _, ok := fresh[0].PendingPosition(); ok {
		t.Error("grouped expansion must not seed individual nodes")
	}
}

func TestExpansionSynthesizedGroupNotPinned(t *testing.T) {
	f := newFixture(t)
	f.opts.GroupExpansion = true
	f.opts.ExpansionOnlyThose = true
	f.opts.ExpansionGroupLimit = 2
	f.addNodes(t, "old", "anchor")
	fresh := f.addNodes(t, "n1", "n2")

	if err := f.coord.Expand(context.Background(), Expansion{Anchor: "anchor", Nodes: fresh}); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	groups := f.graph.Groups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	// The group is part of the expansion's delta: it must be free to
	// settle, while pre-existing elements stay pinned.
	spec := f.engine.last(t)
	if spec.Fixed(groups[0].ID()) {
		t.Errorf("group %s created by this expansion must not be pinned", groups[0].ID())
	}
	if !spec.Fixed("old") {
		t.Error("pre-existing node must stay pinned")
	}
}

func TestExpansionAbortsWhenDeactivatedDuringMountWait(t *testing.T) {
	f := newFixture(t)
	f.opts.GroupExpansion = false
	f.view.tick = make(chan struct{}) // hold the handshake open
	f.addNodes(t, "anchor")
	fresh := f.addNodes(t, "n1")

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.coord.Expand(context.Background(), Expansion{Anchor: "anchor", Nodes: fresh})
	}()

	<-f.view.waiting // expansion reached the suspension point
	f.coord.Deactivate()
	close(f.view.tick)

	if err := <-errCh; err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(f.engine.specs) != 0 {
		t.Error("deactivated expansion must abort silently without a run")
	}
}

func TestExpansionMountWaitCancellable(t *testing.T) {
	f := newFixture(t)
	f.opts.GroupExpansion = false
	f.view.tick = make(chan struct{})
	f.addNodes(t, "anchor")
	fresh := f.addNodes(t, "n1")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- f.coord.Expand(ctx, Expansion{Anchor: "anchor", Nodes: fresh})
	}()

	<-f.view.waiting
	cancel()

	if err := <-errCh; err != context.Canceled {
		t.Fatalf("Expand err = %v, want context.Canceled", err)
	}
}

func TestBreakGroupSeedsAtLastPosition(t *testing.T) {
	f := newFixture(t)
	nodes := f.addNodes(t, "m1", "m2")
	grp, err := f.graph.CreateGroup("", nodes, false)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	f.view.positions[grp.ID()] = entity.Point{X: 77, Y: 88}

	if err := f.coord.BreakGroup(context.Background(), grp); err != nil {
		t.Fatalf("BreakGroup: %v", err)
	}

	if _, ok := f.graph.Group(grp.ID()); ok {
		t.Error("group should be dissolved")
	}
	if nodes[0].Grouped() || nodes[1].Grouped() {
		t.Error("members should be released")
	}
	if p, ok := nodes[0].PendingPosition(); !ok || p.X != 77 || p.Y != 88 {
		t.Errorf("first freed node pending = %v, %v, want group position", p, ok)
	}

	// Whole-graph run with no explicit fixed set.
	spec := f.engine.last(t)
	if spec.Fixed("m1") || spec.Fixed("m2") {
		t.Error("freed members must not be pinned")
	}
}

func TestBreakGroupFallsBackToCenter(t *testing.T) {
	f := newFixture(t)
	nodes := f.addNodes(t, "m1")
	grp, _ := f.graph.CreateGroup("", nodes, false)

	if err := f.coord.BreakGroup(context.Background(), grp); err != nil {
		t.Fatalf("BreakGroup: %v", err)
	}

	if p, ok := nodes[0].PendingPosition(); !ok || p != f.view.Center() {
		t.Errorf("pending = %v, %v, want canvas center fallback", p, ok)
	}
}

func TestDragStartPrimesEngineOnce(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a")

	if err := f.coord.DragStarted(); err != nil {
		t.Fatalf("DragStarted: %v", err)
	}
	if len(f.engine.specs) != 1 {
		t.Fatalf("started %d runs, want 1", len(f.engine.specs))
	}

	// Once primed, further drag starts do nothing.
	f.coord.DragStarted()
	if len(f.engine.specs) != 1 {
		t.Error("primed engine must not restart on drag start")
	}
}

func TestDragStartRespectsAnimateOption(t *testing.T) {
	f := newFixture(t)
	f.opts.Animate = false
	f.addNodes(t, "a")

	f.coord.DragStarted()
	if len(f.engine.specs) != 0 {
		t.Error("drag start must not run with animation disabled")
	}
}

func TestDragEndRespectsRepositionOption(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a")

	f.coord.DragEnded()
	if len(f.engine.specs) != 1 {
		t.Fatal("drag end should run with the option enabled")
	}

	f.opts.DoLayoutAfterReposition = false
	f.coord.DragEnded()
	if len(f.engine.specs) != 1 {
		t.Error("drag end must not run with the option disabled")
	}
}

func TestLockToggledRunsOverAnimateTarget(t *testing.T) {
	f := newFixture(t)
	f.addNodes(t, "a", "b", "c")

	if err := f.coord.LockToggled(); err != nil {
		t.Fatalf("LockToggled: %v", err)
	}
	if got := len(f.engine.last(t).Elements); got != 3 {
		t.Errorf("run over %d elements, want whole visible graph (3)", got)
	}

	f.coord.SetCompact([]entity.ID{"a"}, nil)
	f.coord.LockToggled()
	if got := len(f.engine.last(t).Elements); got != 1 {
		t.Errorf("compact run over %d elements, want 1", got)
	}
}

func TestRunSkipsHiddenElements(t *testing.T) {
	f := newFixture(t)
	nodes := f.addNodes(t, "a", "b")
	nodes[1].SetVisible(false)

	f.coord.Run()

	spec := f.engine.last(t)
	if len(spec.Elements) != 1 || spec.Elements[0] != "a" {
		t.Errorf("elements = %v, want only the visible node", spec.Elements)
	}
}
