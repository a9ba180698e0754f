package layout

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/observability"
	"github.com/nodescape/nodescape/pkg/options"
)

// Expansion is a transient request value: the element that triggered a
// reveal plus the newly created, not-yet-positioned nodes to seed and lay
// out.
type Expansion struct {
	// Anchor is the node or group whose expansion revealed the nodes.
	Anchor entity.ID

	// Nodes are the freshly created nodes, still without positions.
	Nodes []*entity.Node
}

// Coordinator reacts to expansion, contraction, drag and lock events by
// seeding new elements, computing the element collection and fixed set to
// animate, and driving the external force-directed engine.
//
// States: inactive, active, and active with compact mode, where an
// isolated subset is exclusively interactable and animated. Every engine
// invocation first stops the previous run: runs are never queued or
// merged, the latest request fully supersedes the prior animation state.
//
// Coordinator is single-threaded: all event methods are expected to be
// called from the explorer's one logical event goroutine. The only
// suspension point is the mount handshake inside Expand and BreakGroup.
type Coordinator struct {
	graph  *entity.Graph
	view   View
	engine Engine
	opts   *options.Options

	active  bool
	compact bool

	compactElems []entity.ID
	compactEdges []*entity.Edge

	handle Handle
	runID  string

	// primed flips once the engine has loaded position constraints from a
	// first run; a drag start before that triggers an immediate run so the
	// engine picks up current positions.
	primed bool
}

// NewCoordinator creates an inactive coordinator over the given
// collaborators. The options record is read live on every event, so option
// changes apply to the next run without re-wiring.
func NewCoordinator(graph *entity.Graph, view View, engine Engine, opts *options.Options) *Coordinator {
	return &Coordinator{
		graph:  graph,
		view:   view,
		engine: engine,
		opts:   opts,
	}
}

// Active reports whether the coordinator currently reacts to events.
func (c *Coordinator) Active() bool { return c.active }

// Compact reports whether compact mode is active.
func (c *Coordinator) Compact() bool { return c.compact }

// Activate enables event reactions. It has no other side effects.
func (c *Coordinator) Activate() { c.active = true }

// Deactivate disables event reactions, exits compact mode if active, and
// cancels any in-flight layout run.
func (c *Coordinator) Deactivate() {
	if c.compact {
		c.exitCompact()
	}
	c.stopRun()
	c.active = false
}

// DragStarted handles a drag beginning. When animation is enabled and the
// engine has not yet loaded its position constraints, this triggers a run
// over the current animate-target collection.
func (c *Coordinator) DragStarted() error {
	if !c.active {
		return nil
	}
	if !c.opts.Animate || c.primed {
		return nil
	}
	return c.startRun(c.animateTarget(), nil)
}

// DragEnded handles a drag completing. With "layout after reposition"
// enabled this triggers a run over the current animate-target collection.
func (c *Coordinator) DragEnded() error {
	if !c.active || !c.opts.DoLayoutAfterReposition {
		return nil
	}
	return c.startRun(c.animateTarget(), nil)
}

// LockToggled handles an element's lock flag changing. The new lock state
// feeds the fixed predicate of the triggered run.
func (c *Coordinator) LockToggled() error {
	if !c.active {
		return nil
	}
	return c.startRun(c.animateTarget(), nil)
}

// Run triggers a layout over the current animate-target collection. Usable
// at any time while active.
func (c *Coordinator) Run() error {
	if !c.active {
		return nil
	}
	return c.startRun(c.animateTarget(), nil)
}

// Expand seeds the newly revealed nodes, waits one rendering tick for
// their mount, then lays out the whole graph. When "restrict layout to
// touched elements" is configured, every element present before the
// expansion is pinned: the fixed set starts from all current elements and
// removes only the expanded nodes and the anchor.
//
// When the revealed count reaches the configured group limit and grouping
// is enabled, the nodes are summarized into a single group seeded at a
// fixed offset from the anchor instead of being placed individually.
//
// Returns ctx.Err if the mount wait is cancelled. A deactivation during
// the wait aborts the remainder silently: acting on stale intent would lay
// out a view the user has left.
func (c *Coordinator) Expand(ctx context.Context, exp Expansion) error {
	if !c.active {
		return nil
	}

	anchor := c.anchorPosition(exp.Anchor)

	var created entity.ID
	if c.opts.GroupExpansion && c.opts.ExpansionGroupLimit > 0 && len(exp.Nodes) >= c.opts.ExpansionGroupLimit {
		level := ""
		if len(exp.Nodes) > 0 {
			level = exp.Nodes[0].Level()
		}
		grp, err := c.graph.CreateGroup(level, exp.Nodes, false)
		if err != nil {
			return err
		}
		grp.Seed(anchor.Add(groupSeedOffset))
		created = grp.ID()
		observability.Layout().OnSeed(1, true)
	} else {
		SeedRings(exp.Nodes, anchor, c.opts.NodeSpacing)
	}

	if err := c.awaitMount(ctx); err != nil {
		return err
	}
	if !c.active {
		return nil
	}

	var fixed map[entity.ID]struct{}
	if c.opts.ExpansionOnlyThose {
		fixed = c.expansionFixedSet(exp, created)
	}
	return c.startRun(c.wholeGraph(), fixed)
}

// BreakGroup dissolves a group back into its member nodes, seeds the freed
// nodes at the group's last known position (or the canvas center when
// unavailable), waits for their mount, then lays out the whole graph with
// no fixed set.
func (c *Coordinator) BreakGroup(ctx context.Context, grp *entity.Group) error {
	if !c.active {
		return nil
	}

	pos, ok := c.view.Position(grp.ID())
	if !ok {
		pos = c.view.Center()
	}

	freed := grp.Members()
	c.graph.RemoveGroupKeepNodes(grp)
	SeedRings(freed, pos, c.opts.NodeSpacing)

	if err := c.awaitMount(ctx); err != nil {
		return err
	}
	if !c.active {
		return nil
	}

	return c.startRun(c.wholeGraph(), nil)
}

// SetCompact enters or exits compact mode. Passing both subsets as nil
// exits: the running layout is cancelled, navigation is re-enabled and the
// tracked collection cleared. Otherwise the running layout is cancelled,
// navigation is disabled, the tracked collection becomes the union of the
// given elements, and a layout restricted to that collection starts.
func (c *Coordinator) SetCompact(elems []entity.ID, edges []*entity.Edge) error {
	if !c.active {
		return nil
	}

	if elems == nil && edges == nil {
		c.exitCompact()
		return nil
	}

	c.stopRun()
	c.view.SetNavigation(false)
	c.compact = true
	c.compactElems = slices.Clone(elems)
	c.compactEdges = slices.Clone(edges)

	return c.startRun(slices.Clone(c.compactElems), nil)
}

// CompactEdges returns the edge subset tracked by compact mode, for
// consumers that restrict drawing or interaction to it.
func (c *Coordinator) CompactEdges() []*entity.Edge { return slices.Clone(c.compactEdges) }

func (c *Coordinator) exitCompact() {
	c.stopRun()
	c.view.SetNavigation(true)
	c.compact = false
	c.compactElems = nil
	c.compactEdges = nil
}

// anchorPosition resolves the expansion anchor's position: live position
// when the view knows the element, the model position when only the model
// does, the canvas center otherwise.
func (c *Coordinator) anchorPosition(id entity.ID) entity.Point {
	if pos, ok := c.view.Position(id); ok {
		return pos
	}
	if e, ok := c.graph.Elem(id); ok {
		return e.Position()
	}
	return c.view.Center()
}

// expansionFixedSet pins everything that existed before the expansion.
// The set deliberately starts from all currently present elements, not
// just the animate-target collection, then removes the expansion's delta:
// the revealed nodes, the anchor, and a group the expansion itself just
// synthesized.
func (c *Coordinator) expansionFixedSet(exp Expansion, created entity.ID) map[entity.ID]struct{} {
	fixed := make(map[entity.ID]struct{})
	for _, n := range c.graph.Nodes() {
		fixed[n.ID()] = struct{}{}
	}
	for _, grp := range c.graph.Groups() {
		fixed[grp.ID()] = struct{}{}
	}
	for _, n := range exp.Nodes {
		delete(fixed, n.ID())
	}
	delete(fixed, exp.Anchor)
	if created != "" {
		delete(fixed, created)
	}
	return fixed
}

// animateTarget returns the element collection a run should move: the
// compact subset while compact mode is active, the whole visible graph
// otherwise.
func (c *Coordinator) animateTarget() []entity.ID {
	if c.compact {
		return slices.Clone(c.compactElems)
	}
	return c.wholeGraph()
}

func (c *Coordinator) wholeGraph() []entity.ID {
	elems := c.graph.VisibleElems()
	ids := make([]entity.ID, len(elems))
	for i, e := range elems {
		ids[i] = e.ID()
	}
	return ids
}

// fixedPredicate builds the pin check for one run: an element is held
// fixed when its ID is in the explicit fixed set, or, outside compact
// mode, when its own lock flag is set. Compact mode overrides individual
// locks: inside an isolated subset nothing else exists for the solver and
// everything in the subset should be movable.
func (c *Coordinator) fixedPredicate(fixed map[entity.ID]struct{}) func(entity.ID) bool {
	compact := c.compact
	return func(id entity.ID) bool {
		if _, ok := fixed[id]; ok {
			return true
		}
		if compact {
			return false
		}
		if e, ok := c.graph.Elem(id); ok {
			return e.Locked()
		}
		return false
	}
}

// startRun stops the previous engine handle and starts a new run over the
// given elements. The latest request always wins.
func (c *Coordinator) startRun(elements []entity.ID, fixed map[entity.ID]struct{}) error {
	c.stopRun()

	spec := RunSpec{
		Graph:       c.graph,
		Elements:    elements,
		Fixed:       c.fixedPredicate(fixed),
		NodeSpacing: c.opts.NodeSpacing,
		EdgeLength:  c.opts.EdgeLength,
		Animate:     c.opts.Animate,
	}

	handle, err := c.engine.Start(spec)
	if err != nil {
		return err
	}

	c.handle = handle
	c.runID = uuid.NewString()
	c.primed = true
	observability.Layout().OnRunStart(c.runID, len(elements), spec.Animate)
	return nil
}

// stopRun cancels the in-flight run, if any. At most one engine handle is
// live at a time and the coordinator owns it exclusively.
func (c *Coordinator) stopRun() {
	if c.handle == nil {
		return
	}
	c.handle.Stop()
	observability.Layout().OnRunCancel(c.runID)
	c.handle = nil
	c.runID = ""
}

// awaitMount suspends until the renderer completes one rendering tick, so
// seeded elements are safely queryable. The wait is cancellable through
// the context; callers re-check the active flag after resuming.
func (c *Coordinator) awaitMount(ctx context.Context) error {
	select {
	case <-c.view.NextTick():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
