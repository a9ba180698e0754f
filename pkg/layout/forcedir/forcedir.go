// Package forcedir provides the built-in force-directed engine behind the
// [layout.Engine] contract: spring forces along edges, pairwise repulsion,
// and a weak centering pull, integrated with velocity damping.
//
// The engine moves only the elements named by the run spec and never any
// other element. Pinned elements still exert forces on their neighbors but
// keep their positions. While a run is live the engine owns position
// writes for its element collection; callers stop the run before mutating
// positions themselves.
package forcedir

import (
	"math"
	"sync"
	"time"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/layout"
)

// Config tunes the simulation. Zero values fall back to defaults.
type Config struct {
	Repulsion  float64 // pairwise repulsion strength (default 2000)
	Stiffness  float64 // spring stiffness (default 0.05)
	Gravity    float64 // centering pull toward the collection centroid (default 0.01)
	Damping    float64 // velocity retention per step (default 0.85)
	Iterations int     // integration steps until rest (default 300)

	// TickInterval paces animated runs. Snap runs ignore it and integrate
	// to rest synchronously. Default 16ms.
	TickInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Repulsion == 0 {
		c.Repulsion = 2000
	}
	if c.Stiffness == 0 {
		c.Stiffness = 0.05
	}
	if c.Gravity == 0 {
		c.Gravity = 0.01
	}
	if c.Damping == 0 {
		c.Damping = 0.85
	}
	if c.Iterations == 0 {
		c.Iterations = 300
	}
	if c.TickInterval == 0 {
		c.TickInterval = 16 * time.Millisecond
	}
	return c
}

// Engine is a reusable force-directed solver. Each Start call creates an
// independent run.
type Engine struct {
	cfg Config
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// body is one movable or pinned element inside a simulation.
type body struct {
	elem   entity.Elem
	pos    entity.Point
	vx, vy float64
	pinned bool
}

// spring connects two bodies whose underlying nodes share an edge.
type spring struct {
	a, b int
	rest float64
}

// Start begins a run. Snap runs (Animate false) integrate to rest before
// returning; animated runs step on their own goroutine until rest or Stop.
func (e *Engine) Start(spec layout.RunSpec) (layout.Handle, error) {
	sim := newSimulation(e.cfg, spec)

	r := &run{stop: make(chan struct{}), done: make(chan struct{})}

	if !spec.Animate {
		for i := 0; i < e.cfg.Iterations; i++ {
			sim.step()
		}
		sim.writeBack()
		close(r.done)
		return r, nil
	}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(e.cfg.TickInterval)
		defer ticker.Stop()

		for i := 0; i < e.cfg.Iterations; i++ {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				sim.step()
				sim.writeBack()
			}
		}
	}()

	return r, nil
}

// run is the cancellable handle of one engine invocation.
type run struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop cancels the run and waits for the stepping goroutine to exit, so
// no write-back can land after Stop returns. The wait is for the stop to
// be acknowledged, never for the run to reach rest. Safe to call
// repeatedly and after rest.
func (r *run) Stop() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}

// Done exposes run completion for tests and callers that need to join.
func (r *run) Done() <-chan struct{} { return r.done }

type simulation struct {
	cfg     Config
	bodies  []*body
	index   map[entity.ID]int
	springs []spring
	spacing float64
	center  entity.Point
}

func newSimulation(cfg Config, spec layout.RunSpec) *simulation {
	sim := &simulation{
		cfg:     cfg,
		index:   make(map[entity.ID]int),
		spacing: spec.NodeSpacing,
	}
	if sim.spacing <= 0 {
		sim.spacing = layout.DefaultSpacing
	}

	for _, id := range spec.Elements {
		elem, ok := spec.Graph.Elem(id)
		if !ok {
			continue
		}
		pinned := spec.Fixed != nil && spec.Fixed(id)
		sim.index[id] = len(sim.bodies)
		sim.bodies = append(sim.bodies, &body{elem: elem, pos: elem.Position(), pinned: pinned})
	}

	// The collection centroid anchors the weak centering pull so the
	// subset does not drift across the canvas.
	for _, b := range sim.bodies {
		sim.center.X += b.pos.X
		sim.center.Y += b.pos.Y
	}
	if n := float64(len(sim.bodies)); n > 0 {
		sim.center.X /= n
		sim.center.Y /= n
	}

	rest := spec.EdgeLength
	if rest <= 0 {
		rest = 2.5 * sim.spacing
	}
	sim.buildSprings(spec.Graph, rest)
	return sim
}

// buildSprings maps each real edge onto the element collection: an
// endpoint is represented by itself when present, otherwise by its group
// when that is present. Edges with a missing or identical representative
// contribute nothing.
func (sim *simulation) buildSprings(g *entity.Graph, rest float64) {
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges() {
		if !e.Visible() {
			continue
		}
		a, ok := sim.represent(g, e.From())
		if !ok {
			continue
		}
		b, ok := sim.represent(g, e.To())
		if !ok || a == b {
			continue
		}
		key := [2]int{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		sim.springs = append(sim.springs, spring{a: a, b: b, rest: rest})
	}
}

func (sim *simulation) represent(g *entity.Graph, id entity.ID) (int, bool) {
	if i, ok := sim.index[id]; ok {
		return i, true
	}
	if n, ok := g.Node(id); ok && n.Grouped() {
		if i, ok := sim.index[n.GroupID()]; ok {
			return i, true
		}
	}
	return 0, false
}

// step advances the integration by one tick.
func (sim *simulation) step() {
	n := len(sim.bodies)

	fx := make([]float64, n)
	fy := make([]float64, n)

	// Pairwise repulsion. Pinned bodies push but do not move.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := sim.bodies[i].pos.X - sim.bodies[j].pos.X
			dy := sim.bodies[i].pos.Y - sim.bodies[j].pos.Y
			distSq := dx*dx + dy*dy
			if distSq < 0.01 {
				// Coincident bodies: nudge apart deterministically.
				dx, dy, distSq = 0.1, 0.1, 0.02
			}
			f := sim.cfg.Repulsion / distSq
			dist := math.Sqrt(distSq)
			fx[i] += f * dx / dist
			fy[i] += f * dy / dist
			fx[j] -= f * dx / dist
			fy[j] -= f * dy / dist
		}
	}

	// Springs along mapped edges.
	for _, s := range sim.springs {
		a, b := sim.bodies[s.a], sim.bodies[s.b]
		dx := b.pos.X - a.pos.X
		dy := b.pos.Y - a.pos.Y
		dist := math.Hypot(dx, dy)
		if dist < 0.01 {
			dist = 0.01
		}
		f := sim.cfg.Stiffness * (dist - s.rest)
		fx[s.a] += f * dx / dist
		fy[s.a] += f * dy / dist
		fx[s.b] -= f * dx / dist
		fy[s.b] -= f * dy / dist
	}

	// Weak centering pull plus integration.
	for i, b := range sim.bodies {
		if b.pinned {
			continue
		}
		fx[i] += sim.cfg.Gravity * (sim.center.X - b.pos.X)
		fy[i] += sim.cfg.Gravity * (sim.center.Y - b.pos.Y)

		b.vx = (b.vx + fx[i]) * sim.cfg.Damping
		b.vy = (b.vy + fy[i]) * sim.cfg.Damping

		// Cap the step so a near-singular repulsion cannot fling a body.
		speed := math.Hypot(b.vx, b.vy)
		if limit := sim.spacing; speed > limit {
			b.vx *= limit / speed
			b.vy *= limit / speed
		}

		b.pos.X += b.vx
		b.pos.Y += b.vy
	}
}

// writeBack publishes simulated positions to the arena. Pinned elements
// are never written.
func (sim *simulation) writeBack() {
	for _, b := range sim.bodies {
		if b.pinned {
			continue
		}
		b.elem.SetPosition(b.pos)
	}
}
