package layout

import "github.com/nodescape/nodescape/pkg/entity"

// RunSpec is the invocation contract between the coordinator and a
// force-directed engine.
type RunSpec struct {
	// Graph is the arena whose element positions the engine reads and
	// writes.
	Graph *entity.Graph

	// Elements are the IDs the engine may move. The engine must not touch
	// any element outside this collection.
	Elements []entity.ID

	// Fixed reports whether an element is pinned for this run. A nil
	// predicate pins nothing. Fixed elements still exert forces but never
	// move.
	Fixed func(entity.ID) bool

	// NodeSpacing is the minimal spacing the engine should maintain
	// between elements.
	NodeSpacing float64

	// EdgeLength is the target resting length of edges.
	EdgeLength float64

	// Animate runs the engine's own animation loop toward the result;
	// when false the engine may snap elements to their final positions.
	Animate bool
}

// Handle is a running engine invocation. The coordinator owns at most one
// live handle at a time and always stops the previous one before starting
// the next.
type Handle interface {
	// Stop cancels the run. It must be safe to call more than once and
	// after the run has already come to rest.
	Stop()
}

// Engine is the external force-directed solver as the coordinator sees it:
// an opaque constructor of cancellable runs. Its internal physics are not
// part of this contract.
type Engine interface {
	// Start begins a run over the given spec and returns its handle.
	Start(spec RunSpec) (Handle, error)
}

// View is the rendering surface the coordinator drives. Mounting a seeded
// element is asynchronous relative to the coordinator's own state changes:
// the element exists in the model one rendering tick before its visual
// element exists, so the coordinator waits for a tick before querying live
// positions.
type View interface {
	// NextTick returns a channel that receives (or closes) once the next
	// rendering pass after the call has completed.
	NextTick() <-chan struct{}

	// Position returns the live canvas position of a mounted element.
	Position(id entity.ID) (entity.Point, bool)

	// Center returns the current canvas center, used as the fallback
	// anchor when no better position is known.
	Center() entity.Point

	// SetNavigation enables or disables pan, zoom and box selection.
	// Compact mode disables navigation while an isolated subset is
	// animated.
	SetNavigation(enabled bool)
}
