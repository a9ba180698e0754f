package entity

import (
	"maps"
	"slices"
)

// Edge is a directed relation between two nodes of one edge type. Class
// labels carry styling/semantic tags; the summarization pass intersects
// them across all real edges behind one group edge.
type Edge struct {
	from    ID
	to      ID
	typ     string
	classes map[string]struct{}
	visible bool
}

// From returns the source node ID.
func (e *Edge) From() ID { return e.from }

// To returns the target node ID.
func (e *Edge) To() ID { return e.to }

// Type returns the edge-kind tag.
func (e *Edge) Type() string { return e.typ }

// Visible reports whether the edge should currently be drawn.
func (e *Edge) Visible() bool { return e.visible }

// SetVisible sets the edge's visibility flag.
func (e *Edge) SetVisible(v bool) { e.visible = v }

// Classes returns the edge's class labels in sorted order.
func (e *Edge) Classes() []string {
	return slices.Sorted(maps.Keys(e.classes))
}

// HasClass reports whether the edge carries the given class label.
func (e *Edge) HasClass(class string) bool {
	_, ok := e.classes[class]
	return ok
}

// AddClass adds a class label to the edge.
func (e *Edge) AddClass(class string) {
	if e.classes == nil {
		e.classes = make(map[string]struct{})
	}
	e.classes[class] = struct{}{}
}

// EdgeKey is the derived identity of a [GroupEdge]: source, target and edge
// type. Two summarization passes over the same underlying edges produce
// group edges with equal keys, which is what allows the cache to hand back
// the previously reported instance.
type EdgeKey struct {
	From ID
	To   ID
	Type string
}

// GroupEdge is a derived, synthetic edge summarizing all real edges of one
// type between a group and one counterpart. Instances are owned by the
// group's aggregation cache and are never persisted independently.
type GroupEdge struct {
	from    ID
	to      ID
	typ     string
	classes map[string]struct{}
}

// From returns the summarized edge's source ID (a group or a node).
func (e *GroupEdge) From() ID { return e.from }

// To returns the summarized edge's target ID (a group or a node).
func (e *GroupEdge) To() ID { return e.to }

// Type returns the edge-kind tag shared by all underlying edges.
func (e *GroupEdge) Type() string { return e.typ }

// Key returns the derived identity of the group edge.
func (e *GroupEdge) Key() EdgeKey { return EdgeKey{From: e.from, To: e.to, Type: e.typ} }

// Classes returns the intersected class labels in sorted order: a class
// present on some but not all underlying edges is dropped.
func (e *GroupEdge) Classes() []string {
	return slices.Sorted(maps.Keys(e.classes))
}

// intersect narrows the class set to labels also present on the given edge.
// The first contributing edge initializes the set.
func (e *GroupEdge) intersect(real *Edge) {
	if e.classes == nil {
		e.classes = maps.Clone(real.classes)
		if e.classes == nil {
			e.classes = make(map[string]struct{})
		}
		return
	}
	for class := range e.classes {
		if _, ok := real.classes[class]; !ok {
			delete(e.classes, class)
		}
	}
}
