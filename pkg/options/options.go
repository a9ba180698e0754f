// Package options holds the flat, persistable option record of the graph
// explorer core.
//
// The record is deliberately flat: seven recognized fields, saved and
// restored as a unit. [Options.Snapshot] returns an independent copy with
// no aliasing into live state; [Options.Restore] merges a partial record
// over the current values, leaving unspecified fields untouched and
// ignoring unknown keys, which keeps saved records forward and backward
// compatible.
package options

// Options is the flat record of recognized explorer options.
type Options struct {
	// DoLayoutAfterReposition runs a layout pass when a drag ends.
	DoLayoutAfterReposition bool `json:"doLayoutAfterReposition" toml:"do_layout_after_reposition" bson:"doLayoutAfterReposition"`

	// ExpansionOnlyThose restricts expansion layout to the newly revealed
	// elements by pinning everything else.
	ExpansionOnlyThose bool `json:"expansionOnlyThose" toml:"expansion_only_those" bson:"expansionOnlyThose"`

	// Animate animates layout runs instead of snapping to the result.
	Animate bool `json:"animate" toml:"animate" bson:"animate"`

	// NodeSpacing is the minimal spacing between nodes, in canvas units.
	// It also sets the ring distance used by seed placement.
	NodeSpacing float64 `json:"nodeSpacing" toml:"node_spacing" bson:"nodeSpacing"`

	// EdgeLength is the target edge length for the force-directed engine.
	EdgeLength float64 `json:"edgeLength" toml:"edge_length" bson:"edgeLength"`

	// GroupExpansion summarizes large expansions into a single group.
	GroupExpansion bool `json:"groupExpansion" toml:"group_expansion" bson:"groupExpansion"`

	// ExpansionGroupLimit is the member count at which an expansion is
	// summarized into a group instead of revealing individual nodes.
	ExpansionGroupLimit int `json:"expansionGroupLimit" toml:"expansion_group_limit" bson:"expansionGroupLimit"`
}

// Defaults returns the built-in option values.
func Defaults() Options {
	return Options{
		DoLayoutAfterReposition: true,
		ExpansionOnlyThose:      true,
		Animate:                 true,
		NodeSpacing:             100,
		EdgeLength:              250,
		GroupExpansion:          true,
		ExpansionGroupLimit:     10,
	}
}

// Snapshot returns a deep, independent copy of the record. The record is
// flat, so a value copy is a deep copy; the method exists so callers never
// hand out aliases to live state.
func (o *Options) Snapshot() Options { return *o }

// Partial is an options record where every field is optional. Nil fields
// are left untouched by [Options.Restore].
type Partial struct {
	DoLayoutAfterReposition *bool    `json:"doLayoutAfterReposition,omitempty" toml:"do_layout_after_reposition"`
	ExpansionOnlyThose      *bool    `json:"expansionOnlyThose,omitempty" toml:"expansion_only_those"`
	Animate                 *bool    `json:"animate,omitempty" toml:"animate"`
	NodeSpacing             *float64 `json:"nodeSpacing,omitempty" toml:"node_spacing"`
	EdgeLength              *float64 `json:"edgeLength,omitempty" toml:"edge_length"`
	GroupExpansion          *bool    `json:"groupExpansion,omitempty" toml:"group_expansion"`
	ExpansionGroupLimit     *int     `json:"expansionGroupLimit,omitempty" toml:"expansion_group_limit"`
}

// Restore merges the given fields over the current values. Unspecified
// fields keep their prior values.
func (o *Options) Restore(p Partial) {
	if p.DoLayoutAfterReposition != nil {
		o.DoLayoutAfterReposition = *p.DoLayoutAfterReposition
	}
	if p.ExpansionOnlyThose != nil {
		o.ExpansionOnlyThose = *p.ExpansionOnlyThose
	}
	if p.Animate != nil {
		o.Animate = *p.Animate
	}
	if p.NodeSpacing != nil {
		o.NodeSpacing = *p.NodeSpacing
	}
	if p.EdgeLength != nil {
		o.EdgeLength = *p.EdgeLength
	}
	if p.GroupExpansion != nil {
		o.GroupExpansion = *p.GroupExpansion
	}
	if p.ExpansionGroupLimit != nil {
		o.ExpansionGroupLimit = *p.ExpansionGroupLimit
	}
}
