// Package render exports the summarized visible graph as Graphviz DOT and
// rasterizes it to SVG. Groups collapse to one vertex; the edges shown
// between a group and the rest of the graph are the aggregated group edges,
// not the underlying real edges.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/nodescape/nodescape/pkg/entity"
)

// Options configures DOT export.
type Options struct {
	// ShowClasses appends the intersected class labels to group-edge
	// labels. Real edges always show their type only.
	ShowClasses bool

	// ShowPositions pins vertices to their live canvas positions using
	// pos attributes, for rendering with a position-respecting engine.
	ShowPositions bool
}

// ToDOT converts the visible portion of an arena to Graphviz DOT. Grouped
// nodes are absorbed into their group vertex; edges touching a group are
// the summarized aggregates. The resulting DOT string can be rendered with
// [RenderSVG].
func ToDOT(g *entity.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		if !n.Visible() || n.Grouped() {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", string(n.ID()))}
		if n.Locked() {
			attrs = append(attrs, "penwidth=2")
		}
		if opts.ShowPositions {
			attrs = append(attrs, posAttr(n.Position()))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(n.ID()), strings.Join(attrs, ", "))
	}

	for _, grp := range g.Groups() {
		if !grp.Visible() {
			continue
		}
		label := fmt.Sprintf("%s (%d)", string(grp.ID()), grp.MemberCount())
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			"shape=folder",
			"style=\"filled\"",
			"fillcolor=lightgrey",
		}
		if opts.ShowPositions {
			attrs = append(attrs, posAttr(grp.Position()))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", string(grp.ID()), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	writeEdges(&buf, g, opts)

	buf.WriteString("}\n")
	return buf.String()
}

// writeEdges emits every visible relation exactly once: real edges between
// ungrouped endpoints, each group's outgoing aggregates (covering
// group-to-node and group-to-group), and each group's incoming aggregates
// from ungrouped sources.
func writeEdges(buf *bytes.Buffer, g *entity.Graph, opts Options) {
	for _, e := range g.Edges() {
		if !e.Visible() {
			continue
		}
		from, ok := g.Node(e.From())
		if !ok || !from.Visible() || from.Grouped() {
			continue
		}
		to, ok := g.Node(e.To())
		if !ok || !to.Visible() || to.Grouped() {
			continue
		}
		fmt.Fprintf(buf, "  %q -> %q%s;\n", string(e.From()), string(e.To()), edgeAttrs(e.Type(), nil, false))
	}

	for _, grp := range g.Groups() {
		if !grp.Visible() {
			continue
		}
		for _, ge := range g.AggregatedEdges(grp, entity.Outgoing) {
			fmt.Fprintf(buf, "  %q -> %q%s;\n", string(ge.From()), string(ge.To()),
				edgeAttrs(ge.Type(), ge.Classes(), opts.ShowClasses))
		}
		for _, ge := range g.AggregatedEdges(grp, entity.Incoming) {
			fmt.Fprintf(buf, "  %q -> %q%s;\n", string(ge.From()), string(ge.To()),
				edgeAttrs(ge.Type(), ge.Classes(), opts.ShowClasses))
		}
	}
}

func edgeAttrs(typ string, classes []string, showClasses bool) string {
	label := typ
	if showClasses && len(classes) > 0 {
		label += " [" + strings.Join(classes, ",") + "]"
	}
	if label == "" {
		return ""
	}
	return fmt.Sprintf(" [label=%q]", label)
}

func posAttr(p entity.Point) string {
	// Graphviz Y grows upward; the canvas Y grows downward.
	return fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X, -p.Y)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
