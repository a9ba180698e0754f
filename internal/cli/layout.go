package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/graphio"
	"github.com/nodescape/nodescape/pkg/layout"
	"github.com/nodescape/nodescape/pkg/layout/forcedir"
)

// layoutCommand creates the layout command for computing element positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		spacing    float64
		edgeLength float64
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "layout [session.json]",
		Short: "Compute element positions for an exported session",
		Long: `Compute element positions for an exported session.

The layout command takes a session.json file (produced by the explorer's
export or by 'snapshot load') and runs the force-directed engine to rest
over every visible element. Locked elements keep their positions. The
result is written back as a session file with updated positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, spacing, edgeLength, iterations)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "minimal element spacing (default: from options file)")
	cmd.Flags().Float64Var(&edgeLength, "edge-length", 0, "target edge resting length (default: from options file)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "integration steps until rest")

	return cmd
}

// runLayout loads the session, runs a snap layout, and writes the output.
func (c *CLI) runLayout(ctx context.Context, input, output string, spacing, edgeLength float64, iterations int) error {
	g, err := graphio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load session %s: %w", input, err)
	}

	opts := c.loadOptions()
	opts.Animate = false // snap to rest, no animation loop
	if spacing > 0 {
		opts.NodeSpacing = spacing
	}
	if edgeLength > 0 {
		opts.EdgeLength = edgeLength
	}

	engine := forcedir.New(forcedir.Config{Iterations: iterations})
	coord := layout.NewCoordinator(g, newHeadlessView(g), engine, &opts)
	coord.Activate()
	defer coord.Deactivate()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	if err := coord.Run(); err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d elements", len(g.VisibleElems())))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graphio.WriteFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), len(g.Groups()))
	printNewline()
	printNextStep("Render", "nodescape export "+outputPath)

	return nil
}

// headlessView satisfies the coordinator's view contract without a
// renderer: every element counts as mounted immediately, positions come
// straight from the model, and navigation toggles are ignored.
type headlessView struct {
	graph *entity.Graph
	tick  chan struct{}
}

func newHeadlessView(g *entity.Graph) *headlessView {
	tick := make(chan struct{})
	close(tick)
	return &headlessView{graph: g, tick: tick}
}

// NextTick resolves immediately; there is no rendering pass to wait for.
func (v *headlessView) NextTick() <-chan struct{} {
	v.mountAll()
	return v.tick
}

func (v *headlessView) mountAll() {
	for _, n := range v.graph.Nodes() {
		if !n.Mounted() {
			n.Mount()
		}
	}
	for _, grp := range v.graph.Groups() {
		if !grp.Mounted() {
			grp.Mount()
		}
	}
}

func (v *headlessView) Position(id entity.ID) (entity.Point, bool) {
	e, ok := v.graph.Elem(id)
	if !ok || !e.Mounted() {
		return entity.Point{}, false
	}
	return e.Position(), true
}

// Center returns the centroid of the visible elements, or the origin for
// an empty session.
func (v *headlessView) Center() entity.Point {
	elems := v.graph.VisibleElems()
	if len(elems) == 0 {
		return entity.Point{}
	}
	var center entity.Point
	for _, e := range elems {
		p := e.Position()
		center.X += p.X
		center.Y += p.Y
	}
	center.X /= float64(len(elems))
	center.Y /= float64(len(elems))
	return center
}

func (v *headlessView) SetNavigation(bool) {}

var _ layout.View = (*headlessView)(nil)
