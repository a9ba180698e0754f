package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/graphio"
	"github.com/nodescape/nodescape/pkg/render"
)

// exportCommand creates the export command for rendering sessions as DOT
// or SVG.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output    string
		format    string
		classes   bool
		positions bool
	)

	cmd := &cobra.Command{
		Use:   "export [session.json]",
		Short: "Render the summarized visible graph as DOT or SVG",
		Long: `Render the summarized visible graph as DOT or SVG.

Grouped nodes collapse into their group vertex; the edges drawn between a
group and the rest of the graph are the aggregated group edges with
intersected class labels, exactly as the explorer reports them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(args[0], output, format, classes, positions)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg (default), dot")
	cmd.Flags().BoolVar(&classes, "classes", false, "show intersected class labels on group edges")
	cmd.Flags().BoolVar(&positions, "positions", false, "pin vertices to their session positions")

	return cmd
}

func (c *CLI) runExport(input, output, format string, classes, positions bool) error {
	g, err := graphio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load session %s: %w", input, err)
	}

	dot := render.ToDOT(g, render.Options{ShowClasses: classes, ShowPositions: positions})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want svg or dot)", format)
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + "." + format
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), len(g.Groups()))

	return nil
}
