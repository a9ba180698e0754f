package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/entity"
	"github.com/nodescape/nodescape/pkg/graphio"
	"github.com/nodescape/nodescape/pkg/layout"
	"github.com/nodescape/nodescape/pkg/layout/forcedir"
	"github.com/nodescape/nodescape/pkg/options"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// monitorCommand creates the interactive session browser.
func (c *CLI) monitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor [session.json]",
		Short: "Browse and lay out a session interactively",
		Long: `Browse and lay out a session interactively.

Shows every element of the session with its position, lock flag and
visibility. Locks can be toggled per element; a layout run snaps the
unlocked elements to rest. Changes are written back on save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load session %s: %w", args[0], err)
			}

			opts := c.loadOptions()
			opts.Animate = false

			model := newSessionModel(g, args[0], &opts)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}

			if m, ok := final.(sessionModel); ok && m.dirty {
				if err := graphio.WriteFile(g, args[0]); err != nil {
					return fmt.Errorf("write session: %w", err)
				}
				printSuccess("Session saved")
				printFile(args[0])
			}
			return nil
		},
	}
	return cmd
}

// sessionModel is the bubbletea model of the session browser.
type sessionModel struct {
	graph *entity.Graph
	path  string
	opts  *options.Options

	elems  []entity.Elem
	cursor int
	height int
	offset int

	dirty  bool
	status string
}

func newSessionModel(g *entity.Graph, path string, opts *options.Options) sessionModel {
	return sessionModel{
		graph:  g,
		path:   path,
		opts:   opts,
		elems:  allElems(g),
		height: 15,
	}
}

// allElems lists every element, visible or not, nodes first.
func allElems(g *entity.Graph) []entity.Elem {
	var elems []entity.Elem
	for _, n := range g.Nodes() {
		elems = append(elems, n)
	}
	for _, grp := range g.Groups() {
		elems = append(elems, grp)
	}
	return elems
}

func (m sessionModel) Init() tea.Cmd {
	return nil
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.elems)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			if len(m.elems) > 0 {
				e := m.elems[m.cursor]
				toggleLock(m.graph, e.ID())
				m.dirty = true
				m.status = fmt.Sprintf("toggled lock on %s", e.ID())
			}
		case "l":
			if err := m.runLayout(); err != nil {
				m.status = "layout failed: " + err.Error()
			} else {
				m.dirty = true
				m.status = "layout complete"
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// runLayout snaps the session to rest with the current locks.
func (m *sessionModel) runLayout() error {
	coord := layout.NewCoordinator(m.graph, newHeadlessView(m.graph), forcedir.New(forcedir.Config{}), m.opts)
	coord.Activate()
	defer coord.Deactivate()
	return coord.Run()
}

func toggleLock(g *entity.Graph, id entity.ID) {
	if n, ok := g.Node(id); ok {
		n.SetLocked(!n.Locked())
		return
	}
	if grp, ok := g.Group(id); ok {
		grp.SetLocked(!grp.Locked())
	}
}

func (m sessionModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Session " + m.path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space lock  l layout  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.elems) {
		end = len(m.elems)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		e := m.elems[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		kind := "node"
		if e.IsGroup() {
			kind = "group"
		}

		locked := ""
		if e.Locked() {
			locked = "✓"
		}
		visible := ""
		if e.Visible() {
			visible = "✓"
		}

		p := e.Position()
		rows = append(rows, []string{
			cursor,
			string(e.ID()),
			kind,
			fmt.Sprintf("%.0f, %.0f", p.X, p.Y),
			locked,
			visible,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Element", "Kind", "Position", "Locked", "Visible").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.offset + row
			if actualIdx == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if actualIdx < len(m.elems) && !m.elems[actualIdx].Visible() {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(listDimStyle.Render("  " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.elems))))

	return b.String()
}
