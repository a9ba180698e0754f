package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/graphio"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage saved session snapshots",
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotLoadCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())
	cmd.AddCommand(c.snapshotPathCommand())

	return cmd
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "save <name> <session.json>",
		Short: "Store a session file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, input := args[0], args[1]

			// Validate the session before persisting it.
			g, err := graphio.ReadFile(input)
			if err != nil {
				return fmt.Errorf("load session %s: %w", input, err)
			}
			data, err := graphio.Marshal(g)
			if err != nil {
				return fmt.Errorf("serialize session: %w", err)
			}

			s, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Set(cmd.Context(), name, data); err != nil {
				return fmt.Errorf("store snapshot %s: %w", name, err)
			}
			printSuccess("Saved snapshot %q", name)
			printStats(g.NodeCount(), g.EdgeCount(), len(g.Groups()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// snapshotLoadCommand creates the "snapshot load" subcommand.
func (c *CLI) snapshotLoadCommand() *cobra.Command {
	var (
		flags  storeFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Write a stored snapshot back to a session file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			s, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := s.Get(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", name, err)
			}

			outputPath := output
			if outputPath == "" {
				outputPath = name + ".json"
			}
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", outputPath, err)
			}
			printSuccess("Loaded snapshot %q", name)
			printFile(outputPath)
			printNewline()
			printNextStep("Lay out", "nodescape layout "+outputPath)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.json)")
	return cmd
}

// snapshotListCommand creates the "snapshot list" subcommand.
func (c *CLI) snapshotListCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if len(names) == 0 {
				printInfo("No snapshots stored")
				return nil
			}
			for _, name := range names {
				printDetail("%s", name)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	var flags storeFlags
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete snapshot %s: %w", args[0], err)
			}
			printSuccess("Deleted snapshot %q", args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// snapshotPathCommand creates the "snapshot path" subcommand.
func (c *CLI) snapshotPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := snapshotDir()
			if err != nil {
				return fmt.Errorf("get snapshot dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
