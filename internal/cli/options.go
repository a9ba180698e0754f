package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/options"
)

// optionsCommand creates the options management command.
func (c *CLI) optionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change persisted explorer options",
	}

	cmd.AddCommand(c.optionsShowCommand())
	cmd.AddCommand(c.optionsSetCommand())
	cmd.AddCommand(c.optionsResetCommand())
	cmd.AddCommand(c.optionsPathCommand())

	return cmd
}

// optionsShowCommand creates the "options show" subcommand.
func (c *CLI) optionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective option values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.loadOptions()
			printKeyValue("animate", strconv.FormatBool(opts.Animate))
			printKeyValue("do_layout_after_reposition", strconv.FormatBool(opts.DoLayoutAfterReposition))
			printKeyValue("expansion_only_those", strconv.FormatBool(opts.ExpansionOnlyThose))
			printKeyValue("group_expansion", strconv.FormatBool(opts.GroupExpansion))
			printKeyValue("expansion_group_limit", strconv.Itoa(opts.ExpansionGroupLimit))
			printKeyValue("node_spacing", strconv.FormatFloat(opts.NodeSpacing, 'f', -1, 64))
			printKeyValue("edge_length", strconv.FormatFloat(opts.EdgeLength, 'f', -1, 64))
			return nil
		},
	}
}

// optionsSetCommand creates the "options set" subcommand.
func (c *CLI) optionsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one option and persist the record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			opts := c.loadOptions()
			if err := setOption(&opts, key, value); err != nil {
				return err
			}

			path, err := options.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolve options path: %w", err)
			}
			if err := options.Save(opts, path); err != nil {
				return err
			}
			printSuccess("Set %s = %s", key, value)
			printFile(path)
			return nil
		},
	}
}

// optionsResetCommand creates the "options reset" subcommand.
func (c *CLI) optionsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := options.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolve options path: %w", err)
			}
			if err := options.Save(options.Defaults(), path); err != nil {
				return err
			}
			printSuccess("Options reset to defaults")
			printFile(path)
			return nil
		},
	}
}

// optionsPathCommand creates the "options path" subcommand.
func (c *CLI) optionsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the options file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := options.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolve options path: %w", err)
			}
			fmt.Println(path)
			return nil
		},
	}
}

// setOption applies one key=value change to the record. Keys use the
// snake_case names of the options file.
func setOption(opts *options.Options, key, value string) error {
	switch key {
	case "animate", "do_layout_after_reposition", "expansion_only_those", "group_expansion":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option %s wants a boolean, got %q", key, value)
		}
		switch key {
		case "animate":
			opts.Animate = b
		case "do_layout_after_reposition":
			opts.DoLayoutAfterReposition = b
		case "expansion_only_those":
			opts.ExpansionOnlyThose = b
		case "group_expansion":
			opts.GroupExpansion = b
		}
	case "node_spacing", "edge_length":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("option %s wants a positive number, got %q", key, value)
		}
		if key == "node_spacing" {
			opts.NodeSpacing = f
		} else {
			opts.EdgeLength = f
		}
	case "expansion_group_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("option %s wants a non-negative integer, got %q", key, value)
		}
		opts.ExpansionGroupLimit = n
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}
