package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nodescape/nodescape/pkg/buildinfo"
	"github.com/nodescape/nodescape/pkg/options"
	"github.com/nodescape/nodescape/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "nodescape"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "nodescape",
		Short:        "Nodescape summarizes and lays out interactive node-link graphs",
		Long:         `Nodescape is the computation core of an interactive graph explorer: it summarizes grouped subgraphs into aggregate vertices and computes constrained force-directed layouts for them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.optionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.monitorCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// storeFlags configures which snapshot backend a command talks to.
type storeFlags struct {
	dir      string
	redis    string
	mongoURI string
	none     bool
}

// register adds the shared backend flags to a command.
func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "snapshot directory (default: ~/.local/share/nodescape/snapshots)")
	cmd.Flags().StringVar(&f.redis, "redis", "", "redis address (host:port); overrides --dir")
	cmd.Flags().StringVar(&f.mongoURI, "mongo", "", "mongodb connection URI; overrides --dir")
	cmd.Flags().BoolVar(&f.none, "no-store", false, "disable persistence")
}

// open creates the configured store backend. Precedence: --no-store,
// --redis, --mongo, then the file backend.
func (f *storeFlags) open(ctx context.Context) (store.Store, error) {
	switch {
	case f.none:
		return store.NewNullStore(), nil
	case f.redis != "":
		return store.NewRedisStore(ctx, store.RedisConfig{Addr: f.redis})
	case f.mongoURI != "":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: f.mongoURI})
	}

	dir := f.dir
	if dir == "" {
		var err error
		dir, err = snapshotDir()
		if err != nil {
			return store.NewNullStore(), nil
		}
	}
	return store.NewFileStore(dir)
}

// =============================================================================
// Options
// =============================================================================

// loadOptions reads the user's options file, falling back to the built-in
// defaults when the file is missing or unreadable.
func (c *CLI) loadOptions() options.Options {
	path, err := options.DefaultPath()
	if err != nil {
		return options.Defaults()
	}
	opts, err := options.Load(path)
	if err != nil {
		c.Logger.Warn("falling back to default options", "err", err)
		return options.Defaults()
	}
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// snapshotDir returns the snapshot directory using the XDG data standard
// (~/.local/share/nodescape/snapshots).
func snapshotDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "snapshots"), nil
}
