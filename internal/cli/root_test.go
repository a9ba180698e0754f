package cli

import (
	"os"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandStructure(t *testing.T) {
	c := New(os.Stderr, log.InfoLevel)
	root := c.RootCommand()

	if root.Use != "nodescape" {
		t.Errorf("root use = %q, want nodescape", root.Use)
	}

	want := []string{"layout", "export", "snapshot", "options", "serve", "monitor", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(os.Stderr, log.InfoLevel)
	c.SetLogLevel(log.DebugLevel)

	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestSnapshotDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	dir, err := snapshotDir()
	if err != nil {
		t.Fatalf("snapshotDir: %v", err)
	}
	if dir != "/custom/data/nodescape/snapshots" {
		t.Errorf("dir = %q, want XDG-based path", dir)
	}
}
