// Package graphio serializes explorer sessions to and from JSON. The
// snapshot format carries nodes, groups with their memberships, edges with
// class labels, and element positions; aggregation caches are derived and
// rebuilt on demand after import.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nodescape/nodescape/pkg/entity"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal converts an arena to JSON bytes. Nodes and groups are sorted by
// ID for deterministic output.
func Marshal(g *entity.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes an arena to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(g *entity.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(g, f)
}

// Write writes an arena as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(g *entity.Graph, w io.Writer) error {
	return writeTo(g, w)
}

// ReadFile reads a JSON file and returns the restored arena.
// Returns errors for malformed snapshots or membership violations.
func ReadFile(path string) (*entity.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON snapshot from an io.Reader into an arena.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (*entity.Graph, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(g *entity.Graph, w io.Writer) error {
	out := FromGraph(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*entity.Graph, error) {
	var data Snapshot
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(data)
}
