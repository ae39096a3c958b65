// Package artifact stores per-run debug dumps of intermediate results.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Artifact names written by a docket run.
const (
	CombinedText    = "combined_text.txt"
	AllLinks        = "all_links.json"
	FinalDocketList = "final_docket_list.json"
)

// Sink receives named artifacts for a run.
type Sink interface {
	Put(runID, name string, data []byte) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Put(string, string, []byte) error { return nil }

// Dir writes each artifact to <Root>/<runID>/<name>.
type Dir struct {
	Root string
}

func (d Dir) Put(runID, name string, data []byte) error {
	dir := filepath.Join(d.Root, cleanSegment(runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, cleanSegment(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}
	return nil
}

// New returns a Dir sink for root, or Nop when root is empty.
func New(root string) Sink {
	if root == "" {
		return Nop{}
	}
	return Dir{Root: root}
}

// PutJSON writes v as indented JSON.
func PutJSON(s Sink, runID, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", name, err)
	}
	return s.Put(runID, name, data)
}

// cleanSegment keeps a value to a single path element.
func cleanSegment(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" || s == "." {
		s = "unnamed"
	}
	return s
}

type runIDKey struct{}

// WithRunID attaches a run ID to ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID carried by ctx, or a fresh UUID.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
