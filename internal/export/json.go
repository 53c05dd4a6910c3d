package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/codemap/internal/graph"
)

// ExportVersion is bumped whenever the JSON layout changes.
const ExportVersion = 1

// MapExport is the top-level JSON export structure.
type MapExport struct {
	Version    int                `json:"version"`
	ExportedAt string             `json:"exportedAt"`
	Stats      *graph.GraphStats  `json:"stats"`
	Docs       []graph.DocNode    `json:"docs,omitempty"`
	Files      []graph.FileNode   `json:"files,omitempty"`
	Symbols    []graph.SymbolNode `json:"symbols,omitempty"`
	Edges      []graph.Edge       `json:"edges,omitempty"`
}

// BuildExport snapshots the whole graph index into an export document.
func BuildExport(ctx context.Context, store graph.Store) (*MapExport, error) {
	docs, err := store.ListDocs(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	files, err := store.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	symbols, err := store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	return &MapExport{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      stats,
		Docs:       docs,
		Files:      files,
		Symbols:    symbols,
		Edges:      edges,
	}, nil
}

// WriteJSON streams an indented export of the graph index to w.
func WriteJSON(ctx context.Context, store graph.Store, w io.Writer) error {
	exp, err := BuildExport(ctx, store)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}
