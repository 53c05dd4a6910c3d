package graph

import (
	"context"
	"io"
)

// Store is the interface for the documentation graph backend.
// Implementations: KuzuStore (persistent index), MemStore (testing and
// CGO-free builds). All index access goes through this interface.
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Reset drops all node and edge data, keeping the schema. Rebuild calls
	// it so the index never accumulates stale rows.
	Reset(ctx context.Context) error

	// Write operations.
	AddDoc(ctx context.Context, node DocNode) error
	AddFile(ctx context.Context, node FileNode) error
	AddSymbol(ctx context.Context, node SymbolNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetDoc(ctx context.Context, anchor string) (*DocNode, error)
	ListDocs(ctx context.Context, level string) ([]DocNode, error)
	ListFiles(ctx context.Context) ([]FileNode, error)
	ListSymbols(ctx context.Context) ([]SymbolNode, error)
	FindSymbols(ctx context.Context, query string, limit int) ([]SymbolNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}
