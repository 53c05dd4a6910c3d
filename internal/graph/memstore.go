package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu      sync.RWMutex
	docs    map[string]DocNode    // key: anchor
	files   map[string]FileNode   // key: path
	symbols map[string]SymbolNode // key: SymbolID
	edges   []Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		docs:    make(map[string]DocNode),
		files:   make(map[string]FileNode),
		symbols: make(map[string]SymbolNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Reset drops all stored nodes and edges.
func (m *MemStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]DocNode)
	m.files = make(map[string]FileNode)
	m.symbols = make(map[string]SymbolNode)
	m.edges = nil
	return nil
}

// AddDoc stores a document node keyed by its anchor.
func (m *MemStore) AddDoc(_ context.Context, node DocNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[node.Anchor] = node
	return nil
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddSymbol stores a symbol node keyed by its ID.
func (m *MemStore) AddSymbol(_ context.Context, node SymbolNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[node.ID] = node
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetDoc returns the document node for the given anchor, or nil if not found.
func (m *MemStore) GetDoc(_ context.Context, anchor string) (*DocNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[anchor]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// ListDocs returns document nodes at the given level, sorted by path.
// An empty level returns every document.
func (m *MemStore) ListDocs(_ context.Context, level string) ([]DocNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []DocNode
	for _, d := range m.docs {
		if level == "" || d.Level == level {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ListFiles returns every file node, sorted by path.
func (m *MemStore) ListFiles(_ context.Context) ([]FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileNode, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ListSymbols returns every symbol node, sorted by ID.
func (m *MemStore) ListSymbols(_ context.Context) ([]SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SymbolNode, 0, len(m.symbols))
	for _, s := range m.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindSymbols returns symbols whose name contains query (case-insensitive),
// sorted by ID, up to limit results. A limit <= 0 returns all matches.
func (m *MemStore) FindSymbols(_ context.Context, query string, limit int) ([]SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []SymbolNode
	for _, sym := range m.symbols {
		if strings.Contains(strings.ToLower(sym.Name), lowerQuery) {
			results = append(results, sym)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns counts of all node and edge types in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		DocCount:    len(m.docs),
		FileCount:   len(m.files),
		SymbolCount: len(m.symbols),
		EdgeCount:   len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
