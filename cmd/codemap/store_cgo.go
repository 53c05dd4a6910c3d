//go:build cgo

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/graph"
)

// persistentIndex opens (creating if needed) the kuzu index at index_path.
// No index_path means no persistent index; generate then skips the rebuild.
func persistentIndex(cfg *config.Config) (graph.Store, func(), error) {
	if cfg.IndexPath == "" {
		return nil, func() {}, nil
	}
	if dir := filepath.Dir(cfg.IndexPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("index path: %w", err)
		}
	}
	store, err := graph.NewKuzuFileStore(cfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// openIndex opens an existing persistent index for reading.
func openIndex(cfg *config.Config) (graph.Store, func(), error) {
	if cfg.IndexPath == "" {
		return nil, nil, fmt.Errorf("no index_path configured in codemap.yml; set one and run 'codemap generate' to build the index")
	}
	if _, err := os.Stat(cfg.IndexPath); err != nil {
		return nil, nil, fmt.Errorf("no graph index at %s\nRun 'codemap generate' first to build it", cfg.IndexPath)
	}
	store, err := graph.NewKuzuFileStore(cfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// serviceStore picks the store the MCP service uses: the persistent index
// when configured, an in-memory one for the session otherwise.
func serviceStore(cfg *config.Config) (graph.Store, func(), error) {
	if cfg.IndexPath == "" {
		return graph.NewMemStore(), func() {}, nil
	}
	return persistentIndex(cfg)
}
