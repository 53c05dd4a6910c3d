//go:build !cgo

package main

import (
	"fmt"
	"log"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/graph"
)

// Builds without cgo have no kuzu driver: the MCP service keeps a
// per-session in-memory index and the CLI query has nothing to open.

func persistentIndex(cfg *config.Config) (graph.Store, func(), error) {
	if cfg.IndexPath != "" {
		log.Printf("codemap: index_path is set but this build has no kuzu support; skipping the persistent index")
	}
	return nil, func() {}, nil
}

func openIndex(*config.Config) (graph.Store, func(), error) {
	return nil, nil, fmt.Errorf("graph index unavailable: this build was compiled without cgo")
}

func serviceStore(*config.Config) (graph.Store, func(), error) {
	return graph.NewMemStore(), func() {}, nil
}
