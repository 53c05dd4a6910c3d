package main

import (
	"context"
	"flag"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/mcptools"
	"github.com/dusk-indust/codemap/internal/source"
)

// runMCP serves the codemap tools over stdio until the client disconnects.
func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	srcDir := fs.String("source", "", "override the configured source root")
	mapDir := fs.String("map", "", "override the configured map root")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if *srcDir != "" {
		cfg.SourceRoot = *srcDir
	}
	if *mapDir != "" {
		cfg.MapRoot = *mapDir
	}

	parser := source.NewTreeSitterParser()
	defer parser.Close()

	store, closeStore, err := serviceStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := mcptools.NewCodemapService(parser, store, cfg)
	server := mcptools.NewServer(svc)
	return mcptools.RunStdio(context.Background(), server)
}
