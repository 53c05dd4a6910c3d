package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/export"
	"github.com/dusk-indust/codemap/internal/graph"
	"github.com/dusk-indust/codemap/internal/source"
)

// runExport snapshots the map plus a fresh source extraction. The index is
// derived state, so exporting rebuilds it in memory rather than requiring a
// persistent store.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "output format: json or mermaid")
	outPath := fs.String("o", "", "write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	mapDir := argOr(fs, 0, cfg.MapRoot)

	if _, err := os.Stat(mapDir); err != nil {
		return fmt.Errorf("no map at %s\nRun 'codemap generate' first to create it", mapDir)
	}
	m, err := docmap.Load(mapDir)
	if err != nil {
		return err
	}

	parser := source.NewTreeSitterParser()
	defer parser.Close()

	ctx := context.Background()
	ext, err := engine.ExtractTree(ctx, parser, cfg.SourceRoot, engine.GenerateOptions{
		Languages: cfg.Languages,
		Excludes:  cfg.Exclude,
		Workers:   cfg.Workers,
	})
	if err != nil {
		return err
	}

	store := graph.NewMemStore()
	if err := graph.Rebuild(ctx, store, m, ext.Records); err != nil {
		return err
	}

	var buf bytes.Buffer
	switch *format {
	case "json":
		if err := export.WriteJSON(ctx, store, &buf); err != nil {
			return err
		}
	case "mermaid":
		diagram, err := export.GenerateMermaid(ctx, store)
		if err != nil {
			return err
		}
		buf.WriteString(diagram)
	default:
		return fmt.Errorf("unknown format %q (want json or mermaid)", *format)
	}

	if *outPath == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(*outPath, buf.Bytes(), 0o644)
}
