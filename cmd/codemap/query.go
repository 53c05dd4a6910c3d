package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/graph"
)

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "maximum matches to print")
	noColor := fs.Bool("no-color", false, "disable color output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *noColor {
		color.NoColor = true
	}

	pattern := fs.Arg(0)
	if pattern == "" {
		return fmt.Errorf("usage: codemap query <symbol>")
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	store, closeStore, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	symbols, err := store.FindSymbols(ctx, pattern, *limit)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Printf("No symbols matching %q.\n", pattern)
		return nil
	}

	ids := make([]string, len(symbols))
	for i, sym := range symbols {
		ids[i] = sym.ID
	}
	docs, err := graph.DocsFor(ctx, store, ids)
	if err != nil {
		return err
	}

	fmt.Printf("Symbols matching %q:\n\n", pattern)
	for _, sym := range symbols {
		exported := ""
		if sym.Exported {
			exported = " (exported)"
		}
		fmt.Printf("  %s %s  %s:%d%s\n", sym.Kind, sym.Name, sym.FilePath, sym.Line, exported)
		for _, d := range docs[sym.ID] {
			fmt.Printf("    -> %s [%s]\n", d.Path, d.Anchor)
		}
	}
	return nil
}
