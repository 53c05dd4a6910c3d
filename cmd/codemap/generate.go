package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/source"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	noColor := fs.Bool("no-color", false, "disable color output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	srcDir := argOr(fs, 0, cfg.SourceRoot)
	mapDir := argOr(fs, 1, cfg.MapRoot)

	parser := source.NewTreeSitterParser()
	defer parser.Close()

	store, closeStore, err := persistentIndex(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gen := engine.NewGenerator(parser, engine.GenerateOptions{
		ProjectName: cfg.ProjectName,
		Languages:   cfg.Languages,
		Excludes:    cfg.Exclude,
		Workers:     cfg.Workers,
		Store:       store,
	})

	fmt.Printf("Generating map: %s -> %s\n\n", srcDir, mapDir)
	report, err := gen.Run(context.Background(), srcDir, mapDir)
	if err != nil {
		return err
	}

	printGeneration(report, cfg.ReportCap)
	return nil
}
