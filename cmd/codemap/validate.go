package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/source"
)

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
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
	mapDir := argOr(fs, 0, cfg.MapRoot)

	parser := source.NewTreeSitterParser()
	defer parser.Close()

	v := engine.NewValidator(parser, engine.ValidateOptions{
		Tolerance: cfg.Tolerance,
		Workers:   cfg.Workers,
		Sizes: engine.SizeLimits{
			L0: cfg.SizeLimits.L0,
			L1: cfg.SizeLimits.L1,
			L2: cfg.SizeLimits.L2,
		},
	})

	fmt.Printf("Validating %s...\n\n", mapDir)
	report, err := v.Run(context.Background(), mapDir)
	if err != nil {
		// A missing or unreadable map is its own exit status, distinct
		// from findings.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return silentExit(2)
	}

	printValidation(report, cfg.ReportCap)
	if report.Total() > 0 {
		return silentExit(1)
	}
	return nil
}
