package main

import (
	"flag"

	"github.com/fatih/color"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/status"
)

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
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

	st, err := status.Scan(mapDir)
	if err != nil {
		return err
	}
	printStatus(mapDir, st)
	return nil
}
