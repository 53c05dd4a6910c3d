package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/status"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	failText = color.New(color.FgRed).SprintFunc()
)

// printGeneration renders a generation report in a stable form tooling can
// scrape: fixed count lines first, capped lists after.
func printGeneration(r *engine.GenerationReport, max int) {
	fmt.Printf("Created: %d files\n", len(r.Created))
	fmt.Printf("Updated: %d files\n", len(r.Updated))
	fmt.Printf("Orphaned sections: %d\n", len(r.OrphanedSections))
	fmt.Printf("New sections: %d\n", len(r.NewSections))
	fmt.Printf("Unfilled: %d placeholders\n", r.Unfilled)
	fmt.Printf("Parse errors: %d\n", len(r.ParseErrors))

	printList("Created files:", r.Created, max)
	printList("New sections:", r.NewSections, max)
	printList("Orphaned sections (code deleted):", r.OrphanedSections, max)
	printList("Orphaned documents (source deleted):", r.OrphanedDocs, max)
	printList("Parse errors:", r.ParseErrors, max)
}

// printValidation renders per-check lines, findings indented under any check
// that failed, and the one-line verdict.
func printValidation(r *engine.ValidationReport, max int) {
	printCheck("Structure", r.Structure, -1, max)
	printCheck("File links", r.FileLinks, r.FileLinksChecked, max)
	printCheck("Code links", r.CodeLinks, r.CodeLinksChecked, max)
	printCheck("Size limits", r.Sizes, -1, max)
	printCheck("Anchors", r.Anchors, r.AnchorsChecked, max)

	fmt.Println()
	if n := r.Total(); n > 0 {
		fmt.Println(failText(fmt.Sprintf("%d problems found.", n)))
	} else {
		fmt.Println(okText("All checks passed."))
	}
}

// printCheck prints one check class line; checked < 0 omits the count.
func printCheck(label string, findings []string, checked, max int) {
	if len(findings) == 0 {
		if checked >= 0 {
			fmt.Printf("%s: %s (%d checked)\n", label, okText("OK"), checked)
		} else {
			fmt.Printf("%s: %s\n", label, okText("OK"))
		}
		return
	}

	fmt.Printf("%s: %s\n", label, failText("FAIL"))
	shown, more := engine.Cap(findings, max)
	for _, f := range shown {
		fmt.Printf("  %s\n", f)
	}
	if more != "" {
		fmt.Printf("  %s\n", more)
	}
}

func printStatus(mapDir string, st *status.MapStatus) {
	if !st.Exists {
		fmt.Printf("No map found at %s.\n", mapDir)
		fmt.Println("Run 'codemap generate' to create it.")
		return
	}

	fmt.Printf("Map: %s\n\n", mapDir)
	fmt.Printf("  %-8s %5s %9s %13s %9s\n", "Level", "Docs", "Sections", "Placeholders", "Orphaned")
	printLevel("Root", st.Root)
	printLevel("Domains", st.Domains)
	printLevel("Modules", st.Modules)

	fmt.Println()
	fmt.Printf("README: %s    ARCHITECTURE: %s\n", yesNo(st.HasReadme), yesNo(st.HasArchitecture))
	fmt.Printf("\nNext: %s\n", st.NextAction)
}

func printLevel(name string, ls status.LevelStatus) {
	fmt.Printf("  %-8s %5d %9d %13d %9d\n", name, ls.Docs, ls.Sections, ls.Placeholders, ls.Orphaned)
}

func yesNo(present bool) string {
	if present {
		return okText("yes")
	}
	return failText("missing")
}

func printList(header string, items []string, max int) {
	if len(items) == 0 {
		return
	}
	shown, more := engine.Cap(items, max)
	fmt.Printf("\n%s\n", header)
	for _, it := range shown {
		fmt.Printf("  %s\n", it)
	}
	if more != "" {
		fmt.Printf("  %s\n", more)
	}
}
