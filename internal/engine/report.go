// Package engine runs the two halves of the pipeline: Generator reconciles
// documentation with freshly extracted symbols, Validator checks an existing
// map against its source tree. Both produce structured reports; printing and
// exit codes belong to the caller.
package engine

import "fmt"

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// GenerationReport is the outcome of one generate run. The list fields hold
// every entry; Cap truncates for printing while the true totals stay with the
// slices.
type GenerationReport struct {
	FilesScanned int

	Created      []string // map-relative document paths written for the first time
	Updated      []string // documents whose bytes changed
	OrphanedDocs []string // documents whose source file no longer exists

	NewSections      []string // "doc: identifier", true deltas for this run
	OrphanedSections []string // sections moved to the orphaned region this run

	Unfilled    int      // placeholder sections across the whole map after the run
	ParseErrors []string // "path: message", files skipped this run
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// ValidationReport groups findings by check class. Every class always runs;
// a finding in one never suppresses another.
type ValidationReport struct {
	Structure []string

	FileLinks        []string
	FileLinksChecked int

	CodeLinks        []string
	CodeLinksChecked int

	Sizes []string

	Anchors        []string
	AnchorsChecked int
}

// Total counts findings across every check class.
func (r *ValidationReport) Total() int {
	return len(r.Structure) + len(r.FileLinks) + len(r.CodeLinks) + len(r.Sizes) + len(r.Anchors)
}

// ---------------------------------------------------------------------------
// Capped printing
// ---------------------------------------------------------------------------

// Cap truncates a report list for printing. The second return is the line to
// print after the shown entries, stating how many were elided; it is empty
// when nothing was cut. max <= 0 means no cap.
func Cap(items []string, max int) ([]string, string) {
	if max <= 0 || len(items) <= max {
		return items, ""
	}
	return items[:max], fmt.Sprintf("... and %d more", len(items)-max)
}
