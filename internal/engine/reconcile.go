package engine

import (
	"fmt"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/source"
)

// symbolEntry is one identifier the current extraction expects a section for.
type symbolEntry struct {
	Identifier string
	Kind       docmap.SectionKind
	Line       int
	Summary    string // first doc line, "" when the symbol is undocumented
	Signature  string
	Hint       string // placeholder hint when Summary is empty
}

func (e symbolEntry) hint() string {
	if e.Hint != "" {
		return e.Hint
	}
	return "Describe " + e.Identifier
}

// reconcileDelta reports what one reconciliation actually changed.
type reconcileDelta struct {
	added    []string
	orphaned []string
}

// reconcile merges the extracted entries into the node's sections, keyed by
// identifier and never by line number. Filled text is preserved verbatim,
// placeholders refresh from the extraction, vanished identifiers move to the
// orphan tail, and orphans whose identifier reappears rejoin the live set.
// Prose sections pass through untouched. The resulting order is canonical:
// live entries in extraction order, prose, then orphans.
func reconcile(node *docmap.MapNode, entries []symbolEntry) reconcileDelta {
	existing := make(map[string]docmap.DocSection, len(node.Sections))
	for _, s := range node.Sections {
		if s.Kind == docmap.KindProse {
			continue
		}
		if _, dup := existing[s.Identifier]; !dup {
			existing[s.Identifier] = s
		}
	}

	var delta reconcileDelta
	live := make([]docmap.DocSection, 0, len(entries))
	consumed := make(map[string]bool, len(entries))

	for _, e := range entries {
		if consumed[e.Identifier] {
			continue
		}
		consumed[e.Identifier] = true

		sec := docmap.DocSection{
			Identifier: e.Identifier,
			Kind:       e.Kind,
			Line:       e.Line,
			Signature:  e.Signature,
		}

		old, ok := existing[e.Identifier]
		switch {
		case !ok:
			seed(&sec, e)
			delta.added = append(delta.added, e.Identifier)

		case old.Status == docmap.StatusFilled:
			sec.Status = docmap.StatusFilled
			sec.Text = old.Text

		case old.Status == docmap.StatusPlaceholder:
			if e.Summary != "" {
				sec.Status = docmap.StatusFilled
				sec.Text = e.Summary
			} else {
				sec.Status = docmap.StatusPlaceholder
				sec.Text = old.Text
				if sec.Text == "" {
					sec.Text = docmap.Placeholder(e.hint())
				}
			}

		case old.Status == docmap.StatusOrphaned:
			// Revival: a filled orphan keeps its text, a placeholder orphan
			// re-seeds from the fresh extraction.
			if old.Text != "" && !docmap.IsPlaceholder(old.Text) {
				sec.Status = docmap.StatusFilled
				sec.Text = old.Text
			} else {
				seed(&sec, e)
			}
		}
		live = append(live, sec)
	}

	var prose, orphans []docmap.DocSection
	for _, s := range node.Sections {
		if s.Kind == docmap.KindProse {
			prose = append(prose, s)
			continue
		}
		if consumed[s.Identifier] {
			continue
		}
		o := s
		if o.Status != docmap.StatusOrphaned {
			o.Status = docmap.StatusOrphaned
			o.Line = 0
			delta.orphaned = append(delta.orphaned, o.Identifier)
		}
		orphans = append(orphans, o)
	}

	node.Sections = append(append(live, prose...), orphans...)
	return delta
}

func seed(sec *docmap.DocSection, e symbolEntry) {
	if e.Summary != "" {
		sec.Status = docmap.StatusFilled
		sec.Text = e.Summary
	} else {
		sec.Status = docmap.StatusPlaceholder
		sec.Text = docmap.Placeholder(e.hint())
	}
}

// ---------------------------------------------------------------------------
// Entry construction
// ---------------------------------------------------------------------------

// entriesFor orders a file's extraction canonically: the module summary,
// each class followed by its methods, then plain functions, then methods
// whose owner was not extracted.
func entriesFor(rec *source.FileRecord) []symbolEntry {
	entries := []symbolEntry{{
		Identifier: "module",
		Kind:       docmap.KindModule,
		Summary:    rec.ModuleDoc,
		Hint:       fmt.Sprintf("Describe %s", rec.Path),
	}}

	methodsByOwner := make(map[string][]source.SymbolRecord)
	classSeen := make(map[string]bool)
	for _, sym := range rec.Symbols {
		switch sym.Kind {
		case source.SymbolKindClass:
			classSeen[sym.QualifiedName] = true
		case source.SymbolKindMethod:
			methodsByOwner[sym.OwnerClass] = append(methodsByOwner[sym.OwnerClass], sym)
		}
	}

	for _, sym := range rec.Symbols {
		if sym.Kind != source.SymbolKindClass {
			continue
		}
		entries = append(entries, entryFor(sym))
		for _, m := range methodsByOwner[sym.QualifiedName] {
			entries = append(entries, entryFor(m))
		}
	}
	for _, sym := range rec.Symbols {
		switch sym.Kind {
		case source.SymbolKindFunction:
			entries = append(entries, entryFor(sym))
		case source.SymbolKindMethod:
			if !classSeen[sym.OwnerClass] {
				entries = append(entries, entryFor(sym))
			}
		}
	}
	return entries
}

func entryFor(sym source.SymbolRecord) symbolEntry {
	e := symbolEntry{
		Identifier: sym.QualifiedName,
		Line:       sym.StartLine,
		Summary:    sym.DocSummary,
	}
	switch sym.Kind {
	case source.SymbolKindClass:
		e.Kind = docmap.KindClass
	case source.SymbolKindMethod:
		e.Kind = docmap.KindMethod
	default:
		e.Kind = docmap.KindFunction
		e.Signature = sym.Signature
	}
	return e
}

// domainEntries orders a domain's module rows by path.
func domainEntries(recs []*source.FileRecord) []symbolEntry {
	entries := make([]symbolEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, symbolEntry{
			Identifier: rec.Path,
			Kind:       docmap.KindModule,
			Summary:    rec.ModuleDoc,
			Hint:       fmt.Sprintf("Describe %s", rec.Path),
		})
	}
	return entries
}
