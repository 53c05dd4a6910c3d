package docmap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Serialize renders a generator-owned node into the pinned markdown form that
// ParseDocument reads back. Root documents are written once from templates
// and never pass through here.
func Serialize(n *MapNode) []byte {
	w := &docWriter{}
	w.h1(n)

	switch n.Level {
	case LevelDomain:
		renderDomain(w, n)
	default:
		renderModule(w, n)
	}
	return w.bytes()
}

// CountLines reports how many lines a serialized document occupies.
func CountLines(data []byte) int {
	return len(splitLines(data))
}

// ---------------------------------------------------------------------------
// Module documents (L2)
// ---------------------------------------------------------------------------

func renderModule(w *docWriter, n *MapNode) {
	if summary := n.Section("module"); summary != nil {
		w.blank()
		w.text(summary.Text)
	}

	if n.SourceRel != "" {
		w.blank()
		w.line("**Source**: [`%s`](%s) (%d lines)", n.SourceRel, n.SourceRef, n.SourceLOC)
	}

	// Partition the live sections. Methods group under their owner class when
	// it has a live section, otherwise they render as standalone headings.
	liveClass := make(map[string]bool)
	for _, s := range n.Sections {
		if s.Kind == KindClass && s.Status != StatusOrphaned {
			liveClass[s.Identifier] = true
		}
	}

	var classes, functions, prose []DocSection
	methods := make(map[string][]DocSection)
	var orphans []DocSection

	for _, s := range n.Sections {
		switch {
		case s.Status == StatusOrphaned:
			orphans = append(orphans, s)
		case s.Kind == KindClass:
			classes = append(classes, s)
		case s.Kind == KindMethod:
			if owner := OwnerOf(s.Identifier); liveClass[owner] {
				methods[owner] = append(methods[owner], s)
			} else {
				functions = append(functions, s)
			}
		case s.Kind == KindFunction:
			functions = append(functions, s)
		case s.Kind == KindProse:
			prose = append(prose, s)
		}
	}

	if len(classes) > 0 {
		w.blank()
		w.line("## Classes")
		for _, c := range classes {
			w.blank()
			w.line("### [`%s`](%s#L%d)", c.Identifier, n.SourceRef, c.Line)
			w.blank()
			w.text(c.Text)
			if owned := methods[c.Identifier]; len(owned) > 0 {
				w.blank()
				w.line("**Methods:**")
				w.blank()
				for _, m := range owned {
					w.line("- [`%s`](%s#L%d): %s", m.Identifier, n.SourceRef, m.Line, oneLine(m.Text))
				}
			}
		}
	}

	if len(functions) > 0 {
		w.blank()
		w.line("## Functions")
		for _, f := range functions {
			w.blank()
			w.line("### [`%s`](%s#L%d)", f.Identifier, n.SourceRef, f.Line)
			if f.Signature != "" {
				w.blank()
				w.line("**Signature:** `%s%s`", f.Identifier, f.Signature)
			}
			w.blank()
			w.text(f.Text)
		}
	}

	renderProse(w, prose)

	if len(n.Dependencies) > 0 {
		w.blank()
		w.line("## Dependencies")
		w.blank()
		for _, dep := range n.Dependencies {
			w.line("- [`%s`](%s)", dep, relTo(n.Path, ModuleDocPath(dep)))
		}
	}

	renderOrphans(w, orphans)
}

// ---------------------------------------------------------------------------
// Domain documents (L1)
// ---------------------------------------------------------------------------

func renderDomain(w *docWriter, n *MapNode) {
	var rows, prose, orphans []DocSection
	for _, s := range n.Sections {
		switch {
		case s.Status == StatusOrphaned:
			orphans = append(orphans, s)
		case s.Kind == KindModule:
			rows = append(rows, s)
		case s.Kind == KindProse:
			prose = append(prose, s)
		}
	}

	renderProse(w, prose)

	if len(rows) > 0 {
		w.blank()
		w.line("## Modules")
		w.blank()
		w.line("| Module | Description |")
		w.line("|--------|-------------|")
		for _, r := range rows {
			target := relTo(n.Path, ModuleDocPath(r.Identifier))
			w.line("| [`%s`](%s) | %s |", r.Identifier, target, escapeCell(r.Text))
		}
	}

	renderOrphans(w, orphans)
}

// ---------------------------------------------------------------------------
// Shared pieces
// ---------------------------------------------------------------------------

func renderProse(w *docWriter, prose []DocSection) {
	for _, s := range prose {
		w.blank()
		w.line("## %s", s.Identifier)
		w.blank()
		w.text(s.Text)
	}
}

func renderOrphans(w *docWriter, orphans []DocSection) {
	if len(orphans) == 0 {
		return
	}
	w.blank()
	w.line("## Orphaned")
	w.blank()
	for _, o := range orphans {
		w.line("- %s `%s`: %s", o.Kind, o.Identifier, oneLine(o.Text))
	}
}

// relTo computes the link target from one map document to another.
func relTo(fromDoc, target string) string {
	rel, err := filepath.Rel(filepath.Dir(fromDoc), target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", "\\|")
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

type docWriter struct {
	lines []string
}

func (w *docWriter) h1(n *MapNode) {
	if n.AnchorID != "" {
		w.line("# %s [%s]", n.Title, n.AnchorID)
	} else {
		w.line("# %s", n.Title)
	}
}

func (w *docWriter) line(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

// text appends a possibly multi-line body verbatim.
func (w *docWriter) text(s string) {
	if s == "" {
		return
	}
	w.lines = append(w.lines, strings.Split(s, "\n")...)
}

// blank separates blocks without ever doubling up.
func (w *docWriter) blank() {
	if len(w.lines) > 0 && w.lines[len(w.lines)-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *docWriter) bytes() []byte {
	end := len(w.lines)
	for end > 0 && w.lines[end-1] == "" {
		end--
	}
	return []byte(strings.Join(w.lines[:end], "\n") + "\n")
}
