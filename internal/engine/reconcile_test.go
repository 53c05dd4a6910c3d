package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/source"
)

func identifiers(sections []docmap.DocSection) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Identifier
	}
	return out
}

// ---------------------------------------------------------------------------
// reconcile
// ---------------------------------------------------------------------------

func TestReconcile_SeedsNewSections(t *testing.T) {
	node := &docmap.MapNode{}
	delta := reconcile(node, []symbolEntry{
		{Identifier: "module", Kind: docmap.KindModule, Summary: "Core helpers."},
		{Identifier: "add", Kind: docmap.KindFunction, Line: 4, Signature: "(a, b)"},
	})

	require.Equal(t, []string{"module", "add"}, delta.added)
	require.Len(t, node.Sections, 2)

	mod := node.Section("module")
	require.NotNil(t, mod)
	assert.Equal(t, docmap.StatusFilled, mod.Status, "a documented symbol seeds filled")
	assert.Equal(t, "Core helpers.", mod.Text)

	add := node.Section("add")
	require.NotNil(t, add)
	assert.Equal(t, docmap.StatusPlaceholder, add.Status, "an undocumented symbol seeds a placeholder")
	assert.True(t, docmap.IsPlaceholder(add.Text))
	assert.Contains(t, add.Text, "Describe add")
	assert.Equal(t, 4, add.Line)
	assert.Equal(t, "(a, b)", add.Signature)
}

func TestReconcile_PreservesFilledText(t *testing.T) {
	node := &docmap.MapNode{Sections: []docmap.DocSection{
		{Identifier: "add", Kind: docmap.KindFunction, Status: docmap.StatusFilled, Text: "Hand-written answer.", Line: 4},
	}}

	delta := reconcile(node, []symbolEntry{
		{Identifier: "add", Kind: docmap.KindFunction, Line: 9, Summary: "Fresh extraction text."},
	})

	assert.Empty(t, delta.added)
	assert.Empty(t, delta.orphaned)

	add := node.Section("add")
	require.NotNil(t, add)
	assert.Equal(t, docmap.StatusFilled, add.Status)
	assert.Equal(t, "Hand-written answer.", add.Text, "filled text is never overwritten")
	assert.Equal(t, 9, add.Line, "the line anchor follows the symbol")
}

func TestReconcile_FillsPlaceholders(t *testing.T) {
	t.Run("summary fills", func(t *testing.T) {
		node := &docmap.MapNode{Sections: []docmap.DocSection{
			{Identifier: "add", Kind: docmap.KindFunction, Status: docmap.StatusPlaceholder, Text: docmap.Placeholder("Describe add")},
		}}
		reconcile(node, []symbolEntry{{Identifier: "add", Kind: docmap.KindFunction, Summary: "Add two numbers."}})

		add := node.Section("add")
		assert.Equal(t, docmap.StatusFilled, add.Status)
		assert.Equal(t, "Add two numbers.", add.Text)
	})

	t.Run("no summary keeps the marker", func(t *testing.T) {
		marker := docmap.Placeholder("Describe add")
		node := &docmap.MapNode{Sections: []docmap.DocSection{
			{Identifier: "add", Kind: docmap.KindFunction, Status: docmap.StatusPlaceholder, Text: marker},
		}}
		reconcile(node, []symbolEntry{{Identifier: "add", Kind: docmap.KindFunction}})

		add := node.Section("add")
		assert.Equal(t, docmap.StatusPlaceholder, add.Status)
		assert.Equal(t, marker, add.Text)
	})

	t.Run("empty placeholder is reseeded", func(t *testing.T) {
		node := &docmap.MapNode{Sections: []docmap.DocSection{
			{Identifier: "add", Kind: docmap.KindFunction, Status: docmap.StatusPlaceholder},
		}}
		reconcile(node, []symbolEntry{{Identifier: "add", Kind: docmap.KindFunction}})

		add := node.Section("add")
		assert.Equal(t, docmap.StatusPlaceholder, add.Status)
		assert.True(t, docmap.IsPlaceholder(add.Text))
	})
}

func TestReconcile_OrphansVanishedSections(t *testing.T) {
	node := &docmap.MapNode{Sections: []docmap.DocSection{
		{Identifier: "add", Kind: docmap.KindFunction, Status: docmap.StatusFilled, Text: "Adds.", Line: 4},
		{Identifier: "multiply", Kind: docmap.KindFunction, Status: docmap.StatusFilled, Text: "Multiplies.", Line: 8},
	}}

	delta := reconcile(node, []symbolEntry{{Identifier: "add", Kind: docmap.KindFunction, Line: 4}})
	require.Equal(t, []string{"multiply"}, delta.orphaned)
	assert.Equal(t, []string{"add", "multiply"}, identifiers(node.Sections), "orphans move to the tail")

	mul := node.Section("multiply")
	assert.Equal(t, docmap.StatusOrphaned, mul.Status)
	assert.Equal(t, "Multiplies.", mul.Text, "orphaned text is kept")
	assert.Zero(t, mul.Line, "orphans lose their line anchor")

	// A second pass reports nothing: the section is already orphaned.
	delta = reconcile(node, []symbolEntry{{Identifier: "add", Kind: docmap.KindFunction, Line: 4}})
	assert.Empty(t, delta.orphaned)
	assert.Equal(t, docmap.StatusOrphaned, node.Section("multiply").Status)
}

func TestReconcile_RevivesOrphans(t *testing.T) {
	t.Run("filled orphan keeps its text", func(t *testing.T) {
		node := &docmap.MapNode{Sections: []docmap.DocSection{
			{Identifier: "multiply", Kind: docmap.KindFunction, Status: docmap.StatusOrphaned, Text: "Multiplies carefully."},
		}}
		delta := reconcile(node, []symbolEntry{
			{Identifier: "multiply", Kind: docmap.KindFunction, Line: 12, Summary: "Multiply two numbers."},
		})

		assert.Empty(t, delta.added, "revival is not a new section")
		mul := node.Section("multiply")
		assert.Equal(t, docmap.StatusFilled, mul.Status)
		assert.Equal(t, "Multiplies carefully.", mul.Text)
		assert.Equal(t, 12, mul.Line)
	})

	t.Run("placeholder orphan reseeds", func(t *testing.T) {
		node := &docmap.MapNode{Sections: []docmap.DocSection{
			{Identifier: "multiply", Kind: docmap.KindFunction, Status: docmap.StatusOrphaned, Text: docmap.Placeholder("Describe multiply")},
		}}
		reconcile(node, []symbolEntry{
			{Identifier: "multiply", Kind: docmap.KindFunction, Line: 12, Summary: "Multiply two numbers."},
		})

		mul := node.Section("multiply")
		assert.Equal(t, docmap.StatusFilled, mul.Status)
		assert.Equal(t, "Multiply two numbers.", mul.Text)
	})
}

func TestReconcile_CanonicalOrder(t *testing.T) {
	node := &docmap.MapNode{Sections: []docmap.DocSection{
		{Identifier: "Notes", Kind: docmap.KindProse, Status: docmap.StatusFilled, Text: "Keep an eye on rounding."},
		{Identifier: "legacy", Kind: docmap.KindFunction, Status: docmap.StatusFilled, Text: "Old helper."},
	}}

	delta := reconcile(node, []symbolEntry{
		{Identifier: "module", Kind: docmap.KindModule, Summary: "Core."},
		{Identifier: "Calculator", Kind: docmap.KindClass, Line: 6, Summary: "A calculator."},
		{Identifier: "Calculator.add", Kind: docmap.KindMethod, Line: 14},
		{Identifier: "helper", Kind: docmap.KindFunction, Line: 30},
	})

	assert.Equal(t,
		[]string{"module", "Calculator", "Calculator.add", "helper", "Notes", "legacy"},
		identifiers(node.Sections),
		"live entries in extraction order, then prose, then orphans")
	assert.Equal(t, []string{"legacy"}, delta.orphaned)
	assert.Equal(t, docmap.StatusFilled, node.Section("Notes").Status, "prose passes through untouched")
}

// ---------------------------------------------------------------------------
// Entry construction
// ---------------------------------------------------------------------------

func TestEntriesFor(t *testing.T) {
	rec := &source.FileRecord{
		Path:      "core.py",
		Language:  source.LangPython,
		ModuleDoc: "Calculator core.",
		Symbols: []source.SymbolRecord{
			{Kind: source.SymbolKindClass, QualifiedName: "Calculator", StartLine: 6, DocSummary: "A calculator."},
			{Kind: source.SymbolKindFunction, QualifiedName: "helper", StartLine: 30, Signature: "(x)"},
			{Kind: source.SymbolKindMethod, QualifiedName: "Calculator.add", OwnerClass: "Calculator", StartLine: 14},
			{Kind: source.SymbolKindMethod, QualifiedName: "Ghost.walk", OwnerClass: "Ghost", StartLine: 40},
		},
	}

	entries := entriesFor(rec)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Identifier
	}
	assert.Equal(t, []string{"module", "Calculator", "Calculator.add", "helper", "Ghost.walk"}, ids,
		"module first, classes with their methods, then functions and unowned methods")

	assert.Equal(t, docmap.KindModule, entries[0].Kind)
	assert.Equal(t, "Calculator core.", entries[0].Summary)
	assert.Contains(t, entries[0].hint(), "core.py")

	assert.Equal(t, docmap.KindClass, entries[1].Kind)
	assert.Equal(t, docmap.KindMethod, entries[2].Kind)
	assert.Equal(t, docmap.KindFunction, entries[3].Kind)
	assert.Equal(t, "(x)", entries[3].Signature, "signatures are carried for functions only")
	assert.Empty(t, entries[1].Signature)
	assert.Equal(t, docmap.KindMethod, entries[4].Kind, "a method without a live owner still gets an entry")
}

func TestDomainEntries(t *testing.T) {
	entries := domainEntries([]*source.FileRecord{
		{Path: "core/engine.py", ModuleDoc: "The engine."},
		{Path: "core/wire.py"},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "core/engine.py", entries[0].Identifier)
	assert.Equal(t, docmap.KindModule, entries[0].Kind)
	assert.Equal(t, "The engine.", entries[0].Summary)
	assert.Equal(t, "core/wire.py", entries[1].Identifier)
	assert.Contains(t, entries[1].hint(), "core/wire.py")
}
