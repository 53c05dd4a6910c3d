package docmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestParseDocument_Module
// ---------------------------------------------------------------------------

const moduleDoc = `# operations.py [L2:operations-py]

Basic arithmetic operations.

**Source**: [` + "`operations.py`" + `](../../src/operations.py) (32 lines)

## Classes

### [` + "`Calculator`" + `](../../src/operations.py#L6)

A simple calculator with memory.

**Methods:**

- [` + "`Calculator.add`" + `](../../src/operations.py#L14): Add x to the current value.
- [` + "`Calculator.clear`" + `](../../src/operations.py#L26): <!-- TODO: Describe Calculator.clear -->

## Functions

### [` + "`add`" + `](../../src/operations.py#L4)

**Signature:** ` + "`add(a: float, b: float) -> float`" + `

<!-- TODO: Describe add -->

### [` + "`multiply`" + `](../../src/operations.py#L13)

Multiply two numbers.

## Dependencies

- [` + "`core.py`" + `](core.py.md)

## Orphaned

- function ` + "`subtract`" + `: Subtract b from a.
`

func TestParseDocument_Module(t *testing.T) {
	n := ParseDocument("modules/operations.py.md", []byte(moduleDoc))

	assert.Equal(t, LevelModule, n.Level)
	assert.Equal(t, "L2:operations-py", n.AnchorID)
	assert.Equal(t, "operations.py", n.Title)
	assert.Equal(t, "operations.py", n.SourceRel)
	assert.Equal(t, "../../src/operations.py", n.SourceRef)
	assert.Equal(t, 32, n.SourceLOC)
	assert.Equal(t, []string{"core.py"}, n.Dependencies)

	t.Run("sections in document order", func(t *testing.T) {
		var ids []string
		for _, s := range n.Sections {
			ids = append(ids, s.Identifier)
		}
		assert.Equal(t, []string{
			"module", "Calculator", "Calculator.add", "Calculator.clear",
			"add", "multiply", "subtract",
		}, ids)
	})

	t.Run("statuses", func(t *testing.T) {
		assert.Equal(t, StatusFilled, n.Section("module").Status)
		assert.Equal(t, StatusFilled, n.Section("Calculator.add").Status)
		assert.Equal(t, StatusPlaceholder, n.Section("Calculator.clear").Status)
		assert.Equal(t, StatusPlaceholder, n.Section("add").Status)
		assert.Equal(t, StatusFilled, n.Section("multiply").Status)
		assert.Equal(t, StatusOrphaned, n.Section("subtract").Status)
	})

	t.Run("kinds and lines", func(t *testing.T) {
		cls := n.Section("Calculator")
		require.NotNil(t, cls)
		assert.Equal(t, KindClass, cls.Kind)
		assert.Equal(t, 6, cls.Line)

		m := n.Section("Calculator.add")
		require.NotNil(t, m)
		assert.Equal(t, KindMethod, m.Kind)
		assert.Equal(t, 14, m.Line)

		orphan := n.Section("subtract")
		require.NotNil(t, orphan)
		assert.Equal(t, KindFunction, orphan.Kind)
		assert.Equal(t, 0, orphan.Line, "orphaning drops the stale line")
	})

	t.Run("signature recovered without the name prefix", func(t *testing.T) {
		assert.Equal(t, "(a: float, b: float) -> float", n.Section("add").Signature)
		assert.Empty(t, n.Section("multiply").Signature)
	})

	t.Run("references", func(t *testing.T) {
		assert.Equal(t, []string{"../../src/operations.py", "core.py.md"}, n.CrossRefs)

		require.Len(t, n.CodeRefs, 5)
		assert.Equal(t, CodeRef{Target: "../../src/operations.py", Line: 6, Symbol: "Calculator"}, n.CodeRefs[0])
		assert.Equal(t, CodeRef{Target: "../../src/operations.py", Line: 4, Symbol: "add"}, n.CodeRefs[3])
	})

	assert.Equal(t, CountLines([]byte(moduleDoc)), n.LineCount)
}

// ---------------------------------------------------------------------------
// TestParseDocument_Domain
// ---------------------------------------------------------------------------

const domainDoc = `# calculator [L1:calculator]

## Overview

<!-- TODO: Describe the calculator domain -->

## Modules

| Module | Description |
|--------|-------------|
| [` + "`core.py`" + `](../modules/core.py.md) | Core calculator state machine. |
| [` + "`operations.py`" + `](../modules/operations.py.md) | <!-- TODO: Describe operations.py --> |

## Orphaned

- module ` + "`legacy.py`" + `: Old entry point.
`

func TestParseDocument_Domain(t *testing.T) {
	n := ParseDocument("domains/calculator.md", []byte(domainDoc))

	assert.Equal(t, LevelDomain, n.Level)
	assert.Equal(t, "L1:calculator", n.AnchorID)
	assert.Equal(t, "calculator", n.Title)

	overview := n.Section("Overview")
	require.NotNil(t, overview)
	assert.Equal(t, KindProse, overview.Kind)
	assert.Equal(t, StatusPlaceholder, overview.Status)

	core := n.Section("core.py")
	require.NotNil(t, core)
	assert.Equal(t, KindModule, core.Kind)
	assert.Equal(t, StatusFilled, core.Status)
	assert.Equal(t, "Core calculator state machine.", core.Text)

	ops := n.Section("operations.py")
	require.NotNil(t, ops)
	assert.Equal(t, StatusPlaceholder, ops.Status)

	legacy := n.Section("legacy.py")
	require.NotNil(t, legacy)
	assert.Equal(t, StatusOrphaned, legacy.Status)
	assert.Equal(t, "Old entry point.", legacy.Text)

	assert.Equal(t, []string{"../modules/core.py.md", "../modules/operations.py.md"}, n.CrossRefs)
	assert.Empty(t, n.CodeRefs)
}

// ---------------------------------------------------------------------------
// TestParseDocument_LinkScanSkips
// ---------------------------------------------------------------------------

func TestParseDocument_LinkScanSkips(t *testing.T) {
	doc := `# notes [L2:notes]

Real link: [target](other.md).
Inline code: ` + "`[fake](fake.md)`" + `.
External: [site](https://example.com/docs).
Intra-doc: [above](#notes).

` + "```" + `
[fenced](fenced.md)
` + "```" + `

## Orphaned

- function ` + "`gone`" + `: Used [old](stale.md) once.
`

	n := ParseDocument("modules/notes.md", []byte(doc))
	assert.Equal(t, []string{"other.md"}, n.CrossRefs,
		"code spans, fences, externals, fragments and the orphaned region are all skipped")
}

// ---------------------------------------------------------------------------
// TestRoundTrip
// ---------------------------------------------------------------------------

func TestRoundTrip_Module(t *testing.T) {
	node := &MapNode{
		Level:     LevelModule,
		AnchorID:  "L2:core-py",
		Path:      "modules/core.py.md",
		Title:     "core.py",
		SourceRel: "core.py",
		SourceRef: "../../src/core.py",
		SourceLOC: 28,
		Dependencies: []string{"operations.py"},
		Sections: []DocSection{
			{Identifier: "module", Kind: KindModule, Status: StatusFilled, Text: "Core calculator state machine."},
			{Identifier: "Calculator", Kind: KindClass, Status: StatusFilled, Text: "A simple calculator with memory.", Line: 6},
			{Identifier: "Calculator.add", Kind: KindMethod, Status: StatusFilled, Text: "Add x to the current value.", Line: 14},
			{Identifier: "Calculator.clear", Kind: KindMethod, Status: StatusPlaceholder, Text: Placeholder("Describe Calculator.clear"), Line: 26},
			{Identifier: "helper", Kind: KindFunction, Status: StatusFilled, Text: "Format one history entry.", Line: 30, Signature: "(entry: str) -> str"},
			{Identifier: "legacy", Kind: KindFunction, Status: StatusOrphaned, Text: "Old entry point."},
		},
	}

	first := Serialize(node)
	parsed := ParseDocument(node.Path, first)
	second := Serialize(parsed)

	assert.Equal(t, string(first), string(second), "serialize is stable across a parse round trip")
	assert.Equal(t, parsed, ParseDocument(node.Path, second))

	t.Run("reconcilable state survives", func(t *testing.T) {
		assert.Equal(t, node.SourceRel, parsed.SourceRel)
		assert.Equal(t, node.SourceLOC, parsed.SourceLOC)
		assert.Equal(t, node.Dependencies, parsed.Dependencies)
		require.Len(t, parsed.Sections, len(node.Sections))
		for i, want := range node.Sections {
			got := parsed.Sections[i]
			assert.Equal(t, want.Identifier, got.Identifier, "section %d", i)
			assert.Equal(t, want.Kind, got.Kind, "section %d", i)
			assert.Equal(t, want.Status, got.Status, "section %d", i)
			assert.Equal(t, want.Text, got.Text, "section %d", i)
			assert.Equal(t, want.Line, got.Line, "section %d", i)
			assert.Equal(t, want.Signature, got.Signature, "section %d", i)
		}
	})

	t.Run("line count matches serialized bytes", func(t *testing.T) {
		assert.Equal(t, CountLines(first), parsed.LineCount)
	})
}

func TestRoundTrip_Domain(t *testing.T) {
	node := &MapNode{
		Level:    LevelDomain,
		AnchorID: "L1:calculator",
		Path:     "domains/calculator.md",
		Title:    "calculator",
		Sections: []DocSection{
			{Identifier: "Overview", Kind: KindProse, Status: StatusPlaceholder, Text: Placeholder("Describe the calculator domain")},
			{Identifier: "core.py", Kind: KindModule, Status: StatusFilled, Text: "Core calculator state machine."},
			{Identifier: "operations.py", Kind: KindModule, Status: StatusFilled, Text: "Pipes | tables | edge case."},
			{Identifier: "legacy.py", Kind: KindModule, Status: StatusOrphaned, Text: "Old entry point."},
		},
	}

	first := Serialize(node)
	parsed := ParseDocument(node.Path, first)
	second := Serialize(parsed)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, "Pipes | tables | edge case.", parsed.Section("operations.py").Text,
		"pipes in table cells survive escaping")
	assert.Equal(t, StatusOrphaned, parsed.Section("legacy.py").Status)
}

// ---------------------------------------------------------------------------
// TestRoundTrip_HumanEdits
// ---------------------------------------------------------------------------

func TestRoundTrip_HumanEdits(t *testing.T) {
	node := &MapNode{
		Level:     LevelModule,
		AnchorID:  "L2:api-py",
		Path:      "modules/api.py.md",
		Title:     "api.py",
		SourceRel: "api.py",
		SourceRef: "../../src/api.py",
		SourceLOC: 10,
		Sections: []DocSection{
			{Identifier: "module", Kind: KindModule, Status: StatusFilled, Text: "HTTP surface."},
			{
				Identifier: "handle",
				Kind:       KindFunction,
				Status:     StatusFilled,
				Text:       "Dispatch one request.\n\nRetries are the caller's concern.",
				Line:       3,
			},
			{Identifier: "Notes", Kind: KindProse, Status: StatusFilled, Text: "Deploy only behind the gateway."},
		},
	}

	first := Serialize(node)
	parsed := ParseDocument(node.Path, first)

	assert.Equal(t, "Dispatch one request.\n\nRetries are the caller's concern.",
		parsed.Section("handle").Text, "multi-paragraph bodies survive verbatim")
	notes := parsed.Section("Notes")
	require.NotNil(t, notes, "human-added headings are kept as prose sections")
	assert.Equal(t, "Deploy only behind the gateway.", notes.Text)

	assert.Equal(t, string(first), string(Serialize(parsed)))
}

// ---------------------------------------------------------------------------
// TestLoad
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}

	write("README.md", "# demo Code Map [L0:root]\n\nSee [calculator](domains/calculator.md).\n")
	write("domains/calculator.md", domainDoc)
	write("modules/operations.py.md", moduleDoc)
	write(".codemap/scratch.md", "# ignored\n")

	m, err := Load(root)
	require.NoError(t, err)

	require.Len(t, m.Nodes, 3, "hidden directories are not loaded")
	assert.Equal(t, "README.md", m.Nodes[0].Path)
	assert.Equal(t, "domains/calculator.md", m.Nodes[1].Path)
	assert.Equal(t, "modules/operations.py.md", m.Nodes[2].Path)

	readme := m.ByPath("README.md")
	require.NotNil(t, readme)
	assert.Equal(t, LevelRoot, readme.Level)
	assert.Equal(t, []string{"domains/calculator.md"}, readme.CrossRefs)

	assert.Len(t, m.ByLevel(LevelModule), 1)

	anchors := m.Anchors()
	assert.Len(t, anchors["L0:root"], 1)
	assert.Len(t, anchors["L1:calculator"], 1)

	t.Run("missing root errors", func(t *testing.T) {
		_, err := Load(filepath.Join(root, "absent"))
		assert.Error(t, err)
	})
}

// ---------------------------------------------------------------------------
// TestAnchors
// ---------------------------------------------------------------------------

func TestSlugify(t *testing.T) {
	assert.Equal(t, "operations-py", Slugify("operations.py"))
	assert.Equal(t, "advanced-scientific-py", Slugify("advanced/scientific.py"))
	assert.Equal(t, "ts-app", Slugify("ts_app"))
	assert.Equal(t, "a-b", Slugify("--A  b--"))
}

func TestAnchorHelpers(t *testing.T) {
	assert.Equal(t, "L2:src-lib-rs", ModuleAnchor("src/lib.rs"))
	assert.Equal(t, "L1:calculator", DomainAnchor("calculator"))
	assert.Equal(t, "modules/a/b.py.md", ModuleDocPath("a/b.py"))
	assert.Equal(t, "domains/ts-app.md", DomainDocPath("ts_app"))
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("Describe add")
	assert.Equal(t, "<!-- TODO: Describe add -->", p)
	assert.True(t, IsPlaceholder(p))
	assert.False(t, IsPlaceholder("Add two numbers."))
}
