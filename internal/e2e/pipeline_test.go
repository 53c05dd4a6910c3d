//go:build e2e

package e2e

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/graph"
	"github.com/dusk-indust/codemap/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calculatorFixture returns the path of the Python fixture tree: two files at
// the root plus one in a subdirectory, so generation produces two domains.
func calculatorFixture() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "calculator")
}

// newParser returns a tree-sitter parser that is closed when the test ends.
func newParser(t *testing.T) source.Parser {
	t.Helper()
	parser := source.NewTreeSitterParser()
	t.Cleanup(func() { _ = parser.Close() })
	return parser
}

// copyTree copies a fixture into dst so a test can mutate the sources.
func copyTree(t *testing.T, src, dst string) {
	t.Helper()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
}

// generateMap runs one full generation pass over srcDir into mapDir.
func generateMap(t *testing.T, parser source.Parser, srcDir, mapDir string, store graph.Store) *engine.GenerationReport {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := engine.NewGenerator(parser, engine.GenerateOptions{Store: store})
	report, err := gen.Run(ctx, srcDir, mapDir)
	require.NoError(t, err)
	return report
}

// validateMap runs all five check classes over mapDir with default options.
func validateMap(t *testing.T, parser source.Parser, mapDir string) *engine.ValidationReport {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	v := engine.NewValidator(parser, engine.ValidateOptions{})
	report, err := v.Run(ctx, mapDir)
	require.NoError(t, err)
	return report
}

func readDoc(t *testing.T, mapDir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(mapDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func writeDoc(t *testing.T, mapDir, rel, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(mapDir, filepath.FromSlash(rel)), []byte(content), 0o644)
	require.NoError(t, err)
}

// TestE2E_GenerateAndValidate generates a map for the calculator fixture,
// checks the reported deltas and the rendered documents, validates the fresh
// map, and confirms a second pass changes nothing.
func TestE2E_GenerateAndValidate(t *testing.T) {
	parser := newParser(t)
	mapDir := t.TempDir()

	report := generateMap(t, parser, calculatorFixture(), mapDir, nil)

	// --- First pass creates the whole tree ---

	assert.Equal(t, 3, report.FilesScanned)
	assert.Empty(t, report.ParseErrors)
	assert.Equal(t, []string{
		"modules/advanced/scientific.py.md",
		"modules/core.py.md",
		"modules/operations.py.md",
		"domains/advanced.md",
		"domains/calculator.md",
		"README.md",
		"ARCHITECTURE.md",
	}, report.Created)
	assert.Empty(t, report.Updated)
	assert.Empty(t, report.OrphanedSections)
	assert.Empty(t, report.OrphanedDocs)

	// Undocumented symbols (Calculator.clear, add, _format_entry), two domain
	// overviews, two README domain rows and the two architecture stubs.
	assert.Equal(t, 9, report.Unfilled)

	// --- Rendered documents ---

	ops := readDoc(t, mapDir, "modules/operations.py.md")
	assert.Contains(t, ops, "# operations.py [L2:operations-py]")
	assert.Contains(t, ops, "**Source**: [`operations.py`](")
	assert.Contains(t, ops, "### [`divide`]")
	assert.Contains(t, ops, "Divide a by b.")
	assert.Contains(t, ops, "<!-- TODO: Describe add -->")

	core := readDoc(t, mapDir, "modules/core.py.md")
	assert.Contains(t, core, "**Methods:**")
	assert.Contains(t, core, "[`Calculator.add`]")
	assert.Contains(t, core, "<!-- TODO: Describe Calculator.clear -->")

	domain := readDoc(t, mapDir, "domains/calculator.md")
	assert.Contains(t, domain, "[`core.py`](../modules/core.py.md)")
	assert.Contains(t, domain, "Basic arithmetic operations.")

	readme := readDoc(t, mapDir, "README.md")
	assert.Contains(t, readme, "# calculator Code Map")
	assert.Contains(t, readme, "[calculator](domains/calculator.md)")
	assert.Contains(t, readme, "[advanced](domains/advanced.md)")

	arch := readDoc(t, mapDir, "ARCHITECTURE.md")
	assert.Contains(t, arch, "## Entry Points")
	assert.Contains(t, arch, "[`square_root`](modules/advanced/scientific.py.md)")

	// --- The fresh map validates clean ---

	vr := validateMap(t, parser, mapDir)
	assert.Zero(t, vr.Total(), "fresh map should have no findings: %v", vr)
	assert.Greater(t, vr.FileLinksChecked, 0)
	assert.Greater(t, vr.CodeLinksChecked, 0)
	assert.Greater(t, vr.AnchorsChecked, 0)

	// --- A second pass over an unchanged tree is a no-op ---

	again := generateMap(t, parser, calculatorFixture(), mapDir, nil)
	assert.Empty(t, again.Created)
	assert.Empty(t, again.Updated)
	assert.Empty(t, again.NewSections)
	assert.Empty(t, again.OrphanedSections)
	assert.Equal(t, 9, again.Unfilled)
}

// TestE2E_FillPlaceholderSurvivesRegeneration edits a generated placeholder
// the way a human would and checks that regeneration preserves the text.
func TestE2E_FillPlaceholderSurvivesRegeneration(t *testing.T) {
	parser := newParser(t)
	mapDir := t.TempDir()

	generateMap(t, parser, calculatorFixture(), mapDir, nil)

	ops := readDoc(t, mapDir, "modules/operations.py.md")
	require.Contains(t, ops, "<!-- TODO: Describe add -->")
	filled := strings.Replace(ops,
		"<!-- TODO: Describe add -->",
		"Add two numbers and return the sum.", 1)
	writeDoc(t, mapDir, "modules/operations.py.md", filled)

	report := generateMap(t, parser, calculatorFixture(), mapDir, nil)
	assert.Empty(t, report.Created)
	assert.Equal(t, 8, report.Unfilled, "filling one placeholder lowers the count by one")

	ops = readDoc(t, mapDir, "modules/operations.py.md")
	assert.Contains(t, ops, "Add two numbers and return the sum.")
	assert.NotContains(t, ops, "<!-- TODO: Describe add -->")
}

// TestE2E_OrphanAndRevival removes a documented symbol from the source,
// regenerates, and checks the section moves to the orphan tail with its text
// intact; restoring the symbol revives the section.
func TestE2E_OrphanAndRevival(t *testing.T) {
	parser := newParser(t)
	tmp := t.TempDir()
	srcDir := filepath.Join(tmp, "calculator")
	mapDir := filepath.Join(tmp, "map")
	copyTree(t, calculatorFixture(), srcDir)

	generateMap(t, parser, srcDir, mapDir, nil)

	// Hand-fill subtract so revival has distinctive text to preserve.
	ops := readDoc(t, mapDir, "modules/operations.py.md")
	require.Contains(t, ops, "Subtract b from a.")
	writeDoc(t, mapDir, "modules/operations.py.md",
		strings.Replace(ops, "Subtract b from a.", "Subtract b from a, signed.", 1))

	original, err := os.ReadFile(filepath.Join(srcDir, "operations.py"))
	require.NoError(t, err)

	// --- Delete subtract from the source ---

	withoutSubtract := strings.Replace(string(original),
		"def subtract(a: float, b: float) -> float:\n    \"\"\"Subtract b from a.\"\"\"\n    return a - b\n\n\n", "", 1)
	require.NotEqual(t, string(original), withoutSubtract, "fixture edit must remove subtract")
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "operations.py"), []byte(withoutSubtract), 0o644))

	report := generateMap(t, parser, srcDir, mapDir, nil)
	assert.Equal(t, []string{"modules/operations.py.md: subtract"}, report.OrphanedSections)
	assert.Equal(t, []string{"modules/operations.py.md"}, report.Updated)
	assert.Empty(t, report.NewSections)

	ops = readDoc(t, mapDir, "modules/operations.py.md")
	assert.Contains(t, ops, "## Orphaned")
	assert.Contains(t, ops, "- function `subtract`: Subtract b from a, signed.")

	// Orphans are report notes, never validation failures.
	vr := validateMap(t, parser, mapDir)
	assert.Zero(t, vr.Total(), "orphaned section must not fail validation: %v", vr)

	// --- Restore the symbol ---

	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "operations.py"), original, 0o644))

	report = generateMap(t, parser, srcDir, mapDir, nil)
	assert.Empty(t, report.OrphanedSections)
	assert.Empty(t, report.NewSections, "a revived section is not a new one")

	ops = readDoc(t, mapDir, "modules/operations.py.md")
	assert.NotContains(t, ops, "## Orphaned")
	assert.Contains(t, ops, "Subtract b from a, signed.", "revival keeps the hand-filled text")
}

// TestE2E_DeletedSourceReportsOrphanedDoc deletes a whole source file and
// checks the document is reported but kept on disk, and that its dead code
// links surface during validation.
func TestE2E_DeletedSourceReportsOrphanedDoc(t *testing.T) {
	parser := newParser(t)
	tmp := t.TempDir()
	srcDir := filepath.Join(tmp, "calculator")
	mapDir := filepath.Join(tmp, "map")
	copyTree(t, calculatorFixture(), srcDir)

	generateMap(t, parser, srcDir, mapDir, nil)
	require.NoError(t, os.Remove(filepath.Join(srcDir, "advanced", "scientific.py")))

	report := generateMap(t, parser, srcDir, mapDir, nil)
	assert.Equal(t, 2, report.FilesScanned)
	assert.Equal(t, []string{"modules/advanced/scientific.py.md"}, report.OrphanedDocs)

	_, err := os.Stat(filepath.Join(mapDir, "modules", "advanced", "scientific.py.md"))
	assert.NoError(t, err, "orphaned documents are reported, never deleted")

	// The three symbol links now point at a missing file.
	vr := validateMap(t, parser, mapDir)
	assert.Len(t, vr.CodeLinks, 3)
	assert.Empty(t, vr.FileLinks, "doc-to-doc links are still intact")
}

// TestE2E_MultiLanguageTree generates over the whole fixture root, covering
// all four grammars and the graph index in one pass.
func TestE2E_MultiLanguageTree(t *testing.T) {
	parser := newParser(t)
	mapDir := t.TempDir()
	store := graph.NewMemStore()
	fixtures := filepath.Join("..", "..", "testdata", "fixtures")

	report := generateMap(t, parser, fixtures, mapDir, store)

	assert.Equal(t, 10, report.FilesScanned)
	assert.Empty(t, report.ParseErrors)
	assert.Len(t, report.Created, 16, "10 modules, 4 domains, README and ARCHITECTURE")

	for _, doc := range []string{
		"domains/calculator.md",
		"domains/ledger.md",
		"domains/rs_lib.md",
		"domains/ts_app.md",
		"modules/ledger/ledger.go.md",
		"modules/ledger/store/backend.go.md",
		"modules/rs_lib/src/shapes.rs.md",
		"modules/ts_app/cart.ts.md",
	} {
		info, err := os.Stat(filepath.Join(mapDir, filepath.FromSlash(doc)))
		require.NoError(t, err, "document %s should exist", doc)
		assert.Greater(t, info.Size(), int64(0), "document %s should not be empty", doc)
	}

	vr := validateMap(t, parser, mapDir)
	assert.Zero(t, vr.Total(), "multi-language map should validate clean: %v", vr)

	// --- The index answers symbol queries across the tree ---

	ctx := context.Background()
	syms, err := store.FindSymbols(ctx, "multiply", 0)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "calculator/core.py:Calculator.multiply", syms[0].ID)
	assert.Equal(t, "calculator/operations.py:multiply", syms[1].ID)

	docs, err := graph.DocsFor(ctx, store, []string{syms[1].ID})
	require.NoError(t, err)
	require.Len(t, docs[syms[1].ID], 1)
	assert.Equal(t, "modules/calculator/operations.py.md", docs[syms[1].ID][0].Path)
}
