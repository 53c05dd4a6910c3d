package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestResolver_Python
// ---------------------------------------------------------------------------

func TestResolver_Python(t *testing.T) {
	r := NewResolver("../../testdata/fixtures/calculator", []string{
		"operations.py",
		"core.py",
		"advanced/scientific.py",
	})

	t.Run("absolute import from root file", func(t *testing.T) {
		target, ok := r.Resolve("operations", "core.py", LangPython)
		require.True(t, ok)
		assert.Equal(t, "operations.py", target)
	})

	t.Run("absolute import from nested file falls back to root", func(t *testing.T) {
		target, ok := r.Resolve("operations", "advanced/scientific.py", LangPython)
		require.True(t, ok)
		assert.Equal(t, "operations.py", target)
	})

	t.Run("relative import", func(t *testing.T) {
		target, ok := r.Resolve("..operations", "advanced/scientific.py", LangPython)
		require.True(t, ok)
		assert.Equal(t, "operations.py", target)
	})

	t.Run("stdlib import does not resolve", func(t *testing.T) {
		_, ok := r.Resolve("math", "advanced/scientific.py", LangPython)
		assert.False(t, ok)
	})
}

// ---------------------------------------------------------------------------
// TestResolver_Go
// ---------------------------------------------------------------------------

func TestResolver_Go(t *testing.T) {
	r := NewResolver("../../testdata/fixtures/ledger", []string{
		"ledger.go",
		"store/backend.go",
	})

	t.Run("module-local package import", func(t *testing.T) {
		target, ok := r.Resolve("example.com/ledger/store", "ledger.go", LangGo)
		require.True(t, ok)
		assert.Equal(t, "store/backend.go", target)
	})

	t.Run("stdlib import does not resolve", func(t *testing.T) {
		_, ok := r.Resolve("fmt", "ledger.go", LangGo)
		assert.False(t, ok)
	})

	t.Run("external module does not resolve", func(t *testing.T) {
		_, ok := r.Resolve("github.com/other/pkg", "ledger.go", LangGo)
		assert.False(t, ok)
	})
}

// ---------------------------------------------------------------------------
// TestResolver_TypeScript
// ---------------------------------------------------------------------------

func TestResolver_TypeScript(t *testing.T) {
	r := NewResolver("../../testdata/fixtures/ts_app", []string{
		"cart.ts",
		"pricing.ts",
	})

	t.Run("relative import", func(t *testing.T) {
		target, ok := r.Resolve("./pricing", "cart.ts", LangTypeScript)
		require.True(t, ok)
		assert.Equal(t, "pricing.ts", target)
	})

	t.Run("bare specifier without workspace does not resolve", func(t *testing.T) {
		_, ok := r.Resolve("lodash", "cart.ts", LangTypeScript)
		assert.False(t, ok)
	})
}

// ---------------------------------------------------------------------------
// TestResolver_Rust
// ---------------------------------------------------------------------------

func TestResolver_Rust(t *testing.T) {
	r := NewResolver("../../testdata/fixtures/rs_lib", []string{
		"src/lib.rs",
		"src/shapes.rs",
		"src/units.rs",
	})

	t.Run("crate path naming an item", func(t *testing.T) {
		target, ok := r.Resolve("crate::units::Meters", "src/shapes.rs", LangRust)
		require.True(t, ok)
		assert.Equal(t, "src/units.rs", target, "trailing item segment drops to the module file")
	})

	t.Run("crate path naming a module", func(t *testing.T) {
		target, ok := r.Resolve("crate::shapes", "src/lib.rs", LangRust)
		require.True(t, ok)
		assert.Equal(t, "src/shapes.rs", target)
	})

	t.Run("use list braces are stripped", func(t *testing.T) {
		target, ok := r.Resolve("crate::units::{Meters, Centimeters}", "src/shapes.rs", LangRust)
		require.True(t, ok)
		assert.Equal(t, "src/units.rs", target)
	})

	t.Run("external crate does not resolve", func(t *testing.T) {
		_, ok := r.Resolve("serde::Serialize", "src/shapes.rs", LangRust)
		assert.False(t, ok)
	})
}

// ---------------------------------------------------------------------------
// TestResolver_ResolveAll
// ---------------------------------------------------------------------------

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver("../../testdata/fixtures/calculator", []string{
		"operations.py",
		"core.py",
		"advanced/scientific.py",
	})

	rec := &FileRecord{
		Path:     "advanced/scientific.py",
		Language: LangPython,
		Imports:  []string{"math", "operations", "operations", "advanced.scientific"},
	}

	got := r.ResolveAll(rec)
	assert.Equal(t, []string{"operations.py"}, got,
		"stdlib dropped, duplicates collapsed, self-reference dropped")
}
