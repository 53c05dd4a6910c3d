package source

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolver rewrites raw import specifiers into source-root-relative file
// paths. Resolved targets feed the Dependencies links between module
// documents; specifiers that point outside the tree (stdlib, external
// packages) simply fail to resolve and are ignored.
type Resolver struct {
	sourceRoot string
	fileSet    map[string]bool
	dirIndex   map[string][]string
	tsPackages map[string]string // package name -> main file, from workspace package.json files
	goModule   string
}

// NewResolver builds a Resolver from the source root and the set of known
// root-relative file paths. Workspace metadata (package.json, go.mod) is
// scanned once to enable package-aware resolution.
func NewResolver(sourceRoot string, knownFiles []string) *Resolver {
	r := &Resolver{
		sourceRoot: sourceRoot,
		fileSet:    make(map[string]bool, len(knownFiles)),
		dirIndex:   make(map[string][]string),
		tsPackages: make(map[string]string),
	}

	for _, f := range knownFiles {
		r.fileSet[f] = true
		dir := filepath.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}

	r.scanTSPackages()
	r.scanGoModule()

	return r
}

// Resolve maps one raw import specifier from fromFile to a root-relative
// source path. The boolean is false when the specifier points outside the
// known file set.
func (r *Resolver) Resolve(spec, fromFile string, lang Language) (string, bool) {
	switch lang {
	case LangPython:
		return r.resolvePython(spec, fromFile)
	case LangGo:
		return r.resolveGo(spec)
	case LangTypeScript:
		return r.resolveTS(spec, fromFile)
	case LangRust:
		return r.resolveRust(spec, fromFile)
	}
	return "", false
}

// ResolveAll resolves every specifier of a file record, deduplicated and
// sorted, dropping self-references and unresolvable imports.
func (r *Resolver) ResolveAll(rec *FileRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, spec := range rec.Imports {
		target, ok := r.Resolve(spec, rec.Path, rec.Language)
		if !ok || target == rec.Path || seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// --- Python ---

func (r *Resolver) resolvePython(spec, fromFile string) (string, bool) {
	if strings.HasPrefix(spec, ".") {
		// Relative import: leading dots walk up from the importing file.
		dots := 0
		for _, c := range spec {
			if c != '.' {
				break
			}
			dots++
		}
		baseDir := filepath.Dir(fromFile)
		for i := 1; i < dots; i++ {
			baseDir = filepath.Dir(baseDir)
		}
		modulePart := spec[dots:]
		if modulePart == "" {
			return r.probe(filepath.Join(baseDir, "__init__"), []string{".py"})
		}
		rel := strings.ReplaceAll(modulePart, ".", "/")
		return r.probe(filepath.Join(baseDir, rel), []string{".py", "/__init__.py"})
	}

	// Absolute import: Python searches the importing file's directory first,
	// then the tree root.
	rel := strings.ReplaceAll(spec, ".", "/")
	if resolved, ok := r.probe(filepath.Join(filepath.Dir(fromFile), rel), []string{".py", "/__init__.py"}); ok {
		return resolved, true
	}
	return r.probe(rel, []string{".py", "/__init__.py"})
}

// --- Go ---

func (r *Resolver) resolveGo(spec string) (string, bool) {
	if r.goModule == "" || !strings.HasPrefix(spec, r.goModule) {
		return "", false // stdlib or external module
	}

	relDir := strings.TrimPrefix(strings.TrimPrefix(spec, r.goModule), "/")
	files := r.dirIndex[relDir]
	if len(files) == 0 {
		return "", false
	}

	// Import targets a package, not a file; pick the first .go file for a
	// stable representative.
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)
	for _, f := range sorted {
		if strings.HasSuffix(f, ".go") {
			return f, true
		}
	}
	return "", false
}

// --- TypeScript ---

var tsProbeExtensions = []string{".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.tsx", "/index.js"}

func (r *Resolver) resolveTS(spec, fromFile string) (string, bool) {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		base := filepath.Clean(filepath.Join(filepath.Dir(fromFile), spec))
		return r.probe(base, tsProbeExtensions)
	}
	if main, ok := r.tsPackages[spec]; ok {
		return main, true
	}
	return "", false
}

// --- Rust ---

func (r *Resolver) resolveRust(spec, fromFile string) (string, bool) {
	if idx := strings.Index(spec, "::{"); idx != -1 {
		spec = spec[:idx] // strip use-list braces
	}

	// A use path usually names an item, not a module, so probe the full path
	// first and then retry with the trailing segment dropped.
	probeMod := func(baseDir, modulePath string) (string, bool) {
		rel := strings.ReplaceAll(modulePath, "::", "/")
		if resolved, ok := r.probe(filepath.Join(baseDir, rel), []string{".rs", "/mod.rs"}); ok {
			return resolved, true
		}
		parent := filepath.Dir(rel)
		if parent == "." || parent == rel {
			return "", false
		}
		return r.probe(filepath.Join(baseDir, parent), []string{".rs", "/mod.rs"})
	}

	switch {
	case strings.HasPrefix(spec, "crate::"):
		modulePath := strings.TrimPrefix(spec, "crate::")
		for _, baseDir := range []string{"src", ".", rsCrateRoot(fromFile)} {
			if baseDir == "" {
				continue
			}
			if resolved, ok := probeMod(baseDir, modulePath); ok {
				return resolved, true
			}
		}
		return "", false

	case strings.HasPrefix(spec, "self::"):
		return probeMod(filepath.Dir(fromFile), strings.TrimPrefix(spec, "self::"))

	case strings.HasPrefix(spec, "super::"):
		return probeMod(filepath.Dir(filepath.Dir(fromFile)), strings.TrimPrefix(spec, "super::"))
	}
	return "", false // external crate
}

// rsCrateRoot walks up from a file path to the nearest src directory.
func rsCrateRoot(filePath string) string {
	dir := filepath.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if filepath.Base(dir) == "src" {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// --- Shared helpers ---

// probe checks basePath itself and with each extension appended against the
// known file set. No filesystem I/O.
func (r *Resolver) probe(basePath string, extensions []string) (string, bool) {
	basePath = filepath.ToSlash(basePath)
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// scanTSPackages reads the root package.json workspaces and records each
// workspace package's main file.
func (r *Resolver) scanTSPackages() {
	data, err := os.ReadFile(filepath.Join(r.sourceRoot, "package.json"))
	if err != nil {
		return
	}

	var root struct {
		Workspaces []string `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &root); err != nil || len(root.Workspaces) == 0 {
		return
	}

	for _, pattern := range root.Workspaces {
		matches, err := filepath.Glob(filepath.Join(r.sourceRoot, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			r.loadTSPackage(dir)
		}
	}
}

func (r *Resolver) loadTSPackage(absDir string) {
	data, err := os.ReadFile(filepath.Join(absDir, "package.json"))
	if err != nil {
		return
	}

	var pkg struct {
		Name string `json:"name"`
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Name == "" {
		return
	}

	relDir, err := filepath.Rel(r.sourceRoot, absDir)
	if err != nil {
		return
	}

	candidates := []string{
		filepath.Join(relDir, pkg.Main),
		filepath.Join(relDir, "src", "index"),
		filepath.Join(relDir, "index"),
	}
	if pkg.Main == "" {
		candidates = candidates[1:]
	}
	for _, c := range candidates {
		if resolved, ok := r.probe(filepath.Clean(c), tsProbeExtensions); ok {
			r.tsPackages[pkg.Name] = resolved
			return
		}
	}
}

// scanGoModule reads the module path from go.mod at the source root.
func (r *Resolver) scanGoModule() {
	f, err := os.Open(filepath.Join(r.sourceRoot, "go.mod"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			r.goModule = strings.TrimSpace(strings.TrimPrefix(line, "module"))
			return
		}
	}
}
