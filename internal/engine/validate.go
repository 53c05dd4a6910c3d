package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/source"
)

// SizeLimits are the per-level document ceilings, in lines.
type SizeLimits struct {
	L0 int
	L1 int
	L2 int
}

// DefaultSizeLimits mirrors the level defaults.
func DefaultSizeLimits() SizeLimits {
	return SizeLimits{
		L0: docmap.LevelRoot.MaxLines(),
		L1: docmap.LevelDomain.MaxLines(),
		L2: docmap.LevelModule.MaxLines(),
	}
}

func (s SizeLimits) forLevel(level docmap.Level) int {
	switch level {
	case docmap.LevelRoot:
		return s.L0
	case docmap.LevelDomain:
		return s.L1
	case docmap.LevelModule:
		return s.L2
	}
	return 0
}

// ValidateOptions tunes one Validator. Zero values take the defaults.
type ValidateOptions struct {
	Tolerance int // allowed code-link line drift, default 5
	Workers   int // 0 = NumCPU
	Sizes     SizeLimits
}

// Validator checks an existing map against its source tree. It never mutates
// documents; every problem becomes a report finding.
type Validator struct {
	parser source.Parser
	opts   ValidateOptions
}

func NewValidator(parser source.Parser, opts ValidateOptions) *Validator {
	if opts.Tolerance == 0 {
		opts.Tolerance = 5
	}
	zero := SizeLimits{}
	if opts.Sizes == zero {
		opts.Sizes = DefaultSizeLimits()
	}
	return &Validator{parser: parser, opts: opts}
}

// Run executes all five check classes. They are independent: a finding in one
// never short-circuits another, so a single run reports everything. An error
// is returned only when the map root itself is unreadable.
func (v *Validator) Run(ctx context.Context, mapRoot string) (*ValidationReport, error) {
	absMap, err := filepath.Abs(mapRoot)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absMap); err != nil {
		return nil, fmt.Errorf("map root: %w", err)
	}

	m, err := docmap.Load(absMap)
	if err != nil {
		return nil, err
	}

	rep := &ValidationReport{}
	v.checkStructure(m, rep)
	v.checkFileLinks(m, absMap, rep)
	v.checkCodeLinks(ctx, m, absMap, rep)
	v.checkSizes(m, rep)
	v.checkAnchors(m, rep)
	return rep, nil
}

// ---------------------------------------------------------------------------
// Check 1: structure
// ---------------------------------------------------------------------------

func (v *Validator) checkStructure(m *docmap.DocMap, rep *ValidationReport) {
	for _, required := range []string{docmap.ReadmeFile, docmap.ArchitectureFile} {
		if m.ByPath(required) == nil {
			rep.Structure = append(rep.Structure, fmt.Sprintf("missing %s", required))
		}
	}
}

// ---------------------------------------------------------------------------
// Check 2: file links
// ---------------------------------------------------------------------------

func (v *Validator) checkFileLinks(m *docmap.DocMap, absMap string, rep *ValidationReport) {
	for _, node := range m.Nodes {
		docDir := filepath.Dir(filepath.Join(absMap, filepath.FromSlash(node.Path)))
		for _, target := range node.CrossRefs {
			rep.FileLinksChecked++
			if _, err := os.Stat(filepath.Join(docDir, filepath.FromSlash(target))); err != nil {
				rep.FileLinks = append(rep.FileLinks,
					fmt.Sprintf("%s: broken link %s", node.Path, target))
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Check 3: code links
// ---------------------------------------------------------------------------

// extraction caches one referenced file's fresh parse for check 3.
type extraction struct {
	rec *source.FileRecord
	err error
}

func (v *Validator) checkCodeLinks(ctx context.Context, m *docmap.DocMap, absMap string, rep *ValidationReport) {
	// Resolve every referenced file once, then extract the unique set
	// concurrently so large maps validate quickly.
	targets := make(map[string]bool)
	for _, node := range m.Nodes {
		docDir := filepath.Dir(filepath.Join(absMap, filepath.FromSlash(node.Path)))
		for _, ref := range node.CodeRefs {
			targets[filepath.Join(docDir, filepath.FromSlash(ref.Target))] = true
		}
	}

	paths := make([]string, 0, len(targets))
	for p := range targets {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	workers := v.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	cache := make(map[string]extraction, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, absPath := range paths {
		g.Go(func() error {
			ext := v.extractTarget(gctx, absPath)
			mu.Lock()
			cache[absPath] = ext
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, node := range m.Nodes {
		docDir := filepath.Dir(filepath.Join(absMap, filepath.FromSlash(node.Path)))
		for _, ref := range node.CodeRefs {
			rep.CodeLinksChecked++

			ext := cache[filepath.Join(docDir, filepath.FromSlash(ref.Target))]
			if ext.err != nil {
				rep.CodeLinks = append(rep.CodeLinks,
					fmt.Sprintf("%s: %s → %v", node.Path, ref.Target, ext.err))
				continue
			}

			sym := findSymbolRecord(ext.rec, ref.Symbol)
			if sym == nil {
				rep.CodeLinks = append(rep.CodeLinks,
					fmt.Sprintf("%s: symbol %q not found in %s", node.Path, ref.Symbol, ref.Target))
				continue
			}
			if drift := abs(ref.Line - sym.StartLine); drift > v.opts.Tolerance {
				rep.CodeLinks = append(rep.CodeLinks,
					fmt.Sprintf("%s: %q claims line %d but is at %d (drift %d > %d)",
						node.Path, ref.Symbol, ref.Line, sym.StartLine, drift, v.opts.Tolerance))
			}
		}
	}
}

func (v *Validator) extractTarget(ctx context.Context, absPath string) extraction {
	data, err := os.ReadFile(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return extraction{err: errors.New("file does not exist")}
	}
	if err != nil {
		return extraction{err: err}
	}

	lang, ok := source.LanguageForPath(absPath)
	if !ok {
		return extraction{err: errors.New("not an extractable source file")}
	}

	rec, err := v.parser.Parse(ctx, absPath, data, lang)
	return extraction{rec: rec, err: err}
}

func findSymbolRecord(rec *source.FileRecord, qualifiedName string) *source.SymbolRecord {
	if rec == nil {
		return nil
	}
	for i := range rec.Symbols {
		if rec.Symbols[i].QualifiedName == qualifiedName {
			return &rec.Symbols[i]
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ---------------------------------------------------------------------------
// Check 4: size limits
// ---------------------------------------------------------------------------

func (v *Validator) checkSizes(m *docmap.DocMap, rep *ValidationReport) {
	for _, node := range m.Nodes {
		limit := v.opts.Sizes.forLevel(node.Level)
		if limit <= 0 || node.LineCount <= limit {
			continue
		}
		rep.Sizes = append(rep.Sizes,
			fmt.Sprintf("%s: %d lines exceeds the %s limit of %d (over by %d)",
				node.Path, node.LineCount, node.Level, limit, node.LineCount-limit))
	}
}

// ---------------------------------------------------------------------------
// Check 5: anchors and reachability
// ---------------------------------------------------------------------------

func (v *Validator) checkAnchors(m *docmap.DocMap, rep *ValidationReport) {
	anchors := m.Anchors()

	ids := make([]string, 0, len(anchors))
	for id, nodes := range anchors {
		rep.AnchorsChecked += len(nodes)
		if len(nodes) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		var locations []string
		for _, n := range anchors[id] {
			locations = append(locations, n.Path)
		}
		rep.Anchors = append(rep.Anchors,
			fmt.Sprintf("duplicate anchor %s in %s", id, strings.Join(locations, " and ")))
	}

	// L1 documents must be reachable from the root index, L2 documents from
	// some L1 document.
	fromRoot := reachable(m, []*docmap.MapNode{m.ByPath(docmap.ReadmeFile)})
	for _, node := range m.ByLevel(docmap.LevelDomain) {
		if !fromRoot[node.Path] {
			rep.Anchors = append(rep.Anchors,
				fmt.Sprintf("%s: not reachable from %s", node.Path, docmap.ReadmeFile))
		}
	}

	fromDomains := reachable(m, m.ByLevel(docmap.LevelDomain))
	for _, node := range m.ByLevel(docmap.LevelModule) {
		if !fromDomains[node.Path] {
			rep.Anchors = append(rep.Anchors,
				fmt.Sprintf("%s: not reachable from any domain document", node.Path))
		}
	}
}

// reachable walks cross-reference links breadth-first from the given start
// nodes and returns the set of visited map paths.
func reachable(m *docmap.DocMap, start []*docmap.MapNode) map[string]bool {
	seen := make(map[string]bool)
	var queue []*docmap.MapNode
	for _, n := range start {
		if n != nil && !seen[n.Path] {
			seen[n.Path] = true
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, target := range node.CrossRefs {
			rel := path.Join(path.Dir(node.Path), target)
			if strings.HasPrefix(rel, "../") || rel == ".." {
				continue // points outside the map
			}
			next := m.ByPath(rel)
			if next == nil || seen[next.Path] {
				continue
			}
			seen[next.Path] = true
			queue = append(queue, next)
		}
	}
	return seen
}
