package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/graph"
	"github.com/dusk-indust/codemap/internal/source"
)

// GenerateOptions tunes one Generator. The zero value is usable.
type GenerateOptions struct {
	ProjectName string      // defaults to the source root's base name
	Languages   []string    // restricts extraction when non-empty
	Excludes    []string    // extra glob patterns skipped during discovery
	Workers     int         // 0 = NumCPU
	Store       graph.Store // non-nil enables the graph index rebuild
}

// Generator produces and reconciles the documentation map for a source tree.
// It owns every section status transition; the validator never writes.
type Generator struct {
	parser source.Parser
	opts   GenerateOptions
}

func NewGenerator(parser source.Parser, opts GenerateOptions) *Generator {
	return &Generator{parser: parser, opts: opts}
}

// Run scans sourceRoot, reconciles every document under mapRoot and reports
// what changed. Per-file parse failures are recorded and skipped; only
// whole-run I/O failures return an error.
func (g *Generator) Run(ctx context.Context, sourceRoot, mapRoot string) (*GenerationReport, error) {
	absSource, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, err
	}
	absMap, err := filepath.Abs(mapRoot)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absSource); err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if err := os.MkdirAll(absMap, 0o755); err != nil {
		return nil, fmt.Errorf("map root: %w", err)
	}

	ext, err := ExtractTree(ctx, g.parser, absSource, g.opts)
	if err != nil {
		return nil, err
	}

	m, err := docmap.Load(absMap)
	if err != nil {
		return nil, err
	}

	report := &GenerationReport{FilesScanned: len(ext.Files), ParseErrors: ext.ParseErrors}
	recs := ext.Records

	resolver := source.NewResolver(absSource, ext.Files)
	for _, rec := range recs {
		if err := g.generateModule(m, absMap, absSource, rec, resolver, report); err != nil {
			return nil, err
		}
	}

	domains := groupDomains(recs, absSource)
	for _, d := range domains {
		if err := g.generateDomain(m, absMap, d, report); err != nil {
			return nil, err
		}
	}

	project := g.opts.ProjectName
	if project == "" {
		project = filepath.Base(absSource)
	}
	if err := g.ensureRootDocs(m, absMap, project, domains, recs, report); err != nil {
		return nil, err
	}

	// Documents whose source file vanished are reported, never deleted.
	for _, node := range m.Nodes {
		if node.Level != docmap.LevelModule || node.SourceRel == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(absSource, filepath.FromSlash(node.SourceRel))); errors.Is(err, fs.ErrNotExist) {
			report.OrphanedDocs = append(report.OrphanedDocs, node.Path)
		}
	}

	for _, node := range m.Nodes {
		report.Unfilled += node.CountByStatus(docmap.StatusPlaceholder)
	}

	if g.opts.Store != nil {
		// The link fields (CrossRefs, CodeRefs) only exist on parsed documents,
		// so index the serialized state rather than the in-memory nodes.
		final, err := docmap.Load(absMap)
		if err != nil {
			return nil, err
		}
		if err := graph.Rebuild(ctx, g.opts.Store, final, recs); err != nil {
			return nil, fmt.Errorf("rebuilding index: %w", err)
		}
	}

	return report, nil
}

// ---------------------------------------------------------------------------
// Module documents
// ---------------------------------------------------------------------------

func (g *Generator) generateModule(m *docmap.DocMap, absMap, absSource string, rec *source.FileRecord, resolver *source.Resolver, report *GenerationReport) error {
	docPath := docmap.ModuleDocPath(rec.Path)
	node := m.ByPath(docPath)
	if node == nil {
		node = &docmap.MapNode{Path: docPath}
		m.Add(node)
	}

	node.Level = docmap.LevelModule
	node.AnchorID = docmap.ModuleAnchor(rec.Path)
	node.Title = rec.Path
	node.SourceRel = rec.Path
	node.SourceRef = refTo(absMap, docPath, filepath.Join(absSource, filepath.FromSlash(rec.Path)))
	node.SourceLOC = rec.LOC
	node.Dependencies = resolver.ResolveAll(rec)

	delta := reconcile(node, entriesFor(rec))
	recordDelta(report, docPath, delta)
	return writeDoc(absMap, node, report)
}

// ---------------------------------------------------------------------------
// Domain documents
// ---------------------------------------------------------------------------

type domainGroup struct {
	name string
	recs []*source.FileRecord
}

// groupDomains buckets records by top-level source directory; files directly
// under the root fall into a domain named after the root itself.
func groupDomains(recs []*source.FileRecord, absSource string) []domainGroup {
	rootDomain := strings.ToLower(filepath.Base(absSource))

	byName := make(map[string][]*source.FileRecord)
	for _, rec := range recs {
		name := rootDomain
		if i := strings.Index(rec.Path, "/"); i > 0 {
			name = rec.Path[:i]
		}
		byName[name] = append(byName[name], rec)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]domainGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, domainGroup{name: name, recs: byName[name]})
	}
	return groups
}

func (g *Generator) generateDomain(m *docmap.DocMap, absMap string, d domainGroup, report *GenerationReport) error {
	docPath := docmap.DomainDocPath(d.name)
	node := m.ByPath(docPath)
	if node == nil {
		node = &docmap.MapNode{
			Path: docPath,
			Sections: []docmap.DocSection{{
				Identifier: "Overview",
				Kind:       docmap.KindProse,
				Status:     docmap.StatusPlaceholder,
				Text:       docmap.Placeholder(fmt.Sprintf("Describe the %s domain", d.name)),
			}},
		}
		m.Add(node)
	}

	node.Level = docmap.LevelDomain
	node.AnchorID = docmap.DomainAnchor(d.name)
	node.Title = d.name

	delta := reconcile(node, domainEntries(d.recs))
	recordDelta(report, docPath, delta)
	return writeDoc(absMap, node, report)
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

func recordDelta(report *GenerationReport, docPath string, delta reconcileDelta) {
	for _, id := range delta.added {
		report.NewSections = append(report.NewSections, fmt.Sprintf("%s: %s", docPath, id))
	}
	for _, id := range delta.orphaned {
		report.OrphanedSections = append(report.OrphanedSections, fmt.Sprintf("%s: %s", docPath, id))
	}
}

// writeDoc serializes a node and writes it only when the bytes changed.
func writeDoc(absMap string, node *docmap.MapNode, report *GenerationReport) error {
	data := docmap.Serialize(node)
	node.LineCount = docmap.CountLines(data)

	abs := filepath.Join(absMap, filepath.FromSlash(node.Path))
	old, err := os.ReadFile(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return err
		}
		report.Created = append(report.Created, node.Path)
	case err != nil:
		return fmt.Errorf("reading %s: %w", node.Path, err)
	case !bytes.Equal(old, data):
		if err := os.WriteFile(abs, data, 0o644); err != nil {
			return err
		}
		report.Updated = append(report.Updated, node.Path)
	}
	return nil
}

// keepLanguages filters discovered files down to the configured languages.
// An empty list keeps everything.
func keepLanguages(files []string, langs []string) []string {
	if len(langs) == 0 {
		return files
	}
	allowed := make(map[source.Language]bool, len(langs))
	for _, l := range langs {
		allowed[source.Language(strings.ToLower(l))] = true
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if lang, ok := source.LanguageForPath(f); ok && allowed[lang] {
			kept = append(kept, f)
		}
	}
	return kept
}

// refTo computes the relative link target from a map document to an absolute
// path on disk.
func refTo(absMap, docPath, absTarget string) string {
	docDir := filepath.Dir(filepath.Join(absMap, filepath.FromSlash(docPath)))
	rel, err := filepath.Rel(docDir, absTarget)
	if err != nil {
		return filepath.ToSlash(absTarget)
	}
	return filepath.ToSlash(rel)
}
