package graph

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/source"
)

// Rebuild replaces the store contents with the current map and extraction
// results. The whole index is derived from the markdown and the source tree,
// so it is dropped and reloaded rather than reconciled in place.
func Rebuild(ctx context.Context, st Store, m *docmap.DocMap, recs []*source.FileRecord) error {
	if err := st.InitSchema(ctx); err != nil {
		return err
	}
	if err := st.Reset(ctx); err != nil {
		return err
	}

	// File and symbol nodes come straight from the extraction records.
	fileSet := make(map[string]bool, len(recs))
	symbolSet := make(map[string]bool)
	for _, rec := range recs {
		fileSet[rec.Path] = true
		if err := st.AddFile(ctx, FileNode{
			Path:     rec.Path,
			Language: string(rec.Language),
			LOC:      rec.LOC,
		}); err != nil {
			return fmt.Errorf("indexing file %s: %w", rec.Path, err)
		}
		for _, sym := range rec.Symbols {
			id := SymbolID(rec.Path, sym.QualifiedName)
			symbolSet[id] = true
			if err := st.AddSymbol(ctx, SymbolNode{
				ID:       id,
				Name:     sym.QualifiedName,
				Kind:     string(sym.Kind),
				Exported: sym.Exported,
				FilePath: rec.Path,
				Line:     sym.StartLine,
			}); err != nil {
				return fmt.Errorf("indexing symbol %s: %w", id, err)
			}
		}
	}

	for _, n := range m.Nodes {
		if err := st.AddDoc(ctx, DocNode{
			Anchor:   n.AnchorID,
			Path:     n.Path,
			Level:    string(n.Level),
			Title:    n.Title,
			Sections: len(n.Live()),
			Orphans:  n.CountByStatus(docmap.StatusOrphaned),
		}); err != nil {
			return fmt.Errorf("indexing doc %s: %w", n.Path, err)
		}
	}

	// sortedFiles supports deterministic suffix matching for code links that
	// point outside the document's own source file.
	sortedFiles := make([]string, 0, len(fileSet))
	for p := range fileSet {
		sortedFiles = append(sortedFiles, p)
	}
	sort.Strings(sortedFiles)

	seen := make(map[Edge]bool)
	addEdge := func(e Edge) error {
		if seen[e] {
			return nil
		}
		seen[e] = true
		if err := st.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("indexing %s edge %s -> %s: %w", e.Kind, e.SourceID, e.TargetID, err)
		}
		return nil
	}

	for _, n := range m.Nodes {
		if n.Level == docmap.LevelModule && fileSet[n.SourceRel] {
			if err := addEdge(Edge{SourceID: n.AnchorID, TargetID: n.SourceRel, Kind: EdgeKindDocuments}); err != nil {
				return err
			}
			for _, dep := range n.Dependencies {
				if !fileSet[dep] {
					continue
				}
				if err := addEdge(Edge{SourceID: n.SourceRel, TargetID: dep, Kind: EdgeKindImports}); err != nil {
					return err
				}
			}
		}

		for _, ref := range n.CrossRefs {
			target := m.ByPath(path.Join(path.Dir(n.Path), ref))
			if target == nil {
				continue
			}
			if err := addEdge(Edge{SourceID: n.AnchorID, TargetID: target.AnchorID, Kind: EdgeKindLinks}); err != nil {
				return err
			}
		}

		for _, ref := range n.CodeRefs {
			file := refFile(n, ref.Target, sortedFiles)
			if file == "" {
				continue
			}
			id := SymbolID(file, ref.Symbol)
			if !symbolSet[id] {
				continue
			}
			if err := addEdge(Edge{SourceID: n.AnchorID, TargetID: id, Kind: EdgeKindReferences}); err != nil {
				return err
			}
		}
	}
	return nil
}

// refFile maps a code link target onto a source-root-relative file path.
// Generated documents only link into their own source file, so the node's
// SourceRef covers the common case; suffix matching handles hand-written
// links to other files.
func refFile(n *docmap.MapNode, target string, sortedFiles []string) string {
	if n.SourceRef != "" && target == n.SourceRef {
		return n.SourceRel
	}
	clean := path.Clean(target)
	for _, p := range sortedFiles {
		if clean == p || strings.HasSuffix(clean, "/"+p) {
			return p
		}
	}
	return ""
}
