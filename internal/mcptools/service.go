package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codemap/internal/config"
	"github.com/dusk-indust/codemap/internal/engine"
	"github.com/dusk-indust/codemap/internal/graph"
	"github.com/dusk-indust/codemap/internal/source"
	"github.com/dusk-indust/codemap/internal/status"
)

// CodemapService handles MCP tool calls. One service holds the parser, the
// graph store and the project configuration shared by every call.
type CodemapService struct {
	parser source.Parser
	store  graph.Store
	cfg    *config.Config
}

// NewCodemapService creates a CodemapService. A nil cfg falls back to the
// defaults.
func NewCodemapService(parser source.Parser, store graph.Store, cfg *config.Config) *CodemapService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &CodemapService{parser: parser, store: store, cfg: cfg}
}

// Generate runs a full generation pass and refreshes the graph index.
func (s *CodemapService) Generate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	sourceDir := input.SourceDir
	if sourceDir == "" {
		sourceDir = s.cfg.SourceRoot
	}
	mapDir := input.MapDir
	if mapDir == "" {
		mapDir = s.cfg.MapRoot
	}

	gen := engine.NewGenerator(s.parser, engine.GenerateOptions{
		ProjectName: s.cfg.ProjectName,
		Languages:   s.cfg.Languages,
		Excludes:    s.cfg.Exclude,
		Workers:     s.cfg.Workers,
		Store:       s.store,
	})
	report, err := gen.Run(ctx, sourceDir, mapDir)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	return nil, GenerateOutput{
		FilesScanned:     report.FilesScanned,
		Created:          report.Created,
		Updated:          report.Updated,
		NewSections:      report.NewSections,
		OrphanedSections: report.OrphanedSections,
		OrphanedDocs:     report.OrphanedDocs,
		ParseErrors:      report.ParseErrors,
		Unfilled:         report.Unfilled,
	}, nil
}

// Validate runs every check class against the map and returns the findings.
// It never writes.
func (s *CodemapService) Validate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	mapDir := input.MapDir
	if mapDir == "" {
		mapDir = s.cfg.MapRoot
	}

	v := engine.NewValidator(s.parser, engine.ValidateOptions{
		Tolerance: s.cfg.Tolerance,
		Workers:   s.cfg.Workers,
		Sizes: engine.SizeLimits{
			L0: s.cfg.SizeLimits.L0,
			L1: s.cfg.SizeLimits.L1,
			L2: s.cfg.SizeLimits.L2,
		},
	})
	report, err := v.Run(ctx, mapDir)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	return nil, ValidateOutput{
		Total:            report.Total(),
		Structure:        report.Structure,
		FileLinks:        report.FileLinks,
		FileLinksChecked: report.FileLinksChecked,
		CodeLinks:        report.CodeLinks,
		CodeLinksChecked: report.CodeLinksChecked,
		Sizes:            report.Sizes,
		Anchors:          report.Anchors,
		AnchorsChecked:   report.AnchorsChecked,
	}, nil
}

// Status summarizes the health of the map without touching the source tree.
func (s *CodemapService) Status(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	mapDir := input.MapDir
	if mapDir == "" {
		mapDir = s.cfg.MapRoot
	}

	st, err := status.Scan(mapDir)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		Exists:          st.Exists,
		HasReadme:       st.HasReadme,
		HasArchitecture: st.HasArchitecture,
		Root:            levelSummary(st.Root),
		Domains:         levelSummary(st.Domains),
		Modules:         levelSummary(st.Modules),
		NextAction:      st.NextAction,
	}, nil
}

func levelSummary(ls status.LevelStatus) LevelSummary {
	return LevelSummary{
		Docs:         ls.Docs,
		Sections:     ls.Sections,
		Placeholders: ls.Placeholders,
		Orphaned:     ls.Orphaned,
	}
}

// Query searches the graph index for symbols and lists the documents that
// reference each match.
func (s *CodemapService) Query(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if input.Symbol == "" {
		return nil, QueryOutput{}, fmt.Errorf("symbol is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("stats: %w", err)
	}
	if stats.SymbolCount == 0 {
		return nil, QueryOutput{Message: "index is empty; run codemap_generate first"}, nil
	}

	syms, err := s.store.FindSymbols(ctx, input.Symbol, limit)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("find symbols: %w", err)
	}

	ids := make([]string, len(syms))
	for i, sym := range syms {
		ids[i] = sym.ID
	}
	docs, err := graph.DocsFor(ctx, s.store, ids)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("resolve docs: %w", err)
	}

	var out QueryOutput
	for _, sym := range syms {
		match := SymbolMatch{
			ID:       sym.ID,
			Name:     sym.Name,
			Kind:     sym.Kind,
			Exported: sym.Exported,
			FilePath: sym.FilePath,
			Line:     sym.Line,
		}
		for _, doc := range docs[sym.ID] {
			match.Docs = append(match.Docs, DocRef{Anchor: doc.Anchor, Path: doc.Path, Title: doc.Title})
		}
		out.Matches = append(out.Matches, match)
	}
	return nil, out, nil
}
