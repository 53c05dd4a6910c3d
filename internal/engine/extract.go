package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codemap/internal/source"
)

// TreeExtraction is the parsed view of one source tree.
type TreeExtraction struct {
	Files       []string // discovered source-root-relative paths, walk order
	Records     []*source.FileRecord
	ParseErrors []string // "path: message", one per skipped file
}

// ExtractTree discovers and parses every matching source file under
// sourceRoot. Only the Languages, Excludes and Workers options apply. Parse
// failures skip the file and land in ParseErrors; I/O failures fail the
// whole extraction.
func ExtractTree(ctx context.Context, parser source.Parser, sourceRoot string, opts GenerateOptions) (*TreeExtraction, error) {
	files, err := source.DiscoverFiles(sourceRoot, opts.Excludes)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", sourceRoot, err)
	}
	files = keepLanguages(files, opts.Languages)

	results, err := extractAll(ctx, parser, sourceRoot, files, opts.Workers)
	if err != nil {
		return nil, err
	}

	ext := &TreeExtraction{Files: files}
	for _, res := range results {
		if res.parseErr != nil {
			ext.ParseErrors = append(ext.ParseErrors, fmt.Sprintf("%s: %s", res.path, res.parseErr.Msg))
			log.Printf("codemap: skipping %s: %s", res.path, res.parseErr.Msg)
			continue
		}
		ext.Records = append(ext.Records, res.rec)
	}
	return ext, nil
}

// fileResult is one file's extraction outcome. Exactly one of rec and
// parseErr is set; I/O failures abort the whole fan-out instead.
type fileResult struct {
	path     string
	rec      *source.FileRecord
	parseErr *source.ParseError
}

// extractAll parses every file concurrently on a bounded pool. Results land
// in an index-addressed slice so output order matches input order regardless
// of completion order. A parse failure is recorded per file; the first I/O
// failure cancels the remaining work and is returned.
func extractAll(ctx context.Context, parser source.Parser, sourceRoot string, files []string, workers int) ([]fileResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range files {
		g.Go(func() error {
			results[i] = fileResult{path: rel}

			data, err := os.ReadFile(filepath.Join(sourceRoot, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("reading %s: %w", rel, err)
			}

			lang, ok := source.LanguageForPath(rel)
			if !ok {
				results[i].parseErr = &source.ParseError{Path: rel, Msg: "unsupported language"}
				return nil
			}

			rec, err := parser.Parse(gctx, rel, data, lang)
			if err != nil {
				var pe *source.ParseError
				if errors.As(err, &pe) {
					results[i].parseErr = pe
					return nil
				}
				return err
			}
			results[i].rec = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
