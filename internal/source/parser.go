package source

import "context"

// Parser extracts structural information from source files.
// Implementations: TreeSitterParser (production), stub parsers in tests.
type Parser interface {
	// Parse extracts the symbols, imports and doc comments of a single source
	// file. source is the file content. lang determines which grammar to use.
	// A file whose tree contains syntax errors yields a *ParseError.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*FileRecord, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources (tree-sitter C memory).
	Close() error
}
