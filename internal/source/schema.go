package source

import "fmt"

// --- Enums ---

// SymbolKind classifies extracted symbols. Language-specific constructs are
// folded into these three: Go structs/interfaces, TS interfaces/enums and Rust
// structs/enums/traits all map to Class.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindClass    SymbolKind = "class"
	SymbolKindMethod   SymbolKind = "method"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// Languages lists every language with extraction support.
var Languages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// LanguageForPath returns the language for a file path by extension, and
// whether the extension is recognized at all.
func LanguageForPath(path string) (Language, bool) {
	switch {
	case hasSuffix(path, ".go"):
		return LangGo, true
	case hasSuffix(path, ".py"):
		return LangPython, true
	case hasSuffix(path, ".ts"), hasSuffix(path, ".tsx"):
		return LangTypeScript, true
	case hasSuffix(path, ".rs"):
		return LangRust, true
	}
	return "", false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// --- Models ---

// SymbolRecord is one extracted symbol: the ground truth that documentation
// sections are reconciled against. Records are produced fresh on every
// extraction pass and never persisted.
type SymbolRecord struct {
	Kind          SymbolKind `json:"kind"`
	QualifiedName string     `json:"qualifiedName"` // "Class.method" for methods, bare name otherwise
	OwnerClass    string     `json:"ownerClass,omitempty"`
	StartLine     int        `json:"startLine"` // 1-based
	DocSummary    string     `json:"docSummary"`
	Signature     string     `json:"signature,omitempty"`
	Exported      bool       `json:"exported"`
}

// FileRecord is the extraction result for one source file.
type FileRecord struct {
	Path      string         `json:"path"` // relative to the source root
	Language  Language       `json:"language"`
	LOC       int            `json:"loc"`
	ModuleDoc string         `json:"moduleDoc"` // first line of the file-level doc comment
	Symbols   []SymbolRecord `json:"symbols"`   // ordered by StartLine ascending
	Imports   []string       `json:"imports"`   // raw import specifiers, resolution is separate
}

// --- Errors ---

// ParseError reports a single unparsable file. It is recorded and the file
// skipped; it never aborts a run.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Msg)
}
