// Package graph persists the documentation graph as a queryable index:
// documents, source files and symbols as nodes, their links as edges. The
// index is derived state. It is rebuilt from scratch after every generation
// pass and never treated as a source of truth.
package graph

// --- Enums ---

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindLinks      EdgeKind = "LINKS"      // doc -> doc, markdown cross reference
	EdgeKindReferences EdgeKind = "REFERENCES" // doc -> symbol, line-anchored code link
	EdgeKindDocuments  EdgeKind = "DOCUMENTS"  // doc -> file, module document to its source
	EdgeKindImports    EdgeKind = "IMPORTS"    // file -> file, resolved import
)

// --- Models ---

// DocNode represents one markdown document in the map.
type DocNode struct {
	Anchor   string `json:"anchor"` // unique anchor identifier, e.g. "L2:core-engine-py"
	Path     string `json:"path"`   // map-root-relative, slash-separated
	Level    string `json:"level"`  // "L0", "L1" or "L2"
	Title    string `json:"title"`
	Sections int    `json:"sections"` // live (non-orphaned) sections
	Orphans  int    `json:"orphans"`
}

// FileNode represents a source file covered by the map.
type FileNode struct {
	Path     string `json:"path"` // relative to the source root
	Language string `json:"language"`
	LOC      int    `json:"loc"`
}

// SymbolNode represents an extracted symbol a document can reference.
type SymbolNode struct {
	ID       string `json:"id"` // "filePath:qualifiedName"
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Exported bool   `json:"exported"`
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
}

// Edge represents a relationship between two nodes. Source and target IDs
// are doc anchors, file paths or symbol IDs depending on the edge kind.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes an indexed documentation graph.
type GraphStats struct {
	DocCount    int `json:"docCount"`
	FileCount   int `json:"fileCount"`
	SymbolCount int `json:"symbolCount"`
	EdgeCount   int `json:"edgeCount"`
}

// SymbolID produces the deterministic identifier for a symbol node.
func SymbolID(filePath, qualifiedName string) string {
	return filePath + ":" + qualifiedName
}
