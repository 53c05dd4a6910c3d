package mcptools

// --- MCP tool types for the codemap server mode (codemap mcp) ---
// These tools let the code-mapping skill call structured tools instead of
// shelling out to the CLI.

// GenerateInput is the input for the codemap_generate MCP tool.
type GenerateInput struct {
	SourceDir string `json:"source_dir,omitempty" jsonschema:"path to the source tree (default: configured source root)"`
	MapDir    string `json:"map_dir,omitempty" jsonschema:"path to the documentation map (default: configured map root)"`
}

// GenerateOutput is the result of the codemap_generate MCP tool.
type GenerateOutput struct {
	FilesScanned     int      `json:"filesScanned"`
	Created          []string `json:"created,omitempty"`
	Updated          []string `json:"updated,omitempty"`
	NewSections      []string `json:"newSections,omitempty"`
	OrphanedSections []string `json:"orphanedSections,omitempty"`
	OrphanedDocs     []string `json:"orphanedDocs,omitempty"`
	ParseErrors      []string `json:"parseErrors,omitempty"`
	Unfilled         int      `json:"unfilled"`
}

// ValidateInput is the input for the codemap_validate MCP tool.
type ValidateInput struct {
	MapDir string `json:"map_dir,omitempty" jsonschema:"path to the documentation map (default: configured map root)"`
}

// ValidateOutput is the result of the codemap_validate MCP tool.
type ValidateOutput struct {
	Total            int      `json:"total"`
	Structure        []string `json:"structure,omitempty"`
	FileLinks        []string `json:"fileLinks,omitempty"`
	FileLinksChecked int      `json:"fileLinksChecked"`
	CodeLinks        []string `json:"codeLinks,omitempty"`
	CodeLinksChecked int      `json:"codeLinksChecked"`
	Sizes            []string `json:"sizes,omitempty"`
	Anchors          []string `json:"anchors,omitempty"`
	AnchorsChecked   int      `json:"anchorsChecked"`
}

// StatusInput is the input for the codemap_status MCP tool.
type StatusInput struct {
	MapDir string `json:"map_dir,omitempty" jsonschema:"path to the documentation map (default: configured map root)"`
}

// LevelSummary tallies the documents of one map level.
type LevelSummary struct {
	Docs         int `json:"docs"`
	Sections     int `json:"sections"`
	Placeholders int `json:"placeholders"`
	Orphaned     int `json:"orphaned"`
}

// StatusOutput is the result of the codemap_status MCP tool.
type StatusOutput struct {
	Exists          bool         `json:"exists"`
	HasReadme       bool         `json:"hasReadme"`
	HasArchitecture bool         `json:"hasArchitecture"`
	Root            LevelSummary `json:"root"`
	Domains         LevelSummary `json:"domains"`
	Modules         LevelSummary `json:"modules"`
	NextAction      string       `json:"nextAction"`
}

// QueryInput is the input for the codemap_query MCP tool.
type QueryInput struct {
	Symbol string `json:"symbol" jsonschema:"symbol name or name fragment to search for"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of symbols returned (default 20)"`
}

// DocRef points at a document that references a symbol.
type DocRef struct {
	Anchor string `json:"anchor"`
	Path   string `json:"path"`
	Title  string `json:"title,omitempty"`
}

// SymbolMatch is one symbol hit plus the documents referencing it.
type SymbolMatch struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Exported bool     `json:"exported"`
	FilePath string   `json:"filePath"`
	Line     int      `json:"line"`
	Docs     []DocRef `json:"docs,omitempty"`
}

// QueryOutput is the result of the codemap_query MCP tool.
type QueryOutput struct {
	Matches []SymbolMatch `json:"matches,omitempty"`
	Message string        `json:"message,omitempty"` // set when the index is empty
}
