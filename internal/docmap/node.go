// Package docmap models the documentation graph: one MapNode per markdown
// document, parsed from and serialized to a pinned on-disk format. The
// generator mutates nodes and serializes them; the validator only reads.
package docmap

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Levels
// ---------------------------------------------------------------------------

// Level is the depth of a document in the map hierarchy.
type Level string

const (
	LevelRoot   Level = "L0" // project index and architecture
	LevelDomain Level = "L1" // one per top-level source directory
	LevelModule Level = "L2" // one per source file
)

// MaxLines returns the size ceiling for documents at this level.
func (l Level) MaxLines() int {
	switch l {
	case LevelRoot:
		return 500
	case LevelDomain:
		return 300
	case LevelModule:
		return 200
	}
	return 0
}

// ---------------------------------------------------------------------------
// Sections
// ---------------------------------------------------------------------------

// SectionStatus tracks whether a section has real content.
type SectionStatus string

const (
	// StatusPlaceholder marks machine-generated stubs awaiting a description.
	StatusPlaceholder SectionStatus = "placeholder"
	// StatusFilled marks sections with content, whether extracted or human-written.
	StatusFilled SectionStatus = "filled"
	// StatusOrphaned marks sections whose identifier no longer exists in source.
	StatusOrphaned SectionStatus = "orphaned"
)

// SectionKind says what a section documents.
type SectionKind string

const (
	KindModule   SectionKind = "module"
	KindClass    SectionKind = "class"
	KindFunction SectionKind = "function"
	KindMethod   SectionKind = "method"
	KindProse    SectionKind = "prose"
)

// DocSection is one reconcilable unit of a document. Sections are keyed by
// Identifier (the qualified symbol name, module path, or a fixed prose key),
// never by line number.
type DocSection struct {
	Identifier string        `json:"identifier"`
	Kind       SectionKind   `json:"kind"`
	Status     SectionStatus `json:"status"`
	Text       string        `json:"text"`
	Line       int           `json:"line,omitempty"`      // source line at last generation, 0 when not code-bound
	Signature  string        `json:"signature,omitempty"` // functions only
}

// OwnerOf returns the class part of a dotted method identifier, or "" for
// plain identifiers.
func OwnerOf(identifier string) string {
	if i := strings.LastIndex(identifier, "."); i > 0 {
		return identifier[:i]
	}
	return ""
}

// ---------------------------------------------------------------------------
// Placeholder marker
// ---------------------------------------------------------------------------

const placeholderOpen = "<!-- TODO:"

// Placeholder renders the machine marker for an unfilled section. Its absence
// on a later load is the human-edit signal: the section parses as Filled and
// its text is preserved verbatim from then on.
func Placeholder(hint string) string {
	return fmt.Sprintf("%s %s -->", placeholderOpen, hint)
}

// IsPlaceholder reports whether text still carries the machine marker.
func IsPlaceholder(text string) bool {
	return strings.Contains(text, placeholderOpen)
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// CodeRef is a link from a document into source code.
type CodeRef struct {
	Target string `json:"target"` // link target as written, #L fragment stripped
	Line   int    `json:"line"`
	Symbol string `json:"symbol"`
}

// MapNode is one documentation unit. Sections hold the reconcilable content
// in canonical order (module summary, classes each followed by their methods,
// functions, orphans). CrossRefs and CodeRefs are derived from the document
// text on load and are never edited directly.
type MapNode struct {
	Level    Level  `json:"level"`
	AnchorID string `json:"anchorId"`
	Path     string `json:"path"`  // map-root-relative, slash-separated
	Title    string `json:"title"`

	// Module documents only.
	SourceRel    string   `json:"sourceRel,omitempty"` // source-root-relative path of the documented file
	SourceRef    string   `json:"sourceRef,omitempty"` // link target to that file, relative to this document
	SourceLOC    int      `json:"sourceLoc,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"` // source-root-relative paths of imported modules

	LineCount int          `json:"lineCount"`
	Sections  []DocSection `json:"sections"`
	CrossRefs []string     `json:"crossRefs,omitempty"` // local link targets without a line fragment
	CodeRefs  []CodeRef    `json:"codeRefs,omitempty"`
}

// Section returns the section with the given identifier, or nil.
func (n *MapNode) Section(identifier string) *DocSection {
	for i := range n.Sections {
		if n.Sections[i].Identifier == identifier {
			return &n.Sections[i]
		}
	}
	return nil
}

// CountByStatus returns how many sections carry the given status.
func (n *MapNode) CountByStatus(status SectionStatus) int {
	count := 0
	for i := range n.Sections {
		if n.Sections[i].Status == status {
			count++
		}
	}
	return count
}

// Live returns the non-orphaned sections in order.
func (n *MapNode) Live() []DocSection {
	out := make([]DocSection, 0, len(n.Sections))
	for _, s := range n.Sections {
		if s.Status != StatusOrphaned {
			out = append(out, s)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// The loaded map
// ---------------------------------------------------------------------------

// DocMap is every document under a map root, indexed for lookups.
type DocMap struct {
	Nodes  []*MapNode // sorted by Path
	byPath map[string]*MapNode
}

// NewDocMap indexes a set of nodes. Nodes must already be sorted by Path.
func NewDocMap(nodes []*MapNode) *DocMap {
	m := &DocMap{
		Nodes:  nodes,
		byPath: make(map[string]*MapNode, len(nodes)),
	}
	for _, n := range nodes {
		m.byPath[n.Path] = n
	}
	return m
}

// ByPath returns the node at a map-root-relative path, or nil.
func (m *DocMap) ByPath(path string) *MapNode {
	return m.byPath[path]
}

// Add registers a newly created node. Existing paths are replaced.
func (m *DocMap) Add(n *MapNode) {
	if _, ok := m.byPath[n.Path]; !ok {
		m.Nodes = append(m.Nodes, n)
	} else {
		for i, old := range m.Nodes {
			if old.Path == n.Path {
				m.Nodes[i] = n
				break
			}
		}
	}
	m.byPath[n.Path] = n
}

// ByLevel returns the nodes at one level, in path order.
func (m *DocMap) ByLevel(level Level) []*MapNode {
	var out []*MapNode
	for _, n := range m.Nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// Anchors returns every node grouped by AnchorID; a group larger than one is
// a duplicate. Nodes without an anchor are omitted.
func (m *DocMap) Anchors() map[string][]*MapNode {
	out := make(map[string][]*MapNode)
	for _, n := range m.Nodes {
		if n.AnchorID != "" {
			out[n.AnchorID] = append(out[n.AnchorID], n)
		}
	}
	return out
}
