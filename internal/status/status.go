package status

import (
	"fmt"
	"os"

	"github.com/dusk-indust/codemap/internal/docmap"
)

// LevelStatus tallies the documents of one map level.
type LevelStatus struct {
	Docs         int
	Sections     int
	Placeholders int
	Orphaned     int
}

// MapStatus summarizes the health of a documentation map on disk.
type MapStatus struct {
	Exists          bool // map root directory present
	HasReadme       bool
	HasArchitecture bool
	Root            LevelStatus
	Domains         LevelStatus
	Modules         LevelStatus
	NextAction      string
}

// Placeholders returns the map-wide placeholder count.
func (s *MapStatus) Placeholders() int {
	return s.Root.Placeholders + s.Domains.Placeholders + s.Modules.Placeholders
}

// Orphaned returns the map-wide orphaned-section count.
func (s *MapStatus) Orphaned() int {
	return s.Root.Orphaned + s.Domains.Orphaned + s.Modules.Orphaned
}

// Scan inspects the documentation map under mapRoot. A missing map root is
// not an error; it reports Exists=false with generation as the next action.
func Scan(mapRoot string) (*MapStatus, error) {
	if _, err := os.Stat(mapRoot); err != nil {
		return &MapStatus{NextAction: nextActionGenerate}, nil
	}

	m, err := docmap.Load(mapRoot)
	if err != nil {
		return nil, err
	}

	st := &MapStatus{Exists: true}
	st.HasReadme = m.ByPath("README.md") != nil
	st.HasArchitecture = m.ByPath("ARCHITECTURE.md") != nil

	for _, n := range m.Nodes {
		var ls *LevelStatus
		switch n.Level {
		case docmap.LevelRoot:
			ls = &st.Root
		case docmap.LevelDomain:
			ls = &st.Domains
		case docmap.LevelModule:
			ls = &st.Modules
		default:
			continue
		}
		ls.Docs++
		ls.Sections += len(n.Sections)
		ls.Placeholders += n.CountByStatus(docmap.StatusPlaceholder)
		ls.Orphaned += n.CountByStatus(docmap.StatusOrphaned)
	}

	st.NextAction = nextAction(st)
	return st, nil
}

const nextActionGenerate = "run 'codemap generate' to create the map"

// nextAction picks the step a maintainer would take next. Orphans outrank
// placeholders: they mean the map disagrees with the source tree.
func nextAction(s *MapStatus) string {
	switch {
	case s.Modules.Docs == 0:
		return nextActionGenerate
	case s.Orphaned() > 0:
		return fmt.Sprintf("review %d orphaned sections (kept on disk, never auto-deleted)", s.Orphaned())
	case s.Placeholders() > 0:
		return fmt.Sprintf("fill %d placeholder sections", s.Placeholders())
	default:
		return "map is filled; run 'codemap validate' to check it against the source"
	}
}
