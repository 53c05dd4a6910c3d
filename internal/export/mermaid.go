package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/codemap/internal/graph"
)

// levelGroups orders the map levels for rendering, top down.
var levelGroups = []struct {
	level string
	label string
	class string
	style string
}{
	{"L0", "Root", "root", "fill:#e8f0fe,stroke:#1a73e8"},
	{"L1", "Domains", "domain", "fill:#e6f4ea,stroke:#188038"},
	{"L2", "Modules", "module", "fill:#fef7e0,stroke:#f9ab00"},
}

// GenerateMermaid produces a Mermaid graph TD diagram of the documentation
// map. Documents are grouped by level; LINKS edges become arrows.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	docs, err := store.ListDocs(ctx, "")
	if err != nil {
		return "", fmt.Errorf("list docs: %w", err)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	// Build anchor → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(anchor string) string {
		if id, ok := nodeIDs[anchor]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[anchor] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Emit one subgraph per level, with a class line for its styling.
	for _, g := range levelGroups {
		var members []graph.DocNode
		for _, d := range docs {
			if d.Level == g.level && d.Anchor != "" {
				members = append(members, d)
			}
		}
		if len(members) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(g.level+"_group"), g.label))
		ids := make([]string, 0, len(members))
		for _, d := range members {
			id := getID(d.Anchor)
			ids = append(ids, id)
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, shortPath(d.Path)))
		}
		sb.WriteString("  end\n")
		sb.WriteString(fmt.Sprintf("  class %s %s\n", strings.Join(ids, ","), g.class))
	}

	// Emit LINKS edges between known documents.
	for _, e := range edges {
		if e.Kind != graph.EdgeKindLinks {
			continue
		}
		srcID, ok := nodeIDs[e.SourceID]
		if !ok {
			continue
		}
		tgtID, ok := nodeIDs[e.TargetID]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", srcID, tgtID))
	}

	for _, g := range levelGroups {
		sb.WriteString(fmt.Sprintf("  classDef %s %s\n", g.class, g.style))
	}

	return sb.String(), nil
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
