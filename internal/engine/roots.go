package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/codemap/internal/docmap"
	"github.com/dusk-indust/codemap/internal/source"
)

// maxEntryPoints caps the seeded architecture table.
const maxEntryPoints = 10

// ensureRootDocs creates README.md and ARCHITECTURE.md when absent. Root
// documents are human-owned after creation: an existing file is never
// rewritten, whatever its content.
func (g *Generator) ensureRootDocs(m *docmap.DocMap, absMap, project string, domains []domainGroup, recs []*source.FileRecord, report *GenerationReport) error {
	if m.ByPath(docmap.ReadmeFile) == nil {
		data := readmeTemplate(project, domains)
		if err := writeRoot(m, absMap, docmap.ReadmeFile, data, report); err != nil {
			return err
		}
	}
	if m.ByPath(docmap.ArchitectureFile) == nil {
		data := architectureTemplate(project, recs)
		if err := writeRoot(m, absMap, docmap.ArchitectureFile, data, report); err != nil {
			return err
		}
	}
	return nil
}

func writeRoot(m *docmap.DocMap, absMap, name string, data []byte, report *GenerationReport) error {
	if err := os.WriteFile(filepath.Join(absMap, name), data, 0o644); err != nil {
		return err
	}
	m.Add(docmap.ParseDocument(name, data))
	report.Created = append(report.Created, name)
	return nil
}

func readmeTemplate(project string, domains []domainGroup) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Code Map [%s]\n\n", project, docmap.RootAnchor)
	fmt.Fprintf(&b, "Code map for %s. Start at a domain and drill down to its module documents.\n\n", project)

	b.WriteString("## Domains\n\n")
	b.WriteString("| Domain | Description |\n")
	b.WriteString("|--------|-------------|\n")
	for _, d := range domains {
		fmt.Fprintf(&b, "| [%s](%s) | %s |\n",
			d.name, docmap.DomainDocPath(d.name), docmap.Placeholder(fmt.Sprintf("Describe the %s domain", d.name)))
	}

	b.WriteString("\n## Architecture\n\n")
	fmt.Fprintf(&b, "System structure and entry points: [ARCHITECTURE.md](%s).\n", docmap.ArchitectureFile)
	return []byte(b.String())
}

func architectureTemplate(project string, recs []*source.FileRecord) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Architecture [%s]\n\n", project, docmap.ArchitectureAnchor)
	b.WriteString(docmap.Placeholder("Describe the system architecture") + "\n\n")

	b.WriteString("## Entry Points\n\n")
	b.WriteString("| Symbol | Module |\n")
	b.WriteString("|--------|--------|\n")
	for _, ep := range entryPoints(recs) {
		fmt.Fprintf(&b, "| [`%s`](%s) | %s |\n", ep.QualifiedName, docmap.ModuleDocPath(ep.file), ep.file)
	}

	b.WriteString("\n## Data Flow\n\n")
	b.WriteString(docmap.Placeholder(fmt.Sprintf("Describe how data moves through %s", project)) + "\n")
	return []byte(b.String())
}

type entryPoint struct {
	source.SymbolRecord
	file string
}

// entryPoints picks the first exported symbols across the tree, file order,
// as a starting inventory for the architecture document.
func entryPoints(recs []*source.FileRecord) []entryPoint {
	var out []entryPoint
	for _, rec := range recs {
		for _, sym := range rec.Symbols {
			if !sym.Exported {
				continue
			}
			out = append(out, entryPoint{SymbolRecord: sym, file: rec.Path})
			if len(out) == maxEntryPoints {
				return out
			}
		}
	}
	return out
}
