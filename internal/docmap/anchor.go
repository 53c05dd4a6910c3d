package docmap

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed anchors for the two root documents.
const (
	RootAnchor         = "L0:root"
	ArchitectureAnchor = "L0:architecture"
)

// Map-relative locations of generated documents.
const (
	ReadmeFile       = "README.md"
	ArchitectureFile = "ARCHITECTURE.md"
	ModulesDir       = "modules"
	DomainsDir       = "domains"
)

var nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every non-alphanumeric run into a single
// hyphen, producing an identifier valid inside an anchor.
func Slugify(s string) string {
	slug := nonSlugRuns.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// ModuleAnchor derives the L2 anchor for a source-root-relative file path.
// The extension stays in the slug so sibling files in different languages
// cannot collide.
func ModuleAnchor(relPath string) string {
	return fmt.Sprintf("%s:%s", LevelModule, Slugify(relPath))
}

// DomainAnchor derives the L1 anchor for a domain name.
func DomainAnchor(domain string) string {
	return fmt.Sprintf("%s:%s", LevelDomain, Slugify(domain))
}

// ModuleDocPath maps a source-root-relative file path to its module document,
// keeping the source extension (`a/b.py` documents at `modules/a/b.py.md`).
func ModuleDocPath(relPath string) string {
	return ModulesDir + "/" + relPath + ".md"
}

// DomainDocPath maps a domain name to its document.
func DomainDocPath(domain string) string {
	return DomainsDir + "/" + Slugify(domain) + ".md"
}

var anchorMarker = regexp.MustCompile(`\[(L[0-2]):([a-z0-9-]+)\]`)

// extractAnchor pulls the `[L{n}:{identifier}]` marker out of an H1 line,
// returning the anchor, its level and the title with the marker removed.
func extractAnchor(h1 string) (anchor string, level Level, title string) {
	title = strings.TrimSpace(strings.TrimPrefix(h1, "#"))
	m := anchorMarker.FindStringSubmatch(title)
	if m == nil {
		return "", "", title
	}
	anchor = m[1] + ":" + m[2]
	level = Level(m[1])
	title = strings.TrimSpace(strings.Replace(title, m[0], "", 1))
	return anchor, level, title
}
