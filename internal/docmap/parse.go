package docmap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Line patterns (the renderer in render.go emits exactly these shapes)
// ---------------------------------------------------------------------------

var (
	heading3Re      = regexp.MustCompile("^### \\[`([^`]+)`\\]\\(([^)#]+)(?:#L([0-9]+))?\\)\\s*$")
	methodBulletRe  = regexp.MustCompile("^- \\[`([^`]+)`\\]\\(([^)#]+)#L([0-9]+)\\): ?(.*)$")
	orphanBulletRe  = regexp.MustCompile("^- (class|function|method|module) `([^`]+)`: ?(.*)$")
	sourceLineRe    = regexp.MustCompile("^\\*\\*Source\\*\\*: \\[`([^`]+)`\\]\\(([^)]+)\\) \\(([0-9]+) lines?\\)$")
	signatureLineRe = regexp.MustCompile("^\\*\\*Signature:\\*\\* `([^`]+)`$")
	tableRowRe      = regexp.MustCompile("^\\| \\[`([^`]+)`\\]\\(([^)]+)\\) \\| (.*) \\|$")
	depBulletRe     = regexp.MustCompile("^- \\[`([^`]+)`\\]\\(([^)]+)\\)$")
	linkRe          = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)
	lineFragmentRe  = regexp.MustCompile("#L([0-9]+)$")
)

type region int

const (
	regionPreamble region = iota
	regionClasses
	regionFunctions
	regionDependencies
	regionOrphaned
	regionModules
	regionProse
)

var reservedRegions = map[string]region{
	"Classes":      regionClasses,
	"Functions":    regionFunctions,
	"Dependencies": regionDependencies,
	"Orphaned":     regionOrphaned,
	"Modules":      regionModules,
}

// ---------------------------------------------------------------------------
// ParseDocument
// ---------------------------------------------------------------------------

// ParseDocument parses one markdown document into a MapNode. Any text parses
// into some node; malformed structure simply yields fewer sections, and the
// validator reports the consequences. path is the map-root-relative location
// of the document, used for level inference when the anchor marker is absent.
func ParseDocument(path string, data []byte) *MapNode {
	p := &parser{
		node: &MapNode{Path: filepath.ToSlash(path)},
		curr: -1,
		last: -1,
	}
	p.crossSeen = make(map[string]bool)
	p.codeSeen = make(map[CodeRef]bool)

	lines := splitLines(data)
	p.node.LineCount = len(lines)

	inFence := false
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		p.consume(line)
	}
	p.flushText()

	if p.node.Level == "" {
		p.node.Level = inferLevel(p.node.Path)
	}
	return p.node
}

// inferLevel falls back to the document's location when no anchor names one.
func inferLevel(path string) Level {
	switch {
	case path == ReadmeFile || path == ArchitectureFile:
		return LevelRoot
	case strings.HasPrefix(path, DomainsDir+"/"):
		return LevelDomain
	case strings.HasPrefix(path, ModulesDir+"/"):
		return LevelModule
	}
	return ""
}

// ---------------------------------------------------------------------------
// Parser state machine
// ---------------------------------------------------------------------------

type parser struct {
	node      *MapNode
	region    region
	proseID   string   // heading of the current prose region
	curr      int      // open heading/prose section index, -1 when none
	last      int      // last bullet section index for lazy continuations
	inMethods bool     // inside a class's **Methods:** list
	sawH1     bool
	textBuf   []string

	crossSeen map[string]bool
	codeSeen  map[CodeRef]bool
}

func (p *parser) consume(line string) {
	trimmed := strings.TrimSpace(line)

	// H1 with the anchor marker.
	if !p.sawH1 && strings.HasPrefix(line, "# ") {
		p.sawH1 = true
		anchor, level, title := extractAnchor(line)
		p.node.AnchorID = anchor
		p.node.Level = level
		p.node.Title = title
		return
	}

	// Region switches.
	if strings.HasPrefix(line, "## ") {
		p.flushText()
		heading := strings.TrimSpace(strings.TrimPrefix(line, "## "))
		if r, ok := reservedRegions[heading]; ok {
			p.region = r
		} else {
			p.region = regionProse
			p.proseID = heading
		}
		p.curr, p.last, p.inMethods = -1, -1, false
		return
	}

	if p.region != regionOrphaned {
		p.scanLinks(line)
	}

	switch p.region {
	case regionPreamble:
		if m := sourceLineRe.FindStringSubmatch(trimmed); m != nil {
			p.flushText()
			p.node.SourceRel = m[1]
			p.node.SourceRef = m[2]
			p.node.SourceLOC, _ = strconv.Atoi(m[3])
			return
		}
		p.textBuf = append(p.textBuf, line)

	case regionClasses, regionFunctions:
		if m := heading3Re.FindStringSubmatch(trimmed); m != nil {
			p.openHeading(m)
			return
		}
		if p.region == regionClasses {
			if trimmed == "**Methods:**" {
				p.flushText()
				p.inMethods = true
				return
			}
			if p.inMethods {
				if m := methodBulletRe.FindStringSubmatch(trimmed); m != nil {
					line, _ := strconv.Atoi(m[3])
					p.appendSection(DocSection{
						Identifier: m[1],
						Kind:       KindMethod,
						Status:     statusOf(m[4]),
						Text:       m[4],
						Line:       line,
					})
					p.last = len(p.node.Sections) - 1
					return
				}
				p.continueBullet(trimmed)
				return
			}
		}
		if m := signatureLineRe.FindStringSubmatch(trimmed); m != nil && p.curr >= 0 {
			sec := &p.node.Sections[p.curr]
			sec.Signature = strings.TrimPrefix(m[1], sec.Identifier)
			return
		}
		if p.curr >= 0 {
			p.textBuf = append(p.textBuf, line)
		}

	case regionDependencies:
		if m := depBulletRe.FindStringSubmatch(trimmed); m != nil {
			p.node.Dependencies = append(p.node.Dependencies, m[1])
		}

	case regionOrphaned:
		if m := orphanBulletRe.FindStringSubmatch(trimmed); m != nil {
			p.appendSection(DocSection{
				Identifier: m[2],
				Kind:       SectionKind(m[1]),
				Status:     StatusOrphaned,
				Text:       m[3],
			})
			p.last = len(p.node.Sections) - 1
			return
		}
		p.continueBullet(trimmed)

	case regionModules:
		if m := tableRowRe.FindStringSubmatch(trimmed); m != nil {
			text := unescapeCell(m[3])
			p.appendSection(DocSection{
				Identifier: m[1],
				Kind:       KindModule,
				Status:     statusOf(text),
				Text:       text,
			})
		}

	case regionProse:
		p.textBuf = append(p.textBuf, line)
	}
}

// openHeading starts a class or function section from a ### heading match.
func (p *parser) openHeading(m []string) {
	p.flushText()
	line, _ := strconv.Atoi(m[3])

	kind := KindFunction
	if p.region == regionClasses {
		kind = KindClass
	} else if OwnerOf(m[1]) != "" {
		// A dotted name under Functions is a method whose owner class has
		// no live section.
		kind = KindMethod
	}

	p.appendSection(DocSection{Identifier: m[1], Kind: kind, Line: line})
	p.curr = len(p.node.Sections) - 1
	p.inMethods = false
	p.last = -1
}

func (p *parser) appendSection(sec DocSection) {
	p.node.Sections = append(p.node.Sections, sec)
}

// continueBullet joins a lazy continuation line onto the last bullet section.
// Orphaned bullets keep their status no matter what the joined text contains.
func (p *parser) continueBullet(trimmed string) {
	if trimmed == "" || p.last < 0 {
		return
	}
	sec := &p.node.Sections[p.last]
	sec.Text = strings.TrimSpace(sec.Text + " " + trimmed)
	if p.region != regionOrphaned {
		sec.Status = statusOf(sec.Text)
	}
}

// flushText closes the pending text buffer into the right owner: the open
// heading section, the module summary, or the current prose region.
func (p *parser) flushText() {
	text := strings.Join(trimBlankEdges(p.textBuf), "\n")
	p.textBuf = nil

	switch {
	case p.curr >= 0:
		sec := &p.node.Sections[p.curr]
		sec.Text = text
		sec.Status = statusOf(text)
		p.curr = -1

	case p.region == regionPreamble && text != "":
		if p.node.Level == LevelModule || strings.HasPrefix(p.node.Path, ModulesDir+"/") {
			p.appendSection(DocSection{
				Identifier: "module",
				Kind:       KindModule,
				Status:     statusOf(text),
				Text:       text,
			})
		} else if IsPlaceholder(text) {
			// Root documents are human-owned; only their unfilled markers
			// matter, so the status scan can count them.
			p.appendSection(DocSection{
				Identifier: fmt.Sprintf("prose-%d", len(p.node.Sections)+1),
				Kind:       KindProse,
				Status:     StatusPlaceholder,
				Text:       text,
			})
		}

	case p.region == regionProse && text != "":
		p.appendSection(DocSection{
			Identifier: p.proseID,
			Kind:       KindProse,
			Status:     statusOf(text),
			Text:       text,
		})
	}
}

func statusOf(text string) SectionStatus {
	if text == "" || IsPlaceholder(text) {
		return StatusPlaceholder
	}
	return StatusFilled
}

// ---------------------------------------------------------------------------
// Link scanning
// ---------------------------------------------------------------------------

// scanLinks records cross and code references from one line. Links inside
// inline code spans do not count, matching how fenced blocks are skipped.
func (p *parser) scanLinks(line string) {
	spans := codeSpans(line)
	for _, m := range linkRe.FindAllStringSubmatchIndex(line, -1) {
		if inSpan(spans, m[0]) {
			continue
		}
		text := line[m[2]:m[3]]
		target := line[m[4]:m[5]]

		if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") || strings.HasPrefix(target, "#") {
			continue
		}

		if frag := lineFragmentRe.FindStringSubmatch(target); frag != nil {
			lineNo, _ := strconv.Atoi(frag[1])
			ref := CodeRef{
				Target: strings.TrimSuffix(target, frag[0]),
				Line:   lineNo,
				Symbol: strings.Trim(text, "`"),
			}
			if !p.codeSeen[ref] {
				p.codeSeen[ref] = true
				p.node.CodeRefs = append(p.node.CodeRefs, ref)
			}
			continue
		}

		path := target
		if i := strings.Index(path, "#"); i >= 0 {
			path = path[:i]
		}
		if path == "" || p.crossSeen[path] {
			continue
		}
		p.crossSeen[path] = true
		p.node.CrossRefs = append(p.node.CrossRefs, path)
	}
}

// codeSpans returns the [start,end) ranges of inline code spans on one line.
func codeSpans(line string) [][2]int {
	var spans [][2]int
	start := -1
	for i, c := range line {
		if c != '`' {
			continue
		}
		if start < 0 {
			start = i
		} else {
			spans = append(spans, [2]int{start, i})
			start = -1
		}
	}
	return spans
}

func inSpan(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos > s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func splitLines(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func unescapeCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\\|", "|")
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load parses every markdown document under mapRoot into a DocMap. Hidden
// directories (including the .codemap index) are skipped. Returns an error
// only when the root or a document is unreadable.
func Load(mapRoot string) (*DocMap, error) {
	var nodes []*MapNode

	err := filepath.WalkDir(mapRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != mapRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(mapRoot, path)
		if err != nil {
			return err
		}
		nodes = append(nodes, ParseDocument(filepath.ToSlash(rel), data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", mapRoot, err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return NewDocMap(nodes), nil
}
