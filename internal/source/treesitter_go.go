package source

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts symbols, imports and doc comments from Go source.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, src []byte) ([]SymbolRecord, []string, string) {
	var symbols []SymbolRecord
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports, goModuleDoc(root, src)
}

func (e *goExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	src []byte,
	symbols *[]SymbolRecord,
	imports *[]string,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if sym := e.extractFunction(node, src); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "method_declaration":
		if sym := e.extractMethod(node, src); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "type_declaration":
		*symbols = append(*symbols, e.extractTypeDeclaration(node, src)...)

	case "import_spec":
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			if p := strings.Trim(pathNode.Utf8Text(src), `"`); p != "" {
				*imports = append(*imports, p)
			}
		}
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, src, symbols, imports)
		for cursor.GotoNextSibling() {
			e.walk(cursor, src, symbols, imports)
		}
		cursor.GotoParent()
	}
}

func (e *goExtractor) extractFunction(node *tree_sitter.Node, src []byte) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	return &SymbolRecord{
		Kind:          SymbolKindFunction,
		QualifiedName: name,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(goDocComment(node, src)),
		Signature:     goSignature(node, src),
		Exported:      isGoExported(name),
	}
}

func (e *goExtractor) extractMethod(node *tree_sitter.Node, src []byte) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)

	owner := goReceiverType(node, src)
	qualified := name
	if owner != "" {
		qualified = owner + "." + name
	}

	return &SymbolRecord{
		Kind:          SymbolKindMethod,
		QualifiedName: qualified,
		OwnerClass:    owner,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(goDocComment(node, src)),
		Signature:     goSignature(node, src),
		Exported:      isGoExported(name),
	}
}

// extractTypeDeclaration handles one or more type_spec children. Structs,
// interfaces and aliases all become Class records.
func (e *goExtractor) extractTypeDeclaration(node *tree_sitter.Node, src []byte) []SymbolRecord {
	var result []SymbolRecord
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(src)

		// Doc comments sit on the type_declaration, not the spec, for the
		// common single-spec form.
		doc := goDocComment(child, src)
		if doc == "" {
			doc = goDocComment(node, src)
		}

		result = append(result, SymbolRecord{
			Kind:          SymbolKindClass,
			QualifiedName: name,
			StartLine:     int(child.StartPosition().Row) + 1,
			DocSummary:    firstLine(doc),
			Exported:      isGoExported(name),
		})
	}
	return result
}

// goReceiverType returns the receiver's base type name, with any pointer or
// type-parameter decoration stripped.
func goReceiverType(node *tree_sitter.Node, src []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	decl := recv.NamedChild(0)
	if decl == nil {
		return ""
	}
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	for typeNode.Kind() == "pointer_type" || typeNode.Kind() == "generic_type" {
		next := typeNode.NamedChild(0)
		if next == nil {
			break
		}
		typeNode = next
	}
	return typeNode.Utf8Text(src)
}

// goSignature renders the parameter list plus any result.
func goSignature(node *tree_sitter.Node, src []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := collapseSpaces(params.Utf8Text(src))
	if result := node.ChildByFieldName("result"); result != nil {
		sig += " " + collapseSpaces(result.Utf8Text(src))
	}
	return sig
}

// goDocComment collects the contiguous comment block directly above node.
// Each // line is its own comment node in the tree, so the block is walked
// backwards while line-adjacent, then reassembled in order.
func goDocComment(node *tree_sitter.Node, src []byte) string {
	var lines []string
	expectRow := int(node.StartPosition().Row) - 1

	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Kind() != "comment" || int(prev.EndPosition().Row) != expectRow {
			break
		}
		lines = append(lines, cleanCommentLine(prev.Utf8Text(src)))
		expectRow = int(prev.StartPosition().Row) - 1
	}

	// Collected bottom-up; reverse.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// goModuleDoc returns the first line of the package doc comment.
func goModuleDoc(root *tree_sitter.Node, src []byte) string {
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "package_clause" {
			return firstLine(goDocComment(child, src))
		}
		if child.Kind() != "comment" {
			break
		}
	}
	return ""
}

// cleanCommentLine strips comment markers from a single comment node's text.
func cleanCommentLine(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "//"):
		return strings.TrimSpace(strings.TrimPrefix(text, "//"))
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(strings.TrimSpace(text), "*/")
		return strings.TrimSpace(text)
	}
	return text
}

// isGoExported returns true if the first rune of name is an uppercase letter.
func isGoExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
