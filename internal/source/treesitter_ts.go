package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsExtractor extracts symbols, imports and JSDoc from TypeScript source.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, src []byte) ([]SymbolRecord, []string, string) {
	var symbols []SymbolRecord
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports, tsModuleDoc(root, src)
}

func (e *tsExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	src []byte,
	symbols *[]SymbolRecord,
	imports *[]string,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_declaration":
		if sym := e.extractNamed(node, src, SymbolKindFunction, ""); sym != nil {
			sym.Signature = tsSignature(node, src)
			*symbols = append(*symbols, *sym)
		}

	case "class_declaration", "interface_declaration", "type_alias_declaration", "enum_declaration":
		if sym := e.extractNamed(node, src, SymbolKindClass, ""); sym != nil {
			*symbols = append(*symbols, *sym)
		}

	case "method_definition":
		if owner := tsOwnerClass(node, src); owner != "" {
			if sym := e.extractNamed(node, src, SymbolKindMethod, owner); sym != nil {
				sym.Signature = tsSignature(node, src)
				*symbols = append(*symbols, *sym)
			}
		}

	case "lexical_declaration":
		*symbols = append(*symbols, e.extractArrowFunctions(node, src)...)

	case "import_statement":
		if spec := tsImportSource(node, src); spec != "" {
			*imports = append(*imports, spec)
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

func (e *tsExtractor) extractNamed(node *tree_sitter.Node, src []byte, kind SymbolKind, owner string) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)

	qualified := name
	exported := isTSExported(node)
	if owner != "" {
		qualified = owner + "." + name
		exported = !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "#")
	}

	return &SymbolRecord{
		Kind:          kind,
		QualifiedName: qualified,
		OwnerClass:    owner,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(tsDocComment(node, src)),
		Exported:      exported,
	}
}

// extractArrowFunctions looks for arrow function expressions inside a
// lexical_declaration (e.g., "const foo = () => { ... }").
func (e *tsExtractor) extractArrowFunctions(node *tree_sitter.Node, src []byte) []SymbolRecord {
	var result []SymbolRecord
	exported := isTSExported(node)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil || valueNode.Kind() != "arrow_function" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		result = append(result, SymbolRecord{
			Kind:          SymbolKindFunction,
			QualifiedName: nameNode.Utf8Text(src),
			StartLine:     int(child.StartPosition().Row) + 1,
			DocSummary:    firstLine(tsDocComment(node, src)),
			Signature:     tsSignature(valueNode, src),
			Exported:      exported,
		})
	}
	return result
}

// tsSignature renders the parameter list plus the return type annotation,
// which already carries its leading colon.
func tsSignature(node *tree_sitter.Node, src []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := collapseSpaces(params.Utf8Text(src))
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += collapseSpaces(ret.Utf8Text(src))
	}
	return sig
}

// tsOwnerClass returns the enclosing class name for a method_definition.
func tsOwnerClass(node *tree_sitter.Node, src []byte) string {
	body := node.Parent()
	if body == nil || body.Kind() != "class_body" {
		return ""
	}
	cls := body.Parent()
	if cls == nil || cls.Kind() != "class_declaration" {
		return ""
	}
	nameNode := cls.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Utf8Text(src)
}

func tsImportSource(node *tree_sitter.Node, src []byte) string {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return ""
	}
	return strings.Trim(sourceNode.Utf8Text(src), "\"'`")
}

// tsDocComment returns the JSDoc block attached to node. Exported
// declarations are wrapped in an export_statement, and the comment sits
// before the wrapper.
func tsDocComment(node *tree_sitter.Node, src []byte) string {
	target := node
	if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
		target = parent
	}

	prev := target.PrevNamedSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	if int(prev.EndPosition().Row) < int(target.StartPosition().Row)-1 {
		return ""
	}
	text := prev.Utf8Text(src)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return cleanJSDoc(text)
}

// tsModuleDoc returns the first line of a file-leading comment block that is
// separated from the first declaration by a blank line.
func tsModuleDoc(root *tree_sitter.Node, src []byte) string {
	first := root.NamedChild(0)
	if first == nil || first.Kind() != "comment" {
		return ""
	}
	next := first.NextNamedSibling()
	if next != nil && int(next.StartPosition().Row) <= int(first.EndPosition().Row)+1 {
		return "" // attached to the declaration below, not the file
	}
	return firstLine(cleanJSDoc(first.Utf8Text(src)))
}

// cleanJSDoc strips /** */ delimiters and leading asterisks.
func cleanJSDoc(text string) string {
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// isTSExported checks if a node is exported by looking at whether its parent
// is an export_statement.
func isTSExported(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	return parent.Kind() == "export_statement"
}
