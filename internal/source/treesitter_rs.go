package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts symbols, imports and doc comments from Rust source.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, src []byte) ([]SymbolRecord, []string, string) {
	var symbols []SymbolRecord
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports, rsModuleDoc(root, src)
}

func (e *rsExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	src []byte,
	symbols *[]SymbolRecord,
	imports *[]string,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_item":
		if owner := rsOwnerType(node, src); owner != "" {
			if sym := e.extractNamed(node, src, SymbolKindMethod, owner); sym != nil {
				sym.Signature = rsSignature(node, src)
				*symbols = append(*symbols, *sym)
			}
		} else if rsTopLevel(node) {
			if sym := e.extractNamed(node, src, SymbolKindFunction, ""); sym != nil {
				sym.Signature = rsSignature(node, src)
				*symbols = append(*symbols, *sym)
			}
		}

	case "struct_item", "enum_item", "trait_item", "type_item":
		if rsTopLevel(node) {
			if sym := e.extractNamed(node, src, SymbolKindClass, ""); sym != nil {
				*symbols = append(*symbols, *sym)
			}
		}

	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			if spec := arg.Utf8Text(src); spec != "" {
				*imports = append(*imports, spec)
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

func (e *rsExtractor) extractNamed(node *tree_sitter.Node, src []byte, kind SymbolKind, owner string) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)

	qualified := name
	if owner != "" {
		qualified = owner + "." + name
	}

	return &SymbolRecord{
		Kind:          kind,
		QualifiedName: qualified,
		OwnerClass:    owner,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(rsDocComment(node, src)),
		Exported:      isRustPub(node),
	}
}

// rsSignature renders the parameter list plus any return type.
func rsSignature(node *tree_sitter.Node, src []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := collapseSpaces(params.Utf8Text(src))
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + collapseSpaces(ret.Utf8Text(src))
	}
	return sig
}

// rsOwnerType returns the impl target type name when node is a function
// inside an impl block, with generic arguments stripped.
func rsOwnerType(node *tree_sitter.Node, src []byte) string {
	decls := node.Parent()
	if decls == nil || decls.Kind() != "declaration_list" {
		return ""
	}
	impl := decls.Parent()
	if impl == nil || impl.Kind() != "impl_item" {
		return ""
	}
	typeNode := impl.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	name := typeNode.Utf8Text(src)
	if idx := strings.Index(name, "<"); idx > 0 {
		name = name[:idx]
	}
	return name
}

// rsTopLevel reports whether node sits directly in the source file or in a
// module's declaration list.
func rsTopLevel(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "source_file" {
		return true
	}
	if parent.Kind() == "declaration_list" {
		grandparent := parent.Parent()
		return grandparent != nil && grandparent.Kind() == "mod_item"
	}
	return false
}

// rsDocComment collects the contiguous /// block directly above node.
func rsDocComment(node *tree_sitter.Node, src []byte) string {
	var lines []string
	expectRow := int(node.StartPosition().Row) - 1

	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Kind() != "line_comment" || int(prev.EndPosition().Row) != expectRow {
			break
		}
		text := strings.TrimSpace(prev.Utf8Text(src))
		if !strings.HasPrefix(text, "///") {
			break
		}
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(text, "///")))
		expectRow = int(prev.StartPosition().Row) - 1
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// rsModuleDoc returns the first line of the leading //! block.
func rsModuleDoc(root *tree_sitter.Node, src []byte) string {
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil || child.Kind() != "line_comment" {
			break
		}
		text := strings.TrimSpace(child.Utf8Text(src))
		if !strings.HasPrefix(text, "//!") {
			break
		}
		if line := strings.TrimSpace(strings.TrimPrefix(text, "//!")); line != "" {
			return line
		}
	}
	return ""
}

// isRustPub checks if a node has a visibility_modifier first child.
func isRustPub(node *tree_sitter.Node) bool {
	if node.ChildCount() == 0 {
		return false
	}
	first := node.Child(0)
	if first == nil {
		return false
	}
	return first.Kind() == "visibility_modifier"
}
