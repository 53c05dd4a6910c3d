package source

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts symbols, imports and docstrings from Python source.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, src []byte) ([]SymbolRecord, []string, string) {
	var symbols []SymbolRecord
	var imports []string

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, src, &symbols, &imports)
	return symbols, imports, pyModuleDoc(root, src)
}

func (e *pyExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	src []byte,
	symbols *[]SymbolRecord,
	imports *[]string,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		if isPyTopLevel(node) {
			if sym := e.extractFunction(node, src, ""); sym != nil {
				*symbols = append(*symbols, *sym)
			}
		} else if owner := pyOwnerClass(node, src); owner != "" {
			if sym := e.extractFunction(node, src, owner); sym != nil {
				*symbols = append(*symbols, *sym)
			}
		}
		// Functions nested inside functions are not documented.

	case "class_definition":
		if isPyTopLevel(node) {
			if sym := e.extractClass(node, src); sym != nil {
				*symbols = append(*symbols, *sym)
			}
		}

	case "import_statement":
		// Children: "import" keyword then dotted_name(s) or aliased_import(s).
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "dotted_name":
				if name := child.Utf8Text(src); name != "" {
					*imports = append(*imports, name)
				}
			case "aliased_import":
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					if name := nameNode.Utf8Text(src); name != "" {
						*imports = append(*imports, name)
					}
				}
			}
		}

	case "import_from_statement":
		if spec := e.fromImportModule(node, src); spec != "" {
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

func (e *pyExtractor) extractFunction(node *tree_sitter.Node, src []byte, owner string) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)

	kind := SymbolKindFunction
	qualified := name
	if owner != "" {
		kind = SymbolKindMethod
		qualified = owner + "." + name
	}

	return &SymbolRecord{
		Kind:          kind,
		QualifiedName: qualified,
		OwnerClass:    owner,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(pyDocstring(node, src)),
		Signature:     pySignature(node, src),
		Exported:      isPyExported(name),
	}
}

func (e *pyExtractor) extractClass(node *tree_sitter.Node, src []byte) *SymbolRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(src)
	return &SymbolRecord{
		Kind:          SymbolKindClass,
		QualifiedName: name,
		StartLine:     int(node.StartPosition().Row) + 1,
		DocSummary:    firstLine(pyDocstring(node, src)),
		Exported:      isPyExported(name),
	}
}

// fromImportModule returns the module specifier of a from-import. Relative
// imports keep their leading dots ("from .models import X" yields ".models").
func (e *pyExtractor) fromImportModule(node *tree_sitter.Node, src []byte) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if k := child.Kind(); k == "dotted_name" || k == "relative_import" {
				moduleNode = child
				break
			}
		}
	}
	if moduleNode == nil {
		return ""
	}
	return moduleNode.Utf8Text(src)
}

// pySignature renders the parameter list plus any return annotation.
func pySignature(node *tree_sitter.Node, src []byte) string {
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

// pyDocstring returns the full docstring of a function or class definition:
// the first statement of the body when it is a plain string expression.
func pyDocstring(node *tree_sitter.Node, src []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	return pyLeadingString(body, src)
}

// pyModuleDoc returns the module-level docstring, if any.
func pyModuleDoc(root *tree_sitter.Node, src []byte) string {
	return firstLine(pyLeadingString(root, src))
}

// pyLeadingString returns the string literal content when the first named
// child of block is an expression_statement wrapping a string.
func pyLeadingString(block *tree_sitter.Node, src []byte) string {
	first := block.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Kind() != "string" {
		return ""
	}
	return pyCleanString(str.Utf8Text(src))
}

// pyCleanString strips quote delimiters and common prefixes from a Python
// string literal.
func pyCleanString(text string) string {
	text = strings.TrimLeft(text, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return strings.TrimSpace(text)
}

// pyOwnerClass returns the enclosing top-level class name when node is a
// direct member of a class body (a method), and "" otherwise.
func pyOwnerClass(node *tree_sitter.Node, src []byte) string {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Kind() != "block" {
		return ""
	}
	cls := parent.Parent()
	if cls == nil || cls.Kind() != "class_definition" {
		return ""
	}
	if !isPyTopLevel(cls) {
		return ""
	}
	nameNode := cls.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Utf8Text(src)
}

// isPyTopLevel returns true if the node is at the module top level. A
// top-level node has a parent that is "module", or a parent that is
// "decorated_definition" whose own parent is "module".
func isPyTopLevel(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "module" {
		return true
	}
	if parent.Kind() == "decorated_definition" {
		grandparent := parent.Parent()
		return grandparent != nil && grandparent.Kind() == "module"
	}
	return false
}

// isPyExported returns true if the name does not start with an underscore.
func isPyExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}
