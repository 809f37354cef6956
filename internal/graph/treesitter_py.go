package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts symbols and imports from Python source files.
// Unlike the line heuristic it joins multi-line signatures and ignores
// introducer tokens inside strings and comments.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []ImportEdge) {
	var symbols []Symbol
	var imports []ImportEdge

	walkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_definition":
			if sym := e.extractFunction(node, source); sym != nil {
				symbols = append(symbols, *sym)
			}

		case "class_definition":
			if sym := e.extractClass(node, source); sym != nil {
				symbols = append(symbols, *sym)
			}

		case "import_statement", "import_from_statement", "future_import_statement":
			if stmt := collapseSpace(node.Utf8Text(source)); stmt != "" {
				imports = append(imports, ImportEdge{Statement: stmt, Line: nodeLine(node)})
			}
		}
	})
	return symbols, imports
}

func (e *pyExtractor) extractFunction(node *tree_sitter.Node, source []byte) *Symbol {
	name := fieldText(node, "name", source)
	if name == "" {
		return nil
	}
	kind := SymbolKindFunction
	if hasAncestor(node, "class_definition") && !hasAncestor(node, "function_definition") {
		kind = SymbolKindMethod
	}
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Line:      nodeLine(node),
		Signature: pySignature(node, source),
		Params:    collapseSpace(fieldText(node, "parameters", source)),
	}
}

func (e *pyExtractor) extractClass(node *tree_sitter.Node, source []byte) *Symbol {
	name := fieldText(node, "name", source)
	if name == "" {
		return nil
	}
	return &Symbol{
		Name:      name,
		Kind:      SymbolKindClass,
		Line:      nodeLine(node),
		Signature: pySignature(node, source),
		Bases:     collapseSpace(fieldText(node, "superclasses", source)),
	}
}

// pySignature returns the declaration header without its introducer token,
// matching the shape produced by the line heuristic ("foo(a, b):").
func pySignature(node *tree_sitter.Node, source []byte) string {
	sig := headerText(node, source)
	sig, _ = cutAnyPrefix(sig, []string{"async def ", "def ", "class "})
	return strings.TrimSpace(sig)
}
