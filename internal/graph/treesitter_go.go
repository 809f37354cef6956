package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts symbols and imports from Go source files.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []ImportEdge) {
	var symbols []Symbol
	var imports []ImportEdge

	walkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_declaration":
			if sym := e.extractFunc(node, source, SymbolKindFunction); sym != nil {
				symbols = append(symbols, *sym)
			}

		case "method_declaration":
			if sym := e.extractFunc(node, source, SymbolKindMethod); sym != nil {
				symbols = append(symbols, *sym)
			}

		case "type_spec":
			if sym := e.extractTypeSpec(node, source); sym != nil {
				symbols = append(symbols, *sym)
			}

		case "import_spec":
			if imp := e.extractImport(node, source); imp != nil {
				imports = append(imports, *imp)
			}
		}
	})
	return symbols, imports
}

func (e *goExtractor) extractFunc(node *tree_sitter.Node, source []byte, kind SymbolKind) *Symbol {
	name := fieldText(node, "name", source)
	if name == "" {
		return nil
	}
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Line:      nodeLine(node),
		Signature: headerText(node, source),
		Params:    collapseSpace(fieldText(node, "parameters", source)),
	}
}

func (e *goExtractor) extractTypeSpec(node *tree_sitter.Node, source []byte) *Symbol {
	name := fieldText(node, "name", source)
	if name == "" {
		return nil
	}

	kind := SymbolKindType
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		switch typeNode.Kind() {
		case "interface_type":
			kind = SymbolKindInterface
		case "struct_type":
			kind = SymbolKindClass
		}
	}

	return &Symbol{
		Name:      name,
		Kind:      kind,
		Line:      nodeLine(node),
		Signature: "type " + name,
	}
}

func (e *goExtractor) extractImport(node *tree_sitter.Node, source []byte) *ImportEdge {
	spec := collapseSpace(node.Utf8Text(source))
	if spec == "" {
		return nil
	}
	return &ImportEdge{
		Statement: "import " + spec,
		Line:      nodeLine(node),
	}
}
