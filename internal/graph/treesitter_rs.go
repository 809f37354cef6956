package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts symbols and imports from Rust source files.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []ImportEdge) {
	var symbols []Symbol
	var imports []ImportEdge

	add := func(sym *Symbol) {
		if sym != nil {
			symbols = append(symbols, *sym)
		}
	}

	walkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_item", "function_signature_item":
			kind := SymbolKindFunction
			if isRustAssociated(node) {
				kind = SymbolKindMethod
			}
			add(e.extractFunction(node, source, kind))

		case "struct_item":
			add(e.extractNamed(node, source, SymbolKindClass))

		case "enum_item":
			add(e.extractNamed(node, source, SymbolKindEnum))

		case "trait_item":
			add(e.extractNamed(node, source, SymbolKindInterface))

		case "type_item":
			add(e.extractNamed(node, source, SymbolKindType))

		case "use_declaration":
			if stmt := collapseSpace(node.Utf8Text(source)); stmt != "" {
				imports = append(imports, ImportEdge{Statement: stmt, Line: nodeLine(node)})
			}

		case "extern_crate_declaration":
			if stmt := collapseSpace(node.Utf8Text(source)); stmt != "" {
				imports = append(imports, ImportEdge{Statement: stmt, Line: nodeLine(node)})
			}
		}
	})
	return symbols, imports
}

func (e *rsExtractor) extractFunction(node *tree_sitter.Node, source []byte, kind SymbolKind) *Symbol {
	sym := e.extractNamed(node, source, kind)
	if sym == nil {
		return nil
	}
	sym.Params = collapseSpace(fieldText(node, "parameters", source))
	return sym
}

// extractNamed extracts a symbol from a node that has a "name" field child.
func (e *rsExtractor) extractNamed(node *tree_sitter.Node, source []byte, kind SymbolKind) *Symbol {
	name := fieldText(node, "name", source)
	if name == "" {
		return nil
	}
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Line:      nodeLine(node),
		Signature: headerText(node, source),
	}
}

// isRustAssociated reports whether a function item sits directly inside an
// impl or trait body.
func isRustAssociated(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "declaration_list" {
		return false
	}
	owner := parent.Parent()
	return owner != nil && (owner.Kind() == "impl_item" || owner.Kind() == "trait_item")
}
