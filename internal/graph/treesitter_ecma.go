package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ecmaExtractor extracts symbols and imports from TypeScript and JavaScript
// source files. The JavaScript grammar is a subset of the node kinds handled
// here, so one extractor serves both.
type ecmaExtractor struct{}

func (e *ecmaExtractor) Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []ImportEdge) {
	var symbols []Symbol
	var imports []ImportEdge

	add := func(sym *Symbol) {
		if sym != nil {
			symbols = append(symbols, *sym)
		}
	}

	walkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "function_declaration", "generator_function_declaration":
			add(e.extractCallable(node, source, SymbolKindFunction))

		case "method_definition":
			add(e.extractCallable(node, source, SymbolKindMethod))

		case "class_declaration", "abstract_class_declaration":
			add(e.extractClass(node, source))

		case "interface_declaration":
			add(e.extractNamed(node, source, SymbolKindInterface))

		case "type_alias_declaration":
			add(e.extractNamed(node, source, SymbolKindType))

		case "enum_declaration":
			add(e.extractNamed(node, source, SymbolKindEnum))

		case "lexical_declaration", "variable_declaration":
			symbols = append(symbols, e.extractArrowFunctions(node, source)...)

		case "import_statement":
			if stmt := collapseSpace(node.Utf8Text(source)); stmt != "" {
				imports = append(imports, ImportEdge{Statement: stmt, Line: nodeLine(node)})
			}
		}
	})
	return symbols, imports
}

func (e *ecmaExtractor) extractCallable(node *tree_sitter.Node, source []byte, kind SymbolKind) *Symbol {
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

func (e *ecmaExtractor) extractClass(node *tree_sitter.Node, source []byte) *Symbol {
	sym := e.extractNamed(node, source, SymbolKindClass)
	if sym == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "class_heritage" {
			sym.Bases = collapseSpace(child.Utf8Text(source))
			break
		}
	}
	return sym
}

// extractNamed extracts a symbol from a node that has a "name" field child.
func (e *ecmaExtractor) extractNamed(node *tree_sitter.Node, source []byte, kind SymbolKind) *Symbol {
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

// extractArrowFunctions looks for arrow functions bound by a declaration
// (e.g., "const foo = (a) => { ... }").
func (e *ecmaExtractor) extractArrowFunctions(node *tree_sitter.Node, source []byte) []Symbol {
	var result []Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil || valueNode.Kind() != "arrow_function" {
			continue
		}
		name := fieldText(child, "name", source)
		if name == "" {
			continue
		}

		params := fieldText(valueNode, "parameters", source)
		if params == "" {
			// Single bare parameter: "x => x * 2".
			if p := fieldText(valueNode, "parameter", source); p != "" {
				params = "(" + p + ")"
			}
		}
		result = append(result, Symbol{
			Name:      name,
			Kind:      SymbolKindFunction,
			Line:      nodeLine(child),
			Signature: name + " = " + collapseSpace(params) + " =>",
			Params:    collapseSpace(params),
		})
	}
	return result
}
