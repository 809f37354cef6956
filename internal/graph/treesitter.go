package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammarExtractor pulls symbols and imports out of a parsed tree-sitter AST.
type grammarExtractor interface {
	Extract(root *tree_sitter.Node, source []byte) ([]Symbol, []ImportEdge)
}

// TreeSitterExtractor implements Extractor using tree-sitter grammars.
// A new tree-sitter parser is created per ParseFile call, so one instance is
// safe to share between goroutines.
type TreeSitterExtractor struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]grammarExtractor
	tsx        *tree_sitter.Language
}

// NewTreeSitterExtractor creates a TreeSitterExtractor with Python, Go,
// TypeScript, JavaScript and Rust grammars registered.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	langs := map[Language]*tree_sitter.Language{
		LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
		LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		LangJavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
	}

	ecma := &ecmaExtractor{}
	extractors := map[Language]grammarExtractor{
		LangPython:     &pyExtractor{},
		LangGo:         &goExtractor{},
		LangTypeScript: ecma,
		LangJavaScript: ecma,
		LangRust:       &rsExtractor{},
	}

	return &TreeSitterExtractor{
		languages:  langs,
		extractors: extractors,
		tsx:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}
}

// Languages returns the languages this extractor can handle, sorted.
func (p *TreeSitterExtractor) Languages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// ParseFile detects the language from the path and extracts symbols and
// imports.
func (p *TreeSitterExtractor) ParseFile(ctx context.Context, path string, content []byte) (FileExtraction, error) {
	lang, _ := LanguageForPath(path)
	return p.Parse(ctx, path, content, lang)
}

// Parse extracts symbols and imports using the grammar for lang.
func (p *TreeSitterExtractor) Parse(ctx context.Context, path string, source []byte, lang Language) (FileExtraction, error) {
	if err := ctx.Err(); err != nil {
		return FileExtraction{}, err
	}

	tsLang, ok := p.languages[lang]
	if !ok {
		return FileExtraction{}, fmt.Errorf("unsupported language: %s", lang)
	}
	if lang == LangTypeScript && strings.HasSuffix(strings.ToLower(path), ".tsx") {
		tsLang = p.tsx
	}

	ext, ok := p.extractors[lang]
	if !ok {
		return FileExtraction{}, fmt.Errorf("no extractor for language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return FileExtraction{}, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return FileExtraction{}, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	symbols, imports := ext.Extract(tree.RootNode(), source)
	if symbols == nil {
		symbols = []Symbol{}
	}
	if imports == nil {
		imports = []ImportEdge{}
	}

	return FileExtraction{
		Path:      path,
		Language:  lang,
		Symbols:   symbols,
		Imports:   imports,
		LineCount: countLOC(source),
	}, nil
}

// --- Shared node helpers ---

// walkTree visits every node depth-first in source order.
func walkTree(root *tree_sitter.Node, visit func(node *tree_sitter.Node)) {
	cursor := root.Walk()
	defer cursor.Close()

	var rec func()
	rec = func() {
		visit(cursor.Node())
		if cursor.GotoFirstChild() {
			rec()
			for cursor.GotoNextSibling() {
				rec()
			}
			cursor.GotoParent()
		}
	}
	rec()
}

// nodeLine returns the 1-based line a node starts on.
func nodeLine(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// fieldText returns the text of a named field child, or "".
func fieldText(node *tree_sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Utf8Text(source)
}

// headerText returns the declaration text from the start of node up to the
// start of its body field (or the whole node when it has none), with runs of
// whitespace collapsed.
func headerText(node *tree_sitter.Node, source []byte) string {
	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	start := node.StartByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return collapseSpace(string(source[start:end]))
}

// collapseSpace joins all whitespace runs into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// hasAncestor reports whether any ancestor of node has one of the kinds.
func hasAncestor(node *tree_sitter.Node, kinds ...string) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		for _, k := range kinds {
			if p.Kind() == k {
				return true
			}
		}
	}
	return false
}
