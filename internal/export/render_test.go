package export

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/tree"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)

func dir(name string, children ...*tree.Node) *tree.Node {
	if children == nil {
		children = []*tree.Node{}
	}
	return &tree.Node{Name: name, Kind: tree.KindDir, Path: name, Children: children}
}

func file(name string) *tree.Node {
	return &tree.Node{Name: name, Kind: tree.KindFile, Path: name}
}

func shopModel() *graph.RelationshipModel {
	return graph.Aggregate([]graph.FileExtraction{{
		Path:     "app/models.py",
		Language: graph.LangPython,
		Symbols: []graph.Symbol{
			{Name: "User", Kind: graph.SymbolKindClass, Line: 4, Bases: "(Base)"},
			{Name: "get_user", Kind: graph.SymbolKindFunction, Line: 10, Params: "(id)"},
		},
		Imports:   []graph.ImportEdge{{Statement: "import requests", Line: 1}},
		LineCount: 12,
	}})
}

func shopInput() RenderInput {
	return RenderInput{
		RepoName:    "shop",
		Summary:     "A storefront.",
		Tree:        dir("shop", file("README.md"), dir("app", file("models.py"))),
		Model:       shopModel(),
		GeneratedAt: fixedTime,
	}
}

func TestRender_Document(t *testing.T) {
	want := "# shop\n" +
		"**Generated on:** 2024-03-01 12:30:45\n\n" +
		"## Overview\n" +
		"A storefront.\n\n" +
		"\n" +
		"## Project Structure\n" +
		"📁 shop/\n" +
		"│   📄 `README.md`\n" +
		"    📁 app/\n" +
		"        📄 `models.py`\n" +
		"\n" +
		"\n" +
		"## Dependencies\n" +
		"- requests\n" +
		"\n" +
		"\n" +
		"## API Reference\n" +
		"### models.py\n" +
		"#### Classes\n" +
		"**`User`** (Line 4)\n\n" +
		"*Bases:* (Base)\n\n" +
		"#### Functions\n" +
		"**`get_user(id)`** (Line 10)\n\n" +
		"\n" +
		"---\n" +
		"*Documentation generated automatically by repodoc*\n"

	assert.Equal(t, want, Render(shopInput()))
}

func TestRender_Idempotent(t *testing.T) {
	in := shopInput()
	in.Diagram = true
	assert.Equal(t, Render(in), Render(in))
}

func TestRender_EmptyInputs(t *testing.T) {
	doc := Render(RenderInput{RepoName: "empty", GeneratedAt: fixedTime})

	assert.Contains(t, doc, "## Project Structure\n\n")
	assert.Contains(t, doc, "## Dependencies\n*No external dependencies detected*\n")
	assert.Contains(t, doc, "## API Reference\n\n---\n")
	assert.NotContains(t, doc, "## Overview")
	assert.True(t, strings.HasSuffix(doc, Footer+"\n"))
}

func TestRender_TruncatesTree(t *testing.T) {
	var files []*tree.Node
	for i := range 60 {
		files = append(files, file(fmt.Sprintf("f%02d.py", i)))
	}
	doc := Render(RenderInput{RepoName: "big", Tree: dir("big", files...), GeneratedAt: fixedTime})

	start := strings.Index(doc, "## Project Structure\n") + len("## Project Structure\n")
	end := strings.Index(doc, "\n... and 11 more items\n\n")
	require.Greater(t, start, 0)
	require.Greater(t, end, start, "truncation notice present")

	lines := strings.Split(strings.TrimSuffix(doc[start:end], "\n"), "\n")
	assert.Len(t, lines, MaxTreeLines)
	assert.Equal(t, "📁 big/", lines[0])
	assert.Equal(t, "│   📄 `f48.py`", lines[MaxTreeLines-1])
	assert.NotContains(t, doc, "f49.py")
}

func TestRender_ExactlyAtLimit(t *testing.T) {
	var files []*tree.Node
	for i := range MaxTreeLines - 1 {
		files = append(files, file(fmt.Sprintf("f%02d.py", i)))
	}
	doc := Render(RenderInput{RepoName: "edge", Tree: dir("edge", files...), GeneratedAt: fixedTime})
	assert.NotContains(t, doc, "more items")
	assert.Contains(t, doc, "    📄 `f48.py`\n")
}

func TestRender_Issues(t *testing.T) {
	model := graph.Aggregate([]graph.FileExtraction{
		{Path: "huge.py", Language: graph.LangPython, ParseError: docerr.KindFileTooLarge},
		{
			Path:       "latin1.py",
			Language:   graph.LangPython,
			Symbols:    []graph.Symbol{{Name: "caf", Kind: graph.SymbolKindFunction, Line: 2, Params: "()"}},
			LineCount:  3,
			ParseError: docerr.KindDecodeFallback,
		},
		{Path: "Main.java", Language: graph.LangJava, ParseError: docerr.KindUnsupportedLanguage},
	})
	doc := Render(RenderInput{RepoName: "r", Model: model, GeneratedAt: fixedTime})

	assert.Contains(t, doc, "### huge.py\n*Not parsed: file too large*\n")
	assert.Contains(t, doc, "### Main.java\n*Not parsed: unsupported language*\n")
	assert.Contains(t, doc, "### latin1.py\n*Note: decoded with replacement characters*\n\n#### Functions\n**`caf()`** (Line 2)")
}

func TestRender_KindLabels(t *testing.T) {
	model := graph.Aggregate([]graph.FileExtraction{{
		Path:     "store/repo.go",
		Language: graph.LangGo,
		Symbols: []graph.Symbol{
			{Name: "Repository", Kind: graph.SymbolKindInterface, Line: 11},
			{Name: "Get", Kind: graph.SymbolKindMethod, Line: 20, Params: "(id string)"},
		},
	}})
	doc := Render(RenderInput{RepoName: "r", Model: model, GeneratedAt: fixedTime})

	assert.Contains(t, doc, "**`Repository`** (interface, Line 11)")
	assert.Contains(t, doc, "**`Get(id string)`** (method, Line 20)")
}

func TestRender_Metadata(t *testing.T) {
	in := shopInput()
	in.Metadata = &repo.Metadata{
		RemoteURL: "https://github.com/acme/shop.git",
		Commit: repo.Commit{
			Hash:    "0123456789abcdef0123456789abcdef01234567",
			Author:  "Ada Lovelace",
			Email:   "ada@example.com",
			Message: "Fix a | b",
		},
	}
	doc := Render(in)

	assert.Contains(t, doc, "| Field | Value |\n| --- | --- |\n")
	assert.Contains(t, doc, "| Repository | https://github.com/acme/shop.git |\n")
	assert.Contains(t, doc, "| Commit | `0123456789ab` |\n")
	assert.Contains(t, doc, "| Author | Ada Lovelace <ada@example.com> |\n")
	assert.Contains(t, doc, `| Message | Fix a \| b |`)
	assert.NotContains(t, doc, "| Date |")
}

func TestRender_Diagram(t *testing.T) {
	in := shopInput()
	in.Diagram = true
	doc := Render(in)

	assert.Contains(t, doc, "```mermaid\ngraph LR\n")
	assert.Contains(t, doc, "    N0([\"requests\"])\n")
	assert.Contains(t, doc, "  N1[\"app/models.py\"]\n  N1 --> N0\n")
}

func TestTreeLines_Prefixes(t *testing.T) {
	root := dir("r", dir("a", file("x"), file("y")), file("z"))
	assert.Equal(t, []string{
		"📁 r/",
		"│   📁 a/",
		"│   │   📄 `x`",
		"│       📄 `y`",
		"    📄 `z`",
	}, TreeLines(root))
	assert.Nil(t, TreeLines(nil))
}

func TestMarkdown_Blocks(t *testing.T) {
	var md Markdown
	md.Heading(2, "Title")
	md.List([]string{"a", "b"}, true)
	md.Table([]string{"k"}, [][]string{{"x|y"}})
	md.CodeBlock("sh", "echo hi\n")
	md.Rule()

	assert.Equal(t, "## Title\n1. a\n2. b\n\n| k |\n| --- |\n| x\\|y |\n\n```sh\necho hi\n```\n\n---\n", md.String())
}
