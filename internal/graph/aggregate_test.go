package graph

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

func pyFile(path string, imports ...string) FileExtraction {
	ext := FileExtraction{Path: path, Language: LangPython, LineCount: len(imports)}
	for i, stmt := range imports {
		ext.Imports = append(ext.Imports, ImportEdge{Statement: stmt, Line: i + 1})
	}
	return ext
}

func TestAggregate_RelativeImportExcluded(t *testing.T) {
	m := Aggregate([]FileExtraction{
		pyFile("a.py", "import requests"),
		pyFile("b.py", "from . import utils"),
	})

	assert.Equal(t, []string{"requests"}, m.ExternalModules)
	assert.Len(t, m.Imports["b.py"], 1, "relative imports stay in the per-file list")
}

func TestAggregate_ExternalModulesSortedAndDeduplicated(t *testing.T) {
	m := Aggregate([]FileExtraction{
		pyFile("a.py", "import yaml", "import requests", "from requests import Session"),
		pyFile("b.py", "import attrs", "import yaml as y"),
	})
	assert.Equal(t, []string{"attrs", "requests", "yaml"}, m.ExternalModules)
}

func TestAggregate_SplitsDefinitionsPreservingOrder(t *testing.T) {
	ext := FileExtraction{
		Path:     "svc.go",
		Language: LangGo,
		Symbols: []Symbol{
			{Name: "zeta", Kind: SymbolKindFunction, Line: 1},
			{Name: "Server", Kind: SymbolKindClass, Line: 5},
			{Name: "Run", Kind: SymbolKindMethod, Line: 9},
			{Name: "Handler", Kind: SymbolKindInterface, Line: 20},
			{Name: "alpha", Kind: SymbolKindFunction, Line: 30},
			{Name: "Mode", Kind: SymbolKindEnum, Line: 40},
		},
	}
	m := Aggregate([]FileExtraction{ext})

	defs := m.Definitions["svc.go"]
	var fn, cls []string
	for _, s := range defs.Functions {
		fn = append(fn, s.Name)
	}
	for _, s := range defs.Classes {
		cls = append(cls, s.Name)
	}
	assert.Equal(t, []string{"zeta", "Run", "alpha"}, fn)
	assert.Equal(t, []string{"Server", "Handler", "Mode"}, cls)
}

func TestAggregate_Issues(t *testing.T) {
	decoded := pyFile("latin.py", "import chardet")
	decoded.ParseError = docerr.KindDecodeFallback
	decoded.Symbols = []Symbol{{Name: "f", Kind: SymbolKindFunction, Line: 2}}

	m := Aggregate([]FileExtraction{
		failed("Main.java", LangJava, docerr.KindUnsupportedLanguage),
		failed("huge.py", LangPython, docerr.KindFileTooLarge),
		decoded,
	})

	assert.Equal(t, map[string]docerr.Kind{
		"Main.java": docerr.KindUnsupportedLanguage,
		"huge.py":   docerr.KindFileTooLarge,
		"latin.py":  docerr.KindDecodeFallback,
	}, m.Issues)

	_, ok := m.Definitions["Main.java"]
	assert.False(t, ok, "unparsed files have no definitions")
	assert.Len(t, m.Definitions["latin.py"].Functions, 1, "decode fallback keeps symbols")
	assert.Equal(t, []string{"chardet"}, m.ExternalModules)
	assert.Equal(t, []string{"Main.java", "huge.py", "latin.py"}, m.Files())

	stats := m.Stats()
	assert.Equal(t, 3, stats.FileCount)
	assert.Equal(t, 1, stats.FunctionCount)
	assert.Equal(t, 3, stats.IssueCount)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	batch := []FileExtraction{
		pyFile("pkg/a.py", "import requests", "from . import b"),
		pyFile("pkg/b.py", "from os.path import join", "import requests"),
		pyFile("pkg/c.py", "import numpy as np"),
		{
			Path:     "cmd/main.go",
			Language: LangGo,
			Imports:  []ImportEdge{{Statement: `import "fmt"`, Line: 3}},
			Symbols: []Symbol{
				{Name: "main", Kind: SymbolKindFunction, Line: 5},
				{Name: "helper", Kind: SymbolKindFunction, Line: 9},
			},
		},
		failed("docs/x.rb", LangRuby, docerr.KindUnsupportedLanguage),
	}
	want := Aggregate(batch)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := make([]FileExtraction, len(batch))
		copy(shuffled, batch)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Aggregate(shuffled)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, []string{"fmt", "numpy", "os.path", "requests"}, want.ExternalModules)
}

func TestAggregate_EmptyBatch(t *testing.T) {
	m := Aggregate(nil)
	assert.NotNil(t, m.ExternalModules)
	assert.Empty(t, m.ExternalModules)
	assert.Empty(t, m.Files())
}

func TestAggregateWith_Resolver(t *testing.T) {
	root := "../../testdata/fixtures/py_project"
	files := []string{"app/__init__.py", "app/models.py", "app/service.py"}

	reg := DefaultRegistry(false)
	var exts []FileExtraction
	for _, f := range files {
		exts = append(exts, ExtractFile(context.Background(), reg, filepath.Join(root, f), f, 0))
	}

	withoutResolver := Aggregate(exts)
	assert.Equal(t, []string{"app.models", "dataclasses", "json", "requests"}, withoutResolver.ExternalModules)

	m := AggregateWith(exts, NewResolver(root, files))
	assert.Equal(t, []string{"dataclasses", "json", "requests"}, m.ExternalModules)
	assert.Equal(t, []string{"requests"}, m.ModulesOf("app/service.py"))
}

func TestAggregateWith_MixedLanguages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/shop\n\ngo 1.22\n"), 0o644))

	exts := []FileExtraction{
		{
			Path:     "main.go",
			Language: LangGo,
			Imports: []ImportEdge{
				{Statement: `import "net/http"`, Line: 3},
				{Statement: `import "example.com/shop/internal/cart"`, Line: 4},
			},
		},
	}
	m := AggregateWith(exts, NewResolver(dir, []string{"main.go", "internal/cart/cart.go"}))
	assert.Equal(t, []string{"net/http"}, m.ExternalModules)
}
