package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/export"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/metrics"
)

var fixedTime = time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// sampleRepo lays out a small Python project with a few files the pipeline
// must skip or flag.
func sampleRepo(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(root, "README.md"), "# Shop\n\nA tiny storefront.\n")
	writeFile(t, filepath.Join(root, "app", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "app", "models.py"),
		"import requests\nfrom . import utils\nfrom app.db import Base\n\nclass User(Base):\n    def save(self, force):\n        pass\n")
	writeFile(t, filepath.Join(root, "app", "db.py"), "import sqlalchemy\n\nBase = object\n")
	writeFile(t, filepath.Join(root, "Main.java"), "class Main {}\n")
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "index.js"), "module.exports = 1\n")
	writeFile(t, filepath.Join(root, "app", "cache.pyc"), "\x00\x01")
	return root
}

func testConfig() *config.ProjectConfig {
	cfg := config.Defaults()
	cfg.Concurrency = 4
	return cfg
}

func newTestRunner(opts Options) *Runner {
	opts.Now = func() time.Time { return fixedTime }
	return NewRunner(opts)
}

func TestRun_LocalRepository(t *testing.T) {
	root := sampleRepo(t)
	cfg := testConfig()
	cfg.Export = config.ExportJSON
	cfg.Index = true
	m := metrics.New()

	r := newTestRunner(Options{
		Metrics:   m,
		OpenStore: func(string) (graph.Store, error) { return graph.NewMemStore(), nil },
	})
	res, err := r.Run(context.Background(), Request{Target: root, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Store.Close() })

	assert.Equal(t, "shop", res.RepoName)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, filepath.Join(root, "docs", "DOCUMENTATION.md"), res.OutputPath)
	assert.True(t, res.Saved)
	assert.Equal(t, 4, res.SourceFiles, "three .py, one .java and nothing under node_modules")

	saved, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, res.Document, string(saved))

	doc := res.Document
	assert.Contains(t, doc, "# shop\n**Generated on:** 2024-03-01 12:30:45\n")
	assert.Contains(t, doc, "## Overview\nA tiny storefront.\n")
	assert.Contains(t, doc, "## Dependencies\n- requests\n- sqlalchemy\n\n", "local and relative imports are not external")
	assert.Contains(t, doc, "**`User`** (Line 5)\n\n*Bases:* (Base)")
	assert.Contains(t, doc, "**`save(self, force)`** (Line 6)")
	assert.Contains(t, doc, "### Main.java\n*Not parsed: unsupported language*")
	assert.NotContains(t, doc, "node_modules")
	assert.NotContains(t, doc, "cache.pyc")

	// The export renders back to the same document.
	require.Equal(t, filepath.Join(root, "docs", "DOCUMENTATION.json"), res.ExportPath)
	bundle, err := export.LoadBundle(res.ExportPath)
	require.NoError(t, err)
	in := bundle.RenderInput()
	in.GeneratedAt = fixedTime
	assert.Equal(t, doc, export.Render(in))

	importers, err := res.Store.Importers(context.Background(), "requests")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/models.py"}, importers)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues(string(docerr.KindUnsupportedLanguage))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
}

func TestRun_LoadsRepositoryConfig(t *testing.T) {
	root := sampleRepo(t)
	writeFile(t, filepath.Join(root, "repodoc.yml"), "output: out/API.md\ndiagram: true\nignoreDirs: [app]\n")

	res, err := newTestRunner(Options{}).Run(context.Background(), Request{Target: root})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "out", "API.md"), res.OutputPath)
	assert.Nil(t, res.Store)
	assert.Empty(t, res.ExportPath)
	assert.NotContains(t, res.Document, "models.py")
	assert.Contains(t, res.Document, "*No external dependencies detected*")
}

func TestRun_PreviousOutputIsNotListed(t *testing.T) {
	root := sampleRepo(t)
	cfg := testConfig()
	cfg.Export = config.ExportYAML
	r := newTestRunner(Options{})

	first, err := r.Run(context.Background(), Request{Target: root, Config: cfg})
	require.NoError(t, err)
	second, err := r.Run(context.Background(), Request{Target: root, Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	assert.NotContains(t, second.Document, "DOCUMENTATION")
}

func TestGeneratedFiles(t *testing.T) {
	assert.Equal(t,
		[]string{"/r/docs/DOC.md", "/r/docs/DOC.html", "/r/docs/DOC.json", "/r/docs/DOC.yaml"},
		GeneratedFiles("/r/docs/DOC.md"))
}

func TestRun_InvalidRepositoryConfig(t *testing.T) {
	root := sampleRepo(t)
	writeFile(t, filepath.Join(root, "repodoc.yml"), "parser: regex\n")

	res, err := newTestRunner(Options{}).Run(context.Background(), Request{Target: root})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, docerr.Is(err, docerr.KindInvalidConfig))
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageAcquire, stage)
}

func TestRun_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	m := metrics.New()

	res, err := newTestRunner(Options{Metrics: m}).Run(context.Background(), Request{Target: missing, Config: testConfig()})
	require.Error(t, err)
	assert.Nil(t, res, "no document for an unreadable root")
	assert.True(t, docerr.Is(err, docerr.KindTraversalFailed))

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageTree, stage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
}

func TestRun_SaveFailureKeepsDocument(t *testing.T) {
	root := sampleRepo(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	writeFile(t, blocker, "x")

	res, err := newTestRunner(Options{}).Run(context.Background(), Request{
		Target: root,
		Output: filepath.Join(blocker, "doc.md"),
		Config: testConfig(),
	})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Saved)
	assert.Contains(t, res.Document, "## API Reference")
	assert.True(t, docerr.Is(err, docerr.KindPersistenceFailed))

	stage, _ := FailedStage(err)
	assert.Equal(t, StageSave, stage)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestRunner(Options{}).Run(ctx, Request{Target: sampleRepo(t), Config: testConfig()})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ProgressEvents(t *testing.T) {
	pr := NewProgressReporter()
	r := newTestRunner(Options{Progress: pr})

	_, err := r.Run(context.Background(), Request{Target: sampleRepo(t), Config: testConfig()})
	require.NoError(t, err)
	pr.Close()

	var completed []Stage
	var skipped []Stage
	for ev := range pr.Subscribe() {
		assert.NotEmpty(t, ev.RunID)
		switch ev.Status {
		case ProgressComplete:
			completed = append(completed, ev.Stage)
		case ProgressSkipped:
			skipped = append(skipped, ev.Stage)
		case ProgressFailed:
			t.Fatalf("unexpected failure event: %+v", ev)
		}
	}
	assert.Equal(t, []Stage{StageAcquire, StageMetadata, StageTree, StageExtract, StageAggregate, StageRender, StageSave}, completed)
	assert.Equal(t, []Stage{StageExport, StageIndex}, skipped)
}

func TestRun_IndexStoreFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Index = true
	r := newTestRunner(Options{OpenStore: func(string) (graph.Store, error) {
		return nil, errors.New("disk full")
	}})

	res, err := r.Run(context.Background(), Request{Target: sampleRepo(t), Config: cfg})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Saved, "document is saved before indexing")
	stage, _ := FailedStage(err)
	assert.Equal(t, StageIndex, stage)
}

func TestSourceFiles(t *testing.T) {
	root := sampleRepo(t)
	res, err := newTestRunner(Options{}).Run(context.Background(), Request{Target: root, Config: testConfig()})
	require.NoError(t, err)

	var rel []string
	for _, j := range SourceFiles(res.Tree, root) {
		rel = append(rel, j.RelPath)
		assert.True(t, filepath.IsAbs(j.AbsPath))
	}
	assert.Equal(t, []string{"Main.java", "app/__init__.py", "app/db.py", "app/models.py"}, rel)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "extract", StageExtract.String())
	assert.Equal(t, "index", StageIndex.String())
	assert.Equal(t, "unknown", Stage(42).String())
}
