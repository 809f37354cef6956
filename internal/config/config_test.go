package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Equal(t, DefaultCloneTimeout, cfg.CloneTimeout)
	assert.Equal(t, ParserLine, cfg.Parser)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	data := `output: out/README.md
maxDepth: 4
concurrency: 2
parser: treesitter
ignoreDirs: [fixtures]
ignorePatterns: ["*.min.js"]
diagram: true
export: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repodoc.yml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "out/README.md", cfg.Output)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, ParserTreeSitter, cfg.Parser)
	assert.True(t, cfg.Diagram)
	assert.Equal(t, ExportJSON, cfg.Export)

	policy, err := cfg.IgnorePolicy()
	require.NoError(t, err)
	assert.True(t, policy.Ignored("fixtures", true))
	assert.True(t, policy.Ignored("app.min.js", false))
	assert.True(t, policy.Ignored("node_modules", true))
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	data := `output = "site/index.md"
max_depth = 3
clone_timeout = "90s"
log_level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repodoc.toml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "site/index.md", cfg.Output)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, 90*time.Second, cfg.CloneTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad parser", "parser: antlr\n"},
		{"bad export", "export: xml\n"},
		{"bad pattern", "ignorePatterns: [\"[unclosed\"]\n"},
		{"bad level", "logLevel: chatty\n"},
		{"bad yaml", "output: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "repodoc.yaml"), []byte(tt.data), 0o644))
			_, err := Load(dir)
			require.Error(t, err)
			assert.True(t, docerr.Is(err, docerr.KindInvalidConfig))
		})
	}
}

func TestIgnorePolicy_Ignored(t *testing.T) {
	p := DefaultIgnorePolicy()

	tests := []struct {
		name  string
		isDir bool
		want  bool
	}{
		{".git", true, true},
		{".hidden", false, true},
		{"node_modules", true, true},
		{"vendor", true, true},
		{"src", true, false},
		{"Build", true, false}, // case-sensitive
		{"thumbs.db", false, true},
		{"module.pyc", false, true},
		{"module.py", false, false},
		{"build", false, false}, // directory denylist does not apply to files
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Ignored(tt.name, tt.isDir), "%s (dir=%v)", tt.name, tt.isDir)
	}
}

func TestIgnorePolicy_NilStillSkipsDotEntries(t *testing.T) {
	var p *IgnorePolicy
	assert.True(t, p.Ignored(".cache", true))
	assert.False(t, p.Ignored("node_modules", true))
}
