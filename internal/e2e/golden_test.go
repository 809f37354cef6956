//go:build e2e

package e2e

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

var goldenFixtures = []string{"go_project", "py_project", "rust_project", "ts_project"}

// TestGolden compares each fixture's document against its golden file. If a
// golden file does not exist, the case is skipped with a message to run with
// -update.
func TestGolden(t *testing.T) {
	for _, name := range goldenFixtures {
		t.Run(name, func(t *testing.T) {
			goldenPath := filepath.Join(goldenDir(), name+".md")
			golden, err := os.ReadFile(goldenPath)
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", goldenPath)
				return
			}
			require.NoError(t, err)

			res := runFixture(t, name)
			assert.Equal(t, string(golden), res.Document,
				"document for %s does not match golden file", name)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current pipeline output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	require.NoError(t, os.MkdirAll(goldenDir(), 0o755))
	for _, name := range goldenFixtures {
		res := runFixture(t, name)
		err := os.WriteFile(filepath.Join(goldenDir(), name+".md"), []byte(res.Document), 0o644)
		require.NoError(t, err)
		t.Logf("updated %s.md", name)
	}
}
