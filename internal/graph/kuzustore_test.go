//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InitSchema(context.Background()))
}

func TestKuzuStore_FileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	file := FileNode{Path: "huge.py", Language: LangPython, LOC: 0, ParseError: docerr.KindFileTooLarge}
	require.NoError(t, s.AddFile(ctx, file))

	got, err := s.GetFile(ctx, "huge.py")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, file, *got)

	missing, err := s.GetFile(ctx, "nope.py")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKuzuStore_UnsupportedEdge(t *testing.T) {
	s := newTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "a", TargetID: "b", Kind: "CALLS"})
	assert.Error(t, err)
}

func TestIndex_KuzuStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, Index(ctx, s, sampleModel()))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{FileCount: 3, SymbolCount: 4, ModuleCount: 1, EdgeCount: 6}, stats)

	importers, err := s.Importers(ctx, "requests")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/service.py", "app/users.py"}, importers)

	syms, err := s.QuerySymbols(ctx, "user", 0)
	require.NoError(t, err)
	require.Len(t, syms, 4)
	assert.Equal(t, "UserService", syms[0].Name)
	assert.Equal(t, "(object)", syms[0].Bases)
}

func TestKuzuFileStore_ReplacesStaleIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".repodoc", "graph")

	first, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	require.NoError(t, Index(ctx, first, sampleModel()))
	require.NoError(t, first.Close())

	second, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	require.NoError(t, second.InitSchema(ctx))

	stats, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.FileCount)
}
