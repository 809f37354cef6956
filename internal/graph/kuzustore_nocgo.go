//go:build !cgo

package graph

import (
	"context"
	"errors"
)

// KuzuAvailable reports whether this build can open a KuzuStore.
const KuzuAvailable = false

var errNoCgo = errors.New("kuzu: graph index requires a cgo build")

// KuzuStore is unavailable without cgo; every constructor fails.
type KuzuStore struct{}

var _ Store = (*KuzuStore)(nil)

func NewKuzuStore() (*KuzuStore, error) { return nil, errNoCgo }
func NewKuzuFileStore(string) (*KuzuStore, error) { return nil, errNoCgo }
func (*KuzuStore) Close() error { return nil }
func (*KuzuStore) InitSchema(context.Context) error { return errNoCgo }
func (*KuzuStore) AddFile(context.Context, FileNode) error { return errNoCgo }
func (*KuzuStore) AddSymbol(context.Context, SymbolNode) error { return errNoCgo }
func (*KuzuStore) AddModule(context.Context, ModuleNode) error { return errNoCgo }
func (*KuzuStore) AddEdge(context.Context, Edge) error { return errNoCgo }
func (*KuzuStore) GetFile(context.Context, string) (*FileNode, error) {
	return nil, errNoCgo
}
func (*KuzuStore) QuerySymbols(context.Context, string, int) ([]SymbolNode, error) {
	return nil, errNoCgo
}
func (*KuzuStore) Importers(context.Context, string) ([]string, error) { return nil, errNoCgo }
func (*KuzuStore) Stats(context.Context) (*GraphStats, error) { return nil, errNoCgo }
