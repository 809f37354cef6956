package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Store is the interface for the documentation graph index.
// Implementations: MemStore (default, testing), KuzuStore (cgo builds).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddFile(ctx context.Context, node FileNode) error
	AddSymbol(ctx context.Context, node SymbolNode) error
	AddModule(ctx context.Context, node ModuleNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	QuerySymbols(ctx context.Context, query string, limit int) ([]SymbolNode, error)
	Importers(ctx context.Context, module string) ([]string, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// FileNode is a documented source file.
type FileNode struct {
	Path       string      `json:"path"`
	Language   Language    `json:"language"`
	LOC        int         `json:"loc"`
	ParseError docerr.Kind `json:"parseError,omitempty"`
}

// SymbolNode is a symbol declared in a file.
type SymbolNode struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	FilePath string     `json:"filePath"`
	Line     int        `json:"line"`
	Params   string     `json:"params,omitempty"`
	Bases    string     `json:"bases,omitempty"`
}

// ModuleNode is an external module imported by at least one file.
type ModuleNode struct {
	Name string `json:"name"`
}

// Edge connects two nodes. DEFINES runs File.Path → Symbol.ID; IMPORTS runs
// File.Path → Module.Name.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats counts nodes and edges in a Store.
type GraphStats struct {
	FileCount   int `json:"fileCount"`
	SymbolCount int `json:"symbolCount"`
	ModuleCount int `json:"moduleCount"`
	EdgeCount   int `json:"edgeCount"`
}

// symbolID produces a deterministic identifier for a symbol. The line keeps
// same-named symbols in one file distinct.
func symbolID(filePath, name string, line int) string {
	return fmt.Sprintf("%s:%s:%d", filePath, name, line)
}

// Index loads a RelationshipModel into store. The schema is initialised
// first; store is expected to be empty.
func Index(ctx context.Context, store Store, m *RelationshipModel) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	for _, mod := range m.ExternalModules {
		if err := store.AddModule(ctx, ModuleNode{Name: mod}); err != nil {
			return fmt.Errorf("index module %s: %w", mod, err)
		}
	}

	for _, path := range m.Files() {
		if err := ctx.Err(); err != nil {
			return err
		}
		file := FileNode{
			Path:       path,
			Language:   m.Languages[path],
			LOC:        m.LineCounts[path],
			ParseError: m.Issues[path],
		}
		if err := store.AddFile(ctx, file); err != nil {
			return fmt.Errorf("index file %s: %w", path, err)
		}

		defs := m.Definitions[path]
		for _, group := range [][]Symbol{defs.Classes, defs.Functions} {
			for _, sym := range group {
				node := SymbolNode{
					ID:       symbolID(path, sym.Name, sym.Line),
					Name:     sym.Name,
					Kind:     sym.Kind,
					FilePath: path,
					Line:     sym.Line,
					Params:   sym.Params,
					Bases:    sym.Bases,
				}
				if err := store.AddSymbol(ctx, node); err != nil {
					return fmt.Errorf("index symbol %s: %w", node.ID, err)
				}
				edge := Edge{SourceID: path, TargetID: node.ID, Kind: EdgeKindDefines}
				if err := store.AddEdge(ctx, edge); err != nil {
					return err
				}
			}
		}

		for _, mod := range m.ModulesOf(path) {
			edge := Edge{SourceID: path, TargetID: mod, Kind: EdgeKindImports}
			if err := store.AddEdge(ctx, edge); err != nil {
				return err
			}
		}
	}
	return nil
}
