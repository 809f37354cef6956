package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/export"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/pipeline"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/tree"
)

const defaultQueryLimit = 20

// errNoIndex is returned by query tools before any run has completed.
var errNoIndex = errors.New("no documentation index yet: call generate_docs first")

// DocService holds the pipeline runner and the graph index of the most recent
// run. The index is replaced on every successful generate_docs call.
type DocService struct {
	runner *pipeline.Runner
	base   *config.ProjectConfig
	logger *slog.Logger

	mu    sync.Mutex
	store graph.Store
}

// NewDocService creates a DocService. base supplies the settings every run
// starts from; nil means each local repository's own config file.
func NewDocService(runner *pipeline.Runner, base *config.ProjectConfig, logger *slog.Logger) *DocService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocService{runner: runner, base: base, logger: logger}
}

// Close releases the current index.
func (s *DocService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// GenerateDocs runs the documentation pipeline for a repository and keeps its
// graph index for later queries.
func (s *DocService) GenerateDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateDocsInput,
) (*mcp.CallToolResult, GenerateDocsOutput, error) {
	if input.Target == "" {
		return nil, GenerateDocsOutput{}, fmt.Errorf("target is required")
	}

	cfg, err := s.configFor(input.Target)
	if err != nil {
		return nil, GenerateDocsOutput{}, err
	}
	cfg.Diagram = cfg.Diagram || input.Diagram
	cfg.Index = cfg.Index || input.Index
	if input.Export != "" {
		cfg.Export = input.Export
	}
	if input.Parser != "" {
		cfg.Parser = input.Parser
	}
	if err := cfg.Validate(); err != nil {
		return nil, GenerateDocsOutput{}, docerr.Wrap(err, docerr.KindInvalidConfig, "generate_docs", input.Target)
	}

	res, err := s.runner.Run(ctx, pipeline.Request{Target: input.Target, Output: input.Output, Config: cfg})
	if err != nil {
		if res != nil && res.Store != nil {
			res.Store.Close()
		}
		return nil, GenerateDocsOutput{}, err
	}

	store := res.Store
	if store == nil {
		mem := graph.NewMemStore()
		if err := graph.Index(ctx, mem, res.Model); err != nil {
			return nil, GenerateDocsOutput{}, fmt.Errorf("indexing model: %w", err)
		}
		store = mem
	}
	s.replaceStore(store)

	out := GenerateDocsOutput{
		RunID:           res.RunID,
		RepoName:        res.RepoName,
		OutputPath:      res.OutputPath,
		ExportPath:      res.ExportPath,
		Stats:           res.Model.Stats(),
		ExternalModules: res.Model.ExternalModules,
	}
	if out.ExternalModules == nil {
		out.ExternalModules = []string{}
	}
	if input.IncludeDocument {
		out.Document = res.Document
	}
	return nil, out, nil
}

// BuildTree walks a directory with the configured ignore policy and returns
// the rendered tree lines.
func (s *DocService) BuildTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input BuildTreeInput,
) (*mcp.CallToolResult, BuildTreeOutput, error) {
	if input.Path == "" {
		return nil, BuildTreeOutput{}, fmt.Errorf("path is required")
	}
	cfg, err := s.configFor(input.Path)
	if err != nil {
		return nil, BuildTreeOutput{}, err
	}
	policy, err := cfg.IgnorePolicy()
	if err != nil {
		return nil, BuildTreeOutput{}, docerr.Wrap(err, docerr.KindInvalidConfig, "build_tree", input.Path)
	}
	depth := input.MaxDepth
	if depth <= 0 {
		depth = cfg.MaxDepth
	}

	root, err := tree.Build(input.Path, tree.Options{MaxDepth: depth, Policy: policy, Logger: s.logger})
	if err != nil {
		return nil, BuildTreeOutput{}, err
	}
	files, dirs := tree.Count(root)
	return nil, BuildTreeOutput{
		Lines: export.TreeLines(root),
		Files: files,
		Dirs:  dirs - 1,
	}, nil
}

// ExtractSymbols extracts a single source file.
func (s *DocService) ExtractSymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractSymbolsInput,
) (*mcp.CallToolResult, ExtractSymbolsOutput, error) {
	if input.Path == "" {
		return nil, ExtractSymbolsOutput{}, fmt.Errorf("path is required")
	}
	info, err := os.Stat(input.Path)
	if err != nil {
		return nil, ExtractSymbolsOutput{}, fmt.Errorf("cannot access path: %w", err)
	}
	if info.IsDir() {
		return nil, ExtractSymbolsOutput{}, fmt.Errorf("path is a directory: %s", input.Path)
	}

	parser := input.Parser
	if parser == "" && s.base != nil {
		parser = s.base.Parser
	}
	maxSize := int64(config.DefaultMaxFileSize)
	if s.base != nil {
		maxSize = s.base.MaxFileSize
	}

	reg := graph.DefaultRegistry(parser == config.ParserTreeSitter)
	ext := graph.ExtractFile(ctx, reg, input.Path, filepath.Base(input.Path), maxSize)

	modules := []string{}
	for _, imp := range ext.Imports {
		if name, ok := graph.ModuleName(ext.Language, imp.Statement); ok && !slices.Contains(modules, name) {
			modules = append(modules, name)
		}
	}
	slices.Sort(modules)
	return nil, ExtractSymbolsOutput{Extraction: ext, Modules: modules}, nil
}

// QuerySymbols searches the index of the most recent run by name substring,
// optionally filtered by kind.
func (s *DocService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, QuerySymbolsOutput{}, errNoIndex
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	// Query without a limit so the kind filter sees every match.
	all, err := s.store.QuerySymbols(ctx, input.Query, 0)
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("querying symbols: %w", err)
	}
	symbols := []graph.SymbolNode{}
	for _, sym := range all {
		if input.Kind != "" && string(sym.Kind) != input.Kind {
			continue
		}
		symbols = append(symbols, sym)
	}
	total := len(symbols)
	if len(symbols) > limit {
		symbols = symbols[:limit]
	}

	out := QuerySymbolsOutput{Symbols: symbols, Total: total}
	if input.Importers != "" {
		if out.Importers, err = s.store.Importers(ctx, input.Importers); err != nil {
			return nil, QuerySymbolsOutput{}, fmt.Errorf("querying importers: %w", err)
		}
	}
	return nil, out, nil
}

func (s *DocService) configFor(target string) (*config.ProjectConfig, error) {
	if s.base != nil {
		c := *s.base
		return &c, nil
	}
	if repo.IsURL(target) {
		return config.Defaults(), nil
	}
	return config.Load(target)
}

func (s *DocService) replaceStore(store graph.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing previous index", "error", err)
		}
	}
	s.store = store
}
