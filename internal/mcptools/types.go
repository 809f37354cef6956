package mcptools

import "github.com/dusk-indust/repodoc/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// GenerateDocsInput is the input for the generate_docs MCP tool.
type GenerateDocsInput struct {
	Target          string `json:"target" jsonschema:"local repository path or git URL to document"`
	Output          string `json:"output,omitempty" jsonschema:"document path (default: docs/DOCUMENTATION.md under the repository)"`
	Diagram         bool   `json:"diagram,omitempty" jsonschema:"append a mermaid dependency diagram"`
	Export          string `json:"export,omitempty" jsonschema:"also write a machine-readable bundle: json or yaml"`
	Parser          string `json:"parser,omitempty" jsonschema:"python parser: line (default) or treesitter"`
	Index           bool   `json:"index,omitempty" jsonschema:"persist the graph index next to the document"`
	IncludeDocument bool   `json:"includeDocument,omitempty" jsonschema:"return the rendered markdown in the result"`
}

// GenerateDocsOutput is the result of the generate_docs MCP tool.
type GenerateDocsOutput struct {
	RunID           string           `json:"runId"`
	RepoName        string           `json:"repoName"`
	OutputPath      string           `json:"outputPath"`
	ExportPath      string           `json:"exportPath,omitempty"`
	Stats           graph.ModelStats `json:"stats"`
	ExternalModules []string         `json:"externalModules"`
	Document        string           `json:"document,omitempty"`
}

// BuildTreeInput is the input for the build_tree MCP tool.
type BuildTreeInput struct {
	Path     string `json:"path" jsonschema:"absolute path of the directory to walk"`
	MaxDepth int    `json:"maxDepth,omitempty" jsonschema:"maximum recursion depth (default: 10)"`
}

// BuildTreeOutput is the result of the build_tree MCP tool.
type BuildTreeOutput struct {
	Lines []string `json:"lines"`
	Files int      `json:"files"`
	Dirs  int      `json:"dirs"`
}

// ExtractSymbolsInput is the input for the extract_symbols MCP tool.
type ExtractSymbolsInput struct {
	Path   string `json:"path" jsonschema:"path of the source file to extract"`
	Parser string `json:"parser,omitempty" jsonschema:"python parser: line (default) or treesitter"`
}

// ExtractSymbolsOutput is the result of the extract_symbols MCP tool.
type ExtractSymbolsOutput struct {
	Extraction graph.FileExtraction `json:"extraction"`
	// Modules are the module names derived from the file's imports, before
	// local imports are filtered out.
	Modules []string `json:"modules"`
}

// QuerySymbolsInput is the input for the query_symbols MCP tool.
type QuerySymbolsInput struct {
	Query     string `json:"query" jsonschema:"search query for symbol names (substring match)"`
	Kind      string `json:"kind,omitempty" jsonschema:"filter by symbol kind: function, method, class, type, interface, enum"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
	Importers string `json:"importers,omitempty" jsonschema:"external module whose importing files should also be listed"`
}

// QuerySymbolsOutput is the result of the query_symbols MCP tool.
type QuerySymbolsOutput struct {
	Symbols   []graph.SymbolNode `json:"symbols"`
	Total     int                `json:"total"`
	Importers []string           `json:"importers,omitempty"`
}
