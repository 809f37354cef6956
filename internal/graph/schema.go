package graph

import (
	"path/filepath"
	"strings"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// --- Enums ---

// SymbolKind classifies an extracted symbol.
type SymbolKind string

const (
	SymbolKindFunction  SymbolKind = "function"
	SymbolKindClass     SymbolKind = "class"
	SymbolKindMethod    SymbolKind = "method"
	SymbolKindType      SymbolKind = "type"
	SymbolKindInterface SymbolKind = "interface"
	SymbolKindEnum      SymbolKind = "enum"
)

// Callable reports whether symbols of this kind are listed with functions.
func (k SymbolKind) Callable() bool {
	return k == SymbolKindFunction || k == SymbolKindMethod
}

// EdgeKind classifies relationships stored in the graph index.
type EdgeKind string

const (
	EdgeKindDefines EdgeKind = "DEFINES"
	EdgeKindImports EdgeKind = "IMPORTS"
)

// Language identifies a programming language for extraction.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangRust       Language = "rust"

	// Recognised as source but without an extractor.
	LangJac     Language = "jac"
	LangJava    Language = "java"
	LangC       Language = "c"
	LangCPP     Language = "cpp"
	LangRuby    Language = "ruby"
	LangPHP     Language = "php"
	LangCSharp  Language = "csharp"
	LangKotlin  Language = "kotlin"
	LangSwift   Language = "swift"
	LangScala   Language = "scala"
	LangUnknown Language = ""
)

// extToLanguage maps file extensions of source files to a Language.
var extToLanguage = map[string]Language{
	".py":    LangPython,
	".go":    LangGo,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".js":    LangJavaScript,
	".jsx":   LangJavaScript,
	".mjs":   LangJavaScript,
	".rs":    LangRust,
	".jac":   LangJac,
	".java":  LangJava,
	".c":     LangC,
	".h":     LangC,
	".cpp":   LangCPP,
	".cc":    LangCPP,
	".hpp":   LangCPP,
	".rb":    LangRuby,
	".php":   LangPHP,
	".cs":    LangCSharp,
	".kt":    LangKotlin,
	".swift": LangSwift,
	".scala": LangScala,
}

// LanguageForPath returns the language of a source file and whether the path
// looks like source at all. Non-source files are not extracted.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// --- Models ---

// Symbol is a function or class-like declaration found in a file.
type Symbol struct {
	Name      string     `json:"name" yaml:"name"`
	Kind      SymbolKind `json:"kind" yaml:"kind"`
	Line      int        `json:"line" yaml:"line"`
	Signature string     `json:"signature,omitempty" yaml:"signature,omitempty"`
	Params    string     `json:"params,omitempty" yaml:"params,omitempty"`
	Bases     string     `json:"bases,omitempty" yaml:"bases,omitempty"`
}

// ImportEdge is an import statement recorded verbatim. Module names are only
// derived during aggregation.
type ImportEdge struct {
	Statement string `json:"statement" yaml:"statement"`
	Line      int    `json:"line" yaml:"line"`
}

// FileExtraction is the immutable result of extracting one file. ParseError
// is empty for a clean parse.
type FileExtraction struct {
	Path       string       `json:"path" yaml:"path"`
	Language   Language     `json:"language" yaml:"language"`
	Symbols    []Symbol     `json:"symbols" yaml:"symbols"`
	Imports    []ImportEdge `json:"imports" yaml:"imports"`
	LineCount  int          `json:"lineCount" yaml:"lineCount"`
	ParseError docerr.Kind  `json:"parseError,omitempty" yaml:"parseError,omitempty"`
}

// failed builds an otherwise-empty extraction carrying a per-file error.
func failed(path string, lang Language, kind docerr.Kind) FileExtraction {
	return FileExtraction{
		Path:       path,
		Language:   lang,
		Symbols:    []Symbol{},
		Imports:    []ImportEdge{},
		ParseError: kind,
	}
}

// Definitions groups one file's symbols for the API reference. Order within
// each slice is source order.
type Definitions struct {
	Functions []Symbol `json:"functions" yaml:"functions"`
	Classes   []Symbol `json:"classes" yaml:"classes"`
}

// RelationshipModel is the consolidated, file-keyed view of a repository.
type RelationshipModel struct {
	Definitions     map[string]Definitions  `json:"definitions" yaml:"definitions"`
	Imports         map[string][]ImportEdge `json:"imports" yaml:"imports"`
	ExternalModules []string                `json:"externalModules" yaml:"externalModules"`
	Languages       map[string]Language     `json:"languages" yaml:"languages"`
	LineCounts      map[string]int          `json:"lineCounts" yaml:"lineCounts"`
	// Issues records per-file errors. DecodeFallback files keep their symbols;
	// every other kind means the file was not parsed.
	Issues map[string]docerr.Kind `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Files returns every file path known to the model, sorted.
func (m *RelationshipModel) Files() []string {
	seen := make(map[string]bool, len(m.Languages))
	for p := range m.Languages {
		seen[p] = true
	}
	for p := range m.Definitions {
		seen[p] = true
	}
	for p := range m.Issues {
		seen[p] = true
	}
	return sortedKeys(seen)
}

// ModelStats summarizes a relationship model.
type ModelStats struct {
	FileCount       int `json:"fileCount"`
	FunctionCount   int `json:"functionCount"`
	ClassCount      int `json:"classCount"`
	ImportCount     int `json:"importCount"`
	ExternalModules int `json:"externalModules"`
	IssueCount      int `json:"issueCount"`
}

// Stats counts the contents of the model.
func (m *RelationshipModel) Stats() ModelStats {
	s := ModelStats{
		FileCount:       len(m.Files()),
		ExternalModules: len(m.ExternalModules),
		IssueCount:      len(m.Issues),
	}
	for _, d := range m.Definitions {
		s.FunctionCount += len(d.Functions)
		s.ClassCount += len(d.Classes)
	}
	for _, imps := range m.Imports {
		s.ImportCount += len(imps)
	}
	return s
}
