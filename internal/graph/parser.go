package graph

import (
	"bytes"
	"context"
	"sort"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Extractor turns one file's content into a FileExtraction.
// Implementations: LineExtractor (default for Python), TreeSitterExtractor.
// Implementations hold no per-call state and are shared across workers.
type Extractor interface {
	// ParseFile extracts symbols and imports from content. path is recorded
	// verbatim on the result.
	ParseFile(ctx context.Context, path string, content []byte) (FileExtraction, error)

	// Languages returns the languages this extractor handles.
	Languages() []Language
}

// Registry selects an Extractor per language, with an optional fallback used
// when the primary extractor returns an error.
type Registry struct {
	primary  map[Language]Extractor
	fallback map[Language]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		primary:  make(map[Language]Extractor),
		fallback: make(map[Language]Extractor),
	}
}

// DefaultRegistry wires the line heuristic for Python and tree-sitter for the
// languages that have no line heuristic. With grammarPython set, Python is
// parsed by tree-sitter and the line heuristic becomes its fallback.
func DefaultRegistry(grammarPython bool) *Registry {
	r := NewRegistry()
	line := NewLineExtractor()
	ts := NewTreeSitterExtractor()

	for _, lang := range ts.Languages() {
		r.Register(lang, ts)
	}
	if grammarPython {
		r.Register(LangPython, ts)
		r.RegisterFallback(LangPython, line)
	} else {
		r.Register(LangPython, line)
	}
	return r
}

// Register sets the primary extractor for lang.
func (r *Registry) Register(lang Language, ext Extractor) {
	r.primary[lang] = ext
}

// RegisterFallback sets the extractor used when the primary one fails.
func (r *Registry) RegisterFallback(lang Language, ext Extractor) {
	r.fallback[lang] = ext
}

// Supports reports whether lang has a registered extractor.
func (r *Registry) Supports(lang Language) bool {
	_, ok := r.primary[lang]
	return ok
}

// Languages lists the languages with a primary extractor, sorted.
func (r *Registry) Languages() []Language {
	out := make([]Language, 0, len(r.primary))
	for l := range r.primary {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract runs the extractor registered for lang. It never fails the caller:
// unsupported languages and extractor errors are recorded as the
// extraction's ParseError.
func (r *Registry) Extract(ctx context.Context, path string, content []byte, lang Language) FileExtraction {
	ext, ok := r.primary[lang]
	if !ok {
		return failed(path, lang, docerr.KindUnsupportedLanguage)
	}

	res, err := ext.ParseFile(ctx, path, content)
	if err != nil {
		fb, ok := r.fallback[lang]
		if !ok {
			return failed(path, lang, docerr.KindParseFailed)
		}
		if res, err = fb.ParseFile(ctx, path, content); err != nil {
			return failed(path, lang, docerr.KindParseFailed)
		}
	}
	res.Language = lang
	return res
}

// countLOC counts the lines in source. A final line without a trailing
// newline still counts.
func countLOC(source []byte) int {
	n := bytes.Count(source, []byte{'\n'})
	if len(source) > 0 && source[len(source)-1] != '\n' {
		n++
	}
	return n
}
