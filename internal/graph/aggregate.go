package graph

import (
	"cmp"
	"maps"
	"slices"

	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Aggregate folds a finished extraction batch into a RelationshipModel,
// treating every derived module as external.
func Aggregate(exts []FileExtraction) *RelationshipModel {
	return AggregateWith(exts, nil)
}

// AggregateWith folds a finished extraction batch into a RelationshipModel.
// Modules the resolver reports as local are left out of ExternalModules. The
// result does not depend on the order of exts; within a file, symbols and
// imports keep extraction order. Paths are expected to be unique.
func AggregateWith(exts []FileExtraction, resolver *Resolver) *RelationshipModel {
	m := &RelationshipModel{
		Definitions: make(map[string]Definitions, len(exts)),
		Imports:     make(map[string][]ImportEdge, len(exts)),
		Languages:   make(map[string]Language, len(exts)),
		LineCounts:  make(map[string]int, len(exts)),
		Issues:      make(map[string]docerr.Kind),
	}
	modules := make(map[string]bool)

	for _, ext := range exts {
		m.Languages[ext.Path] = ext.Language
		if ext.ParseError != "" {
			m.Issues[ext.Path] = ext.ParseError
			if ext.ParseError != docerr.KindDecodeFallback {
				continue
			}
		}
		m.LineCounts[ext.Path] = ext.LineCount

		defs := Definitions{Functions: []Symbol{}, Classes: []Symbol{}}
		for _, sym := range ext.Symbols {
			if sym.Kind.Callable() {
				defs.Functions = append(defs.Functions, sym)
			} else {
				defs.Classes = append(defs.Classes, sym)
			}
		}
		m.Definitions[ext.Path] = defs

		imports := make([]ImportEdge, len(ext.Imports))
		copy(imports, ext.Imports)
		m.Imports[ext.Path] = imports

		for _, imp := range ext.Imports {
			name, ok := ModuleName(ext.Language, imp.Statement)
			if !ok || resolver.IsLocal(ext.Language, name) {
				continue
			}
			modules[name] = true
		}
	}

	m.ExternalModules = sortedKeys(modules)
	return m
}

// ModulesOf returns the external modules imported by one file, in import
// order without duplicates.
func (m *RelationshipModel) ModulesOf(path string) []string {
	external := make(map[string]bool, len(m.ExternalModules))
	for _, mod := range m.ExternalModules {
		external[mod] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, imp := range m.Imports[path] {
		name, ok := ModuleName(m.Languages[path], imp.Statement)
		if !ok || !external[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	if keys == nil {
		keys = []K{}
	}
	return keys
}
