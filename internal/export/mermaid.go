package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/repodoc/internal/graph"
)

// DependencyDiagram produces a Mermaid graph LR diagram of which files import
// which external modules. Files and modules are emitted in sorted order so the
// output is stable.
func DependencyDiagram(m *graph.RelationshipModel) string {
	// Mermaid node IDs must be alphanumeric.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	if len(m.ExternalModules) > 0 {
		sb.WriteString("  subgraph external[\"External modules\"]\n")
		for _, mod := range m.ExternalModules {
			sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", getID("module:"+mod), escapeLabel(mod)))
		}
		sb.WriteString("  end\n")
	}

	for _, path := range m.Files() {
		mods := m.ModulesOf(path)
		if len(mods) == 0 {
			continue
		}
		src := getID("file:" + path)
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", src, escapeLabel(shortPath(path))))
		for _, mod := range mods {
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, getID("module:"+mod)))
		}
	}

	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
