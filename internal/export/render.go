package export

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/tree"
)

const (
	// MaxTreeLines caps the Project Structure rendering.
	MaxTreeLines = 50

	// TimestampLayout formats the generation timestamp.
	TimestampLayout = "2006-01-02 15:04:05"

	// Footer is the fixed generated-by notice.
	Footer = "*Documentation generated automatically by repodoc*"

	noDependencies = "*No external dependencies detected*"
	dirMarker      = "📁"
	fileMarker     = "📄"
	branchPrefix   = "│   "
	lastPrefix     = "    "
)

// RenderInput carries everything the document is built from. GeneratedAt is
// supplied by the caller so rendering stays a pure function of its input.
type RenderInput struct {
	RepoName    string
	Summary     string
	Metadata    *repo.Metadata
	Tree        *tree.Node
	Model       *graph.RelationshipModel
	GeneratedAt time.Time
	Diagram     bool
}

// Render assembles the document. Sections are emitted in a fixed order:
// overview, project structure, dependencies, API reference, footer.
func Render(in RenderInput) string {
	model := in.Model
	if model == nil {
		model = graph.Aggregate(nil)
	}

	var doc strings.Builder
	doc.WriteString(renderOverview(in))
	doc.WriteString("\n")
	doc.WriteString(renderStructure(in.Tree))
	doc.WriteString("\n")
	doc.WriteString(renderDependencies(model, in.Diagram))
	doc.WriteString("\n")
	doc.WriteString(renderAPIReference(model))
	doc.WriteString("\n")

	var footer Markdown
	footer.Rule()
	footer.Line(Footer)
	doc.WriteString(footer.String())
	return doc.String()
}

func renderOverview(in RenderInput) string {
	var md Markdown
	md.Heading(1, in.RepoName)
	md.Paragraph("**Generated on:** " + in.GeneratedAt.Format(TimestampLayout))

	if rows := metadataRows(in.Metadata); len(rows) > 0 {
		md.Table([]string{"Field", "Value"}, rows)
	}

	if summary := strings.TrimSpace(in.Summary); summary != "" {
		md.Heading(2, "Overview")
		md.Paragraph(summary)
	}
	return md.String()
}

// metadataRows lists only the fields that are present.
func metadataRows(m *repo.Metadata) [][]string {
	if m.Empty() {
		return nil
	}
	var rows [][]string
	add := func(field, value string) {
		if value != "" {
			rows = append(rows, []string{field, value})
		}
	}
	add("Repository", m.RemoteURL)
	if m.Commit.Hash != "" {
		add("Commit", "`"+shortHash(m.Commit.Hash)+"`")
	}
	author := m.Commit.Author
	if m.Commit.Email != "" {
		author = strings.TrimSpace(author + " <" + m.Commit.Email + ">")
	}
	add("Author", author)
	add("Date", m.Commit.Date)
	add("Message", m.Commit.Message)
	return rows
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func renderStructure(root *tree.Node) string {
	var md Markdown
	md.Heading(2, "Project Structure")

	lines := TreeLines(root)
	shown := lines
	if len(shown) > MaxTreeLines {
		shown = shown[:MaxTreeLines]
	}
	for _, l := range shown {
		md.Line(l)
	}

	if len(lines) > MaxTreeLines {
		md.Blank()
		md.Line(fmt.Sprintf("... and %d more items", len(lines)-MaxTreeLines))
		md.Blank()
	} else {
		md.Blank()
	}
	return md.String()
}

// TreeLines renders root depth-first, one line per node. Each child's
// prefix extends its parent's with a vertical bar, or with spaces for the
// last child.
func TreeLines(root *tree.Node) []string {
	if root == nil {
		return nil
	}
	var lines []string
	var walk func(n *tree.Node, prefix string)
	walk = func(n *tree.Node, prefix string) {
		if !n.IsDir() {
			lines = append(lines, prefix+fileMarker+" `"+n.Name+"`")
			return
		}
		lines = append(lines, prefix+dirMarker+" "+n.Name+"/")
		for i, child := range n.Children {
			next := prefix + branchPrefix
			if i == len(n.Children)-1 {
				next = prefix + lastPrefix
			}
			walk(child, next)
		}
	}
	walk(root, "")
	return lines
}

func renderDependencies(m *graph.RelationshipModel, diagram bool) string {
	var md Markdown
	md.Heading(2, "Dependencies")

	if len(m.ExternalModules) == 0 {
		md.Paragraph(noDependencies)
		return md.String()
	}
	md.List(m.ExternalModules, false)

	if diagram {
		md.CodeBlock("mermaid", DependencyDiagram(m))
	}
	return md.String()
}

func renderAPIReference(m *graph.RelationshipModel) string {
	var md Markdown
	md.Heading(2, "API Reference")

	for _, p := range m.Files() {
		md.Heading(3, path.Base(p))

		issue := m.Issues[p]
		if issue != "" && issue != docerr.KindDecodeFallback {
			md.Paragraph("*Not parsed: " + issue.Describe() + "*")
			continue
		}
		if issue == docerr.KindDecodeFallback {
			md.Paragraph("*Note: " + issue.Describe() + "*")
		}

		defs := m.Definitions[p]
		if len(defs.Classes) > 0 {
			md.Heading(4, "Classes")
			for _, cls := range defs.Classes {
				md.Paragraph(fmt.Sprintf("**`%s`** (%s)", cls.Name, lineLabel(cls, graph.SymbolKindClass)))
				if cls.Bases != "" {
					md.Paragraph("*Bases:* " + cls.Bases)
				}
			}
		}
		if len(defs.Functions) > 0 {
			md.Heading(4, "Functions")
			for _, fn := range defs.Functions {
				md.Paragraph(fmt.Sprintf("**`%s%s`** (%s)", fn.Name, fn.Params, lineLabel(fn, graph.SymbolKindFunction)))
			}
		}
	}
	return md.String()
}

// lineLabel returns "Line n", prefixed with the symbol kind when it differs
// from the section's default kind.
func lineLabel(s graph.Symbol, sectionKind graph.SymbolKind) string {
	if s.Kind == sectionKind || s.Kind == "" {
		return fmt.Sprintf("Line %d", s.Line)
	}
	return fmt.Sprintf("%s, Line %d", s.Kind, s.Line)
}
