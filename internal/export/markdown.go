// Package export assembles the Markdown documentation for a repository,
// writes it to disk and produces the machine-readable companion bundle.
package export

import (
	"strconv"
	"strings"
)

// Markdown accumulates rendering-ready blocks. Each block ends with the
// spacing it needs, so blocks can be appended in any order.
type Markdown struct {
	b strings.Builder
}

// Heading appends "#"*level followed by text.
func (m *Markdown) Heading(level int, text string) {
	m.b.WriteString(strings.Repeat("#", level))
	m.b.WriteByte(' ')
	m.b.WriteString(text)
	m.b.WriteByte('\n')
}

// Paragraph appends text followed by a blank line.
func (m *Markdown) Paragraph(text string) {
	m.b.WriteString(text)
	m.b.WriteString("\n\n")
}

// List appends one item per line, then a blank line.
func (m *Markdown) List(items []string, ordered bool) {
	for i, item := range items {
		if ordered {
			m.b.WriteString(strconv.Itoa(i + 1))
			m.b.WriteString(". ")
		} else {
			m.b.WriteString("- ")
		}
		m.b.WriteString(item)
		m.b.WriteByte('\n')
	}
	m.b.WriteByte('\n')
}

// Table appends a pipe table. Pipes inside cells are escaped.
func (m *Markdown) Table(headers []string, rows [][]string) {
	m.b.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = " --- "
	}
	m.b.WriteString("|" + strings.Join(seps, "|") + "|\n")
	for _, row := range rows {
		m.b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	m.b.WriteByte('\n')
}

// CodeBlock appends a fenced block tagged with lang.
func (m *Markdown) CodeBlock(lang, code string) {
	m.b.WriteString("```" + lang + "\n")
	m.b.WriteString(strings.TrimRight(code, "\n"))
	m.b.WriteString("\n```\n\n")
}

// Rule appends a horizontal rule.
func (m *Markdown) Rule() {
	m.b.WriteString("---\n")
}

// Line appends text verbatim followed by a newline.
func (m *Markdown) Line(text string) {
	m.b.WriteString(text)
	m.b.WriteByte('\n')
}

// Blank appends an empty line.
func (m *Markdown) Blank() {
	m.b.WriteByte('\n')
}

// String returns the accumulated document.
func (m *Markdown) String() string {
	return m.b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}
