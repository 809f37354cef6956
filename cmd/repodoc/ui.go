package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/repodoc/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Width(18)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1)
)

// renderSummary formats the outcome of a run as a bordered panel.
func renderSummary(res *pipeline.Result) string {
	stats := res.Model.Stats()

	rows := [][2]string{
		{"Repository", res.RepoName},
		{"Source files", fmt.Sprintf("%d", res.SourceFiles)},
		{"Functions", fmt.Sprintf("%d", stats.FunctionCount)},
		{"Classes", fmt.Sprintf("%d", stats.ClassCount)},
		{"External modules", fmt.Sprintf("%d", stats.ExternalModules)},
		{"Output", res.OutputPath},
	}
	if res.ExportPath != "" {
		rows = append(rows, [2]string{"Export", res.ExportPath})
	}
	rows = append(rows, [2]string{"Duration", res.Duration.Round(time.Millisecond).String()})

	var b strings.Builder
	b.WriteString(titleStyle.Render("Documentation generated"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	if stats.IssueCount > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d files could not be fully parsed", stats.IssueCount)))
	}
	return boxStyle.Render(b.String())
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintln(w, renderSummary(res))
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}
