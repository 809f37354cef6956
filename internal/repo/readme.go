package repo

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultSummaryChars bounds the README summary when the caller passes zero.
const DefaultSummaryChars = 1000

var readmeNames = []string{"README.md", "readme.md", "README.MD", "Readme.md", "README.rst", "README.txt", "README"}

// FindReadme returns the path of the first README in dir, or "".
func FindReadme(dir string) string {
	for _, name := range readmeNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ReadSummary returns the leading prose paragraphs of the repository README,
// up to maxChars. Headings, badges, HTML blocks and code are skipped. It
// returns "" when there is no readable README.
func ReadSummary(dir string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultSummaryChars
	}
	path := FindReadme(dir)
	if path == "" {
		return ""
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var paras []string
	if strings.EqualFold(filepath.Ext(path), ".md") {
		paras = markdownParagraphs(src)
	} else {
		paras = plainParagraphs(string(src))
	}
	return joinBounded(paras, maxChars)
}

// markdownParagraphs returns the raw text of top-level Markdown paragraphs.
func markdownParagraphs(src []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p, ok := n.(*ast.Paragraph)
		if !ok {
			continue
		}
		var lines []string
		segs := p.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			lines = append(lines, strings.TrimSpace(string(seg.Value(src))))
		}
		para := strings.Join(lines, " ")
		if isDecoration(para) {
			continue
		}
		out = append(out, para)
	}
	return out
}

// plainParagraphs splits text on blank lines, dropping reStructuredText
// heading underlines.
func plainParagraphs(s string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.Trim(line, "=-~^*#") == "" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) < 2 && len(out) == 0 && len(block) < 80 && !strings.Contains(block, ".") {
			// Title line.
			continue
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, " "))
		}
	}
	return out
}

// isDecoration reports paragraphs made only of badges or inline HTML.
func isDecoration(p string) bool {
	return strings.HasPrefix(p, "[![") || strings.HasPrefix(p, "![") || strings.HasPrefix(p, "<")
}

// joinBounded joins paragraphs with blank lines, stopping before maxChars is
// exceeded. The first paragraph is truncated at a word boundary if it alone
// is too long.
func joinBounded(paras []string, maxChars int) string {
	var b strings.Builder
	for _, p := range paras {
		sep := 0
		if b.Len() > 0 {
			sep = 2
		}
		if b.Len()+sep+len(p) > maxChars {
			if b.Len() == 0 {
				b.WriteString(truncateWords(p, maxChars))
			}
			break
		}
		if sep > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return b.String()
}

func truncateWords(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := strings.LastIndexByte(s[:max], ' ')
	if cut <= 0 {
		cut = max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return strings.TrimSpace(s[:cut]) + "..."
}
