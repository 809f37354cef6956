package graph

import (
	"bufio"
	"bytes"
	"context"
	"strings"
)

// LineExtractor is the line-oriented Python heuristic. It recognises
// declarations only by the introducer token at the start of a trimmed line;
// multi-line signatures are not joined and string or comment content that
// starts with a token is not filtered out.
type LineExtractor struct{}

// NewLineExtractor returns the shared line extractor.
func NewLineExtractor() *LineExtractor {
	return &LineExtractor{}
}

// Languages returns the single language the heuristic understands.
func (e *LineExtractor) Languages() []Language {
	return []Language{LangPython}
}

var (
	funcIntroducers   = []string{"def ", "async def "}
	classIntroducer   = "class "
	importIntroducers = []string{"import ", "from "}
)

// ParseFile scans content line by line with 1-based line numbers.
func (e *LineExtractor) ParseFile(ctx context.Context, path string, content []byte) (FileExtraction, error) {
	res := FileExtraction{
		Path:      path,
		Language:  LangPython,
		Symbols:   []Symbol{},
		Imports:   []ImportEdge{},
		LineCount: countLOC(content),
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return FileExtraction{}, err
			}
		}
		line := strings.TrimSpace(scanner.Text())

		if sig, ok := cutAnyPrefix(line, funcIntroducers); ok {
			name, params := splitDeclaration(sig)
			res.Symbols = append(res.Symbols, Symbol{
				Name:      name,
				Kind:      SymbolKindFunction,
				Line:      lineNo,
				Signature: sig,
				Params:    params,
			})
			continue
		}
		if sig, ok := strings.CutPrefix(line, classIntroducer); ok {
			name, bases := splitDeclaration(sig)
			res.Symbols = append(res.Symbols, Symbol{
				Name:      name,
				Kind:      SymbolKindClass,
				Line:      lineNo,
				Signature: sig,
				Bases:     bases,
			})
			continue
		}
		if _, ok := cutAnyPrefix(line, importIntroducers); ok {
			res.Imports = append(res.Imports, ImportEdge{Statement: line, Line: lineNo})
		}
	}
	if err := scanner.Err(); err != nil {
		return FileExtraction{}, err
	}
	return res, nil
}

// splitDeclaration splits the token-stripped text of a declaration line into
// its name and the delimited text that follows it. The delimited part runs
// from the first "(" through its matching ")", and is empty when the line
// has no "(" or the parentheses do not balance on that line.
func splitDeclaration(sig string) (name, delimited string) {
	open := strings.IndexByte(sig, '(')
	if open < 0 {
		name, _, _ = strings.Cut(sig, ":")
		return strings.TrimSpace(name), ""
	}
	name = strings.TrimSpace(sig[:open])
	depth := 0
	for i := open; i < len(sig); i++ {
		switch sig[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return name, sig[open : i+1]
			}
		}
	}
	return name, ""
}

func cutAnyPrefix(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return s, false
}
