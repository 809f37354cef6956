package graph

import (
	"regexp"
	"strings"
)

// moduleNameRe accepts dotted, slashed or scoped package names. Anything else
// (prose caught by the line heuristic, template placeholders) is not treated
// as a dependency.
var moduleNameRe = regexp.MustCompile(`^@?[A-Za-z_][\w.\-/:@]*$`)

// ModuleName derives the imported module from a verbatim import statement.
// It returns ok=false for relative imports and for statements that do not
// name a module.
func ModuleName(lang Language, statement string) (name string, ok bool) {
	switch lang {
	case LangGo:
		name = lastQuoted(statement)
	case LangTypeScript, LangJavaScript:
		name = lastQuoted(statement)
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") {
			return "", false
		}
	case LangRust:
		name = rustModule(statement)
	default:
		name = pythonModule(statement)
		if strings.HasPrefix(name, ".") {
			return "", false
		}
	}
	if name == "" || !moduleNameRe.MatchString(name) {
		return "", false
	}
	return name, true
}

// pythonModule handles "from X import Y" and "import X[, ...] [as A]".
func pythonModule(stmt string) string {
	stmt = stripTrailingComment(stmt, "#")
	if rest, ok := strings.CutPrefix(stmt, "from "); ok {
		module, _, found := strings.Cut(rest, " import")
		if !found {
			return ""
		}
		return strings.TrimSpace(module)
	}
	if rest, ok := strings.CutPrefix(stmt, "import "); ok {
		first, _, _ := strings.Cut(rest, ",")
		first, _, _ = strings.Cut(first, " as ")
		return strings.TrimSpace(first)
	}
	return ""
}

// rustModule returns the crate named by a use or extern crate declaration.
// Paths rooted at crate, self or super are local.
func rustModule(stmt string) string {
	stmt = strings.TrimSuffix(strings.TrimSpace(stmt), ";")
	if rest, ok := strings.CutPrefix(stmt, "extern crate "); ok {
		name, _, _ := strings.Cut(rest, " as ")
		return strings.TrimSpace(name)
	}
	if i := strings.Index(stmt, "use "); i >= 0 {
		stmt = stmt[i+len("use "):]
	} else {
		return ""
	}
	stmt = strings.TrimPrefix(strings.TrimSpace(stmt), "::")
	root, _, _ := strings.Cut(stmt, "::")
	root = strings.TrimSpace(root)
	switch root {
	case "crate", "self", "super", "Self":
		return ""
	}
	if strings.ContainsAny(root, "{}* ") {
		return ""
	}
	return root
}

// lastQuoted returns the content of the last quoted string in s.
func lastQuoted(s string) string {
	end := strings.LastIndexAny(s, "\"'`")
	if end <= 0 {
		return ""
	}
	quote := s[end]
	start := strings.LastIndexByte(s[:end], quote)
	if start < 0 {
		return ""
	}
	return s[start+1 : end]
}

func stripTrailingComment(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	return strings.TrimSpace(s)
}
