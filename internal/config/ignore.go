package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnoreDirs are ecosystem and tooling directories never documented.
var DefaultIgnoreDirs = []string{
	".git", ".github", ".gitlab", "__pycache__", ".pytest_cache",
	"node_modules", ".venv", "venv", "env", ".env", "dist", "build",
	".egg-info", ".tox", ".idea", ".vscode", ".DS_Store", "vendor",
	".next", "out", ".nuxt", "coverage", ".nyc_output",
}

// DefaultIgnoreFiles are generated or machine-local files matched by exact name.
var DefaultIgnoreFiles = []string{
	".DS_Store", "thumbs.db", ".env", ".env.local", ".gitignore", ".gitattributes",
}

// DefaultIgnorePatterns are generated-artifact suffixes matched as globs
// against the base name of files.
var DefaultIgnorePatterns = []string{"*.pyc", "*.pyo", "*.pyd"}

// IgnorePolicy decides which directory entries are excluded from the tree and
// the extraction batch. It is immutable after construction and safe to share.
type IgnorePolicy struct {
	dirs     map[string]bool
	files    map[string]bool
	patterns []glob.Glob
}

// NewIgnorePolicy compiles a policy from exact directory names, exact file
// names and file glob patterns.
func NewIgnorePolicy(dirs, files, patterns []string) (*IgnorePolicy, error) {
	p := &IgnorePolicy{
		dirs:  make(map[string]bool, len(dirs)),
		files: make(map[string]bool, len(files)),
	}
	for _, d := range dirs {
		p.dirs[d] = true
	}
	for _, f := range files {
		p.files[f] = true
	}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, g)
	}
	return p, nil
}

// DefaultIgnorePolicy returns the built-in policy.
func DefaultIgnorePolicy() *IgnorePolicy {
	p, err := NewIgnorePolicy(DefaultIgnoreDirs, DefaultIgnoreFiles, DefaultIgnorePatterns)
	if err != nil {
		panic(err) // built-in patterns are constant
	}
	return p
}

// Ignored reports whether an entry with the given base name is excluded.
func (p *IgnorePolicy) Ignored(name string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if p == nil {
		return false
	}
	if isDir {
		return p.dirs[name]
	}
	if p.files[name] {
		return true
	}
	for _, g := range p.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
