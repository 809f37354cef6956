package graph

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Resolver decides whether a derived module name refers to code inside the
// scanned repository. Local modules are kept out of ExternalModules. It is
// built once per run from the known file paths and any workspace metadata
// (go.mod, package.json, Cargo.toml) found at the repository root.
type Resolver struct {
	repoRoot   string
	goModPath  string
	tsPackages map[string]bool
	rustCrates map[string]bool
	pyRoots    map[string]bool
}

// NewResolver builds a Resolver from the repository root and the set of
// known repo-relative file paths.
func NewResolver(repoRoot string, knownFiles []string) *Resolver {
	r := &Resolver{
		repoRoot:   repoRoot,
		tsPackages: make(map[string]bool),
		rustCrates: make(map[string]bool),
		pyRoots:    make(map[string]bool),
	}

	for _, f := range knownFiles {
		r.addPythonRoot(filepath.ToSlash(f))
	}

	r.scanGoMod()
	r.scanPackageJSON()
	r.scanCargo()

	return r
}

// IsLocal reports whether module belongs to the repository. A nil Resolver
// treats every module as external.
func (r *Resolver) IsLocal(lang Language, module string) bool {
	if r == nil || module == "" {
		return false
	}
	switch lang {
	case LangGo:
		return r.goModPath != "" &&
			(module == r.goModPath || strings.HasPrefix(module, r.goModPath+"/"))
	case LangTypeScript, LangJavaScript:
		return r.tsPackages[tsPackageName(module)]
	case LangRust:
		return r.rustCrates[module]
	case LangPython:
		root, _, _ := strings.Cut(module, ".")
		return r.pyRoots[root]
	}
	return false
}

// --- Python ---

// addPythonRoot records the importable top-level name of a Python file:
// its first path component, or the component after a leading src/.
func (r *Resolver) addPythonRoot(path string) {
	if !strings.HasSuffix(path, ".py") {
		return
	}
	parts := strings.Split(path, "/")
	if parts[0] == "src" && len(parts) > 1 {
		parts = parts[1:]
	}
	root := strings.TrimSuffix(parts[0], ".py")
	if root == "" || root == "__init__" || root == "setup" {
		return
	}
	r.pyRoots[root] = true
}

// --- TypeScript / JavaScript ---

// tsPackageName strips a subpath from an import specifier:
// "@scope/pkg/sub" → "@scope/pkg", "pkg/sub" → "pkg".
func tsPackageName(spec string) string {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// packageJSON is a minimal representation for reading package.json files.
type packageJSON struct {
	Name       string          `json:"name"`
	Workspaces json.RawMessage `json:"workspaces"`
}

func readPackageJSON(path string) (packageJSON, bool) {
	var pkg packageJSON
	data, err := os.ReadFile(path)
	if err != nil {
		return pkg, false
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return pkg, false
	}
	return pkg, true
}

func (r *Resolver) scanPackageJSON() {
	root, ok := readPackageJSON(filepath.Join(r.repoRoot, "package.json"))
	if !ok {
		return
	}
	if root.Name != "" {
		r.tsPackages[root.Name] = true
	}

	for _, pattern := range parseWorkspacePatterns(root.Workspaces) {
		matches, err := filepath.Glob(filepath.Join(r.repoRoot, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			pkg, ok := readPackageJSON(filepath.Join(dir, "package.json"))
			if ok && pkg.Name != "" {
				r.tsPackages[pkg.Name] = true
			}
		}
	}
}

func parseWorkspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	// Array of globs: ["packages/*", "apps/*"]
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	// Object with "packages" key: {"packages": ["packages/*"]}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}

	return nil
}

// --- Go ---

func (r *Resolver) scanGoMod() {
	f, err := os.Open(filepath.Join(r.repoRoot, "go.mod"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			r.goModPath = strings.Trim(strings.TrimSpace(rest), `"`)
			return
		}
	}
}

// --- Rust ---

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		Name string `toml:"name"`
	} `toml:"lib"`
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

func (r *Resolver) scanCargo() {
	root, ok := r.loadCargo(r.repoRoot)
	if !ok {
		return
	}
	for _, pattern := range root.Workspace.Members {
		matches, err := filepath.Glob(filepath.Join(r.repoRoot, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			r.loadCargo(dir)
		}
	}
}

// loadCargo reads dir/Cargo.toml and records its crate names. Crate names use
// underscores in paths even when the package name has dashes.
func (r *Resolver) loadCargo(dir string) (cargoManifest, bool) {
	var m cargoManifest
	if _, err := toml.DecodeFile(filepath.Join(dir, "Cargo.toml"), &m); err != nil {
		return m, false
	}
	for _, name := range []string{m.Package.Name, m.Lib.Name} {
		if name != "" {
			r.rustCrates[strings.ReplaceAll(name, "-", "_")] = true
		}
	}
	return m, true
}
