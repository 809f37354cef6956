// Package tree builds the ignore-aware directory model of a repository.
package tree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/docerr"
)

// Kind distinguishes files from directories.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// Node is one entry of the directory model. Children are sorted by name and
// only present on directories.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Kind     Kind    `json:"kind" yaml:"kind"`
	Path     string  `json:"path" yaml:"path"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool {
	return n != nil && n.Kind == KindDir
}

// Options control a single Build call.
type Options struct {
	// MaxDepth bounds recursion; directories below it are returned with no
	// children. Zero means config.DefaultMaxDepth.
	MaxDepth int
	// Policy decides which entries are skipped. Nil skips dot entries only.
	Policy *config.IgnorePolicy
	// Exclude lists absolute file paths left out of the model, typically the
	// documents a previous run wrote. A directory holding nothing but
	// excluded files is left out as well.
	Exclude []string
	Logger  *slog.Logger
}

// Build walks root and returns its directory model. Only a failure to stat the
// root is fatal; unreadable subdirectories are logged and left empty.
func Build(root string, opts Options) (*Node, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = config.DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, docerr.Wrap(err, docerr.KindTraversalFailed, "tree", root)
	}
	if !info.IsDir() {
		return nil, docerr.Wrap(fmt.Errorf("not a directory"), docerr.KindTraversalFailed, "tree", root)
	}

	b := builder{opts: opts, exclude: make(map[string]bool, len(opts.Exclude))}
	for _, p := range opts.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			b.exclude[abs] = true
		}
	}
	name := filepath.Base(filepath.Clean(root))
	node, _ := b.dir(root, name, 0)
	return node, nil
}

type builder struct {
	opts    Options
	exclude map[string]bool
}

// dir builds the node for path. generatedOnly reports that the directory had
// entries and every one of them was excluded.
func (b *builder) dir(path, name string, depth int) (node *Node, generatedOnly bool) {
	node = &Node{Name: name, Kind: KindDir, Path: path, Children: []*Node{}}
	if depth > b.opts.MaxDepth {
		return node, false
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		b.opts.Logger.Warn("cannot read directory", "path", path, "error", err)
		return node, false
	}
	// os.ReadDir already sorts by filename; keep the guarantee explicit.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	excluded := 0
	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(path, name)
		if b.exclude[childPath] {
			excluded++
			continue
		}
		isDir := entry.IsDir()
		symlinkDir := false
		if entry.Type()&os.ModeSymlink != 0 {
			if fi, err := os.Stat(childPath); err == nil && fi.IsDir() {
				isDir, symlinkDir = true, true
			}
		}
		if b.opts.Policy.Ignored(name, isDir) {
			continue
		}

		switch {
		case symlinkDir:
			// Linked directories are listed but never followed.
			node.Children = append(node.Children, &Node{Name: name, Kind: KindDir, Path: childPath, Children: []*Node{}})
		case isDir:
			child, generatedOnly := b.dir(childPath, name, depth+1)
			if generatedOnly {
				excluded++
				continue
			}
			node.Children = append(node.Children, child)
		default:
			node.Children = append(node.Children, &Node{Name: name, Kind: KindFile, Path: childPath})
		}
	}
	return node, excluded > 0 && len(node.Children) == 0
}

// Files returns the paths of every file node in depth-first order.
func Files(root *Node) []string {
	var out []string
	Walk(root, func(n *Node, _ int) {
		if n.Kind == KindFile {
			out = append(out, n.Path)
		}
	})
	return out
}

// Count returns the number of file and directory nodes, the root included.
func Count(root *Node) (files, dirs int) {
	Walk(root, func(n *Node, _ int) {
		if n.Kind == KindFile {
			files++
		} else {
			dirs++
		}
	})
	return files, dirs
}

// Walk visits n and its descendants depth-first in child order.
func Walk(n *Node, fn func(n *Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}
