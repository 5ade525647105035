// Package tree holds the lazily loaded directory tree and its flat,
// expansion-aware index used for display and navigation.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LFroesch/canopy/internal/logger"
)

// ErrNotFound is returned for an index or path that is not in the flat index.
var ErrNotFound = errors.New("no such entry in tree")

// readDir is swapped out in tests to simulate unreadable directories.
var readDir = os.ReadDir

// Node is one filesystem entry. A directory owns its children; there are no
// parent links, parents are recomputed from Path.
type Node struct {
	Path      string
	Name      string
	IsDir     bool
	IsSymlink bool
	Expanded  bool
	Depth     int
	Children  []*Node

	loaded bool
}

// Loaded reports whether the children of a directory have been read.
func (n *Node) Loaded() bool { return n.loaded }

// Tree is the root node plus the flat index derived from it. The flat
// index is rebuilt after every structural change; indices from before a
// change must be re-resolved by path.
type Tree struct {
	root       *Node
	flat       []*Node
	showHidden bool
	loadErrs   []error
}

// New loads the root directory's children and returns a tree with the root
// expanded. It fails if root cannot be listed.
func New(root string, showHidden bool) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", abs)
	}

	t := &Tree{showHidden: showHidden}
	rootNode := newRoot(abs)
	if err := t.load(rootNode); err != nil {
		return nil, err
	}
	rootNode.Expanded = true
	t.root = rootNode
	t.rebuild()
	return t, nil
}

func newRoot(path string) *Node {
	return &Node{Path: path, Name: filepath.Base(path), IsDir: true}
}

// load reads n's children, replacing any previous ones. On error n is left
// untouched.
func (t *Tree) load(n *Node) error {
	entries, err := readDir(n.Path)
	if err != nil {
		return err
	}

	children := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !t.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(n.Path, name)
		isSymlink := entry.Type()&fs.ModeSymlink != 0
		isDir := entry.IsDir()
		if isSymlink {
			// Follow the link for its kind; broken links are plain entries.
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}
		children = append(children, &Node{
			Path:      path,
			Name:      name,
			IsDir:     isDir,
			IsSymlink: isSymlink,
			Depth:     n.Depth + 1,
		})
	}
	sortChildren(children)

	n.Children = children
	n.loaded = true
	return nil
}

// sortChildren orders directories first, then by byte order of the name.
func sortChildren(children []*Node) {
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].IsDir != children[j].IsDir {
			return children[i].IsDir
		}
		return children[i].Name < children[j].Name
	})
}

func (t *Tree) rebuild() {
	flat := make([]*Node, 0, len(t.flat))
	var walk func(n *Node)
	walk = func(n *Node) {
		flat = append(flat, n)
		if !n.Expanded {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	t.flat = flat
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the length of the flat index.
func (t *Tree) Len() int { return len(t.flat) }

// Nodes returns the flat index. Callers must not modify it.
func (t *Tree) Nodes() []*Node { return t.flat }

// ShowHidden reports whether dotfiles are listed.
func (t *Tree) ShowHidden() bool { return t.showHidden }

// LoadErrors returns the directories that could not be read during the
// last Refresh or ExpandAll.
func (t *Tree) LoadErrors() []error { return t.loadErrs }

// Lookup returns the node at flat index i.
func (t *Tree) Lookup(i int) (*Node, bool) {
	if i < 0 || i >= len(t.flat) {
		return nil, false
	}
	return t.flat[i], true
}

// FindIndexByPath returns the flat index of path.
func (t *Tree) FindIndexByPath(path string) (int, bool) {
	for i, n := range t.flat {
		if n.Path == path {
			return i, true
		}
	}
	return 0, false
}

// Expand loads (if needed) and expands the directory at i. A read failure
// leaves the node collapsed.
func (t *Tree) Expand(i int) error {
	n, ok := t.Lookup(i)
	if !ok {
		return ErrNotFound
	}
	if !n.IsDir || n.Expanded {
		return nil
	}
	if !n.loaded {
		if err := t.load(n); err != nil {
			return err
		}
	}
	n.Expanded = true
	t.rebuild()
	return nil
}

// Collapse hides the children of the directory at i. Children stay loaded.
func (t *Tree) Collapse(i int) error {
	n, ok := t.Lookup(i)
	if !ok {
		return ErrNotFound
	}
	if !n.IsDir || !n.Expanded {
		return nil
	}
	n.Expanded = false
	t.rebuild()
	return nil
}

// CollapseAll collapses every directory except the root.
func (t *Tree) CollapseAll() {
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			c.Expanded = false
			walk(c)
		}
	}
	walk(t.root)
	t.rebuild()
}

// ExpandAll expands every directory, loading as it goes. Unreadable
// directories stay collapsed and are reported by LoadErrors. A directory
// reached twice through symlinks is expanded only once.
func (t *Tree) ExpandAll() {
	t.loadErrs = nil
	visited := make(map[string]bool)

	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsDir {
			return
		}
		real, err := filepath.EvalSymlinks(n.Path)
		if err != nil {
			real = n.Path
		}
		if visited[real] {
			return
		}
		visited[real] = true

		if !n.loaded {
			if err := t.load(n); err != nil {
				logger.Warn("Failed to read %s: %v", n.Path, err)
				t.loadErrs = append(t.loadErrs, err)
				return
			}
		}
		n.Expanded = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	t.rebuild()
}

// Refresh re-reads the tree from disk. Directories that were expanded and
// are still directories are expanded again; everything else starts
// collapsed. If the root cannot be read the old tree is kept.
func (t *Tree) Refresh() error {
	expanded := make(map[string]bool)
	var collect func(n *Node)
	collect = func(n *Node) {
		if n.Expanded {
			expanded[n.Path] = true
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(t.root)

	root := newRoot(t.root.Path)
	if err := t.load(root); err != nil {
		return err
	}
	root.Expanded = true

	t.loadErrs = nil
	t.reexpand(root, expanded)
	t.root = root
	t.rebuild()
	return nil
}

// reexpand restores expansion below n. A collapsed directory is still
// loaded when a remembered expansion lies beneath it, so expanding it later
// shows its subtree as it was.
func (t *Tree) reexpand(n *Node, expanded map[string]bool) {
	for _, c := range n.Children {
		if !c.IsDir {
			continue
		}
		open := expanded[c.Path]
		if !open && !hasExpandedBelow(c.Path, expanded) {
			continue
		}
		if err := t.load(c); err != nil {
			logger.Warn("Failed to read %s: %v", c.Path, err)
			t.loadErrs = append(t.loadErrs, err)
			continue
		}
		c.Expanded = open
		t.reexpand(c, expanded)
	}
}

func hasExpandedBelow(dir string, expanded map[string]bool) bool {
	prefix := dir + string(filepath.Separator)
	for p := range expanded {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// SetShowHidden changes the dotfile filter and refreshes. On failure the
// previous filter is restored.
func (t *Tree) SetShowHidden(show bool) error {
	prev := t.showHidden
	t.showHidden = show
	if err := t.Refresh(); err != nil {
		t.showHidden = prev
		return err
	}
	return nil
}

// Reveal expands every ancestor of path below the root so that path is in
// the flat index, and returns its index.
func (t *Tree) Reveal(path string) (int, bool) {
	rel, err := filepath.Rel(t.root.Path, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, false
	}
	if rel == "." {
		return 0, true
	}

	parts := strings.Split(rel, string(filepath.Separator))
	cur := t.root
	changed := false
	for _, name := range parts[:len(parts)-1] {
		next := childNamed(cur, name)
		if next == nil || !next.IsDir {
			break
		}
		if !next.loaded {
			if err := t.load(next); err != nil {
				logger.Warn("Failed to read %s: %v", next.Path, err)
				break
			}
		}
		if !next.Expanded {
			next.Expanded = true
			changed = true
		}
		cur = next
	}
	if changed {
		t.rebuild()
	}
	return t.FindIndexByPath(path)
}

func childNamed(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
