package tree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeTree creates files and directories under a temp root. Entries ending
// in "/" are directories.
func makeTree(t *testing.T, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(e))
		if e[len(e)-1] == '/' {
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(e), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func names(tr *Tree) []string {
	var out []string
	for _, n := range tr.Nodes()[1:] {
		rel, _ := filepath.Rel(tr.Root().Path, n.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// visibleCount counts nodes whose ancestors are all expanded, plus the root.
func visibleCount(n *Node) int {
	count := 1
	if n.Expanded {
		for _, c := range n.Children {
			count += visibleCount(c)
		}
	}
	return count
}

func TestNewOrdersDirectoriesFirst(t *testing.T) {
	root := makeTree(t, "b.txt", "a.txt", "sub/")

	tr, err := New(root, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []string{"sub", "a.txt", "b.txt"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat order = %v, want %v", got, want)
	}
	if n, _ := tr.Lookup(0); n.Path != tr.Root().Path || !n.Expanded {
		t.Error("index 0 must be the expanded root")
	}
}

func TestNewByteOrder(t *testing.T) {
	root := makeTree(t, "b", "B", "a", "_x", "Zdir/", "adir/")

	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Zdir", "adir", "B", "_x", "a", "b"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat order = %v, want %v", got, want)
	}
}

func TestNewFailures(t *testing.T) {
	root := makeTree(t, "file.txt")

	if _, err := New(filepath.Join(root, "missing"), false); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := New(filepath.Join(root, "file.txt"), false); err == nil {
		t.Error("expected error for file root")
	}
}

func TestExpandCollapse(t *testing.T) {
	root := makeTree(t, "sub/inner.txt", "sub/deeper/x", "top.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Expand(1); err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"sub", "sub/deeper", "sub/inner.txt", "top.txt"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("after expand = %v, want %v", got, want)
	}
	if n, _ := tr.Lookup(2); n.Depth != 2 {
		t.Errorf("depth = %d, want 2", n.Depth)
	}

	if err := tr.Collapse(1); err != nil {
		t.Fatal(err)
	}
	if got := names(tr); !equal(got, []string{"sub", "top.txt"}) {
		t.Errorf("after collapse = %v", got)
	}
	sub, _ := tr.Lookup(1)
	if !sub.Loaded() || len(sub.Children) != 2 {
		t.Error("collapse must retain loaded children")
	}

	// Expanding a file or an out-of-range index
	if err := tr.Expand(2); err != nil {
		t.Errorf("expand on file should be a no-op, got %v", err)
	}
	if err := tr.Expand(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpandFailureLeavesCollapsed(t *testing.T) {
	root := makeTree(t, "locked/secret", "open/x")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	orig := readDir
	defer func() { readDir = orig }()
	readDir = func(name string) ([]os.DirEntry, error) {
		if filepath.Base(name) == "locked" {
			return nil, os.ErrPermission
		}
		return orig(name)
	}

	idx, _ := tr.FindIndexByPath(filepath.Join(root, "locked"))
	if err := tr.Expand(idx); err == nil {
		t.Fatal("expected read error")
	}
	n, _ := tr.Lookup(idx)
	if n.Expanded || n.Loaded() {
		t.Error("failed expand must leave node collapsed and unloaded")
	}
	if tr.Len() != 3 {
		t.Errorf("Len = %d, want 3", tr.Len())
	}
}

func TestFlatIndexConsistency(t *testing.T) {
	root := makeTree(t, "a/b/c/d.txt", "a/e.txt", "f/g/h.txt", "f/i/", "j.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	ops := []struct {
		path   string
		expand bool
	}{
		{"a", true}, {"a/b", true}, {"f", true}, {"a", false},
		{"f/g", true}, {"a", true}, {"a/b/c", true}, {"f", false},
		{"f", true}, {"a/b", false},
	}
	for _, op := range ops {
		idx, ok := tr.FindIndexByPath(filepath.Join(root, filepath.FromSlash(op.path)))
		if !ok {
			continue
		}
		if op.expand {
			tr.Expand(idx)
		} else {
			tr.Collapse(idx)
		}
		if got, want := tr.Len(), visibleCount(tr.Root()); got != want {
			t.Fatalf("after %+v: Len = %d, want %d", op, got, want)
		}
	}

	tr.ExpandAll()
	if got, want := tr.Len(), visibleCount(tr.Root()); got != want || got != 11 {
		t.Errorf("after ExpandAll: Len = %d, visible = %d, want 11", got, want)
	}
	tr.CollapseAll()
	if tr.Len() != 4 {
		t.Errorf("after CollapseAll: Len = %d, want 4", tr.Len())
	}
	if !tr.Root().Expanded {
		t.Error("CollapseAll must keep the root expanded")
	}
}

func TestExpandAllBestEffort(t *testing.T) {
	root := makeTree(t, "bad/x", "good/y", "good/deep/z")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	orig := readDir
	defer func() { readDir = orig }()
	readDir = func(name string) ([]os.DirEntry, error) {
		if filepath.Base(name) == "bad" {
			return nil, os.ErrPermission
		}
		return orig(name)
	}

	tr.ExpandAll()
	want := []string{"bad", "good", "good/deep", "good/deep/z", "good/y"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat = %v, want %v", got, want)
	}
	if len(tr.LoadErrors()) != 1 {
		t.Errorf("LoadErrors = %v, want one", tr.LoadErrors())
	}
}

func TestExpandAllSymlinkLoop(t *testing.T) {
	root := makeTree(t, "loop/file")
	if err := os.Symlink(filepath.Join(root, "loop"), filepath.Join(root, "loop", "self")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	tr.ExpandAll()
	want := []string{"loop", "loop/self", "loop/file"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat = %v, want %v", got, want)
	}
	n, _ := tr.Lookup(2)
	if !n.IsSymlink || !n.IsDir {
		t.Error("symlink to directory should be a directory symlink node")
	}
}

func TestRefreshPreservesExpansion(t *testing.T) {
	root := makeTree(t, "keep/inner/leaf", "gone/x", "other.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"keep", "keep/inner", "gone"} {
		idx, _ := tr.FindIndexByPath(filepath.Join(root, filepath.FromSlash(p)))
		tr.Expand(idx)
	}

	os.RemoveAll(filepath.Join(root, "gone"))
	os.WriteFile(filepath.Join(root, "keep", "new.txt"), nil, 0644)

	if err := tr.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	want := []string{"keep", "keep/inner", "keep/inner/leaf", "keep/new.txt", "other.txt"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat = %v, want %v", got, want)
	}

	// Recreating the deleted directory does not restore its expansion
	os.MkdirAll(filepath.Join(root, "gone", "x"), 0755)
	tr.Refresh()
	idx, ok := tr.FindIndexByPath(filepath.Join(root, "gone"))
	if !ok {
		t.Fatal("gone/ not found after refresh")
	}
	if n, _ := tr.Lookup(idx); n.Expanded {
		t.Error("re-created directory should start collapsed")
	}
}

func TestRefreshKeepsExpansionUnderCollapsedParent(t *testing.T) {
	root := makeTree(t, "sub/inner/leaf", "sub/file.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "sub")
	for _, p := range []string{sub, filepath.Join(sub, "inner")} {
		idx, _ := tr.FindIndexByPath(p)
		tr.Expand(idx)
	}
	idx, _ := tr.FindIndexByPath(sub)
	tr.Collapse(idx)

	if err := tr.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := names(tr); !equal(got, []string{"sub"}) {
		t.Fatalf("flat = %v, want [sub]", got)
	}

	idx, _ = tr.FindIndexByPath(sub)
	tr.Expand(idx)
	want := []string{"sub", "sub/inner", "sub/inner/leaf", "sub/file.txt"}
	if got := names(tr); !equal(got, want) {
		t.Errorf("flat = %v, want %v", got, want)
	}
}

func TestRefreshKindChange(t *testing.T) {
	root := makeTree(t, "thing/child")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	tr.Expand(1)

	path := filepath.Join(root, "thing")
	os.RemoveAll(path)
	os.WriteFile(path, nil, 0644)
	if err := tr.Refresh(); err != nil {
		t.Fatal(err)
	}
	n, _ := tr.Lookup(1)
	if n.IsDir || n.Expanded || tr.Len() != 2 {
		t.Error("directory turned file must become a plain collapsed node")
	}

	os.Remove(path)
	os.MkdirAll(filepath.Join(path, "again"), 0755)
	tr.Refresh()
	n, _ = tr.Lookup(1)
	if !n.IsDir || n.Expanded {
		t.Error("file turned directory must start collapsed")
	}
}

func TestRefreshRootFailureKeepsTree(t *testing.T) {
	root := makeTree(t, "a.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	orig := readDir
	defer func() { readDir = orig }()
	readDir = func(string) ([]os.DirEntry, error) { return nil, os.ErrPermission }

	if err := tr.Refresh(); err == nil {
		t.Fatal("expected refresh error")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want old tree with 2 entries", tr.Len())
	}
}

func TestRefreshChildFailure(t *testing.T) {
	root := makeTree(t, "sub/x")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	tr.Expand(1)

	orig := readDir
	defer func() { readDir = orig }()
	readDir = func(name string) ([]os.DirEntry, error) {
		if filepath.Base(name) == "sub" {
			return nil, os.ErrPermission
		}
		return orig(name)
	}

	if err := tr.Refresh(); err != nil {
		t.Fatalf("child failure must not fail refresh: %v", err)
	}
	n, _ := tr.Lookup(1)
	if n.Expanded {
		t.Error("unreadable directory should be left collapsed")
	}
	if len(tr.LoadErrors()) != 1 {
		t.Errorf("LoadErrors = %v", tr.LoadErrors())
	}
}

func TestSetShowHidden(t *testing.T) {
	root := makeTree(t, ".env", "readme.md", ".config/x")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}
	before := tr.Len()

	if err := tr.SetShowHidden(true); err != nil {
		t.Fatal(err)
	}
	if tr.Len() != before+2 {
		t.Errorf("Len = %d, want %d", tr.Len(), before+2)
	}
	if err := tr.SetShowHidden(false); err != nil {
		t.Fatal(err)
	}
	if tr.Len() != before {
		t.Errorf("Len = %d, want %d", tr.Len(), before)
	}
}

func TestLookupOutOfRange(t *testing.T) {
	tr, err := New(makeTree(t, "a"), false)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{-1, 2, 100} {
		if _, ok := tr.Lookup(i); ok {
			t.Errorf("Lookup(%d) should be absent", i)
		}
	}
	if _, ok := tr.FindIndexByPath("/definitely/not/here"); ok {
		t.Error("FindIndexByPath should miss")
	}
}

func TestReveal(t *testing.T) {
	root := makeTree(t, "a/b/c.txt", "z.txt")
	tr, err := New(root, false)
	if err != nil {
		t.Fatal(err)
	}

	idx, ok := tr.Reveal(filepath.Join(root, "a", "b", "c.txt"))
	if !ok {
		t.Fatal("Reveal failed")
	}
	if n, _ := tr.Lookup(idx); n.Name != "c.txt" {
		t.Errorf("Reveal index points at %q", n.Name)
	}
	if _, ok := tr.Reveal(filepath.Join(filepath.Dir(root), "elsewhere")); ok {
		t.Error("Reveal outside root should fail")
	}
	if idx, ok := tr.Reveal(root); !ok || idx != 0 {
		t.Error("Reveal(root) should be index 0")
	}
}
