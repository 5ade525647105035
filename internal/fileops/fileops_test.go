package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateFile(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	path, err := ops.CreateFile(tempDir, "testfile.txt")
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if path != filepath.Join(tempDir, "testfile.txt") {
		t.Errorf("CreateFile returned %q", path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("File was not created")
	}

	// Creating it again must collide without touching the existing file
	os.WriteFile(path, []byte("keep"), 0644)
	_, err = ops.CreateFile(tempDir, "testfile.txt")
	if !errors.Is(err, ErrNameCollision) {
		t.Errorf("Expected ErrNameCollision, got %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "keep" {
		t.Error("Existing file was modified")
	}
}

func TestCreateDir(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	path, err := ops.CreateDir(tempDir, "testdir")
	if err != nil {
		t.Fatalf("CreateDir failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("Created path is not a directory: %v", err)
	}

	_, err = ops.CreateDir(tempDir, "testdir")
	if !errors.Is(err, ErrNameCollision) {
		t.Errorf("Expected ErrNameCollision, got %v", err)
	}

	// A file with the same name also collides
	os.WriteFile(filepath.Join(tempDir, "plain"), nil, 0644)
	if _, err := ops.CreateDir(tempDir, "plain"); !errors.Is(err, ErrNameCollision) {
		t.Errorf("Expected ErrNameCollision for file clash, got %v", err)
	}
}

func TestInvalidNames(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		t.Run(name, func(t *testing.T) {
			if _, err := ops.CreateFile(tempDir, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("CreateFile(%q) = %v, want ErrInvalidName", name, err)
			}
			if _, err := ops.CreateDir(tempDir, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("CreateDir(%q) = %v, want ErrInvalidName", name, err)
			}
		})
	}
}

func TestRename(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	oldPath := filepath.Join(tempDir, "oldname.txt")
	os.WriteFile(oldPath, []byte("test content"), 0644)

	newPath, err := ops.Rename(oldPath, "newname.txt")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if newPath != filepath.Join(tempDir, "newname.txt") {
		t.Errorf("Rename returned %q", newPath)
	}
	if _, err := os.Stat(newPath); os.IsNotExist(err) {
		t.Error("Renamed file does not exist")
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("Old file still exists after rename")
	}

	// Renaming to an existing name collides and leaves both files alone
	anotherFile := filepath.Join(tempDir, "another.txt")
	os.WriteFile(anotherFile, []byte("another"), 0644)
	_, err = ops.Rename(newPath, "another.txt")
	if !errors.Is(err, ErrNameCollision) {
		t.Errorf("Expected ErrNameCollision, got %v", err)
	}
	content, _ := os.ReadFile(anotherFile)
	if string(content) != "another" {
		t.Error("Rename overwrote the existing file")
	}
}

func TestRenameToSameName(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	path := filepath.Join(tempDir, "same.txt")
	os.WriteFile(path, []byte("x"), 0644)
	before, _ := os.Stat(path)

	got, err := ops.Rename(path, "same.txt")
	if err != nil {
		t.Fatalf("Rename to same name failed: %v", err)
	}
	if got != path {
		t.Errorf("Rename returned %q, want %q", got, path)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("File was touched by a no-op rename")
	}
}

func TestRenameMissing(t *testing.T) {
	ops := New(Options{})
	_, err := ops.Rename(filepath.Join(t.TempDir(), "gone"), "other")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCopyCollisionSuffix(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	srcDir := filepath.Join(tempDir, "src")
	os.Mkdir(srcDir, 0755)
	src := filepath.Join(srcDir, "a.txt")
	os.WriteFile(src, []byte("source"), 0644)

	dest := filepath.Join(tempDir, "dest")
	os.Mkdir(dest, 0755)
	os.WriteFile(filepath.Join(dest, "a.txt"), []byte("original"), 0644)

	first, err := ops.Copy(src, dest)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if first != filepath.Join(dest, "a_1.txt") {
		t.Errorf("first copy = %q, want a_1.txt", first)
	}
	second, err := ops.Copy(src, dest)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if second != filepath.Join(dest, "a_2.txt") {
		t.Errorf("second copy = %q, want a_2.txt", second)
	}

	content, _ := os.ReadFile(filepath.Join(dest, "a.txt"))
	if string(content) != "original" {
		t.Error("Original file was overwritten")
	}
	content, _ = os.ReadFile(first)
	if string(content) != "source" {
		t.Error("Copied file content doesn't match source")
	}
}

func TestCopyIntoSameDirectory(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	src := filepath.Join(tempDir, "notes.md")
	os.WriteFile(src, []byte("n"), 0644)

	got, err := ops.Copy(src, tempDir)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if got != filepath.Join(tempDir, "notes_1.md") {
		t.Errorf("Copy = %q, want notes_1.md", got)
	}
}

func TestCopyDir(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	srcDir := filepath.Join(tempDir, "srcdir")
	os.Mkdir(srcDir, 0755)
	os.WriteFile(filepath.Join(srcDir, "file1.txt"), []byte("content1"), 0644)
	subdir := filepath.Join(srcDir, "subdir")
	os.Mkdir(subdir, 0755)
	os.WriteFile(filepath.Join(subdir, "file2.txt"), []byte("content2"), 0644)

	dest := filepath.Join(tempDir, "dest")
	os.Mkdir(dest, 0755)

	got, err := ops.Copy(srcDir, dest)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(got, "file1.txt")); os.IsNotExist(err) {
		t.Error("file1.txt was not copied")
	}
	if _, err := os.Stat(filepath.Join(got, "subdir", "file2.txt")); os.IsNotExist(err) {
		t.Error("subdir/file2.txt was not copied")
	}

	// Into itself is refused
	if _, err := ops.Copy(srcDir, subdir); !errors.Is(err, ErrInvalidDestination) {
		t.Errorf("Expected ErrInvalidDestination, got %v", err)
	}
}

func TestCopyDirFailureRemovesPartialTree(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	srcDir := filepath.Join(tempDir, "foo")
	os.Mkdir(srcDir, 0755)
	os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(srcDir, "b.txt"), []byte("b"), 0644)

	errRead := errors.New("read failed")
	orig := openSource
	openSource = func(name string) (*os.File, error) {
		if filepath.Base(name) == "b.txt" {
			return nil, errRead
		}
		return orig(name)
	}
	defer func() { openSource = orig }()

	// Copying into its own parent targets foo_1
	if _, err := ops.Copy(srcDir, tempDir); !errors.Is(err, errRead) {
		t.Fatalf("Expected read error, got %v", err)
	}
	if _, err := os.Lstat(filepath.Join(tempDir, "foo_1")); !os.IsNotExist(err) {
		t.Error("partial copy foo_1 was left behind")
	}
	if _, err := os.Stat(filepath.Join(srcDir, "b.txt")); err != nil {
		t.Errorf("source was touched: %v", err)
	}
}

func TestMove(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	src := filepath.Join(tempDir, "a.txt")
	os.WriteFile(src, []byte("moved"), 0644)
	dest := filepath.Join(tempDir, "dest")
	os.Mkdir(dest, 0755)
	os.WriteFile(filepath.Join(dest, "a.txt"), []byte("existing"), 0644)

	got, err := ops.Move(src, dest)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got != filepath.Join(dest, "a_1.txt") {
		t.Errorf("Move = %q, want a_1.txt", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source still exists after move")
	}
	content, _ := os.ReadFile(filepath.Join(dest, "a.txt"))
	if string(content) != "existing" {
		t.Error("Move overwrote the existing file")
	}
}

func TestMoveIntoOwnParent(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	src := filepath.Join(tempDir, "stay.txt")
	os.WriteFile(src, nil, 0644)

	got, err := ops.Move(src, tempDir)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got != src {
		t.Errorf("Move = %q, want unchanged %q", got, src)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "stay_1.txt")); !os.IsNotExist(err) {
		t.Error("Move into own parent created a duplicate")
	}
}

func TestDelete(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	dir := filepath.Join(tempDir, "tree")
	os.MkdirAll(filepath.Join(dir, "nested"), 0755)
	os.WriteFile(filepath.Join(dir, "nested", "f"), nil, 0644)
	file := filepath.Join(tempDir, "file.txt")
	os.WriteFile(file, nil, 0644)

	if err := ops.Delete(dir); err != nil {
		t.Fatalf("Delete dir failed: %v", err)
	}
	if err := ops.Delete(file); err != nil {
		t.Fatalf("Delete file failed: %v", err)
	}
	for _, p := range []string{dir, file} {
		if _, err := os.Lstat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}

	if err := ops.Delete(file); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSymlinkKeepsTarget(t *testing.T) {
	tempDir := t.TempDir()
	ops := New(Options{})

	target := filepath.Join(tempDir, "target")
	os.Mkdir(target, 0755)
	os.WriteFile(filepath.Join(target, "inside"), nil, 0644)
	link := filepath.Join(tempDir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := ops.Delete(link); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "inside")); err != nil {
		t.Error("Deleting a symlink removed its target's contents")
	}
}

func TestSuffixedName(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"a.txt", 0, "a.txt"},
		{"a.txt", 1, "a_1.txt"},
		{"archive.tar.gz", 2, "archive.tar_2.gz"},
		{"Makefile", 3, "Makefile_3"},
		{".env", 1, ".env_1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SuffixedName(tt.name, tt.n); got != tt.want {
				t.Errorf("SuffixedName(%q, %d) = %q, want %q", tt.name, tt.n, got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	if err := FormatError(nil, "/test/path", "test operation"); err != nil {
		t.Error("FormatError should return nil for nil input")
	}

	err := FormatError(os.ErrNotExist, "/test/file.txt", "read")
	if err == nil || err.Error() == "" {
		t.Fatal("FormatError should return a non-empty error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if !errors.Is(FormatError(os.ErrExist, "/x", "create"), ErrNameCollision) {
		t.Error("Expected ErrNameCollision for ErrExist")
	}

	// Already formatted errors pass through unchanged
	if again := FormatError(err, "/other", "copy"); again != err {
		t.Error("FormatError wrapped an *OpError twice")
	}
}

func TestCommandExists(t *testing.T) {
	if !commandExists("ls") {
		t.Error("'ls' command should exist")
	}
	if commandExists("nonexistentcommandxyz123") {
		t.Error("Nonexistent command should return false")
	}
}
