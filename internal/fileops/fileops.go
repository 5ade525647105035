package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// openSource is swapped out in tests to fail partway through a copy.
var openSource = os.Open

// maxSuffix bounds the _N search so a pathological directory cannot spin forever.
const maxSuffix = 10000

// Ops is the set of filesystem mutations the explorer performs. Copy and
// Move never overwrite: a clashing name gets a _1, _2, ... suffix before the
// extension. Rename and the Create calls fail with ErrNameCollision instead.
type Ops interface {
	Copy(src, destDir string) (string, error)
	Move(src, destDir string) (string, error)
	Delete(path string) error
	Rename(path, newName string) (string, error)
	CreateFile(destDir, name string) (string, error)
	CreateDir(destDir, name string) (string, error)
}

// Options tunes the OS implementation.
type Options struct {
	// UseTrash sends deletions to the desktop trash when a helper is
	// available, falling back to a permanent delete otherwise.
	UseTrash bool
}

// OS implements Ops against the real filesystem.
type OS struct {
	opts Options
}

// New returns an OS-backed Ops.
func New(opts Options) *OS {
	return &OS{opts: opts}
}

var _ Ops = (*OS)(nil)

// ValidateName rejects names that cannot be a single directory entry.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}

// SuffixedName returns name with _n inserted before its extension. A
// leading dot is part of the stem, so ".env" becomes ".env_1".
func SuffixedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	if ext == name {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// UniquePath returns the first destDir/name variant that does not exist.
// It is advisory; Copy and Move re-check atomically when they create.
func UniquePath(destDir, name string) string {
	for n := 0; n < maxSuffix; n++ {
		candidate := filepath.Join(destDir, SuffixedName(name, n))
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
	return filepath.Join(destDir, SuffixedName(name, maxSuffix))
}

// isWithin reports whether child is parent or lies beneath it.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Copy copies src (file, symlink or directory tree) into destDir.
func (o *OS) Copy(src, destDir string) (string, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return "", FormatError(err, src, "copy")
	}
	if info.IsDir() && isWithin(src, destDir) {
		return "", FormatError(ErrInvalidDestination, src, "copy")
	}

	name := filepath.Base(src)
	for n := 0; n < maxSuffix; n++ {
		dst := filepath.Join(destDir, SuffixedName(name, n))
		err := copyEntry(src, dst, info)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", FormatError(err, src, "copy")
		}
		return dst, nil
	}
	return "", FormatError(ErrNameCollision, src, "copy")
}

// Move moves src into destDir. Moving into the directory that already
// holds src is a no-op. Cross-device moves fall back to copy and remove.
func (o *OS) Move(src, destDir string) (string, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return "", FormatError(err, src, "move")
	}
	if filepath.Dir(filepath.Clean(src)) == filepath.Clean(destDir) {
		return src, nil
	}
	if info.IsDir() && isWithin(src, destDir) {
		return "", FormatError(ErrInvalidDestination, src, "move")
	}

	name := filepath.Base(src)
	for n := 0; n < maxSuffix; n++ {
		dst := filepath.Join(destDir, SuffixedName(name, n))
		err := renameNoReplace(src, dst)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil && isCrossDevice(err) {
			dst, err = o.Copy(src, destDir)
			if err != nil {
				return "", err
			}
			if err := os.RemoveAll(src); err != nil {
				return dst, FormatError(err, src, "move")
			}
			return dst, nil
		}
		if err != nil {
			return "", FormatError(err, src, "move")
		}
		return dst, nil
	}
	return "", FormatError(ErrNameCollision, src, "move")
}

// Delete removes path, recursively for directories. Symlinks are removed,
// never followed.
func (o *OS) Delete(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return FormatError(err, path, "delete")
	}
	if o.opts.UseTrash {
		if err := moveToTrash(path); err == nil {
			return nil
		}
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	return FormatError(err, path, "delete")
}

// Rename gives path a new name within its directory. Renaming to the
// current name succeeds without touching the disk.
func (o *OS) Rename(path, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", FormatError(err, path, "rename")
	}
	newPath := filepath.Join(filepath.Dir(path), newName)
	if newPath == filepath.Clean(path) {
		return path, nil
	}
	if _, err := os.Lstat(path); err != nil {
		return "", FormatError(err, path, "rename")
	}
	if err := renameNoReplace(path, newPath); err != nil {
		return "", FormatError(err, path, "rename")
	}
	return newPath, nil
}

// CreateFile creates an empty file, failing if the name is taken.
func (o *OS) CreateFile(destDir, name string) (string, error) {
	path := filepath.Join(destDir, name)
	if err := ValidateName(name); err != nil {
		return "", FormatError(err, path, "create")
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", FormatError(err, path, "create")
	}
	if err := file.Close(); err != nil {
		return "", FormatError(err, path, "create")
	}
	return path, nil
}

// CreateDir creates a directory, failing if the name is taken.
func (o *OS) CreateDir(destDir, name string) (string, error) {
	path := filepath.Join(destDir, name)
	if err := ValidateName(name); err != nil {
		return "", FormatError(err, path, "mkdir")
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return "", FormatError(err, path, "mkdir")
	}
	return path, nil
}

// renameChecked is the fallback when the platform has no no-replace rename.
// It leaves a window between the check and the rename.
func renameChecked(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrExist}
	}
	return os.Rename(oldpath, newpath)
}

// copyEntry copies src to dst, which must not exist. Only the top-level
// create is exclusive; entries inside a fresh directory cannot clash.
func copyEntry(src, dst string, info fs.FileInfo) error {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		return copyDir(src, dst, info)
	default:
		return copyFile(src, dst, info)
	}
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := openSource(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// copyDir removes the partial destination tree if anything below it fails.
func copyDir(src, dst string, info fs.FileInfo) (err error) {
	if err := os.Mkdir(dst, info.Mode().Perm()|0700); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dst)
		}
	}()

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		entryInfo, err := os.Lstat(srcPath)
		if err != nil {
			return err
		}
		if err := copyEntry(srcPath, dstPath, entryInfo); err != nil {
			return err
		}
	}

	return nil
}
