package explorer

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/LFroesch/canopy/internal/logger"
	"github.com/LFroesch/canopy/internal/selection"
	"github.com/LFroesch/canopy/internal/tree"
)

// ErrRootOperation is returned when an edit would remove or rename the
// tree's root.
var ErrRootOperation = errors.New("cannot modify the root directory")

// Yank puts the operative paths on the clipboard as a copy and clears the
// marks.
func (e *Explorer) Yank() {
	paths := e.OperativePaths()
	if len(paths) == 0 {
		return
	}
	e.clipboard = Clipboard{Kind: ClipboardCopy, Paths: paths}
	e.sel.ClearMarks()
	e.setMessage("Yanked %d item(s)", len(paths))
}

// Cut puts the operative paths on the clipboard as a move. Marks stay so
// the cut items remain highlighted until pasted.
func (e *Explorer) Cut() {
	paths := e.OperativePaths()
	if len(paths) == 0 {
		return
	}
	e.clipboard = Clipboard{Kind: ClipboardCut, Paths: paths}
	e.setMessage("Cut %d item(s)", len(paths))
}

// Paste copies or moves the clipboard into the paste destination. Every
// path is attempted; failures are counted. A copy payload stays on the
// clipboard, a cut payload is used up.
func (e *Explorer) Paste() BatchResult {
	clip := e.clipboard
	if clip.Kind == ClipboardEmpty || len(clip.Paths) == 0 {
		e.setMessage("Clipboard is empty")
		return BatchResult{}
	}
	dest, ok := e.pasteDestination()
	if !ok {
		e.setMessage("No destination")
		return BatchResult{}
	}

	srcs := clip.Paths
	if clip.Kind == ClipboardCut {
		srcs = outermost(srcs)
	}

	current := e.currentPath()
	result := BatchResult{Total: len(srcs)}
	for _, src := range srcs {
		var newPath string
		var err error
		if clip.Kind == ClipboardCut {
			newPath, err = e.ops.Move(src, dest)
		} else {
			newPath, err = e.ops.Copy(src, dest)
		}
		if err != nil {
			logger.Warn("Paste %s into %s failed: %v", src, dest, err)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Succeeded++
		if clip.Kind == ClipboardCut {
			current = selection.RemapPath(current, src, newPath)
		}
	}

	verb := "Pasted"
	if clip.Kind == ClipboardCut {
		verb = "Moved"
		if result.Succeeded > 0 {
			e.sel.ClearMarks()
			e.clipboard = Clipboard{}
		}
	} else {
		e.clipboard = Clipboard{Kind: ClipboardCopy, Paths: append([]string(nil), clip.Paths...)}
	}

	e.refresh(current, e.sel.Cursor)
	e.reportBatch(verb, result)
	return result
}

func (e *Explorer) reportBatch(verb string, r BatchResult) {
	switch {
	case r.Succeeded == r.Total:
		e.setMessage("%s %d item(s)", verb, r.Total)
	case len(r.Errors) > 0:
		e.setMessage("%s %d of %d items: %v", verb, r.Succeeded, r.Total, r.Errors[0])
	default:
		e.setMessage("%s %d of %d items", verb, r.Succeeded, r.Total)
	}
}

// ConfirmDelete asks for confirmation before deleting the operative paths.
func (e *Explorer) ConfirmDelete() bool {
	paths := outermost(e.OperativePaths())
	if len(paths) == 0 {
		return false
	}
	root := e.RootPath()
	hasDirs := false
	for _, p := range paths {
		if p == root {
			e.setMessage("Cannot delete the root directory")
			return false
		}
		if isDir(p) {
			hasDirs = true
		}
	}
	e.pending = &PendingDelete{Paths: paths, HasDirectories: hasDirs}
	e.mode = ModeConfirmDelete
	return true
}

// ExecuteDelete deletes the paths awaiting confirmation. It does nothing
// outside the confirmation state.
func (e *Explorer) ExecuteDelete() BatchResult {
	if e.mode != ModeConfirmDelete || e.pending == nil {
		return BatchResult{}
	}
	pending := e.pending
	e.pending = nil
	e.mode = ModeNormal

	current := e.currentPath()
	oldCursor := e.sel.Cursor

	result := BatchResult{Total: len(pending.Paths)}
	deleted := make(map[string]bool, len(pending.Paths))
	for _, p := range pending.Paths {
		if err := e.ops.Delete(p); err != nil {
			logger.Warn("Delete %s failed: %v", p, err)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Succeeded++
		deleted[p] = true
	}

	if result.Succeeded > 0 {
		e.sel.ClearMarks()
		e.dropFromClipboard(deleted)
	}
	e.refresh(current, oldCursor)
	e.reportBatch("Deleted", result)
	return result
}

// outermost drops every path that lies beneath another path in the list;
// removing or moving the ancestor already takes it along.
func outermost(paths []string) []string {
	var out []string
	for _, p := range paths {
		nested := false
		for _, q := range paths {
			if q != p && strings.HasPrefix(p, q+string(filepath.Separator)) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, p)
		}
	}
	return out
}

// dropFromClipboard removes deleted paths and anything beneath them.
func (e *Explorer) dropFromClipboard(deleted map[string]bool) {
	var kept []string
	for _, p := range e.clipboard.Paths {
		gone := false
		for d := range deleted {
			if p == d || selection.RemapPath(p, d, "") != p {
				gone = true
				break
			}
		}
		if !gone {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		e.clipboard = Clipboard{}
		return
	}
	e.clipboard.Paths = kept
}

// Rename renames the selected entry. Renaming to the current name is a
// successful no-op. Marks and clipboard entries follow the rename.
func (e *Explorer) Rename(newName string) error {
	n, ok := e.Current()
	if !ok {
		return tree.ErrNotFound
	}
	if n.Path == e.RootPath() {
		e.setMessage("Cannot rename the root directory")
		return ErrRootOperation
	}
	oldPath := n.Path

	newPath, err := e.ops.Rename(oldPath, newName)
	if err != nil {
		e.setMessage("Rename failed: %v", err)
		return err
	}
	if newPath == oldPath {
		return nil
	}

	e.sel.RemapMarks(oldPath, newPath)
	for i, p := range e.clipboard.Paths {
		e.clipboard.Paths[i] = selection.RemapPath(p, oldPath, newPath)
	}
	e.refresh(newPath, e.sel.Cursor)
	e.setMessage("Renamed to %s", filepath.Base(newPath))
	return nil
}

// CreateFile creates an empty file in the paste destination and selects it.
func (e *Explorer) CreateFile(name string) error {
	return e.create(name, e.ops.CreateFile)
}

// CreateDirectory creates a directory in the paste destination and
// selects it.
func (e *Explorer) CreateDirectory(name string) error {
	return e.create(name, e.ops.CreateDir)
}

func (e *Explorer) create(name string, mk func(destDir, name string) (string, error)) error {
	dest, ok := e.pasteDestination()
	if !ok {
		e.setMessage("No destination")
		return tree.ErrNotFound
	}
	newPath, err := mk(dest, name)
	if err != nil {
		e.setMessage("Create failed: %v", err)
		return err
	}
	e.refresh(newPath, e.sel.Cursor)
	if i, ok := e.tree.Reveal(newPath); ok {
		e.sel.Cursor = i
	}
	e.setMessage("Created %s", newPath)
	return nil
}

// dropPaths copies externally dropped paths into the paste destination.
func (e *Explorer) dropPaths(paths []string) BatchResult {
	dest, ok := e.pasteDestination()
	if !ok {
		e.setMessage("No destination")
		return BatchResult{}
	}

	current := e.currentPath()
	result := BatchResult{Total: len(paths)}
	for _, src := range paths {
		if _, err := e.ops.Copy(src, dest); err != nil {
			logger.Warn("Drop of %s failed: %v", src, err)
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Succeeded++
	}

	e.refresh(current, e.sel.Cursor)
	if len(paths) == 1 && result.Succeeded == 1 {
		e.setMessage("Dropped: %s", filepath.Base(paths[0]))
	} else {
		e.reportBatch("Dropped", result)
	}
	return result
}
