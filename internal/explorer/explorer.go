// Package explorer owns the tree, the selection, the marks and the
// clipboard, and runs every edit against them. Structural changes always
// end with a refresh and re-selection by path.
package explorer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/LFroesch/canopy/internal/drop"
	"github.com/LFroesch/canopy/internal/fileops"
	"github.com/LFroesch/canopy/internal/git"
	"github.com/LFroesch/canopy/internal/history"
	"github.com/LFroesch/canopy/internal/logger"
	"github.com/LFroesch/canopy/internal/selection"
	"github.com/LFroesch/canopy/internal/tree"
)

// Mode is the current input mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeRename
	ModeNewFile
	ModeNewDir
	ModeConfirmDelete
	ModePreview
	ModeCommand
)

// ClipboardKind says what a paste will do.
type ClipboardKind int

const (
	ClipboardEmpty ClipboardKind = iota
	ClipboardCopy
	ClipboardCut
)

// Clipboard holds one copy or cut payload.
type Clipboard struct {
	Kind  ClipboardKind
	Paths []string
}

// Contains reports whether path is in the payload.
func (c Clipboard) Contains(path string) bool {
	for _, p := range c.Paths {
		if p == path {
			return true
		}
	}
	return false
}

// PendingDelete is a delete waiting for confirmation.
type PendingDelete struct {
	Paths          []string
	HasDirectories bool
}

// BatchResult counts the outcome of a multi-path operation.
type BatchResult struct {
	Total     int
	Succeeded int
	Errors    []error
}

// Runner starts a shell command without waiting for it.
type Runner func(command string) error

// ShellRunner runs command with sh -c, detached from the terminal.
func ShellRunner(command string) error {
	cmd := exec.Command("sh", "-c", command)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// Options configures an Explorer. Nil collaborators get working defaults.
type Options struct {
	ShowHidden     bool
	Ops            fileops.Ops
	VCS            git.Source
	History        *history.History
	DefaultCommand string
	Run            Runner
	DoubleClick    time.Duration
	// Exists decides which dropped text names real files.
	Exists func(string) bool
}

// Explorer is the whole mutable state behind the UI. It is not safe for
// concurrent use; the event loop owns it.
type Explorer struct {
	tree    *tree.Tree
	sel     *selection.State
	ops     fileops.Ops
	vcs     git.Source
	history *history.History
	run     Runner
	exists  func(string) bool
	drops   *drop.Buffer

	mode      Mode
	input     string
	clipboard Clipboard
	pending   *PendingDelete

	lastQuery      string
	lastCommand    string
	defaultCommand string

	previewPath  string
	quickPreview bool

	message string
}

// New builds the tree at root. It fails only if root cannot be listed.
func New(root string, opts Options) (*Explorer, error) {
	t, err := tree.New(root, opts.ShowHidden)
	if err != nil {
		return nil, err
	}

	e := &Explorer{
		tree:           t,
		sel:            selection.New(),
		ops:            opts.Ops,
		vcs:            opts.VCS,
		history:        opts.History,
		run:            opts.Run,
		exists:         opts.Exists,
		drops:          drop.NewBuffer(),
		defaultCommand: opts.DefaultCommand,
	}
	if e.ops == nil {
		e.ops = fileops.New(fileops.Options{})
	}
	if e.history == nil {
		e.history, _ = history.Load("")
	}
	if e.run == nil {
		e.run = ShellRunner
	}
	if e.exists == nil {
		e.exists = drop.Exists
	}
	if opts.DoubleClick > 0 {
		e.sel.DoubleClick = opts.DoubleClick
	}
	return e, nil
}

func (e *Explorer) Tree() *tree.Tree { return e.tree }
func (e *Explorer) Selection() *selection.State { return e.sel }
func (e *Explorer) Mode() Mode { return e.mode }
func (e *Explorer) Input() string { return e.input }
func (e *Explorer) Clipboard() Clipboard { return e.clipboard }
func (e *Explorer) Pending() *PendingDelete { return e.pending }
func (e *Explorer) LastQuery() string { return e.lastQuery }
func (e *Explorer) PreviewPath() string { return e.previewPath }
func (e *Explorer) QuickPreview() bool { return e.quickPreview }
func (e *Explorer) RootPath() string { return e.tree.Root().Path }
func (e *Explorer) SetQuickPreview(on bool) { e.quickPreview = on }

// Message returns the pending status message without clearing it.
func (e *Explorer) Message() string { return e.message }

// TakeMessage returns and clears the pending status message.
func (e *Explorer) TakeMessage() string {
	msg := e.message
	e.message = ""
	return msg
}

func (e *Explorer) setMessage(format string, args ...any) {
	e.message = fmt.Sprintf(format, args...)
}

// Status returns the VCS status of path for colouring.
func (e *Explorer) Status(path string) git.Status {
	if e.vcs == nil {
		return git.None
	}
	return e.vcs.Status(path)
}

// Branch returns the VCS branch, if any.
func (e *Explorer) Branch() string {
	if e.vcs == nil {
		return ""
	}
	return e.vcs.Branch()
}

// Current returns the selected node.
func (e *Explorer) Current() (*tree.Node, bool) {
	return e.tree.Lookup(e.sel.Cursor)
}

func (e *Explorer) currentPath() string {
	if n, ok := e.Current(); ok {
		return n.Path
	}
	return ""
}

// selectPath points the cursor at path, or clamps fallback when path is
// no longer in the flat index.
func (e *Explorer) selectPath(path string, fallback int) {
	if i, ok := e.tree.FindIndexByPath(path); ok && path != "" {
		e.sel.Cursor = i
		return
	}
	e.sel.Cursor = fallback
	e.sel.Clamp(e.tree.Len())
}

// refresh re-reads the tree and the VCS status, then re-selects path.
func (e *Explorer) refresh(path string, fallback int) error {
	err := e.tree.Refresh()
	if err != nil {
		logger.Error("Refresh of %s failed: %v", e.RootPath(), err)
	}
	if e.vcs != nil {
		e.vcs.Refresh(e.RootPath())
	}
	e.selectPath(path, fallback)
	return err
}

// pasteDestination is the selected directory, or the parent of the
// selected file.
func (e *Explorer) pasteDestination() (string, bool) {
	n, ok := e.Current()
	if !ok {
		return "", false
	}
	if n.IsDir {
		return n.Path, true
	}
	return filepath.Dir(n.Path), true
}

// Refresh re-reads the tree from disk, keeping the selection on the same
// path where possible.
func (e *Explorer) Refresh() error {
	if err := e.refresh(e.currentPath(), e.sel.Cursor); err != nil {
		e.setMessage("Refresh failed: %v", err)
		return err
	}
	if errs := e.tree.LoadErrors(); len(errs) > 0 {
		e.setMessage("Refreshed (%d unreadable)", len(errs))
	} else {
		e.setMessage("Refreshed")
	}
	return nil
}

// ToggleHidden flips the dotfile filter.
func (e *Explorer) ToggleHidden() error {
	path := e.currentPath()
	show := !e.tree.ShowHidden()
	if err := e.tree.SetShowHidden(show); err != nil {
		e.setMessage("Refresh failed: %v", err)
		return err
	}
	e.selectPath(path, e.sel.Cursor)
	if show {
		e.setMessage("Showing hidden files")
	} else {
		e.setMessage("Hiding hidden files")
	}
	return nil
}

func (e *Explorer) MoveUp() { e.sel.MoveUp(e.tree.Len()) }
func (e *Explorer) MoveDown() { e.sel.MoveDown(e.tree.Len()) }
func (e *Explorer) MoveToTop() { e.sel.MoveToTop() }
func (e *Explorer) MoveToBottom() { e.sel.MoveToBottom(e.tree.Len()) }

// MoveBy moves the cursor by delta rows, clamped.
func (e *Explorer) MoveBy(delta int) { e.sel.MoveBy(delta, e.tree.Len()) }

// ExpandCurrent expands the selected directory.
func (e *Explorer) ExpandCurrent() error {
	n, ok := e.Current()
	if !ok || !n.IsDir {
		return nil
	}
	path := n.Path
	if err := e.tree.Expand(e.sel.Cursor); err != nil {
		e.setMessage("Cannot open %s: %v", n.Name, err)
		return err
	}
	e.selectPath(path, e.sel.Cursor)
	return nil
}

// CollapseCurrent collapses the selected directory, or moves to its parent
// when there is nothing to collapse.
func (e *Explorer) CollapseCurrent() {
	n, ok := e.Current()
	if !ok {
		return
	}
	if n.IsDir && n.Expanded && n.Path != e.RootPath() {
		path := n.Path
		e.tree.Collapse(e.sel.Cursor)
		e.selectPath(path, e.sel.Cursor)
		return
	}
	if n.Path == e.RootPath() {
		return
	}
	if i, ok := e.tree.FindIndexByPath(filepath.Dir(n.Path)); ok {
		e.sel.Cursor = i
	}
}

// ToggleExpand expands or collapses the selected directory.
func (e *Explorer) ToggleExpand() {
	n, ok := e.Current()
	if !ok || !n.IsDir {
		return
	}
	if n.Expanded {
		if n.Path == e.RootPath() {
			return
		}
		e.CollapseCurrent()
		return
	}
	e.ExpandCurrent()
}

// ExpandAll expands every directory below the root.
func (e *Explorer) ExpandAll() {
	path := e.currentPath()
	e.tree.ExpandAll()
	e.selectPath(path, e.sel.Cursor)
	if errs := e.tree.LoadErrors(); len(errs) > 0 {
		e.setMessage("Expanded all (%d unreadable)", len(errs))
	} else {
		e.setMessage("Expanded all")
	}
}

// CollapseAll collapses everything and selects the root.
func (e *Explorer) CollapseAll() {
	e.tree.CollapseAll()
	e.sel.Cursor = 0
	e.sel.Offset = 0
	e.setMessage("Collapsed all")
}

// Click handles a mouse click on a visible row. A double click toggles
// the directory under the pointer.
func (e *Explorer) Click(row int, now time.Time) {
	index := e.sel.Offset + row
	if row < 0 || index >= e.tree.Len() {
		return
	}
	if e.sel.Click(index, now) {
		e.ToggleExpand()
	}
}

func (e *Explorer) ScrollUp(lines int) { e.MoveBy(-lines) }
func (e *Explorer) ScrollDown(lines int) { e.MoveBy(lines) }

// AdjustScroll keeps the cursor inside a window of height rows.
func (e *Explorer) AdjustScroll(height int) {
	e.sel.EnsureVisible(height, e.tree.Len())
}

// ToggleMark marks or unmarks the selected path and moves down.
func (e *Explorer) ToggleMark() {
	if path := e.currentPath(); path != "" {
		e.sel.ToggleMark(path, e.tree.Len())
	}
}

// ClearMarks unmarks everything.
func (e *Explorer) ClearMarks() {
	if e.sel.MarkCount() > 0 {
		e.setMessage("Cleared marks")
	}
	e.sel.ClearMarks()
}

// OperativePaths is the marked set, or the selection when nothing is
// marked.
func (e *Explorer) OperativePaths() []string {
	return e.sel.OperativePaths(e.currentPath())
}

// OpenPreview enters preview mode for the selected file.
func (e *Explorer) OpenPreview() bool {
	n, ok := e.Current()
	if !ok {
		return false
	}
	if n.IsDir {
		e.setMessage("Cannot preview directory")
		return false
	}
	e.previewPath = n.Path
	e.mode = ModePreview
	return true
}

// ClosePreview leaves preview mode.
func (e *Explorer) ClosePreview() {
	e.previewPath = ""
	e.mode = ModeNormal
}

// ToggleQuickPreview shows or hides the inline preview panel.
func (e *Explorer) ToggleQuickPreview() {
	e.quickPreview = !e.quickPreview
	if e.quickPreview {
		e.setMessage("Quick preview on")
	} else {
		e.setMessage("Quick preview off")
	}
}

func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
