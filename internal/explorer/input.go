package explorer

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/LFroesch/canopy/internal/drop"
	"github.com/LFroesch/canopy/internal/logger"
	"github.com/LFroesch/canopy/internal/search"
)

// PathPlaceholder is replaced by the quoted selected path in a command.
const PathPlaceholder = "<filepath>"

var (
	ErrNoMatch   = errors.New("no match found")
	ErrNoCommand = errors.New("no command set")
)

// startInput keeps the drop buffer: the sigil that opened search may be
// the first character of a pasted path.
func (e *Explorer) startInput(mode Mode, seed string) {
	e.mode = mode
	e.input = seed
}

// StartSearch enters search mode with an empty query.
func (e *Explorer) StartSearch() { e.startInput(ModeSearch, "") }

// StartRename enters rename mode seeded with the selected name.
func (e *Explorer) StartRename() bool {
	n, ok := e.Current()
	if !ok {
		return false
	}
	if n.Path == e.RootPath() {
		e.setMessage("Cannot rename the root directory")
		return false
	}
	e.startInput(ModeRename, n.Name)
	return true
}

func (e *Explorer) StartNewFile() { e.startInput(ModeNewFile, "") }
func (e *Explorer) StartNewDir() { e.startInput(ModeNewDir, "") }

// StartCommand enters command mode with an empty buffer and restarts
// history recall.
func (e *Explorer) StartCommand() {
	e.history.Reset()
	e.startInput(ModeCommand, "")
}

// SetInput replaces the edit buffer.
func (e *Explorer) SetInput(s string) { e.input = s }

// CancelInput leaves any input or confirmation mode, discarding the buffer.
func (e *Explorer) CancelInput() {
	e.mode = ModeNormal
	e.input = ""
	e.pending = nil
	e.drops.Reset()
}

// ConfirmInput commits the edit buffer for the current mode and returns to
// normal mode. The buffer is discarded whether or not the action succeeds.
func (e *Explorer) ConfirmInput() error {
	if e.mode == ModeConfirmDelete {
		e.ExecuteDelete()
		return nil
	}
	mode, text := e.mode, e.input
	e.mode = ModeNormal
	e.input = ""

	switch mode {
	case ModeSearch:
		if r := drop.Classify(text, e.exists); r.Kind == drop.Paths {
			e.dropPaths(r.Paths)
			return nil
		}
		query := strings.TrimSpace(strings.TrimPrefix(text, drop.Sigil))
		if query == "" {
			return nil
		}
		e.lastQuery = query
		return e.SearchNext()
	case ModeRename:
		return e.Rename(strings.TrimSpace(text))
	case ModeNewFile:
		return e.CreateFile(strings.TrimSpace(text))
	case ModeNewDir:
		return e.CreateDirectory(strings.TrimSpace(text))
	case ModeCommand:
		cmd := strings.TrimSpace(text)
		if cmd == "" {
			return nil
		}
		if err := e.history.Add(cmd); err != nil {
			logger.Warn("Saving command history failed: %v", err)
		}
		return e.ExecuteCommand(cmd)
	}
	return nil
}

// SearchNext moves the cursor to the next entry matching the last query.
func (e *Explorer) SearchNext() error {
	if e.lastQuery == "" {
		return nil
	}
	nodes := e.tree.Nodes()
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	m, ok := search.NextMatch(e.lastQuery, names, e.sel.Cursor)
	if !ok {
		e.setMessage("No match found")
		return ErrNoMatch
	}
	e.sel.Cursor = m.Index
	return nil
}

// MatchIndexes returns the characters of name to highlight for the query
// being typed.
func (e *Explorer) MatchIndexes(name string) []int {
	if e.mode != ModeSearch {
		return nil
	}
	query := strings.TrimPrefix(e.input, drop.Sigil)
	if query == "" {
		return nil
	}
	return search.MatchIndexes(query, name)
}

// HandlePaste interprets a bracketed paste. Pasted paths are copied in
// normal and search mode; any other text goes into the edit buffer.
func (e *Explorer) HandlePaste(text string) {
	switch e.mode {
	case ModeNormal, ModeSearch:
		if r := drop.Classify(text, e.exists); r.Kind == drop.Paths {
			logger.Debug("Paste names %d dropped path(s)", len(r.Paths))
			e.CancelInput()
			e.dropPaths(r.Paths)
			return
		}
	}
	switch e.mode {
	case ModeSearch, ModeRename, ModeNewFile, ModeNewDir, ModeCommand:
		e.input += strings.ReplaceAll(text, "\n", " ")
	}
}

// BufferInput records raw key input for drop detection.
func (e *Explorer) BufferInput(s string, now time.Time) {
	if e.mode != ModeNormal && e.mode != ModeSearch {
		return
	}
	e.drops.Add(s, now)
}

// DropPending reports whether buffered input is waiting to be checked.
func (e *Explorer) DropPending() bool { return e.drops.Pending() }

// CheckDropBuffer interprets buffered input once it has gone idle. It
// returns true when the burst named existing paths and they were copied.
// A burst that turns out to be typing is left to the normal key handling.
func (e *Explorer) CheckDropBuffer(now time.Time) bool {
	text, ok := e.drops.Flush(now)
	if !ok {
		return false
	}
	r := drop.Classify(text, e.exists)
	if r.Kind != drop.Paths {
		logger.Debug("Buffered input of %d bytes is not a drop", len(text))
		return false
	}
	logger.Debug("Buffered input names %d dropped path(s)", len(r.Paths))
	if e.mode == ModeSearch {
		e.CancelInput()
	}
	e.dropPaths(r.Paths)
	return true
}

// HistoryPrev recalls an older command into the buffer.
func (e *Explorer) HistoryPrev() string {
	if cmd, ok := e.history.Prev(); ok {
		e.input = cmd
	}
	return e.input
}

// HistoryNext recalls a newer command, clearing the buffer past the newest.
func (e *Explorer) HistoryNext() string {
	if cmd, ok := e.history.Next(); ok {
		e.input = cmd
	}
	return e.input
}

// ExecuteCommand runs a command template against the selected path. An
// empty template falls back to the last command, then the default.
func (e *Explorer) ExecuteCommand(template string) error {
	if template == "" {
		template = e.lastCommand
	}
	if template == "" {
		template = e.defaultCommand
	}
	if template == "" {
		e.setMessage("No command set (press ! to enter one)")
		return ErrNoCommand
	}
	path := e.currentPath()
	if path == "" {
		return nil
	}

	command := strings.ReplaceAll(template, PathPlaceholder, shellQuote(path))
	e.lastCommand = template
	logger.Info("Running command: %s", command)
	if err := e.run(command); err != nil {
		e.setMessage("Command failed: %v", err)
		return err
	}
	e.setMessage("Executed: %s", command)
	return nil
}

// RunLast re-runs the last command, or the default command.
func (e *Explorer) RunLast() error {
	return e.ExecuteCommand("")
}

// LastCommand returns the template that RunLast would use.
func (e *Explorer) LastCommand() string {
	if e.lastCommand != "" {
		return e.lastCommand
	}
	return e.defaultCommand
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// SelectedName is the base name of the selection, for the system clipboard.
func (e *Explorer) SelectedName() string {
	if p := e.currentPath(); p != "" {
		return filepath.Base(p)
	}
	return ""
}
