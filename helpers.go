package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/LFroesch/canopy/internal/logger"
	"github.com/LFroesch/canopy/internal/preview"
)

// editorCommand returns the configured editor split into argv, trying the
// config, then $VISUAL, then $EDITOR.
func (m *model) editorCommand() []string {
	for _, editor := range []string{m.cfg.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		fields := strings.Fields(editor)
		if len(fields) == 0 {
			continue
		}
		if _, err := exec.LookPath(fields[0]); err == nil {
			return fields
		}
	}
	return nil
}

// openSelected edits a file in the terminal editor, suspending the UI, or
// hands it to the system default application when no editor is set.
func (m *model) openSelected() tea.Cmd {
	n, ok := m.exp.Current()
	if !ok {
		return nil
	}
	path := n.Path

	if argv := m.editorCommand(); argv != nil && !n.IsDir {
		c := exec.Command(argv[0], append(argv[1:], path)...)
		return tea.ExecProcess(c, func(err error) tea.Msg {
			return editorFinishedMsg{path: path, err: err}
		})
	}

	if err := open.Start(path); err != nil {
		logger.Warn("Failed to open %s: %v", path, err)
		m.setError(fmt.Sprintf("Failed to open: %v", err))
		return nil
	}
	m.setStatus(fmt.Sprintf("Opening %s", filepath.Base(path)))
	return nil
}

func (m *model) copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.setError(fmt.Sprintf("Failed to copy: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("Copied: %s", text))
}

// loadFullPreview renders the previewed file into the viewport.
func (m *model) loadFullPreview() {
	path := m.exp.PreviewPath()
	if path == "" {
		return
	}
	content, err := preview.Load(path, preview.Options{
		Width:  m.viewport.Width,
		Height: m.viewport.Height,
	})
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Cannot preview %s: %v", filepath.Base(path), err))
		m.viewport.GotoTop()
		return
	}
	lines := content.Lines
	if content.Truncated {
		lines = append(lines, "", fmt.Sprintf("[showing the first %s]", humanLimit()))
	}
	if len(lines) == 0 {
		lines = []string{"(empty file)"}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoTop()
}

func humanLimit() string {
	return fmt.Sprintf("%d MB", preview.MaxTextBytes>>20)
}

// updateQuickPreview reloads the inline panel when the selection moved.
func (m *model) updateQuickPreview() {
	height := m.quickPreviewHeight()
	if height == 0 || m.width == 0 {
		return
	}
	n, ok := m.exp.Current()
	if !ok {
		m.quickPath, m.quickContent, m.quickErr = "", preview.Content{}, nil
		return
	}
	if n.Path == m.quickPath {
		return
	}
	m.quickPath = n.Path
	m.quickContent, m.quickErr = preview.Load(n.Path, preview.Options{
		Width:  m.getSafeWidth() - 6,
		Height: height,
		Quick:  true,
	})
}
