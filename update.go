package main

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LFroesch/canopy/internal/explorer"
)

// listTop is the screen row of the first tree entry: header, list border
// and list title come first.
const listTop = 3

func (m *model) Init() tea.Cmd {
	m.updateQuickPreview()
	return tea.SetWindowTitle("🌳 Canopy - " + m.exp.RootPath())
}

func dropTick() tea.Cmd {
	return tea.Tick(dropTickInterval, func(t time.Time) tea.Msg {
		return dropTickMsg(t)
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Clear expired status messages
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width == m.width && msg.Height == m.height {
			return m, nil
		}
		m.width = msg.Width
		m.height = msg.Height
		if m.width < minTerminalWidth {
			m.width = minTerminalWidth
		}
		if m.height < minTerminalHeight {
			m.height = minTerminalHeight
		}
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.getContentHeight() - 1
		m.help.Width = m.width - 4
		m.textInput.Width = 50

		m.exp.AdjustScroll(m.listHeight())
		if m.exp.Mode() == explorer.ModePreview {
			m.loadFullPreview()
		}
		m.quickPath = "" // reflow for the new width
		m.updateQuickPreview()
		return m, nil

	case dropTickMsg:
		if m.exp.CheckDropBuffer(time.Time(msg)) {
			m.textInput.Blur()
			m.textInput.SetValue("")
			m.afterAction()
		}
		if m.exp.DropPending() {
			return m, dropTick()
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.setError("Editor failed: " + msg.err.Error())
			return m, nil
		}
		m.exp.Refresh()
		m.exp.TakeMessage()
		m.quickPath = ""
		m.afterAction()
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.Paste {
			m.exp.HandlePaste(string(msg.Runes))
			if m.exp.Mode() == explorer.ModeNormal {
				m.textInput.Blur()
			} else {
				m.textInput.SetValue(m.exp.Input())
				m.textInput.CursorEnd()
			}
			m.afterAction()
			return m, nil
		}

		if m.showHelp {
			switch msg.String() {
			case "?", "esc", "q":
				m.showHelp = false
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		switch m.exp.Mode() {
		case explorer.ModeConfirmDelete:
			return m, m.handleConfirmKey(msg)
		case explorer.ModePreview:
			return m, m.handlePreviewKey(msg)
		case explorer.ModeSearch, explorer.ModeRename, explorer.ModeNewFile,
			explorer.ModeNewDir, explorer.ModeCommand:
			return m, m.handleInputKey(msg)
		default:
			return m, m.handleNormalKey(msg)
		}
	}

	return m, nil
}

// bufferRunes feeds typed characters to the drop detector and starts the
// idle poll if it is not already running.
func (m *model) bufferRunes(msg tea.KeyMsg) tea.Cmd {
	if msg.Type != tea.KeyRunes {
		return nil
	}
	pending := m.exp.DropPending()
	m.exp.BufferInput(string(msg.Runes), time.Now())
	if !pending && m.exp.DropPending() {
		return dropTick()
	}
	return nil
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		m.exp.ConfirmInput()
		m.quickPath = ""
		m.afterAction()
	case "n", "N", "esc", "q":
		m.exp.CancelInput()
		m.setStatus("Delete cancelled")
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (m *model) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "v", "h", "left":
		m.exp.ClosePreview()
		return nil
	case "ctrl+c":
		return tea.Quit
	case "g", "home":
		m.viewport.GotoTop()
		return nil
	case "G", "end":
		m.viewport.GotoBottom()
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	mode := m.exp.Mode()

	switch msg.String() {
	case "esc":
		m.exp.CancelInput()
		m.textInput.Blur()
		m.textInput.SetValue("")
		return nil
	case "ctrl+c":
		return tea.Quit
	case "enter":
		m.exp.SetInput(m.textInput.Value())
		m.textInput.Blur()
		m.textInput.SetValue("")
		if err := m.exp.ConfirmInput(); err != nil && m.exp.Message() == "" {
			m.setError(err.Error())
		}
		m.afterAction()
		return nil
	case "up":
		if mode == explorer.ModeCommand {
			m.textInput.SetValue(m.exp.HistoryPrev())
			m.textInput.CursorEnd()
			return nil
		}
	case "down":
		if mode == explorer.ModeCommand {
			m.textInput.SetValue(m.exp.HistoryNext())
			m.textInput.CursorEnd()
			return nil
		}
	}

	var cmds []tea.Cmd
	if mode == explorer.ModeSearch {
		cmds = append(cmds, m.bufferRunes(msg))
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)
	m.exp.SetInput(m.textInput.Value())
	return tea.Batch(cmds...)
}

// startInput focuses the prompt for a mode the explorer has just entered.
func (m *model) startInput(placeholder string) tea.Cmd {
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue(m.exp.Input())
	m.textInput.CursorEnd()
	return m.textInput.Focus()
}

func (m *model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	// A burst of several runes is raw pasted text, not a command key
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 1 {
		return m.bufferRunes(msg)
	}
	dropCmd := m.bufferRunes(msg)

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.exp.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.exp.MoveDown()
	case key.Matches(msg, m.keys.Top):
		m.exp.MoveToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.exp.MoveToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.exp.MoveBy(m.listHeight() / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.exp.MoveBy(-m.listHeight() / 2)

	case key.Matches(msg, m.keys.Expand):
		if n, ok := m.exp.Current(); ok && !n.IsDir {
			if m.exp.OpenPreview() {
				m.loadFullPreview()
			}
		} else {
			m.exp.ExpandCurrent()
		}
	case key.Matches(msg, m.keys.Collapse):
		m.exp.CollapseCurrent()
	case key.Matches(msg, m.keys.Toggle):
		m.exp.ToggleExpand()
	case key.Matches(msg, m.keys.ExpandAll):
		m.exp.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.exp.CollapseAll()

	case key.Matches(msg, m.keys.Mark):
		m.exp.ToggleMark()
	case key.Matches(msg, m.keys.ClearMarks):
		m.exp.ClearMarks()
	case key.Matches(msg, m.keys.Yank):
		m.exp.Yank()
	case key.Matches(msg, m.keys.Cut):
		m.exp.Cut()
	case key.Matches(msg, m.keys.Paste):
		m.exp.Paste()
		m.quickPath = ""
	case key.Matches(msg, m.keys.Delete):
		m.exp.ConfirmDelete()
	case key.Matches(msg, m.keys.Rename):
		if m.exp.StartRename() {
			cmd = m.startInput("new name")
		}
	case key.Matches(msg, m.keys.NewFile):
		m.exp.StartNewFile()
		cmd = m.startInput("file name")
	case key.Matches(msg, m.keys.NewDir):
		m.exp.StartNewDir()
		cmd = m.startInput("directory name")

	case key.Matches(msg, m.keys.Search):
		m.exp.StartSearch()
		cmd = m.startInput("Type to search...")
	case key.Matches(msg, m.keys.SearchNext):
		if m.exp.LastQuery() == "" {
			m.setStatus("No previous search")
		} else {
			m.exp.SearchNext()
		}
	case key.Matches(msg, m.keys.Refresh):
		m.exp.Refresh()
		m.quickPath = ""
	case key.Matches(msg, m.keys.ToggleHidden):
		m.exp.ToggleHidden()
	case key.Matches(msg, m.keys.CopyPath):
		if n, ok := m.exp.Current(); ok {
			m.copyToClipboard(n.Path)
		}
	case key.Matches(msg, m.keys.CopyName):
		if name := m.exp.SelectedName(); name != "" {
			m.copyToClipboard(name)
		}
	case key.Matches(msg, m.keys.Open):
		cmd = m.openSelected()
	case key.Matches(msg, m.keys.Preview):
		if m.exp.OpenPreview() {
			m.loadFullPreview()
		}
	case key.Matches(msg, m.keys.QuickPreview):
		m.exp.ToggleQuickPreview()
		m.quickPath = ""
	case key.Matches(msg, m.keys.Command):
		m.exp.StartCommand()
		cmd = m.startInput("command, " + explorer.PathPlaceholder + " is the selection")
	case key.Matches(msg, m.keys.RunLast):
		m.exp.RunLast()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	}

	m.afterAction()
	return tea.Batch(cmd, dropCmd)
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	mode := m.exp.Mode()
	if mode == explorer.ModePreview {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	if mode != explorer.ModeNormal || m.showHelp {
		return nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.exp.ScrollUp(wheelLines)
	case msg.Button == tea.MouseButtonWheelDown:
		m.exp.ScrollDown(wheelLines)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		row := msg.Y - listTop
		if row < 0 || row >= m.listHeight() {
			return nil
		}
		m.exp.Click(row, time.Now())
	default:
		return nil
	}
	m.afterAction()
	return nil
}

// afterAction keeps the cursor on screen and picks up explorer messages.
func (m *model) afterAction() {
	m.exp.AdjustScroll(m.listHeight())
	m.syncStatus()
	m.updateQuickPreview()
}
