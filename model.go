package main

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/LFroesch/canopy/internal/config"
	"github.com/LFroesch/canopy/internal/explorer"
	"github.com/LFroesch/canopy/internal/preview"
)

// dropTickMsg polls the drop buffer while raw input is pending.
type dropTickMsg time.Time

// editorFinishedMsg reports the end of an external editor session.
type editorFinishedMsg struct {
	path string
	err  error
}

// Terminal dimension constants
const (
	minTerminalWidth  = 60
	minTerminalHeight = 20
	uiOverhead        = 5 // header (1) + status (1) + list border (2) + list title (1)
)

// Application behavior constants
const (
	statusDuration      = 2 * time.Second
	errorStatusDuration = 3 * time.Second
	dropTickInterval    = 50 * time.Millisecond
	wheelLines          = 3
	quickPreviewRatio   = 3 // the quick preview takes 1/3 of the content height
)

type model struct {
	exp  *explorer.Explorer
	cfg  *config.Config
	keys keyMap

	textInput textinput.Model
	viewport  viewport.Model
	help      help.Model

	width  int
	height int

	showHelp     bool
	statusMsg    string
	statusExpiry time.Time

	// quick preview cache, reloaded only when the selection moves
	quickPath    string
	quickContent preview.Content
	quickErr     error
}

func newModel(exp *explorer.Explorer, cfg *config.Config) *model {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 50

	return &model{
		exp:       exp,
		cfg:       cfg,
		keys:      defaultKeyMap(),
		textInput: ti,
		viewport:  viewport.New(0, 0),
		help:      help.New(),
	}
}

// Helper methods for safe dimensions
func (m *model) getSafeWidth() int {
	if m.width < minTerminalWidth {
		return minTerminalWidth
	}
	return m.width
}

func (m *model) getSafeHeight() int {
	if m.height < minTerminalHeight {
		return minTerminalHeight
	}
	return m.height
}

// getContentHeight returns the rows available to the whole content area.
func (m *model) getContentHeight() int {
	h := m.getSafeHeight() - uiOverhead
	if h < 3 {
		h = 3
	}
	return h
}

// quickPreviewHeight is the number of preview rows under the tree, or zero
// when the panel is hidden.
func (m *model) quickPreviewHeight() int {
	if !m.exp.QuickPreview() {
		return 0
	}
	return m.getContentHeight() / quickPreviewRatio
}

// listHeight is the number of tree rows that fit on screen.
func (m *model) listHeight() int {
	h := m.getContentHeight()
	if qh := m.quickPreviewHeight(); qh > 0 {
		h -= qh + 3 // panel border and title
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(statusDuration)
}

func (m *model) setError(msg string) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(errorStatusDuration)
}

// syncStatus moves a message left by the explorer into the status bar.
func (m *model) syncStatus() {
	if msg := m.exp.TakeMessage(); msg != "" {
		m.setStatus(msg)
	}
}
