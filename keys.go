package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the normal mode bindings. Input modes handle their keys
// directly in Update.
type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	Expand       key.Binding
	Collapse     key.Binding
	Toggle       key.Binding
	ExpandAll    key.Binding
	CollapseAll  key.Binding

	Mark       key.Binding
	ClearMarks key.Binding
	Yank       key.Binding
	Cut        key.Binding
	Paste      key.Binding
	Delete     key.Binding
	Rename     key.Binding
	NewFile    key.Binding
	NewDir     key.Binding

	Search       key.Binding
	SearchNext   key.Binding
	Refresh      key.Binding
	ToggleHidden key.Binding
	CopyPath     key.Binding
	CopyName     key.Binding
	Open         key.Binding
	Preview      key.Binding
	QuickPreview key.Binding
	Command      key.Binding
	RunLast      key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down")),
		Top:          key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "go to top")),
		Bottom:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "go to bottom")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "half page down")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "half page up")),
		Expand:       key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter/l", "expand / preview")),
		Collapse:     key.NewBinding(key.WithKeys("backspace", "h", "left"), key.WithHelp("h/←", "collapse / parent")),
		Toggle:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle expand")),
		ExpandAll:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "expand all")),
		CollapseAll:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "collapse all")),

		Mark:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		ClearMarks: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear marks")),
		Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Cut:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cut")),
		Paste:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste")),
		Delete:     key.NewBinding(key.WithKeys("D", "delete"), key.WithHelp("D", "delete")),
		Rename:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		NewFile:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new file")),
		NewDir:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "new directory")),

		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		SearchNext:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		Refresh:      key.NewBinding(key.WithKeys("R", "f5"), key.WithHelp("R", "refresh")),
		ToggleHidden: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "toggle hidden")),
		CopyPath:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy path")),
		CopyName:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "copy name")),
		Open:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Preview:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "preview")),
		QuickPreview: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "quick preview")),
		Command:      key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "run command")),
		RunLast:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "rerun command")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mark, k.Yank, k.Cut, k.Paste, k.Help}
}

// FullHelp is the help screen, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp, k.Expand, k.Collapse, k.Toggle, k.ExpandAll, k.CollapseAll},
		{k.Mark, k.ClearMarks, k.Yank, k.Cut, k.Paste, k.Delete, k.Rename, k.NewFile, k.NewDir},
		{k.Search, k.SearchNext, k.Refresh, k.ToggleHidden, k.Preview, k.QuickPreview, k.CopyPath, k.CopyName, k.Open, k.Command, k.RunLast, k.Help, k.Quit},
	}
}
