package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LFroesch/canopy/internal/explorer"
	"github.com/LFroesch/canopy/internal/git"
	"github.com/LFroesch/canopy/internal/tree"
	"github.com/LFroesch/canopy/internal/utils"
)

const dialogWidth = 60

var gitColors = map[git.Status]lipgloss.Color{
	git.Modified:  lipgloss.Color("214"),
	git.Added:     lipgloss.Color("82"),
	git.Deleted:   lipgloss.Color("196"),
	git.Renamed:   lipgloss.Color("105"),
	git.Untracked: lipgloss.Color("81"),
	git.Ignored:   lipgloss.Color("240"),
	git.Conflict:  lipgloss.Color("201"),
}

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var mainContent string
	switch {
	case m.showHelp:
		mainContent = m.renderHelpView()
	default:
		switch m.exp.Mode() {
		case explorer.ModeConfirmDelete:
			mainContent = m.renderConfirmDeleteView()
		case explorer.ModeRename:
			mainContent = m.renderInputDialog("✏️  Rename", "Enter new name:", "105")
		case explorer.ModeNewFile:
			mainContent = m.renderInputDialog("📄 Create New File", "Enter file name:", "105")
		case explorer.ModeNewDir:
			mainContent = m.renderInputDialog("📁 Create New Directory", "Enter directory name:", "105")
		case explorer.ModeCommand:
			mainContent = m.renderInputDialog("⚡ Run Command", m.commandHint(), "214")
		case explorer.ModePreview:
			mainContent = m.renderPreviewView()
		default:
			mainContent = m.renderTree(m.width)
			if m.exp.QuickPreview() {
				mainContent = lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderQuickPreview(m.width))
			}
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		mainContent,
		m.renderStatusBar(),
	)
}

func (m *model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(m.width)

	title := fmt.Sprintf("🌳 Canopy - %s", m.exp.RootPath())
	if m.exp.Mode() != explorer.ModeSearch {
		return titleStyle.Render(utils.Truncate(title, m.width-2))
	}

	purpleStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("105"))
	label := purpleStyle.Render("🔍 SEARCH: ")
	hint := purpleStyle.Render(" (Enter: find | ESC: cancel)")
	search := label + m.textInput.View() + hint

	titleWidth := m.width - lipgloss.Width(search) - 2
	if titleWidth < 20 {
		titleWidth = 20
	}
	baseStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Width(titleWidth).
		Padding(0, 1)
	titlePart := baseStyle.Render(utils.Truncate(title, titleWidth-2))

	return lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, titlePart, search))
}

func (m *model) renderStatusBar() string {
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width)

	t := m.exp.Tree()
	sel := m.exp.Selection()

	var statusText string
	if t.Len() > 0 {
		statusText = fmt.Sprintf("%d/%d", sel.Cursor+1, t.Len())
	}
	if branch := m.exp.Branch(); branch != "" {
		statusText += fmt.Sprintf(" | Branch: %s", branch)
	}
	if n := sel.MarkCount(); n > 0 {
		statusText += fmt.Sprintf(" | %d marked", n)
	}
	if clip := m.exp.Clipboard(); len(clip.Paths) > 0 {
		op := "copied"
		if clip.Kind == explorer.ClipboardCut {
			op = "cut"
		}
		statusText += fmt.Sprintf(" | %d %s", len(clip.Paths), op)
	}
	if t.ShowHidden() {
		statusText += " | hidden shown"
	}
	if m.statusMsg != "" {
		statusText += " | " + m.statusMsg
	}

	rightSide := "? for help"
	totalWidth := m.width - 2
	maxLeft := totalWidth - lipgloss.Width(rightSide) - 3
	if lipgloss.Width(statusText) > maxLeft {
		statusText = utils.Truncate(statusText, maxLeft)
	}
	padding := totalWidth - lipgloss.Width(statusText) - lipgloss.Width(rightSide)
	if padding < 1 {
		padding = 1
	}
	statusText += strings.Repeat(" ", padding) + rightSide

	return statusStyle.Render(statusText)
}

func (m *model) renderTree(width int) string {
	height := m.listHeight()
	t := m.exp.Tree()
	sel := m.exp.Selection()
	start, end := sel.Window(height, t.Len())

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))
	indicator := ""
	if start > 0 {
		indicator += " ▲ more above"
	}
	if end < t.Len() {
		indicator += " ▼ more below"
	}
	header := headerStyle.Render("🌳 Tree") + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(indicator)

	rowWidth := width - 4
	var items []string
	for i := start; i < end; i++ {
		n, _ := t.Lookup(i)
		items = append(items, m.renderRow(n, i == sel.Cursor, rowWidth))
	}
	if len(items) == 0 {
		items = append(items, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("(empty)"))
	}

	listStyle := lipgloss.NewStyle().
		Width(rowWidth).
		Height(height)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width - 2)

	return borderStyle.Render(header + "\n" + listStyle.Render(strings.Join(items, "\n")))
}

// renderRow draws one tree entry: mark, indent, icon, name, git symbol.
func (m *model) renderRow(n *tree.Node, selected bool, width int) string {
	marked := m.exp.Selection().IsMarked(n.Path)
	clip := m.exp.Clipboard()
	isCut := clip.Kind == explorer.ClipboardCut && clip.Contains(n.Path)
	status := m.exp.Status(n.Path)

	mark := "  "
	if marked {
		mark = "● "
	}
	indent := strings.Repeat("  ", n.Depth)
	icon := utils.GetFileIcon(n.Name, n.IsDir, n.Expanded)
	suffix := ""
	if n.IsDir {
		suffix = "/"
	}
	if n.IsSymlink {
		suffix += " ↪"
	}
	symbol := status.Symbol()

	prefix := mark + indent + icon + " "
	nameWidth := width - lipgloss.Width(prefix) - lipgloss.Width(symbol) - 2
	name := utils.Truncate(n.Name+suffix, nameWidth)

	if selected {
		line := prefix + name
		if symbol != "" {
			line += " " + symbol
		}
		return lipgloss.NewStyle().
			Background(lipgloss.Color("57")).
			Foreground(lipgloss.Color("230")).
			Width(width).
			Render(line)
	}

	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	if color, ok := gitColors[status]; ok {
		nameStyle = nameStyle.Foreground(color)
	}
	if n.IsDir && status == git.None {
		nameStyle = nameStyle.Foreground(lipgloss.Color("111")).Bold(true)
	}
	if isCut {
		nameStyle = nameStyle.Foreground(lipgloss.Color("240")).Italic(true)
	}

	var styledName string
	if matches := m.exp.MatchIndexes(name); len(matches) > 0 {
		styledName = utils.HighlightMatches(name, matches)
	} else {
		styledName = nameStyle.Render(name)
	}

	styledMark := mark
	if marked {
		styledMark = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Render(mark)
	}
	line := styledMark + indent + icon + " " + styledName
	if symbol != "" {
		line += " " + lipgloss.NewStyle().Foreground(gitColors[status]).Bold(true).Render(symbol)
	}
	return line
}

func (m *model) renderQuickPreview(width int) string {
	height := m.quickPreviewHeight()

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))
	title := "👁 Preview"
	if m.quickPath != "" {
		title += ": " + filepath.Base(m.quickPath)
	}
	header := headerStyle.Render(utils.Truncate(title, width-6))

	var lines []string
	switch {
	case m.quickErr != nil:
		lines = []string{fmt.Sprintf("Cannot preview: %v", m.quickErr)}
	case len(m.quickContent.Lines) == 0:
		lines = []string{"No preview available"}
	default:
		lines = m.quickContent.Lines
		if len(lines) > height {
			lines = lines[:height]
		}
	}

	contentStyle := lipgloss.NewStyle().
		Width(width - 6).
		Height(height).
		MaxHeight(height)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width - 2)

	return borderStyle.Render(header + "\n" + contentStyle.Render(strings.Join(lines, "\n")))
}

func (m *model) renderPreviewView() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))
	footerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	title := fmt.Sprintf("👁 Preview: %s", filepath.Base(m.exp.PreviewPath()))
	footer := fmt.Sprintf(" %3.f%%  (ESC/q to close)", m.viewport.ScrollPercent()*100)
	header := headerStyle.Render(utils.Truncate(title, m.width-6-lipgloss.Width(footer))) + footerStyle.Render(footer)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2)

	return borderStyle.Render(header + "\n" + m.viewport.View())
}

func (m *model) renderConfirmDeleteView() string {
	pending := m.exp.Pending()
	if pending == nil {
		return ""
	}

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Width(dialogWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196"))

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(1, 0)

	promptStyle := lipgloss.NewStyle().
		Bold(true)

	title := titleStyle.Render(fmt.Sprintf("⚠️  Delete %d %s?", len(pending.Paths), plural(len(pending.Paths), "item")))

	var body strings.Builder
	if len(pending.Paths) == 1 {
		fmt.Fprintf(&body, "Are you sure you want to delete:\n\n%s", filepath.Base(pending.Paths[0]))
	} else {
		body.WriteString("Are you sure you want to delete:\n")
		for i, p := range pending.Paths {
			if i == 5 {
				fmt.Fprintf(&body, "\n  ... and %d more", len(pending.Paths)-5)
				break
			}
			fmt.Fprintf(&body, "\n  %s", utils.Truncate(filepath.Base(p), dialogWidth-10))
		}
	}
	if pending.HasDirectories {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		body.WriteString("\n\n" + warn.Render("Directories are deleted with everything inside them."))
	}
	if m.cfg.UseTrash {
		body.WriteString("\n\nThis will move it to trash if available.")
	}

	content := contentStyle.Render(body.String())
	prompt := promptStyle.Render("Press 'y' to confirm, 'n' or ESC to cancel")

	return m.center(dialogStyle.Render(title + "\n" + content + "\n" + prompt))
}

func (m *model) renderInputDialog(title, label, color string) string {
	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(1, 2).
		Width(dialogWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color))

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(1, 0)

	dialog := titleStyle.Render(title) + "\n" + contentStyle.Render(label) + "\n" + m.textInput.View()
	return m.center(dialogStyle.Render(dialog))
}

func (m *model) commandHint() string {
	hint := fmt.Sprintf("%s is replaced by the selected path. ↑/↓ for history.", explorer.PathPlaceholder)
	if last := m.exp.LastCommand(); last != "" {
		hint += "\nLast: " + utils.Truncate(last, dialogWidth-12)
	}
	return hint
}

// center places a dialog in the middle of the content area.
func (m *model) center(dialog string) string {
	return lipgloss.Place(m.width, m.getContentHeight()+2, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *model) renderHelpView() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("105"))

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(m.getContentHeight() + 1)

	m.help.ShowAll = true
	body := m.help.View(m.keys)

	extra := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(
		"Mouse: click to select, double click to expand, wheel to scroll.\n" +
			"Paste or drop file paths to copy them into the selected directory.\n" +
			"Press ? or ESC to close this help.")

	return borderStyle.Render(headerStyle.Render("❓ Help") + "\n\n" + body + "\n\n" + extra)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
