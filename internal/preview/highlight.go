package preview

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

const highlightStyle = "dracula"

// Highlight colours source text for a 256-colour terminal, one entry per
// line so the caller can scroll. Unknown file types come back plain.
func Highlight(path, text string) []string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return splitLines(text)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, strings.ReplaceAll(text, "\t", "    "))
	if err != nil {
		return splitLines(text)
	}

	style := styles.Get(highlightStyle)
	formatter := formatters.Get("terminal256")

	var lines []string
	var buf bytes.Buffer
	for _, tokens := range chroma.SplitTokensIntoLines(iterator.Tokens()) {
		// The newline would otherwise land inside the colour escape
		if n := len(tokens); n > 0 {
			tokens[n-1].Value = strings.TrimRight(tokens[n-1].Value, "\r\n")
		}
		buf.Reset()
		if err := formatter.Format(&buf, style, chroma.Literator(tokens...)); err != nil {
			return splitLines(text)
		}
		lines = append(lines, buf.String())
	}
	return lines
}

// RenderMarkdown renders markdown for the terminal, wrapped to width.
func RenderMarkdown(text string, width int) ([]string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n"), nil
}
