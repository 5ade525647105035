// Package drop tells a typed search query apart from file paths that were
// pasted or dragged into the terminal.
package drop

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sigil is the key that starts a search. Text starting with it that is not
// a path is a search query.
const Sigil = "/"

// Kind is the interpretation of a piece of input text.
type Kind int

const (
	None Kind = iota
	Search
	Paths
)

// Result is the outcome of Classify.
type Result struct {
	Kind  Kind
	Paths []string
	Query string
}

// Exists reports whether path is present on disk, without following a
// final symlink.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// shellEscaped lists the characters a shell or terminal escapes with a
// backslash when it inserts a path.
const shellEscaped = ` '"\()[]&;!$` + "`"

// Normalize strips one layer of matching surrounding quotes and removes
// the backslash from escaped shell metacharacters.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if first == last && (first == '\'' || first == '"') {
			text = text[1 : len(text)-1]
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && strings.ContainsRune(shellEscaped, runes[i+1]) {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// ParsePaths extracts existing absolute paths from text. Newline separated
// text is read one path per line; otherwise the text is split on unquoted
// whitespace, honouring quotes and backslash escapes.
func ParsePaths(text string, exists func(string) bool) []string {
	text = strings.TrimSpace(text)
	var paths []string
	keep := func(p string) {
		if p != "" && filepath.IsAbs(p) && exists(p) {
			paths = append(paths, filepath.Clean(p))
		}
	}

	if strings.Contains(text, "\n") {
		for _, line := range strings.Split(text, "\n") {
			keep(Normalize(strings.TrimRight(line, "\r")))
		}
		return paths
	}

	for _, token := range tokenize(text) {
		keep(token)
	}
	return paths
}

func tokenize(text string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '\\':
			if i+1 < len(runes) {
				i++
				current.WriteRune(runes[i])
			}
		case c == ' ' || c == '\t':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(c)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// Classify decides whether text is one or more dropped paths, a search
// query introduced by Sigil, or neither. A lone sigil is always a search.
func Classify(text string, exists func(string) bool) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}
	}
	if text == Sigil {
		return Result{Kind: Search}
	}

	if normalized := Normalize(text); strings.HasPrefix(normalized, "/") && exists(normalized) {
		return Result{Kind: Paths, Paths: []string{filepath.Clean(normalized)}}
	}
	if paths := ParsePaths(text, exists); len(paths) > 0 {
		return Result{Kind: Paths, Paths: paths}
	}
	if strings.HasPrefix(text, Sigil) {
		return Result{Kind: Search, Query: strings.TrimPrefix(text, Sigil)}
	}
	return Result{}
}

const (
	DefaultGap  = 50 * time.Millisecond
	DefaultIdle = 100 * time.Millisecond
)

// Buffer collects raw key input so a burst of characters (a paste without
// bracketed paste support) can be read as one piece of text. A pause
// longer than Gap starts a new burst; a burst is ready once Idle has passed
// with no input.
type Buffer struct {
	Gap  time.Duration
	Idle time.Duration

	text strings.Builder
	last time.Time
}

// NewBuffer returns a Buffer with the default timings.
func NewBuffer() *Buffer {
	return &Buffer{Gap: DefaultGap, Idle: DefaultIdle}
}

// Add appends input received at now.
func (b *Buffer) Add(s string, now time.Time) {
	if now.Sub(b.last) > b.Gap {
		b.text.Reset()
	}
	b.text.WriteString(s)
	b.last = now
}

// Pending reports whether a burst is waiting to be flushed.
func (b *Buffer) Pending() bool {
	return b.text.Len() > 0
}

// Flush returns the buffered burst once input has been idle long enough,
// and empties the buffer.
func (b *Buffer) Flush(now time.Time) (string, bool) {
	if b.text.Len() == 0 || now.Sub(b.last) < b.Idle {
		return "", false
	}
	text := strings.TrimSpace(b.text.String())
	b.text.Reset()
	return text, true
}

// Reset drops anything buffered.
func (b *Buffer) Reset() {
	b.text.Reset()
}
