// Package preview turns a file or directory into lines for the preview
// pane: highlighted source, rendered markdown, a hex dump, a half-block
// image or a directory summary.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/LFroesch/canopy/internal/utils"
	"golang.org/x/text/encoding/unicode"
)

// Kind is what a Content holds.
type Kind int

const (
	Text Kind = iota
	Markdown
	Hex
	Image
	Directory
)

const (
	// MaxTextBytes caps how much of a file is read.
	MaxTextBytes = 1 << 20

	FullHexLines  = 100
	QuickHexLines = 50

	sniffSize = 8192
)

// Options controls how much is rendered.
type Options struct {
	Width  int
	Height int
	// Quick limits output for the inline panel.
	Quick bool
	// Plain disables syntax highlighting and markdown rendering.
	Plain bool
}

// Content is a rendered preview.
type Content struct {
	Path  string
	Kind  Kind
	Lines []string
	// Truncated is set when the file was larger than what was read.
	Truncated bool
}

// Load renders path for display. Images that fail to decode fall back to
// a hex dump.
func Load(path string, opts Options) (Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Content{}, err
	}
	if info.IsDir() {
		lines, err := DirectorySummary(path)
		if err != nil {
			return Content{}, err
		}
		return Content{Path: path, Kind: Directory, Lines: lines}, nil
	}

	hexLines := FullHexLines
	if opts.Quick {
		hexLines = QuickHexLines
	}

	if utils.IsImageFile(path) && opts.Width > 0 && opts.Height > 0 {
		if lines, err := LoadImage(path, opts.Width, opts.Height); err == nil {
			return Content{Path: path, Kind: Image, Lines: lines}, nil
		}
	}

	data, err := readHead(path, MaxTextBytes)
	if err != nil {
		return Content{}, err
	}
	truncated := info.Size() > int64(len(data))

	text, ok := DecodeText(data)
	if !ok {
		return Content{Path: path, Kind: Hex, Lines: HexDump(data, hexLines), Truncated: truncated}, nil
	}

	c := Content{Path: path, Kind: Text, Truncated: truncated}
	switch {
	case opts.Plain:
		c.Lines = splitLines(text)
	case utils.IsMarkdownFile(path):
		if lines, err := RenderMarkdown(text, opts.Width); err == nil {
			c.Kind = Markdown
			c.Lines = lines
		} else {
			c.Lines = splitLines(text)
		}
	default:
		c.Lines = Highlight(path, text)
	}
	if opts.Quick && opts.Height > 0 && len(c.Lines) > opts.Height {
		c.Lines = c.Lines[:opts.Height]
	}
	return c, nil
}

func readHead(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

// DecodeText returns data as UTF-8 text. BOM-marked UTF-8 and UTF-16 are
// decoded; anything with NUL bytes or invalid UTF-8 near the start is
// treated as binary.
func DecodeText(data []byte) (string, bool) {
	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := decoder.Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	sample := data
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
		// Do not judge a rune cut at the sample boundary
		for i := 0; i < utf8.UTFMax && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	if bytes.IndexByte(sample, 0) != -1 || !utf8.Valid(sample) {
		return "", false
	}
	return strings.ToValidUTF8(string(data), "�"), true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// HexDump formats data as 16 bytes per line, hex then printable ASCII.
func HexDump(data []byte, maxLines int) []string {
	var lines []string
	for off := 0; off < len(data) && len(lines) < maxLines; off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		hex := make([]string, len(chunk))
		ascii := make([]byte, len(chunk))
		for i, b := range chunk {
			hex[i] = fmt.Sprintf("%02x", b)
			if b >= 0x20 && b <= 0x7E {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		lines = append(lines, fmt.Sprintf("%08x  %-48s %s", off, strings.Join(hex, " "), ascii))
	}
	return lines
}

// DirectorySummary counts the immediate entries of a directory.
func DirectorySummary(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files, dirs, hidden int
	var size int64
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			hidden++
		}
		info, err := os.Stat(filepath.Join(path, entry.Name()))
		if err != nil {
			continue
		}
		if info.IsDir() {
			dirs++
		} else {
			files++
			size += info.Size()
		}
	}

	lines := []string{
		"[Directory]",
		"",
		fmt.Sprintf("  Files: %d", files),
		fmt.Sprintf("  Directories: %d", dirs),
	}
	if hidden > 0 {
		lines = append(lines, fmt.Sprintf("  Hidden: %d", hidden))
	}
	lines = append(lines, fmt.Sprintf("  Size: %s", utils.FormatFileSize(size)))
	return lines, nil
}
