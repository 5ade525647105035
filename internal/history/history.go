// Package history keeps the external command history, one command per
// line, rewritten in full on every addition.
package history

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the history file inside the config directory.
const FileName = "history.txt"

// History is the command list plus a recall cursor.
type History struct {
	path    string
	entries []string
	cursor  int // -1 when not recalling
}

// Load reads the history at path. A missing file is an empty history.
func Load(path string) (*History, error) {
	h := &History{path: path, cursor: -1}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return h, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	return h, scanner.Err()
}

// Entries returns the commands, oldest first.
func (h *History) Entries() []string { return h.entries }

// Last returns the most recent command.
func (h *History) Last() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// Add moves cmd to the end of the history and saves it.
func (h *History) Add(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	h.cursor = -1
	if cmd == "" || strings.ContainsAny(cmd, "\r\n") {
		return nil
	}

	kept := h.entries[:0]
	for _, e := range h.entries {
		if e != cmd {
			kept = append(kept, e)
		}
	}
	h.entries = append(kept, cmd)
	return h.save()
}

func (h *History) save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return os.WriteFile(h.path, []byte(b.String()), 0644)
}

// Reset ends a recall sequence.
func (h *History) Reset() { h.cursor = -1 }

// Prev steps back to an older command, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor < 0:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps towards newer commands. Past the newest it returns "" and
// leaves recall.
func (h *History) Next() (string, bool) {
	if len(h.entries) == 0 || h.cursor < 0 {
		return "", false
	}
	if h.cursor+1 >= len(h.entries) {
		h.cursor = -1
		return "", true
	}
	h.cursor++
	return h.entries[h.cursor], true
}
