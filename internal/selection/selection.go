// Package selection tracks the cursor, the scroll window and the set of
// marked paths. Marks are keyed by path so they survive tree rebuilds.
package selection

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultDoubleClick is the window in which a second click on the same row
// counts as a double click.
const DefaultDoubleClick = 400 * time.Millisecond

// State is the cursor, scroll offset, marks and last click.
type State struct {
	Cursor int
	Offset int

	DoubleClick time.Duration

	marked    map[string]bool
	lastIndex int
	lastClick time.Time
}

// New returns an empty selection at index 0.
func New() *State {
	return &State{
		DoubleClick: DefaultDoubleClick,
		marked:      make(map[string]bool),
		lastIndex:   -1,
	}
}

// Clamp keeps the cursor within [0, n-1]. With n == 0 the cursor is 0.
func (s *State) Clamp(n int) {
	if s.Cursor >= n {
		s.Cursor = n - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

func (s *State) MoveUp(n int) {
	s.Cursor--
	s.Clamp(n)
}

func (s *State) MoveDown(n int) {
	s.Cursor++
	s.Clamp(n)
}

func (s *State) MoveBy(delta, n int) {
	s.Cursor += delta
	s.Clamp(n)
}

func (s *State) MoveToTop() {
	s.Cursor = 0
}

func (s *State) MoveToBottom(n int) {
	s.Cursor = n - 1
	s.Clamp(n)
}

// ToggleMark flips path in the marked set and advances the cursor by one,
// stopping at the last row.
func (s *State) ToggleMark(path string, n int) {
	if s.marked[path] {
		delete(s.marked, path)
	} else {
		s.marked[path] = true
	}
	s.MoveDown(n)
}

func (s *State) IsMarked(path string) bool {
	return s.marked[path]
}

func (s *State) MarkCount() int {
	return len(s.marked)
}

// Marked returns the marked paths in sorted order.
func (s *State) Marked() []string {
	paths := make([]string, 0, len(s.marked))
	for p := range s.marked {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (s *State) ClearMarks() {
	s.marked = make(map[string]bool)
}

// RemapMarks moves marks on oldPath, and on anything beneath it, to newPath.
func (s *State) RemapMarks(oldPath, newPath string) {
	remapped := make(map[string]bool, len(s.marked))
	for p := range s.marked {
		remapped[RemapPath(p, oldPath, newPath)] = true
	}
	s.marked = remapped
}

// RemapPath rewrites p if it is oldPath or lies beneath it.
func RemapPath(p, oldPath, newPath string) string {
	if p == oldPath {
		return newPath
	}
	prefix := oldPath + string(filepath.Separator)
	if strings.HasPrefix(p, prefix) {
		return filepath.Join(newPath, strings.TrimPrefix(p, prefix))
	}
	return p
}

// OperativePaths is the input to every bulk operation: the marked paths if
// any, else current, else nothing.
func (s *State) OperativePaths(current string) []string {
	if len(s.marked) > 0 {
		return s.Marked()
	}
	if current != "" {
		return []string{current}
	}
	return nil
}

// Click moves the cursor to index and reports whether it completed a
// double click on the same row.
func (s *State) Click(index int, now time.Time) bool {
	double := index == s.lastIndex && !s.lastClick.IsZero() && now.Sub(s.lastClick) <= s.DoubleClick
	s.Cursor = index
	if double {
		// A third click starts over
		s.lastIndex = -1
		s.lastClick = time.Time{}
		return true
	}
	s.lastIndex = index
	s.lastClick = now
	return false
}

// EnsureVisible moves the offset by the least amount that puts the cursor
// inside [Offset, Offset+height).
func (s *State) EnsureVisible(height, n int) {
	if height < 1 {
		height = 1
	}
	if s.Cursor < s.Offset {
		s.Offset = s.Cursor
	} else if s.Cursor >= s.Offset+height {
		s.Offset = s.Cursor - height + 1
	}
	if maxOffset := n - height; s.Offset > maxOffset {
		s.Offset = maxOffset
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
}

// Window returns the half-open range of visible rows.
func (s *State) Window(height, n int) (int, int) {
	end := s.Offset + height
	if end > n {
		end = n
	}
	return s.Offset, end
}
