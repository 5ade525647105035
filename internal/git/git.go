// Package git overlays `git status` onto tree entries.
package git

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/LFroesch/canopy/internal/logger"
)

// Status is the state of one path as reported by git.
type Status int

const (
	None Status = iota
	Modified
	Added
	Deleted
	Renamed
	Untracked
	Ignored
	Conflict
)

func (s Status) String() string {
	switch s {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	case Untracked:
		return "untracked"
	case Ignored:
		return "ignored"
	case Conflict:
		return "conflict"
	}
	return ""
}

// Symbol is the one-letter marker shown next to an entry.
func (s Status) Symbol() string {
	switch s {
	case Modified:
		return "M"
	case Added:
		return "A"
	case Deleted:
		return "D"
	case Renamed:
		return "R"
	case Untracked:
		return "?"
	case Ignored:
		return "!"
	case Conflict:
		return "U"
	}
	return ""
}

// Source answers status lookups. It is refreshed explicitly and never
// watches the repository.
type Source interface {
	Status(path string) Status
	Branch() string
	Refresh(dir string)
}

// runGit is replaced in tests.
var runGit = func(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// Repo is a Source backed by the git command line. Outside a repository
// every lookup returns None.
type Repo struct {
	root     string
	branch   string
	statuses map[string]Status
	dirs     map[string]Status
}

// NewRepo loads the status of the repository containing dir.
func NewRepo(dir string) *Repo {
	r := &Repo{}
	r.Refresh(dir)
	return r
}

var _ Source = (*Repo)(nil)

// Root returns the repository's top level, or "" outside a repository.
func (r *Repo) Root() string { return r.root }

// Branch returns the checked out branch name.
func (r *Repo) Branch() string { return r.branch }

// Refresh reloads statuses for the repository containing dir.
func (r *Repo) Refresh(dir string) {
	r.root, r.branch = "", ""
	r.statuses = make(map[string]Status)
	r.dirs = make(map[string]Status)

	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return
	}
	r.root = filepath.Clean(strings.TrimSpace(string(out)))

	if out, err := runGit(r.root, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		r.branch = strings.TrimSpace(string(out))
	}

	out, err = runGit(r.root, "status", "--porcelain", "-z", "-uall", "--ignored")
	if err != nil {
		logger.Warn("git status failed in %s: %v", r.root, err)
		return
	}
	r.statuses = parsePorcelain(out, r.root)
	r.dirs = aggregate(r.statuses, r.root)
}

// Status returns the status of path. Directories take the strongest
// status of anything beneath them; entries inside an ignored directory are
// ignored.
func (r *Repo) Status(path string) Status {
	if r.root == "" {
		return None
	}
	if s, ok := r.statuses[path]; ok {
		return s
	}
	if s, ok := r.dirs[path]; ok {
		return s
	}
	if !strings.HasPrefix(path, r.root) {
		return None
	}
	for dir := filepath.Dir(path); dir != r.root && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if r.statuses[dir] == Ignored {
			return Ignored
		}
	}
	return None
}

// parsePorcelain reads `git status --porcelain -z` output. Each record is
// "XY path"; renames and copies are followed by a second record holding
// the original path.
func parsePorcelain(out []byte, root string) map[string]Status {
	statuses := make(map[string]Status)
	records := bytes.Split(out, []byte{0})
	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if len(rec) < 4 {
			continue
		}
		x, y := rec[0], rec[1]
		name := strings.TrimSuffix(rec[3:], "/")
		if x == 'R' || x == 'C' {
			i++ // skip the original path
		}
		statuses[filepath.Join(root, filepath.FromSlash(name))] = parseStatus(x, y)
	}
	return statuses
}

func parseStatus(x, y byte) Status {
	switch {
	case x == '?' && y == '?':
		return Untracked
	case x == '!' && y == '!':
		return Ignored
	case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
		return Conflict
	case x == 'R':
		return Renamed
	case x == 'A':
		return Added
	case x == 'D' || y == 'D':
		return Deleted
	case x == 'M' || y == 'M':
		return Modified
	}
	return None
}

// aggregate computes directory statuses: any changed descendant makes a
// directory Modified, otherwise any untracked descendant makes it
// Untracked.
func aggregate(statuses map[string]Status, root string) map[string]Status {
	dirs := make(map[string]Status)
	for path, s := range statuses {
		var promoted Status
		switch s {
		case Modified, Added, Deleted, Renamed, Conflict:
			promoted = Modified
		case Untracked:
			promoted = Untracked
		default:
			continue
		}
		for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
			if dirs[dir] != Modified {
				dirs[dir] = promoted
			}
			if dir == root || !strings.HasPrefix(dir, root) || dir == filepath.Dir(dir) {
				break
			}
		}
	}
	return dirs
}
