package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

var (
	// ErrNameCollision is returned when the target name already exists.
	ErrNameCollision = errors.New("name already exists")
	// ErrNotFound is returned when the source path is gone.
	ErrNotFound = errors.New("no such file or directory")
	// ErrInvalidName is returned for empty names, "." and "..", and names
	// containing a path separator.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidDestination is returned when a directory would be copied or
	// moved into itself.
	ErrInvalidDestination = errors.New("destination is inside source")
)

// OpError records a failed filesystem operation and the path it failed on.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, filepath.Base(e.Path), e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// FormatError wraps err in an *OpError for display. Existence failures are
// mapped onto ErrNameCollision and ErrNotFound so callers can match them
// with errors.Is.
func FormatError(err error, path, op string) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrNameCollision), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidDestination):
	case errors.Is(err, fs.ErrExist):
		err = ErrNameCollision
	case errors.Is(err, fs.ErrNotExist):
		err = ErrNotFound
	}
	return &OpError{Op: op, Path: path, Err: err}
}
