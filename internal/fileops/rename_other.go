//go:build !linux

package fileops

import (
	"errors"
	"syscall"
)

func renameNoReplace(oldpath, newpath string) error {
	return renameChecked(oldpath, newpath)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
