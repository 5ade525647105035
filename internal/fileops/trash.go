package fileops

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// moveToTrash hands path to the desktop trash. It fails when no trash
// helper is available so the caller can fall back to a permanent delete.
func moveToTrash(path string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file "%s"`, strings.ReplaceAll(path, `"`, `\"`))
		return exec.Command("osascript", "-e", script).Run()

	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName Microsoft.VisualBasic; [Microsoft.VisualBasic.FileIO.FileSystem]::DeleteFile('%s', 'OnlyErrorDialogs', 'SendToRecycleBin')`, strings.ReplaceAll(path, "'", "''"))
		return exec.Command("powershell", "-Command", script).Run()

	default:
		if commandExists("gio") {
			return exec.Command("gio", "trash", path).Run()
		}
		if commandExists("trash-put") {
			return exec.Command("trash-put", path).Run()
		}
		return fmt.Errorf("trash command not available (install trash-cli or gvfs)")
	}
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
