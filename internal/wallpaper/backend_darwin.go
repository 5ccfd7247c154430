//go:build darwin

package wallpaper

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type darwinBackend struct{}

func newBackend() Backend {
	return darwinBackend{}
}

func (darwinBackend) Grammar() Grammar {
	return Grammar{SetArg: "FULL_PATH"}
}

func osascript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("osascript: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (darwinBackend) Set(path string, _ Options) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	script := fmt.Sprintf("tell application \"System Events\" to tell every desktop to set picture to %q", abs)
	_, err = osascript(script)
	return err
}

func (darwinBackend) Get(string, Options) (string, error) {
	return osascript("tell application \"Finder\" to get POSIX path of (get desktop picture as alias)")
}
