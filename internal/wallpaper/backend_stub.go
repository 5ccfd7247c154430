//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || darwin || windows)

package wallpaper

import "fmt"

type unsupportedBackend struct{}

func newBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Grammar() Grammar {
	return Grammar{SetArg: "PATH"}
}

func (unsupportedBackend) Set(string, Options) error {
	return fmt.Errorf("setting the wallpaper: %w", ErrUnsupported)
}

func (unsupportedBackend) Get(string, Options) (string, error) {
	return "", fmt.Errorf("reading the wallpaper: %w", ErrUnsupported)
}
