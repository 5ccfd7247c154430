// Package wallpaper selects the wallpaper backend for the host platform.
package wallpaper

import (
	"errors"
	"io"

	"github.com/example/wall/internal/imagecodec"
)

// ErrUnsupported is returned by backends for operations the platform lacks.
var ErrUnsupported = errors.New("not supported on this platform")

// Backend gets and sets the desktop wallpaper.
type Backend interface {
	// Grammar describes the arguments the CLI should accept.
	Grammar() Grammar
	// Set makes the image at path the wallpaper.
	Set(path string, opts Options) error
	// Get returns the path of the current wallpaper. Backends that read the
	// wallpaper out of the display server write it to path first.
	Get(path string, opts Options) (string, error)
}

// Informer is implemented by backends that can describe the display.
type Informer interface {
	Info(w io.Writer, opts Options) error
}

// Grammar is the argument shape of the set and get commands.
type Grammar struct {
	// SetArg names the positional argument of set.
	SetArg string
	// GetArg names the positional argument of get; empty when get takes none.
	GetArg string
	// SetFormats and GetFormats list the values allowed for -format. A nil
	// list means the command has no format flag.
	SetFormats []imagecodec.Format
	GetFormats []imagecodec.Format
	// Clipboard reports whether get supports -to-clipboard.
	Clipboard bool
}

// Options carries per-invocation settings to a backend.
type Options struct {
	// Format overrides the format implied by the file extension.
	Format imagecodec.Format
	// Display names the X display; empty uses $DISPLAY.
	Display string
	// ToClipboard also copies a fetched wallpaper to the clipboard.
	ToClipboard bool
}

var backend = newBackend()

// Current returns the backend for this platform.
func Current() Backend {
	return backend
}
