package x11

import (
	"errors"

	"github.com/jezek/xgb/xproto"
)

var (
	// ErrConnect is returned when no X server could be reached.
	ErrConnect = errors.New("cannot connect to X server")
	// ErrUnsupportedVisual is returned for screens that are not TrueColor or
	// DirectColor at 16, 24 or 32 bits per pixel.
	ErrUnsupportedVisual = errors.New("unsupported screen visual")
	// ErrServerRejected is returned when the server refuses to create or fill
	// a resource, or to change the root window.
	ErrServerRejected = errors.New("X server rejected request")
	// ErrNoWallpaperSet is returned when neither root pixmap atom is present.
	ErrNoWallpaperSet = errors.New("no wallpaper set")
	// ErrStaleHandle is returned when the recorded root pixmap no longer exists.
	ErrStaleHandle = errors.New("wallpaper pixmap no longer exists")
)

// isBadResource reports whether err is the protocol error a server sends for
// an id that does not name a live drawable.
func isBadResource(err error) bool {
	var drawableErr xproto.DrawableError
	var pixmapErr xproto.PixmapError
	return errors.As(err, &drawableErr) || errors.As(err, &pixmapErr)
}
