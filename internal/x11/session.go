package x11

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb/xproto"

	"github.com/example/wall/internal/imagecodec"
)

// dial is replaced in tests.
var dial = Open

// SetWallpaper installs r as the root background of display. The connection
// is closed on every return path. The new pixmap is freed unless the root
// atoms already name it.
func SetWallpaper(display string, r *imagecodec.Raster) error {
	c, err := dial(display)
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := QueryVisual(c)
	if err != nil {
		return err
	}
	p, err := BuildAndUpload(c, r, v)
	if err != nil {
		return err
	}
	committed, err := Install(c, v, p)
	if err != nil && !committed {
		if ferr := c.FreePixmap(p.ID); ferr != nil {
			log.Debug("free pixmap after failed install", "pixmap", p.ID, "err", ferr)
		}
	}
	return err
}

// GetWallpaper downloads the current root background of display.
func GetWallpaper(display string) (*imagecodec.Raster, error) {
	c, err := dial(display)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	v, err := QueryVisual(c)
	if err != nil {
		return nil, err
	}
	p, err := ReadAtom(c, v.Root)
	if err != nil {
		return nil, err
	}
	return Download(c, p, v)
}

// Report describes a display for diagnostics.
type Report struct {
	Visual   ScreenVisual
	Monitors []Monitor
	// Wallpaper is the current root pixmap; its ID is zero when none is set.
	Wallpaper ServerPixmap
	// Stale is set when the recorded pixmap no longer exists.
	Stale bool
}

// Describe reports the visual, monitors and current wallpaper of display.
func Describe(display string) (Report, error) {
	c, err := dial(display)
	if err != nil {
		return Report{}, err
	}
	defer c.Close()

	v, err := QueryVisual(c)
	if err != nil {
		return Report{}, err
	}
	report := Report{Visual: v}
	monitors, err := c.Monitors(v.Root)
	if err != nil {
		log.Warn("could not list monitors", "err", err)
	}
	report.Monitors = monitors

	p, err := ReadAtom(c, v.Root)
	switch {
	case errors.Is(err, ErrNoWallpaperSet):
		return report, nil
	case err != nil:
		return Report{}, err
	}
	report.Wallpaper = p
	geom, err := c.GetGeometry(xproto.Drawable(p.ID))
	if err != nil {
		if !isBadResource(err) {
			return Report{}, err
		}
		report.Stale = true
		return report, nil
	}
	report.Wallpaper.Width = geom.Width
	report.Wallpaper.Height = geom.Height
	report.Wallpaper.Depth = geom.Depth
	return report, nil
}
