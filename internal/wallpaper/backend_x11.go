//go:build linux || freebsd || openbsd || netbsd || dragonfly

package wallpaper

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb/xproto"

	"github.com/example/wall/internal/clipboard"
	"github.com/example/wall/internal/imagecodec"
	"github.com/example/wall/internal/x11"
)

type x11Backend struct{}

func newBackend() Backend {
	return x11Backend{}
}

// Replaced in tests.
var (
	readFile                  = os.ReadFile
	writeFile                 = os.WriteFile
	setWallpaperFn            = x11.SetWallpaper
	getWallpaperFn            = x11.GetWallpaper
	describeFn                = x11.Describe
	copyToClipboard           = clipboard.WriteImage
	clipboardNotice io.Writer = os.Stderr
)

func (x11Backend) Grammar() Grammar {
	return Grammar{
		SetArg:     "PATH",
		GetArg:     "PATH",
		SetFormats: imagecodec.SetFormats,
		GetFormats: imagecodec.GetFormats,
		Clipboard:  true,
	}
}

func (x11Backend) Set(path string, opts Options) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("set requires an image path")
	}
	format, err := imagecodec.Resolve(path, opts.Format)
	if err != nil {
		return err
	}
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	r, err := imagecodec.Decode(data, format)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	log.Debug("decoded wallpaper", "path", path, "format", format, "size", fmt.Sprintf("%dx%d", r.Width, r.Height))
	return setWallpaperFn(opts.Display, r)
}

func (x11Backend) Get(path string, opts Options) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("get requires an output path")
	}
	format, err := imagecodec.Resolve(path, opts.Format)
	if err != nil {
		return "", err
	}
	if !format.In(imagecodec.GetFormats) {
		return "", fmt.Errorf("%w: %s", imagecodec.ErrEncodeUnsupported, format)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	r, err := getWallpaperFn(opts.Display)
	if err != nil {
		return "", err
	}
	data, err := imagecodec.Encode(r, format)
	if err != nil {
		return "", err
	}
	if err := writeFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", abs, err)
	}
	if opts.ToClipboard {
		lost, err := copyToClipboard(r.Image())
		if err != nil {
			return abs, fmt.Errorf("copy wallpaper to clipboard: %w", err)
		}
		// X11 selections live only as long as their owner, so stay alive
		// until another client takes the clipboard.
		fmt.Fprintf(clipboardNotice, "wrote %s; serving it on the clipboard until something else is copied\n", abs)
		<-lost
		log.Debug("clipboard ownership lost")
	}
	return abs, nil
}

func (x11Backend) Info(w io.Writer, opts Options) error {
	report, err := describeFn(opts.Display)
	if err != nil {
		return err
	}
	v := report.Visual
	fmt.Fprintf(w, "screen: %dx%d root 0x%x\n", v.Width, v.Height, uint32(v.Root))
	fmt.Fprintf(w, "visual: 0x%x class %s depth %d, %d bpp, scanline pad %d, %s\n",
		uint32(v.Visual), visualClassName(v.Class), v.Depth, v.BitsPerPixel, v.ScanlinePad, byteOrderName(v.LSBFirst))
	fmt.Fprintf(w, "masks: red 0x%06x green 0x%06x blue 0x%06x\n", v.RedMask, v.GreenMask, v.BlueMask)
	if len(report.Monitors) == 0 {
		fmt.Fprintln(w, "monitors: none reported")
	}
	for i, m := range report.Monitors {
		primary := ""
		if m.Primary {
			primary = " primary"
		}
		fmt.Fprintf(w, "monitor %d: %s %dx%d+%d+%d%s\n", i, m.Name, m.Rect.Dx(), m.Rect.Dy(), m.Rect.Min.X, m.Rect.Min.Y, primary)
	}
	p := report.Wallpaper
	switch {
	case p.ID == 0:
		fmt.Fprintln(w, "wallpaper: none set")
	case report.Stale:
		fmt.Fprintf(w, "wallpaper: pixmap 0x%x (stale)\n", uint32(p.ID))
	default:
		fmt.Fprintf(w, "wallpaper: pixmap 0x%x %dx%d depth %d\n", uint32(p.ID), p.Width, p.Height, p.Depth)
	}
	return nil
}

func visualClassName(class byte) string {
	switch class {
	case xproto.VisualClassTrueColor:
		return "TrueColor"
	case xproto.VisualClassDirectColor:
		return "DirectColor"
	default:
		return fmt.Sprintf("%d", class)
	}
}

func byteOrderName(lsbFirst bool) string {
	if lsbFirst {
		return "LSB first"
	}
	return "MSB first"
}
