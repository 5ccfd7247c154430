package x11

import (
	"fmt"
	"math/bits"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb/xproto"
)

// PixelFormat describes how a ZPixmap image lays out pixels in memory.
type PixelFormat struct {
	Depth        byte
	BitsPerPixel int
	ScanlinePad  int
	LSBFirst     bool
	RedMask      uint32
	GreenMask    uint32
	BlueMask     uint32
}

// ScreenVisual is the default screen's root window, size and pixel layout.
type ScreenVisual struct {
	Root   xproto.Window
	Width  uint16
	Height uint16
	Visual xproto.Visualid
	Class  byte
	PixelFormat
}

// QueryVisual reads the default screen's visual from the connection setup.
func QueryVisual(c Conn) (ScreenVisual, error) {
	setup := c.Setup()
	screen := c.DefaultScreen()
	if setup == nil || screen == nil {
		return ScreenVisual{}, fmt.Errorf("%w: no default screen", ErrUnsupportedVisual)
	}
	v := ScreenVisual{
		Root:   screen.Root,
		Width:  screen.WidthInPixels,
		Height: screen.HeightInPixels,
		Visual: screen.RootVisual,
	}
	info, ok := findVisual(screen, screen.RootVisual)
	if !ok {
		return ScreenVisual{}, fmt.Errorf("%w: root visual %d not listed", ErrUnsupportedVisual, screen.RootVisual)
	}
	if info.Class != xproto.VisualClassTrueColor && info.Class != xproto.VisualClassDirectColor {
		return ScreenVisual{}, fmt.Errorf("%w: visual class %d", ErrUnsupportedVisual, info.Class)
	}
	v.Class = info.Class
	pf, err := pixelFormat(setup, screen.RootDepth)
	if err != nil {
		return ScreenVisual{}, err
	}
	pf.RedMask = info.RedMask
	pf.GreenMask = info.GreenMask
	pf.BlueMask = info.BlueMask
	v.PixelFormat = pf
	log.Debug("screen visual",
		"root", v.Root,
		"size", fmt.Sprintf("%dx%d", v.Width, v.Height),
		"depth", pf.Depth,
		"bpp", pf.BitsPerPixel,
		"pad", pf.ScanlinePad,
		"lsb_first", pf.LSBFirst,
		"masks", fmt.Sprintf("%06x/%06x/%06x", pf.RedMask, pf.GreenMask, pf.BlueMask),
	)
	return v, nil
}

func findVisual(screen *xproto.ScreenInfo, id xproto.Visualid) (xproto.VisualInfo, bool) {
	for _, depth := range screen.AllowedDepths {
		for _, visual := range depth.Visuals {
			if visual.VisualId == id {
				return visual, true
			}
		}
	}
	return xproto.VisualInfo{}, false
}

// pixelFormat finds the server's pixmap format for depth. Channel masks are
// left for the caller to fill in.
func pixelFormat(setup *xproto.SetupInfo, depth byte) (PixelFormat, error) {
	for _, format := range setup.PixmapFormats {
		if format.Depth != depth {
			continue
		}
		switch format.BitsPerPixel {
		case 16, 24, 32:
		default:
			return PixelFormat{}, fmt.Errorf("%w: %d bits per pixel at depth %d", ErrUnsupportedVisual, format.BitsPerPixel, depth)
		}
		return PixelFormat{
			Depth:        depth,
			BitsPerPixel: int(format.BitsPerPixel),
			ScanlinePad:  int(format.ScanlinePad),
			LSBFirst:     setup.ImageByteOrder == xproto.ImageOrderLSBFirst,
		}, nil
	}
	return PixelFormat{}, fmt.Errorf("%w: no pixmap format for depth %d", ErrUnsupportedVisual, depth)
}

// withDepth returns the layout used by a drawable of a different depth on the
// same screen.
func (f PixelFormat) withDepth(setup *xproto.SetupInfo, depth byte) (PixelFormat, error) {
	if depth == f.Depth {
		return f, nil
	}
	other, err := pixelFormat(setup, depth)
	if err != nil {
		return PixelFormat{}, err
	}
	other.RedMask = f.RedMask
	other.GreenMask = f.GreenMask
	other.BlueMask = f.BlueMask
	return other, nil
}

// alphaMask covers the depth bits not used by the colour channels. It is zero
// for the usual depth 24 layout.
func (f PixelFormat) alphaMask() uint32 {
	if f.Depth == 0 || f.Depth > 32 {
		return 0
	}
	depthMask := ^uint32(0) >> (32 - f.Depth)
	rgb := f.RedMask | f.GreenMask | f.BlueMask
	if bits.OnesCount32(rgb) >= int(f.Depth) {
		return 0
	}
	return depthMask &^ rgb
}

// Stride is the number of bytes in one padded scanline of width pixels.
func (f PixelFormat) Stride(width int) int {
	pad := f.ScanlinePad
	if pad <= 0 {
		pad = 32
	}
	rowBits := width * f.BitsPerPixel
	return (rowBits + pad - 1) / pad * pad / 8
}
