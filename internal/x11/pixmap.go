package x11

import (
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb/xproto"
	"golang.org/x/image/draw"

	"github.com/example/wall/internal/imagecodec"
)

// ServerPixmap is a pixmap on the server together with its geometry.
type ServerPixmap struct {
	ID     xproto.Pixmap
	Width  uint16
	Height uint16
	Depth  byte
}

// Stretch scales r to exactly width×height using nearest-neighbour sampling.
// r is returned unchanged when it already has that size.
func Stretch(r *imagecodec.Raster, width, height int) (*imagecodec.Raster, error) {
	if r.Width == width && r.Height == height {
		return r, nil
	}
	out, err := imagecodec.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	dst := out.Image()
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), r.Image(), image.Rect(0, 0, r.Width, r.Height), draw.Src, nil)
	return out, nil
}

// bandRows is how many rows of stride bytes fit into one request of at most
// maxBytes.
func bandRows(stride, maxBytes int) (int, error) {
	rows := (maxBytes - putImageHeader) / stride
	if rows < 1 {
		return 0, fmt.Errorf("%w: a %d byte scanline exceeds the %d byte request limit", ErrServerRejected, stride, maxBytes)
	}
	return rows, nil
}

// BuildAndUpload stretches r to the screen, packs it for the screen's visual
// and uploads it into a new pixmap. The pixmap is freed again if any step
// fails.
func BuildAndUpload(c Conn, r *imagecodec.Raster, v ScreenVisual) (ServerPixmap, error) {
	if r.Width != int(v.Width) || r.Height != int(v.Height) {
		log.Debug("stretching wallpaper", "from", fmt.Sprintf("%dx%d", r.Width, r.Height), "to", fmt.Sprintf("%dx%d", v.Width, v.Height))
	}
	scaled, err := Stretch(r, int(v.Width), int(v.Height))
	if err != nil {
		return ServerPixmap{}, err
	}
	data, err := Pack(scaled, v.PixelFormat)
	if err != nil {
		return ServerPixmap{}, err
	}
	stride := v.Stride(scaled.Width)
	rows, err := bandRows(stride, c.MaxRequestBytes())
	if err != nil {
		return ServerPixmap{}, err
	}

	pid, err := c.CreatePixmap(v.Depth, xproto.Drawable(v.Root), v.Width, v.Height)
	if err != nil {
		return ServerPixmap{}, fmt.Errorf("%w: create pixmap: %w", ErrServerRejected, err)
	}
	p := ServerPixmap{ID: pid, Width: v.Width, Height: v.Height, Depth: v.Depth}
	if err := upload(c, p, data, stride, rows); err != nil {
		if ferr := c.FreePixmap(pid); ferr != nil {
			log.Debug("free pixmap after failed upload", "pixmap", pid, "err", ferr)
		}
		return ServerPixmap{}, err
	}
	return p, nil
}

func upload(c Conn, p ServerPixmap, data []byte, stride, rows int) error {
	gc, err := c.CreateGC(xproto.Drawable(p.ID))
	if err != nil {
		return fmt.Errorf("%w: create gc: %w", ErrServerRejected, err)
	}
	defer func() {
		if err := c.FreeGC(gc); err != nil {
			log.Debug("free gc", "gc", gc, "err", err)
		}
	}()
	height := int(p.Height)
	bands := 0
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		chunk := data[y*stride : (y+n)*stride]
		if err := c.PutImage(xproto.Drawable(p.ID), gc, p.Width, uint16(n), int16(y), p.Depth, chunk); err != nil {
			return fmt.Errorf("%w: put image rows %d-%d: %w", ErrServerRejected, y, y+n, err)
		}
		bands++
	}
	log.Debug("uploaded pixmap", "pixmap", p.ID, "bands", bands, "rows_per_band", rows, "stride", stride)
	return nil
}
