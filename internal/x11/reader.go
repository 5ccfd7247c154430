package x11

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb/xproto"

	"github.com/example/wall/internal/imagecodec"
)

// Download reads the pixels of p back from the server. p's size and depth
// are taken from the server, not from p.
func Download(c Conn, p ServerPixmap, v ScreenVisual) (*imagecodec.Raster, error) {
	geom, err := c.GetGeometry(xproto.Drawable(p.ID))
	if err != nil {
		if isBadResource(err) {
			return nil, fmt.Errorf("%w: pixmap %d: %w", ErrStaleHandle, p.ID, err)
		}
		return nil, fmt.Errorf("pixmap %d geometry: %w", p.ID, err)
	}
	if geom.Width == 0 || geom.Height == 0 {
		return nil, fmt.Errorf("pixmap %d has empty geometry", p.ID)
	}
	f, err := v.PixelFormat.withDepth(c.Setup(), geom.Depth)
	if err != nil {
		return nil, err
	}
	width, height := int(geom.Width), int(geom.Height)
	stride := f.Stride(width)
	// Replies have no size limit, but banding keeps each one no larger than
	// an upload request.
	rows, err := bandRows(stride, c.MaxRequestBytes())
	if err != nil {
		rows = 1
	}
	data := make([]byte, 0, stride*height)
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		reply, err := c.GetImage(xproto.Drawable(p.ID), int16(y), geom.Width, uint16(n))
		if err != nil {
			if isBadResource(err) {
				return nil, fmt.Errorf("%w: pixmap %d: %w", ErrStaleHandle, p.ID, err)
			}
			return nil, fmt.Errorf("pixmap %d pixels: %w", p.ID, err)
		}
		if len(reply.Data) < n*stride {
			return nil, fmt.Errorf("pixmap %d pixels: short reply of %d bytes for %d rows", p.ID, len(reply.Data), n)
		}
		data = append(data, reply.Data[:n*stride]...)
	}
	log.Debug("downloaded pixmap", "pixmap", p.ID, "size", fmt.Sprintf("%dx%d", width, height), "depth", geom.Depth)
	return Unpack(data, width, height, f)
}
