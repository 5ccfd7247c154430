package imagecodec

import (
	"fmt"
	"image"
	"image/draw"
)

// Raster is a tightly packed, non-premultiplied RGBA8 pixel buffer.
// len(Pix) is always Width*Height*4.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	return &Raster{Width: width, Height: height, Pix: make([]byte, width*height*4)}, nil
}

// FromImage copies img into a new raster anchored at the origin.
func FromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	r, err := NewRaster(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < r.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(r.Pix[y*r.Width*4:(y+1)*r.Width*4], src.Pix[off:off+r.Width*4])
		}
		return r, nil
	case *image.NRGBA64:
		// Keep the high byte of each sample; 8-bit data widened by 0x101 survives exactly.
		for y := 0; y < r.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			dst := r.Pix[y*r.Width*4 : (y+1)*r.Width*4]
			for i := range dst {
				dst[i] = src.Pix[off+i*2]
			}
		}
		return r, nil
	}
	draw.Draw(r.Image(), r.Image().Bounds(), img, b.Min, draw.Src)
	return r, nil
}

// Image returns an *image.NRGBA view sharing the raster's pixel buffer.
func (r *Raster) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Opaque reports whether every pixel has full alpha.
func (r *Raster) Opaque() bool {
	for i := 3; i < len(r.Pix); i += 4 {
		if r.Pix[i] != 0xFF {
			return false
		}
	}
	return true
}
