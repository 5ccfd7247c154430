package x11

import (
	"fmt"
	"math/bits"

	"github.com/example/wall/internal/imagecodec"
)

type channel struct {
	shift uint
	max   uint32
}

func newChannel(mask uint32) channel {
	if mask == 0 {
		return channel{}
	}
	shift := uint(bits.TrailingZeros32(mask))
	return channel{shift: shift, max: mask >> shift}
}

func (c channel) pack(v uint8) uint32 {
	if c.max == 0 {
		return 0
	}
	return (uint32(v)*c.max + 127) / 255 << c.shift
}

func (c channel) unpack(pixel uint32) uint8 {
	if c.max == 0 {
		return 0xFF
	}
	v := pixel >> c.shift & c.max
	return uint8((v*255 + c.max/2) / c.max)
}

type layout struct {
	r, g, b, a    channel
	bytesPerPixel int
	stride        int
	lsbFirst      bool
}

func newLayout(f PixelFormat, width int) (layout, error) {
	switch f.BitsPerPixel {
	case 16, 24, 32:
	default:
		return layout{}, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedVisual, f.BitsPerPixel)
	}
	if f.RedMask == 0 || f.GreenMask == 0 || f.BlueMask == 0 {
		return layout{}, fmt.Errorf("%w: missing channel mask", ErrUnsupportedVisual)
	}
	return layout{
		r:             newChannel(f.RedMask),
		g:             newChannel(f.GreenMask),
		b:             newChannel(f.BlueMask),
		a:             newChannel(f.alphaMask()),
		bytesPerPixel: f.BitsPerPixel / 8,
		stride:        f.Stride(width),
		lsbFirst:      f.LSBFirst,
	}, nil
}

func (l layout) put(dst []byte, pixel uint32) {
	n := l.bytesPerPixel
	for i := 0; i < n; i++ {
		shift := uint(i * 8)
		if !l.lsbFirst {
			shift = uint((n - 1 - i) * 8)
		}
		dst[i] = byte(pixel >> shift)
	}
}

func (l layout) get(src []byte) uint32 {
	n := l.bytesPerPixel
	var pixel uint32
	for i := 0; i < n; i++ {
		shift := uint(i * 8)
		if !l.lsbFirst {
			shift = uint((n - 1 - i) * 8)
		}
		pixel |= uint32(src[i]) << shift
	}
	return pixel
}

// Pack converts r into a ZPixmap image in format f. Alpha is kept only when
// the depth has bits left over after the colour masks.
func Pack(r *imagecodec.Raster, f PixelFormat) ([]byte, error) {
	l, err := newLayout(f, r.Width)
	if err != nil {
		return nil, err
	}
	out := make([]byte, l.stride*r.Height)
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Width*4 : (y+1)*r.Width*4]
		row := out[y*l.stride:]
		for x := 0; x < r.Width; x++ {
			s := src[x*4 : x*4+4]
			pixel := l.r.pack(s[0]) | l.g.pack(s[1]) | l.b.pack(s[2]) | l.a.pack(s[3])
			l.put(row[x*l.bytesPerPixel:], pixel)
		}
	}
	return out, nil
}

// Unpack converts a ZPixmap image of width×height pixels in format f back to
// RGBA. Pixels without alpha bits come back opaque.
func Unpack(data []byte, width, height int, f PixelFormat) (*imagecodec.Raster, error) {
	l, err := newLayout(f, width)
	if err != nil {
		return nil, err
	}
	if len(data) < l.stride*height {
		return nil, fmt.Errorf("image data is %d bytes, want %d for %dx%d", len(data), l.stride*height, width, height)
	}
	r, err := imagecodec.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		row := data[y*l.stride:]
		dst := r.Pix[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			pixel := l.get(row[x*l.bytesPerPixel:])
			d := dst[x*4 : x*4+4]
			d[0] = l.r.unpack(pixel)
			d[1] = l.g.unpack(pixel)
			d[2] = l.b.unpack(pixel)
			d[3] = l.a.unpack(pixel)
		}
	}
	return r, nil
}
