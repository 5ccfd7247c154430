// Package imagecodec converts between image files and RGBA rasters for the
// formats the wallpaper commands accept.
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	pnm "github.com/jbuchbinder/gopnm"
	"github.com/lukegb/dds"
	"github.com/nfnt/resize"
	"github.com/sergeymakinen/go-ico"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/example/wall/internal/farbfeld"
)

// JPEGQuality is used for every JPEG written; there is no quality option.
const JPEGQuality = 75

// maxIconSize is the largest edge an ICO entry can have.
const maxIconSize = 256

type decodeFunc func(io.Reader) (image.Image, error)

var decoders = map[Format]decodeFunc{
	PNG:      png.Decode,
	JPEG:     jpeg.Decode,
	GIF:      gif.Decode,
	BMP:      bmp.Decode,
	ICO:      ico.Decode,
	TIFF:     tiff.Decode,
	WEBP:     webp.Decode,
	PNM:      pnm.Decode,
	DDS:      dds.Decode,
	TGA:      tga.Decode,
	Farbfeld: farbfeld.Decode,
}

// Decode parses data as an image of format hint and returns its pixels.
// With FormatNone the format is sniffed from the data.
func Decode(data []byte, hint Format) (*Raster, error) {
	if hint == FormatNone {
		sniffed, ok := Sniff(data)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognised image signature", ErrUnknownFormat)
		}
		hint = sniffed
	}
	dec, ok := decoders[hint]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, hint)
	}
	if !matchesSignature(hint, data) {
		return nil, fmt.Errorf("%w: data is not a %s image", ErrCorruptData, hint)
	}
	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptData, hint, err)
	}
	r, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptData, hint, err)
	}
	return r, nil
}

// Encode serialises r in format f.
func Encode(r *Raster, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, r, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes r to w in format f.
func EncodeTo(w io.Writer, r *Raster, f Format) error {
	img := r.Image()
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case GIF:
		err = gif.Encode(w, img, nil)
	case BMP:
		err = bmp.Encode(w, img)
	case ICO:
		err = ico.Encode(w, fitIcon(img))
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case PNM:
		err = pnm.Encode(w, img, pnm.PPM)
	case TGA:
		err = tga.Encode(w, img)
	case Farbfeld:
		err = farbfeld.Encode(w, img)
	case WEBP, DDS:
		return fmt.Errorf("%w: %s", ErrEncodeUnsupported, f)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

func fitIcon(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxIconSize && b.Dy() <= maxIconSize {
		return img
	}
	return resize.Thumbnail(maxIconSize, maxIconSize, img, resize.Lanczos3)
}
