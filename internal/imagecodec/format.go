package imagecodec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an image container format.
type Format int

const (
	// FormatNone means no format was given.
	FormatNone Format = iota
	PNG
	JPEG
	GIF
	BMP
	ICO
	TIFF
	WEBP
	PNM
	DDS
	TGA
	Farbfeld
)

var (
	// ErrUnknownFormat is returned when no supported format could be resolved.
	ErrUnknownFormat = errors.New("unknown image format")
	// ErrCorruptData is returned when the input does not match its declared format.
	ErrCorruptData = errors.New("corrupt image data")
	// ErrEncodeUnsupported is returned for formats that can be read but not written.
	ErrEncodeUnsupported = errors.New("encoding not supported for format")
)

var formatNames = map[Format]string{
	PNG:      "png",
	JPEG:     "jpeg",
	GIF:      "gif",
	BMP:      "bmp",
	ICO:      "ico",
	TIFF:     "tiff",
	WEBP:     "webp",
	PNM:      "pnm",
	DDS:      "dds",
	TGA:      "tga",
	Farbfeld: "farbfeld",
}

var extensions = map[string]Format{
	"png":      PNG,
	"jpg":      JPEG,
	"jpeg":     JPEG,
	"gif":      GIF,
	"bmp":      BMP,
	"ico":      ICO,
	"tif":      TIFF,
	"tiff":     TIFF,
	"webp":     WEBP,
	"pbm":      PNM,
	"pgm":      PNM,
	"ppm":      PNM,
	"pam":      PNM,
	"pnm":      PNM,
	"dds":      DDS,
	"tga":      TGA,
	"ff":       Farbfeld,
	"farbfeld": Farbfeld,
}

// SetFormats lists the formats an image given to "set" may be stored in.
var SetFormats = []Format{PNG, JPEG, GIF, BMP, ICO, TIFF, WEBP, PNM, DDS, TGA, Farbfeld}

// GetFormats lists the formats "get" can write. WEBP and DDS are read-only.
var GetFormats = []Format{PNG, JPEG, GIF, BMP, ICO, TIFF, PNM, TGA, Farbfeld}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// In reports whether f is one of formats.
func (f Format) In(formats []Format) bool {
	for _, candidate := range formats {
		if candidate == f {
			return true
		}
	}
	return false
}

// Names returns the lower-case names of formats in order.
func Names(formats []Format) []string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.String())
	}
	return names
}

// ParseFormat maps a format name such as "png" or "farbfeld" to a Format.
func ParseFormat(name string) (Format, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == needle {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath infers the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return FormatNone, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	f, ok := extensions[ext]
	if !ok {
		return FormatNone, fmt.Errorf("%w: unrecognised extension %q", ErrUnknownFormat, ext)
	}
	return f, nil
}

// Resolve picks the format for path. An explicit format always wins over the
// extension.
func Resolve(path string, explicit Format) (Format, error) {
	if explicit != FormatNone {
		if _, ok := formatNames[explicit]; !ok {
			return FormatNone, fmt.Errorf("%w: %v", ErrUnknownFormat, explicit)
		}
		return explicit, nil
	}
	return FormatFromPath(path)
}
