package imagecodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gradient(t *testing.T, w, h int, alpha func(x, y int) uint8) *Raster {
	t.Helper()
	r, err := NewRaster(w, h)
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			r.Pix[i+0] = uint8(x * 255 / w)
			r.Pix[i+1] = uint8(y * 255 / h)
			r.Pix[i+2] = uint8((x + y) * 7)
			r.Pix[i+3] = alpha(x, y)
		}
	}
	return r
}

func opaque(int, int) uint8 { return 0xFF }

func TestLosslessRoundTrip(t *testing.T) {
	translucent := func(x, y int) uint8 { return uint8(40 + (x*y)%200) }
	cases := []struct {
		format Format
		alpha  func(x, y int) uint8
	}{
		{PNG, translucent},
		{Farbfeld, translucent},
		{BMP, opaque},
	}
	for _, tc := range cases {
		t.Run(tc.format.String(), func(t *testing.T) {
			src := gradient(t, 37, 21, tc.alpha)
			data, err := Encode(src, tc.format)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(data, tc.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Width != src.Width || got.Height != src.Height {
				t.Fatalf("size %dx%d, want %dx%d", got.Width, got.Height, src.Width, src.Height)
			}
			if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
				t.Fatalf("pixels differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeEveryWritableFormat(t *testing.T) {
	src := gradient(t, 64, 48, opaque)
	for _, f := range GetFormats {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Encode(src, f)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(data, f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Width != src.Width || got.Height != src.Height {
				t.Fatalf("size %dx%d, want %dx%d", got.Width, got.Height, src.Width, src.Height)
			}
		})
	}
}

func TestEncodeIconIsScaledToFit(t *testing.T) {
	src := gradient(t, 1024, 512, opaque)
	data, err := Encode(src, ICO)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data, ICO)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 256 || got.Height != 128 {
		t.Fatalf("expected 256x128 icon, got %dx%d", got.Width, got.Height)
	}
}

func TestEncodeReadOnlyFormats(t *testing.T) {
	src := gradient(t, 4, 4, opaque)
	for _, f := range []Format{WEBP, DDS} {
		if _, err := Encode(src, f); !errors.Is(err, ErrEncodeUnsupported) {
			t.Errorf("Encode(%v): expected ErrEncodeUnsupported, got %v", f, err)
		}
	}
	if _, err := Encode(src, FormatNone); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(none): expected ErrUnknownFormat, got %v", err)
	}
}

func TestDecodeSignatureMismatch(t *testing.T) {
	data, err := Encode(gradient(t, 8, 8, opaque), PNG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, f := range []Format{JPEG, GIF, BMP, ICO, TIFF, WEBP, PNM, DDS, Farbfeld, TGA} {
		if _, err := Decode(data, f); !errors.Is(err, ErrCorruptData) {
			t.Errorf("Decode(png bytes, %v): expected ErrCorruptData, got %v", f, err)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	src := gradient(t, 16, 16, opaque)
	for _, f := range []Format{PNG, BMP, Farbfeld} {
		data, err := Encode(src, f)
		if err != nil {
			t.Fatalf("Encode(%v): %v", f, err)
		}
		if _, err := Decode(data[:len(data)/2], f); !errors.Is(err, ErrCorruptData) {
			t.Errorf("Decode(truncated %v): expected ErrCorruptData, got %v", f, err)
		}
	}
}

func TestDecodeSniffsWithoutHint(t *testing.T) {
	src := gradient(t, 5, 3, opaque)
	for _, f := range []Format{PNG, GIF, BMP, TIFF, Farbfeld} {
		data, err := Encode(src, f)
		if err != nil {
			t.Fatalf("Encode(%v): %v", f, err)
		}
		sniffed, ok := Sniff(data)
		if !ok || sniffed != f {
			t.Errorf("Sniff(%v data) = %v, %v", f, sniffed, ok)
		}
		if _, err := Decode(data, FormatNone); err != nil {
			t.Errorf("Decode(%v, none): %v", f, err)
		}
	}
	if _, err := Decode([]byte("definitely not an image"), FormatNone); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDecodeSynthesisesAlphaForOpaqueFormats(t *testing.T) {
	src := gradient(t, 10, 10, func(x, y int) uint8 { return 0x80 })
	data, err := Encode(src, JPEG)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data, JPEG)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Opaque() {
		t.Fatalf("expected every decoded jpeg pixel to be opaque")
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	img.SetNRGBA(10, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	img.SetNRGBA(12, 21, color.NRGBA{R: 5, G: 6, B: 7, A: 8})
	r, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if r.Width != 3 || r.Height != 2 || len(r.Pix) != 3*2*4 {
		t.Fatalf("unexpected raster %dx%d len %d", r.Width, r.Height, len(r.Pix))
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, r.Pix[:4]); diff != "" {
		t.Errorf("first pixel (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{5, 6, 7, 8}, r.Pix[len(r.Pix)-4:]); diff != "" {
		t.Errorf("last pixel (-want +got):\n%s", diff)
	}
}

func TestFromImagePaletted(t *testing.T) {
	pal := color.Palette{color.NRGBA{A: 0xFF}, color.NRGBA{R: 0xFF, A: 0xFF}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	img.SetColorIndex(1, 0, 1)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	r, err := Decode(buf.Bytes(), PNG)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0xFF, 0xFF, 0, 0, 0xFF}, r.Pix); diff != "" {
		t.Fatalf("paletted pixels (-want +got):\n%s", diff)
	}
}

func TestNewRasterRejectsEmpty(t *testing.T) {
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-1, 5}} {
		if _, err := NewRaster(size[0], size[1]); err == nil {
			t.Errorf("NewRaster(%d, %d): expected error", size[0], size[1])
		}
	}
}
