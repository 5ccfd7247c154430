// Package farbfeld implements a decoder and encoder for farbfeld images.
//
// A farbfeld file is the magic "farbfeld", a big-endian uint32 width and
// height, followed by rows of non-premultiplied 16-bit big-endian RGBA.
package farbfeld

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"
)

const (
	magic      = "farbfeld"
	headerSize = len(magic) + 8

	maxInitialAlloc = 1 << 22
)

// ErrFormat reports that the input is not a farbfeld image.
var ErrFormat = errors.New("farbfeld: invalid format")

func init() {
	image.RegisterFormat("farbfeld", magic, Decode, DecodeConfig)
}

func readHeader(r io.Reader) (int, int, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, 0, err
	}
	if string(hdr[:len(magic)]) != magic {
		return 0, 0, ErrFormat
	}
	w := binary.BigEndian.Uint32(hdr[8:12])
	h := binary.BigEndian.Uint32(hdr[12:16])
	if w == 0 || h == 0 || w > 1<<16 || h > 1<<16 {
		return 0, 0, fmt.Errorf("%w: size %dx%d", ErrFormat, w, h)
	}
	return int(w), int(h), nil
}

// DecodeConfig returns the dimensions of a farbfeld image without reading pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	w, h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBA64Model, Width: w, Height: h}, nil
}

// Decode reads a farbfeld image.
func Decode(r io.Reader) (image.Image, error) {
	w, h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	// The pixel buffer grows with the data actually read, so a header
	// claiming a huge image cannot force a huge allocation up front.
	stride := w * 8
	pix := make([]byte, 0, min(stride*h, maxInitialAlloc))
	br := bufio.NewReader(r)
	for y := 0; y < h; y++ {
		n := len(pix)
		pix = slices.Grow(pix, stride)[:n+stride]
		if _, err := io.ReadFull(br, pix[n:]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
	// NRGBA64 stores big-endian 16-bit samples, the same layout as farbfeld.
	return &image.NRGBA64{Pix: pix, Stride: stride, Rect: image.Rect(0, 0, w, h)}, nil
}

// Encode writes m to w in farbfeld format.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty image", ErrFormat)
	}
	bw := bufio.NewWriter(w)
	var hdr [headerSize]byte
	copy(hdr[:], magic)
	binary.BigEndian.PutUint32(hdr[8:12], uint32(b.Dx()))
	binary.BigEndian.PutUint32(hdr[12:16], uint32(b.Dy()))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	row := make([]byte, b.Dx()*8)
	if src, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			pix := src.Pix[src.PixOffset(b.Min.X, y):]
			for i := 0; i < b.Dx()*4; i++ {
				binary.BigEndian.PutUint16(row[i*2:], uint16(pix[i])*0x101)
			}
			if _, err := bw.Write(row); err != nil {
				return err
			}
		}
		return bw.Flush()
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(m.At(x, y)).(color.NRGBA64)
			off := (x - b.Min.X) * 8
			binary.BigEndian.PutUint16(row[off:], c.R)
			binary.BigEndian.PutUint16(row[off+2:], c.G)
			binary.BigEndian.PutUint16(row[off+4:], c.B)
			binary.BigEndian.PutUint16(row[off+6:], c.A)
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
