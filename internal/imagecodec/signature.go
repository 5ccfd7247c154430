package imagecodec

import "bytes"

type signature struct {
	format Format
	match  func([]byte) bool
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

func anyPrefix(ps ...string) func([]byte) bool {
	return func(b []byte) bool {
		for _, p := range ps {
			if bytes.HasPrefix(b, []byte(p)) {
				return true
			}
		}
		return false
	}
}

func isWebP(b []byte) bool {
	return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
}

func isPNM(b []byte) bool {
	return len(b) >= 2 && b[0] == 'P' && b[1] >= '1' && b[1] <= '7'
}

// isTGA checks the header shape; TGA has no magic number.
func isTGA(b []byte) bool {
	const headerLen = 18
	if len(b) < headerLen {
		return false
	}
	if b[1] > 1 {
		return false
	}
	switch b[2] {
	case 1, 2, 3, 9, 10, 11:
	default:
		return false
	}
	switch b[16] {
	case 8, 15, 16, 24, 32:
	default:
		return false
	}
	return true
}

// TGA is last so sniffing only falls back to it when nothing else matches.
var signatures = []signature{
	{PNG, prefix("\x89PNG\r\n\x1a\n")},
	{JPEG, prefix("\xff\xd8\xff")},
	{GIF, anyPrefix("GIF87a", "GIF89a")},
	{BMP, prefix("BM")},
	{ICO, prefix("\x00\x00\x01\x00")},
	{TIFF, anyPrefix("II*\x00", "MM\x00*")},
	{WEBP, isWebP},
	{PNM, isPNM},
	{DDS, prefix("DDS ")},
	{Farbfeld, prefix("farbfeld")},
	{TGA, isTGA},
}

// Sniff guesses the format of data from its leading bytes.
func Sniff(data []byte) (Format, bool) {
	for _, sig := range signatures {
		if sig.match(data) {
			return sig.format, true
		}
	}
	return FormatNone, false
}

func matchesSignature(f Format, data []byte) bool {
	for _, sig := range signatures {
		if sig.format == f {
			return sig.match(data)
		}
	}
	return false
}
