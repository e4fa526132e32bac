package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// RGB565 packs an 8-bit-per-channel color.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888From565 expands a packed RGB565 pixel.
func RGB888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// PutPixel stores c at byte offset off in the given format.
func PutPixel(buf []byte, off int, f PixelFormat, c color.RGBA) {
	switch f {
	case PixelFormatRGB565:
		if off < 0 || off+1 >= len(buf) {
			return
		}
		p := RGB565(c.R, c.G, c.B)
		buf[off] = byte(p)
		buf[off+1] = byte(p >> 8)
	case PixelFormatRGB888:
		if off < 0 || off+2 >= len(buf) {
			return
		}
		buf[off] = c.B
		buf[off+1] = c.G
		buf[off+2] = c.R
	}
}

// GetPixel reads the pixel at byte offset off.
func GetPixel(buf []byte, off int, f PixelFormat) color.RGBA {
	switch f {
	case PixelFormatRGB565:
		if off < 0 || off+1 >= len(buf) {
			return color.RGBA{}
		}
		r, g, b := RGB888From565(uint16(buf[off]) | uint16(buf[off+1])<<8)
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}
	case PixelFormatRGB888:
		if off < 0 || off+2 >= len(buf) {
			return color.RGBA{}
		}
		return color.RGBA{R: buf[off+2], G: buf[off+1], B: buf[off], A: 0xFF}
	default:
		return color.RGBA{}
	}
}

// Fill paints every pixel of buf with c.
func Fill(buf []byte, f PixelFormat, c color.RGBA) {
	bpp := f.BytesPerPixel()
	if bpp == 0 {
		return
	}
	for off := 0; off+bpp <= len(buf); off += bpp {
		PutPixel(buf, off, f, c)
	}
}

// LogicalSize returns the content size of a w x h panel under rot.
func LogicalSize(rot drivers.Rotation, w, h int) (int, int) {
	switch rot {
	case drivers.Rotation90, drivers.Rotation270:
		return h, w
	default:
		return w, h
	}
}

// ToPhysical maps logical content coordinates to panel coordinates for a
// w x h panel. Rotation is clockwise.
func ToPhysical(rot drivers.Rotation, x, y, w, h int) (int, int) {
	switch rot {
	case drivers.Rotation90:
		return w - 1 - y, x
	case drivers.Rotation180:
		return w - 1 - x, h - 1 - y
	case drivers.Rotation270:
		return y, h - 1 - x
	default:
		return x, y
	}
}

// RGBA returns an opaque color.
func RGBA(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
