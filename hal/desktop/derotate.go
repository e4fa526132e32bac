//go:build !tinygo

package desktop

import (
	"image"

	"tab5/hal"

	"tinygo.org/x/drivers"
)

// derotate converts the physical panel buffer into logical RGBA content.
func derotate(dst *image.RGBA, src []byte, f hal.PixelFormat, stride int, rot drivers.Rotation, pw, ph int) {
	bpp := f.BytesPerPixel()
	lw, lh := dst.Bounds().Dx(), dst.Bounds().Dy()
	for y := 0; y < lh; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < lw; x++ {
			px, py := hal.ToPhysical(rot, x, y, pw, ph)
			c := hal.GetPixel(src, py*stride+px*bpp, f)
			j := x * 4
			row[j+0] = c.R
			row[j+1] = c.G
			row[j+2] = c.B
			row[j+3] = 0xFF
		}
	}
}
