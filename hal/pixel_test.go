package hal

import (
	"image/color"
	"testing"

	"tinygo.org/x/drivers"
)

func TestToPhysicalCorners(t *testing.T) {
	const w, h = 720, 1280
	tests := []struct {
		rot          drivers.Rotation
		x, y         int
		wantX, wantY int
	}{
		{drivers.Rotation0, 0, 0, 0, 0},
		{drivers.Rotation90, 0, 0, w - 1, 0},
		{drivers.Rotation90, 1279, 719, 0, 1279},
		{drivers.Rotation180, 0, 0, w - 1, h - 1},
		{drivers.Rotation270, 0, 0, 0, h - 1},
	}
	for _, tt := range tests {
		x, y := ToPhysical(tt.rot, tt.x, tt.y, w, h)
		if x != tt.wantX || y != tt.wantY {
			t.Fatalf("ToPhysical(%d, %d, %d) = %d, %d, want %d, %d", tt.rot, tt.x, tt.y, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestLogicalSize(t *testing.T) {
	if w, h := LogicalSize(drivers.Rotation90, 720, 1280); w != 1280 || h != 720 {
		t.Fatalf("LogicalSize(90) = %d, %d, want 1280, 720", w, h)
	}
	if w, h := LogicalSize(drivers.Rotation180, 720, 1280); w != 720 || h != 1280 {
		t.Fatalf("LogicalSize(180) = %d, %d, want 720, 1280", w, h)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	buf := make([]byte, 6)
	c := color.RGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF}

	PutPixel(buf, 2, PixelFormatRGB565, c)
	if got := GetPixel(buf, 2, PixelFormatRGB565); got != c {
		t.Fatalf("RGB565 GetPixel() = %v, want %v", got, c)
	}

	PutPixel(buf, 3, PixelFormatRGB888, RGBA(1, 2, 3))
	if buf[3] != 3 || buf[4] != 2 || buf[5] != 1 {
		t.Fatalf("RGB888 bytes = %v, want B, G, R", buf[3:])
	}
}

func TestPutPixelOutOfRange(t *testing.T) {
	buf := make([]byte, 2)
	PutPixel(buf, 1, PixelFormatRGB565, RGBA(0xFF, 0xFF, 0xFF))
	PutPixel(buf, -2, PixelFormatRGB565, RGBA(0xFF, 0xFF, 0xFF))
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("buf = %v, want untouched", buf)
	}
	if got := GetPixel(buf, 4, PixelFormatRGB888); got != (color.RGBA{}) {
		t.Fatalf("GetPixel() out of range = %v", got)
	}
}

func TestFill(t *testing.T) {
	buf := make([]byte, 7)
	Fill(buf, PixelFormatRGB565, RGBA(0xFF, 0xFF, 0xFF))
	for i := 0; i < 6; i++ {
		if buf[i] != 0xFF {
			t.Fatalf("buf[%d] = %#x, want 0xff", i, buf[i])
		}
	}
	if buf[6] != 0 {
		t.Fatalf("trailing byte written")
	}
}
