package mcu

import (
	"testing"

	"tab5/hal"
)

func TestCheckPanel(t *testing.T) {
	tests := []struct {
		name string
		cfg  hal.PanelConfig
		ok   bool
	}{
		{"native single", hal.PanelConfig{Width: 320, Height: 480, Format: hal.PixelFormatRGB565, Buffers: 1}, true},
		{"native double", hal.PanelConfig{Width: 320, Height: 480, Format: hal.PixelFormatRGB565, Buffers: 2}, false},
		{"rgb888 single", hal.PanelConfig{Width: 320, Height: 480, Format: hal.PixelFormatRGB888, Buffers: 1}, false},
		{"tab5 geometry", hal.PanelConfig{Width: 720, Height: 1280, Format: hal.PixelFormatRGB565, Buffers: 2}, false},
		{"small double", hal.PanelConfig{Width: 160, Height: 240, Format: hal.PixelFormatRGB565, Buffers: 2}, true},
		{"zero", hal.PanelConfig{Format: hal.PixelFormatRGB565}, false},
	}
	for _, tt := range tests {
		err := checkPanel(tt.cfg)
		if (err == nil) != tt.ok {
			t.Fatalf("%s: checkPanel() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestChimeFadesOut(t *testing.T) {
	var peak int16
	for i := 0; i < chimeSamples; i++ {
		if s := chimeSample(i); s > peak {
			peak = s
		}
	}
	if peak == 0 {
		t.Fatalf("chime is silent")
	}
	if s := chimeSample(chimeSamples); s != 0 {
		t.Fatalf("chimeSample(end) = %d, want 0", s)
	}
	if s := chimeSample(-1); s != 0 {
		t.Fatalf("chimeSample(-1) = %d, want 0", s)
	}
}
