package mcu

import (
	"fmt"

	"tab5/hal"
)

// The ILI9488 addresses at most 320x480, and the framebuffers live in the
// MCU's SRAM.
const (
	PanelWidth  = 320
	PanelHeight = 480

	// MaxFramebufferBytes is the SRAM budget for all framebuffers together.
	MaxFramebufferBytes = 320 * 1024
)

// checkPanel rejects geometry the controller cannot address and buffers
// that would not fit in memory.
func checkPanel(cfg hal.PanelConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > PanelWidth || cfg.Height > PanelHeight {
		return fmt.Errorf("panel: %dx%d exceeds controller %dx%d", cfg.Width, cfg.Height, PanelWidth, PanelHeight)
	}
	buffers := max(cfg.Buffers, 1)
	need := cfg.Width * cfg.Height * cfg.Format.BytesPerPixel() * buffers
	if need > MaxFramebufferBytes {
		return fmt.Errorf("panel: %d framebuffer bytes exceed %d", need, MaxFramebufferBytes)
	}
	return nil
}
