// Package app is the firmware entry: bring-up, then the main screen driven
// by the engine tick loop.
package app

import (
	"context"

	"tab5/hal"
	"tab5/internal/bringup"
	"tab5/internal/engine"
)

// Config tunes the app for a board.
type Config struct {
	// Format is the panel color format; zero means RGB565.
	Format hal.PixelFormat
	// Width and Height override the physical panel size when non-zero.
	Width, Height int
	// SingleBuffer allocates one framebuffer instead of two.
	SingleBuffer bool
}

type system struct {
	b   hal.Board
	eng *engine.Engine
	dev *bringup.DeviceSet
	ui  *screen
}

// New runs bring-up on b with the default config and returns the per-tick
// step. After a fatal bring-up error the step returns that error.
func New(b hal.Board) func() error {
	return NewWithConfig(b, Config{})
}

func NewWithConfig(b hal.Board, cfg Config) func() error {
	sys, err := start(b, cfg)
	if err != nil {
		return func() error { return err }
	}
	return sys.step
}

// Run brings the board up and runs the tick loop forever (TinyGo entry).
func Run(b hal.Board) {
	RunWithConfig(b, Config{})
}

func RunWithConfig(b hal.Board, cfg Config) {
	sys, err := start(b, cfg)
	if err != nil {
		select {}
	}
	loop := &engine.Loop{Engine: sys.eng, Interval: engine.TickInterval, Sleep: b.Sleep}
	_ = loop.Run(context.Background())
	select {}
}

func start(b hal.Board, cfg Config) (*system, error) {
	b = withBootDiag(b)
	if cfg.Format == 0 {
		cfg.Format = hal.PixelFormatRGB565
	}

	bcfg := bringup.DefaultConfig(cfg.Format)
	if cfg.Width > 0 && cfg.Height > 0 {
		bcfg.Display.Width, bcfg.Display.Height = cfg.Width, cfg.Height
	}
	if cfg.SingleBuffer {
		bcfg.Display.DoubleBuffer = false
	}

	eng := engine.New()
	dev, err := bringup.Run(b, eng, bcfg)
	if err != nil {
		showFatal(b, dev, err)
		return nil, err
	}

	sys := &system{b: b, eng: eng, dev: dev, ui: newScreen(dev)}
	b.Logger().WriteLineString("app: entering main loop")
	return sys, nil
}

func (s *system) step() error {
	s.eng.Handler()
	return s.eng.Err()
}
