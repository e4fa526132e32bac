// Package input adapts a polled touch digitizer to the engine's pointer
// source.
package input

import (
	"tab5/hal"
	"tab5/internal/engine"

	"tinygo.org/x/drivers/touch"
)

// Bridge is an engine.PointerSource backed by a digitizer. It holds no
// state between polls: each poll reflects only the digitizer's latest report.
type Bridge struct {
	dev hal.Digitizer
	pt  [1]touch.Point
}

var _ engine.PointerSource = (*Bridge)(nil)

// New returns a bridge over dev. A nil dev is a digitizer that never
// attached; the bridge then reports released forever.
func New(dev hal.Digitizer) *Bridge {
	return &Bridge{dev: dev}
}

// Ready reports whether a digitizer is attached.
func (b *Bridge) Ready() bool { return b != nil && b.dev != nil }

// Poll samples the digitizer once. Read failures and empty reports are
// released samples; only the first contact is used.
func (b *Bridge) Poll() engine.PointerSample {
	if !b.Ready() {
		return engine.PointerSample{}
	}
	if err := b.dev.ReadData(); err != nil {
		return engine.PointerSample{}
	}
	if b.dev.Coordinates(b.pt[:]) == 0 {
		return engine.PointerSample{}
	}
	p := b.pt[0]
	return engine.PointerSample{X: int16(p.X), Y: int16(p.Y), Pressed: true}
}
