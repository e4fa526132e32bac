//go:build !baremetal

package host

import (
	"errors"
	"fmt"
	"sync"

	"tab5/hal"

	"tinygo.org/x/drivers"
)

var errPanelStarted = errors.New("panel already started")

// Panel is the simulated MIPI-DSI panel. Its framebuffer is plain memory that
// a window (or a test) can snapshot.
type Panel struct {
	mu        sync.Mutex
	fail      error
	fb        *Framebuffer
	rot       drivers.Rotation
	backlight bool
}

func (p *Panel) Start(cfg hal.PanelConfig) (hal.Framebuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return nil, p.fail
	}
	if p.fb != nil {
		return nil, errPanelStarted
	}
	bpp := cfg.Format.BytesPerPixel()
	if cfg.Width <= 0 || cfg.Height <= 0 || bpp == 0 {
		return nil, fmt.Errorf("panel: unsupported mode %dx%d %s", cfg.Width, cfg.Height, cfg.Format)
	}
	p.fb = newFramebuffer(cfg)
	return p.fb, nil
}

func (p *Panel) SetRotation(rot drivers.Rotation) error {
	p.mu.Lock()
	p.rot = rot
	p.mu.Unlock()
	return nil
}

func (p *Panel) SetBacklight(on bool) error {
	p.mu.Lock()
	p.backlight = on
	p.mu.Unlock()
	return nil
}

// Framebuffer returns the framebuffer, or nil before Start.
func (p *Panel) Framebuffer() *Framebuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fb
}

func (p *Panel) Rotation() drivers.Rotation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rot
}

func (p *Panel) Backlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlight
}

// Framebuffer is a host framebuffer with one or two buffers. Drawing goes to
// the back buffer; Present publishes it to the front buffer that Snapshot
// reads.
type Framebuffer struct {
	mu       sync.Mutex
	cfg      hal.PanelConfig
	stride   int
	back     []byte
	front    []byte
	presents uint64
}

func newFramebuffer(cfg hal.PanelConfig) *Framebuffer {
	stride := cfg.Width * cfg.Format.BytesPerPixel()
	f := &Framebuffer{
		cfg:    cfg,
		stride: stride,
		back:   make([]byte, stride*cfg.Height),
	}
	f.front = f.back
	if cfg.Buffers > 1 {
		f.front = make([]byte, len(f.back))
	}
	return f
}

func (f *Framebuffer) Width() int              { return f.cfg.Width }
func (f *Framebuffer) Height() int             { return f.cfg.Height }
func (f *Framebuffer) Format() hal.PixelFormat { return f.cfg.Format }
func (f *Framebuffer) StrideBytes() int        { return f.stride }
func (f *Framebuffer) Buffer() []byte          { return f.back }

// Config returns the allocation request the panel was started with.
func (f *Framebuffer) Config() hal.PanelConfig { return f.cfg }

func (f *Framebuffer) ClearRGB(r, g, b uint8) {
	hal.Fill(f.back, f.cfg.Format, hal.RGBA(r, g, b))
}

func (f *Framebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.front) > 0 && &f.front[0] != &f.back[0] {
		copy(f.front, f.back)
	}
	f.presents++
	return nil
}

// Presents returns how many frames have been published.
func (f *Framebuffer) Presents() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presents
}

// Snapshot copies the front buffer into dst.
func (f *Framebuffer) Snapshot(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
}
