package engine

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"tab5/hal"

	"tinygo.org/x/drivers"
)

var ErrInvalidDisplayConfig = errors.New("invalid display config")

// Placement selects where draw buffers live.
type Placement struct {
	DMA      bool
	SPIRAM   bool
	SWRotate bool
}

// PlacementFor returns the buffer placement for a color format. The wide
// 24-bit format does not fit the DMA-capable region, so it is moved out of
// it; narrower formats stay DMA-backed.
func PlacementFor(f hal.PixelFormat) Placement {
	return Placement{
		DMA:      f != hal.PixelFormatRGB888,
		SPIRAM:   true,
		SWRotate: true,
	}
}

// DisplayConfig is consumed once to construct a Display.
type DisplayConfig struct {
	Width        int // physical panel width
	Height       int // physical panel height
	DoubleBuffer bool
	Rotation     drivers.Rotation
	Format       hal.PixelFormat
	Placement    Placement
}

// Buffers returns the number of framebuffers to allocate.
func (c DisplayConfig) Buffers() int {
	if c.DoubleBuffer {
		return 2
	}
	return 1
}

// Validate checks the fields NewDisplay relies on.
func (c DisplayConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidDisplayConfig, c.Width, c.Height)
	}
	if c.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: pixel format %d", ErrInvalidDisplayConfig, c.Format)
	}
	switch c.Rotation {
	case drivers.Rotation0, drivers.Rotation90, drivers.Rotation180, drivers.Rotation270:
	default:
		return fmt.Errorf("%w: rotation %d", ErrInvalidDisplayConfig, c.Rotation)
	}
	if c.Rotation != drivers.Rotation0 && !c.Placement.SWRotate {
		return fmt.Errorf("%w: rotation requires software rotation", ErrInvalidDisplayConfig)
	}
	return nil
}

// Display is the display subsystem: it owns the panel framebuffer and maps
// logical (rotated) drawing onto it.
//
// A new Display is returned locked. The engine skips locked displays, so
// nothing renders until setup calls Unlock.
type Display struct {
	mu sync.Mutex

	panel hal.Panel
	fb    hal.Framebuffer
	cfg   DisplayConfig

	rot  drivers.Rotation
	pw   int
	ph   int
	lw   int
	lh   int
	bpp  int
	buf  []byte
	strd int

	screen    *Screen
	dirty     bool
	backlight bool
	handlers  []func(PointerEvent)
}

// NewDisplay starts panel with cfg and returns the locked display.
func NewDisplay(panel hal.Panel, cfg DisplayConfig) (*Display, error) {
	if panel == nil {
		return nil, fmt.Errorf("new display: %w", hal.ErrNotImplemented)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fb, err := panel.Start(hal.PanelConfig{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Format:  cfg.Format,
		Buffers: cfg.Buffers(),
		DMA:     cfg.Placement.DMA,
		SPIRAM:  cfg.Placement.SPIRAM,
	})
	if err != nil {
		return nil, fmt.Errorf("start panel: %w", err)
	}
	if fb == nil {
		return nil, errors.New("start panel: no framebuffer")
	}
	if fb.Width() != cfg.Width || fb.Height() != cfg.Height || fb.Format() != cfg.Format {
		return nil, fmt.Errorf("start panel: got %dx%d %s, want %dx%d %s",
			fb.Width(), fb.Height(), fb.Format(), cfg.Width, cfg.Height, cfg.Format)
	}

	d := &Display{
		panel:  panel,
		fb:     fb,
		cfg:    cfg,
		pw:     cfg.Width,
		ph:     cfg.Height,
		bpp:    cfg.Format.BytesPerPixel(),
		screen: NewScreen(),
	}
	d.mu.Lock()
	if err := d.SetRotation(cfg.Rotation); err != nil {
		d.mu.Unlock()
		return nil, err
	}
	return d, nil
}

// Lock takes the exclusive setup/render lock.
func (d *Display) Lock() { d.mu.Lock() }

// Unlock releases the lock so the engine may render.
func (d *Display) Unlock() { d.mu.Unlock() }

// TryLock reports whether the lock was taken.
func (d *Display) TryLock() bool { return d.mu.TryLock() }

// Config returns the construction config.
func (d *Display) Config() DisplayConfig { return d.cfg }

// Framebuffer returns the panel framebuffer.
func (d *Display) Framebuffer() hal.Framebuffer { return d.fb }

// Rotation returns the current content rotation.
func (d *Display) Rotation() drivers.Rotation { return d.rot }

// SetRotation changes the content rotation and requests a full redraw.
func (d *Display) SetRotation(rot drivers.Rotation) error {
	switch rot {
	case drivers.Rotation0, drivers.Rotation90, drivers.Rotation180, drivers.Rotation270:
	default:
		return fmt.Errorf("%w: rotation %d", ErrInvalidDisplayConfig, rot)
	}
	if err := d.panel.SetRotation(rot); err != nil && !errors.Is(err, hal.ErrNotImplemented) {
		return fmt.Errorf("panel rotation: %w", err)
	}
	d.rot = rot
	d.lw, d.lh = hal.LogicalSize(rot, d.pw, d.ph)
	d.dirty = true
	return nil
}

// SetBacklight switches the panel backlight.
func (d *Display) SetBacklight(on bool) error {
	if err := d.panel.SetBacklight(on); err != nil {
		return err
	}
	d.backlight = on
	return nil
}

// Backlight reports the last backlight state set.
func (d *Display) Backlight() bool { return d.backlight }

// Width returns the logical width.
func (d *Display) Width() int { return d.lw }

// Height returns the logical height.
func (d *Display) Height() int { return d.lh }

// Size implements drivers.Displayer.
func (d *Display) Size() (x, y int16) { return int16(d.lw), int16(d.lh) }

// SetPixel implements drivers.Displayer in logical coordinates.
func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.lw || iy < 0 || iy >= d.lh {
		return
	}
	px, py := hal.ToPhysical(d.rot, ix, iy, d.pw, d.ph)
	d.refreshBuffer()
	hal.PutPixel(d.buf, py*d.strd+px*d.bpp, d.cfg.Format, c)
}

// Pixel reads back a logical pixel.
func (d *Display) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= d.lw || y < 0 || y >= d.lh {
		return color.RGBA{}
	}
	px, py := hal.ToPhysical(d.rot, x, y, d.pw, d.ph)
	d.refreshBuffer()
	return hal.GetPixel(d.buf, py*d.strd+px*d.bpp, d.cfg.Format)
}

// FillRectangle paints a logical rectangle.
func (d *Display) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.lw)
	y0 := clampInt(int(y), 0, d.lh)
	x1 := clampInt(int(x)+int(width), 0, d.lw)
	y1 := clampInt(int(y)+int(height), 0, d.lh)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.SetPixel(int16(px), int16(py), c)
		}
	}
	return nil
}

// Clear paints the whole panel.
func (d *Display) Clear(c color.RGBA) {
	d.refreshBuffer()
	hal.Fill(d.buf, d.cfg.Format, c)
}

// Display implements drivers.Displayer by presenting the framebuffer.
func (d *Display) Display() error {
	err := d.fb.Present()
	if errors.Is(err, hal.ErrNotImplemented) {
		return nil
	}
	return err
}

// SetScroll is a no-op; scrolling is done in software.
func (d *Display) SetScroll(line int16) {
	_ = line
}

// Screen returns the active screen.
func (d *Display) Screen() *Screen { return d.screen }

// Invalidate requests a redraw on the next engine pass.
func (d *Display) Invalidate() { d.dirty = true }

// Dirty reports whether a redraw is pending.
func (d *Display) Dirty() bool { return d.dirty }

// OnPointer registers fn for pointer events routed to this display.
func (d *Display) OnPointer(fn func(PointerEvent)) {
	if fn != nil {
		d.handlers = append(d.handlers, fn)
	}
}

func (d *Display) dispatch(ev PointerEvent) {
	for _, fn := range d.handlers {
		fn(ev)
	}
}

// render redraws the screen if needed. Caller holds the lock.
func (d *Display) render() error {
	if !d.dirty {
		return nil
	}
	d.dirty = false
	d.Clear(d.screen.Background())
	d.screen.draw(d)
	return d.Display()
}

// A double-buffered framebuffer swaps its backing slice on Present.
func (d *Display) refreshBuffer() {
	d.buf = d.fb.Buffer()
	d.strd = d.fb.StrideBytes()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
