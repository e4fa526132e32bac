package engine

import (
	"context"
	"errors"
	"image/color"
	"io"
	"testing"
	"time"

	"tab5/hal"
	"tab5/hal/host"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
)

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

func newPanel(t *testing.T) *host.Panel {
	t.Helper()
	b := host.New(host.Config{Log: io.Discard})
	return b.HostPanel()
}

func newDisplay(t *testing.T, w, h int, rot drivers.Rotation, f hal.PixelFormat) (*Display, *host.Panel) {
	t.Helper()
	p := newPanel(t)
	d, err := NewDisplay(p, DisplayConfig{
		Width:        w,
		Height:       h,
		DoubleBuffer: true,
		Rotation:     rot,
		Format:       f,
		Placement:    PlacementFor(f),
	})
	if err != nil {
		t.Fatalf("NewDisplay() = %v", err)
	}
	return d, p
}

func TestPlacementFor(t *testing.T) {
	if got := PlacementFor(hal.PixelFormatRGB888); got.DMA || !got.SPIRAM || !got.SWRotate {
		t.Fatalf("PlacementFor(RGB888) = %+v, want DMA off", got)
	}
	if got := PlacementFor(hal.PixelFormatRGB565); !got.DMA || !got.SPIRAM || !got.SWRotate {
		t.Fatalf("PlacementFor(RGB565) = %+v, want DMA on", got)
	}
}

func TestNewDisplayPassesPlacement(t *testing.T) {
	_, p := newDisplay(t, 8, 4, drivers.Rotation0, hal.PixelFormatRGB888)
	cfg := p.Framebuffer().Config()
	if cfg.DMA || !cfg.SPIRAM || cfg.Buffers != 2 {
		t.Fatalf("panel config = %+v, want DMA off, SPIRAM on, 2 buffers", cfg)
	}
}

func TestNewDisplayRejectsBadConfig(t *testing.T) {
	p := newPanel(t)
	_, err := NewDisplay(p, DisplayConfig{Width: 0, Height: 10, Format: hal.PixelFormatRGB565})
	if !errors.Is(err, ErrInvalidDisplayConfig) {
		t.Fatalf("NewDisplay() = %v, want %v", err, ErrInvalidDisplayConfig)
	}
	_, err = NewDisplay(p, DisplayConfig{Width: 4, Height: 4, Format: hal.PixelFormatRGB565, Rotation: drivers.Rotation90})
	if !errors.Is(err, ErrInvalidDisplayConfig) {
		t.Fatalf("NewDisplay(rotation without sw rotate) = %v, want %v", err, ErrInvalidDisplayConfig)
	}
}

func TestRotationChangesLogicalSize(t *testing.T) {
	d, p := newDisplay(t, 720, 1280, drivers.Rotation90, hal.PixelFormatRGB565)
	if w, h := d.Size(); w != 1280 || h != 720 {
		t.Fatalf("Size() = %d,%d, want 1280,720", w, h)
	}
	if got := p.Rotation(); got != drivers.Rotation90 {
		t.Fatalf("panel rotation = %d, want %d", got, drivers.Rotation90)
	}
	if err := d.SetRotation(drivers.Rotation180); err != nil {
		t.Fatalf("SetRotation() = %v", err)
	}
	if w, h := d.Size(); w != 720 || h != 1280 {
		t.Fatalf("Size() after 180 = %d,%d, want 720,1280", w, h)
	}
}

func TestSetPixelMapsToPanel(t *testing.T) {
	d, p := newDisplay(t, 4, 2, drivers.Rotation90, hal.PixelFormatRGB565)
	d.SetPixel(0, 0, white)
	fb := p.Framebuffer()
	// Logical origin of a 90° rotation is the panel's top-right pixel.
	off := 0*fb.StrideBytes() + 3*2
	if got := hal.GetPixel(fb.Buffer(), off, fb.Format()); got != white {
		t.Fatalf("panel pixel = %+v, want white", got)
	}
	if got := d.Pixel(0, 0); got != white {
		t.Fatalf("Pixel(0,0) = %+v, want white", got)
	}
	d.SetPixel(-1, 0, white)
	d.SetPixel(2, 4, white)
}

func TestLockedDisplayIsNotRendered(t *testing.T) {
	d, p := newDisplay(t, 8, 8, drivers.Rotation0, hal.PixelFormatRGB565)
	e := New()
	e.AddDisplay(d)

	e.Handler()
	if got := p.Framebuffer().Presents(); got != 0 {
		t.Fatalf("Presents() while locked = %d, want 0", got)
	}
	d.Unlock()
	e.Handler()
	if got := p.Framebuffer().Presents(); got != 1 {
		t.Fatalf("Presents() after unlock = %d, want 1", got)
	}
	e.Handler()
	if got := p.Framebuffer().Presents(); got != 1 {
		t.Fatalf("Presents() without changes = %d, want 1", got)
	}
}

func TestRegisterPointerDeviceNeedsDisplay(t *testing.T) {
	e := New()
	src := PointerSourceFunc(func() PointerSample { return PointerSample{} })
	if _, err := e.RegisterPointerDevice(src, nil); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("RegisterPointerDevice(nil display) = %v, want %v", err, ErrNoDisplay)
	}
}

func TestPointerEvents(t *testing.T) {
	d, _ := newDisplay(t, 720, 1280, drivers.Rotation90, hal.PixelFormatRGB565)
	d.Unlock()

	e := New()
	var next PointerSample
	dev, err := e.RegisterPointerDevice(PointerSourceFunc(func() PointerSample { return next }), d)
	if err != nil {
		t.Fatalf("RegisterPointerDevice() = %v", err)
	}
	var got []PointerEvent
	d.OnPointer(func(ev PointerEvent) { got = append(got, ev) })

	steps := []PointerSample{
		{X: 100, Y: 200, Pressed: true},
		{X: 100, Y: 200, Pressed: true},
		{X: 110, Y: 205, Pressed: true},
		{},
		{},
	}
	for _, s := range steps {
		next = s
		e.Handler()
	}

	want := []PointerEvent{
		{Kind: PointerPress, X: 100, Y: 200},
		{Kind: PointerMove, X: 110, Y: 205},
		{Kind: PointerRelease, X: 110, Y: 205},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if dev.Reads() != uint64(len(steps)) {
		t.Fatalf("Reads() = %d, want %d", dev.Reads(), len(steps))
	}
	if st := dev.State(); st.Pressed || st.X != 110 || st.Y != 205 {
		t.Fatalf("State() = %+v, want released at 110,205", st)
	}
}

func TestPointerNotReadWhileLocked(t *testing.T) {
	d, _ := newDisplay(t, 8, 8, drivers.Rotation0, hal.PixelFormatRGB565)
	e := New()
	polls := 0
	dev, _ := e.RegisterPointerDevice(PointerSourceFunc(func() PointerSample {
		polls++
		return PointerSample{}
	}), d)

	e.Handler()
	if polls != 0 || dev.Reads() != 0 {
		t.Fatalf("polls while locked = %d, want 0", polls)
	}
	d.Unlock()
	e.Handler()
	if polls != 1 {
		t.Fatalf("polls after unlock = %d, want 1", polls)
	}
}

func TestTimers(t *testing.T) {
	now := time.Unix(1000, 0)
	e := New()
	e.SetClock(func() time.Time { return now })

	var fired int
	tm := e.AddTimer(time.Second, func(*Timer) { fired++ })

	if wait := e.Handler(); wait != time.Second {
		t.Fatalf("Handler() = %v, want 1s", wait)
	}
	if fired != 0 {
		t.Fatalf("fired = %d before period, want 0", fired)
	}

	now = now.Add(time.Second)
	e.Handler()
	if fired != 1 || tm.Runs() != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	tm.Pause()
	now = now.Add(5 * time.Second)
	if wait := e.Handler(); wait != MaxIdle || fired != 1 {
		t.Fatalf("paused: Handler() = %v, fired = %d, want %v, 1", wait, fired, MaxIdle)
	}

	tm.Resume()
	tm.Ready()
	e.Handler()
	if fired != 2 {
		t.Fatalf("fired after Ready = %d, want 2", fired)
	}

	tm.SetPeriod(250 * time.Millisecond)
	if wait := e.Handler(); wait != 250*time.Millisecond {
		t.Fatalf("Handler() after SetPeriod = %v, want 250ms", wait)
	}
}

func TestTimerDeleteFromCallback(t *testing.T) {
	now := time.Unix(0, 0)
	e := New()
	e.SetClock(func() time.Time { return now })

	var fired int
	e.AddTimer(time.Millisecond, func(tm *Timer) {
		fired++
		tm.Delete()
	})
	for i := 0; i < 3; i++ {
		now = now.Add(time.Millisecond)
		e.Handler()
	}
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestHandlerWaitsForDistantTimer(t *testing.T) {
	now := time.Unix(0, 0)
	e := New()
	e.SetClock(func() time.Time { return now })

	if wait := e.Handler(); wait != MaxIdle {
		t.Fatalf("Handler() without timers = %v, want %v", wait, MaxIdle)
	}

	tm := e.AddTimer(3*time.Second, func(*Timer) {})
	if wait := e.Handler(); wait != 3*time.Second {
		t.Fatalf("Handler() = %v, want 3s", wait)
	}
	now = now.Add(time.Second)
	if wait := e.Handler(); wait != 2*time.Second {
		t.Fatalf("Handler() after 1s = %v, want 2s", wait)
	}

	tm.Pause()
	if wait := e.Handler(); wait != MaxIdle {
		t.Fatalf("Handler() with only paused timers = %v, want %v", wait, MaxIdle)
	}
}

func TestHandlerSteadyStateDoesNotAllocate(t *testing.T) {
	d, _ := newDisplay(t, 8, 8, drivers.Rotation0, hal.PixelFormatRGB565)
	d.Unlock()
	now := time.Unix(0, 0)
	e := New()
	e.SetClock(func() time.Time { return now })
	e.AddDisplay(d)
	e.Handler()

	if n := testing.AllocsPerRun(100, func() { e.Handler() }); n != 0 {
		t.Fatalf("Handler() allocs = %v, want 0", n)
	}
	if !d.TryLock() {
		t.Fatalf("display still held after Handler()")
	}
	d.Unlock()
}

func TestLoopStopsAndYields(t *testing.T) {
	e := New()
	var slept []time.Duration
	l := &Loop{
		Engine: e,
		Sleep:  func(d time.Duration) { slept = append(slept, d) },
		Stop:   func(iter uint64) bool { return iter == 3 },
	}
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if e.Iterations() != 3 {
		t.Fatalf("Iterations() = %d, want 3", e.Iterations())
	}
	if len(slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(slept))
	}
	for _, d := range slept {
		if d != TickInterval {
			t.Fatalf("sleep = %v, want %v", d, TickInterval)
		}
	}
}

func TestLoopHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := New()
	l := &Loop{Engine: e, Interval: time.Millisecond, Stop: func(iter uint64) bool {
		if iter == 2 {
			cancel()
		}
		return false
	}}
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
	if e.Iterations() != 2 {
		t.Fatalf("Iterations() = %d, want 2", e.Iterations())
	}
}

func TestLabelAndMarkerDraw(t *testing.T) {
	d, _ := newDisplay(t, 64, 128, drivers.Rotation90, hal.PixelFormatRGB565)
	d.Unlock()
	e := New()
	e.AddDisplay(d)

	l := NewLabel(d, &proggy.TinySZ8pt7b, 12, 9)
	l.SetText("Ready")
	l.SetPos(0, 10, AlignCenter)
	m := NewMarker(d, 4, white)
	m.MoveTo(2, 2)
	e.Handler()

	if !lit(d, 0, 10, d.Width(), 12) {
		t.Fatalf("label drew nothing")
	}
	if got := d.Pixel(2, 2); got != white {
		t.Fatalf("marker pixel = %+v, want white", got)
	}

	m.Hide()
	l.SetHidden(true)
	e.Handler()
	if lit(d, 0, 0, d.Width(), d.Height()) {
		t.Fatalf("screen not cleared after hiding widgets")
	}
}

func TestConsoleKeepsLastLines(t *testing.T) {
	d, _ := newDisplay(t, 64, 128, drivers.Rotation0, hal.PixelFormatRGB565)
	d.Unlock()
	e := New()
	e.AddDisplay(d)

	c := NewConsole(d, 0, 0, 64, 64, ConsoleConfig{Font: &proggy.TinySZ8pt7b, FontHeight: 10, FontOffset: 6, Lines: 2})
	c.Println("a")
	c.Println("b")
	c.Println("c")
	if got := c.Lines(); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("Lines() = %q, want [b c]", got)
	}
	e.Handler()
	if !lit(d, 0, 0, 64, 64) {
		t.Fatalf("console drew nothing")
	}
	if lit(d, 0, 64, 64, 64) {
		t.Fatalf("console drew outside its region")
	}
}

func lit(d *Display, x, y, w, h int) bool {
	bg := d.Screen().Background()
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if d.Pixel(px, py) != bg {
				return true
			}
		}
	}
	return false
}
