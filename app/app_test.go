//go:build !tinygo

package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"tab5/drivers/rx8130"
	"tab5/hal"
	"tab5/hal/host"
	"tab5/internal/bringup"
)

func newBoard(log *bytes.Buffer, faults ...string) *host.Board {
	return host.New(host.Config{Faults: faults, Log: log, Sleep: func(time.Duration) {}})
}

func TestStartShowsMainScreen(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log)
	sys, err := start(b, Config{})
	if err != nil {
		t.Fatalf("start() = %v", err)
	}
	if err := sys.step(); err != nil {
		t.Fatalf("step() = %v", err)
	}

	if got := sys.ui.title.Text(); got != "M5Stack Tab5" {
		t.Fatalf("title = %q", got)
	}
	if got := sys.ui.status.Text(); got != "System Ready" {
		t.Fatalf("status = %q", got)
	}
	if got := sys.ui.power.Text(); got != "Bus Voltage: 5.00V" {
		t.Fatalf("power = %q, want Bus Voltage: 5.00V", got)
	}
	if got := sys.ui.clock.Text(); !strings.HasPrefix(got, "RTC: ") {
		t.Fatalf("clock = %q", got)
	}
	if got := b.HostPanel().Framebuffer().Presents(); got == 0 {
		t.Fatalf("Presents() = 0 after first step")
	}
	if !strings.Contains(log.String(), "app: entering main loop") {
		t.Fatalf("log missing main loop line:\n%s", log.String())
	}
}

func TestTouchMovesMarker(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log)
	sys, err := start(b, Config{})
	if err != nil {
		t.Fatalf("start() = %v", err)
	}

	b.Touch([2]uint16{100, 200})
	_ = sys.step()
	if !sys.ui.marker.Visible() {
		t.Fatalf("marker hidden while pressed")
	}
	if x, y := sys.ui.marker.Position(); x != 100 || y != 200 {
		t.Fatalf("marker at %d,%d, want 100,200", x, y)
	}
	if got := sys.ui.touch.Text(); got != "Touch: 100, 200" {
		t.Fatalf("touch label = %q", got)
	}

	b.Release()
	_ = sys.step()
	if sys.ui.marker.Visible() {
		t.Fatalf("marker visible after release")
	}
}

func TestDegradedStagesListed(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log, "camera", "touch")
	sys, err := start(b, Config{Format: hal.PixelFormatRGB888})
	if err != nil {
		t.Fatalf("start() = %v", err)
	}
	lines := strings.Join(sys.ui.console.Lines(), "\n")
	if !strings.Contains(lines, "degraded: bringup camera") || !strings.Contains(lines, "degraded: bringup touch") {
		t.Fatalf("console = %q, want camera and touch", lines)
	}
	if got := sys.ui.touch.Text(); got != "Touch: unavailable" {
		t.Fatalf("touch label = %q", got)
	}
}

func TestFatalBringUp(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log, "display")
	step := New(b)
	err := step()
	if !errors.Is(err, bringup.ErrDisplayConstruction) {
		t.Fatalf("step() = %v, want %v", err, bringup.ErrDisplayConstruction)
	}
	if !strings.Contains(log.String(), "app: Tab5 bring-up failed:") {
		t.Fatalf("log missing failure banner:\n%s", log.String())
	}
}

func TestBusTakenStopsBringUp(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log)
	_, err := b.ClaimI2C()
	if err != nil {
		t.Fatalf("ClaimI2C() = %v", err)
	}
	// The bus is already taken, so bring-up stops at its first stage and
	// nothing reaches the panel.
	if _, err := start(b, Config{}); !errors.Is(err, bringup.ErrBusClaim) {
		t.Fatalf("start() = %v, want %v", err, bringup.ErrBusClaim)
	}
	if fb := b.HostPanel().Framebuffer(); fb != nil {
		t.Fatalf("panel started after bus failure")
	}
}

func TestClockNotSetAfterPowerLoss(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log)
	tg, _ := b.Bus().Target(host.AddrRTC)
	tg.Set(uint16(rx8130.RegFlag), rx8130.FlagVLF)

	sys, err := start(b, Config{})
	if err != nil {
		t.Fatalf("start() = %v", err)
	}
	if got := sys.ui.clock.Text(); got != "RTC: not set" {
		t.Fatalf("clock = %q, want RTC: not set", got)
	}
}

func TestSmallPanelOverride(t *testing.T) {
	var log bytes.Buffer
	b := newBoard(&log)
	sys, err := start(b, Config{Width: 320, Height: 480, SingleBuffer: true})
	if err != nil {
		t.Fatalf("start() = %v", err)
	}
	cfg := b.HostPanel().Framebuffer().Config()
	if cfg.Width != 320 || cfg.Height != 480 || cfg.Buffers != 1 {
		t.Fatalf("panel config = %+v, want 320x480 single buffered", cfg)
	}
	if w, h := sys.dev.Display.Size(); w != 480 || h != 320 {
		t.Fatalf("Size() = %d, %d, want 480, 320", w, h)
	}
}

func TestTakeRunes(t *testing.T) {
	p, r := takeRunes("héllo", 2)
	if p != "hé" || r != "llo" {
		t.Fatalf("takeRunes() = %q, %q", p, r)
	}
	p, r = takeRunes("ab", 5)
	if p != "ab" || r != "" {
		t.Fatalf("takeRunes() = %q, %q", p, r)
	}
}
