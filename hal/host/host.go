//go:build !baremetal

// Package host is a simulated Tab5 board. Its shared I²C bus is a register
// file populated with power monitor, clock, IO expander and touch models, so
// the real drivers run against it unchanged.
package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"tab5/drivers/gt911"
	"tab5/drivers/regbus"
	"tab5/hal"

	"tinygo.org/x/drivers"
)

// ErrInjected marks failures produced by fault injection.
var ErrInjected = errors.New("injected fault")

// Stages lists the fault injection points, in bring-up order.
var Stages = []string{"bus", "camera", "ioexpander", "codec", "power", "rtc", "display", "touch", "usb"}

// Config selects the simulated board's behaviour.
type Config struct {
	// Faults names the stages that fail.
	Faults []string
	// Touch replaces the simulated GT911 when set.
	Touch hal.Digitizer
	// Codec replaces the silent codec when set.
	Codec hal.Codec
	// Log receives log lines; nil means stdout.
	Log io.Writer
	// Sleep replaces time.Sleep.
	Sleep func(time.Duration)
}

// ParseFaults splits a comma separated stage list and rejects unknown names.
func ParseFaults(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !knownStage(f) {
			return nil, fmt.Errorf("unknown stage %q (want one of %s)", f, strings.Join(Stages, ", "))
		}
		out = append(out, f)
	}
	return out, nil
}

func knownStage(s string) bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Board implements hal.Board.
type Board struct {
	cfg    Config
	logger *logger
	faults map[string]bool

	mu      sync.Mutex
	claimed bool
	slept   time.Duration

	bus   *regbus.Bus
	power *regbus.Target
	rtc   *regbus.Target
	ioexp *regbus.Target
	touch *touchModel

	panel  *Panel
	camera *cameraClock
	codec  *codec
	usb    *usbHost
}

var _ hal.Board = (*Board)(nil)

// New returns a simulated board.
func New(cfg Config) *Board {
	w := cfg.Log
	if w == nil {
		w = os.Stdout
	}
	b := &Board{
		cfg:    cfg,
		logger: &logger{w: w},
		faults: make(map[string]bool),
		bus:    regbus.New(),
		power:  newPowerModel(),
		rtc:    newRTCModel(time.Now),
		ioexp:  newIOExpanderModel(),
		touch:  newTouchModel(),
		panel:  &Panel{},
		camera: &cameraClock{},
		codec:  &codec{next: cfg.Codec},
		usb:    &usbHost{},
	}
	for _, f := range cfg.Faults {
		b.faults[f] = true
	}

	if !b.faults["ioexpander"] {
		b.bus.Attach(AddrIOExpander, b.ioexp)
	}
	b.bus.Attach(AddrPower, b.power)
	b.bus.Attach(AddrRTC, b.rtc)
	if !b.faults["touch"] {
		b.bus.Attach(AddrTouch, b.touch.tg)
	}
	if b.faults["power"] {
		b.power.Fail = b.fault("power")
	}
	if b.faults["rtc"] {
		b.rtc.Fail = b.fault("rtc")
	}
	b.camera.fail = b.fault("camera")
	b.codec.fail = b.fault("codec")
	b.panel.fail = b.fault("display")
	b.usb.fail = b.fault("usb")
	return b
}

func (b *Board) fault(stage string) error {
	if !b.faults[stage] {
		return nil
	}
	return fmt.Errorf("%s: %w", stage, ErrInjected)
}

func (b *Board) Name() string       { return "Tab5 (host simulation)" }
func (b *Board) Logger() hal.Logger { return b.logger }

func (b *Board) ClaimI2C() (drivers.I2C, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fault("bus"); err != nil {
		return nil, err
	}
	if b.claimed {
		return nil, hal.ErrBusClaimed
	}
	b.claimed = true
	return b.bus, nil
}

func (b *Board) AttachTouch(bus drivers.I2C) (hal.Digitizer, error) {
	if err := b.fault("touch"); err != nil {
		return nil, err
	}
	if b.cfg.Touch != nil {
		return b.cfg.Touch, nil
	}
	d, err := gt911.Attach(bus, AddrTouch)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (b *Board) Camera() hal.CameraClock { return b.camera }
func (b *Board) Codec() hal.Codec        { return b.codec }
func (b *Board) Panel() hal.Panel        { return b.panel }
func (b *Board) USB() hal.USBHost        { return b.usb }

func (b *Board) Sleep(d time.Duration) {
	b.mu.Lock()
	b.slept += d
	b.mu.Unlock()
	if b.cfg.Sleep != nil {
		b.cfg.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Slept returns the total time passed to Sleep.
func (b *Board) Slept() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slept
}

// Bus exposes the simulated I²C bus.
func (b *Board) Bus() *regbus.Bus { return b.bus }

// HostPanel returns the concrete simulated panel.
func (b *Board) HostPanel() *Panel { return b.panel }

// Touch presses the simulated digitizer at the given points. Call it from
// the goroutine that drives the engine.
func (b *Board) Touch(pts ...[2]uint16) { b.touch.set(pts) }

// Release lifts every simulated contact.
func (b *Board) Release() { b.touch.set(nil) }

// CameraStarted returns the started reference frequency, or 0.
func (b *Board) CameraStarted() uint32 { return b.camera.hz }

// CodecReady reports whether the codec initialised.
func (b *Board) CodecReady() bool { return b.codec.ready }

// USBStarted reports the USB host start parameters.
func (b *Board) USBStarted() (mode hal.USBPowerMode, negotiation, ok bool) {
	return b.usb.mode, b.usb.negotiation, b.usb.started
}

type cameraClock struct {
	fail error
	hz   uint32
}

func (c *cameraClock) Start(freqHz uint32) error {
	if c.fail != nil {
		return c.fail
	}
	c.hz = freqHz
	return nil
}

// codec is the ES8388 stand-in: silent unless a real output is supplied.
type codec struct {
	fail  error
	next  hal.Codec
	ready bool
}

func (c *codec) Init() error {
	if c.fail != nil {
		return c.fail
	}
	if c.next != nil {
		if err := c.next.Init(); err != nil {
			return err
		}
	}
	c.ready = true
	return nil
}

type usbHost struct {
	fail        error
	started     bool
	mode        hal.USBPowerMode
	negotiation bool
}

func (u *usbHost) Start(mode hal.USBPowerMode, hostNegotiation bool) error {
	if u.fail != nil {
		return u.fail
	}
	u.started, u.mode, u.negotiation = true, mode, hostNegotiation
	return nil
}

type logger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *logger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *logger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
