// Package bringup initialises the board's peripherals in dependency order
// and hands the result to the UI as a DeviceSet.
package bringup

import (
	"errors"
	"fmt"
	"time"

	"tab5/hal"
	"tab5/internal/buildinfo"
	"tab5/internal/engine"
	"tab5/internal/input"
)

// Stage is one step of the init plan. Init may only use what earlier
// stages stored in the DeviceSet.
type Stage struct {
	Name string
	// Essential stages abort bring-up on failure; the rest are recorded in
	// DeviceSet.Faults and skipped.
	Essential bool
	// Delay is a blocking wait before Init.
	Delay time.Duration
	Init  func(s *DeviceSet) error
}

// Plan returns the init plan for cfg, in execution order.
func Plan(cfg Config) []Stage {
	return []Stage{
		{Name: "bus", Essential: true, Init: claimBus},
		{Name: "camera", Init: func(s *DeviceSet) error { return startCamera(s, cfg) }},
		{Name: "ioexpander", Essential: true, Init: func(s *DeviceSet) error { return initIOExpander(s, cfg) }},
		{Name: "codec", Delay: cfg.CodecDelay, Init: initCodec},
		{Name: "power", Essential: true, Init: func(s *DeviceSet) error { return initPower(s, cfg) }},
		{Name: "rtc", Essential: true, Init: func(s *DeviceSet) error { return initClock(s, cfg) }},
		{Name: "touchreset", Init: func(s *DeviceSet) error { return resetTouch(s, cfg) }},
		{Name: "display", Essential: true, Init: func(s *DeviceSet) error { return startDisplay(s, cfg) }},
		{Name: "touch", Init: attachTouch},
		{Name: "input", Essential: true, Init: registerInput},
		{Name: "usb", Init: func(s *DeviceSet) error { return startUSB(s, cfg) }},
		{Name: "unlock", Essential: true, Init: unlockDisplay},
	}
}

// Run executes the init plan once on b and registers the display and the
// input bridge with eng. It never retries a stage.
//
// On a fatal error the partial DeviceSet is returned alongside it.
func Run(b hal.Board, eng *engine.Engine, cfg Config) (*DeviceSet, error) {
	log := b.Logger()
	if cfg.Sleep == nil {
		cfg.Sleep = b.Sleep
	}
	if cfg.Drivers.IOExpander == nil || cfg.Drivers.Power == nil || cfg.Drivers.Clock == nil {
		def := DefaultDrivers()
		if cfg.Drivers.IOExpander == nil {
			cfg.Drivers.IOExpander = def.IOExpander
		}
		if cfg.Drivers.Power == nil {
			cfg.Drivers.Power = def.Power
		}
		if cfg.Drivers.Clock == nil {
			cfg.Drivers.Clock = def.Clock
		}
	}

	log.WriteLineString(fmt.Sprintf("bringup: %s (%s)", b.Name(), buildinfo.Short()))

	s := &DeviceSet{Board: b, Engine: eng}
	for _, st := range Plan(cfg) {
		log.WriteLineString("bringup: " + st.Name + " init")
		if st.Delay > 0 {
			cfg.Sleep(st.Delay)
		}
		err := st.Init(s)
		if err == nil {
			continue
		}
		be := stageError(st.Name, err)
		if st.Essential {
			log.WriteLineString("bringup: " + st.Name + " failed: " + err.Error())
			return s, be
		}
		log.WriteLineString("bringup: " + st.Name + " degraded: " + err.Error())
		s.Faults.Add(be)
	}
	log.WriteLineString(fmt.Sprintf("bringup: complete (%d degraded)", s.Faults.Len()))
	return s, nil
}

func stageError(stage string, err error) *Error {
	var be *Error
	if !errors.As(err, &be) {
		be = attachErr("", err)
	}
	be.Stage = stage
	return be
}

func claimBus(s *DeviceSet) error {
	bus, err := s.Board.ClaimI2C()
	if err != nil {
		return &Error{Kind: ErrBusClaim, Peripheral: "i2c", Err: err}
	}
	if bus == nil {
		return &Error{Kind: ErrBusClaim, Peripheral: "i2c", Reason: "board returned no bus"}
	}
	s.Bus = bus
	return nil
}

func startCamera(s *DeviceSet, cfg Config) error {
	cam := s.Board.Camera()
	if cam == nil {
		return attachErr("camera oscillator", hal.ErrNotImplemented)
	}
	if err := cam.Start(cfg.CameraHz); err != nil {
		return attachErr("camera oscillator", err)
	}
	s.CameraReady = true
	return nil
}

func initIOExpander(s *DeviceSet, cfg Config) error {
	io, err := cfg.Drivers.IOExpander(s.Bus, cfg.IOExpanderAddr)
	if err != nil {
		return attachErr("pi4ioe", err)
	}
	if err := io.Configure(cfg.IOExpander); err != nil {
		return configErr("pi4ioe", "pin setup", err)
	}
	s.IOExpander = io
	return nil
}

func initCodec(s *DeviceSet) error {
	c := s.Board.Codec()
	if c == nil {
		return attachErr("es8388", hal.ErrNotImplemented)
	}
	if err := c.Init(); err != nil {
		return attachErr("es8388", err)
	}
	s.CodecReady = true
	return nil
}

// initPower configures averaging and conversion times first: the
// configuration write resets the chip, which clears any calibration.
func initPower(s *DeviceSet, cfg Config) error {
	pm, err := cfg.Drivers.Power(s.Bus, cfg.PowerAddr)
	if err != nil {
		return attachErr("ina226", err)
	}
	if err := pm.Configure(cfg.Power); err != nil {
		return configErr("ina226", "averaging/conversion", err)
	}
	if err := pm.Calibrate(cfg.ShuntOhms, cfg.MaxAmps); err != nil {
		return configErr("ina226", "calibration", err)
	}
	s.Power = pm
	return nil
}

func initClock(s *DeviceSet, cfg Config) error {
	rtc, err := cfg.Drivers.Clock(s.Bus, cfg.RTCAddr)
	if err != nil {
		return attachErr("rx8130", err)
	}
	if err := rtc.InitBattery(); err != nil {
		return configErr("rx8130", "battery backup", err)
	}
	if err := rtc.ClearIRQFlags(); err != nil {
		return configErr("rx8130", "clear flags", err)
	}
	if err := rtc.DisableIRQ(); err != nil {
		return configErr("rx8130", "disable irq", err)
	}
	s.Clock = rtc
	return nil
}

func resetTouch(s *DeviceSet, cfg Config) error {
	if err := s.IOExpander.Pulse(PinTouchReset, true, TouchResetPulse, cfg.Sleep); err != nil {
		return configErr("gt911", "reset", err)
	}
	return nil
}

func startDisplay(s *DeviceSet, cfg Config) error {
	d, err := engine.NewDisplay(s.Board.Panel(), cfg.Display)
	if err != nil {
		return &Error{Kind: ErrDisplayConstruction, Peripheral: "panel", Err: err}
	}
	if err := d.SetRotation(cfg.Rotation); err != nil {
		d.Unlock()
		return &Error{Kind: ErrDisplayConstruction, Peripheral: "panel", Reason: "rotation", Err: err}
	}
	if err := d.SetBacklight(true); err != nil {
		d.Unlock()
		return &Error{Kind: ErrDisplayConstruction, Peripheral: "backlight", Err: err}
	}
	s.Display = d
	s.Engine.AddDisplay(d)
	return nil
}

// attachTouch failing leaves the bridge without a device; it then reports
// released on every poll.
func attachTouch(s *DeviceSet) error {
	dev, err := s.Board.AttachTouch(s.Bus)
	if err != nil {
		return attachErr("gt911", err)
	}
	s.Digitizer = dev
	return nil
}

func registerInput(s *DeviceSet) error {
	br := input.New(s.Digitizer)
	p, err := s.Engine.RegisterPointerDevice(br, s.Display)
	if err != nil {
		return attachErr("pointer", err)
	}
	s.Bridge = br
	s.Pointer = p
	return nil
}

func startUSB(s *DeviceSet, cfg Config) error {
	u := s.Board.USB()
	if u == nil {
		return attachErr("usb host", hal.ErrNotImplemented)
	}
	if err := u.Start(cfg.USBMode, cfg.USBHostNegotiation); err != nil {
		return attachErr("usb host", err)
	}
	s.USBReady = true
	return nil
}

func unlockDisplay(s *DeviceSet) error {
	s.Display.Unlock()
	return nil
}
