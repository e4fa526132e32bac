package bringup

import (
	"time"

	"tab5/drivers/ina226"
	"tab5/drivers/pi4ioe"
	"tab5/drivers/rx8130"
	"tab5/hal"
	"tab5/internal/engine"
	"tab5/internal/input"

	"tinygo.org/x/drivers"
)

// IOExpander is the part of the IO expander bring-up uses.
type IOExpander interface {
	Configure(cfg pi4ioe.Config) error
	Set(pin uint8, level bool) error
	Pulse(pin uint8, activeLow bool, width time.Duration, sleep func(time.Duration)) error
}

// PowerMonitor is the part of the power monitor bring-up and the UI use.
type PowerMonitor interface {
	Configure(cfg ina226.Config) error
	Calibrate(shuntOhms, maxAmps float32) error
	ReadBusVoltage() (float32, error)
}

// Clock is the part of the real-time clock bring-up and the UI use.
type Clock interface {
	InitBattery() error
	ClearIRQFlags() error
	DisableIRQ() error
	ReadTime() (time.Time, error)
}

// Drivers constructs bus peripherals. Each constructor attaches at addr and
// fails if the chip does not answer.
type Drivers struct {
	IOExpander func(bus drivers.I2C, addr uint16) (IOExpander, error)
	Power      func(bus drivers.I2C, addr uint16) (PowerMonitor, error)
	Clock      func(bus drivers.I2C, addr uint16) (Clock, error)
}

// DefaultDrivers binds the Tab5 chips.
func DefaultDrivers() Drivers {
	return Drivers{
		IOExpander: func(bus drivers.I2C, addr uint16) (IOExpander, error) {
			d, err := pi4ioe.Attach(bus, addr)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		Power: func(bus drivers.I2C, addr uint16) (PowerMonitor, error) {
			d, err := ina226.Attach(bus, addr)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
		Clock: func(bus drivers.I2C, addr uint16) (Clock, error) {
			d, err := rx8130.Attach(bus, addr)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	}
}

// DeviceSet owns everything bring-up produced. It is built once and handed
// to the UI; nothing else holds hardware handles.
type DeviceSet struct {
	Board  hal.Board
	Engine *engine.Engine

	Bus        drivers.I2C
	IOExpander IOExpander
	Power      PowerMonitor
	Clock      Clock
	Digitizer  hal.Digitizer

	Display *engine.Display
	Bridge  *input.Bridge
	Pointer *engine.PointerDevice

	CameraReady bool
	CodecReady  bool
	USBReady    bool

	// Faults lists the stages that failed without stopping bring-up.
	Faults Faults
}

// TouchReady reports whether the bridge has a digitizer behind it.
func (s *DeviceSet) TouchReady() bool { return s.Bridge.Ready() }
