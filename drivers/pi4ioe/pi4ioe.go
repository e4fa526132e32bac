// Package pi4ioe drives the Diodes PI4IOE5V6408 8-bit I²C IO expander.
package pi4ioe

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// AddressDefault is the address with ADDR pulled low.
const AddressDefault uint16 = 0x43

const (
	RegDeviceID     byte = 0x01
	RegIODirection  byte = 0x03
	RegOutputState  byte = 0x05
	RegOutputHighZ  byte = 0x07
	RegInputDefault byte = 0x09
	RegPullEnable   byte = 0x0B
	RegPullSelect   byte = 0x0D
	RegInputStatus  byte = 0x0F
	RegIRQMask      byte = 0x11
	RegIRQStatus    byte = 0x13
)

const swReset byte = 1 << 0

var ErrInvalidPin = errors.New("pi4ioe: pin out of range")

// Config selects pin directions and the initial output levels. Bit n
// controls pin Pn.
type Config struct {
	Outputs  uint8 // 1 = output
	Initial  uint8 // output levels applied before the direction switch
	HighZ    uint8 // 1 = output held in high impedance
	PullUps  uint8 // 1 = pull-up enabled on that input
	IRQMasks uint8 // 1 = interrupt masked; defaults to all masked when zero
}

// Device is a PI4IOE5V6408 on an I²C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	out uint8

	w [2]byte
	r [1]byte
}

// New binds a device without touching the bus.
func New(i2c drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Attach binds a device and reads its ID register.
func Attach(i2c drivers.I2C, addr uint16) (*Device, error) {
	d := New(i2c, addr)
	if _, err := d.readReg(RegDeviceID); err != nil {
		return nil, fmt.Errorf("pi4ioe probe 0x%02x: %w", d.addr, err)
	}
	return d, nil
}

// Configure resets the expander and applies cfg.
func (d *Device) Configure(cfg Config) error {
	if err := d.writeReg(RegDeviceID, swReset); err != nil {
		return fmt.Errorf("pi4ioe reset: %w", err)
	}
	mask := cfg.IRQMasks
	if mask == 0 {
		mask = 0xFF
	}
	steps := []struct{ reg, val byte }{
		{RegIRQMask, mask},
		{RegOutputState, cfg.Initial},
		{RegOutputHighZ, cfg.HighZ},
		{RegPullSelect, cfg.PullUps},
		{RegPullEnable, cfg.PullUps},
		{RegIODirection, cfg.Outputs},
	}
	for _, s := range steps {
		if err := d.writeReg(s.reg, s.val); err != nil {
			return fmt.Errorf("pi4ioe configure reg 0x%02x: %w", s.reg, err)
		}
	}
	d.out = cfg.Initial
	return nil
}

// Set drives output pin to level.
func (d *Device) Set(pin uint8, level bool) error {
	if pin > 7 {
		return ErrInvalidPin
	}
	out := d.out
	if level {
		out |= 1 << pin
	} else {
		out &^= 1 << pin
	}
	if err := d.writeReg(RegOutputState, out); err != nil {
		return err
	}
	d.out = out
	return nil
}

// Get reads the input level of pin.
func (d *Device) Get(pin uint8) (bool, error) {
	if pin > 7 {
		return false, ErrInvalidPin
	}
	v, err := d.readReg(RegInputStatus)
	if err != nil {
		return false, err
	}
	return v&(1<<pin) != 0, nil
}

// Pulse drives pin to its active level for width, then releases it.
// sleep is the blocking wait to use; nil means time.Sleep.
func (d *Device) Pulse(pin uint8, activeLow bool, width time.Duration, sleep func(time.Duration)) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	if err := d.Set(pin, !activeLow); err != nil {
		return err
	}
	sleep(width)
	return d.Set(pin, activeLow)
}

// Outputs returns the last written output state.
func (d *Device) Outputs() uint8 { return d.out }

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.i2c.Tx(d.addr, d.w[:2], nil)
}
