// Package rx8130 drives the Epson RX8130CE real-time clock with battery backup.
package rx8130

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// AddressDefault is the fixed bus address.
const AddressDefault uint16 = 0x32

const (
	RegSeconds   byte = 0x10
	RegMinutes   byte = 0x11
	RegHours     byte = 0x12
	RegWeekday   byte = 0x13
	RegDay       byte = 0x14
	RegMonth     byte = 0x15
	RegYear      byte = 0x16
	RegExtension byte = 0x1C
	RegFlag      byte = 0x1D
	RegControl0  byte = 0x1E
	RegControl1  byte = 0x1F
)

// Flag register bits.
const (
	FlagVLF byte = 1 << 1 // voltage low, time invalid
	FlagAF  byte = 1 << 3 // alarm
	FlagTF  byte = 1 << 4 // wakeup timer
	FlagUF  byte = 1 << 5 // update

	flagsIRQ = FlagAF | FlagTF | FlagUF
)

// Control0 interrupt enables.
const (
	IRQAlarm  byte = 1 << 3
	IRQTimer  byte = 1 << 4
	IRQUpdate byte = 1 << 5

	irqAll = IRQAlarm | IRQTimer | IRQUpdate
)

// Control1 battery switch bits.
const (
	ctl1INIEN byte = 1 << 4 // initial power switch enable
	ctl1CHGEN byte = 1 << 5 // backup battery charge enable
)

// Extension register timer enable.
const extTE byte = 1 << 4

var (
	ErrNoResponse  = errors.New("rx8130: no response")
	ErrInvalidTime = errors.New("rx8130: time invalid (voltage low)")
)

// Device is an RX8130 on an I²C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	w [8]byte
	r [7]byte
}

// New binds a device without touching the bus.
func New(i2c drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Attach binds a device and verifies it answers on the bus.
func Attach(i2c drivers.I2C, addr uint16) (*Device, error) {
	d := New(i2c, addr)
	if err := d.Begin(); err != nil {
		return nil, err
	}
	return d, nil
}

// Begin checks that the chip responds.
func (d *Device) Begin() error {
	if _, err := d.readReg(RegControl0); err != nil {
		return fmt.Errorf("%w at 0x%02x: %v", ErrNoResponse, d.addr, err)
	}
	return nil
}

// InitBattery enables the backup switch and trickle charge so register
// state survives main power loss.
func (d *Device) InitBattery() error {
	v, err := d.readReg(RegControl1)
	if err != nil {
		return err
	}
	return d.writeReg(RegControl1, v|ctl1INIEN|ctl1CHGEN)
}

// ClearIRQFlags clears the pending interrupt flags. VLF is a status bit,
// not an interrupt, and stays set until SetTime.
func (d *Device) ClearIRQFlags() error {
	v, err := d.readReg(RegFlag)
	if err != nil {
		return err
	}
	return d.writeReg(RegFlag, v&^flagsIRQ)
}

// DisableIRQ masks all interrupt sources and stops the wakeup timer.
func (d *Device) DisableIRQ() error {
	v, err := d.readReg(RegControl0)
	if err != nil {
		return err
	}
	if err := d.writeReg(RegControl0, v&^irqAll); err != nil {
		return err
	}
	ext, err := d.readReg(RegExtension)
	if err != nil {
		return err
	}
	return d.writeReg(RegExtension, ext&^extTE)
}

// Flags returns the pending interrupt flags.
func (d *Device) Flags() (byte, error) {
	v, err := d.readReg(RegFlag)
	return v & flagsIRQ, err
}

// TimeValid reports whether the clock has been set since it last lost
// power.
func (d *Device) TimeValid() (bool, error) {
	v, err := d.readReg(RegFlag)
	if err != nil {
		return false, err
	}
	return v&FlagVLF == 0, nil
}

// IRQEnabled reports whether any interrupt source is enabled.
func (d *Device) IRQEnabled() (bool, error) {
	v, err := d.readReg(RegControl0)
	if err != nil {
		return false, err
	}
	return v&irqAll != 0, nil
}

// ReadTime returns the clock time in UTC.
func (d *Device) ReadTime() (time.Time, error) {
	flags, err := d.readReg(RegFlag)
	if err != nil {
		return time.Time{}, err
	}
	if flags&FlagVLF != 0 {
		return time.Time{}, ErrInvalidTime
	}
	d.w[0] = RegSeconds
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:7]); err != nil {
		return time.Time{}, err
	}
	r := d.r
	return time.Date(
		2000+fromBCD(r[6]),
		time.Month(fromBCD(r[5]&0x1F)),
		fromBCD(r[4]&0x3F),
		fromBCD(r[2]&0x3F),
		fromBCD(r[1]&0x7F),
		fromBCD(r[0]&0x7F),
		0, time.UTC,
	), nil
}

// SetTime writes t (converted to UTC) and clears the voltage-low flag.
func (d *Device) SetTime(t time.Time) error {
	t = t.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return fmt.Errorf("rx8130: year %d out of range", t.Year())
	}
	d.w[0] = RegSeconds
	d.w[1] = toBCD(t.Second())
	d.w[2] = toBCD(t.Minute())
	d.w[3] = toBCD(t.Hour())
	d.w[4] = 1 << uint(t.Weekday()) // one-hot weekday
	d.w[5] = toBCD(t.Day())
	d.w[6] = toBCD(int(t.Month()))
	d.w[7] = toBCD(t.Year() - 2000)
	if err := d.i2c.Tx(d.addr, d.w[:8], nil); err != nil {
		return err
	}
	flags, err := d.readReg(RegFlag)
	if err != nil {
		return err
	}
	return d.writeReg(RegFlag, flags&^FlagVLF)
}

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

func toBCD(v int) byte   { return byte(v/10<<4 | v%10) }
func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0F) }
