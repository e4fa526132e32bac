// Package gt911 drives the Goodix GT911 capacitive touch controller.
package gt911

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// Bus addresses selected by the INT level during reset.
const (
	AddressDefault   uint16 = 0x5D
	AddressAlternate uint16 = 0x14
)

const (
	RegProductID uint16 = 0x8140
	RegStatus    uint16 = 0x814E
	RegPoints    uint16 = 0x814F
)

const (
	statusReady byte = 1 << 7
	statusCount byte = 0x0F
)

const pointStride = 8

// MaxPoints is the number of contacts the controller tracks.
const MaxPoints = 5

var ErrNotReady = errors.New("gt911: no fresh sample")

// Device is a GT911 on an I²C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	n   int
	pts [MaxPoints]touch.Point

	w   [3]byte
	buf [MaxPoints * pointStride]byte
}

// New binds a device without touching the bus.
func New(i2c drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Attach binds a device and reads its product ID.
func Attach(i2c drivers.I2C, addr uint16) (*Device, error) {
	d := New(i2c, addr)
	if _, err := d.ProductID(); err != nil {
		return nil, err
	}
	return d, nil
}

// ProductID returns the ASCII product identifier (e.g. "911").
func (d *Device) ProductID() (string, error) {
	var id [4]byte
	if err := d.read(RegProductID, id[:]); err != nil {
		return "", fmt.Errorf("gt911 probe 0x%02x: %w", d.addr, err)
	}
	n := 0
	for n < len(id) && id[n] != 0 {
		n++
	}
	return string(id[:n]), nil
}

// ReadData latches a fresh sample from the controller. When the controller
// has nothing new the previous sample is dropped and ErrNotReady returned.
func (d *Device) ReadData() error {
	var st [1]byte
	if err := d.read(RegStatus, st[:]); err != nil {
		d.n = 0
		return err
	}
	if st[0]&statusReady == 0 {
		d.n = 0
		return ErrNotReady
	}
	n := int(st[0] & statusCount)
	if n > MaxPoints {
		n = MaxPoints
	}
	if n > 0 {
		if err := d.read(RegPoints, d.buf[:n*pointStride]); err != nil {
			d.n = 0
			return err
		}
	}
	for i := 0; i < n; i++ {
		p := d.buf[i*pointStride:]
		d.pts[i] = touch.Point{
			X: int(p[1]) | int(p[2])<<8,
			Y: int(p[3]) | int(p[4])<<8,
			Z: int(p[5]) | int(p[6])<<8,
		}
	}
	d.n = n
	// Release the buffer so the controller can post the next frame.
	return d.write(RegStatus, 0)
}

// Coordinates copies up to len(dst) points of the last sample into dst and
// returns how many were copied.
func (d *Device) Coordinates(dst []touch.Point) int {
	return copy(dst, d.pts[:d.n])
}

// ReadTouchPoint implements touch.Pointer for single-contact consumers.
func (d *Device) ReadTouchPoint() touch.Point {
	if err := d.ReadData(); err != nil || d.n == 0 {
		return touch.Point{}
	}
	return d.pts[0]
}

func (d *Device) read(reg uint16, dst []byte) error {
	d.w[0] = byte(reg >> 8)
	d.w[1] = byte(reg)
	return d.i2c.Tx(d.addr, d.w[:2], dst)
}

func (d *Device) write(reg uint16, val byte) error {
	d.w[0] = byte(reg >> 8)
	d.w[1] = byte(reg)
	d.w[2] = val
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}
