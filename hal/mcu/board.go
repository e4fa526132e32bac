//go:build tinygo && baremetal

// Package mcu runs the firmware on an RP2-class board wired as a Tab5
// stand-in: the Tab5 peripherals on I2C0, an ILI9488-family SPI panel, and
// PWM for the camera clock and audio.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
package mcu

import (
	"machine"
	"sync"
	"time"

	"tab5/drivers/gt911"
	"tab5/hal"

	"tinygo.org/x/drivers"
)

// Pins is the board wiring.
type Pins struct {
	SDA, SCL machine.Pin

	SCK, SDO, SDI       machine.Pin
	CS, DC, Reset, Lite machine.Pin

	CameraClock machine.Pin
	Audio       machine.Pin
}

// DefaultPins matches the reference wiring.
var DefaultPins = Pins{
	SDA: machine.GP4,
	SCL: machine.GP5,

	SCK:   machine.GP10,
	SDO:   machine.GP11,
	SDI:   machine.GP12,
	CS:    machine.GP13,
	DC:    machine.GP14,
	Reset: machine.GP15,
	Lite:  machine.GP16,

	CameraClock: machine.GP20,
	Audio:       machine.GP2,
}

// I2CFrequency is the shared bus clock.
const I2CFrequency = 400_000

type Board struct {
	pins   Pins
	logger *uartLogger

	mu      sync.Mutex
	claimed bool

	panel  *spiPanel
	camera *pwmClock
	codec  *pwmCodec
	usb    usbHost
}

var _ hal.Board = (*Board)(nil)

// New returns the board with DefaultPins.
func New() *Board { return NewWithPins(DefaultPins) }

func NewWithPins(p Pins) *Board {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	return &Board{
		pins:   p,
		logger: &uartLogger{uart: uart},
		panel:  newSPIPanel(p),
		camera: newPWMClock(p.CameraClock),
		codec:  newPWMCodec(p.Audio),
	}
}

func (b *Board) Name() string       { return "Tab5 (" + machine.Device + ")" }
func (b *Board) Logger() hal.Logger { return b.logger }

func (b *Board) ClaimI2C() (drivers.I2C, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.claimed {
		return nil, hal.ErrBusClaimed
	}
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		SDA:       b.pins.SDA,
		SCL:       b.pins.SCL,
		Frequency: I2CFrequency,
	}); err != nil {
		return nil, err
	}
	b.claimed = true
	return bus, nil
}

func (b *Board) AttachTouch(bus drivers.I2C) (hal.Digitizer, error) {
	d, err := gt911.Attach(bus, gt911.AddressAlternate)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (b *Board) Camera() hal.CameraClock { return b.camera }
func (b *Board) Codec() hal.Codec        { return b.codec }
func (b *Board) Panel() hal.Panel        { return b.panel }
func (b *Board) USB() hal.USBHost        { return b.usb }

func (b *Board) Sleep(d time.Duration) { time.Sleep(d) }

// usbHost has no host controller to drive; the RP2 USB block runs as a device.
type usbHost struct{}

func (usbHost) Start(hal.USBPowerMode, bool) error { return hal.ErrNotImplemented }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}
