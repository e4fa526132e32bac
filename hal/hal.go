package hal

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/touch"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrBusClaimed     = errors.New("bus already claimed")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp little-endian: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
	// PixelFormatRGB888 is 24bpp, bytes in B, G, R order.
	PixelFormatRGB888
)

// BytesPerPixel returns the storage size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB565:
		return 2
	case PixelFormatRGB888:
		return 3
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatRGB888:
		return "RGB888"
	default:
		return "unknown"
	}
}

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Width and Height are the physical panel dimensions.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// PanelConfig describes the buffers a panel must allocate.
type PanelConfig struct {
	Width   int
	Height  int
	Format  PixelFormat
	Buffers int // 1 = single, 2 = double

	// Memory placement. Boards without the distinction ignore them.
	DMA    bool
	SPIRAM bool
}

// Panel is the display controller plus its backlight.
type Panel interface {
	// Start brings the controller up and allocates its framebuffer(s).
	Start(cfg PanelConfig) (Framebuffer, error)
	// SetRotation tells the presentation side how the content is rotated.
	SetRotation(rot drivers.Rotation) error
	SetBacklight(on bool) error
}

// Digitizer is a polled touch controller.
type Digitizer interface {
	// ReadData latches a fresh sample.
	ReadData() error
	// Coordinates copies up to len(dst) contacts of the latched sample.
	Coordinates(dst []touch.Point) int
}

// CameraClock drives the camera sensor's reference oscillator.
type CameraClock interface {
	Start(freqHz uint32) error
}

// Codec is the audio codec; Init expects its power rail to be stable.
type Codec interface {
	Init() error
}

// USBPowerMode selects who powers the USB-A port.
type USBPowerMode uint8

const (
	// USBPowerModeDevice powers the port from the device's own supply.
	USBPowerModeDevice USBPowerMode = iota
	// USBPowerModeExternal expects an external supply on VBUS.
	USBPowerModeExternal
)

func (m USBPowerMode) String() string {
	switch m {
	case USBPowerModeDevice:
		return "device"
	case USBPowerModeExternal:
		return "external"
	default:
		return "unknown"
	}
}

// USBHost is the USB host controller stack.
type USBHost interface {
	Start(mode USBPowerMode, hostNegotiation bool) error
}

// Board provides the only contact point between the firmware and the hardware.
type Board interface {
	Name() string
	Logger() Logger

	// ClaimI2C takes exclusive ownership of the shared I²C bus. It succeeds
	// at most once per board.
	ClaimI2C() (drivers.I2C, error)
	// AttachTouch binds the touch digitizer on the claimed bus.
	AttachTouch(bus drivers.I2C) (Digitizer, error)

	Camera() CameraClock
	Codec() Codec
	Panel() Panel
	USB() USBHost

	// Sleep blocks for d.
	Sleep(d time.Duration)
}
