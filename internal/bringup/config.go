package bringup

import (
	"time"

	"tab5/drivers/ina226"
	"tab5/drivers/pi4ioe"
	"tab5/drivers/rx8130"
	"tab5/hal"
	"tab5/internal/engine"

	"tinygo.org/x/drivers"
)

// CodecWarmupDelay is how long the codec's power rail needs to settle after
// the IO expander switches it on. Initialising earlier leaves the codec
// silent.
const CodecWarmupDelay = 200 * time.Millisecond

// IO expander (0x43) pin assignment on the Tab5.
const (
	PinSpeakerEnable   uint8 = 1
	PinExt5VEnable     uint8 = 2
	PinLCDReset        uint8 = 4
	PinTouchReset      uint8 = 5
	PinCameraReset     uint8 = 6
	PinHeadphoneDetect uint8 = 7
)

// TouchResetPulse is the active-low reset width the GT911 needs.
const TouchResetPulse = 10 * time.Millisecond

// Panel geometry.
const (
	PanelWidth  = 720
	PanelHeight = 1280
)

// Config is the init plan's parameter set.
type Config struct {
	IOExpanderAddr uint16
	IOExpander     pi4ioe.Config

	PowerAddr uint16
	Power     ina226.Config
	ShuntOhms float32
	MaxAmps   float32

	RTCAddr uint16

	CameraHz   uint32
	CodecDelay time.Duration

	Display  engine.DisplayConfig
	Rotation drivers.Rotation

	USBMode            hal.USBPowerMode
	USBHostNegotiation bool

	Drivers Drivers

	// Sleep replaces the board's Sleep for the codec delay and touch reset.
	Sleep func(time.Duration)
}

// DefaultConfig returns the Tab5 init plan for the given color format.
func DefaultConfig(format hal.PixelFormat) Config {
	const outputs = 1<<PinSpeakerEnable | 1<<PinExt5VEnable | 1<<PinLCDReset | 1<<PinTouchReset | 1<<PinCameraReset
	return Config{
		IOExpanderAddr: pi4ioe.AddressDefault,
		IOExpander: pi4ioe.Config{
			Outputs: outputs,
			// Resets released, speaker amp off, 5 V rail on.
			Initial: 1<<PinExt5VEnable | 1<<PinLCDReset | 1<<PinTouchReset | 1<<PinCameraReset,
			PullUps: 1 << PinHeadphoneDetect,
		},

		PowerAddr: 0x41,
		Power: ina226.Config{
			Averages:      ina226.Averages16,
			BusConvTime:   ina226.ConvTime1100us,
			ShuntConvTime: ina226.ConvTime1100us,
			Mode:          ina226.ModeShuntBusContinuous,
		},
		ShuntOhms: 0.005,
		MaxAmps:   8.192,

		RTCAddr: rx8130.AddressDefault,

		CameraHz:   24_000_000,
		CodecDelay: CodecWarmupDelay,

		Display: engine.DisplayConfig{
			Width:        PanelWidth,
			Height:       PanelHeight,
			DoubleBuffer: true,
			Rotation:     drivers.Rotation0,
			Format:       format,
			Placement:    engine.PlacementFor(format),
		},
		Rotation: drivers.Rotation90,

		USBMode:            hal.USBPowerModeDevice,
		USBHostNegotiation: true,

		Drivers: DefaultDrivers(),
	}
}
