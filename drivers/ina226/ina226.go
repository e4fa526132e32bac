// Package ina226 drives the TI INA226 bus voltage / shunt current monitor.
package ina226

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// AddressDefault is the address with A0/A1 tied to GND.
const AddressDefault uint16 = 0x40

const (
	RegConfig       byte = 0x00
	RegShuntVoltage byte = 0x01
	RegBusVoltage   byte = 0x02
	RegPower        byte = 0x03
	RegCurrent      byte = 0x04
	RegCalibration  byte = 0x05
	RegMaskEnable   byte = 0x06
	RegAlertLimit   byte = 0x07
	RegManufacturer byte = 0xFE
	RegDieID        byte = 0xFF
)

// ManufacturerTI is the fixed content of RegManufacturer ("TI").
const ManufacturerTI uint16 = 0x5449

const (
	configReset uint16 = 1 << 15
	// Bit 14 reads back as 1 after reset and has no function.
	configFixed uint16 = 1 << 14
)

// Fixed scale factors from the datasheet.
const (
	busVoltageLSB   = 0.00125   // V
	shuntVoltageLSB = 0.0000025 // V
	calScale        = 0.00512
	powerLSBFactor  = 25
)

var (
	ErrUnexpectedID  = errors.New("ina226: unexpected manufacturer id")
	ErrNotCalibrated = errors.New("ina226: calibration register is zero")
	ErrInvalidShunt  = errors.New("ina226: shunt resistance and max current must be positive")
)

// Averages selects how many samples are averaged per conversion.
type Averages uint8

const (
	Averages1 Averages = iota
	Averages4
	Averages16
	Averages64
	Averages128
	Averages256
	Averages512
	Averages1024
)

// ConvTime selects the ADC conversion time.
type ConvTime uint8

const (
	ConvTime140us ConvTime = iota
	ConvTime204us
	ConvTime332us
	ConvTime588us
	ConvTime1100us
	ConvTime2116us
	ConvTime4156us
	ConvTime8244us
)

// Mode selects what is converted and whether conversions are continuous.
type Mode uint8

const (
	ModePowerDown Mode = iota
	ModeShuntTriggered
	ModeBusTriggered
	ModeShuntBusTriggered
	ModePowerDown2
	ModeShuntContinuous
	ModeBusContinuous
	ModeShuntBusContinuous
)

// Config is the content of the configuration register.
type Config struct {
	Averages      Averages
	BusConvTime   ConvTime
	ShuntConvTime ConvTime
	Mode          Mode
}

// DefaultConfig matches the power-on register value.
func DefaultConfig() Config {
	return Config{
		Averages:      Averages1,
		BusConvTime:   ConvTime1100us,
		ShuntConvTime: ConvTime1100us,
		Mode:          ModeShuntBusContinuous,
	}
}

// Word encodes c into the configuration register layout.
func (c Config) Word() uint16 {
	return configFixed |
		uint16(c.Averages&0x7)<<9 |
		uint16(c.BusConvTime&0x7)<<6 |
		uint16(c.ShuntConvTime&0x7)<<3 |
		uint16(c.Mode&0x7)
}

// Device is an INA226 on an I²C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	currentLSB float32 // A per bit, set by Calibrate

	w [3]byte
	r [2]byte
}

// New binds a device without touching the bus.
func New(i2c drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Attach binds a device and checks that it identifies as an INA226.
func Attach(i2c drivers.I2C, addr uint16) (*Device, error) {
	d := New(i2c, addr)
	if err := d.Probe(); err != nil {
		return nil, err
	}
	return d, nil
}

// Address returns the bus address.
func (d *Device) Address() uint16 { return d.addr }

// Probe reads the manufacturer ID register.
func (d *Device) Probe() error {
	id, err := d.readWord(RegManufacturer)
	if err != nil {
		return fmt.Errorf("ina226 probe 0x%02x: %w", d.addr, err)
	}
	if id != ManufacturerTI {
		return fmt.Errorf("%w: 0x%04x", ErrUnexpectedID, id)
	}
	return nil
}

// Configure resets the chip and applies cfg.
//
// The reset clears the calibration register, so Calibrate must follow.
func (d *Device) Configure(cfg Config) error {
	if err := d.writeWord(RegConfig, configReset); err != nil {
		return fmt.Errorf("ina226 reset: %w", err)
	}
	d.currentLSB = 0
	if err := d.writeWord(RegConfig, cfg.Word()); err != nil {
		return fmt.Errorf("ina226 configure: %w", err)
	}
	return nil
}

// Config reads back the configuration register.
func (d *Device) Config() (Config, error) {
	v, err := d.readWord(RegConfig)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Averages:      Averages(v >> 9 & 0x7),
		BusConvTime:   ConvTime(v >> 6 & 0x7),
		ShuntConvTime: ConvTime(v >> 3 & 0x7),
		Mode:          Mode(v & 0x7),
	}, nil
}

// Calibrate programs the scaling used by current and power reads.
func (d *Device) Calibrate(shuntOhms, maxAmps float32) error {
	if shuntOhms <= 0 || maxAmps <= 0 {
		return ErrInvalidShunt
	}
	lsb := maxAmps / 32768
	cal := calScale / (lsb * shuntOhms)
	if cal < 1 || cal > 0x7FFF {
		return fmt.Errorf("ina226 calibrate: value %.0f out of range", cal)
	}
	if err := d.writeWord(RegCalibration, uint16(cal+0.5)); err != nil {
		return fmt.Errorf("ina226 calibrate: %w", err)
	}
	d.currentLSB = lsb
	return nil
}

// Calibration returns the raw calibration register.
func (d *Device) Calibration() (uint16, error) {
	return d.readWord(RegCalibration)
}

// CurrentLSB returns the amps-per-bit factor set by the last Calibrate.
func (d *Device) CurrentLSB() float32 { return d.currentLSB }

// ReadBusVoltage returns the bus voltage in volts.
func (d *Device) ReadBusVoltage() (float32, error) {
	v, err := d.readWord(RegBusVoltage)
	if err != nil {
		return 0, err
	}
	return float32(v) * busVoltageLSB, nil
}

// ReadShuntVoltage returns the shunt voltage in volts.
func (d *Device) ReadShuntVoltage() (float32, error) {
	v, err := d.readWord(RegShuntVoltage)
	if err != nil {
		return 0, err
	}
	return float32(int16(v)) * shuntVoltageLSB, nil
}

// ReadCurrent returns the current in amps.
func (d *Device) ReadCurrent() (float32, error) {
	if err := d.checkCalibrated(); err != nil {
		return 0, err
	}
	v, err := d.readWord(RegCurrent)
	if err != nil {
		return 0, err
	}
	return float32(int16(v)) * d.currentLSB, nil
}

// ReadPower returns the power in watts.
func (d *Device) ReadPower() (float32, error) {
	if err := d.checkCalibrated(); err != nil {
		return 0, err
	}
	v, err := d.readWord(RegPower)
	if err != nil {
		return 0, err
	}
	return float32(v) * d.currentLSB * powerLSBFactor, nil
}

func (d *Device) checkCalibrated() error {
	cal, err := d.readWord(RegCalibration)
	if err != nil {
		return err
	}
	if cal == 0 || d.currentLSB == 0 {
		return ErrNotCalibrated
	}
	return nil
}

// Registers are 16-bit, MSB first.

func (d *Device) readWord(reg byte) (uint16, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}

func (d *Device) writeWord(reg byte, val uint16) error {
	d.w[0] = reg
	d.w[1] = byte(val >> 8)
	d.w[2] = byte(val)
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}
