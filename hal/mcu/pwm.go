//go:build tinygo && baremetal

package mcu

import (
	"machine"
	"time"

	"tab5/hal"
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

// pwmClock outputs a 50% duty square wave as the camera reference clock.
type pwmClock struct {
	pin machine.Pin
	pwm pwmDevice
}

func newPWMClock(pin machine.Pin) *pwmClock {
	return &pwmClock{pin: pin, pwm: pwmForPin(pin)}
}

func (c *pwmClock) Start(freqHz uint32) error {
	if c.pwm == nil || freqHz == 0 {
		return hal.ErrNotImplemented
	}
	if err := c.pwm.Configure(machine.PWMConfig{Period: 1e9 / uint64(freqHz)}); err != nil {
		return err
	}
	ch, err := c.pwm.Channel(c.pin)
	if err != nil {
		return err
	}
	c.pwm.Set(ch, c.pwm.Top()/2)
	c.pwm.Enable(true)
	return nil
}

// pwmCodec stands in for the ES8388 with a PWM DAC on one pin. Init plays
// the boot chime and parks the output at mid level.
type pwmCodec struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	top uint32

	started bool
}

func newPWMCodec(pin machine.Pin) *pwmCodec {
	return &pwmCodec{pin: pin, pwm: pwmForPin(pin)}
}

func (a *pwmCodec) Init() error {
	if a.pwm == nil {
		return hal.ErrNotImplemented
	}
	// Fixed ~62.5kHz carrier; duty is updated at CodecSampleRate.
	const pwmCarrierHz = 62500
	if err := a.pwm.Configure(machine.PWMConfig{Period: 1e9 / pwmCarrierHz}); err != nil {
		return err
	}
	ch, err := a.pwm.Channel(a.pin)
	if err != nil {
		return err
	}
	a.ch = ch
	a.pwm.SetTop(0xFFFF)
	a.top = a.pwm.Top()
	a.pwm.Set(a.ch, a.top/2)
	a.pwm.Enable(true)
	a.started = true

	for i := 0; i < chimeSamples; i++ {
		a.WriteSample(chimeSample(i))
		time.Sleep(time.Second / CodecSampleRate)
	}
	a.pwm.Set(a.ch, a.top/2)
	return nil
}

// WriteSample sets the output level for one sample.
func (a *pwmCodec) WriteSample(sample int16) {
	if !a.started {
		return
	}
	u := uint32(int32(sample) + 32768)
	a.pwm.Set(a.ch, (u*a.top)/65535)
}
