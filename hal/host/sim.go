//go:build !baremetal

package host

import (
	"time"

	"tab5/drivers/gt911"
	"tab5/drivers/ina226"
	"tab5/drivers/pi4ioe"
	"tab5/drivers/regbus"
	"tab5/drivers/rx8130"
)

// Bus addresses of the simulated chips.
const (
	AddrIOExpander uint16 = pi4ioe.AddressDefault
	AddrPower      uint16 = 0x41
	AddrRTC        uint16 = rx8130.AddressDefault
	AddrTouch      uint16 = gt911.AddressAlternate
)

// Power-on readings of the simulated monitor: 5.00 V on the bus and 50 mA
// through the 5 mΩ shunt.
const (
	simBusRaw   uint16 = 4000
	simShuntRaw uint16 = 100
	inaPOR      uint16 = 0x4127
)

func newPowerModel() *regbus.Target {
	tg := regbus.NewTarget(1, 2)
	tg.SetWord(uint16(ina226.RegManufacturer), ina226.ManufacturerTI)
	tg.SetWord(uint16(ina226.RegDieID), 0x2260)
	tg.SetWord(uint16(ina226.RegConfig), inaPOR)
	tg.SetWord(uint16(ina226.RegBusVoltage), simBusRaw)
	tg.SetWord(uint16(ina226.RegShuntVoltage), simShuntRaw)
	tg.OnWrite = func(t *regbus.Target, reg uint16, val []byte) {
		switch reg {
		case uint16(ina226.RegConfig):
			if val[0]&0x80 != 0 {
				t.SetWord(uint16(ina226.RegConfig), inaPOR)
				t.SetWord(uint16(ina226.RegCalibration), 0)
				t.SetWord(uint16(ina226.RegCurrent), 0)
				t.SetWord(uint16(ina226.RegPower), 0)
			}
		case uint16(ina226.RegCalibration):
			// Datasheet: current = shunt * CAL / 2048, power = current * bus / 20000.
			cal := uint32(t.Word(reg))
			cur := uint32(t.Word(uint16(ina226.RegShuntVoltage))) * cal / 2048
			pwr := cur * uint32(t.Word(uint16(ina226.RegBusVoltage))) / 20000
			t.SetWord(uint16(ina226.RegCurrent), uint16(cur))
			t.SetWord(uint16(ina226.RegPower), uint16(pwr))
		}
	}
	return tg
}

func newRTCModel(now func() time.Time) *regbus.Target {
	tg := regbus.NewTarget(1, 1)
	// The counter follows the host clock whenever the time block is read.
	tg.OnRead = func(t *regbus.Target, reg uint16) {
		if reg != uint16(rx8130.RegSeconds) {
			return
		}
		tm := now().UTC()
		t.Set(uint16(rx8130.RegSeconds), bcd(tm.Second()))
		t.Set(uint16(rx8130.RegMinutes), bcd(tm.Minute()))
		t.Set(uint16(rx8130.RegHours), bcd(tm.Hour()))
		t.Set(uint16(rx8130.RegWeekday), 1<<uint(tm.Weekday()))
		t.Set(uint16(rx8130.RegDay), bcd(tm.Day()))
		t.Set(uint16(rx8130.RegMonth), bcd(int(tm.Month())))
		t.Set(uint16(rx8130.RegYear), bcd(tm.Year()%100))
	}
	// Stale alarm/timer/update flags pending, with every interrupt source
	// still enabled. The time itself is valid since it tracks the host.
	tg.Set(uint16(rx8130.RegFlag), rx8130.FlagAF|rx8130.FlagTF|rx8130.FlagUF)
	tg.Set(uint16(rx8130.RegControl0), rx8130.IRQAlarm|rx8130.IRQTimer|rx8130.IRQUpdate)
	tg.Set(uint16(rx8130.RegExtension), 1<<4)
	return tg
}

func bcd(v int) byte { return byte(v/10<<4 | v%10) }

func newIOExpanderModel() *regbus.Target {
	tg := regbus.NewTarget(1, 1)
	const deviceID = 0xA2
	tg.Set(uint16(pi4ioe.RegDeviceID), deviceID)
	tg.Set(uint16(pi4ioe.RegOutputHighZ), 0xFF)
	tg.OnWrite = func(t *regbus.Target, reg uint16, val []byte) {
		if reg == uint16(pi4ioe.RegDeviceID) && val[0]&1 != 0 {
			for _, r := range []byte{pi4ioe.RegIODirection, pi4ioe.RegOutputState, pi4ioe.RegPullEnable, pi4ioe.RegPullSelect, pi4ioe.RegIRQMask} {
				t.Set(uint16(r), 0)
			}
			t.Set(uint16(pi4ioe.RegOutputHighZ), 0xFF)
			t.Set(reg, deviceID)
		}
	}
	return tg
}

// touchModel is a GT911 that keeps reporting held contacts every time the
// host releases the status buffer, like a finger resting on the glass.
type touchModel struct {
	tg   *regbus.Target
	held [][2]uint16
}

const statusReady = 1 << 7

func newTouchModel() *touchModel {
	m := &touchModel{tg: regbus.NewTarget(2, 1)}
	for i, c := range []byte("911") {
		m.tg.Set(gt911.RegProductID+uint16(i), c)
	}
	m.tg.OnWrite = func(t *regbus.Target, reg uint16, val []byte) {
		if reg == gt911.RegStatus && val[0] == 0 && len(m.held) > 0 {
			m.post()
		}
	}
	return m
}

// set replaces the held contacts; nil lifts every finger.
func (m *touchModel) set(pts [][2]uint16) {
	if len(pts) > gt911.MaxPoints {
		pts = pts[:gt911.MaxPoints]
	}
	m.held = append(m.held[:0], pts...)
	m.post()
}

func (m *touchModel) post() {
	for i, p := range m.held {
		base := gt911.RegPoints + uint16(i*8)
		m.tg.Set(base, byte(i))
		m.tg.Set(base+1, byte(p[0]))
		m.tg.Set(base+2, byte(p[0]>>8))
		m.tg.Set(base+3, byte(p[1]))
		m.tg.Set(base+4, byte(p[1]>>8))
		m.tg.Set(base+5, 24)
		m.tg.Set(base+6, 0)
	}
	m.tg.Set(gt911.RegStatus, byte(statusReady|len(m.held)))
}
