package rx8130

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tab5/drivers/regbus"
)

func attach(t *testing.T) (*Device, *regbus.Target) {
	t.Helper()
	b := regbus.New()
	tg := b.Attach(AddressDefault, regbus.NewTarget(1, 1))
	d, err := Attach(b, AddressDefault)
	require.NoError(t, err)
	return d, tg
}

func TestAttachWithoutChip(t *testing.T) {
	_, err := Attach(regbus.New(), AddressDefault)
	require.ErrorIs(t, err, ErrNoResponse)
}

func TestInitBatteryPreservesOtherBits(t *testing.T) {
	d, tg := attach(t)
	tg.Set(uint16(RegControl1), 0x01)

	require.NoError(t, d.InitBattery())
	require.Equal(t, byte(0x01|ctl1INIEN|ctl1CHGEN), tg.Get(uint16(RegControl1))[0])
}

func TestClearAndDisableFromAnyPriorState(t *testing.T) {
	for _, prior := range []struct{ flags, ctl0, ext byte }{
		{0x00, 0x00, 0x00},
		{FlagVLF | flagsIRQ, irqAll, extTE},
		{FlagAF | 0x01, IRQUpdate | 0x40, extTE | 0x02},
		{0xFF, 0xFF, 0xFF},
	} {
		d, tg := attach(t)
		tg.Set(uint16(RegFlag), prior.flags)
		tg.Set(uint16(RegControl0), prior.ctl0)
		tg.Set(uint16(RegExtension), prior.ext)

		require.NoError(t, d.ClearIRQFlags())
		require.NoError(t, d.DisableIRQ())

		flags, err := d.Flags()
		require.NoError(t, err)
		require.Zero(t, flags)

		on, err := d.IRQEnabled()
		require.NoError(t, err)
		require.False(t, on)
		require.Zero(t, tg.Get(uint16(RegExtension))[0]&extTE)
		require.Equal(t, prior.flags&FlagVLF, tg.Get(uint16(RegFlag))[0]&FlagVLF, "VLF must survive")
	}
}

func TestClearKeepsTimeInvalid(t *testing.T) {
	d, tg := attach(t)
	tg.Set(uint16(RegFlag), FlagVLF|FlagAF|FlagUF)

	require.NoError(t, d.ClearIRQFlags())
	require.Equal(t, FlagVLF, tg.Get(uint16(RegFlag))[0])

	valid, err := d.TimeValid()
	require.NoError(t, err)
	require.False(t, valid)
	_, err = d.ReadTime()
	require.ErrorIs(t, err, ErrInvalidTime)

	require.NoError(t, d.SetTime(time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)))
	valid, err = d.TimeValid()
	require.NoError(t, err)
	require.True(t, valid)
}

func TestTimeRoundTrip(t *testing.T) {
	d, tg := attach(t)
	tg.Set(uint16(RegFlag), FlagVLF)

	_, err := d.ReadTime()
	require.ErrorIs(t, err, ErrInvalidTime)

	want := time.Date(2025, time.June, 14, 13, 45, 9, 0, time.UTC)
	require.NoError(t, d.SetTime(want))
	require.Equal(t, byte(0x25), tg.Get(uint16(RegYear))[0])

	got, err := d.ReadTime()
	require.NoError(t, err)
	require.True(t, want.Equal(got), "got %v", got)
}

func TestSetTimeRejectsCentury(t *testing.T) {
	d, _ := attach(t)
	require.Error(t, d.SetTime(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
}
