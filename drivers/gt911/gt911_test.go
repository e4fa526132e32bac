package gt911

import (
	"testing"

	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/touch"

	"tab5/drivers/regbus"
)

func newChip(b *regbus.Bus) *regbus.Target {
	tg := b.Attach(AddressAlternate, regbus.NewTarget(2, 1))
	tg.Set(RegProductID, '9')
	tg.Set(RegProductID+1, '1')
	tg.Set(RegProductID+2, '1')
	return tg
}

func setPoint(tg *regbus.Target, i int, x, y, size uint16) {
	base := RegPoints + uint16(i*pointStride)
	tg.Set(base, byte(i))
	tg.Set(base+1, byte(x))
	tg.Set(base+2, byte(x>>8))
	tg.Set(base+3, byte(y))
	tg.Set(base+4, byte(y>>8))
	tg.Set(base+5, byte(size))
	tg.Set(base+6, byte(size>>8))
}

func TestAttachReadsProductID(t *testing.T) {
	b := regbus.New()
	newChip(b)
	d, err := Attach(b, AddressAlternate)
	require.NoError(t, err)
	id, err := d.ProductID()
	require.NoError(t, err)
	require.Equal(t, "911", id)
}

func TestReadDataTwoContacts(t *testing.T) {
	b := regbus.New()
	tg := newChip(b)
	d := New(b, AddressAlternate)

	setPoint(tg, 0, 100, 200, 30)
	setPoint(tg, 1, 700, 1200, 12)
	tg.Set(RegStatus, statusReady|2)

	require.NoError(t, d.ReadData())
	require.Zero(t, tg.Get(RegStatus)[0], "status must be released")

	one := make([]touch.Point, 1)
	require.Equal(t, 1, d.Coordinates(one))
	require.Equal(t, touch.Point{X: 100, Y: 200, Z: 30}, one[0])

	all := make([]touch.Point, MaxPoints)
	require.Equal(t, 2, d.Coordinates(all))
	require.Equal(t, 1200, all[1].Y)
}

func TestReadDataNotReadyDropsSample(t *testing.T) {
	b := regbus.New()
	tg := newChip(b)
	d := New(b, AddressAlternate)

	setPoint(tg, 0, 1, 2, 3)
	tg.Set(RegStatus, statusReady|1)
	require.NoError(t, d.ReadData())

	require.ErrorIs(t, d.ReadData(), ErrNotReady)
	require.Zero(t, d.Coordinates(make([]touch.Point, 1)))
	require.Equal(t, touch.Point{}, d.ReadTouchPoint())
}
