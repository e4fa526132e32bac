package app

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"tab5/drivers/rx8130"
	"tab5/internal/bringup"
	"tab5/internal/buildinfo"
	"tab5/internal/engine"

	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG     = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	colorTitle  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorStatus = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
	colorPower  = color.RGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
	colorDim    = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
	colorTouch  = color.RGBA{R: 0x4A, G: 0xDF, B: 0xFF, A: 0xFF}
)

// RefreshPeriod is how often the power and clock readouts update.
const RefreshPeriod = time.Second

const markerSize = 16

type screen struct {
	dev *bringup.DeviceSet

	title   *engine.Label
	status  *engine.Label
	power   *engine.Label
	clock   *engine.Label
	touch   *engine.Label
	marker  *engine.Marker
	console *engine.Console
	refresh *engine.Timer
}

// newScreen builds the main screen on dev's display. The display is
// unlocked, so it takes the lock for the duration.
func newScreen(dev *bringup.DeviceSet) *screen {
	d := dev.Display
	d.Lock()
	defer d.Unlock()

	d.Screen().SetBackground(colorBG)
	s := &screen{dev: dev}

	s.title = engine.NewLabel(d, &freemono.Bold18pt7b, 35, 26)
	s.title.SetText("M5Stack Tab5")
	s.title.SetColor(colorTitle)
	s.title.SetPos(0, 50, engine.AlignCenter)

	s.status = engine.NewLabel(d, &freemono.Regular12pt7b, 24, 17)
	s.status.SetText("System Ready")
	s.status.SetColor(colorStatus)
	s.status.SetPos(0, 115, engine.AlignCenter)

	s.power = engine.NewLabel(d, &freemono.Regular9pt7b, 18, 13)
	s.power.SetColor(colorPower)
	s.power.SetPos(0, 169, engine.AlignCenter)

	s.clock = engine.NewLabel(d, &freemono.Regular9pt7b, 18, 13)
	s.clock.SetColor(colorDim)
	s.clock.SetPos(0, 199, engine.AlignCenter)

	s.touch = engine.NewLabel(d, &freemono.Regular9pt7b, 18, 13)
	s.touch.SetColor(colorTouch)
	s.touch.SetPos(0, 229, engine.AlignCenter)
	s.touch.SetText(touchText(dev, engine.PointerSample{}))

	w, h := int16(d.Width()), int16(d.Height())
	ch := min(int16(180), h-260)
	if ch < 40 {
		ch = 40
	}
	s.console = engine.NewConsole(d, 20, h-ch-20, w-40, ch, engine.ConsoleConfig{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
		Lines:      16,
	})
	s.console.Println("build " + buildinfo.Long())
	for _, f := range dev.Faults.List() {
		s.console.Println("degraded: " + f.Error())
	}

	s.marker = engine.NewMarker(d, markerSize, colorTouch)
	d.OnPointer(s.onPointer)

	s.update()
	s.refresh = dev.Engine.AddTimer(RefreshPeriod, func(*engine.Timer) { s.update() })
	return s
}

func (s *screen) update() {
	s.power.SetText(powerText(s.dev))
	s.clock.SetText(clockText(s.dev))
}

func (s *screen) onPointer(ev engine.PointerEvent) {
	switch ev.Kind {
	case engine.PointerPress, engine.PointerMove:
		s.marker.MoveTo(ev.X, ev.Y)
		s.touch.SetText(touchText(s.dev, engine.PointerSample{X: ev.X, Y: ev.Y, Pressed: true}))
	case engine.PointerRelease:
		s.marker.Hide()
		s.touch.SetText(touchText(s.dev, engine.PointerSample{}))
	}
}

func powerText(dev *bringup.DeviceSet) string {
	if dev.Power == nil {
		return "Bus Voltage: --"
	}
	v, err := dev.Power.ReadBusVoltage()
	if err != nil {
		return "Bus Voltage: --"
	}
	return fmt.Sprintf("Bus Voltage: %.2fV", v)
}

func clockText(dev *bringup.DeviceSet) string {
	if dev.Clock == nil {
		return "RTC: --"
	}
	t, err := dev.Clock.ReadTime()
	switch {
	case errors.Is(err, rx8130.ErrInvalidTime):
		return "RTC: not set"
	case err != nil:
		return "RTC: --"
	}
	return "RTC: " + t.Format("2006-01-02 15:04:05")
}

func touchText(dev *bringup.DeviceSet, p engine.PointerSample) string {
	switch {
	case !dev.TouchReady():
		return "Touch: unavailable"
	case p.Pressed:
		return fmt.Sprintf("Touch: %d, %d", p.X, p.Y)
	default:
		return "Touch: released"
	}
}
