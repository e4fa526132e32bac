package input

import (
	"errors"
	"testing"

	"tab5/internal/engine"

	"tinygo.org/x/drivers/touch"
)

type fakeDigitizer struct {
	pts     []touch.Point
	readErr error
	reads   int
	asked   []int
}

func (f *fakeDigitizer) ReadData() error {
	f.reads++
	return f.readErr
}

func (f *fakeDigitizer) Coordinates(dst []touch.Point) int {
	f.asked = append(f.asked, len(dst))
	return copy(dst, f.pts)
}

func TestPollWithoutDeviceIsReleased(t *testing.T) {
	for _, b := range []*Bridge{New(nil), nil} {
		if b.Ready() {
			t.Fatalf("Ready() = true, want false")
		}
		for i := 0; i < 3; i++ {
			if got := b.Poll(); got != (engine.PointerSample{}) {
				t.Fatalf("Poll() = %+v, want released", got)
			}
		}
	}
}

func TestPollFirstContactOnly(t *testing.T) {
	dev := &fakeDigitizer{pts: []touch.Point{{X: 100, Y: 200, Z: 9}, {X: 640, Y: 360, Z: 9}}}
	b := New(dev)

	got := b.Poll()
	want := engine.PointerSample{X: 100, Y: 200, Pressed: true}
	if got != want {
		t.Fatalf("Poll() = %+v, want %+v", got, want)
	}
	if dev.reads != 1 {
		t.Fatalf("ReadData calls = %d, want 1", dev.reads)
	}
	if len(dev.asked) != 1 || dev.asked[0] != 1 {
		t.Fatalf("Coordinates capacity = %v, want [1]", dev.asked)
	}
}

func TestPollNoContacts(t *testing.T) {
	b := New(&fakeDigitizer{})
	if got := b.Poll(); got.Pressed {
		t.Fatalf("Poll() = %+v, want released", got)
	}
}

func TestPollReadErrorIsReleased(t *testing.T) {
	dev := &fakeDigitizer{pts: []touch.Point{{X: 1, Y: 2}}, readErr: errors.New("nack")}
	if got := New(dev).Poll(); got.Pressed {
		t.Fatalf("Poll() = %+v, want released", got)
	}
}

func TestPollIsStateless(t *testing.T) {
	dev := &fakeDigitizer{pts: []touch.Point{{X: 5, Y: 6}}}
	b := New(dev)
	if got := b.Poll(); !got.Pressed {
		t.Fatalf("Poll() #1 = %+v, want pressed", got)
	}
	dev.pts = nil
	if got := b.Poll(); got.Pressed {
		t.Fatalf("Poll() #2 = %+v, want released", got)
	}
	dev.pts = []touch.Point{{X: 7, Y: 8}}
	if got := b.Poll(); got != (engine.PointerSample{X: 7, Y: 8, Pressed: true}) {
		t.Fatalf("Poll() #3 = %+v, want pressed at 7,8", got)
	}
}
