package engine

import "errors"

var (
	ErrNoDisplay = errors.New("pointer device needs a display")
	errNilSource = errors.New("nil pointer source")
)

// PointerSample is one reading of a pointer source.
type PointerSample struct {
	X       int16
	Y       int16
	Pressed bool
}

// PointerSource is polled once per pointer read.
type PointerSource interface {
	Poll() PointerSample
}

// PointerSourceFunc adapts a function to PointerSource.
type PointerSourceFunc func() PointerSample

func (f PointerSourceFunc) Poll() PointerSample { return f() }

type PointerEventKind uint8

const (
	PointerPress PointerEventKind = iota + 1
	PointerMove
	PointerRelease
)

func (k PointerEventKind) String() string {
	switch k {
	case PointerPress:
		return "press"
	case PointerMove:
		return "move"
	case PointerRelease:
		return "release"
	default:
		return "unknown"
	}
}

// PointerEvent is delivered to the display's pointer handlers.
type PointerEvent struct {
	Kind PointerEventKind
	X    int16
	Y    int16
}

// PointerDevice is a registered pointer source bound to a display.
//
// Coordinates pass through unchanged; the source reports in the display's
// logical space.
type PointerDevice struct {
	src   PointerSource
	disp  *Display
	state PointerSample
	reads uint64
}

// Display returns the display the device is bound to.
func (p *PointerDevice) Display() *Display { return p.disp }

// State returns the last sample read. A released sample keeps the last
// pressed position.
func (p *PointerDevice) State() PointerSample { return p.state }

// Reads returns how many times the source has been polled.
func (p *PointerDevice) Reads() uint64 { return p.reads }

func (p *PointerDevice) read() {
	s := p.src.Poll()
	p.reads++

	prev := p.state
	if !s.Pressed {
		if prev.Pressed {
			p.state.Pressed = false
			p.disp.dispatch(PointerEvent{Kind: PointerRelease, X: prev.X, Y: prev.Y})
		}
		return
	}

	p.state = s
	switch {
	case !prev.Pressed:
		p.disp.dispatch(PointerEvent{Kind: PointerPress, X: s.X, Y: s.Y})
	case prev.X != s.X || prev.Y != s.Y:
		p.disp.dispatch(PointerEvent{Kind: PointerMove, X: s.X, Y: s.Y})
	}
}
