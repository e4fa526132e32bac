// Package engine is a small retained-mode rendering engine: displays, pointer
// input devices, periodic timers and a handler that services them.
package engine

import (
	"errors"
	"time"
)

// MaxIdle bounds the delay Handler reports when no timer is pending.
const MaxIdle = 500 * time.Millisecond

// Engine services displays, pointer devices and timers from one goroutine.
// It is not safe for concurrent use; all calls belong on the loop goroutine.
type Engine struct {
	now func() time.Time

	displays []*Display
	pointers []*PointerDevice
	timers   []*Timer
	held     []*Display

	errs  []error
	iters uint64
}

func New() *Engine {
	return &Engine{now: time.Now}
}

// SetClock replaces the time source.
func (e *Engine) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	e.now = now
}

// AddDisplay registers d for rendering.
func (e *Engine) AddDisplay(d *Display) {
	for _, have := range e.displays {
		if have == d {
			return
		}
	}
	e.displays = append(e.displays, d)
}

// Displays returns the registered displays.
func (e *Engine) Displays() []*Display { return e.displays }

// RegisterPointerDevice binds src to disp. The engine polls src once per
// Handler call while disp is unlocked.
func (e *Engine) RegisterPointerDevice(src PointerSource, disp *Display) (*PointerDevice, error) {
	if disp == nil {
		return nil, ErrNoDisplay
	}
	if src == nil {
		return nil, errNilSource
	}
	e.AddDisplay(disp)
	p := &PointerDevice{src: src, disp: disp}
	e.pointers = append(e.pointers, p)
	return p, nil
}

// Pointers returns the registered pointer devices.
func (e *Engine) Pointers() []*PointerDevice { return e.pointers }

// Iterations returns the number of completed Handler calls.
func (e *Engine) Iterations() uint64 { return e.iters }

// Err returns render errors gathered since the last call and clears them.
func (e *Engine) Err() error {
	errs := e.errs
	e.errs = nil
	return errors.Join(errs...)
}

// Handler runs one engine pass: it reads pointer devices, fires due timers
// and redraws dirty displays. It returns how long the caller may wait before
// the next timer is due.
//
// Displays held by someone else (setup, typically) are skipped along with
// their pointer devices.
func (e *Engine) Handler() time.Duration {
	now := e.now()

	held := e.held[:0]
	for _, d := range e.displays {
		if d.TryLock() {
			held = append(held, d)
		}
	}
	e.held = held

	for _, p := range e.pointers {
		if contains(held, p.disp) {
			p.read()
		}
	}

	e.runTimers(now)

	for i, d := range held {
		if err := d.render(); err != nil {
			e.errs = append(e.errs, err)
		}
		d.Unlock()
		held[i] = nil
	}

	e.iters++
	return e.untilNext(e.now())
}

func (e *Engine) untilNext(now time.Time) time.Duration {
	wait, pending := time.Duration(0), false
	for _, t := range e.timers {
		if t.paused || t.deleted {
			continue
		}
		d := t.next.Sub(now)
		if d < 0 {
			d = 0
		}
		if !pending || d < wait {
			wait, pending = d, true
		}
	}
	if !pending {
		return MaxIdle
	}
	return wait
}

func contains(ds []*Display, d *Display) bool {
	for _, have := range ds {
		if have == d {
			return true
		}
	}
	return false
}
