package engine

import "time"

// Timer fires fn periodically from Handler.
type Timer struct {
	e       *Engine
	period  time.Duration
	next    time.Time
	fn      func(*Timer)
	paused  bool
	deleted bool
	runs    uint64
}

// AddTimer schedules fn every period. The first run is one period from now.
func (e *Engine) AddTimer(period time.Duration, fn func(*Timer)) *Timer {
	if period <= 0 {
		period = time.Millisecond
	}
	t := &Timer{e: e, period: period, next: e.now().Add(period), fn: fn}
	e.timers = append(e.timers, t)
	return t
}

// Period returns the timer period.
func (t *Timer) Period() time.Duration { return t.period }

// SetPeriod changes the period; the next run is rescheduled from now.
func (t *Timer) SetPeriod(d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	t.period = d
	t.next = t.e.now().Add(d)
}

// Ready makes the timer due on the next Handler call.
func (t *Timer) Ready() { t.next = t.e.now() }

func (t *Timer) Pause() { t.paused = true }

func (t *Timer) Resume() {
	if t.paused {
		t.paused = false
		t.next = t.e.now().Add(t.period)
	}
}

// Delete removes the timer. It is safe to call from its own callback.
func (t *Timer) Delete() { t.deleted = true }

// Runs returns how many times the timer fired.
func (t *Timer) Runs() uint64 { return t.runs }

func (e *Engine) runTimers(now time.Time) {
	// Callbacks may add timers; only the ones present now run this pass.
	n := len(e.timers)
	for i := 0; i < n; i++ {
		t := e.timers[i]
		if t.deleted || t.paused || now.Before(t.next) {
			continue
		}
		t.next = t.next.Add(t.period)
		if t.next.Before(now) {
			// Missed periods are dropped, not replayed.
			t.next = now.Add(t.period)
		}
		t.runs++
		if t.fn != nil {
			t.fn(t)
		}
	}

	kept := e.timers[:0]
	for _, t := range e.timers {
		if !t.deleted {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(e.timers); i++ {
		e.timers[i] = nil
	}
	e.timers = kept
}
