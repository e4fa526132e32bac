package engine

import (
	"context"
	"time"
)

// TickInterval is the fixed yield between handler runs. Shorter values lower
// touch latency and raise CPU use.
const TickInterval = 10 * time.Millisecond

// Loop drives an Engine forever: one Handler call, then a fixed yield.
type Loop struct {
	Engine   *Engine
	Interval time.Duration

	// Sleep yields between iterations. Nil waits on a timer and honours ctx.
	Sleep func(time.Duration)
	// Stop, when set, is consulted after each iteration.
	Stop func(iter uint64) bool
}

// Run loops until ctx is done or Stop returns true. It never returns on its
// own otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	interval := l.Interval
	if interval <= 0 {
		interval = TickInterval
	}

	var (
		iter  uint64
		timer *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.Engine.Handler()
		iter++
		if l.Stop != nil && l.Stop(iter) {
			return nil
		}

		if l.Sleep != nil {
			l.Sleep(interval)
			continue
		}
		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
