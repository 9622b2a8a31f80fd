// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/similigh/mirror-bot/internal/log"
)

// Scheduler decides when the next cycle starts.
type Scheduler interface {
	// Wait blocks until the next cycle is due or ctx is done.
	Wait(ctx context.Context) error
}

// IntervalScheduler fires a fixed delay after each call to Wait.
type IntervalScheduler struct {
	Interval time.Duration
}

// Wait sleeps for the interval.
func (s IntervalScheduler) Wait(ctx context.Context) error {
	timer := time.NewTimer(s.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ChannelScheduler fires whenever a value arrives on C.
type ChannelScheduler struct {
	C <-chan struct{}
}

// Wait blocks until C delivers or is closed.
func (s ChannelScheduler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case _, ok := <-s.C:
		if !ok {
			return context.Canceled
		}
		return nil
	}
}

// Loop alternates between Idle (waiting on the scheduler) and Cycling.
// Cycle errors are logged and the next cycle is always scheduled.
type Loop struct {
	cycle     func(ctx context.Context) error
	scheduler Scheduler
	immediate bool
	onFatal   func(err error)
}

// NewLoop creates a Loop running cycle on scheduler.
func NewLoop(cycle func(ctx context.Context) error, scheduler Scheduler) *Loop {
	return &Loop{cycle: cycle, scheduler: scheduler}
}

// Immediate makes the first cycle start without waiting.
func (l *Loop) Immediate(on bool) *Loop {
	l.immediate = on
	return l
}

// OnFatal sets the handler for panics escaping a cycle.
func (l *Loop) OnFatal(fn func(err error)) *Loop {
	l.onFatal = fn
	return l
}

// Run loops until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	first := true
	for {
		if !(first && l.immediate) {
			if err := l.scheduler.Wait(ctx); err != nil {
				return nil
			}
		}
		first = false

		if err := l.runCycle(ctx); err != nil {
			log.Error("Cycle failed", "component", "poller", "error", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (l *Loop) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in cycle: %v", r)
			if l.onFatal != nil {
				l.onFatal(err)
			}
		}
	}()
	return l.cycle(ctx)
}
