package assert

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/kode4food/argyll/editor/internal/scheduler"
)

type (
	// Timers constructs FakeTimers and hands them to the test
	Timers struct {
		created chan *FakeTimer
	}

	// FakeTimer is a scheduler.Timer fired explicitly by the test
	FakeTimer struct {
		ch      chan time.Time
		resets  chan time.Duration
		stops   chan struct{}
		stopped atomic.Bool
	}
)

// WaitTimeout bounds every wait on a fake timer
const WaitTimeout = time.Second

// NewTimers creates a fake timer constructor
func NewTimers() *Timers {
	return &Timers{created: make(chan *FakeTimer, 16)}
}

// New satisfies scheduler.TimerConstructor
func (c *Timers) New(time.Duration) scheduler.Timer {
	timer := &FakeTimer{
		ch:     make(chan time.Time, 1),
		resets: make(chan time.Duration, 64),
		stops:  make(chan struct{}, 64),
	}
	select {
	case c.created <- timer:
	default:
	}
	return timer
}

// Wait returns the next timer created through the constructor
func (c *Timers) Wait(t *testing.T) *FakeTimer {
	t.Helper()
	select {
	case timer := <-c.created:
		return timer
	case <-time.After(WaitTimeout):
		t.Fatal("timer was not created")
		return nil
	}
}

func (t *FakeTimer) Channel() <-chan time.Time {
	return t.ch
}

func (t *FakeTimer) Reset(delay time.Duration) bool {
	t.stopped.Store(false)
	drainTimeChan(t.ch)
	t.resets <- delay
	return true
}

func (t *FakeTimer) Stop() bool {
	wasStopped := t.stopped.Swap(true)
	drainTimeChan(t.ch)
	t.stops <- struct{}{}
	return !wasStopped
}

// Fire delivers a tick unless the timer is stopped
func (t *FakeTimer) Fire(at time.Time) {
	if t.stopped.Load() {
		return
	}
	select {
	case t.ch <- at:
	default:
	}
}

// WaitReset returns the delay of the next Reset call
func (t *FakeTimer) WaitReset(test *testing.T) time.Duration {
	test.Helper()
	select {
	case delay := <-t.resets:
		return delay
	case <-time.After(WaitTimeout):
		test.Fatal("timer reset not observed")
		return 0
	}
}

// WaitStop blocks until the next Stop call
func (t *FakeTimer) WaitStop(test *testing.T) {
	test.Helper()
	select {
	case <-t.stops:
	case <-time.After(WaitTimeout):
		test.Fatal("timer stop not observed")
	}
}

// DrainResets discards observed Reset calls
func (t *FakeTimer) DrainResets() {
	for {
		select {
		case <-t.resets:
		default:
			return
		}
	}
}

// DrainStops discards observed Stop calls
func (t *FakeTimer) DrainStops() {
	for {
		select {
		case <-t.stops:
		default:
			return
		}
	}
}

func drainTimeChan(ch <-chan time.Time) {
	select {
	case <-ch:
	default:
	}
}
