package scheduler

import "time"

type (
	// Clock reports the current time. Debounce deadlines and poll
	// intervals are computed against it
	Clock func() time.Time

	// Timer is the resettable timer driving a Scheduler or a poller
	Timer interface {
		Channel() <-chan time.Time
		Reset(delay time.Duration) bool
		Stop() bool
	}

	// TimerConstructor creates a Timer armed with the given delay
	TimerConstructor func(delay time.Duration) Timer

	wallTimer struct {
		*time.Timer
	}
)

// SystemClock is the wall clock
var SystemClock Clock = time.Now

// NewTimer creates a Timer backed by time.Timer
func NewTimer(delay time.Duration) Timer {
	return &wallTimer{Timer: time.NewTimer(delay)}
}

func (t *wallTimer) Channel() <-chan time.Time {
	return t.C
}
