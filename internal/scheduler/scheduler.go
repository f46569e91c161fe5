package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/kode4food/argyll/editor/pkg/log"
)

type (
	// Scheduler runs delayed tasks on a single goroutine. Tasks keyed by
	// the same path replace one another, which is how edits are debounced
	Scheduler struct {
		now       Clock
		makeTimer TimerConstructor
		reqs      chan request
	}

	// TaskFunc is called when its task comes due
	TaskFunc func() error

	requestOp uint8

	request struct {
		op   requestOp
		task *Task
		path []string
	}
)

const (
	opSchedule requestOp = iota
	opCancelPrefix
	opFlush
)

// New creates a Scheduler using the given clock and timer constructor
func New(now Clock, makeTimer TimerConstructor) *Scheduler {
	return &Scheduler{
		now:       now,
		makeTimer: makeTimer,
		reqs:      make(chan request, 100),
	}
}

// Now returns the current time of the scheduler's clock
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Schedule registers fn to run at the given time, replacing any task
// pending under the same path
func (s *Scheduler) Schedule(
	ctx context.Context, path []string, at time.Time, fn TaskFunc,
) {
	s.send(ctx, request{
		op:   opSchedule,
		task: &Task{Func: fn, At: at, Path: path},
	})
}

// ScheduleAfter registers fn to run once delay has elapsed
func (s *Scheduler) ScheduleAfter(
	ctx context.Context, path []string, delay time.Duration, fn TaskFunc,
) {
	s.Schedule(ctx, path, s.now().Add(delay), fn)
}

// CancelPrefix removes every task pending under the path prefix
func (s *Scheduler) CancelPrefix(ctx context.Context, prefix []string) {
	s.send(ctx, request{op: opCancelPrefix, path: prefix})
}

// Flush runs every pending task immediately, in due order, followed by fn
func (s *Scheduler) Flush(ctx context.Context, fn TaskFunc) {
	s.send(ctx, request{op: opFlush, task: &Task{Func: fn}})
}

// Run processes requests and due tasks until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	timer := s.makeTimer(0)
	var timerCh <-chan time.Time
	tasks := NewTaskHeap()

	resetTimer := func() {
		next := tasks.Peek()
		if next == nil {
			timer.Stop()
			timerCh = nil
			return
		}
		timer.Reset(next.At.Sub(s.now()))
		timerCh = timer.Channel()
	}

	resetTimer()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case req := <-s.reqs:
			switch req.op {
			case opSchedule:
				tasks.Insert(req.task)
			case opCancelPrefix:
				tasks.CancelPrefix(req.path)
			case opFlush:
				for t := tasks.PopTask(); t != nil; t = tasks.PopTask() {
					runTask(t.Func)
				}
				if req.task.Func != nil {
					runTask(req.task.Func)
				}
			}
			resetTimer()
		case <-timerCh:
			if t := tasks.PopTask(); t != nil {
				runTask(t.Func)
			}
			resetTimer()
		}
	}
}

func (s *Scheduler) send(ctx context.Context, req request) {
	select {
	case s.reqs <- req:
	case <-ctx.Done():
	}
}

func runTask(fn TaskFunc) {
	if err := fn(); err != nil {
		slog.Error("Scheduled task failed", log.Error(err))
	}
}
