package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/argyll/editor/internal/scheduler"
	"github.com/kode4food/argyll/editor/pkg/log"
	"github.com/kode4food/argyll/editor/pkg/util"
)

type (
	// Queue delivers local edits to the remote one at a time. Edits sharing
	// a key are debounced so only the latest is sent, while structural
	// edits release everything pending ahead of them
	Queue struct {
		sched     *scheduler.Scheduler
		sendMu    sync.RWMutex
		delay     time.Duration
		prod      topic.Producer[*item]
		cons      topic.Consumer[*item]
		stop      chan struct{}
		cancel    context.CancelFunc
		scheduled util.Set[string]
		held      []*item
		lastErr   error
		wg        sync.WaitGroup
		mu        sync.Mutex
		waiting   int
		queued    int
		startOnce sync.Once
		stopOnce  sync.Once
		halted    bool
		closed    bool
	}

	// Task sends one edit to the remote
	Task func(ctx context.Context) error

	item struct {
		task   Task
		key    string
		resume bool
	}
)

const (
	// StructuralKey labels tasks submitted through EnqueueNow in logs
	StructuralKey = "structural"

	debounceRoot = "debounce"
)

var (
	ErrDispatchFailed = errors.New("update dispatch failed")
	ErrTaskPanicked   = errors.New("update task panicked")
)

// New creates a Queue that debounces keyed tasks by delay, using the given
// clock and timer constructor for all timing
func New(
	delay time.Duration, now scheduler.Clock, timers scheduler.TimerConstructor,
) *Queue {
	t := caravan.NewTopic[*item]()
	return &Queue{
		sched:     scheduler.New(now, timers),
		delay:     delay,
		prod:      t.NewProducer(),
		cons:      t.NewConsumer(),
		stop:      make(chan struct{}),
		scheduled: util.Set[string]{},
	}
}

// Start begins debouncing and dispatching. Tasks receive ctx
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		ctx, q.cancel = context.WithCancel(ctx)
		q.wg.Go(func() {
			q.sched.Run(ctx)
		})
		q.wg.Go(func() {
			q.run(ctx)
		})
	})
}

// Stop halts dispatching without running the tasks still pending. Tasks
// enqueued after Stop are dropped
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stop)
		if q.cancel != nil {
			q.cancel()
		}
		q.wg.Wait()

		q.sendMu.Lock()
		q.closed = true
		q.sendMu.Unlock()
		q.prod.Close()
		q.cons.Close()
	})
}

// Enqueue schedules task under key, replacing any task still debouncing
// under the same key
func (q *Queue) Enqueue(key string, task Task) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.scheduled.Add(key)
	q.mu.Unlock()

	q.sched.ScheduleAfter(context.Background(), debouncePath(key), q.delay,
		func() error {
			q.mu.Lock()
			q.scheduled.Remove(key)
			q.mu.Unlock()
			q.release(&item{key: key, task: task})
			return nil
		},
	)
}

// CancelPending drops every task still debouncing. Tasks already released
// for dispatch are unaffected
func (q *Queue) CancelPending() {
	q.sched.CancelPrefix(context.Background(), []string{debounceRoot})
	q.mu.Lock()
	q.scheduled = util.Set[string]{}
	q.mu.Unlock()
}

// EnqueueNow releases every debounced task, in due order, followed by
// task
func (q *Queue) EnqueueNow(task Task) {
	if task == nil {
		return
	}
	q.mu.Lock()
	q.waiting++
	q.mu.Unlock()

	q.sched.Flush(context.Background(), func() error {
		q.mu.Lock()
		q.waiting--
		q.mu.Unlock()
		q.release(&item{key: StructuralKey, task: task})
		return nil
	})
}

// Flush waits until every task submitted so far has been dispatched. It
// returns the failure that halted the queue, or ctx's error
func (q *Queue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	q.EnqueueNow(func(context.Context) error {
		close(done)
		return nil
	})
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
			if err := q.Err(); err != nil {
				return err
			}
		}
	}
}

// Resume clears a halt and retries the held tasks in their original order
func (q *Queue) Resume() {
	if !q.Halted() {
		return
	}
	q.send(&item{resume: true})
}

// Saving reports whether any task is debouncing, queued, in flight or held
// by a halt
func (q *Queue) Saving() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.halted || q.waiting > 0 || q.queued > 0 || !q.scheduled.IsEmpty()
}

// Halted reports whether a failed task has stopped dispatching
func (q *Queue) Halted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.halted
}

// Err returns the failure that halted the queue
func (q *Queue) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.halted {
		return nil
	}
	return q.lastErr
}

func (q *Queue) release(it *item) {
	q.mu.Lock()
	q.queued++
	q.mu.Unlock()
	if !q.send(it) {
		q.mu.Lock()
		q.queued--
		q.mu.Unlock()
	}
}

func (q *Queue) send(it *item) bool {
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.closed {
		return false
	}
	message.Send(q.prod, it)
	return true
}

func debouncePath(key string) []string {
	return []string{debounceRoot, key}
}

func (q *Queue) run(ctx context.Context) {
	for {
		select {
		case <-q.stop:
			return
		case it, ok := <-q.cons.Receive():
			if !ok {
				return
			}
			if it.resume {
				q.resumeHeld(ctx)
				continue
			}
			q.handle(ctx, it)
		}
	}
}

func (q *Queue) handle(ctx context.Context, it *item) {
	q.mu.Lock()
	if q.halted {
		q.held = append(q.held, it)
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()
	q.dispatch(ctx, it)
}

func (q *Queue) resumeHeld(ctx context.Context) {
	q.mu.Lock()
	held := q.held
	q.held = nil
	q.halted = false
	q.lastErr = nil
	q.mu.Unlock()

	for i, it := range held {
		if !q.dispatch(ctx, it) {
			q.mu.Lock()
			q.held = append(q.held, held[i+1:]...)
			q.mu.Unlock()
			return
		}
	}
}

func (q *Queue) dispatch(ctx context.Context, it *item) bool {
	err := q.runTask(ctx, it.task)
	q.mu.Lock()
	defer q.mu.Unlock()
	if err != nil {
		q.halted = true
		q.lastErr = fmt.Errorf("%w: %s: %w", ErrDispatchFailed, it.key, err)
		q.held = append(q.held, it)
		slog.Error("Update dispatch failed",
			log.Key(it.key),
			log.Error(err))
		return false
	}
	q.queued--
	return true
}

func (q *Queue) runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(ctx)
}
