package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/overlay"
	"github.com/kode4food/argyll/editor/internal/queue"
	"github.com/kode4food/argyll/editor/internal/scheduler"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
	"github.com/kode4food/argyll/editor/pkg/log"
)

type (
	// Remote is the source of truth that local operations are sent to
	Remote interface {
		ApplyOperation(
			ctx context.Context, flowID api.FlowID, op api.Operation,
		) (*api.FlowVersion, error)
	}

	// Dependencies are the collaborators a Session is built from
	Dependencies struct {
		Remote        Remote
		Runs          overlay.Fetcher
		Clipboard     clipboard.Clipboard
		Clock         scheduler.Clock
		Timers        scheduler.TimerConstructor
		DebounceDelay time.Duration
		PollInterval  time.Duration
	}

	dispatch struct {
		flowID     api.FlowID
		key        string
		generation uint64
		seq        uint64
	}

	// Session holds the editor state for one open flow: the current
	// version, selection, readonly flag, run overlay and update queue.
	// Every method is safe for concurrent use
	Session struct {
		deps        Dependencies
		queue       *queue.Queue
		poller      *overlay.Poller
		version     *api.FlowVersion
		run         *api.ExecutionRecord
		loopIndexes overlay.LoopIndexMap
		edits       edits
		stopPoll    context.CancelFunc
		ctx         context.Context
		selection   []api.StepName
		mu          sync.Mutex
		seq         uint64
		generation  uint64
		structural  int
		viewingRun  bool
	}
)

var ErrMissingDependency = errors.New("missing session dependency")

// New creates a Session editing v
func New(deps Dependencies, v *api.FlowVersion) (*Session, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("%w: remote", ErrMissingDependency)
	}
	if deps.Clock == nil {
		deps.Clock = scheduler.SystemClock
	}
	if deps.Timers == nil {
		deps.Timers = scheduler.NewTimer
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.NewMemory()
	}
	s := &Session{
		deps:    deps,
		queue:   queue.New(deps.DebounceDelay, deps.Clock, deps.Timers),
		version: v,
		edits:   edits{},
		ctx:     context.Background(),
	}
	if deps.Runs != nil {
		s.poller = overlay.NewPoller(deps.Runs, deps.PollInterval, deps.Timers)
	}
	return s, nil
}

// Start begins sending queued operations to the remote
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.queue.Start(ctx)
}

// Stop cancels any run poll and stops the update queue
func (s *Session) Stop() {
	s.mu.Lock()
	s.cancelPoll()
	s.mu.Unlock()
	s.queue.Stop()
}

// Version returns the current local version
func (s *Session) Version() *api.FlowVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Readonly reports whether structural edits are currently rejected
func (s *Session) Readonly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readonly()
}

// Apply applies op locally and queues it for the remote. Content edits are
// debounced per step, note or flow name; structural edits are sent at once
// after everything queued before them
func (s *Session) Apply(op api.Operation) (*api.FlowVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(op)
}

func (s *Session) apply(op api.Operation) (*api.FlowVersion, error) {
	if op == nil {
		return nil, operation.ErrUnknownOperation
	}
	typ := op.OperationType()
	if s.readonly() && !operation.IsReadonlyExempt(typ) {
		slog.Debug("Rejected operation on readonly session",
			log.FlowID(s.version.FlowID),
			log.Operation(typ))
		return nil, fmt.Errorf("%w: %s", operation.ErrReadonly, typ)
	}
	res, err := operation.Apply(s.version, op)
	if err != nil {
		return nil, err
	}
	s.version = res
	s.selection = slices.DeleteFunc(s.selection, func(n api.StepName) bool {
		return tree.Get(res.Trigger, n) == nil
	})

	s.seq++
	d := dispatch{
		flowID:     res.FlowID,
		generation: s.generation,
		seq:        s.seq,
	}
	if key, ok := KeyFor(op); ok {
		d.key = key
		s.edits[key] = s.seq
		s.queue.Enqueue(key, s.sendTask(d, op))
	} else {
		s.structural++
		s.queue.EnqueueNow(s.sendTask(d, op))
	}
	return res, nil
}

func (s *Session) sendTask(d dispatch, op api.Operation) queue.Task {
	return func(ctx context.Context) error {
		remote, err := s.deps.Remote.ApplyOperation(ctx, d.flowID, op)
		if err != nil {
			return err
		}
		s.reconcile(remote, d)
		return nil
	}
}

// reconcile acknowledges a sent operation and adopts the remote version.
// Content edited locally and not yet acknowledged is kept. While other
// structural operations are still on their way, the local tree is kept and
// the last of their responses reconciles it
func (s *Session) reconcile(remote *api.FlowVersion, d dispatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.generation != s.generation {
		return
	}
	if d.key == "" {
		s.structural--
	} else if s.edits[d.key] == d.seq {
		delete(s.edits, d.key)
	}
	if remote == nil || remote.FlowID != s.version.FlowID {
		return
	}
	if s.structural > 0 {
		return
	}
	s.version = merge(s.version, remote, s.edits)
}

// SwitchVersion replaces the edited version. Run overlay state, any run
// poll and content edits still debouncing are discarded. Readonly follows
// the new version's lock state
func (s *Session) SwitchVersion(v *api.FlowVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPoll()
	s.queue.CancelPending()
	s.version = v
	s.viewingRun = false
	s.run = nil
	s.loopIndexes = nil
	s.selection = nil
	s.edits = edits{}
	s.structural = 0
	s.generation++
}

// Saving reports whether local edits have not yet been accepted
func (s *Session) Saving() bool {
	return s.queue.Saving()
}

// Halted reports whether sending stopped after a remote failure
func (s *Session) Halted() bool {
	return s.queue.Halted()
}

// Retry resumes sending after a remote failure
func (s *Session) Retry() {
	s.queue.Resume()
}

// Flush waits until every queued operation has been sent
func (s *Session) Flush(ctx context.Context) error {
	return s.queue.Flush(ctx)
}

// AddNote creates a note with a fresh identifier
func (s *Session) AddNote(
	content string, pos api.Position, size api.Size,
) (api.Note, error) {
	n := api.Note{
		ID:       builder.NewNoteID(),
		Content:  content,
		Position: pos,
		Size:     size,
	}
	if _, err := s.Apply(api.AddNote{Note: n}); err != nil {
		return api.Note{}, err
	}
	return n, nil
}

func (s *Session) readonly() bool {
	return s.viewingRun || s.version.IsLocked()
}

func (s *Session) cancelPoll() {
	if s.stopPoll != nil {
		s.stopPoll()
		s.stopPoll = nil
	}
}
