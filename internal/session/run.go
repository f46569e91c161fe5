package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kode4food/argyll/editor/internal/overlay"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

var ErrNoRunFetcher = errors.New("session has no run fetcher")

// ViewRun switches the session into readonly run view and polls the run
// until it reaches a terminal status. Any previous poll is cancelled
func (s *Session) ViewRun(id api.RunID) error {
	if s.poller == nil {
		return ErrNoRunFetcher
	}
	s.mu.Lock()
	s.cancelPoll()
	s.viewingRun = true
	s.run = nil
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopPoll = cancel
	s.mu.Unlock()

	go func() {
		err := s.poller.Poll(ctx, id, func(rec *api.ExecutionRecord) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if ctx.Err() == nil {
				s.setRun(rec)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("Run poll stopped",
				log.RunID(id),
				log.Error(err))
		}
	}()
	return nil
}

// SetRun overlays rec on the current tree, re-clamping loop indexes
func (s *Session) SetRun(rec *api.ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRun(rec)
}

func (s *Session) setRun(rec *api.ExecutionRecord) {
	s.run = rec
	s.loopIndexes = overlay.LoopIndexesFor(
		s.version.Trigger, rec, s.loopIndexes,
	)
}

// Run returns the overlaid execution record
func (s *Session) Run() *api.ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// StepStatuses projects the overlaid run onto the current tree
func (s *Session) StepStatuses() overlay.StatusMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overlay.ProjectStatus(s.version.Trigger, s.run, s.loopIndexes)
}

// StepOutput returns the output shown for a step in the current view
func (s *Session) StepOutput(name api.StepName) *api.StepOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overlay.StepOutputFor(s.version.Trigger, s.run, s.loopIndexes, name)
}

// LoopIndexes returns the selected iteration of each loop
func (s *Session) LoopIndexes() overlay.LoopIndexMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopIndexes
}

// SetLoopIndex selects a loop iteration, re-clamping nested loops
func (s *Session) SetLoopIndex(loop api.StepName, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopIndexes = overlay.SetLoopIndex(
		s.version.Trigger, s.run, s.loopIndexes, loop, idx,
	)
}

// FailedStep returns the step explaining the overlaid run's status
func (s *Session) FailedStep() (api.StepName, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return "", false
	}
	return overlay.FindLastStepWithStatus(
		s.version.Trigger, s.run.Status, s.run.Steps,
	)
}
