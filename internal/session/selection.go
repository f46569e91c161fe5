package session

import (
	"context"
	"slices"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

// Select replaces the selection with the named steps that exist
func (s *Session) Select(names ...api.StepName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = s.selection[:0]
	for _, n := range names {
		if tree.Get(s.version.Trigger, n) != nil && !slices.Contains(s.selection, n) {
			s.selection = append(s.selection, n)
		}
	}
}

// Selection returns the selected step names
func (s *Session) Selection() []api.StepName {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selection)
}

// Copy writes the selected steps to the session's clipboard
func (s *Session) Copy(ctx context.Context) (int, error) {
	s.mu.Lock()
	v, names := s.version, slices.Clone(s.selection)
	s.mu.Unlock()
	return clipboard.Copy(ctx, s.deps.Clipboard, v, names)
}

// Paste inserts the clipboard's steps at loc, one operation at a time, and
// returns the resulting version. The first failing operation stops the
// paste; operations applied before it stay applied. Foreign or empty
// clipboard content returns clipboard.ErrNothingToPaste
func (s *Session) Paste(
	ctx context.Context, loc clipboard.Location,
) (*api.FlowVersion, error) {
	text, err := s.deps.Clipboard.Read(ctx)
	if err != nil {
		return nil, err
	}
	steps := clipboard.Deserialize(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	ops := clipboard.BuildPasteOperations(steps, s.version, loc)
	if len(ops) == 0 {
		return nil, clipboard.ErrNothingToPaste
	}
	res := s.version
	for _, op := range ops {
		if res, err = s.apply(op); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// PasteAfterLast pastes after the last top-level step
func (s *Session) PasteAfterLast(ctx context.Context) (*api.FlowVersion, error) {
	return s.Paste(ctx, clipboard.AfterLastStep(s.Version()))
}
