package operation

import (
	"errors"
	"fmt"

	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

var (
	ErrInvalidLocation  = errors.New("invalid location")
	ErrReadonly         = errors.New("flow version is readonly")
	ErrDuplicateName    = errors.New("duplicate step name")
	ErrNotAction        = errors.New("step is not an action")
	ErrCategoryMismatch = errors.New("step category mismatch")
	ErrOrphanedChildren = errors.New("step type change would orphan children")
	ErrBranchMismatch   = errors.New("router branch count mismatch")
	ErrNotRouter        = errors.New("step is not a router")
	ErrInvalidBranch    = errors.New("invalid branch index")
	ErrNoteNotFound     = errors.New("note not found")
	ErrDuplicateNote    = errors.New("duplicate note")
	ErrInvalidNote      = errors.New("invalid note")
	ErrMissingStep      = errors.New("operation carries no step")
	ErrUnknownOperation = errors.New("unknown operation")
)

var readonlyExempt = util.SetOf(
	api.OpSaveSampleData,
	api.OpUpdateNote,
)

// IsReadonlyExempt reports whether an operation type may be applied to a
// locked version
func IsReadonlyExempt(t api.OperationType) bool {
	return readonlyExempt.Contains(t)
}

// Apply produces the version that results from applying op to v. The input
// is never modified: the result is a new value sharing every part of the
// step tree that the operation did not touch. On error, the result is nil
func Apply(v *api.FlowVersion, op api.Operation) (*api.FlowVersion, error) {
	if op == nil {
		return nil, ErrUnknownOperation
	}
	if v.IsLocked() && !IsReadonlyExempt(op.OperationType()) {
		return nil, fmt.Errorf("%w: %s", ErrReadonly, op.OperationType())
	}
	res, err := apply(v, op)
	if err != nil {
		return nil, err
	}
	res.Valid = tree.AllValid(res.Trigger)
	return res, nil
}

func apply(v *api.FlowVersion, op api.Operation) (*api.FlowVersion, error) {
	switch o := op.(type) {
	case api.AddAction:
		return addAction(v, o)
	case api.UpdateAction:
		return updateAction(v, o)
	case api.UpdateTrigger:
		return updateTrigger(v, o)
	case api.DeleteAction:
		return deleteAction(v, o)
	case api.DuplicateAction:
		return duplicateAction(v, o)
	case api.SetSkipAction:
		return setSkipAction(v, o)
	case api.MoveAction:
		return moveAction(v, o)
	case api.AddBranch:
		return addBranch(v, o)
	case api.DeleteBranch:
		return deleteBranch(v, o)
	case api.DuplicateBranch:
		return duplicateBranch(v, o)
	case api.SaveSampleData:
		return saveSampleData(v, o)
	case api.AddNote:
		return addNote(v, o)
	case api.UpdateNote:
		return updateNote(v, o)
	case api.DeleteNote:
		return deleteNote(v, o)
	case api.ChangeName:
		return changeName(v, o)
	case api.ImportFlow:
		return importFlow(v, o)
	case api.LockFlow:
		return lockFlow(v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op.OperationType())
	}
}

func withTrigger(v *api.FlowVersion, root *api.Step) *api.FlowVersion {
	res := v.Copy()
	res.Trigger = root
	return res
}

func getStep(root *api.Step, name api.StepName) (*api.Step, error) {
	return tree.GetOrErr(root, name)
}

func getAction(root *api.Step, name api.StepName) (*api.Step, error) {
	s, err := getStep(root, name)
	if err != nil {
		return nil, err
	}
	if !s.IsAction() {
		return nil, fmt.Errorf("%w: %s", ErrNotAction, name)
	}
	return s, nil
}
