package operation

import (
	"fmt"
	"slices"

	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// target addresses an insertion point relative to an existing step
type target struct {
	parent      api.StepName
	location    api.Location
	placement   api.Placement
	branchIndex int
}

func addAction(v *api.FlowVersion, o api.AddAction) (*api.FlowVersion, error) {
	if o.Action == nil {
		return nil, ErrMissingStep
	}
	chain, err := fillNames(o.Action, tree.Names(v.Trigger))
	if err != nil {
		return nil, err
	}
	root, err := insert(v.Trigger, target{
		parent:      o.ParentStep,
		location:    o.Location,
		placement:   o.Placement,
		branchIndex: o.BranchIndex,
	}, chain)
	if err != nil {
		return nil, err
	}
	return withTrigger(v, root), nil
}

func updateAction(
	v *api.FlowVersion, o api.UpdateAction,
) (*api.FlowVersion, error) {
	if o.Action == nil {
		return nil, ErrMissingStep
	}
	if !o.Action.IsAction() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrCategoryMismatch, o.Action.Name, o.Action.Type(),
		)
	}
	old, err := getStep(v.Trigger, o.Action.Name)
	if err != nil {
		return nil, err
	}
	if !old.IsAction() {
		return nil, fmt.Errorf("%w: %s is a trigger",
			ErrCategoryMismatch, old.Name,
		)
	}
	upd, err := mergeContent(old, o.Action)
	if err != nil {
		return nil, err
	}
	upd.Skip = o.Action.Skip
	root, _ := tree.Replace(v.Trigger, old.Name, func(*api.Step) *api.Step {
		return upd
	})
	return withTrigger(v, root), nil
}

func updateTrigger(
	v *api.FlowVersion, o api.UpdateTrigger,
) (*api.FlowVersion, error) {
	if o.Trigger == nil {
		return nil, ErrMissingStep
	}
	if !o.Trigger.IsTrigger() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrCategoryMismatch, o.Trigger.Name, o.Trigger.Type(),
		)
	}
	upd, err := mergeContent(v.Trigger, o.Trigger)
	if err != nil {
		return nil, err
	}
	return withTrigger(v, upd), nil
}

// mergeContent returns a copy of old carrying the content of upd. The
// name, position and owned children of old are kept
func mergeContent(old, upd *api.Step) (*api.Step, error) {
	settings, err := keepChildren(old.Settings, upd.Settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, old.Name)
	}
	res := old.Copy()
	res.DisplayName = upd.DisplayName
	res.Valid = upd.Valid
	res.Settings = settings
	if upd.SampleData != nil {
		res.SampleData = upd.SampleData
	}
	return res, nil
}

func keepChildren(old, upd api.Settings) (api.Settings, error) {
	if upd == nil {
		return old, nil
	}
	if old != nil && old.StepType() != upd.StepType() && hasChildren(old) {
		return nil, ErrOrphanedChildren
	}
	switch st := upd.(type) {
	case api.LoopSettings:
		st.FirstAction = nil
		if o, ok := old.(api.LoopSettings); ok {
			st.FirstAction = o.FirstAction
		}
		return st, nil
	case api.RouterSettings:
		o, ok := old.(api.RouterSettings)
		if ok && len(o.Branches) != len(st.Branches) {
			return nil, fmt.Errorf("%w: %d != %d",
				ErrBranchMismatch, len(st.Branches), len(o.Branches),
			)
		}
		st.Branches = slices.Clone(st.Branches)
		for i := range st.Branches {
			st.Branches[i].Child = nil
			if ok {
				st.Branches[i].Child = o.Branches[i].Child
			}
		}
		return st, nil
	default:
		return upd, nil
	}
}

func hasChildren(s api.Settings) bool {
	switch st := s.(type) {
	case api.LoopSettings:
		return st.FirstAction != nil
	case api.RouterSettings:
		for _, b := range st.Branches {
			if b.Child != nil {
				return true
			}
		}
	}
	return false
}

func deleteAction(
	v *api.FlowVersion, o api.DeleteAction,
) (*api.FlowVersion, error) {
	root := v.Trigger
	for _, name := range o.Names {
		if name == root.Name {
			return nil, fmt.Errorf("%w: %s", ErrNotAction, name)
		}
		root, _ = tree.Replace(root, name, func(s *api.Step) *api.Step {
			return s.Next
		})
	}
	return withTrigger(v, root), nil
}

func duplicateAction(
	v *api.FlowVersion, o api.DuplicateAction,
) (*api.FlowVersion, error) {
	s, err := getAction(v.Trigger, o.StepName)
	if err != nil {
		return nil, err
	}
	clone, _ := tree.Clone(s, tree.Names(v.Trigger))
	root, _ := tree.Replace(v.Trigger, s.Name, func(orig *api.Step) *api.Step {
		res := orig.Copy()
		clone.Next = orig.Next
		res.Next = clone
		return res
	})
	return withTrigger(v, root), nil
}

func setSkipAction(
	v *api.FlowVersion, o api.SetSkipAction,
) (*api.FlowVersion, error) {
	root := v.Trigger
	for _, name := range o.Names {
		if name == root.Name {
			return nil, fmt.Errorf("%w: %s", ErrNotAction, name)
		}
		root, _ = tree.Replace(root, name, func(s *api.Step) *api.Step {
			res := s.Copy()
			res.Skip = o.Skip
			return res
		})
	}
	return withTrigger(v, root), nil
}

func moveAction(
	v *api.FlowVersion, o api.MoveAction,
) (*api.FlowVersion, error) {
	s, err := getAction(v.Trigger, o.Name)
	if err != nil {
		return nil, err
	}
	if tree.Contains(s, o.NewParentStep) {
		return nil, fmt.Errorf("%w: %s is inside %s",
			ErrInvalidLocation, o.NewParentStep, o.Name,
		)
	}
	root, _ := tree.Replace(v.Trigger, s.Name, func(old *api.Step) *api.Step {
		return old.Next
	})
	root, err = insert(root, target{
		parent:      o.NewParentStep,
		location:    o.Location,
		branchIndex: o.BranchIndex,
	}, tree.Detach(s))
	if err != nil {
		return nil, err
	}
	return withTrigger(v, root), nil
}

func saveSampleData(
	v *api.FlowVersion, o api.SaveSampleData,
) (*api.FlowVersion, error) {
	s, err := getStep(v.Trigger, o.StepName)
	if err != nil {
		return nil, err
	}
	root, _ := tree.Replace(v.Trigger, s.Name, func(old *api.Step) *api.Step {
		res := old.Copy()
		res.SampleData = &api.SampleData{Input: o.Input, Output: o.Output}
		return res
	})
	return withTrigger(v, root), nil
}

// fillNames copies an incoming chain, naming unnamed steps and rejecting
// names already present in taken. Every step of the chain must be an action
func fillNames(
	head *api.Step, taken util.Set[api.StepName],
) (*api.Step, error) {
	if head == nil {
		return nil, nil
	}
	if !head.IsAction() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrNotAction, head.Name, head.Type(),
		)
	}
	res := head.Copy()
	if res.Name == "" {
		res.Name = tree.UnusedName(taken)
	} else if taken.Contains(res.Name) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, res.Name)
	}
	taken.Add(res.Name)
	for i, child := range tree.ChildChains(head) {
		c, err := fillNames(child, taken)
		if err != nil {
			return nil, err
		}
		res = tree.WithChild(res, i, c)
	}
	next, err := fillNames(head.Next, taken)
	if err != nil {
		return nil, err
	}
	res.Next = next
	return res, nil
}

// insert links chain into root at the addressed location. Absolute
// placement takes precedence over the sibling-relative location
func insert(root *api.Step, t target, chain *api.Step) (*api.Step, error) {
	parent := tree.Get(root, t.parent)
	if parent == nil {
		return nil, fmt.Errorf("%w: parent %q not found",
			ErrInvalidLocation, t.parent,
		)
	}
	slot, err := resolveSlot(root, parent, t)
	if err != nil {
		return nil, err
	}
	switch t.placement {
	case api.PlacementTop:
		res, _ := tree.ReplaceSlot(root, slot, func(h *api.Step) *api.Step {
			return tree.Append(chain, h)
		})
		return res, nil
	case api.PlacementBottom:
		res, _ := tree.ReplaceSlot(root, slot, func(h *api.Step) *api.Step {
			return tree.Append(h, chain)
		})
		return res, nil
	case "":
	default:
		return nil, fmt.Errorf("%w: placement %q",
			ErrInvalidLocation, t.placement,
		)
	}

	switch t.location {
	case api.LocationBefore:
		if parent.Name == root.Name {
			return nil, fmt.Errorf("%w: cannot insert before the trigger",
				ErrInvalidLocation,
			)
		}
		res, _ := tree.Replace(root, parent.Name, func(p *api.Step) *api.Step {
			return tree.Append(chain, p)
		})
		return res, nil
	case api.LocationAfter, "":
		res, _ := tree.Replace(root, parent.Name, func(p *api.Step) *api.Step {
			c := p.Copy()
			c.Next = tree.Append(chain, p.Next)
			return c
		})
		return res, nil
	default:
		res, _ := tree.ReplaceSlot(root, slot, func(h *api.Step) *api.Step {
			return tree.Append(chain, h)
		})
		return res, nil
	}
}

// resolveSlot returns the chain addressed by a target. For sibling-relative
// locations it is the chain holding the parent, for inside locations the
// owned chain of the parent
func resolveSlot(
	root, parent *api.Step, t target,
) (tree.Slot, error) {
	switch t.location {
	case api.LocationAfter, api.LocationBefore, "":
		slot, _ := tree.ChainSlot(root, parent.Name)
		return slot, nil
	case api.LocationInsideLoop:
		if parent.Type() != api.StepTypeLoop {
			return tree.Slot{}, fmt.Errorf("%w: %s is not a loop",
				ErrInvalidLocation, parent.Name,
			)
		}
		return tree.Slot{
			Owner:    parent,
			Relation: api.LocationInsideLoop,
		}, nil
	case api.LocationInsideBranch:
		st, ok := parent.Settings.(api.RouterSettings)
		if !ok {
			return tree.Slot{}, fmt.Errorf("%w: %s is not a router",
				ErrInvalidLocation, parent.Name,
			)
		}
		if t.branchIndex < 0 || t.branchIndex >= len(st.Branches) {
			return tree.Slot{}, fmt.Errorf("%w: branch %d of %s",
				ErrInvalidLocation, t.branchIndex, parent.Name,
			)
		}
		return tree.Slot{
			Owner:       parent,
			Relation:    api.LocationInsideBranch,
			BranchIndex: t.branchIndex,
		}, nil
	default:
		return tree.Slot{}, fmt.Errorf("%w: location %q",
			ErrInvalidLocation, t.location,
		)
	}
}
