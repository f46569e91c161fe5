package tree

import (
	"errors"
	"fmt"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

type (
	// Slot describes where a step is attached within the tree
	Slot struct {
		// Owner is the step holding the link, nil for the trigger
		Owner       *api.Step
		Relation    api.Location
		BranchIndex int
	}

	// VisitFunc is called for each visited step. Returning false stops the
	// walk
	VisitFunc func(*api.Step) bool
)

// ErrStepNotFound is returned when a referenced step is absent from the tree
var ErrStepNotFound = errors.New("step not found")

// Walk visits the chain starting at head in pre-order, descending into loop
// bodies and router branches where they are attached. It reports whether
// the walk completed
func Walk(head *api.Step, fn VisitFunc) bool {
	for s := head; s != nil; s = s.Next {
		if !fn(s) {
			return false
		}
		for _, child := range ChildChains(s) {
			if !Walk(child, fn) {
				return false
			}
		}
	}
	return true
}

// ChildChains returns the heads of the chains owned by a step in declaration
// order. Empty branches yield nil heads
func ChildChains(s *api.Step) []*api.Step {
	switch st := s.Settings.(type) {
	case api.LoopSettings:
		return []*api.Step{st.FirstAction}
	case api.RouterSettings:
		res := make([]*api.Step, len(st.Branches))
		for i, b := range st.Branches {
			res[i] = b.Child
		}
		return res
	default:
		return nil
	}
}

// Get returns the named step, or nil when it is absent
func Get(root *api.Step, name api.StepName) *api.Step {
	var res *api.Step
	Walk(root, func(s *api.Step) bool {
		if s.Name == name {
			res = s
			return false
		}
		return true
	})
	return res
}

// GetOrErr returns the named step or ErrStepNotFound. Callers use it where
// absence indicates a logic error rather than user input
func GetOrErr(root *api.Step, name api.StepName) (*api.Step, error) {
	if s := Get(root, name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrStepNotFound, name)
}

// All returns every step reachable from root in pre-order
func All(root *api.Step) []*api.Step {
	var res []*api.Step
	Walk(root, func(s *api.Step) bool {
		res = append(res, s)
		return true
	})
	return res
}

// Chain returns the steps linked by Next starting at head
func Chain(head *api.Step) []*api.Step {
	var res []*api.Step
	for s := head; s != nil; s = s.Next {
		res = append(res, s)
	}
	return res
}

// LastStep returns the tail of the chain starting at head
func LastStep(head *api.Step) *api.Step {
	if head == nil {
		return nil
	}
	s := head
	for s.Next != nil {
		s = s.Next
	}
	return s
}

// Descendants returns every step nested inside the step's owned chains,
// excluding the step itself and its successors
func Descendants(s *api.Step) []*api.Step {
	var res []*api.Step
	for _, child := range ChildChains(s) {
		res = append(res, All(child)...)
	}
	return res
}

// Index returns the pre-order position of the named step, or -1
func Index(root *api.Step, name api.StepName) int {
	idx := -1
	i := 0
	Walk(root, func(s *api.Step) bool {
		if s.Name == name {
			idx = i
			return false
		}
		i++
		return true
	})
	return idx
}

// Names returns the set of every step name in the tree
func Names(root *api.Step) util.Set[api.StepName] {
	res := util.Set[api.StepName]{}
	Walk(root, func(s *api.Step) bool {
		res.Add(s.Name)
		return true
	})
	return res
}

// Contains reports whether the named step is inside the subtree owned by
// ancestor, or is the ancestor itself
func Contains(ancestor *api.Step, name api.StepName) bool {
	if ancestor.Name == name {
		return true
	}
	for _, s := range Descendants(ancestor) {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Locate returns the slot that links the named step into the tree
func Locate(root *api.Step, name api.StepName) (Slot, bool) {
	if root == nil {
		return Slot{}, false
	}
	if root.Name == name {
		return Slot{}, true
	}
	return locate(root, name)
}

func locate(head *api.Step, name api.StepName) (Slot, bool) {
	for s := head; s != nil; s = s.Next {
		if s.Next != nil && s.Next.Name == name {
			return Slot{Owner: s, Relation: api.LocationAfter}, true
		}
		for i, child := range ChildChains(s) {
			if child == nil {
				continue
			}
			if child.Name == name {
				return Slot{
					Owner:       s,
					Relation:    childRelation(s),
					BranchIndex: i,
				}, true
			}
			if slot, ok := locate(child, name); ok {
				return slot, true
			}
		}
	}
	return Slot{}, false
}

// ChainSlot returns the slot holding the head of the chain that contains
// the named step. For the top-level chain, the slot is the trigger's Next
func ChainSlot(root *api.Step, name api.StepName) (Slot, bool) {
	if root == nil {
		return Slot{}, false
	}
	if root.Name == name {
		return Slot{Owner: root, Relation: api.LocationAfter}, true
	}
	return chainSlot(root.Next, Slot{
		Owner:    root,
		Relation: api.LocationAfter,
	}, name)
}

func chainSlot(head *api.Step, slot Slot, name api.StepName) (Slot, bool) {
	for s := head; s != nil; s = s.Next {
		if s.Name == name {
			return slot, true
		}
		for i, child := range ChildChains(s) {
			res, ok := chainSlot(child, Slot{
				Owner:       s,
				Relation:    childRelation(s),
				BranchIndex: i,
			}, name)
			if ok {
				return res, true
			}
		}
	}
	return Slot{}, false
}

// SlotHead returns the first step linked from a slot
func SlotHead(slot Slot) *api.Step {
	if slot.Owner == nil {
		return nil
	}
	switch slot.Relation {
	case api.LocationAfter:
		return slot.Owner.Next
	default:
		chains := ChildChains(slot.Owner)
		if slot.BranchIndex < 0 || slot.BranchIndex >= len(chains) {
			return nil
		}
		return chains[slot.BranchIndex]
	}
}

// Containers returns the loop and router steps enclosing the named step,
// outermost first
func Containers(root *api.Step, name api.StepName) ([]*api.Step, bool) {
	return containers(root, name, nil)
}

func containers(
	head *api.Step, name api.StepName, path []*api.Step,
) ([]*api.Step, bool) {
	for s := head; s != nil; s = s.Next {
		if s.Name == name {
			return path, true
		}
		for _, child := range ChildChains(s) {
			inner := append(path[:len(path):len(path)], s)
			if res, ok := containers(child, name, inner); ok {
				return res, true
			}
		}
	}
	return nil, false
}

// LoopAncestors returns the loops enclosing the named step, outermost first
func LoopAncestors(root *api.Step, name api.StepName) []*api.Step {
	path, _ := Containers(root, name)
	var res []*api.Step
	for _, s := range path {
		if s.Type() == api.StepTypeLoop {
			res = append(res, s)
		}
	}
	return res
}

// AllValid reports whether every step in the tree is marked valid
func AllValid(root *api.Step) bool {
	return Walk(root, func(s *api.Step) bool {
		return s.Valid
	})
}

// UnusedName returns the first step_N name not present in taken
func UnusedName(taken util.Set[api.StepName]) api.StepName {
	for i := 1; ; i++ {
		name := api.StepName(fmt.Sprintf("step_%d", i))
		if !taken.Contains(name) {
			return name
		}
	}
}

func childRelation(s *api.Step) api.Location {
	if s.Type() == api.StepTypeLoop {
		return api.LocationInsideLoop
	}
	return api.LocationInsideBranch
}
