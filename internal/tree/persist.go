package tree

import (
	"slices"

	"github.com/kode4food/argyll/editor/pkg/api"
)

// ReplaceFunc computes the step that takes over a slot. Returning the
// step's own Next removes it from its chain
type ReplaceFunc func(*api.Step) *api.Step

// Replace rebinds the slot holding the named step to fn(step). Every step
// on the path from root to that slot is shallow-copied and everything else
// is shared with the input. The returned bool reports whether the named
// step was found; when it is not, root is returned unchanged
func Replace(
	root *api.Step, name api.StepName, fn ReplaceFunc,
) (*api.Step, bool) {
	return replaceChain(root, name, fn)
}

func replaceChain(
	head *api.Step, name api.StepName, fn ReplaceFunc,
) (*api.Step, bool) {
	if head == nil {
		return nil, false
	}
	if head.Name == name {
		return fn(head), true
	}
	for i, child := range ChildChains(head) {
		if res, ok := replaceChain(child, name, fn); ok {
			return WithChild(head, i, res), true
		}
	}
	if next, ok := replaceChain(head.Next, name, fn); ok {
		res := head.Copy()
		res.Next = next
		return res, true
	}
	return head, false
}

// WithChild returns a copy of a container step whose idx-th owned chain is
// replaced by head. Non-container steps are returned unchanged
func WithChild(s *api.Step, idx int, head *api.Step) *api.Step {
	switch st := s.Settings.(type) {
	case api.LoopSettings:
		st.FirstAction = head
		res := s.Copy()
		res.Settings = st
		return res
	case api.RouterSettings:
		if idx < 0 || idx >= len(st.Branches) {
			return s
		}
		st.Branches = slices.Clone(st.Branches)
		st.Branches[idx].Child = head
		res := s.Copy()
		res.Settings = st
		return res
	default:
		return s
	}
}

// ReplaceSlot rebinds the head of the chain addressed by a slot. The owner
// is located by name so that the returned root shares everything off the
// path to it
func ReplaceSlot(
	root *api.Step, slot Slot, fn func(head *api.Step) *api.Step,
) (*api.Step, bool) {
	if slot.Owner == nil {
		return root, false
	}
	return Replace(root, slot.Owner.Name, func(owner *api.Step) *api.Step {
		if slot.Relation == api.LocationAfter {
			res := owner.Copy()
			res.Next = fn(owner.Next)
			return res
		}
		chains := ChildChains(owner)
		if slot.BranchIndex < 0 || slot.BranchIndex >= len(chains) {
			return owner
		}
		return WithChild(owner, slot.BranchIndex, fn(chains[slot.BranchIndex]))
	})
}

// Append returns a copy of the chain starting at head with tail linked
// after its last step. The steps of head are copied, tail is shared
func Append(head, tail *api.Step) *api.Step {
	if head == nil {
		return tail
	}
	res := head.Copy()
	res.Next = Append(head.Next, tail)
	return res
}

// Detach returns a copy of the step with no successor
func Detach(s *api.Step) *api.Step {
	if s.Next == nil {
		return s
	}
	res := s.Copy()
	res.Next = nil
	return res
}

// Map rebuilds the tree bottom-up, calling fn with a copy of every step
// whose owned chains and successor have already been mapped
func Map(root *api.Step, fn ReplaceFunc) *api.Step {
	if root == nil {
		return nil
	}
	res := root.Copy()
	for i, child := range ChildChains(root) {
		res = WithChild(res, i, Map(child, fn))
	}
	res.Next = Map(root.Next, fn)
	return fn(res)
}
