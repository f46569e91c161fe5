package clipboard

import (
	"fmt"

	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// Location addresses where pasted steps are inserted
type Location struct {
	ParentStep  api.StepName
	Position    api.Location
	BranchIndex int
}

// CopySelection returns the top-most selected actions in tree pre-order.
// Steps nested inside another selected step travel with it, and successors
// are not copied
func CopySelection(v *api.FlowVersion, names []api.StepName) []*api.Step {
	selected := util.SetOf(names...)
	var res []*api.Step
	var visit func(head *api.Step, inside bool)
	visit = func(head *api.Step, inside bool) {
		for s := head; s != nil; s = s.Next {
			sel := !inside && s.IsAction() && selected.Contains(s.Name)
			if sel {
				res = append(res, tree.Detach(s))
			}
			for _, child := range tree.ChildChains(s) {
				visit(child, inside || sel)
			}
		}
	}
	visit(v.Trigger, false)
	return res
}

// AfterLastStep addresses the end of the top-level chain
func AfterLastStep(v *api.FlowVersion) Location {
	return Location{
		ParentStep: tree.LastStep(v.Trigger).Name,
		Position:   api.LocationAfter,
	}
}

// BuildPasteOperations produces the operations that insert copies of the
// given steps at loc. The copies are renamed against the target version,
// with references between them rewritten. The first copy goes to loc and
// each following copy goes after the previous one. Addressing the branch
// just past the last one of a router creates that branch first
func BuildPasteOperations(
	copied []*api.Step, target *api.FlowVersion, loc Location,
) []api.Operation {
	if len(copied) == 0 {
		return nil
	}
	heads := make([]*api.Step, len(copied))
	for i, s := range copied {
		heads[i] = tree.Detach(s)
	}
	clones, _ := tree.CloneAll(heads, tree.Names(target.Trigger))

	var res []api.Operation
	if loc.Position == api.LocationInsideBranch {
		if op, ok := newBranch(target, loc); ok {
			res = append(res, op)
		}
	}
	res = append(res, api.AddAction{
		Action:      clones[0],
		ParentStep:  loc.ParentStep,
		Location:    loc.Position,
		BranchIndex: loc.BranchIndex,
	})
	for i := 1; i < len(clones); i++ {
		res = append(res, api.AddAction{
			Action:     clones[i],
			ParentStep: clones[i-1].Name,
			Location:   api.LocationAfter,
		})
	}
	return res
}

func newBranch(v *api.FlowVersion, loc Location) (api.Operation, bool) {
	parent := tree.Get(v.Trigger, loc.ParentStep)
	if parent == nil {
		return nil, false
	}
	st, ok := parent.Settings.(api.RouterSettings)
	if !ok || loc.BranchIndex != len(st.Branches) {
		return nil, false
	}
	return api.AddBranch{
		StepName:    parent.Name,
		BranchIndex: loc.BranchIndex,
		BranchName:  fmt.Sprintf("Branch %d", len(st.Branches)+1),
	}, true
}
