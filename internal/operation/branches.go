package operation

import (
	"fmt"
	"slices"

	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

func addBranch(v *api.FlowVersion, o api.AddBranch) (*api.FlowVersion, error) {
	s, st, err := getRouter(v.Trigger, o.StepName)
	if err != nil {
		return nil, err
	}
	if o.BranchIndex < 0 || o.BranchIndex > len(st.Branches) {
		return nil, fmt.Errorf("%w: %d of %s",
			ErrInvalidBranch, o.BranchIndex, s.Name,
		)
	}
	name := o.BranchName
	if name == "" {
		name = fmt.Sprintf("Branch %d", len(st.Branches)+1)
	}
	st.Branches = slices.Insert(slices.Clone(st.Branches), o.BranchIndex,
		api.Branch{Name: name, Type: api.BranchCondition},
	)
	return withRouter(v, s, st), nil
}

func deleteBranch(
	v *api.FlowVersion, o api.DeleteBranch,
) (*api.FlowVersion, error) {
	s, st, err := getRouter(v.Trigger, o.StepName)
	if err != nil {
		return nil, err
	}
	if err := checkBranch(s, st, o.BranchIndex); err != nil {
		return nil, err
	}
	st.Branches = slices.Delete(
		slices.Clone(st.Branches), o.BranchIndex, o.BranchIndex+1,
	)
	return withRouter(v, s, st), nil
}

func duplicateBranch(
	v *api.FlowVersion, o api.DuplicateBranch,
) (*api.FlowVersion, error) {
	s, st, err := getRouter(v.Trigger, o.StepName)
	if err != nil {
		return nil, err
	}
	if err := checkBranch(s, st, o.BranchIndex); err != nil {
		return nil, err
	}
	orig := st.Branches[o.BranchIndex]
	child, _ := tree.CloneChain(orig.Child, tree.Names(v.Trigger))
	dup := api.Branch{
		Child:      child,
		Name:       orig.Name + " Copy",
		Type:       api.BranchCondition,
		Conditions: cloneConditions(orig.Conditions),
	}
	st.Branches = slices.Insert(
		slices.Clone(st.Branches), o.BranchIndex+1, dup,
	)
	return withRouter(v, s, st), nil
}

func getRouter(
	root *api.Step, name api.StepName,
) (*api.Step, api.RouterSettings, error) {
	s, err := getStep(root, name)
	if err != nil {
		return nil, api.RouterSettings{}, err
	}
	st, ok := s.Settings.(api.RouterSettings)
	if !ok {
		return nil, api.RouterSettings{}, fmt.Errorf("%w: %s is %s",
			ErrNotRouter, name, s.Type(),
		)
	}
	return s, st, nil
}

func checkBranch(s *api.Step, st api.RouterSettings, idx int) error {
	if idx < 0 || idx >= len(st.Branches) {
		return fmt.Errorf("%w: %d of %s", ErrInvalidBranch, idx, s.Name)
	}
	return nil
}

func withRouter(
	v *api.FlowVersion, s *api.Step, st api.RouterSettings,
) *api.FlowVersion {
	root, _ := tree.Replace(v.Trigger, s.Name, func(old *api.Step) *api.Step {
		res := old.Copy()
		res.Settings = st
		return res
	})
	return withTrigger(v, root)
}

func cloneConditions(groups [][]api.Condition) [][]api.Condition {
	if groups == nil {
		return nil
	}
	res := make([][]api.Condition, len(groups))
	for i, g := range groups {
		res[i] = slices.Clone(g)
	}
	return res
}
