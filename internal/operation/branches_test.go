package operation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

func routerOf(v *api.FlowVersion, name api.StepName) api.RouterSettings {
	return tree.Get(v.Trigger, name).Settings.(api.RouterSettings)
}

func branchNames(st api.RouterSettings) []string {
	var res []string
	for _, b := range st.Branches {
		res = append(res, b.Name)
	}
	return res
}

func TestAddBranch(t *testing.T) {
	v := sampleVersion()
	res := mustApply(t, v, api.AddBranch{
		StepName:    "step_3",
		BranchIndex: 2,
		BranchName:  "Branch 3",
	})

	st := routerOf(res, "step_3")
	assert.Equal(t,
		[]string{"Branch 1", "Branch 2", "Branch 3"}, branchNames(st),
	)
	orig := routerOf(v, "step_3")
	assert.Same(t, orig.Branches[0].Child, st.Branches[0].Child)
	assert.Nil(t, st.Branches[1].Child)
	assert.Nil(t, st.Branches[2].Child)
	assert.Equal(t, api.BranchCondition, st.Branches[2].Type)
	assert.Len(t, orig.Branches, 2)
}

func TestAddBranchShifts(t *testing.T) {
	res := mustApply(t, sampleVersion(), api.AddBranch{
		StepName:    "step_3",
		BranchIndex: 0,
	})
	st := routerOf(res, "step_3")
	assert.Equal(t,
		[]string{"Branch 3", "Branch 1", "Branch 2"}, branchNames(st),
	)
	assert.Equal(t, []api.StepName{"step_4"},
		chainNames(st.Branches[1].Child),
	)
}

func TestAddBranchErrors(t *testing.T) {
	v := sampleVersion()
	_, err := operation.Apply(v, api.AddBranch{StepName: "step_1"})
	assert.ErrorIs(t, err, operation.ErrNotRouter)

	_, err = operation.Apply(v, api.AddBranch{
		StepName: "step_3", BranchIndex: 3,
	})
	assert.ErrorIs(t, err, operation.ErrInvalidBranch)

	_, err = operation.Apply(v, api.AddBranch{StepName: "missing"})
	assert.ErrorIs(t, err, tree.ErrStepNotFound)
}

func TestDeleteBranch(t *testing.T) {
	res := mustApply(t, sampleVersion(), api.DeleteBranch{
		StepName:    "step_3",
		BranchIndex: 0,
	})
	st := routerOf(res, "step_3")
	assert.Equal(t, []string{"Branch 2"}, branchNames(st))
	assert.Nil(t, tree.Get(res.Trigger, "step_4"))

	_, err := operation.Apply(sampleVersion(), api.DeleteBranch{
		StepName:    "step_3",
		BranchIndex: 2,
	})
	assert.ErrorIs(t, err, operation.ErrInvalidBranch)
}

func TestDuplicateBranch(t *testing.T) {
	res := mustApply(t, sampleVersion(), api.DuplicateBranch{
		StepName:    "step_3",
		BranchIndex: 0,
	})
	st := routerOf(res, "step_3")
	assert.Equal(t,
		[]string{"Branch 1", "Branch 1 Copy", "Branch 2"}, branchNames(st),
	)
	assert.Equal(t, []api.StepName{"step_6"},
		chainNames(st.Branches[1].Child),
	)
	assert.Equal(t, []api.StepName{"step_4"},
		chainNames(st.Branches[0].Child),
	)
}
