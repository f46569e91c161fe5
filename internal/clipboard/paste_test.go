package clipboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
)

func chainNames(head *api.Step) []api.StepName {
	var res []api.StepName
	for _, s := range tree.Chain(head) {
		res = append(res, s.Name)
	}
	return res
}

func TestCopySelection(t *testing.T) {
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").Build(),
		builder.NewStep("step_2").AsLoop("{{x}}",
			builder.NewStep("step_3").Build(),
		).Build(),
		builder.NewStep("step_4").Build(),
	).Build()

	res := clipboard.CopySelection(v, []api.StepName{
		"step_4", "step_3", "step_2", "trigger", "missing",
	})
	assert.Len(t, res, 2)
	assert.Equal(t, api.StepName("step_2"), res[0].Name)
	assert.Equal(t, api.StepName("step_4"), res[1].Name)
	assert.Nil(t, res[0].Next)
	assert.Equal(t, api.StepName("step_3"),
		res[0].Settings.(api.LoopSettings).FirstAction.Name,
	)
	assert.NotNil(t, tree.Get(v.Trigger, "step_2").Next)
}

func TestPasteInsideEmptyLoop(t *testing.T) {
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("actionA").Build(),
		builder.NewStep("L").AsLoop("{{trigger.items}}", nil).Build(),
	).Build()

	text, err := clipboard.Serialize(
		clipboard.CopySelection(v, []api.StepName{"actionA"}),
	)
	assert.NoError(t, err)

	ops := clipboard.BuildPasteOperations(
		clipboard.Deserialize(text), v, clipboard.Location{
			ParentStep: "L",
			Position:   api.LocationInsideLoop,
		},
	)
	assert.Len(t, ops, 1)

	res, err := clipboard.ApplyAll(v, ops)
	assert.NoError(t, err)

	body := tree.Get(res.Trigger, "L").Settings.(api.LoopSettings).FirstAction
	assert.Len(t, tree.Chain(body), 1)
	assert.NotEqual(t, api.StepName("actionA"), body.Name)
	assert.False(t, tree.Names(v.Trigger).Contains(body.Name))
	assert.Equal(t, tree.Get(v.Trigger, "actionA").Settings, body.Settings)
}

func TestPasteAcrossBranches(t *testing.T) {
	loop := builder.NewStep("step_2").AsLoop("{{step_1.items}}",
		builder.NewStep("step_3").
			WithInput("item", "{{step_2.item}}").
			Build(),
	).Build()
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").
			AsRouter(api.ExecuteFirstMatch).
			WithBranch("A", loop).
			WithBranch("B", nil).
			Build(),
	).Build()
	before := tree.Names(v.Trigger)

	ops := clipboard.BuildPasteOperations(
		clipboard.CopySelection(v, []api.StepName{"step_2"}),
		v, clipboard.Location{
			ParentStep:  "step_1",
			Position:    api.LocationInsideBranch,
			BranchIndex: 1,
		},
	)
	res, err := clipboard.ApplyAll(v, ops)
	assert.NoError(t, err)

	st := tree.Get(res.Trigger, "step_1").Settings.(api.RouterSettings)
	pasted := st.Branches[1].Child
	assert.NotNil(t, pasted)
	assert.False(t, before.Contains(pasted.Name))

	inner := pasted.Settings.(api.LoopSettings).FirstAction
	assert.NotNil(t, inner)
	assert.False(t, before.Contains(inner.Name))
	assert.Equal(t,
		"{{"+string(pasted.Name)+".item}}",
		inner.Settings.(api.PieceSettings).Input["item"],
	)

	assert.Equal(t, []api.StepName{"step_2"},
		chainNames(st.Branches[0].Child),
	)
}

func TestPasteIntoRouterWithoutBranches(t *testing.T) {
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").AsRouter(api.ExecuteFirstMatch).Build(),
		builder.NewStep("step_2").Build(),
	).Build()

	ops := clipboard.BuildPasteOperations(
		clipboard.CopySelection(v, []api.StepName{"step_2"}),
		v, clipboard.Location{
			ParentStep: "step_1",
			Position:   api.LocationInsideBranch,
		},
	)
	assert.Len(t, ops, 2)
	assert.Equal(t, api.AddBranch{
		StepName:    "step_1",
		BranchIndex: 0,
		BranchName:  "Branch 1",
	}, ops[0])

	res, err := clipboard.ApplyAll(v, ops)
	assert.NoError(t, err)
	st := tree.Get(res.Trigger, "step_1").Settings.(api.RouterSettings)
	assert.Len(t, st.Branches, 1)
	assert.Equal(t, []api.StepName{"step_3"},
		chainNames(st.Branches[0].Child),
	)
}

func TestPasteMultipleAfterLastStep(t *testing.T) {
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").Build(),
		builder.NewStep("step_2").Build(),
	).Build()

	ops := clipboard.BuildPasteOperations(
		clipboard.CopySelection(v, []api.StepName{"step_1", "step_2"}),
		v, clipboard.AfterLastStep(v),
	)
	assert.Len(t, ops, 2)

	res, err := clipboard.ApplyAll(v, ops)
	assert.NoError(t, err)
	assert.Equal(t, []api.StepName{
		"trigger", "step_1", "step_2", "step_3", "step_4",
	}, chainNames(res.Trigger))
}

func TestPasteNothing(t *testing.T) {
	v := builder.NewFlow("flow-1").Build()
	assert.Empty(t, clipboard.BuildPasteOperations(
		clipboard.Deserialize("not ours"), v, clipboard.AfterLastStep(v),
	))
}
