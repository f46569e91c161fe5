package api_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/argyll/editor/pkg/api"
)

func pieceStep(name api.StepName) *api.Step {
	return &api.Step{
		Name:        name,
		DisplayName: "Send",
		Valid:       true,
		Settings: api.PieceSettings{
			PieceName:    "http",
			PieceVersion: "0.1.0",
			ActionName:   "send_request",
		},
	}
}

func TestStepJSONFormat(t *testing.T) {
	loop := &api.Step{
		Name:        "step_1",
		DisplayName: "Each",
		Settings: api.LoopSettings{
			FirstAction: pieceStep("step_2"),
			Items:       "{{trigger.items}}",
		},
		Next: &api.Step{
			Name: "step_3",
			Skip: true,
			Settings: api.RouterSettings{
				ExecutionType: api.ExecuteFirstMatch,
				Branches: []api.Branch{
					{
						Name:  "Otherwise",
						Type:  api.BranchFallback,
						Child: pieceStep("step_4"),
					},
				},
			},
		},
	}

	data, err := json.Marshal(loop)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "step_1",
		"displayName": "Each",
		"type": "LOOP_ON_ITEMS",
		"valid": false,
		"settings": {
			"items": "{{trigger.items}}",
			"firstLoopAction": {
				"name": "step_2",
				"displayName": "Send",
				"type": "PIECE",
				"valid": true,
				"settings": {
					"pieceName": "http",
					"pieceVersion": "0.1.0",
					"actionName": "send_request"
				}
			}
		},
		"nextAction": {
			"name": "step_3",
			"displayName": "",
			"type": "ROUTER",
			"valid": false,
			"skip": true,
			"settings": {
				"executionType": "EXECUTE_FIRST_MATCH",
				"branches": [{
					"branchName": "Otherwise",
					"branchType": "FALLBACK",
					"child": {
						"name": "step_4",
						"displayName": "Send",
						"type": "PIECE",
						"valid": true,
						"settings": {
							"pieceName": "http",
							"pieceVersion": "0.1.0",
							"actionName": "send_request"
						}
					}
				}]
			}
		}
	}`, string(data))

	var res api.Step
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, loop, &res)
}

func TestStepJSONTriggerAndCode(t *testing.T) {
	trigger := &api.Step{
		Name:     "trigger",
		Settings: api.EmptyTriggerSettings{},
		Next: &api.Step{
			Name: "step_1",
			Settings: api.CodeSettings{
				Input: map[string]any{"a": "b"},
				SourceCode: api.SourceCode{
					Code:        "export const code = () => 1",
					PackageJSON: "{}",
				},
			},
			SampleData: &api.SampleData{Output: "ok"},
		},
	}
	data, err := json.Marshal(trigger)
	require.NoError(t, err)

	var res api.Step
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, trigger, &res)
}

func TestStepJSONLongChain(t *testing.T) {
	head := pieceStep("step_0")
	cur := head
	for i := 1; i < 2000; i++ {
		cur.Next = pieceStep(api.StepName(fmt.Sprintf("step_%d", i)))
		cur = cur.Next
	}

	data, err := json.Marshal(head)
	require.NoError(t, err)

	var res api.Step
	require.NoError(t, json.Unmarshal(data, &res))
	count := 0
	last := &res
	for s := &res; s != nil; s = s.Next {
		count++
		last = s
	}
	assert.Equal(t, 2000, count)
	assert.Equal(t, api.StepName("step_1999"), last.Name)
}

func TestStepJSONInvalidType(t *testing.T) {
	var res api.Step
	err := json.Unmarshal([]byte(`{"name":"x","type":"TELEPORT"}`), &res)
	assert.ErrorIs(t, err, api.ErrInvalidStepType)

	err = json.Unmarshal([]byte(`{
		"name": "x",
		"type": "PIECE",
		"nextAction": {"name": "y", "type": "TELEPORT"}
	}`), &res)
	assert.ErrorIs(t, err, api.ErrInvalidStepType)
}
