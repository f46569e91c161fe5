package clipboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
)

func TestSerializeDeserialize(t *testing.T) {
	steps := []*api.Step{
		builder.NewStep("step_1").
			WithPiece("slack", "0.5.0", "send_message").
			WithInput("text", "{{trigger.body}}").
			Build(),
		builder.NewStep("step_2").
			AsLoop("{{step_1.items}}", builder.NewStep("step_3").Build()).
			Build(),
	}

	text, err := clipboard.Serialize(steps)
	assert.NoError(t, err)
	assert.Contains(t, text, clipboard.Tag)

	res := clipboard.Deserialize(text)
	assert.Len(t, res, 2)
	assert.Equal(t, api.StepName("step_1"), res[0].Name)
	inv, ok := res[0].Invocation()
	assert.True(t, ok)
	assert.Equal(t, "slack", inv.PieceName)
	loop, ok := res[1].Settings.(api.LoopSettings)
	assert.True(t, ok)
	assert.Equal(t, api.StepName("step_3"), loop.FirstAction.Name)
}

func TestDeserializeForeign(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "plain text", text: "hello world"},
		{name: "other json", text: `{"type":"something-else","steps":[]}`},
		{name: "untyped json", text: `[1, 2, 3]`},
		{
			name: "bad step type",
			text: `{"type":"argyll-editor/steps",` +
				`"steps":[{"name":"x","type":"NOPE"}]}`,
		},
		{
			name: "trigger",
			text: `{"type":"argyll-editor/steps",` +
				`"steps":[{"name":"x","type":"EMPTY"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, clipboard.Deserialize(tt.text))
			_, err := clipboard.Parse(tt.text)
			assert.ErrorIs(t, err, clipboard.ErrClipboardParse)
		})
	}
}
