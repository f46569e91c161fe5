package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

type envelope struct {
	Type  string      `json:"type"`
	Steps []*api.Step `json:"steps"`
}

// Tag marks clipboard text produced by Serialize
const Tag = "argyll-editor/steps"

var ErrClipboardParse = errors.New("clipboard content not recognized")

// Serialize wraps copied steps in a tagged envelope
func Serialize(steps []*api.Step) (string, error) {
	data, err := json.Marshal(envelope{Type: Tag, Steps: steps})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Deserialize returns the steps held by clipboard text, or nil when the text
// was not produced by Serialize or cannot be decoded
func Deserialize(text string) []*api.Step {
	steps, err := Parse(text)
	if err != nil {
		slog.Debug("Ignoring clipboard content", log.Error(err))
		return nil
	}
	return steps
}

// Parse decodes clipboard text, reporting why foreign or corrupt content
// was rejected
func Parse(text string) ([]*api.Step, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: not JSON", ErrClipboardParse)
	}
	if typ := gjson.Get(text, "type").String(); typ != Tag {
		return nil, fmt.Errorf("%w: type %q", ErrClipboardParse, typ)
	}
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClipboardParse, err)
	}
	for _, s := range env.Steps {
		if s == nil || !s.IsAction() {
			return nil, fmt.Errorf("%w: not an action", ErrClipboardParse)
		}
	}
	return env.Steps, nil
}
