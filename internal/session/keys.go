package session

import (
	"github.com/kode4food/argyll/editor/pkg/api"
)

const (
	stepPrefix = "step:"
	notePrefix = "note:"
	flowName   = "flow:name"
)

// KeyFor returns the debounce key of an operation. Content edits of the
// same step, note or flow name share a key so only the latest is sent.
// Structural operations have no key and are sent immediately
func KeyFor(op api.Operation) (string, bool) {
	switch o := op.(type) {
	case api.UpdateAction:
		if o.Action == nil {
			return "", false
		}
		return stepKey(o.Action.Name), true
	case api.UpdateTrigger:
		if o.Trigger == nil {
			return "", false
		}
		return stepKey(o.Trigger.Name), true
	case api.UpdateNote:
		return notePrefix + string(o.Note.ID), true
	case api.ChangeName:
		return flowName, true
	default:
		return "", false
	}
}

func stepKey(name api.StepName) string {
	return stepPrefix + string(name)
}
