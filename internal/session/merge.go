package session

import (
	"strings"

	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

// edits maps each debounce key with unacknowledged local content to the
// sequence number of its latest edit
type edits map[string]uint64

// merge combines the version returned by the remote with local content the
// remote has not acknowledged yet. For every such key the local content
// wins, while the remaining content and the tree structure come from remote
func merge(local, remote *api.FlowVersion, pending edits) *api.FlowVersion {
	res := remote
	for key := range pending {
		res = mergeKey(local, res, key)
	}
	return res
}

func mergeKey(local, remote *api.FlowVersion, key string) *api.FlowVersion {
	var op api.Operation
	if key == flowName {
		op = api.ChangeName{DisplayName: local.DisplayName}
	} else if id, ok := strings.CutPrefix(key, notePrefix); ok {
		n, ok := local.Note(api.NoteID(id))
		if !ok {
			return remote
		}
		op = api.UpdateNote{Note: n}
	} else if name, ok := strings.CutPrefix(key, stepPrefix); ok {
		s := tree.Get(local.Trigger, api.StepName(name))
		if s == nil {
			return remote
		}
		if s.IsTrigger() {
			op = api.UpdateTrigger{Trigger: s}
		} else {
			op = api.UpdateAction{Action: s}
		}
	} else {
		return remote
	}
	res, err := operation.Apply(remote, op)
	if err != nil {
		return remote
	}
	return res
}
