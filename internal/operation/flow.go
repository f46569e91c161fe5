package operation

import (
	"fmt"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

func changeName(v *api.FlowVersion, o api.ChangeName) (*api.FlowVersion, error) {
	res := v.Copy()
	res.DisplayName = o.DisplayName
	return res, nil
}

// importFlow replaces the whole tree. Unnamed steps are named, and the
// imported tree must satisfy the same uniqueness rules as any other edit
func importFlow(v *api.FlowVersion, o api.ImportFlow) (*api.FlowVersion, error) {
	if o.Trigger == nil {
		return nil, ErrMissingStep
	}
	if !o.Trigger.IsTrigger() {
		return nil, fmt.Errorf("%w: %s is %s",
			ErrCategoryMismatch, o.Trigger.Name, o.Trigger.Type(),
		)
	}
	trigger := o.Trigger.Copy()
	if trigger.Name == "" {
		trigger.Name = api.DefaultTriggerName
	}
	next, err := fillNames(trigger.Next, util.SetOf(trigger.Name))
	if err != nil {
		return nil, err
	}
	trigger.Next = next
	res := withTrigger(v, trigger)
	if o.DisplayName != "" {
		res.DisplayName = o.DisplayName
	}
	return res, nil
}

func lockFlow(v *api.FlowVersion) (*api.FlowVersion, error) {
	res := v.Copy()
	res.State = api.VersionLocked
	return res, nil
}
