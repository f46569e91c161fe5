package builder

import (
	"slices"
	"time"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// Flow assembles an api.FlowVersion
type Flow struct {
	trigger     *api.Step
	updatedAt   time.Time
	id          api.VersionID
	flowID      api.FlowID
	displayName string
	state       api.VersionState
	notes       []api.Note
}

// NewFlow creates a draft flow version builder with an empty trigger
func NewFlow(flowID api.FlowID) *Flow {
	return &Flow{
		trigger: NewTrigger(api.DefaultTriggerName).
			WithDisplayName("Select Trigger").
			Build(),
		id:          NewVersionID(),
		flowID:      flowID,
		displayName: "Untitled",
		state:       api.VersionDraft,
	}
}

func (f *Flow) WithID(id api.VersionID) *Flow {
	res := *f
	res.id = id
	return &res
}

func (f *Flow) WithDisplayName(name string) *Flow {
	res := *f
	res.displayName = name
	return &res
}

// WithTrigger sets the trigger and, through its Next link, the whole tree
func (f *Flow) WithTrigger(trigger *api.Step) *Flow {
	res := *f
	res.trigger = trigger
	return &res
}

// WithActions replaces the chain following the trigger
func (f *Flow) WithActions(steps ...*api.Step) *Flow {
	trigger := f.trigger.Copy()
	trigger.Next = Chain(steps...)
	return f.WithTrigger(trigger)
}

func (f *Flow) WithNote(note api.Note) *Flow {
	res := *f
	res.notes = append(slices.Clone(f.notes), note)
	return &res
}

func (f *Flow) WithUpdatedAt(at time.Time) *Flow {
	res := *f
	res.updatedAt = at
	return &res
}

func (f *Flow) Locked() *Flow {
	res := *f
	res.state = api.VersionLocked
	return &res
}

func (f *Flow) Build() *api.FlowVersion {
	return &api.FlowVersion{
		UpdatedAt:   f.updatedAt,
		Trigger:     f.trigger,
		ID:          f.id,
		FlowID:      f.flowID,
		DisplayName: f.displayName,
		State:       f.state,
		Notes:       slices.Clone(f.notes),
		Valid:       allValid(f.trigger),
	}
}

func allValid(s *api.Step) bool {
	seen := util.Set[api.StepName]{}
	var walk func(*api.Step) bool
	walk = func(s *api.Step) bool {
		for ; s != nil; s = s.Next {
			if !s.Valid || seen.Contains(s.Name) {
				return false
			}
			seen.Add(s.Name)
			switch st := s.Settings.(type) {
			case api.LoopSettings:
				if !walk(st.FirstAction) {
					return false
				}
			case api.RouterSettings:
				for _, b := range st.Branches {
					if !walk(b.Child) {
						return false
					}
				}
			}
		}
		return true
	}
	return walk(s)
}
