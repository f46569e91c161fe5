package api

import "time"

type (
	// VersionState is the lock state of a flow version
	VersionState string

	// FlowVersion is one immutable-by-convention snapshot of a flow's step
	// tree. A new value is produced for every applied operation
	FlowVersion struct {
		UpdatedAt   time.Time    `json:"updatedAt"`
		Trigger     *Step        `json:"trigger"`
		ID          VersionID    `json:"id"`
		FlowID      FlowID       `json:"flowId"`
		DisplayName string       `json:"displayName"`
		State       VersionState `json:"state"`
		Notes       []Note       `json:"notes,omitempty"`
		Valid       bool         `json:"valid"`
	}

	// Note is a cosmetic annotation placed on the editor canvas
	Note struct {
		ID       NoteID   `json:"id"`
		Content  string   `json:"content"`
		Color    string   `json:"color,omitempty"`
		Position Position `json:"position"`
		Size     Size     `json:"size"`
	}

	// Position is a canvas coordinate
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Size is a canvas extent
	Size struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
)

const (
	VersionDraft  VersionState = "DRAFT"
	VersionLocked VersionState = "LOCKED"
)

// DefaultTriggerName is the name given to the trigger of a new flow
const DefaultTriggerName StepName = "trigger"

// NewDraft creates a draft version holding only an empty trigger
func NewDraft(flowID FlowID, id VersionID, displayName string) *FlowVersion {
	return &FlowVersion{
		ID:          id,
		FlowID:      flowID,
		DisplayName: displayName,
		State:       VersionDraft,
		Trigger: &Step{
			Name:        DefaultTriggerName,
			DisplayName: "Select Trigger",
			Settings:    EmptyTriggerSettings{},
		},
	}
}

// IsLocked reports whether the version has been locked or published
func (v *FlowVersion) IsLocked() bool {
	return v.State == VersionLocked
}

// Copy returns a shallow copy of the version
func (v *FlowVersion) Copy() *FlowVersion {
	res := *v
	return &res
}

// Note returns the note with the given ID
func (v *FlowVersion) Note(id NoteID) (Note, bool) {
	for _, n := range v.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return Note{}, false
}
