package api

type (
	// FlowID is a unique identifier for a flow
	FlowID string

	// VersionID is a unique identifier for a flow version
	VersionID string

	// StepName identifies a step. Names are unique within one flow version
	StepName string

	// RunID is a unique identifier for a flow execution
	RunID string

	// NoteID is a unique identifier for a canvas note
	NoteID string
)
