package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// OperationType identifies a kind of structural edit
	OperationType string

	// Location addresses a step position relative to a parent step
	Location string

	// Placement selects an absolute position within the addressed chain
	Placement string

	// Operation is the closed set of edits that can be applied to a flow
	// version
	Operation interface {
		OperationType() OperationType
		isOperation()
	}

	// OperationMessage carries an Operation over the wire using a type
	// discriminant
	OperationMessage struct {
		Operation Operation
	}

	// AddAction inserts Action (and any chain hanging from it) at the
	// location addressed by ParentStep, Location and BranchIndex
	AddAction struct {
		Action      *Step     `json:"action"`
		ParentStep  StepName  `json:"parentStep"`
		Location    Location  `json:"stepLocationRelativeToParent,omitempty"`
		Placement   Placement `json:"placement,omitempty"`
		BranchIndex int       `json:"branchIndex,omitempty"`
	}

	// UpdateAction replaces the content of the action named by Action.Name
	UpdateAction struct {
		Action *Step `json:"action"`
	}

	// UpdateTrigger replaces the content of the flow's trigger
	UpdateTrigger struct {
		Trigger *Step `json:"trigger"`
	}

	// DeleteAction removes the named actions and their owned subtrees
	DeleteAction struct {
		Names []StepName `json:"names"`
	}

	// DuplicateAction clones a step subtree right after the original
	DuplicateAction struct {
		StepName StepName `json:"stepName"`
	}

	// SetSkipAction toggles the skip flag of the named actions
	SetSkipAction struct {
		Names []StepName `json:"names"`
		Skip  bool       `json:"skip"`
	}

	// MoveAction detaches a step and re-inserts it at a new location
	MoveAction struct {
		Name          StepName `json:"name"`
		NewParentStep StepName `json:"newParentStep"`
		Location      Location `json:"stepLocationRelativeToNewParent,omitempty"`
		BranchIndex   int      `json:"branchIndex,omitempty"`
	}

	// AddBranch inserts an empty branch into a router
	AddBranch struct {
		StepName    StepName `json:"stepName"`
		BranchName  string   `json:"branchName"`
		BranchIndex int      `json:"branchIndex"`
	}

	// DeleteBranch removes a router branch and its chain
	DeleteBranch struct {
		StepName    StepName `json:"stepName"`
		BranchIndex int      `json:"branchIndex"`
	}

	// DuplicateBranch clones a router branch right after the original
	DuplicateBranch struct {
		StepName    StepName `json:"stepName"`
		BranchIndex int      `json:"branchIndex"`
	}

	// SaveSampleData attaches preview input and output to a step
	SaveSampleData struct {
		Input    any      `json:"input,omitempty"`
		Output   any      `json:"output,omitempty"`
		StepName StepName `json:"stepName"`
	}

	// AddNote places a new note on the canvas
	AddNote struct {
		Note Note `json:"note"`
	}

	// UpdateNote replaces an existing note
	UpdateNote struct {
		Note Note `json:"note"`
	}

	// DeleteNote removes a note
	DeleteNote struct {
		ID NoteID `json:"id"`
	}

	// ChangeName renames the flow version
	ChangeName struct {
		DisplayName string `json:"displayName"`
	}

	// ImportFlow replaces the whole step tree
	ImportFlow struct {
		Trigger     *Step  `json:"trigger"`
		DisplayName string `json:"displayName"`
	}

	// LockFlow locks the version against further structural edits
	LockFlow struct{}

	operationJSON struct {
		Type    OperationType   `json:"type"`
		Request json.RawMessage `json:"request"`
	}
)

const (
	OpAddAction       OperationType = "ADD_ACTION"
	OpUpdateAction    OperationType = "UPDATE_ACTION"
	OpUpdateTrigger   OperationType = "UPDATE_TRIGGER"
	OpDeleteAction    OperationType = "DELETE_ACTION"
	OpDuplicateAction OperationType = "DUPLICATE_ACTION"
	OpSetSkipAction   OperationType = "SET_SKIP_ACTION"
	OpMoveAction      OperationType = "MOVE_ACTION"
	OpAddBranch       OperationType = "ADD_BRANCH"
	OpDeleteBranch    OperationType = "DELETE_BRANCH"
	OpDuplicateBranch OperationType = "DUPLICATE_BRANCH"
	OpSaveSampleData  OperationType = "SAVE_SAMPLE_DATA"
	OpAddNote         OperationType = "ADD_NOTE"
	OpUpdateNote      OperationType = "UPDATE_NOTE"
	OpDeleteNote      OperationType = "DELETE_NOTE"
	OpChangeName      OperationType = "CHANGE_NAME"
	OpImportFlow      OperationType = "IMPORT_FLOW"
	OpLockFlow        OperationType = "LOCK_FLOW"
)

const (
	LocationAfter        Location = "AFTER"
	LocationBefore       Location = "BEFORE"
	LocationInsideLoop   Location = "INSIDE_LOOP"
	LocationInsideBranch Location = "INSIDE_BRANCH"

	PlacementTop    Placement = "TOP"
	PlacementBottom Placement = "BOTTOM"
)

var (
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrOperationDecode      = errors.New("failed to decode operation")
	ErrOperationMissing     = errors.New("operation missing")
)

// MarshalJSON encodes the wrapped operation with its type discriminant
func (m OperationMessage) MarshalJSON() ([]byte, error) {
	if m.Operation == nil {
		return nil, ErrOperationMissing
	}
	req, err := json.Marshal(m.Operation)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationJSON{
		Type:    m.Operation.OperationType(),
		Request: req,
	})
}

// UnmarshalJSON decodes an operation, selecting its request by type
func (m *OperationMessage) UnmarshalJSON(data []byte) error {
	var raw operationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	op, err := decodeOperation(raw.Type, raw.Request)
	if err != nil {
		return err
	}
	m.Operation = op
	return nil
}

func decodeOperation(typ OperationType, raw json.RawMessage) (Operation, error) {
	switch typ {
	case OpAddAction:
		return decodeOp[AddAction](typ, raw)
	case OpUpdateAction:
		return decodeOp[UpdateAction](typ, raw)
	case OpUpdateTrigger:
		return decodeOp[UpdateTrigger](typ, raw)
	case OpDeleteAction:
		return decodeOp[DeleteAction](typ, raw)
	case OpDuplicateAction:
		return decodeOp[DuplicateAction](typ, raw)
	case OpSetSkipAction:
		return decodeOp[SetSkipAction](typ, raw)
	case OpMoveAction:
		return decodeOp[MoveAction](typ, raw)
	case OpAddBranch:
		return decodeOp[AddBranch](typ, raw)
	case OpDeleteBranch:
		return decodeOp[DeleteBranch](typ, raw)
	case OpDuplicateBranch:
		return decodeOp[DuplicateBranch](typ, raw)
	case OpSaveSampleData:
		return decodeOp[SaveSampleData](typ, raw)
	case OpAddNote:
		return decodeOp[AddNote](typ, raw)
	case OpUpdateNote:
		return decodeOp[UpdateNote](typ, raw)
	case OpDeleteNote:
		return decodeOp[DeleteNote](typ, raw)
	case OpChangeName:
		return decodeOp[ChangeName](typ, raw)
	case OpImportFlow:
		return decodeOp[ImportFlow](typ, raw)
	case OpLockFlow:
		return LockFlow{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperationType, typ)
	}
}

func decodeOp[T Operation](typ OperationType, raw json.RawMessage) (Operation, error) {
	var res T
	if len(raw) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOperationDecode, typ, err)
	}
	return res, nil
}

func (AddAction) OperationType() OperationType       { return OpAddAction }
func (UpdateAction) OperationType() OperationType    { return OpUpdateAction }
func (UpdateTrigger) OperationType() OperationType   { return OpUpdateTrigger }
func (DeleteAction) OperationType() OperationType    { return OpDeleteAction }
func (DuplicateAction) OperationType() OperationType { return OpDuplicateAction }
func (SetSkipAction) OperationType() OperationType   { return OpSetSkipAction }
func (MoveAction) OperationType() OperationType      { return OpMoveAction }
func (AddBranch) OperationType() OperationType       { return OpAddBranch }
func (DeleteBranch) OperationType() OperationType    { return OpDeleteBranch }
func (DuplicateBranch) OperationType() OperationType { return OpDuplicateBranch }
func (SaveSampleData) OperationType() OperationType  { return OpSaveSampleData }
func (AddNote) OperationType() OperationType         { return OpAddNote }
func (UpdateNote) OperationType() OperationType      { return OpUpdateNote }
func (DeleteNote) OperationType() OperationType      { return OpDeleteNote }
func (ChangeName) OperationType() OperationType      { return OpChangeName }
func (ImportFlow) OperationType() OperationType      { return OpImportFlow }
func (LockFlow) OperationType() OperationType        { return OpLockFlow }

func (AddAction) isOperation()       {}
func (UpdateAction) isOperation()    {}
func (UpdateTrigger) isOperation()   {}
func (DeleteAction) isOperation()    {}
func (DuplicateAction) isOperation() {}
func (SetSkipAction) isOperation()   {}
func (MoveAction) isOperation()      {}
func (AddBranch) isOperation()       {}
func (DeleteBranch) isOperation()    {}
func (DuplicateBranch) isOperation() {}
func (SaveSampleData) isOperation()  {}
func (AddNote) isOperation()         {}
func (UpdateNote) isOperation()      {}
func (DeleteNote) isOperation()      {}
func (ChangeName) isOperation()      {}
func (ImportFlow) isOperation()      {}
func (LockFlow) isOperation()        {}
