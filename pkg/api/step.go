package api

import (
	"errors"

	"github.com/kode4food/argyll/editor/pkg/util"
)

type (
	// StepType identifies the variant of a Step
	StepType string

	// Step is one node of the flow tree. The Settings variant determines the
	// step's type and which child chains it owns
	Step struct {
		Settings    Settings
		SampleData  *SampleData
		Next        *Step
		Name        StepName
		DisplayName string
		Valid       bool
		Skip        bool
	}

	// Settings is the closed set of per-type step payloads
	Settings interface {
		StepType() StepType
		isSettings()
	}

	// EmptyTriggerSettings is the payload of a trigger that is not yet
	// configured
	EmptyTriggerSettings struct{}

	// PieceTriggerSettings configures a connector-backed trigger
	PieceTriggerSettings struct {
		Input        map[string]any `json:"input,omitempty"`
		PieceName    string         `json:"pieceName"`
		PieceVersion string         `json:"pieceVersion"`
		TriggerName  string         `json:"triggerName,omitempty"`
	}

	// PieceSettings configures a connector-backed action
	PieceSettings struct {
		Input        map[string]any `json:"input,omitempty"`
		PieceName    string         `json:"pieceName"`
		PieceVersion string         `json:"pieceVersion"`
		ActionName   string         `json:"actionName,omitempty"`
	}

	// CodeSettings configures an inline code action
	CodeSettings struct {
		Input      map[string]any `json:"input,omitempty"`
		SourceCode SourceCode     `json:"sourceCode"`
	}

	// SourceCode holds the code of a code action and its package manifest
	SourceCode struct {
		Code        string `json:"code"`
		PackageJSON string `json:"packageJson"`
	}

	// LoopSettings configures a loop. The loop owns the chain starting at
	// FirstAction, executed once per item
	LoopSettings struct {
		FirstAction *Step  `json:"firstLoopAction,omitempty"`
		Items       string `json:"items"`
	}

	// RouterSettings configures a router. Each branch owns its own chain
	RouterSettings struct {
		ExecutionType RouterExecutionType `json:"executionType"`
		Branches      []Branch            `json:"branches"`
	}

	// RouterExecutionType selects how many matching branches a router runs
	RouterExecutionType string

	// BranchType distinguishes conditional branches from the fallback
	BranchType string

	// Branch is one named alternative chain of a router
	Branch struct {
		Child      *Step         `json:"child,omitempty"`
		Name       string        `json:"branchName"`
		Type       BranchType    `json:"branchType"`
		Conditions [][]Condition `json:"conditions,omitempty"`
	}

	// Condition is one comparison of a branch condition group
	Condition struct {
		FirstValue    string `json:"firstValue"`
		Operator      string `json:"operator"`
		SecondValue   string `json:"secondValue,omitempty"`
		CaseSensitive bool   `json:"caseSensitive,omitempty"`
	}

	// SampleData is the last known example input and output of a step. It is
	// only used for previews and never affects execution
	SampleData struct {
		Input  any `json:"input,omitempty"`
		Output any `json:"output,omitempty"`
	}

	// Invocation is the connector execution tuple a piece-backed step
	// resolves to
	Invocation struct {
		Input        map[string]any `json:"input"`
		PieceName    string         `json:"pieceName"`
		PieceVersion string         `json:"pieceVersion"`
		Name         string         `json:"name"`
	}
)

const (
	StepTypeEmptyTrigger StepType = "EMPTY"
	StepTypePieceTrigger StepType = "PIECE_TRIGGER"
	StepTypePiece        StepType = "PIECE"
	StepTypeCode         StepType = "CODE"
	StepTypeLoop         StepType = "LOOP_ON_ITEMS"
	StepTypeRouter       StepType = "ROUTER"

	ExecuteFirstMatch RouterExecutionType = "EXECUTE_FIRST_MATCH"
	ExecuteAllMatch   RouterExecutionType = "EXECUTE_ALL_MATCH"

	BranchCondition BranchType = "CONDITION"
	BranchFallback  BranchType = "FALLBACK"
)

var ErrInvalidStepType = errors.New("invalid step type")

var (
	triggerTypes = util.SetOf(
		StepTypeEmptyTrigger,
		StepTypePieceTrigger,
	)

	actionTypes = util.SetOf(
		StepTypePiece,
		StepTypeCode,
		StepTypeLoop,
		StepTypeRouter,
	)
)

// IsTrigger reports whether the step type is a trigger variant
func IsTrigger(t StepType) bool {
	return triggerTypes.Contains(t)
}

// IsAction reports whether the step type is an action variant
func IsAction(t StepType) bool {
	return actionTypes.Contains(t)
}

// Type returns the step type implied by the step's settings
func (s *Step) Type() StepType {
	if s == nil || s.Settings == nil {
		return ""
	}
	return s.Settings.StepType()
}

// IsTrigger reports whether the step is a trigger
func (s *Step) IsTrigger() bool {
	return IsTrigger(s.Type())
}

// IsAction reports whether the step is an action
func (s *Step) IsAction() bool {
	return IsAction(s.Type())
}

// Copy returns a shallow copy of the step
func (s *Step) Copy() *Step {
	res := *s
	return &res
}

// Invocation returns the connector tuple for piece-backed steps
func (s *Step) Invocation() (Invocation, bool) {
	switch st := s.Settings.(type) {
	case PieceSettings:
		return Invocation{
			PieceName:    st.PieceName,
			PieceVersion: st.PieceVersion,
			Name:         st.ActionName,
			Input:        st.Input,
		}, true
	case PieceTriggerSettings:
		return Invocation{
			PieceName:    st.PieceName,
			PieceVersion: st.PieceVersion,
			Name:         st.TriggerName,
			Input:        st.Input,
		}, true
	default:
		return Invocation{}, false
	}
}

func (EmptyTriggerSettings) StepType() StepType { return StepTypeEmptyTrigger }
func (PieceTriggerSettings) StepType() StepType { return StepTypePieceTrigger }
func (PieceSettings) StepType() StepType        { return StepTypePiece }
func (CodeSettings) StepType() StepType         { return StepTypeCode }
func (LoopSettings) StepType() StepType         { return StepTypeLoop }
func (RouterSettings) StepType() StepType       { return StepTypeRouter }

func (EmptyTriggerSettings) isSettings() {}
func (PieceTriggerSettings) isSettings() {}
func (PieceSettings) isSettings()        {}
func (CodeSettings) isSettings()         {}
func (LoopSettings) isSettings()         {}
func (RouterSettings) isSettings()       {}
