package api

import (
	"encoding/json"
	"fmt"
)

type (
	stepDoc struct {
		Settings    any         `json:"settings,omitempty"`
		SampleData  *SampleData `json:"sampleData,omitempty"`
		Next        *stepDoc    `json:"nextAction,omitempty"`
		Name        StepName    `json:"name"`
		DisplayName string      `json:"displayName"`
		Type        StepType    `json:"type"`
		Valid       bool        `json:"valid"`
		Skip        bool        `json:"skip,omitempty"`
	}

	loopDoc struct {
		FirstAction *stepDoc `json:"firstLoopAction,omitempty"`
		Items       string   `json:"items"`
	}

	routerDoc struct {
		ExecutionType RouterExecutionType `json:"executionType"`
		Branches      []branchDoc         `json:"branches"`
	}

	branchDoc struct {
		Child      *stepDoc      `json:"child,omitempty"`
		Name       string        `json:"branchName"`
		Type       BranchType    `json:"branchType"`
		Conditions [][]Condition `json:"conditions,omitempty"`
	}

	// stepIn accepts every settings variant at once so a step tree decodes
	// in a single pass
	stepIn struct {
		Settings    *settingsIn `json:"settings"`
		SampleData  *SampleData `json:"sampleData"`
		Next        *stepIn     `json:"nextAction"`
		Name        StepName    `json:"name"`
		DisplayName string      `json:"displayName"`
		Type        StepType    `json:"type"`
		Valid       bool        `json:"valid"`
		Skip        bool        `json:"skip"`
	}

	settingsIn struct {
		Input         map[string]any      `json:"input"`
		FirstAction   *stepIn             `json:"firstLoopAction"`
		SourceCode    SourceCode          `json:"sourceCode"`
		PieceName     string              `json:"pieceName"`
		PieceVersion  string              `json:"pieceVersion"`
		ActionName    string              `json:"actionName"`
		TriggerName   string              `json:"triggerName"`
		Items         string              `json:"items"`
		ExecutionType RouterExecutionType `json:"executionType"`
		Branches      []branchIn          `json:"branches"`
	}

	branchIn struct {
		Child      *stepIn       `json:"child"`
		Name       string        `json:"branchName"`
		Type       BranchType    `json:"branchType"`
		Conditions [][]Condition `json:"conditions"`
	}
)

// MarshalJSON encodes the step and everything it owns with its type
// discriminant
func (s *Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeChain(s))
}

// UnmarshalJSON decodes the step, selecting the settings variant by type
func (s *Step) UnmarshalJSON(data []byte) error {
	var in stepIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	res, err := in.chain()
	if err != nil {
		return err
	}
	*s = *res
	return nil
}

func encodeChain(s *Step) *stepDoc {
	var head *stepDoc
	tail := &head
	for ; s != nil; s = s.Next {
		d := &stepDoc{
			Settings:    encodeSettings(s.Settings),
			SampleData:  s.SampleData,
			Name:        s.Name,
			DisplayName: s.DisplayName,
			Type:        s.Type(),
			Valid:       s.Valid,
			Skip:        s.Skip,
		}
		*tail = d
		tail = &d.Next
	}
	return head
}

func encodeSettings(set Settings) any {
	switch st := set.(type) {
	case nil:
		return nil
	case LoopSettings:
		return loopDoc{
			FirstAction: encodeChain(st.FirstAction),
			Items:       st.Items,
		}
	case RouterSettings:
		res := routerDoc{ExecutionType: st.ExecutionType}
		if st.Branches != nil {
			res.Branches = make([]branchDoc, len(st.Branches))
		}
		for i, b := range st.Branches {
			res.Branches[i] = branchDoc{
				Child:      encodeChain(b.Child),
				Name:       b.Name,
				Type:       b.Type,
				Conditions: b.Conditions,
			}
		}
		return res
	default:
		return st
	}
}

func (in *stepIn) chain() (*Step, error) {
	var head *Step
	tail := &head
	for ; in != nil; in = in.Next {
		set, err := in.settings()
		if err != nil {
			return nil, err
		}
		s := &Step{
			Settings:    set,
			SampleData:  in.SampleData,
			Name:        in.Name,
			DisplayName: in.DisplayName,
			Valid:       in.Valid,
			Skip:        in.Skip,
		}
		*tail = s
		tail = &s.Next
	}
	return head, nil
}

func (in *stepIn) settings() (Settings, error) {
	set := in.Settings
	if set == nil {
		set = &settingsIn{}
	}
	switch in.Type {
	case StepTypeEmptyTrigger:
		return EmptyTriggerSettings{}, nil
	case StepTypePieceTrigger:
		return PieceTriggerSettings{
			Input:        set.Input,
			PieceName:    set.PieceName,
			PieceVersion: set.PieceVersion,
			TriggerName:  set.TriggerName,
		}, nil
	case StepTypePiece:
		return PieceSettings{
			Input:        set.Input,
			PieceName:    set.PieceName,
			PieceVersion: set.PieceVersion,
			ActionName:   set.ActionName,
		}, nil
	case StepTypeCode:
		return CodeSettings{
			Input:      set.Input,
			SourceCode: set.SourceCode,
		}, nil
	case StepTypeLoop:
		first, err := set.FirstAction.chain()
		if err != nil {
			return nil, err
		}
		return LoopSettings{FirstAction: first, Items: set.Items}, nil
	case StepTypeRouter:
		return set.router()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStepType, in.Type)
	}
}

func (set *settingsIn) router() (Settings, error) {
	res := RouterSettings{ExecutionType: set.ExecutionType}
	if set.Branches != nil {
		res.Branches = make([]Branch, len(set.Branches))
	}
	for i, b := range set.Branches {
		child, err := b.Child.chain()
		if err != nil {
			return nil, err
		}
		res.Branches[i] = Branch{
			Child:      child,
			Name:       b.Name,
			Type:       b.Type,
			Conditions: b.Conditions,
		}
	}
	return res, nil
}
