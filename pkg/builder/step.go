package builder

import (
	"maps"
	"slices"

	"github.com/kode4food/argyll/editor/pkg/api"
)

// Step assembles a single api.Step
type Step struct {
	settings    api.Settings
	sampleData  *api.SampleData
	next        *api.Step
	name        api.StepName
	displayName string
	invalid     bool
	skip        bool
}

// NewStep creates a step builder for an unconfigured piece action
func NewStep(name api.StepName) *Step {
	return &Step{
		name:        name,
		displayName: string(name),
		settings:    api.PieceSettings{},
	}
}

// NewTrigger creates a step builder for an empty trigger
func NewTrigger(name api.StepName) *Step {
	return &Step{
		name:        name,
		displayName: string(name),
		settings:    api.EmptyTriggerSettings{},
	}
}

func (s *Step) WithDisplayName(name string) *Step {
	res := *s
	res.displayName = name
	return &res
}

// WithPiece configures the step as a piece action, or as a piece trigger
// when the builder was created by NewTrigger
func (s *Step) WithPiece(piece, version, name string) *Step {
	res := *s
	switch s.settings.(type) {
	case api.EmptyTriggerSettings, api.PieceTriggerSettings:
		res.settings = api.PieceTriggerSettings{
			PieceName:    piece,
			PieceVersion: version,
			TriggerName:  name,
			Input:        s.input(),
		}
	default:
		res.settings = api.PieceSettings{
			PieceName:    piece,
			PieceVersion: version,
			ActionName:   name,
			Input:        s.input(),
		}
	}
	return &res
}

func (s *Step) WithCode(code string) *Step {
	res := *s
	res.settings = api.CodeSettings{
		SourceCode: api.SourceCode{Code: code, PackageJSON: "{}"},
		Input:      s.input(),
	}
	return &res
}

// WithInput sets one input value on piece, code and piece trigger steps
func (s *Step) WithInput(key string, value any) *Step {
	in := maps.Clone(s.input())
	if in == nil {
		in = map[string]any{}
	}
	in[key] = value
	res := *s
	switch st := s.settings.(type) {
	case api.PieceSettings:
		st.Input = in
		res.settings = st
	case api.PieceTriggerSettings:
		st.Input = in
		res.settings = st
	case api.CodeSettings:
		st.Input = in
		res.settings = st
	}
	return &res
}

// AsLoop configures the step as a loop over items with the given body
func (s *Step) AsLoop(items string, body *api.Step) *Step {
	res := *s
	res.settings = api.LoopSettings{Items: items, FirstAction: body}
	return &res
}

// AsRouter configures the step as a router with no branches
func (s *Step) AsRouter(exec api.RouterExecutionType) *Step {
	res := *s
	res.settings = api.RouterSettings{ExecutionType: exec}
	return &res
}

// WithBranch appends a conditional branch to a router step
func (s *Step) WithBranch(name string, body *api.Step) *Step {
	return s.withBranch(api.Branch{
		Name:  name,
		Type:  api.BranchCondition,
		Child: body,
	})
}

// WithFallback appends the fallback branch to a router step
func (s *Step) WithFallback(body *api.Step) *Step {
	return s.withBranch(api.Branch{
		Name:  "Otherwise",
		Type:  api.BranchFallback,
		Child: body,
	})
}

func (s *Step) withBranch(b api.Branch) *Step {
	st, ok := s.settings.(api.RouterSettings)
	if !ok {
		st = api.RouterSettings{ExecutionType: api.ExecuteFirstMatch}
	}
	st.Branches = append(slices.Clone(st.Branches), b)
	res := *s
	res.settings = st
	return &res
}

func (s *Step) WithSampleData(input, output any) *Step {
	res := *s
	res.sampleData = &api.SampleData{Input: input, Output: output}
	return &res
}

// Then links the given chain after the step
func (s *Step) Then(next *api.Step) *Step {
	res := *s
	res.next = next
	return &res
}

func (s *Step) Invalid() *Step {
	res := *s
	res.invalid = true
	return &res
}

func (s *Step) Skipped() *Step {
	res := *s
	res.skip = true
	return &res
}

func (s *Step) Build() *api.Step {
	return &api.Step{
		Settings:    s.settings,
		SampleData:  s.sampleData,
		Next:        s.next,
		Name:        s.name,
		DisplayName: s.displayName,
		Valid:       !s.invalid,
		Skip:        s.skip,
	}
}

func (s *Step) input() map[string]any {
	switch st := s.settings.(type) {
	case api.PieceSettings:
		return st.Input
	case api.PieceTriggerSettings:
		return st.Input
	case api.CodeSettings:
		return st.Input
	default:
		return nil
	}
}

// Chain links the given steps by Next in order and returns the head. The
// steps are copied, and the last one keeps its own successor
func Chain(steps ...*api.Step) *api.Step {
	var head *api.Step
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i].Copy()
		if head != nil {
			s.Next = head
		}
		head = s
	}
	return head
}
