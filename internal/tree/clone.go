package tree

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// Renames maps original step names to the fresh names of their clones
type Renames map[api.StepName]api.StepName

// Clone deep-copies a step and its owned chains, excluding its successor.
// Every cloned step receives a name unused in taken, and taken is updated
// with the names it hands out
func Clone(s *api.Step, taken util.Set[api.StepName]) (*api.Step, Renames) {
	res, renames := CloneAll([]*api.Step{Detach(s)}, taken)
	return res[0], renames
}

// CloneChain deep-copies the whole chain starting at head
func CloneChain(
	head *api.Step, taken util.Set[api.StepName],
) (*api.Step, Renames) {
	if head == nil {
		return nil, Renames{}
	}
	res, renames := CloneAll([]*api.Step{head}, taken)
	return res[0], renames
}

// CloneAll deep-copies several chains with one shared rename table, so
// references between the copied steps are rewritten consistently
func CloneAll(
	heads []*api.Step, taken util.Set[api.StepName],
) ([]*api.Step, Renames) {
	renames := Renames{}
	for _, h := range heads {
		Walk(h, func(s *api.Step) bool {
			if _, ok := renames[s.Name]; ok {
				return true
			}
			name := UnusedName(taken)
			taken.Add(name)
			renames[s.Name] = name
			return true
		})
	}
	rw := newRewriter(renames)
	res := make([]*api.Step, len(heads))
	for i, h := range heads {
		res[i] = Map(h, func(s *api.Step) *api.Step {
			s.Name = renames[s.Name]
			s.Settings = rw.settings(s.Settings)
			return s
		})
	}
	return res, renames
}

type rewriter struct {
	renames Renames
	pattern *regexp.Regexp
}

func newRewriter(renames Renames) *rewriter {
	if len(renames) == 0 {
		return &rewriter{renames: renames}
	}
	names := make([]string, 0, len(renames))
	for old := range renames {
		names = append(names, regexp.QuoteMeta(string(old)))
	}
	// longest first so step_10 is never matched as step_1
	slices.SortFunc(names, func(l, r string) int {
		return cmp.Compare(len(r), len(l))
	})
	return &rewriter{
		renames: renames,
		pattern: regexp.MustCompile(
			`\{\{\s*(` + strings.Join(names, "|") + `)\b`,
		),
	}
}

func (r *rewriter) text(s string) string {
	if r.pattern == nil || !strings.Contains(s, "{{") {
		return s
	}
	return r.pattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := r.pattern.FindStringSubmatch(m)
		old := sub[1]
		return strings.TrimSuffix(m, old) + string(r.renames[api.StepName(old)])
	})
}

func (r *rewriter) value(v any) any {
	switch v := v.(type) {
	case string:
		return r.text(v)
	case map[string]any:
		return r.input(v)
	case []any:
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = r.value(e)
		}
		return res
	default:
		return v
	}
}

func (r *rewriter) input(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	res := make(map[string]any, len(in))
	for k, v := range in {
		res[k] = r.value(v)
	}
	return res
}

func (r *rewriter) settings(s api.Settings) api.Settings {
	switch st := s.(type) {
	case api.PieceTriggerSettings:
		st.Input = r.input(st.Input)
		return st
	case api.PieceSettings:
		st.Input = r.input(st.Input)
		return st
	case api.CodeSettings:
		st.Input = r.input(st.Input)
		return st
	case api.LoopSettings:
		st.Items = r.text(st.Items)
		return st
	case api.RouterSettings:
		st.Branches = slices.Clone(st.Branches)
		for i, b := range st.Branches {
			st.Branches[i].Conditions = r.conditions(b.Conditions)
		}
		return st
	default:
		return s
	}
}

func (r *rewriter) conditions(groups [][]api.Condition) [][]api.Condition {
	if groups == nil {
		return nil
	}
	res := make([][]api.Condition, len(groups))
	for i, g := range groups {
		res[i] = make([]api.Condition, len(g))
		for j, c := range g {
			c.FirstValue = r.text(c.FirstValue)
			c.SecondValue = r.text(c.SecondValue)
			res[i][j] = c
		}
	}
	return res
}
