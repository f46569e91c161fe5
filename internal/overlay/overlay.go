package overlay

import (
	"maps"

	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
)

type (
	// LoopIndexMap selects the displayed iteration of each loop step
	LoopIndexMap map[api.StepName]int

	// StatusMap is the status projected onto each step of a tree
	StatusMap map[api.StepName]api.StepStatus

	scope map[api.StepName]*api.StepOutput
)

// StepOutputFor returns the output displayed for the named step. Steps
// inside loops are resolved through the iteration selected for each
// enclosing loop, outermost first. The result is nil when the run has no
// output for the step in view
func StepOutputFor(
	root *api.Step, rec *api.ExecutionRecord, indexes LoopIndexMap,
	name api.StepName,
) *api.StepOutput {
	if rec == nil {
		return nil
	}
	sc := scope(rec.Steps)
	for _, loop := range tree.LoopAncestors(root, name) {
		out := sc[loop.Name]
		if out == nil {
			return nil
		}
		idx := indexes[loop.Name]
		if idx < 0 || idx >= len(out.Iterations) {
			return nil
		}
		sc = scope(out.Iterations[idx])
	}
	return sc[name]
}

// ProjectStatus maps every step with an output in view to its status
func ProjectStatus(
	root *api.Step, rec *api.ExecutionRecord, indexes LoopIndexMap,
) StatusMap {
	res := StatusMap{}
	if rec == nil {
		return res
	}
	for _, s := range tree.All(root) {
		if out := StepOutputFor(root, rec, indexes, s.Name); out != nil {
			res[s.Name] = out.Status
		}
	}
	return res
}

// LoopIndexesFor computes the index of every loop in the tree, starting
// from previous and clamping each into the iterations in view. Loops are
// visited outermost first, so nested loops are clamped against the
// iteration their parent now selects. A loop with no iterations in view
// gets 0
func LoopIndexesFor(
	root *api.Step, rec *api.ExecutionRecord, previous LoopIndexMap,
) LoopIndexMap {
	res := LoopIndexMap{}
	for _, s := range tree.All(root) {
		if s.Type() != api.StepTypeLoop {
			continue
		}
		count := 0
		if out := StepOutputFor(root, rec, res, s.Name); out != nil {
			count = len(out.Iterations)
		}
		res[s.Name] = clamp(previous[s.Name], count)
	}
	return res
}

// SetLoopIndex selects an iteration for one loop and re-clamps every
// other loop, nested ones included, against the new view
func SetLoopIndex(
	root *api.Step, rec *api.ExecutionRecord, indexes LoopIndexMap,
	loop api.StepName, idx int,
) LoopIndexMap {
	next := maps.Clone(indexes)
	if next == nil {
		next = LoopIndexMap{}
	}
	next[loop] = idx
	return LoopIndexesFor(root, rec, next)
}

// FindLastStepWithStatus returns the last step, in pre-order and iteration
// order, whose status explains the run's status. A succeeded or queued run
// has no such step
func FindLastStepWithStatus(
	root *api.Step, status api.RunStatus, steps map[api.StepName]*api.StepOutput,
) (api.StepName, bool) {
	want, ok := status.StepStatus()
	if !ok {
		return "", false
	}
	var last api.StepName
	var found bool
	var visit func(sc scope, head *api.Step)
	visit = func(sc scope, head *api.Step) {
		for _, s := range tree.Chain(head) {
			out := sc[s.Name]
			if out != nil && out.Status == want {
				last, found = s.Name, true
			}
			switch st := s.Settings.(type) {
			case api.LoopSettings:
				if out == nil {
					continue
				}
				for _, it := range out.Iterations {
					visit(scope(it), st.FirstAction)
				}
			case api.RouterSettings:
				for _, b := range st.Branches {
					visit(sc, b.Child)
				}
			}
		}
	}
	visit(steps, root)
	return last, found
}

func clamp(idx, count int) int {
	if count == 0 || idx < 0 {
		return 0
	}
	if idx >= count {
		return count - 1
	}
	return idx
}
