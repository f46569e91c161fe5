package scheduler

import (
	"container/heap"
	"slices"
	"time"
)

type (
	// Task is a function scheduled to run at a point in time. Tasks with a
	// Path are keyed: scheduling the same path again replaces the task
	Task struct {
		Func  TaskFunc
		At    time.Time
		Path  []string
		id    string
		seq   uint64
		index int
	}

	// TaskHeap orders tasks by run time, then by submission order
	TaskHeap struct {
		items []*Task
		byID  map[string]*Task
		seq   uint64
	}
)

// NewTaskHeap creates an empty TaskHeap
func NewTaskHeap() *TaskHeap {
	return &TaskHeap{
		byID: map[string]*Task{},
	}
}

// Insert adds a task. A keyed task replaces the pending task with the same
// path and moves to the end of submission order
func (h *TaskHeap) Insert(t *Task) {
	if t == nil || t.Func == nil || t.At.IsZero() {
		return
	}
	h.seq++
	if len(t.Path) > 0 {
		t.id = pathID(t.Path)
		if old, ok := h.byID[t.id]; ok {
			old.Func = t.Func
			old.At = t.At
			old.seq = h.seq
			heap.Fix(h, old.index)
			return
		}
	}
	t.seq = h.seq
	heap.Push(h, t)
}

// PopTask removes and returns the earliest task, or nil
func (h *TaskHeap) PopTask() *Task {
	if len(h.items) == 0 {
		return nil
	}
	return heap.Pop(h).(*Task)
}

// Peek returns the earliest task without removing it
func (h *TaskHeap) Peek() *Task {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// CancelPrefix removes every keyed task whose path starts with prefix
func (h *TaskHeap) CancelPrefix(prefix []string) {
	if len(prefix) == 0 {
		return
	}
	var matched []*Task
	for _, t := range h.byID {
		if len(t.Path) >= len(prefix) &&
			slices.Equal(t.Path[:len(prefix)], prefix) {
			matched = append(matched, t)
		}
	}
	for _, t := range matched {
		heap.Remove(h, t.index)
	}
}

func (h *TaskHeap) Len() int {
	return len(h.items)
}

func (h *TaskHeap) Less(i, j int) bool {
	l, r := h.items[i], h.items[j]
	if l.At.Equal(r.At) {
		return l.seq < r.seq
	}
	return l.At.Before(r.At)
}

func (h *TaskHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *TaskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(h.items)
	h.items = append(h.items, t)
	if len(t.Path) > 0 {
		h.byID[t.id] = t
	}
}

func (h *TaskHeap) Pop() any {
	n := len(h.items)
	t := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	t.index = -1
	if len(t.Path) > 0 {
		delete(h.byID, t.id)
	}
	return t
}

func pathID(path []string) string {
	var b []byte
	for _, p := range path {
		b = append(b, p...)
		b = append(b, 0)
	}
	return string(b)
}
