package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/scheduler"
)

func noop() error { return nil }

func TestTaskHeapOrder(t *testing.T) {
	h := scheduler.NewTaskHeap()
	base := time.Now()

	late := &scheduler.Task{Func: noop, At: base.Add(2 * time.Second)}
	first := &scheduler.Task{Func: noop, At: base.Add(time.Second)}
	second := &scheduler.Task{Func: noop, At: base.Add(time.Second)}
	h.Insert(late)
	h.Insert(first)
	h.Insert(second)

	assert.Same(t, first, h.Peek())
	assert.Same(t, first, h.PopTask())
	assert.Same(t, second, h.PopTask())
	assert.Same(t, late, h.PopTask())
	assert.Nil(t, h.PopTask())
	assert.Nil(t, h.Peek())
}

func TestTaskHeapIgnoresInvalid(t *testing.T) {
	h := scheduler.NewTaskHeap()
	h.Insert(nil)
	h.Insert(&scheduler.Task{At: time.Now()})
	h.Insert(&scheduler.Task{Func: noop})
	assert.Equal(t, 0, h.Len())
}

func TestTaskHeapReplaceKeyed(t *testing.T) {
	h := scheduler.NewTaskHeap()
	base := time.Now()
	var ran []string

	h.Insert(&scheduler.Task{
		Func: func() error { ran = append(ran, "old"); return nil },
		At:   base,
		Path: []string{"step", "a"},
	})
	h.Insert(&scheduler.Task{
		Func: noop,
		At:   base.Add(time.Second),
		Path: []string{"step", "b"},
	})
	h.Insert(&scheduler.Task{
		Func: func() error { ran = append(ran, "new"); return nil },
		At:   base.Add(time.Second),
		Path: []string{"step", "a"},
	})
	assert.Equal(t, 2, h.Len())

	b := h.PopTask()
	assert.Equal(t, []string{"step", "b"}, b.Path)

	a := h.PopTask()
	assert.NoError(t, a.Func())
	assert.Equal(t, []string{"new"}, ran)
}

func TestTaskHeapCancelPrefix(t *testing.T) {
	h := scheduler.NewTaskHeap()
	at := time.Now()
	h.Insert(&scheduler.Task{Func: noop, At: at, Path: []string{"f", "1"}})
	h.Insert(&scheduler.Task{Func: noop, At: at, Path: []string{"f", "2"}})
	h.Insert(&scheduler.Task{Func: noop, At: at, Path: []string{"g", "1"}})
	h.Insert(&scheduler.Task{Func: noop, At: at})

	h.CancelPrefix([]string{"f"})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"g", "1"}, h.PopTask().Path)
	assert.Empty(t, h.PopTask().Path)

	h.Insert(&scheduler.Task{Func: noop, At: at, Path: []string{"f", "1"}})
	assert.Equal(t, 1, h.Len())
}
