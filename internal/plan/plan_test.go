package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskLifecycle(t *testing.T) {
	p := New("add caching")
	i := p.AddTask("add cache type")
	j := p.AddTask("wire into handler")

	assert.Equal(t, 0, p.CurrentTask())

	p.SetStatus(i, StatusInProgress, "")
	assert.Equal(t, 0, p.CurrentTask())

	p.SetStatus(i, StatusDone, "")
	assert.Equal(t, 1, p.CurrentTask())
	assert.False(t, p.IsComplete())

	p.SetStatus(j, StatusSkipped, "")
	assert.True(t, p.IsComplete())
	assert.Equal(t, -1, p.CurrentTask())
}

func TestFailedTaskKeepsError(t *testing.T) {
	p := New("x")
	i := p.AddTask("run tests")
	p.SetStatus(i, StatusFailed, "2 tests failing")

	assert.Equal(t, StatusFailed, p.Tasks[i].Status)
	assert.Equal(t, "2 tests failing", p.Tasks[i].Error)

	// Re-editing resets the task.
	assert.True(t, p.EditTask(i, "fix then run tests"))
	assert.Equal(t, StatusPending, p.Tasks[i].Status)
	assert.Empty(t, p.Tasks[i].Error)
}

func TestInsertAndRemove(t *testing.T) {
	p := New("x")
	p.AddTask("first")
	p.AddTask("third")
	p.InsertTask(1, "second")

	assert.Equal(t, "second", p.Tasks[1].Description)
	assert.True(t, p.RemoveTask(0))
	assert.Equal(t, "second", p.Tasks[0].Description)
	assert.False(t, p.RemoveTask(10))
}

func TestProgress(t *testing.T) {
	p := New("x")
	a := p.AddTask("a")
	p.AddTask("b")
	p.SetStatus(a, StatusDone, "")

	assert.Equal(t, "1/2 completed", p.Progress())
}

func TestRenderShowsStateIcons(t *testing.T) {
	p := New("refactor")
	a := p.AddTask("move files")
	b := p.AddTask("fix imports")
	p.SetStatus(a, StatusDone, "")
	p.SetStatus(b, StatusFailed, "cycle detected")

	out := p.Render()
	assert.Contains(t, out, "PLAN: refactor")
	assert.Contains(t, out, "[x] 1. move files")
	assert.Contains(t, out, "[!] 2. fix imports")
	assert.Contains(t, out, "error: cycle detected")

	p.Confirm()
	assert.Contains(t, p.Render(), "BUILDING: refactor")
}
