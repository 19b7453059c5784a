// Package plan tracks the task list produced in plan mode and its
// execution progress.
package plan

import (
	"fmt"
	"strings"
	"sync"
)

// Status is the lifecycle state of one task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Task is a single step in a plan.
type Task struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
	Error       string `json:"error,omitempty"`
}

// Plan is an ordered task list. Confirmed flips when the user approves
// execution.
type Plan struct {
	Title     string `json:"title"`
	Tasks     []Task `json:"tasks"`
	Confirmed bool   `json:"confirmed"`

	mu sync.Mutex
}

// New creates an empty plan.
func New(title string) *Plan {
	return &Plan{Title: title}
}

// AddTask appends a pending task and returns its index.
func (p *Plan) AddTask(description string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Tasks = append(p.Tasks, Task{Description: description, Status: StatusPending})
	return len(p.Tasks) - 1
}

// InsertTask inserts a pending task at index, appending when the index
// is out of range.
func (p *Plan) InsertTask(index int, description string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	task := Task{Description: description, Status: StatusPending}
	if index < 0 || index > len(p.Tasks) {
		p.Tasks = append(p.Tasks, task)
		return len(p.Tasks) - 1
	}
	p.Tasks = append(p.Tasks[:index], append([]Task{task}, p.Tasks[index:]...)...)
	return index
}

// RemoveTask deletes the task at index.
func (p *Plan) RemoveTask(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.Tasks) {
		return false
	}
	p.Tasks = append(p.Tasks[:index], p.Tasks[index+1:]...)
	return true
}

// EditTask replaces a task's description and resets it to pending.
func (p *Plan) EditTask(index int, description string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.Tasks) {
		return false
	}
	p.Tasks[index].Description = description
	p.Tasks[index].Status = StatusPending
	p.Tasks[index].Error = ""
	return true
}

// SetStatus updates a task's state. The error message is kept only for
// failed tasks.
func (p *Plan) SetStatus(index int, status Status, errMsg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.Tasks) {
		return false
	}
	p.Tasks[index].Status = status
	if status == StatusFailed {
		p.Tasks[index].Error = errMsg
	} else {
		p.Tasks[index].Error = ""
	}
	return true
}

// Confirm marks the plan approved for execution.
func (p *Plan) Confirm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirmed = true
}

// CurrentTask returns the index of the first pending or in-progress
// task, or -1 when none remain.
func (p *Plan) CurrentTask() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, t := range p.Tasks {
		if t.Status == StatusPending || t.Status == StatusInProgress {
			return i
		}
	}
	return -1
}

// IsComplete reports whether every task is done or skipped.
func (p *Plan) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.Tasks {
		if t.Status != StatusDone && t.Status != StatusSkipped {
			return false
		}
	}
	return true
}

// Progress returns a short "done/total completed" summary.
func (p *Plan) Progress() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	done := 0
	for _, t := range p.Tasks {
		if t.Status == StatusDone {
			done++
		}
	}
	return fmt.Sprintf("%d/%d completed", done, len(p.Tasks))
}

// Render formats the plan as a numbered checklist for display.
func (p *Plan) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	header := "PLAN"
	if p.Confirmed {
		header = "BUILDING"
	}
	fmt.Fprintf(&sb, "%s: %s\n", header, p.Title)

	for i, t := range p.Tasks {
		icon := " "
		switch t.Status {
		case StatusInProgress:
			icon = ">"
		case StatusDone:
			icon = "x"
		case StatusFailed:
			icon = "!"
		case StatusSkipped:
			icon = "-"
		}
		fmt.Fprintf(&sb, "  [%s] %d. %s\n", icon, i+1, t.Description)
		if t.Status == StatusFailed && t.Error != "" {
			fmt.Fprintf(&sb, "      error: %s\n", t.Error)
		}
	}
	return sb.String()
}
