// Package session defines the conversation record and its JSON
// persistence. A reloaded session must be indistinguishable from the
// original for every observable field.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kodo/internal/mode"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall records one proposed tool invocation within a turn.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolOutcome records the normalized result of a tool call.
type ToolOutcome struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
	// Status is one of ok, mode_violation, access_denied,
	// permission_denied, tool_error, timeout, checkpoint_failed.
	Status string `json:"status"`
	// DurationMS is the execution time in milliseconds.
	DurationMS int64 `json:"duration_ms,omitempty"`
}

// Turn is one entry in the conversation. Turns are append-only; the
// only post-creation mutation is attaching late tool outcomes.
type Turn struct {
	Role      Role          `json:"role"`
	Content   string        `json:"content,omitempty"`
	ToolCalls []ToolCall    `json:"tool_calls,omitempty"`
	Outcomes  []ToolOutcome `json:"outcomes,omitempty"`
	// Mode is the operating mode when the turn was created.
	Mode      mode.Mode `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is an ordered conversation with its mode history.
type Session struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Turns       []Turn            `json:"turns"`
	ModeHistory []mode.Transition `json:"mode_history,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// New creates an empty session.
func New(name string) *Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a turn to the session in execution order.
func (s *Session) Append(t Turn) {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}
	s.Turns = append(s.Turns, t)
	s.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
}

// RecordModeChange appends a mode transition to the history.
func (s *Session) RecordModeChange(tr mode.Transition) {
	s.ModeHistory = append(s.ModeHistory, tr)
	s.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
}

// LastTurn returns a pointer to the most recent turn, or nil.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// Summary returns a short display string for listings: the name when
// set, otherwise the first user message truncated.
func (s *Session) Summary() string {
	if s.Name != "" {
		return s.Name
	}
	for _, t := range s.Turns {
		if t.Role == RoleUser && t.Content != "" {
			text := strings.TrimSpace(t.Content)
			if len(text) > 60 {
				text = text[:57] + "..."
			}
			return text
		}
	}
	return fmt.Sprintf("session %s", shortID(s.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
