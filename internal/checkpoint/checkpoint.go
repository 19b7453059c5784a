// Package checkpoint snapshots workspace state before mutating tool
// calls and provides undo/redo over those snapshots.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kodo/internal/logging"
)

var (
	// ErrNothingToUndo is returned when the undo history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Ref identifies one checkpoint.
type Ref struct {
	// ID is the opaque reference returned by the snapshotter.
	ID string `json:"id"`
	// Reason describes why the checkpoint was taken.
	Reason string `json:"reason"`
	// TurnIndex is the session turn the checkpoint precedes.
	TurnIndex int `json:"turn_index"`
	// CreatedAt is the snapshot time.
	CreatedAt time.Time `json:"created_at"`
}

// Snapshotter is the external version-control collaborator.
type Snapshotter interface {
	// Snapshot captures current state and returns an opaque reference.
	// An empty reference with nil error means there was nothing to
	// capture.
	Snapshot(ctx context.Context, reason string) (string, error)

	// Restore returns the workspace to the state at ref.
	Restore(ctx context.Context, ref string) error
}

// Manager maintains the checkpoint history for one session. At most
// one checkpoint is created per turn; a failed snapshot must abort the
// tool call that required it.
type Manager struct {
	snapshotter Snapshotter
	enabled     bool

	// current is the checkpoint taken this turn, nil before the first
	// mutating call.
	current *Ref

	history []Ref
	redo    []Ref

	turnIndex int

	mu sync.Mutex
}

// NewManager creates a checkpoint manager. When enabled is false,
// EnsureCheckpoint is a no-op that reports success without a ref.
func NewManager(s Snapshotter, enabled bool) *Manager {
	return &Manager{snapshotter: s, enabled: enabled}
}

// BeginTurn resets the per-turn checkpoint flag. Called by the agent
// loop before dispatching a new user turn.
func (m *Manager) BeginTurn(turnIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.turnIndex = turnIndex
}

// EnsureCheckpoint creates a checkpoint for the current turn if none
// exists yet, returning the existing reference otherwise. Snapshot
// failure is returned to the caller; the triggering tool call must not
// proceed without it.
func (m *Manager) EnsureCheckpoint(ctx context.Context, reason string) (*Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return nil, nil
	}
	if m.current != nil {
		return m.current, nil
	}

	id, err := m.snapshotter.Snapshot(ctx, reason)
	if err != nil {
		return nil, fmt.Errorf("checkpoint failed: %w", err)
	}
	if id == "" {
		// Clean tree; nothing to capture but the turn still counts as
		// checkpointed.
		m.current = &Ref{Reason: reason, TurnIndex: m.turnIndex, CreatedAt: time.Now()}
		return m.current, nil
	}

	ref := Ref{ID: id, Reason: reason, TurnIndex: m.turnIndex, CreatedAt: time.Now()}
	m.current = &ref
	m.history = append(m.history, ref)
	// New checkpoint invalidates the redo stack.
	m.redo = nil

	logging.Debug("checkpoint created", "ref", id, "reason", reason)
	return m.current, nil
}

// Undo reverts to the most recent checkpoint and moves it onto the
// redo stack.
func (m *Manager) Undo(ctx context.Context) (*Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return nil, ErrNothingToUndo
	}

	ref := m.history[len(m.history)-1]
	if err := m.snapshotter.Restore(ctx, ref.ID); err != nil {
		return nil, fmt.Errorf("restore failed: %w", err)
	}

	m.history = m.history[:len(m.history)-1]
	m.redo = append(m.redo, ref)
	return &ref, nil
}

// Redo reapplies the most recently undone checkpoint.
func (m *Manager) Redo(ctx context.Context) (*Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.redo) == 0 {
		return nil, ErrNothingToRedo
	}

	ref := m.redo[len(m.redo)-1]
	if err := m.snapshotter.Restore(ctx, ref.ID); err != nil {
		return nil, fmt.Errorf("restore failed: %w", err)
	}

	m.redo = m.redo[:len(m.redo)-1]
	m.history = append(m.history, ref)
	return &ref, nil
}

// RestoreTo returns the workspace to an arbitrary checkpoint id. The
// state just before the restore is snapshotted onto the undo history
// first, so the restore itself can be undone. With a clean tree there
// is nothing to capture and the returned ref is nil.
func (m *Manager) RestoreTo(ctx context.Context, id, reason string) (*Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pre, err := m.snapshotter.Snapshot(ctx, reason)
	if err != nil {
		return nil, fmt.Errorf("checkpoint failed: %w", err)
	}
	if err := m.snapshotter.Restore(ctx, id); err != nil {
		return nil, fmt.Errorf("restore failed: %w", err)
	}
	if pre == "" {
		return nil, nil
	}

	ref := Ref{ID: pre, Reason: reason, TurnIndex: m.turnIndex, CreatedAt: time.Now()}
	m.history = append(m.history, ref)
	m.redo = nil
	return &ref, nil
}

// History returns a copy of the checkpoint history, oldest first.
func (m *Manager) History() []Ref {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Ref, len(m.history))
	copy(out, m.history)
	return out
}

// Current returns this turn's checkpoint, or nil if none was taken.
func (m *Manager) Current() *Ref {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
