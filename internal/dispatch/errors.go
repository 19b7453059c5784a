// Package dispatch validates and executes proposed tool calls,
// composing mode, permission, workspace and checkpoint policy.
package dispatch

import (
	"fmt"
	"time"

	"kodo/internal/mode"
)

// Outcome status values recorded on tool results.
const (
	StatusOK               = "ok"
	StatusNotFound         = "not_found"
	StatusInvalidArgs      = "invalid_args"
	StatusModeViolation    = "mode_violation"
	StatusAccessDenied     = "access_denied"
	StatusPermissionDenied = "permission_denied"
	StatusToolError        = "tool_error"
	StatusTimeout          = "timeout"
	StatusCheckpointFailed = "checkpoint_failed"
)

// NotFoundError reports an unknown tool name.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// ModeViolationError reports a tool ineligible in the current mode.
type ModeViolationError struct {
	Tool string
	Mode mode.Mode
}

func (e *ModeViolationError) Error() string {
	return fmt.Sprintf("tool %s is not available in %s mode", e.Tool, e.Mode)
}

// PermissionDeniedError reports a declined tool call.
type PermissionDeniedError struct {
	Tool   string
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Tool, e.Reason)
}

// TimeoutError reports an execution that exceeded its bound.
type TimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("tool %s timed out after %s", e.Tool, e.Timeout)
}

// CheckpointError reports a failed snapshot before a mutating call.
// The call must not proceed.
type CheckpointError struct {
	Tool string
	Err  error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("cannot run %s: %s", e.Tool, e.Err)
}

func (e *CheckpointError) Unwrap() error {
	return e.Err
}
