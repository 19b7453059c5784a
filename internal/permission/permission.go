// Package permission decides whether a proposed tool invocation may
// execute, asking the user when policy requires it and caching
// session-scoped answers.
package permission

import "fmt"

// Safety classifies how risky a tool is.
type Safety string

const (
	// SafetySafe covers read-only operations (read, glob, grep).
	SafetySafe Safety = "safe"
	// SafetySensitive covers file modifications (write, edit).
	SafetySensitive Safety = "sensitive"
	// SafetyDestructive covers system operations (bash).
	SafetyDestructive Safety = "destructive"
)

// Level is the configured policy for a tool.
type Level string

const (
	// LevelAllow executes without asking.
	LevelAllow Level = "allow"
	// LevelAsk prompts the user before executing.
	LevelAsk Level = "ask"
	// LevelDeny refuses execution.
	LevelDeny Level = "deny"
)

// ParseLevel converts a config string to a Level. Unknown values fall
// back to ask.
func ParseLevel(s string) Level {
	switch s {
	case "allow":
		return LevelAllow
	case "deny":
		return LevelDeny
	default:
		return LevelAsk
	}
}

// Decision is the user's answer to a confirmation prompt.
type Decision int

const (
	// DecisionAllowOnce allows this call only.
	DecisionAllowOnce Decision = iota
	// DecisionAllowSession allows the tool for the rest of the session.
	DecisionAllowSession
	// DecisionDeny refuses this call. Denials are never cached; a later
	// call prompts again.
	DecisionDeny
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowOnce:
		return "allow-once"
	case DecisionAllowSession:
		return "allow-session"
	case DecisionDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Request describes a pending confirmation prompt.
type Request struct {
	ToolName string
	Safety   Safety
	Args     map[string]any
	Reason   string
}

// NewRequest builds a confirmation request with a display reason.
func NewRequest(toolName string, safety Safety, args map[string]any) *Request {
	return &Request{
		ToolName: toolName,
		Safety:   safety,
		Args:     args,
		Reason:   buildReason(toolName, args),
	}
}

// Response is the outcome of a permission check.
type Response struct {
	Allowed  bool
	Decision Decision
	Reason   string
}

// buildReason creates a human-readable description of what the tool
// is about to do.
func buildReason(toolName string, args map[string]any) string {
	switch toolName {
	case "write":
		if path, ok := args["path"].(string); ok {
			return fmt.Sprintf("Write to file: %s", path)
		}
		return "Write to file"

	case "edit":
		if path, ok := args["path"].(string); ok {
			return fmt.Sprintf("Edit file: %s", path)
		}
		return "Edit file"

	case "bash":
		if cmd, ok := args["command"].(string); ok {
			if len(cmd) > 150 {
				cmd = cmd[:147] + "..."
			}
			return fmt.Sprintf("Execute command: %s", cmd)
		}
		return "Execute shell command"

	default:
		return fmt.Sprintf("Execute tool: %s", toolName)
	}
}
