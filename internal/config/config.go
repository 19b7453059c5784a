// Package config defines resolved settings and their YAML loading,
// layering a workspace-local file over the global one.
package config

import "time"

// Config represents the main application configuration.
type Config struct {
	Mode       ModeConfig       `yaml:"mode"`
	Complexity ComplexityConfig `yaml:"complexity"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Permission PermissionConfig `yaml:"permission"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ModeConfig holds the default operating mode.
type ModeConfig struct {
	// Default is the mode a new session starts in: plan, build or
	// review.
	Default string `yaml:"default"`
}

// ComplexityConfig tunes plan-mode escalation.
type ComplexityConfig struct {
	// Threshold in [0,1]; scores at or above it trigger a plan-mode
	// recommendation.
	Threshold float64 `yaml:"threshold"`
}

// ExecutionConfig controls tool execution behavior.
type ExecutionConfig struct {
	// AutoExecuteSafe runs safe-class tools without confirmation.
	AutoExecuteSafe bool `yaml:"auto_execute_safe"`

	// ToolTimeout bounds a single tool call. Zero uses per-tool
	// declared latencies.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// CheckpointEnabled snapshots before mutating calls.
	CheckpointEnabled bool `yaml:"checkpoint_enabled"`

	// SafeCommands extends the shell command whitelist.
	SafeCommands []string `yaml:"safe_commands"`
}

// PermissionConfig holds per-tool policy overrides.
type PermissionConfig struct {
	// DefaultPolicy applies to tools without an explicit entry: allow,
	// ask or deny.
	DefaultPolicy string `yaml:"default_policy"`

	// Tools maps tool names to policies.
	Tools map[string]string `yaml:"tools"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// AutoSave persists the session after every turn.
	AutoSave bool `yaml:"auto_save"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Enabled turns the log file on.
	Enabled bool `yaml:"enabled"`
}
