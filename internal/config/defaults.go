package config

// DefaultComplexityThreshold matches the point where multi-step
// requests reliably score above single-step ones.
const DefaultComplexityThreshold = 0.6

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeConfig{
			Default: "plan",
		},
		Complexity: ComplexityConfig{
			Threshold: DefaultComplexityThreshold,
		},
		Execution: ExecutionConfig{
			AutoExecuteSafe:   true,
			CheckpointEnabled: true,
		},
		Permission: PermissionConfig{
			DefaultPolicy: "ask",
			Tools:         map[string]string{},
		},
		Session: SessionConfig{
			AutoSave: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Enabled: false,
		},
	}
}
