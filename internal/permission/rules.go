package permission

// Rules holds per-tool policy overrides from configuration.
type Rules struct {
	DefaultPolicy Level
	ToolPolicies  map[string]Level
}

// DefaultRules asks before anything a safety class alone does not
// resolve. Safe-class tools consult the table too, so a configured
// deny still blocks them.
func DefaultRules() *Rules {
	return &Rules{
		DefaultPolicy: LevelAsk,
		ToolPolicies:  map[string]Level{},
	}
}

// NewRulesFromConfig builds rules from config strings.
func NewRulesFromConfig(defaultPolicy string, toolPolicies map[string]string) *Rules {
	rules := &Rules{
		DefaultPolicy: ParseLevel(defaultPolicy),
		ToolPolicies:  make(map[string]Level, len(toolPolicies)),
	}
	for tool, policy := range toolPolicies {
		rules.ToolPolicies[tool] = ParseLevel(policy)
	}
	return rules
}

// Policy returns the configured level for a tool.
func (r *Rules) Policy(toolName string) Level {
	if policy, ok := r.ToolPolicies[toolName]; ok {
		return policy
	}
	return r.DefaultPolicy
}
