// Package complexity scores user requests to decide whether a forced
// planning step should be recommended before execution.
package complexity

import (
	"regexp"
	"strings"
)

// Score is the result of complexity analysis for one request.
type Score struct {
	// Value is the total score in [0,1].
	Value float64
	// Factors lists the signals that contributed, for display.
	Factors []string
}

// signal pairs a compiled pattern with its weight.
type signal struct {
	pattern *regexp.Regexp
	name    string
	weight  float64
}

// signals are weighted heuristics for task complexity. Higher weight
// means a stronger indicator that the request spans multiple steps or
// files.
var signals = []signal{
	// Restructuring
	{regexp.MustCompile(`(?i)\brefactor\b`), "refactor", 0.35},
	{regexp.MustCompile(`(?i)\brestructure\b`), "restructure", 0.35},
	{regexp.MustCompile(`(?i)\bmigrate\b`), "migrate", 0.35},
	{regexp.MustCompile(`(?i)\brewrite\b`), "rewrite", 0.30},
	{regexp.MustCompile(`(?i)\barchitect\b`), "architect", 0.30},
	{regexp.MustCompile(`(?i)\bredesign\b`), "redesign", 0.30},

	// Scope indicators
	{regexp.MustCompile(`(?i)\ball\s+files?\b`), "all files", 0.30},
	{regexp.MustCompile(`(?i)\bentire\b`), "entire", 0.25},
	{regexp.MustCompile(`(?i)\bevery\s+\w+`), "every", 0.25},
	{regexp.MustCompile(`(?i)\bacross\s+the\b`), "across the", 0.25},
	{regexp.MustCompile(`(?i)\bthroughout\b`), "throughout", 0.20},
	{regexp.MustCompile(`(?i)\bwhole\s+\w+`), "whole", 0.20},

	// Multi-step language
	{regexp.MustCompile(`(?i)\bfirst\b.*\bthen\b`), "first..then", 0.25},
	{regexp.MustCompile(`(?i)\bstep\s+\d+`), "numbered steps", 0.20},
	{regexp.MustCompile(`(?i)\band\s+then\b`), "and then", 0.15},
	{regexp.MustCompile(`(?i)\bafter\s+that\b`), "after that", 0.15},
	{regexp.MustCompile(`(?i)\bfinally\b`), "finally", 0.15},

	// Creation
	{regexp.MustCompile(`(?i)\bcreate\s+a\s+new\b`), "create a new", 0.20},
	{regexp.MustCompile(`(?i)\bbuild\s+a\b`), "build a", 0.20},
	{regexp.MustCompile(`(?i)\bimplement\s+a\b`), "implement a", 0.20},
	{regexp.MustCompile(`(?i)\bset\s*up\b`), "set up", 0.15},
	{regexp.MustCompile(`(?i)\binitialize\b`), "initialize", 0.15},

	// Ambiguous scope
	{regexp.MustCompile(`(?i)\bfix\s+(?:the\s+)?bugs?\b`), "fix bugs", 0.20},
	{regexp.MustCompile(`(?i)\boptimize\b`), "optimize", 0.20},
	{regexp.MustCompile(`(?i)\bimprove\b`), "improve", 0.15},
	{regexp.MustCompile(`(?i)\benhance\b`), "enhance", 0.15},

	// Adds up
	{regexp.MustCompile(`(?i)\bmultiple\b`), "multiple", 0.15},
	{regexp.MustCompile(`(?i)\bseveral\b`), "several", 0.15},
	{regexp.MustCompile(`(?i)\bintegrate\b`), "integrate", 0.15},
	{regexp.MustCompile(`(?i)\bvarious\b`), "various", 0.10},

	// Feature indicators
	{regexp.MustCompile(`(?i)\bfeature\b`), "feature", 0.15},
	{regexp.MustCompile(`(?i)\bsystem\b`), "system", 0.15},
	{regexp.MustCompile(`(?i)\bmodule\b`), "module", 0.10},
	{regexp.MustCompile(`(?i)\bcomponent\b`), "component", 0.10},
	{regexp.MustCompile(`(?i)\bservice\b`), "service", 0.10},
}

// pathMention matches file or path references in the request text.
var pathMention = regexp.MustCompile(`[.\w/-]+\.(?:go|py|js|ts|java|rs|c|cpp|h|md|ya?ml|json|toml|sql|sh)\b|(?:^|\s)(?:\./|/)[\w./-]+`)

const (
	longRequestChars  = 280
	longRequestWeight = 0.10
	manyPathsWeight   = 0.10
	longHistoryTurns  = 10
	longHistoryWeight = 0.05
)

// Estimator scores request text against a configured threshold.
type Estimator struct {
	threshold float64
}

// NewEstimator creates an estimator with a threshold in [0,1].
func NewEstimator(threshold float64) *Estimator {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	return &Estimator{threshold: threshold}
}

// Threshold returns the configured threshold.
func (e *Estimator) Threshold() float64 {
	return e.threshold
}

// Score computes a complexity score for a request. Pure function of its
// inputs; it never mutates mode or any other state.
func (e *Estimator) Score(text string, historyLen int) Score {
	var result Score

	for _, s := range signals {
		if s.pattern.MatchString(text) {
			result.Value += s.weight
			result.Factors = append(result.Factors, s.name)
		}
	}

	if len(text) >= longRequestChars {
		result.Value += longRequestWeight
		result.Factors = append(result.Factors, "long request")
	}

	if paths := distinctPathMentions(text); paths >= 2 {
		result.Value += manyPathsWeight
		result.Factors = append(result.Factors, "multi-file intent")
	}

	if historyLen >= longHistoryTurns {
		result.Value += longHistoryWeight
		result.Factors = append(result.Factors, "long session")
	}

	if result.Value > 1 {
		result.Value = 1
	}
	return result
}

// ShouldPlan reports whether the score crosses the threshold.
func (e *Estimator) ShouldPlan(s Score) bool {
	return s.Value >= e.threshold
}

func distinctPathMentions(text string) int {
	seen := make(map[string]struct{})
	for _, m := range pathMention.FindAllString(text, -1) {
		seen[strings.TrimSpace(m)] = struct{}{}
	}
	return len(seen)
}
