package permission

import (
	"context"
	"fmt"
	"sync"

	"kodo/internal/logging"
)

// Confirmer resolves a confirmation prompt. It blocks the calling turn
// until the user answers.
type Confirmer interface {
	Confirm(ctx context.Context, req *Request) (Decision, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, req *Request) (Decision, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, req *Request) (Decision, error) {
	return f(ctx, req)
}

// Gate decides ask/allow/deny for proposed tool invocations. One Gate
// per session; its decision cache never outlives the session.
type Gate struct {
	rules           *Rules
	autoExecuteSafe bool

	confirmer Confirmer

	// sessionCache holds allow-session decisions keyed by tool name.
	// Denials are never stored.
	sessionCache map[string]Decision

	mu sync.RWMutex
}

// NewGate creates a gate with the given rules. autoExecuteSafe controls
// whether safe-class tools run without confirmation; it has no effect
// on sensitive or destructive tools.
func NewGate(rules *Rules, autoExecuteSafe bool) *Gate {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Gate{
		rules:           rules,
		autoExecuteSafe: autoExecuteSafe,
		sessionCache:    make(map[string]Decision),
	}
}

// SetConfirmer installs the collaborator used for AskUser resolution.
func (g *Gate) SetConfirmer(c Confirmer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmer = c
}

// Decide resolves whether a tool call may execute. Sensitive and
// destructive tools require a cached session allowance, a configured
// allow policy, or a fresh confirmation.
func (g *Gate) Decide(ctx context.Context, toolName string, safety Safety, args map[string]any) (*Response, error) {
	if safety == SafetySafe {
		if g.rules.Policy(toolName) == LevelDeny {
			return &Response{
				Allowed:  false,
				Decision: DecisionDeny,
				Reason:   "tool is not permitted by configuration",
			}, nil
		}
		if g.autoExecuteSafe {
			return &Response{Allowed: true, Decision: DecisionAllowOnce}, nil
		}
		// Flag disabled: even safe tools confirm.
		return g.ask(ctx, toolName, safety, args)
	}

	g.mu.RLock()
	cached, ok := g.sessionCache[toolName]
	g.mu.RUnlock()
	if ok && cached == DecisionAllowSession {
		return &Response{Allowed: true, Decision: cached}, nil
	}

	switch g.rules.Policy(toolName) {
	case LevelAllow:
		return &Response{Allowed: true, Decision: DecisionAllowOnce}, nil
	case LevelDeny:
		return &Response{
			Allowed:  false,
			Decision: DecisionDeny,
			Reason:   "tool is not permitted by configuration",
		}, nil
	}

	return g.ask(ctx, toolName, safety, args)
}

// Remember stores a session-scoped allowance for a tool. Used when the
// user grants access outside the prompt flow.
func (g *Gate) Remember(toolName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionCache[toolName] = DecisionAllowSession
}

// Forget clears any cached decision for a tool.
func (g *Gate) Forget(toolName string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessionCache, toolName)
}

// Reset clears the entire session cache.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionCache = make(map[string]Decision)
}

func (g *Gate) ask(ctx context.Context, toolName string, safety Safety, args map[string]any) (*Response, error) {
	g.mu.RLock()
	confirmer := g.confirmer
	g.mu.RUnlock()

	if confirmer == nil {
		return &Response{
			Allowed:  false,
			Decision: DecisionDeny,
			Reason:   "no confirmation handler available",
		}, fmt.Errorf("permission: no confirmer configured for tool %q", toolName)
	}

	req := NewRequest(toolName, safety, args)
	decision, err := confirmer.Confirm(ctx, req)
	if err != nil {
		return &Response{
			Allowed:  false,
			Decision: DecisionDeny,
			Reason:   err.Error(),
		}, err
	}

	switch decision {
	case DecisionAllowOnce:
		return &Response{Allowed: true, Decision: decision}, nil

	case DecisionAllowSession:
		g.mu.Lock()
		g.sessionCache[toolName] = decision
		g.mu.Unlock()
		logging.Debug("permission granted for session", "tool", toolName)
		return &Response{Allowed: true, Decision: decision}, nil

	case DecisionDeny:
		return &Response{
			Allowed:  false,
			Decision: decision,
			Reason:   "denied by user",
		}, nil

	default:
		return &Response{
			Allowed:  false,
			Decision: DecisionDeny,
			Reason:   "unrecognized decision",
		}, nil
	}
}
