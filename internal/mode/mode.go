package mode

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Mode is the operating mode governing which tools may run.
type Mode string

const (
	// ModePlan is read-only planning. Initial mode.
	ModePlan Mode = "plan"
	// ModeBuild allows full execution including mutating tools.
	ModeBuild Mode = "build"
	// ModeReview is read-only, analysis-oriented.
	ModeReview Mode = "review"
)

// Parse converts a string to a Mode.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plan":
		return ModePlan, nil
	case "build":
		return ModeBuild, nil
	case "review":
		return ModeReview, nil
	default:
		return "", fmt.Errorf("unknown mode: %q", s)
	}
}

// ReadOnly reports whether the mode forbids mutation.
func (m Mode) ReadOnly() bool {
	return m != ModeBuild
}

func (m Mode) String() string {
	return string(m)
}

// Transition records a mode change for session history.
type Transition struct {
	From Mode      `json:"from"`
	To   Mode      `json:"to"`
	At   time.Time `json:"at"`
}

// Listener is called after the mode changes.
type Listener func(old, new Mode)

// Controller owns the current operating mode. A mode switch is always
// explicit; recommendations (e.g. from the complexity estimator) never
// change the mode here.
type Controller struct {
	mu        sync.RWMutex
	current   Mode
	listeners []Listener
	history   []Transition
}

// NewController creates a controller starting in the given mode.
// An empty initial mode defaults to PLAN.
func NewController(initial Mode) *Controller {
	if initial == "" {
		initial = ModePlan
	}
	return &Controller{current: initial}
}

// Current returns the current mode.
func (c *Controller) Current() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set switches to the given mode. It always succeeds and takes effect
// before the next dispatch decision.
func (c *Controller) Set(m Mode) {
	c.mu.Lock()
	old := c.current
	c.current = m
	var listeners []Listener
	if old != m {
		c.history = append(c.history, Transition{From: old, To: m, At: time.Now()})
		listeners = append(listeners, c.listeners...)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(old, m)
	}
}

// OnChange registers a listener fired on every effective mode change.
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// History returns a copy of recorded transitions.
func (c *Controller) History() []Transition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Transition, len(c.history))
	copy(out, c.history)
	return out
}

// Eligible reports whether m is contained in the eligibility set.
func Eligible(modes []Mode, m Mode) bool {
	for _, el := range modes {
		if el == m {
			return true
		}
	}
	return false
}

// IsEligible reports whether the current mode is in the eligibility set.
// Ineligibility is a normal, reportable outcome, not an error.
func (c *Controller) IsEligible(modes []Mode) bool {
	return Eligible(modes, c.Current())
}
