package tools

import (
	"time"

	"kodo/internal/mode"
	"kodo/internal/permission"
)

// Descriptor is the static metadata for a tool. Descriptors are data,
// not code; they are created once at startup and never mutated.
type Descriptor struct {
	// Name is the unique tool name.
	Name string

	// Description summarizes the tool for listings.
	Description string

	// Safety classifies the tool for the permission gate.
	Safety permission.Safety

	// Modes lists the operating modes in which the tool is eligible.
	Modes []mode.Mode

	// Mutating reports whether the tool changes workspace state. A
	// checkpoint is taken before the first mutating call of a turn.
	Mutating bool

	// PathArgs names the arguments that denote filesystem paths and
	// therefore require workspace authorization before execution.
	PathArgs []string

	// MaxLatency is the expected upper bound on execution time, used
	// to size the dispatch timeout.
	MaxLatency time.Duration
}

// EligibleIn reports whether the tool may run in the given mode.
func (d Descriptor) EligibleIn(m mode.Mode) bool {
	return mode.Eligible(d.Modes, m)
}

var allModes = []mode.Mode{mode.ModePlan, mode.ModeBuild, mode.ModeReview}
var buildOnly = []mode.Mode{mode.ModeBuild}
