package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"kodo/internal/checkpoint"
	"kodo/internal/complexity"
	"kodo/internal/config"
	"kodo/internal/dispatch"
	"kodo/internal/logging"
	"kodo/internal/mode"
	"kodo/internal/plan"
	"kodo/internal/session"
	"kodo/internal/tools"
	"kodo/internal/workspace"
)

// maxToolRounds bounds the model/tool exchange within one user turn.
const maxToolRounds = 8

// Reply is one model response: text plus zero or more proposed tool
// calls.
type Reply struct {
	Text      string
	ToolCalls []session.ToolCall
}

// Driver is the external model collaborator. It only ever sees the
// declarations eligible for the current mode.
type Driver interface {
	Converse(ctx context.Context, turns []session.Turn, declarations []*genai.FunctionDeclaration) (*Reply, error)
}

// RecommendHandler asks the user whether to accept a plan-mode
// recommendation. Returning true switches the mode.
type RecommendHandler func(ctx context.Context, score complexity.Score) (bool, error)

// Agent drives one conversational turn at a time.
type Agent struct {
	ws          *workspace.Workspace
	cfg         *config.Config
	modes       *mode.Controller
	estimator   *complexity.Estimator
	registry    *tools.Registry
	dispatcher  *dispatch.Dispatcher
	checkpoints *checkpoint.Manager
	store       *session.Store
	driver      Driver

	recommend RecommendHandler

	sess        *session.Session
	currentPlan *plan.Plan
}

// New wires an agent around an existing session.
func New(
	ws *workspace.Workspace,
	cfg *config.Config,
	modes *mode.Controller,
	estimator *complexity.Estimator,
	registry *tools.Registry,
	dispatcher *dispatch.Dispatcher,
	checkpoints *checkpoint.Manager,
	store *session.Store,
	driver Driver,
	sess *session.Session,
) *Agent {
	a := &Agent{
		ws:          ws,
		cfg:         cfg,
		modes:       modes,
		estimator:   estimator,
		registry:    registry,
		dispatcher:  dispatcher,
		checkpoints: checkpoints,
		store:       store,
		driver:      driver,
		sess:        sess,
	}
	modes.OnChange(func(old, new mode.Mode) {
		a.sess.RecordModeChange(mode.Transition{From: old, To: new})
	})
	return a
}

// SetRecommendHandler installs the collaborator for plan-mode
// escalation prompts.
func (a *Agent) SetRecommendHandler(h RecommendHandler) {
	a.recommend = h
}

// Session returns the conversation record.
func (a *Agent) Session() *session.Session {
	return a.sess
}

// Plan returns the task list started by the last accepted plan-mode
// switch, or nil when none is active.
func (a *Agent) Plan() *plan.Plan {
	return a.currentPlan
}

// TurnReport summarizes one handled input for display.
type TurnReport struct {
	Text            string
	Outcomes        []session.ToolOutcome
	RecommendedPlan bool
	SwitchedToPlan  bool
	Plan            *plan.Plan
}

// HandleInput processes one user input end to end. Shell-shaped input
// is routed straight at the bash tool; natural language goes through
// complexity scoring and the model exchange.
func (a *Agent) HandleInput(ctx context.Context, input string) (*TurnReport, error) {
	switch Classify(input) {
	case InputCommand:
		return nil, fmt.Errorf("unhandled command: %s", strings.Fields(input)[0])
	case InputShell:
		return a.runShell(ctx, input)
	default:
		return a.runChat(ctx, input)
	}
}

// runShell dispatches typed shell input as a single bash call.
func (a *Agent) runShell(ctx context.Context, command string) (*TurnReport, error) {
	a.checkpoints.BeginTurn(len(a.sess.Turns))

	turn := session.Turn{
		Role:    session.RoleUser,
		Content: command,
		Mode:    a.modes.Current(),
	}
	call := session.ToolCall{ID: "shell-1", Name: "bash", Args: map[string]any{"command": command}}
	turn.ToolCalls = append(turn.ToolCalls, call)

	outcome, _ := a.dispatcher.Dispatch(ctx, call, &turn)
	a.sess.Append(turn)
	a.persist()

	return &TurnReport{Outcomes: []session.ToolOutcome{outcome}}, nil
}

// runChat is the model exchange loop for one user turn.
func (a *Agent) runChat(ctx context.Context, input string) (*TurnReport, error) {
	report := &TurnReport{}

	score := a.estimator.Score(input, len(a.sess.Turns))
	if a.estimator.ShouldPlan(score) && a.modes.Current() == mode.ModeBuild {
		report.RecommendedPlan = true
		if a.recommend != nil {
			accepted, err := a.recommend(ctx, score)
			if err != nil {
				return nil, err
			}
			if accepted {
				a.modes.Set(mode.ModePlan)
				report.SwitchedToPlan = true
				a.currentPlan = plan.New(planTitle(input))
				report.Plan = a.currentPlan
			}
		}
		// Declined or unhandled: proceed in the current mode.
	}

	a.checkpoints.BeginTurn(len(a.sess.Turns))
	a.sess.Append(session.Turn{
		Role:    session.RoleUser,
		Content: input,
		Mode:    a.modes.Current(),
	})

	for round := 0; round < maxToolRounds; round++ {
		if ctx.Err() != nil {
			a.persist()
			return report, ctx.Err()
		}

		current := a.modes.Current()
		reply, err := a.driver.Converse(ctx, a.sess.Turns, a.registry.Declarations(current))
		if err != nil {
			a.persist()
			return report, fmt.Errorf("model exchange failed: %w", err)
		}

		turn := session.Turn{
			Role:      session.RoleAssistant,
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
			Mode:      current,
		}
		report.Text = reply.Text

		if len(reply.ToolCalls) == 0 {
			a.sess.Append(turn)
			break
		}

		outcomes := a.dispatcher.DispatchBatch(ctx, reply.ToolCalls, &turn)
		a.sess.Append(turn)
		report.Outcomes = append(report.Outcomes, outcomes...)

		if round == maxToolRounds-1 {
			logging.Warn("tool round limit reached", "rounds", maxToolRounds)
		}
	}

	a.persist()
	return report, nil
}

// planTitle derives a plan title from the triggering request.
func planTitle(input string) string {
	title := strings.TrimSpace(input)
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	return title
}

// persist saves the session when auto-save is on. Failure is logged,
// not fatal; the in-memory record stays authoritative.
func (a *Agent) persist() {
	if !a.cfg.Session.AutoSave {
		return
	}
	if err := a.store.Save(a.sess); err != nil {
		logging.Error("session save failed", "id", a.sess.ID, "error", err)
	}
}
