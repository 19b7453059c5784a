package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kodo/internal/checkpoint"
	"kodo/internal/logging"
	"kodo/internal/mode"
	"kodo/internal/permission"
	"kodo/internal/session"
	"kodo/internal/tools"
	"kodo/internal/workspace"
)

const (
	// DefaultTimeout bounds tool execution when the descriptor does not
	// declare a latency.
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentSafeCalls bounds the worker count for read-only
	// batches.
	MaxConcurrentSafeCalls = 4
)

// commandClassifier is implemented by tools whose invocations can be
// downgraded to the safe class per call, such as whitelisted shell
// commands.
type commandClassifier interface {
	IsSafe(command string) bool
}

// Dispatcher routes proposed tool calls through mode, workspace,
// permission and checkpoint policy before execution.
type Dispatcher struct {
	registry    *tools.Registry
	modes       *mode.Controller
	gate        *permission.Gate
	guard       *workspace.Guard
	checkpoints *checkpoint.Manager

	// timeout overrides descriptor latencies when positive.
	timeout time.Duration
}

// NewDispatcher wires the policy components together.
func NewDispatcher(
	registry *tools.Registry,
	modes *mode.Controller,
	gate *permission.Gate,
	guard *workspace.Guard,
	checkpoints *checkpoint.Manager,
) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		modes:       modes,
		gate:        gate,
		guard:       guard,
		checkpoints: checkpoints,
	}
}

// SetTimeout overrides the per-call execution bound. Zero restores
// descriptor-declared latencies.
func (d *Dispatcher) SetTimeout(t time.Duration) {
	d.timeout = t
}

// Dispatch validates and executes one tool call, appending the
// normalized outcome to turn. The returned outcome always describes
// what happened; the error mirrors it for callers that branch on
// failure type.
func (d *Dispatcher) Dispatch(ctx context.Context, call session.ToolCall, turn *session.Turn) (session.ToolOutcome, error) {
	outcome, err := d.run(ctx, call)
	if turn != nil {
		turn.Outcomes = append(turn.Outcomes, outcome)
	}
	return outcome, err
}

// DispatchBatch executes a batch of calls proposed in one model
// response. A batch containing any mutating call runs strictly in
// proposal order; an all-safe batch runs concurrently up to a bounded
// worker count. Outcomes are returned in proposal order either way.
func (d *Dispatcher) DispatchBatch(ctx context.Context, calls []session.ToolCall, turn *session.Turn) []session.ToolOutcome {
	if len(calls) == 0 {
		return nil
	}

	if d.batchHasMutating(calls) {
		return d.dispatchSequential(ctx, calls, turn)
	}
	return d.dispatchConcurrent(ctx, calls, turn)
}

func (d *Dispatcher) batchHasMutating(calls []session.ToolCall) bool {
	for _, call := range calls {
		desc, ok := d.registry.Describe(call.Name)
		if !ok || desc.Mutating {
			// Unknown names force sequential handling so their
			// failures land in order.
			return true
		}
	}
	return false
}

func (d *Dispatcher) dispatchSequential(ctx context.Context, calls []session.ToolCall, turn *session.Turn) []session.ToolOutcome {
	outcomes := make([]session.ToolOutcome, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			// Turn cancelled: stop dispatching but keep completed
			// results intact.
			break
		}
		outcome, _ := d.Dispatch(ctx, call, turn)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (d *Dispatcher) dispatchConcurrent(ctx context.Context, calls []session.ToolCall, turn *session.Turn) []session.ToolOutcome {
	outcomes := make([]session.ToolOutcome, len(calls))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentSafeCalls)

	for i, call := range calls {
		g.Go(func() error {
			outcome, _ := d.run(gctx, call)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if turn != nil {
		turn.Outcomes = append(turn.Outcomes, outcomes...)
	}
	return outcomes
}

// run is the policy pipeline for a single call.
func (d *Dispatcher) run(ctx context.Context, call session.ToolCall) (session.ToolOutcome, error) {
	start := time.Now()

	fail := func(status, msg string, err error) (session.ToolOutcome, error) {
		return session.ToolOutcome{
			CallID:     call.ID,
			Name:       call.Name,
			Error:      msg,
			Status:     status,
			DurationMS: time.Since(start).Milliseconds(),
		}, err
	}

	desc, ok := d.registry.Describe(call.Name)
	if !ok {
		err := &NotFoundError{Tool: call.Name}
		return fail(StatusNotFound, err.Error(), err)
	}
	tool, _ := d.registry.Get(call.Name)

	current := d.modes.Current()
	if !desc.EligibleIn(current) {
		err := &ModeViolationError{Tool: call.Name, Mode: current}
		return fail(StatusModeViolation, err.Error(), err)
	}

	if err := tool.Validate(call.Args); err != nil {
		return fail(StatusInvalidArgs, err.Error(), err)
	}

	args := call.Args
	for _, argName := range desc.PathArgs {
		raw, ok := tools.GetString(args, argName)
		if !ok || raw == "" {
			continue
		}
		resolved, err := d.guard.Authorize(raw)
		if err != nil {
			return fail(StatusAccessDenied, err.Error(), err)
		}
		args[argName] = resolved
	}

	safety := desc.Safety
	mutating := desc.Mutating
	if safety == permission.SafetyDestructive {
		if classifier, ok := tool.(commandClassifier); ok {
			if cmd, ok := tools.GetString(args, "command"); ok && classifier.IsSafe(cmd) {
				safety = permission.SafetySafe
				mutating = false
			}
		}
	}

	resp, err := d.gate.Decide(ctx, call.Name, safety, args)
	if err != nil && resp == nil {
		return fail(StatusPermissionDenied, err.Error(), err)
	}
	if !resp.Allowed {
		pErr := &PermissionDeniedError{Tool: call.Name, Reason: resp.Reason}
		return fail(StatusPermissionDenied, pErr.Error(), pErr)
	}

	if mutating {
		if _, err := d.checkpoints.EnsureCheckpoint(ctx, "before "+call.Name); err != nil {
			cErr := &CheckpointError{Tool: call.Name, Err: err}
			return fail(StatusCheckpointFailed, cErr.Error(), cErr)
		}
	}

	timeout := d.timeout
	if timeout <= 0 {
		timeout = desc.MaxLatency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	result, err := d.invoke(ctx, tool, args, timeout)
	duration := time.Since(start)
	if err != nil {
		if tErr, ok := err.(*TimeoutError); ok {
			logging.Warn("tool timed out", "tool", call.Name, "timeout", timeout)
			return fail(StatusTimeout, tErr.Error(), tErr)
		}
		return fail(StatusToolError, err.Error(), err)
	}

	if !result.Success {
		return session.ToolOutcome{
			CallID:     call.ID,
			Name:       call.Name,
			Error:      result.Error,
			Status:     StatusToolError,
			DurationMS: duration.Milliseconds(),
		}, nil
	}

	return session.ToolOutcome{
		CallID:     call.ID,
		Name:       call.Name,
		Content:    result.Content,
		Status:     StatusOK,
		DurationMS: duration.Milliseconds(),
	}, nil
}

// invoke runs the tool body under a bounded timeout. The goroutine
// hand-off yields a TimeoutError even when the tool ignores its
// context.
func (d *Dispatcher) invoke(ctx context.Context, tool tools.Tool, args map[string]any, timeout time.Duration) (tools.ToolResult, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		result tools.ToolResult
		err    error
	}
	ch := make(chan reply, 1)

	go func() {
		result, err := tool.Execute(execCtx, args)
		ch <- reply{result, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && execCtx.Err() == context.DeadlineExceeded {
			return tools.ToolResult{}, &TimeoutError{Tool: tool.Name(), Timeout: timeout}
		}
		return r.result, r.err
	case <-execCtx.Done():
		if execCtx.Err() == context.DeadlineExceeded {
			return tools.ToolResult{}, &TimeoutError{Tool: tool.Name(), Timeout: timeout}
		}
		return tools.ToolResult{}, execCtx.Err()
	}
}
