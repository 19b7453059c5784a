package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

// MaxOutputBytes caps captured command output.
const MaxOutputBytes = 64 * 1024

// BashTool executes shell commands with the workspace root as the
// working directory.
type BashTool struct {
	ws *workspace.Workspace

	// extraSafe lists additional whitelisted commands from config.
	extraSafe []string
}

// NewBashTool creates a new BashTool instance.
func NewBashTool(ws *workspace.Workspace) *BashTool {
	return &BashTool{ws: ws}
}

// SetSafeCommands sets additional whitelisted commands.
func (t *BashTool) SetSafeCommands(cmds []string) {
	t.extraSafe = cmds
}

// IsSafe reports whether a command is on the read-only whitelist.
func (t *BashTool) IsSafe(command string) bool {
	return IsSafeCommand(command, t.extraSafe)
}

func (t *BashTool) Name() string {
	return "bash"
}

func (t *BashTool) Description() string {
	return "Executes a shell command in the workspace root and returns its output."
}

func (t *BashTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"command": {
					Type:        genai.TypeString,
					Description: "The shell command to execute",
				},
			},
			Required: []string{"command"},
		},
	}
}

func (t *BashTool) Validate(args map[string]any) error {
	command, ok := GetString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return NewValidationError("command", "is required")
	}
	return nil
}

func (t *BashTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	command, _ := GetString(args, "command")

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = t.ws.Root

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()

	output := out.String()
	if len(output) > MaxOutputBytes {
		output = output[:MaxOutputBytes] + "\n... output truncated"
	}

	if ctx.Err() != nil {
		return NewErrorResult("command cancelled: " + ctx.Err().Error()), ctx.Err()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewErrorResult(fmt.Sprintf("exit status %d\n%s", exitErr.ExitCode(), output)), nil
		}
		return NewErrorResult(fmt.Sprintf("command failed: %s", err)), nil
	}

	if output == "" {
		output = "(no output)"
	}
	return NewSuccessResult(output), nil
}
