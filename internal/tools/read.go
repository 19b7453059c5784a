package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

const (
	// DefaultReadLimit is the maximum number of lines returned per call.
	DefaultReadLimit = 2000
	// MaxLineLength truncates pathological lines in the output.
	MaxLineLength = 2000
)

// ReadTool reads files and returns their contents with line numbers.
type ReadTool struct {
	guard *workspace.Guard
}

// NewReadTool creates a new ReadTool instance.
func NewReadTool(guard *workspace.Guard) *ReadTool {
	return &ReadTool{guard: guard}
}

func (t *ReadTool) Name() string {
	return "read"
}

func (t *ReadTool) Description() string {
	return "Reads a file from the workspace and returns its contents with line numbers."
}

func (t *ReadTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Path to the file, absolute or relative to the workspace root",
				},
				"offset": {
					Type:        genai.TypeInteger,
					Description: "1-indexed line to start reading from",
				},
				"limit": {
					Type:        genai.TypeInteger,
					Description: "Maximum number of lines to return",
				},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if offset, ok := GetInt(args, "offset"); ok && offset < 1 {
		return NewValidationError("offset", "must be at least 1")
	}
	if limit, ok := GetInt(args, "limit"); ok && limit < 1 {
		return NewValidationError("limit", "must be at least 1")
	}
	return nil
}

func (t *ReadTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	offset := GetIntDefault(args, "offset", 1)
	limit := GetIntDefault(args, "limit", DefaultReadLimit)

	resolved, err := t.guard.Authorize(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %s", path, err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory", path)), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %s", path, err)), nil
	}

	lines := strings.Split(string(data), "\n")
	if offset > len(lines) {
		return NewErrorResult(fmt.Sprintf("offset %d past end of file (%d lines)", offset, len(lines))), nil
	}

	end := offset - 1 + limit
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := offset - 1; i < end; i++ {
		line := lines[i]
		if len(line) > MaxLineLength {
			line = line[:MaxLineLength] + "..."
		}
		fmt.Fprintf(&sb, "%6d\t%s\n", i+1, line)
	}

	content := sb.String()
	if end < len(lines) {
		content += fmt.Sprintf("... %d more lines\n", len(lines)-end)
	}
	return NewSuccessResult(content), nil
}
