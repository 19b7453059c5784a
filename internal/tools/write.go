package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

// WriteTool writes content to files inside the workspace.
type WriteTool struct {
	guard *workspace.Guard
}

// NewWriteTool creates a new WriteTool instance.
func NewWriteTool(guard *workspace.Guard) *WriteTool {
	return &WriteTool{guard: guard}
}

func (t *WriteTool) Name() string {
	return "write"
}

func (t *WriteTool) Description() string {
	return "Writes content to a file. Creates the file if it doesn't exist, or overwrites if it does."
}

func (t *WriteTool) Declaration() *genai.FunctionDeclaration {
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
				"content": {
					Type:        genai.TypeString,
					Description: "The content to write to the file",
				},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if _, ok := GetString(args, "content"); !ok {
		return NewValidationError("content", "is required")
	}
	return nil
}

func (t *WriteTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	content, _ := GetString(args, "content")

	resolved, err := t.guard.Authorize(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	var oldContent []byte
	_, statErr := os.Stat(resolved)
	isNew := os.IsNotExist(statErr)
	if !isNew {
		oldContent, err = os.ReadFile(resolved)
		if err != nil {
			return NewErrorResult(fmt.Sprintf("error reading existing file: %s", err)), nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return NewErrorResult(fmt.Sprintf("error creating directories: %s", err)), nil
	}

	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return NewErrorResult(fmt.Sprintf("error writing file: %s", err)), nil
	}

	added, removed := DiffStats(string(oldContent), content)
	if isNew {
		return NewSuccessResult(fmt.Sprintf("Created %s (%d lines)", path, added)), nil
	}
	return NewSuccessResult(fmt.Sprintf("Updated %s (+%d -%d lines)", path, added, removed)), nil
}
