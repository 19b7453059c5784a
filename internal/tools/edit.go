package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

// EditTool performs exact string replacement within a file.
type EditTool struct {
	guard *workspace.Guard
}

// NewEditTool creates a new EditTool instance.
func NewEditTool(guard *workspace.Guard) *EditTool {
	return &EditTool{guard: guard}
}

func (t *EditTool) Name() string {
	return "edit"
}

func (t *EditTool) Description() string {
	return "Replaces an exact string in a file. The old string must appear exactly once unless replace_all is set."
}

func (t *EditTool) Declaration() *genai.FunctionDeclaration {
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
				"old_string": {
					Type:        genai.TypeString,
					Description: "The exact text to replace",
				},
				"new_string": {
					Type:        genai.TypeString,
					Description: "The replacement text",
				},
				"replace_all": {
					Type:        genai.TypeBoolean,
					Description: "Replace every occurrence instead of requiring a unique match",
				},
			},
			Required: []string{"path", "old_string", "new_string"},
		},
	}
}

func (t *EditTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	oldStr, ok := GetString(args, "old_string")
	if !ok || oldStr == "" {
		return NewValidationError("old_string", "is required")
	}
	newStr, ok := GetString(args, "new_string")
	if !ok {
		return NewValidationError("new_string", "is required")
	}
	if oldStr == newStr {
		return NewValidationError("new_string", "must differ from old_string")
	}
	return nil
}

func (t *EditTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	oldStr, _ := GetString(args, "old_string")
	newStr, _ := GetString(args, "new_string")
	replaceAll := GetBoolDefault(args, "replace_all", false)

	resolved, err := t.guard.Authorize(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %s", path, err)), nil
	}
	content := string(data)

	count := strings.Count(content, oldStr)
	if count == 0 {
		return NewErrorResult(fmt.Sprintf("old_string not found in %s", path)), nil
	}
	if count > 1 && !replaceAll {
		return NewErrorResult(fmt.Sprintf("old_string appears %d times in %s; pass replace_all or provide more context", count, path)), nil
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(content, oldStr, newStr)
	} else {
		updated = strings.Replace(content, oldStr, newStr, 1)
	}

	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return NewErrorResult(fmt.Sprintf("error writing file: %s", err)), nil
	}

	preview := UnifiedDiff(path, content, updated)
	replaced := 1
	if replaceAll {
		replaced = count
	}
	return NewSuccessResultWithData(
		fmt.Sprintf("Edited %s (%d replacement(s))\n%s", path, replaced, preview),
		map[string]any{"replacements": replaced},
	), nil
}
