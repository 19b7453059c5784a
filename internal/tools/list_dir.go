package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

// ListDirTool lists the entries of a directory.
type ListDirTool struct {
	guard *workspace.Guard
}

// NewListDirTool creates a new ListDirTool instance.
func NewListDirTool(guard *workspace.Guard) *ListDirTool {
	return &ListDirTool{guard: guard}
}

func (t *ListDirTool) Name() string {
	return "list_dir"
}

func (t *ListDirTool) Description() string {
	return "Lists the files and directories in a workspace directory."
}

func (t *ListDirTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {
					Type:        genai.TypeString,
					Description: "Directory to list, relative to the workspace root (defaults to the root)",
				},
			},
		},
	}
}

func (t *ListDirTool) Validate(args map[string]any) error {
	return nil
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := GetStringDefault(args, "path", ".")

	resolved, err := t.guard.Authorize(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot list %s: %s", path, err)), nil
	}

	var sb strings.Builder
	for _, entry := range entries {
		name := entry.Name()
		if name == ".git" || name == workspace.ConfigDirName {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return NewSuccessResult("(empty directory)"), nil
	}
	return NewSuccessResult(sb.String()), nil
}
