package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"kodo/internal/workspace"

	"github.com/bmatcuk/doublestar/v4"
	"google.golang.org/genai"
)

// MaxGlobResults caps the number of matches returned.
const MaxGlobResults = 200

// GlobTool finds files matching a glob pattern under the workspace root.
type GlobTool struct {
	ws *workspace.Workspace
}

// NewGlobTool creates a new GlobTool instance.
func NewGlobTool(ws *workspace.Workspace) *GlobTool {
	return &GlobTool{ws: ws}
}

func (t *GlobTool) Name() string {
	return "glob"
}

func (t *GlobTool) Description() string {
	return "Finds files matching a glob pattern (supports ** for recursion) relative to the workspace root."
}

func (t *GlobTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {
					Type:        genai.TypeString,
					Description: "Glob pattern such as **/*.go or src/**/test_*.py",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GlobTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return NewValidationError("pattern", "is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return NewValidationError("pattern", "is not a valid glob pattern")
	}
	return nil
}

func (t *GlobTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern, _ := GetString(args, "pattern")

	matches, err := doublestar.Glob(os.DirFS(t.ws.Root), pattern)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("glob failed: %s", err)), nil
	}

	filtered := matches[:0]
	for _, m := range matches {
		if isIgnoredPath(m) {
			continue
		}
		filtered = append(filtered, m)
	}
	sort.Strings(filtered)

	truncated := false
	if len(filtered) > MaxGlobResults {
		filtered = filtered[:MaxGlobResults]
		truncated = true
	}

	if len(filtered) == 0 {
		return NewSuccessResult("No files matched."), nil
	}

	content := strings.Join(filtered, "\n")
	if truncated {
		content += fmt.Sprintf("\n... truncated to %d results", MaxGlobResults)
	}
	return NewSuccessResultWithData(content, map[string]any{"count": len(filtered)}), nil
}

// isIgnoredPath filters version control and tool bookkeeping dirs out
// of search results.
func isIgnoredPath(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".git" || seg == workspace.ConfigDirName || seg == "node_modules" {
			return true
		}
	}
	return false
}
