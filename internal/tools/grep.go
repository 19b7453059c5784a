package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"kodo/internal/workspace"

	"google.golang.org/genai"
)

const (
	// MaxGrepMatches caps the number of matching lines returned.
	MaxGrepMatches = 100
	// maxGrepFileSize skips files too large for line scanning.
	maxGrepFileSize = 5 * 1024 * 1024
)

// GrepTool searches file contents for a regular expression.
type GrepTool struct {
	ws *workspace.Workspace
}

// NewGrepTool creates a new GrepTool instance.
func NewGrepTool(ws *workspace.Workspace) *GrepTool {
	return &GrepTool{ws: ws}
}

func (t *GrepTool) Name() string {
	return "grep"
}

func (t *GrepTool) Description() string {
	return "Searches file contents under the workspace root with a regular expression."
}

func (t *GrepTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pattern": {
					Type:        genai.TypeString,
					Description: "Regular expression to search for",
				},
				"path": {
					Type:        genai.TypeString,
					Description: "Directory to search, relative to the workspace root (defaults to the root)",
				},
				"include": {
					Type:        genai.TypeString,
					Description: "Only search files whose base name matches this glob, e.g. *.go",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *GrepTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return NewValidationError("pattern", "is required")
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return NewValidationError("pattern", err.Error())
	}
	return nil
}

func (t *GrepTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern, _ := GetString(args, "pattern")
	searchPath := GetStringDefault(args, "path", ".")
	include := GetStringDefault(args, "include", "")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("invalid pattern: %s", err)), nil
	}

	guard := workspace.NewGuard(t.ws)
	root, err := guard.Authorize(searchPath)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	var sb strings.Builder
	matches := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(t.ws.Root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if isIgnoredPath(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if include != "" {
			ok, matchErr := filepath.Match(include, d.Name())
			if matchErr != nil || !ok {
				return nil
			}
		}
		if info, infoErr := d.Info(); infoErr != nil || info.Size() > maxGrepFileSize {
			return nil
		}
		if matches >= MaxGrepMatches {
			return filepath.SkipAll
		}
		matches += grepFile(path, filepath.ToSlash(rel), re, &sb, MaxGrepMatches-matches)
		return nil
	})
	if walkErr != nil && walkErr != ctx.Err() {
		return NewErrorResult(fmt.Sprintf("search failed: %s", walkErr)), nil
	}
	if ctx.Err() != nil {
		return NewErrorResult("search cancelled"), ctx.Err()
	}

	if matches == 0 {
		return NewSuccessResult("No matches found."), nil
	}

	content := sb.String()
	if matches >= MaxGrepMatches {
		content += fmt.Sprintf("... truncated to %d matches\n", MaxGrepMatches)
	}
	return NewSuccessResultWithData(content, map[string]any{"matches": matches}), nil
}

// grepFile scans one file for matches, appending up to limit lines.
// Binary files are skipped after the first null byte.
func grepFile(path, rel string, re *regexp.Regexp, sb *strings.Builder, limit int) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	found := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() && found < limit {
		lineNum++
		line := scanner.Text()
		if strings.IndexByte(line, 0) >= 0 {
			return found
		}
		if re.MatchString(line) {
			if len(line) > MaxLineLength {
				line = line[:MaxLineLength] + "..."
			}
			fmt.Fprintf(sb, "%s:%d:%s\n", rel, lineNum, line)
			found++
		}
	}
	return found
}
