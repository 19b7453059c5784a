package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kodo/internal/mode"
	"kodo/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	dir := t.TempDir()
	ws, err := workspace.Init(dir)
	require.NoError(t, err)
	return ws
}

func writeTestFile(t *testing.T, ws *workspace.Workspace, rel, content string) string {
	t.Helper()
	path := filepath.Join(ws.Root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadToolNumbersLines(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.txt", "alpha\nbeta\ngamma\n")

	tool := NewReadTool(workspace.NewGuard(ws))
	res, err := tool.Execute(context.Background(), map[string]any{"path": "a.txt"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "1\talpha")
	assert.Contains(t, res.Content, "3\tgamma")
}

func TestReadToolOffsetLimit(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.txt", "one\ntwo\nthree\nfour\n")

	tool := NewReadTool(workspace.NewGuard(ws))
	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "a.txt", "offset": 2, "limit": 2,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "two")
	assert.Contains(t, res.Content, "three")
	assert.NotContains(t, res.Content, "one\n")
	assert.NotContains(t, res.Content, "four")
}

func TestReadToolOutsideWorkspace(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewReadTool(workspace.NewGuard(ws))

	res, err := tool.Execute(context.Background(), map[string]any{"path": "/etc/passwd"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "access denied")
}

func TestWriteToolCreatesFile(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewWriteTool(workspace.NewGuard(ws))

	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "sub/new.txt", "content": "hello\n",
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	data, err := os.ReadFile(filepath.Join(ws.Root, "sub/new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestWriteToolOverwrites(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.txt", "old\n")
	tool := NewWriteTool(workspace.NewGuard(ws))

	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "a.txt", "content": "new\n",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "Updated")
}

func TestEditToolReplacesUniqueMatch(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.go", "package main\n\nfunc old() {}\n")
	tool := NewEditTool(workspace.NewGuard(ws))

	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "a.go", "old_string": "func old()", "new_string": "func renamed()",
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	data, _ := os.ReadFile(filepath.Join(ws.Root, "a.go"))
	assert.Contains(t, string(data), "func renamed()")
}

func TestEditToolRejectsAmbiguousMatch(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.txt", "x\nx\n")
	tool := NewEditTool(workspace.NewGuard(ws))

	res, err := tool.Execute(context.Background(), map[string]any{
		"path": "a.txt", "old_string": "x", "new_string": "y",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = tool.Execute(context.Background(), map[string]any{
		"path": "a.txt", "old_string": "x", "new_string": "y", "replace_all": true,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	data, _ := os.ReadFile(filepath.Join(ws.Root, "a.txt"))
	assert.Equal(t, "y\ny\n", string(data))
}

func TestGlobToolFindsFiles(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "src/main.go", "package main\n")
	writeTestFile(t, ws, "src/util/helper.go", "package util\n")
	writeTestFile(t, ws, "README.md", "# hi\n")

	tool := NewGlobTool(ws)
	res, err := tool.Execute(context.Background(), map[string]any{"pattern": "**/*.go"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "src/main.go")
	assert.Contains(t, res.Content, "src/util/helper.go")
	assert.NotContains(t, res.Content, "README.md")
}

func TestGlobToolSkipsConfigDir(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.yaml", "x: 1\n")

	tool := NewGlobTool(ws)
	res, err := tool.Execute(context.Background(), map[string]any{"pattern": "**/*.yaml"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotContains(t, res.Content, workspace.ConfigDirName)
}

func TestGrepToolFindsMatches(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.go", "package main\n\nfunc Handler() {}\n")
	writeTestFile(t, ws, "b.go", "package main\n")

	tool := NewGrepTool(ws)
	res, err := tool.Execute(context.Background(), map[string]any{
		"pattern": `func \w+\(`, "include": "*.go",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "a.go:3:")
	assert.NotContains(t, res.Content, "b.go")
}

func TestListDirTool(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "a.txt", "x")
	require.NoError(t, os.MkdirAll(filepath.Join(ws.Root, "sub"), 0o755))

	tool := NewListDirTool(workspace.NewGuard(ws))
	res, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "a.txt")
	assert.Contains(t, res.Content, "sub/")
	assert.NotContains(t, res.Content, workspace.ConfigDirName)
}

func TestBashToolRunsInRoot(t *testing.T) {
	ws := testWorkspace(t)
	writeTestFile(t, ws, "marker.txt", "x")

	tool := NewBashTool(ws)
	res, err := tool.Execute(context.Background(), map[string]any{"command": "ls"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Content, "marker.txt")
}

func TestBashToolReportsExitStatus(t *testing.T) {
	ws := testWorkspace(t)
	tool := NewBashTool(ws)

	res, err := tool.Execute(context.Background(), map[string]any{"command": "exit 3"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "exit status 3")
}

func TestIsSafeCommand(t *testing.T) {
	assert.True(t, IsSafeCommand("ls -la", nil))
	assert.True(t, IsSafeCommand("git status", nil))
	assert.True(t, IsSafeCommand("go version", nil))
	assert.True(t, IsSafeCommand("cargo --version", nil))
	assert.False(t, IsSafeCommand("rm -rf /", nil))
	assert.False(t, IsSafeCommand("git push", nil))
	assert.False(t, IsSafeCommand("cat a.txt > b.txt", nil))
	assert.False(t, IsSafeCommand("ls; rm -rf /", nil))
	assert.False(t, IsSafeCommand("", nil))
	assert.True(t, IsSafeCommand("make lint", []string{"make lint"}))
}

func TestIsSafeCommandRejectsMutatingFinders(t *testing.T) {
	// find and fd can delete or run arbitrary commands without any
	// shell metacharacter, so they stay off the whitelist entirely.
	assert.False(t, IsSafeCommand("find . -name victim.txt -delete", nil))
	assert.False(t, IsSafeCommand("find . -name '*.go' -exec rm {} +", nil))
	assert.False(t, IsSafeCommand("find . -type f", nil))
	assert.False(t, IsSafeCommand("fd -x rm", nil))
	assert.False(t, IsSafeCommand("fd pattern", nil))
}

func TestRegistryModeFiltering(t *testing.T) {
	ws := testWorkspace(t)
	reg, err := DefaultRegistry(ws)
	require.NoError(t, err)

	planTools := reg.List(mode.ModePlan)
	for _, d := range planTools {
		assert.False(t, d.Mutating, "mutating tool %s listed in plan mode", d.Name)
	}

	buildNames := make(map[string]bool)
	for _, d := range reg.List(mode.ModeBuild) {
		buildNames[d.Name] = true
	}
	assert.True(t, buildNames["write"])
	assert.True(t, buildNames["bash"])
	assert.True(t, buildNames["read"])
}

func TestRegistryDeclarationsMatchEligibility(t *testing.T) {
	ws := testWorkspace(t)
	reg, err := DefaultRegistry(ws)
	require.NoError(t, err)

	decls := reg.Declarations(mode.ModeReview)
	for _, d := range decls {
		desc, ok := reg.Describe(d.Name)
		require.True(t, ok)
		assert.True(t, desc.EligibleIn(mode.ModeReview))
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	ws := testWorkspace(t)
	reg := NewRegistry()
	tool := NewBashTool(ws)
	desc := Descriptor{Name: "bash", Modes: buildOnly}

	require.NoError(t, reg.Register(tool, desc))
	assert.Error(t, reg.Register(tool, desc))
}

func TestDescribeUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Describe("nope")
	assert.False(t, ok)
}
