package tools

import (
	"time"

	"kodo/internal/permission"
	"kodo/internal/workspace"
)

// DefaultRegistry builds the static tool catalog for a workspace.
// Adding a tool means adding an implementation and an entry here;
// there is no runtime tool loading.
func DefaultRegistry(ws *workspace.Workspace) (*Registry, error) {
	guard := workspace.NewGuard(ws)
	reg := NewRegistry()

	entries := []struct {
		tool Tool
		desc Descriptor
	}{
		{
			tool: NewReadTool(guard),
			desc: Descriptor{
				Name:        "read",
				Description: "Read a file with line numbers",
				Safety:      permission.SafetySafe,
				Modes:       allModes,
				PathArgs:    []string{"path"},
				MaxLatency:  5 * time.Second,
			},
		},
		{
			tool: NewGlobTool(ws),
			desc: Descriptor{
				Name:        "glob",
				Description: "Find files by glob pattern",
				Safety:      permission.SafetySafe,
				Modes:       allModes,
				MaxLatency:  10 * time.Second,
			},
		},
		{
			tool: NewGrepTool(ws),
			desc: Descriptor{
				Name:        "grep",
				Description: "Search file contents by regular expression",
				Safety:      permission.SafetySafe,
				Modes:       allModes,
				PathArgs:    []string{"path"},
				MaxLatency:  15 * time.Second,
			},
		},
		{
			tool: NewListDirTool(guard),
			desc: Descriptor{
				Name:        "list_dir",
				Description: "List directory entries",
				Safety:      permission.SafetySafe,
				Modes:       allModes,
				PathArgs:    []string{"path"},
				MaxLatency:  5 * time.Second,
			},
		},
		{
			tool: NewWriteTool(guard),
			desc: Descriptor{
				Name:        "write",
				Description: "Create or overwrite a file",
				Safety:      permission.SafetySensitive,
				Modes:       buildOnly,
				Mutating:    true,
				PathArgs:    []string{"path"},
				MaxLatency:  10 * time.Second,
			},
		},
		{
			tool: NewEditTool(guard),
			desc: Descriptor{
				Name:        "edit",
				Description: "Replace an exact string in a file",
				Safety:      permission.SafetySensitive,
				Modes:       buildOnly,
				Mutating:    true,
				PathArgs:    []string{"path"},
				MaxLatency:  10 * time.Second,
			},
		},
		{
			tool: NewBashTool(ws),
			desc: Descriptor{
				Name:        "bash",
				Description: "Execute a shell command in the workspace",
				Safety:      permission.SafetyDestructive,
				Modes:       buildOnly,
				Mutating:    true,
				MaxLatency:  2 * time.Minute,
			},
		},
	}

	for _, e := range entries {
		if err := reg.Register(e.tool, e.desc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
