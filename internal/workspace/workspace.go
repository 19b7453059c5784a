// Package workspace manages the filesystem subtree the agent is authorized
// to touch: initialization, discovery, and path boundary enforcement.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigDirName is the per-project configuration directory.
	ConfigDirName = ".kodo"
	// MarkerFile marks an initialized workspace inside ConfigDirName.
	MarkerFile = "workspace.json"
)

// Workspace is the authorized root for all file operations.
// Immutable for the process lifetime; one per running session.
type Workspace struct {
	// Root is the absolute, symlink-resolved workspace root.
	Root string
	// ConfigDir is Root/.kodo.
	ConfigDir string
}

type markerData struct {
	Version string    `json:"version"`
	Created time.Time `json:"created"`
	Root    string    `json:"root"`
}

// Open opens an existing or implicit workspace rooted at the given directory.
func Open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}
	return &Workspace{
		Root:      resolved,
		ConfigDir: filepath.Join(resolved, ConfigDirName),
	}, nil
}

// Find searches the start directory and its parents for an initialized
// workspace. Returns nil without error when none is found.
func Find(start string) (*Workspace, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(current, ConfigDirName, MarkerFile)
		if _, err := os.Stat(candidate); err == nil {
			return Open(current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil, nil
		}
		current = parent
	}
}

// Init initializes a workspace at the given directory, creating the
// config directory, marker file, starter config, and a .gitignore for
// sensitive files. Idempotent for already-initialized directories.
func Init(path string) (*Workspace, error) {
	ws, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(ws.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	marker := filepath.Join(ws.ConfigDir, MarkerFile)
	data, err := json.MarshalIndent(markerData{
		Version: "1.0",
		Created: time.Now(),
		Root:    ws.Root,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(marker, data, 0644); err != nil {
		return nil, fmt.Errorf("write workspace marker: %w", err)
	}

	localConfig := filepath.Join(ws.ConfigDir, "config.yaml")
	if _, err := os.Stat(localConfig); os.IsNotExist(err) {
		starter := `# Local configuration for this workspace.
# Values here override the global config.
#
# mode: plan
# complexity:
#   threshold: 0.6
# execution:
#   auto_execute_safe: true
`
		if err := os.WriteFile(localConfig, []byte(starter), 0644); err != nil {
			return nil, fmt.Errorf("write local config: %w", err)
		}
	}

	gitignore := filepath.Join(ws.ConfigDir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		content := "config.yaml\n*.log\nsessions/\n"
		if err := os.WriteFile(gitignore, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write gitignore: %w", err)
		}
	}

	return ws, nil
}

// IsInitialized reports whether the workspace marker file exists.
func (w *Workspace) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(w.ConfigDir, MarkerFile))
	return err == nil
}

// SessionsDir returns the directory session records are stored in.
func (w *Workspace) SessionsDir() string {
	return filepath.Join(w.ConfigDir, "sessions")
}

// LocalConfigPath returns the path to the workspace-local config file.
func (w *Workspace) LocalConfigPath() string {
	return filepath.Join(w.ConfigDir, "config.yaml")
}

// Rel returns path relative to the workspace root for display, or the
// path unchanged when it lies outside the root.
func (w *Workspace) Rel(path string) string {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return path
	}
	return rel
}
