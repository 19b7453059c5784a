package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AccessError reports a path that failed workspace authorization.
// Recoverable: it is reported to the conversation, never fatal.
type AccessError struct {
	Path   string
	Root   string
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied: %s: %s (workspace root: %s)", e.Path, e.Reason, e.Root)
}

// Guard validates that paths resolve inside the workspace root.
type Guard struct {
	root string
}

// NewGuard creates a guard for the given workspace.
func NewGuard(ws *Workspace) *Guard {
	return &Guard{root: ws.Root}
}

// Authorize resolves path to canonical form and verifies it lies within
// the workspace root. Relative paths resolve against the root, never the
// process working directory. Any resolution failure surfaces as an
// AccessError, never a silent allow.
func (g *Guard) Authorize(path string) (string, error) {
	if path == "" {
		return "", &AccessError{Path: path, Root: g.root, Reason: "empty path"}
	}
	if strings.ContainsRune(path, 0) {
		return "", &AccessError{Path: path, Root: g.root, Reason: "null byte in path"}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.root, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := g.resolveSymlinks(abs)
	if err != nil {
		return "", &AccessError{Path: path, Root: g.root, Reason: err.Error()}
	}

	if !g.contains(resolved) {
		return "", &AccessError{Path: path, Root: g.root, Reason: "outside workspace"}
	}
	return resolved, nil
}

// resolveSymlinks expands symlinks in abs. A nonexistent leaf is fine for
// files about to be created; its deepest existing ancestor is resolved
// instead so a symlinked parent cannot escape the root.
func (g *Guard) resolveSymlinks(abs string) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	// Walk up to the deepest existing ancestor.
	missing := []string{filepath.Base(abs)}
	dir := filepath.Dir(abs)
	for {
		resolved, err = filepath.EvalSymlinks(dir)
		if err == nil {
			break
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve parent: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no existing ancestor for %s", abs)
		}
		missing = append(missing, filepath.Base(dir))
		dir = parent
	}

	for i := len(missing) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, missing[i])
	}
	return resolved, nil
}

// contains reports whether target is the root or a descendant, compared
// by path segments so that /ws/proj2 does not match root /ws/proj.
func (g *Guard) contains(target string) bool {
	rel, err := filepath.Rel(g.root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
