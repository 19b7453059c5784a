package checkpoint

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommitPrefix marks checkpoint commits so they can be listed apart
// from regular history.
const CommitPrefix = "[kodo-checkpoint]"

// GitSnapshotter implements Snapshotter with git commits in the
// workspace repository.
type GitSnapshotter struct {
	repoPath string
}

// NewGitSnapshotter creates a snapshotter for the given repository
// path.
func NewGitSnapshotter(repoPath string) *GitSnapshotter {
	return &GitSnapshotter{repoPath: repoPath}
}

// IsRepo reports whether the path is inside a git repository.
func (g *GitSnapshotter) IsRepo() bool {
	_, err := os.Stat(filepath.Join(g.repoPath, ".git"))
	return err == nil
}

// InitRepo initializes a repository if one does not exist.
func (g *GitSnapshotter) InitRepo(ctx context.Context) error {
	if g.IsRepo() {
		return nil
	}
	_, err := g.run(ctx, "init")
	return err
}

// HasChanges reports whether the working tree has uncommitted changes.
func (g *GitSnapshotter) HasChanges(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Snapshot stages everything and commits with the checkpoint prefix.
// Returns an empty ref when the tree is clean.
func (g *GitSnapshotter) Snapshot(ctx context.Context, reason string) (string, error) {
	if err := g.InitRepo(ctx); err != nil {
		return "", err
	}

	dirty, err := g.HasChanges(ctx)
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", nil
	}

	if _, err := g.run(ctx, "add", "-A"); err != nil {
		return "", err
	}
	if _, err := g.run(ctx, "commit", "-m", CommitPrefix+" "+reason); err != nil {
		return "", err
	}

	hash, err := g.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(hash), nil
}

// Restore checks out the tree state at ref without moving HEAD.
func (g *GitSnapshotter) Restore(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	_, err := g.run(ctx, "checkout", ref, "--", ".")
	return err
}

// ListEntry describes one checkpoint commit.
type ListEntry struct {
	Hash    string
	Message string
	Age     string
}

// List returns recent checkpoint commits, newest first.
func (g *GitSnapshotter) List(ctx context.Context, limit int) ([]ListEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := g.run(ctx, "log", "--fixed-strings",
		"--grep="+CommitPrefix+"", fmt.Sprintf("-n%d", limit),
		"--pretty=format:%h|%s|%cr")
	if err != nil {
		return nil, err
	}

	var entries []ListEntry
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 3 {
			continue
		}
		entries = append(entries, ListEntry{
			Hash:    parts[0],
			Message: strings.TrimSpace(strings.TrimPrefix(parts[1], CommitPrefix)),
			Age:     parts[2],
		})
	}
	return entries, nil
}

func (g *GitSnapshotter) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
