package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "plan", cfg.Mode.Default)
	assert.Equal(t, 0.6, cfg.Complexity.Threshold)
	assert.True(t, cfg.Execution.AutoExecuteSafe)
	assert.True(t, cfg.Execution.CheckpointEnabled)
	assert.Equal(t, "ask", cfg.Permission.DefaultPolicy)
}

func TestLocalOverlay(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	local := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(local, []byte(`
mode:
  default: build
complexity:
  threshold: 0.8
execution:
  tool_timeout: 45s
  safe_commands:
    - make lint
permission:
  tools:
    bash: deny
`), 0o644))

	cfg, err := Load(local)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Mode.Default)
	assert.Equal(t, 0.8, cfg.Complexity.Threshold)
	assert.Equal(t, 45*time.Second, cfg.Execution.ToolTimeout)
	assert.Equal(t, []string{"make lint"}, cfg.Execution.SafeCommands)
	assert.Equal(t, "deny", cfg.Permission.Tools["bash"])
}

func TestLocalOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", globalDir)
	require.NoError(t, os.MkdirAll(filepath.Join(globalDir, "kodo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "kodo", "config.yaml"), []byte(`
mode:
  default: review
complexity:
  threshold: 0.5
`), 0o644))

	local := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(local, []byte(`
mode:
  default: build
`), 0o644))

	cfg, err := Load(local)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Mode.Default)
	// Untouched keys keep the global value.
	assert.Equal(t, 0.5, cfg.Complexity.Threshold)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KODO_MODE", "review")
	t.Setenv("KODO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "review", cfg.Mode.Default)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Enabled)
}

func TestEnvExpansionInFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TEAM_MODE", "build")

	local := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(local, []byte("mode:\n  default: ${TEAM_MODE}\n"), 0o644))

	cfg, err := Load(local)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Mode.Default)
}

func TestInvalidThresholdRejected(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	local := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(local, []byte("complexity:\n  threshold: 1.5\n"), 0o644))

	_, err := Load(local)
	assert.Error(t, err)
}

func TestMissingFilesAreFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "plan", cfg.Mode.Default)
}
