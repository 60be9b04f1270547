package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkflowLoader_MissingFile_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewWorkflowLoader(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)

	cfg := loader.Current()
	assert.Equal(t, DefaultWorkflowVersion, cfg.Version)
}

func TestNewWorkflowLoader_ValidFile_LoadsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "3.0.0"
status_progression:
  task:
    roles:
      queue: ["todo"]
      work: ["doing"]
      terminal: ["done"]
    terminal_statuses: ["done"]
completion_cleanup:
  enabled: true
  retain_tags: ["keep-me"]
`), 0o644))

	loader, err := NewWorkflowLoader(path)
	require.NoError(t, err)

	cfg := loader.Current()
	assert.Equal(t, "3.0.0", cfg.Version)
	role, ok := cfg.GetRoleForStatus("task", "doing")
	require.True(t, ok)
	assert.Equal(t, "work", role)
	assert.True(t, cfg.CleanupEnabled())
	assert.Equal(t, []string{"keep-me"}, cfg.RetainTags())
}

func TestNewWorkflowLoader_ValidFile_MissingRetainTagsUsesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "3.0.0"
status_progression:
  task:
    roles:
      queue: ["todo"]
    terminal_statuses: []
`), 0o644))

	loader, err := NewWorkflowLoader(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultRetainTags, loader.Current().RetainTags())
}

func TestNewWorkflowLoader_EmptyStatusProgression_IsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "3.0.0"
status_progression: {}
`), 0o644))

	_, err := NewWorkflowLoader(path)
	assert.Error(t, err)
}

func TestNewWorkflowLoader_EntityWithNoRoles_IsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "3.0.0"
status_progression:
  task:
    roles: {}
`), 0o644))

	_, err := NewWorkflowLoader(path)
	assert.Error(t, err)
}

func TestGetWorkflowOrDefault_FallsBackOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	cfg := GetWorkflowOrDefault(path)
	assert.Equal(t, DefaultWorkflowVersion, cfg.Version)
}
