package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with a fresh output buffer.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	// flag values persist between executions of the same command tree
	require.NoError(t, moveCmd.Flags().Set("force", "false"))
	require.NoError(t, moveCmd.Flags().Set("actor", "cli"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBoardDefinition(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "board.yaml", `
project: Website
columns:
  - name: Backlog
  - name: In Progress
    capacity: 2
`)

	def, err := readBoardDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "Website", def.Project)
	require.Len(t, def.Columns, 2)
	assert.Nil(t, def.Columns[0].Capacity)
	require.NotNil(t, def.Columns[1].Capacity)
	assert.Equal(t, 2, *def.Columns[1].Capacity)

	_, err = readBoardDefinition(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCLI_MoveFlow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	configFile := writeFile(t, dir, "config.yaml", "database:\n  path: "+filepath.Join(dir, "board.db")+"\nlog:\n  level: error\n")
	boardFile := writeFile(t, dir, "board.yaml", `
project: Website
columns:
  - name: Backlog
  - name: In Progress
    capacity: 1
  - name: Done
`)

	out, err := run(t, "-c", configFile, "board", "load", boardFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	projectID := strings.Fields(lines[0])[0]
	doing := strings.Fields(lines[2])[0]

	createTask := func(title string) string {
		out, err := run(t, "-c", configFile, "task", "create", projectID, title)
		require.NoError(t, err)
		return strings.TrimSpace(out)
	}
	t1 := createTask("T1")
	t2 := createTask("T2")

	out, err = run(t, "-c", configFile, "move", t1, doing, "--actor", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, string(models.TaskStatusInProgress))

	_, err = run(t, "-c", configFile, "move", t2, doing)
	assert.ErrorIs(t, err, models.ErrWipLimitExceeded)

	_, err = run(t, "-c", configFile, "move", t2, doing, "--force")
	require.NoError(t, err)

	out, err = run(t, "-c", configFile, "board", "show", projectID)
	require.NoError(t, err)
	assert.Contains(t, out, "2/1")

	out, err = run(t, "-c", configFile, "history", t2)
	require.NoError(t, err)
	assert.Contains(t, out, "[forced]")
}

func TestCLI_ConfigShowHidesToken(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	configFile := writeFile(t, dir, "config.yaml", "dispatcher:\n  webhook_url: http://hooks.local\n  webhook_token: s3cret\n")

	out, err := run(t, "-c", configFile, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://hooks.local")
	assert.NotContains(t, out, "s3cret")
}
