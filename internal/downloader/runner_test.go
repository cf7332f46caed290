package downloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uranus/pkg/logger"
)

func TestRunnerRunsCommandsInDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner("sh", logger.NewNopLogger())

	res := r.Run(context.Background(), Job{
		Dir:      dir,
		Commands: []string{"echo one > alice_1_1.jpg", "echo two >> alice_1_1.jpg"},
		PostID:   "1",
		Kind:     "photo",
	})

	require.True(t, res.Success, res.Output)
	assert.NoError(t, res.Error)
	assert.Zero(t, res.ExitCode)

	data, err := os.ReadFile(filepath.Join(dir, "alice_1_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestRunnerStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	log := logger.NewTestLogger()
	r := NewRunner("sh", log)

	res := r.Run(context.Background(), Job{
		Dir:      dir,
		Commands: []string{"echo broken >&2; exit 3", "touch should_not_exist"},
		PostID:   "9",
	})

	assert.False(t, res.Success)
	assert.Error(t, res.Error)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken", res.Output)
	assert.NoFileExists(t, filepath.Join(dir, "should_not_exist"))
	assert.True(t, log.HasError())
}

func TestRunnerMissingShell(t *testing.T) {
	r := NewRunner("definitely-not-a-shell-uranus", logger.NewNopLogger())

	res := r.Run(context.Background(), Job{Dir: t.TempDir(), Commands: []string{"true"}})
	assert.False(t, res.Success)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunnerDefaultsShell(t *testing.T) {
	assert.Equal(t, "bash", NewRunner("", logger.NewNopLogger()).shell)
}
