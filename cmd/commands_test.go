package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibing624/file-server/pkg/config"
	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
	"github.com/shibing624/file-server/pkg/version"
)

var allVars = []string{
	"HOST", "PORT", "UPLOAD_PASSWORD", "STORAGE_DIR", "BASE_URL",
	"MAX_FILE_SIZE", "BLOCKED_EXTENSIONS", "LOG_LEVEL", "HISTORY_DB",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	rootCmd := NewRootCommand(context.Background(), afero.NewMemMapFs(), logging.NewTestLogger())

	assert.Equal(t, "file-server", rootCmd.Use)
	assert.Equal(t, version.Version, rootCmd.Version)

	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "history")
	assert.Contains(t, names, "version")
}

func TestVersionCommandOutput(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewVersionCommand()
	cmd.SetOut(out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), version.Name)
	assert.Contains(t, out.String(), version.Version)
}

func TestHistoryCommandDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_PASSWORD", "pw")
	t.Setenv("HISTORY_DB", "off")

	cmd := NewHistoryCommand(afero.NewMemMapFs(), logging.NewTestLogger())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestHistoryCommandPrintsEvents(t *testing.T) {
	clearEnv(t)
	dbPath := filepath.Join(t.TempDir(), "state", "history.db")
	t.Setenv("UPLOAD_PASSWORD", "pw")
	t.Setenv("HISTORY_DB", dbPath)

	logger := logging.NewTestLogger()
	events, err := history.Open(dbPath, logger)
	require.NoError(t, err)
	events.Record(history.ActionUpload, "0101_deadbeef_notes.txt", 42, "127.0.0.1")
	events.Record(history.ActionDelete, "0101_deadbeef_notes.txt", 0, "127.0.0.1")
	require.NoError(t, events.Close())

	out := &bytes.Buffer{}
	cmd := NewHistoryCommand(afero.NewMemMapFs(), logger)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"-n", "10"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "upload")
	assert.Contains(t, out.String(), "delete")
	assert.Contains(t, out.String(), "0101_deadbeef_notes.txt")
	assert.Contains(t, out.String(), "42 B")
	assert.Contains(t, out.String(), "2 events total")
}

func TestBannerContainsRuntimeFacts(t *testing.T) {
	settings := &config.Settings{
		Host:       "0.0.0.0",
		Port:       8008,
		StorageDir: "/data/file-server",
		BaseURL:    "http://files.example.com",
	}

	rendered := banner(settings)
	assert.Contains(t, rendered, version.Name)
	assert.Contains(t, rendered, version.Version)
	assert.Contains(t, rendered, "0.0.0.0:8008")
	assert.Contains(t, rendered, "/data/file-server")
	assert.Contains(t, rendered, "http://files.example.com/api")
}

func TestPasswordNotice(t *testing.T) {
	notice := passwordNotice("s3cret-token")
	assert.Contains(t, notice, "UPLOAD_PASSWORD")
	assert.Contains(t, notice, "s3cret-token")
}
