package history_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibing624/file-server/pkg/history"
	"github.com/shibing624/file-server/pkg/logging"
)

func openTestLog(t *testing.T) *history.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	log, err := history.Open(path, logging.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRecordAndRecent(t *testing.T) {
	log := openTestLog(t)

	log.Record(history.ActionUpload, "0823_aabbccdd_notes.txt", 11, "10.0.0.5")
	log.Record(history.ActionUpload, "0823_11223344_photo.jpg", 2048, "10.0.0.6")
	log.Record(history.ActionDelete, "0823_aabbccdd_notes.txt", 0, "10.0.0.5")

	events, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, history.ActionDelete, events[0].Action)
	assert.Equal(t, "0823_aabbccdd_notes.txt", events[0].Filename)
	assert.Equal(t, history.ActionUpload, events[2].Action)
	assert.Equal(t, int64(11), events[2].Size)
	assert.Equal(t, "10.0.0.5", events[2].RemoteIP)
	assert.False(t, events[0].At.IsZero())
}

func TestRecentLimit(t *testing.T) {
	log := openTestLog(t)

	for i := 0; i < 5; i++ {
		log.Record(history.ActionUpload, "0823_00000000_file.bin", int64(i), "")
	}

	events, err := log.Recent(2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// Non-positive limits fall back to a sane default.
	events, err = log.Recent(0)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestCount(t *testing.T) {
	log := openTestLog(t)

	n, err := log.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	log.Record(history.ActionUpload, "0823_00000000_a.txt", 1, "")
	log.Record(history.ActionUpload, "0823_00000000_b.txt", 2, "")

	n, err = log.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNilLogIsSafe(t *testing.T) {
	var log *history.Log

	// Every operation no-ops on a nil log.
	log.Record(history.ActionUpload, "x", 1, "")

	events, err := log.Recent(5)
	require.NoError(t, err)
	assert.Nil(t, events)

	n, err := log.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, log.Close())
}

func TestRecordAfterCloseDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	logger := logging.NewTestLogger()
	log, err := history.Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	log.Record(history.ActionUpload, "0823_00000000_late.txt", 1, "")
	assert.Contains(t, logger.GetOutput(), "failed to record history event")
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	logger := logging.NewTestLogger()

	log, err := history.Open(path, logger)
	require.NoError(t, err)
	log.Record(history.ActionUpload, "0823_00000000_keep.txt", 7, "")
	require.NoError(t, log.Close())

	reopened, err := history.Open(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "0823_00000000_keep.txt", events[0].Filename)
	assert.Equal(t, int64(7), events[0].Size)
}
