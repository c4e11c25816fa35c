package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/pkg/configuration"
)

func TestPruneSnapshots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	names := []string{
		"backup-20240101-000000.json",
		"backup-20240102-000000.json",
		"backup-20240103-000000.json",
		"backup-20240104-000000.json",
		"notes.txt",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	require.NoError(t, pruneSnapshots(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var remaining []string
	for _, entry := range entries {
		remaining = append(remaining, entry.Name())
	}
	assert.ElementsMatch(t, []string{
		"backup-20240103-000000.json",
		"backup-20240104-000000.json",
		"notes.txt",
	}, remaining)
}

func TestPruneSnapshotsUnderLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup-20240101-000000.json"), []byte("{}"), 0o644))

	require.NoError(t, pruneSnapshots(dir, 5))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewBackupWorkerValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := NewBackupWorker(nil, configuration.BackupOptions{}, nil)
	require.Error(t, err)
}

func TestBackupWorkerDisabledReturnsImmediately(t *testing.T) {
	t.Parallel()

	// A disabled worker must not require a database at all.
	w := &BackupWorker{
		opts: configuration.BackupOptions{Enabled: false},
		now:  time.Now,
	}
	require.NoError(t, w.Run(t.Context()))
}
