package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/orgkit/presence/pkg/configuration"
)

// snapshotTables lists what a backup carries, in dependency order so a
// restore can replay them top down.
var snapshotTables = []string{
	"departments",
	"sections",
	"teams",
	"employees",
	"status_types",
	"attendance_intervals",
	"transfer_requests",
	"audit_logs",
}

const backupFilePrefix = "backup-"

// BackupWorker periodically dumps every table to a JSON snapshot file
// and prunes old snapshots. It owns its own connection per cycle and
// holds nothing between ticks.
type BackupWorker struct {
	pool   *pgxpool.Pool
	opts   configuration.BackupOptions
	logger *logrus.Logger
	now    func() time.Time
}

func NewBackupWorker(pool *pgxpool.Pool, opts configuration.BackupOptions, logger *logrus.Logger) (*BackupWorker, error) {
	if pool == nil {
		return nil, errors.New("backup worker: pool is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &BackupWorker{
		pool:   pool,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run blocks until ctx is cancelled. A failed cycle is logged and the
// loop keeps going.
func (w *BackupWorker) Run(ctx context.Context) error {
	if !w.opts.Enabled {
		return nil
	}
	if err := os.MkdirAll(w.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("backup worker: create dir: %w", err)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := w.snapshotOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.WithError(err).Warn("backup cycle failed")
		}
	}
}

func (w *BackupWorker) snapshotOnce(ctx context.Context) error {
	snapshot := make(map[string]json.RawMessage, len(snapshotTables))
	for _, table := range snapshotTables {
		var data json.RawMessage
		query := fmt.Sprintf(`SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM %s t`, table)
		if err := w.pool.QueryRow(ctx, query).Scan(&data); err != nil {
			return fmt.Errorf("backup %s: %w", table, err)
		}
		snapshot[table] = data
	}

	payload, err := json.Marshal(map[string]any{
		"created_at": w.now().UTC().Format(time.RFC3339),
		"tables":     snapshot,
	})
	if err != nil {
		return err
	}

	name := backupFilePrefix + w.now().UTC().Format("20060102-150405") + ".json"
	path := filepath.Join(w.opts.Dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return err
	}
	w.logger.WithField("file", path).Info("backup snapshot written")

	return pruneSnapshots(w.opts.Dir, w.opts.Keep)
}

// pruneSnapshots removes the oldest snapshot files beyond keep. Snapshot
// names sort chronologically, so lexicographic order is enough.
func pruneSnapshots(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, backupFilePrefix) && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) <= keep {
		return nil
	}

	sort.Strings(names)
	var errs []error
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
