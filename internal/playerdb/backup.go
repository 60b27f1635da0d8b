package playerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/timeutil"
)

// BackupPrefix starts the name of every store backup.
const BackupPrefix = "pes_database_backup_"

// BackupName returns the backup file name for a store at the given stamp,
// keeping the store's extension.
func BackupName(storePath, stamp string) string {
	return BackupPrefix + stamp + filepath.Ext(storePath)
}

// Backup copies the store into the backup directory under a timestamped name
// and returns the new path. A missing store is logged and yields "" without
// creating anything. Copy failures are returned.
func (u *Updater) Backup(ctx context.Context, storePath string) (string, error) {
	if storePath == "" {
		storePath = u.cfg.StorePath
	}
	ok, err := fsutil.Exists(storePath)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", storePath, err)
	}
	if !ok {
		logging.Warn(u.logger(ctx), "player store not found, nothing to back up", logging.FieldPath, storePath)
		return "", nil
	}

	dest := filepath.Join(u.cfg.BackupDir, BackupName(storePath, timeutil.Stamp(u.now())))
	if err := fsutil.CopyFile(ctx, storePath, dest); err != nil {
		return "", fmt.Errorf("backup %s: %w", storePath, err)
	}
	logging.Info(u.logger(ctx), "player store backup created", logging.FieldPath, dest)

	if u.cfg.Archiver != nil {
		if err := u.cfg.Archiver.Archive(ctx, dest); err != nil {
			logging.Warn(u.logger(ctx), "backup mirror failed", logging.FieldPath, dest, "error", err)
		}
	}
	if removed, err := fsutil.Prune(ctx, u.cfg.BackupDir, BackupPrefix, u.cfg.Retention); err != nil {
		logging.Warn(u.logger(ctx), "backup pruning failed", logging.FieldPath, u.cfg.BackupDir, "error", err)
	} else if len(removed) > 0 {
		logging.Info(u.logger(ctx), "old store backups removed", logging.FieldCount, len(removed))
	}
	return dest, nil
}
