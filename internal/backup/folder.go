// Package backup snapshots the game installation folder and mirrors backup
// files to a blob store.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/timeutil"
)

// FolderPrefix starts the name of every folder snapshot.
const FolderPrefix = "pes_backup_"

// Folder copies the game folder into <Dir>/pes_backup_YYYYMMDD_HHMMSS.
type Folder struct {
	Source string
	Dir    string
	// Retention keeps this many snapshots; 0 keeps all.
	Retention int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Run takes one snapshot and returns its path. A missing source folder is
// logged and yields "" with no error.
func (f Folder) Run(ctx context.Context) (string, error) {
	log := logging.FromContext(ctx, f.Logger)
	ok, err := fsutil.Exists(f.Source)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", f.Source, err)
	}
	if !ok {
		logging.Warn(log, "game folder not found, nothing to back up", logging.FieldPath, f.Source)
		return "", nil
	}
	if within(f.Dir, f.Source) {
		return "", fmt.Errorf("backup folder %s must not be inside %s", f.Dir, f.Source)
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	dest := filepath.Join(f.Dir, FolderPrefix+timeutil.Stamp(now()))
	existed, err := fsutil.Exists(dest)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", f.Source, err)
	}
	start := time.Now()
	n, err := fsutil.CopyTree(ctx, f.Source, dest)
	if err != nil {
		// a partial snapshot must not pass for a complete one
		if !existed {
			if rmErr := os.RemoveAll(dest); rmErr != nil {
				logging.Warn(log, "partial backup left behind", logging.FieldPath, dest, "error", rmErr)
			}
		}
		return "", fmt.Errorf("backup %s: %w", f.Source, err)
	}
	logging.Info(log, "backup created",
		logging.FieldPath, dest,
		logging.FieldCount, n,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if removed, err := fsutil.Prune(ctx, f.Dir, FolderPrefix, f.Retention); err != nil {
		logging.Warn(log, "backup pruning failed", logging.FieldPath, f.Dir, "error", err)
	} else if len(removed) > 0 {
		logging.Info(log, "old backups removed", logging.FieldCount, len(removed))
	}
	return dest, nil
}

// within reports whether path is root or below it.
func within(path, root string) bool {
	p, err1 := filepath.Abs(path)
	r, err2 := filepath.Abs(root)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(r, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
