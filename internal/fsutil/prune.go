package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Prune keeps the newest keep entries of dir whose names start with prefix
// and removes the rest. Entries are ordered by name, which for the
// YYYYMMDD_HHMMSS stamps used by backups is chronological. keep <= 0 keeps
// everything. It returns the removed paths.
func Prune(ctx context.Context, dir, prefix string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil, nil
	}
	slices.Sort(names)

	var removed []string
	for _, name := range names[:len(names)-keep] {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		path := filepath.Join(dir, name)
		if err := os.RemoveAll(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
