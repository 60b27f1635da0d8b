package playerdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

type recordingArchiver struct {
	paths []string
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, path string) error {
	a.paths = append(a.paths, path)
	return a.err
}

func TestBackupMissingStoreCreatesNothing(t *testing.T) {
	f := newFixture(t)

	path, err := f.updater().Backup(context.Background(), f.store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
	if _, err := os.Stat(f.backups); !os.IsNotExist(err) {
		t.Fatalf("backup dir should not be created, stat err=%v", err)
	}
}

func TestBackupIsByteIdenticalAndTimestamped(t *testing.T) {
	f := newFixture(t)
	content := "name,team,notes\nJohn Doe,Old Team,\"quoted, cell\"\n"
	testutil.WriteFile(t, filepath.Dir(f.store), "players.csv", content)

	path, err := f.updater().Backup(context.Background(), f.store)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if filepath.Dir(path) != f.backups {
		t.Fatalf("expected backup in %s, got %s", f.backups, path)
	}
	base := filepath.Base(path)
	if base != "pes_database_backup_20240305_102030.csv" {
		t.Fatalf("unexpected backup name %s", base)
	}
	if !strings.HasSuffix(base, filepath.Ext(f.store)) {
		t.Fatalf("backup should keep the store extension")
	}
	if got := testutil.ReadFile(t, path); got != content {
		t.Fatalf("backup differs from store: %q", got)
	}
}

func TestBackupDefaultsToConfiguredStore(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, filepath.Dir(f.store), "players.csv", "name,team\n")
	path, err := f.updater().Backup(context.Background(), "")
	if err != nil || path == "" {
		t.Fatalf("expected backup of configured store, got %q %v", path, err)
	}
}

func TestBackupArchivesAndPrunes(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, filepath.Dir(f.store), "players.csv", "name,team\n")
	testutil.WriteFile(t, f.backups, "pes_database_backup_20200101_000000.csv", "old")
	testutil.WriteFile(t, f.backups, "pes_database_backup_20210101_000000.csv", "old")
	archiver := &recordingArchiver{err: errors.New("mirror offline")}

	u := f.updater(func(c *Config) {
		c.Retention = 2
		c.Archiver = archiver
	})
	path, err := u.Backup(context.Background(), f.store)
	if err != nil {
		t.Fatalf("mirror failures must not fail the backup: %v", err)
	}
	if len(archiver.paths) != 1 || archiver.paths[0] != path {
		t.Fatalf("expected archiver to receive %s, got %v", path, archiver.paths)
	}

	entries, err := os.ReadDir(f.backups)
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 backups after pruning, got %d", len(entries))
	}
	if entries[0].Name() != "pes_database_backup_20210101_000000.csv" {
		t.Fatalf("expected oldest backup removed, got %s", entries[0].Name())
	}
}

func TestBackupCopyFailureIsReturned(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	f := newFixture(t)
	testutil.WriteFile(t, filepath.Dir(f.store), "players.csv", "name,team\n")
	if err := os.MkdirAll(f.backups, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(f.backups, 0o755) })

	if _, err := f.updater().Backup(context.Background(), f.store); err == nil {
		t.Fatalf("expected permission error")
	}
}

func TestLatestBatchEmptyDir(t *testing.T) {
	if _, err := LatestBatch(t.TempDir()); !errors.Is(err, ErrNoTransferFile) {
		t.Fatalf("expected ErrNoTransferFile, got %v", err)
	}
}
