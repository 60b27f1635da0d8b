package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/testutil"
)

func TestFolderRunCopiesTree(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "PES2013")
	testutil.WriteFile(t, src, "img/dt/kits.bin", "kits")
	testutil.WriteFile(t, src, "settings.dat", "cfg")

	f := Folder{
		Source: src,
		Dir:    filepath.Join(root, "backups"),
		Now:    testutil.NowAt(testutil.MustParseRFC3339("2024-06-01T08:00:00Z")),
	}
	dest, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if filepath.Base(dest) != "pes_backup_20240601_080000" {
		t.Fatalf("unexpected snapshot name %s", dest)
	}
	if got := testutil.ReadFile(t, filepath.Join(dest, "img", "dt", "kits.bin")); got != "kits" {
		t.Fatalf("unexpected copied content %q", got)
	}
}

func TestFolderRunMissingSourceIsNotFatal(t *testing.T) {
	root := t.TempDir()
	f := Folder{Source: filepath.Join(root, "missing"), Dir: filepath.Join(root, "backups")}
	dest, err := f.Run(context.Background())
	if err != nil || dest != "" {
		t.Fatalf("expected (\"\", nil), got (%q, %v)", dest, err)
	}
	if _, err := os.Stat(f.Dir); !os.IsNotExist(err) {
		t.Fatalf("backup dir should not be created")
	}
}

// cancelAfter reports cancellation once Err has been asked more than limit times.
type cancelAfter struct {
	context.Context
	limit int32
	calls atomic.Int32
}

func (c *cancelAfter) Err() error {
	if c.calls.Add(1) > c.limit {
		return context.Canceled
	}
	return nil
}

func TestFolderRunRemovesPartialSnapshot(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "PES2013")
	for _, name := range []string{"a.bin", "b.bin", "c.bin", "d.bin", "e.bin"} {
		testutil.WriteFile(t, src, "data/"+name, name)
	}
	f := Folder{Source: src, Dir: filepath.Join(root, "backups")}

	ctx := &cancelAfter{Context: context.Background(), limit: 2}
	if _, err := f.Run(ctx); err == nil {
		t.Fatalf("expected the interrupted copy to fail")
	}
	entries, err := os.ReadDir(f.Dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read backups: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no partial snapshot, found %v", entries)
	}
}

func TestFolderRunRejectsNestedBackupDir(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, src, "a", "x")
	f := Folder{Source: src, Dir: filepath.Join(src, "backups")}
	if _, err := f.Run(context.Background()); err == nil {
		t.Fatalf("expected error for backup dir inside source")
	}
}

func TestFolderRunAppliesRetention(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "PES")
	testutil.WriteFile(t, src, "a", "x")
	dir := filepath.Join(root, "backups")

	clock := testutil.NewClock(testutil.MustParseRFC3339("2024-06-01T08:00:00Z"))
	f := Folder{Source: src, Dir: dir, Retention: 2, Now: clock.Now}
	for i := 0; i < 3; i++ {
		if _, err := f.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		clock.Advance(30 * time.Minute)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 || entries[0].Name() != "pes_backup_20240601_083000" {
		t.Fatalf("unexpected snapshots %v", entries)
	}
}

func TestWithin(t *testing.T) {
	if !within("/a/b/c", "/a/b") || !within("/a/b", "/a/b") {
		t.Fatalf("expected nested paths to be within")
	}
	if within("/a/bc", "/a/b") || within("/x", "/a") {
		t.Fatalf("expected sibling paths to be outside")
	}
}
