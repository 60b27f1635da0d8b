package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/blob"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

// snappyExt marks mirrored objects stored in the snappy framing format.
const snappyExt = ".sz"

// MirrorConfig wires a Mirror.
type MirrorConfig struct {
	Prefix    string
	Compress  bool
	Retention int
	Logger    *slog.Logger
}

// Mirror uploads backup files to a blob store under a key prefix.
type Mirror struct {
	store blob.Store
	cfg   MirrorConfig
}

// NewMirror returns nil when store is nil, so callers can keep an optional
// mirror in a nil-able field.
func NewMirror(store blob.Store, cfg MirrorConfig) *Mirror {
	if store == nil {
		return nil
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Mirror{store: store, cfg: cfg}
}

// Key returns the object key used for a local backup file.
func (m *Mirror) Key(localPath string) string {
	name := filepath.Base(localPath)
	if m.cfg.Compress {
		name += snappyExt
	}
	if m.cfg.Prefix == "" {
		return name
	}
	return path.Join(m.cfg.Prefix, name)
}

// Archive uploads the file at localPath and prunes old mirrored copies.
func (m *Mirror) Archive(ctx context.Context, localPath string) error {
	if m == nil {
		return nil
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	opts := blob.PutOptions{Metadata: map[string]string{"source": filepath.Base(localPath)}}
	if m.cfg.Compress {
		var buf bytes.Buffer
		w := snappy.NewBufferedWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
		opts.ContentType = "application/x-snappy-framed"
	}

	key := m.Key(localPath)
	info, err := m.store.Put(ctx, key, bytes.NewReader(data), opts)
	if err != nil {
		return fmt.Errorf("mirror %s: %w", localPath, err)
	}
	logging.Info(m.cfg.Logger, "backup mirrored",
		logging.FieldPath, localPath,
		"key", info.Key,
		"driver", string(m.store.Driver()),
		"bytes", info.Size,
	)
	return m.prune(ctx, filepath.Base(localPath))
}

// Restore downloads a mirrored object to dest, decompressing when needed.
func (m *Mirror) Restore(ctx context.Context, key, dest string) error {
	_, rc, err := m.store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(key, snappyExt) {
		r = snappy.NewReader(rc)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// prune keeps the newest Retention objects that share the uploaded file's
// name prefix (everything before the timestamp).
func (m *Mirror) prune(ctx context.Context, name string) error {
	if m.cfg.Retention <= 0 {
		return nil
	}
	family := familyPrefix(name)
	listPrefix := family
	if m.cfg.Prefix != "" {
		listPrefix = m.cfg.Prefix + "/" + family
	}
	infos, err := m.store.List(ctx, listPrefix)
	if err != nil {
		return fmt.Errorf("list mirror: %w", err)
	}
	if len(infos) <= m.cfg.Retention {
		return nil
	}
	for _, info := range infos[:len(infos)-m.cfg.Retention] {
		if _, err := m.store.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("prune mirror: %w", err)
		}
		logging.Debug(m.cfg.Logger, "mirrored backup removed", "key", info.Key)
	}
	return nil
}

// familyPrefix strips the trailing YYYYMMDD_HHMMSS stamp and extension,
// e.g. "pes_database_backup_20240101_000000.csv" -> "pes_database_backup_".
func familyPrefix(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return base
	}
	return strings.Join(parts[:len(parts)-2], "_") + "_"
}
