// Package packager bundles the latest transfer batch and the team assets into
// a zip that can be copied to another machine running the game.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/playerdb"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/timeutil"
)

// Prefix starts every package file name.
const Prefix = "pes_update_"

// ErrNothingToPackage is returned when there is no batch and no asset.
var ErrNothingToPackage = errors.New("nothing to package")

// Packager writes <OutputDir>/pes_update_YYYYMMDD_HHMMSS.zip with the
// entries transfers/<batch>.csv, kits/... and logos/....
type Packager struct {
	OutputDir   string
	TransferDir string
	KitFolder   string
	LogoFolder  string
	// Retention keeps this many packages; 0 keeps all.
	Retention int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Result describes a written package.
type Result struct {
	Path    string
	Entries int
	Batch   string
}

type entry struct {
	src  string
	name string
}

// Build writes one package.
func (p Packager) Build(ctx context.Context) (Result, error) {
	log := logging.FromContext(ctx, p.Logger)
	var (
		res     Result
		entries []entry
	)

	batch, err := playerdb.LatestBatch(p.TransferDir)
	switch {
	case errors.Is(err, playerdb.ErrNoTransferFile):
		logging.Warn(log, "no transfer batch to package", logging.FieldPath, p.TransferDir)
	case err != nil:
		return res, err
	default:
		res.Batch = batch
		entries = append(entries, entry{src: batch, name: path.Join("transfers", filepath.Base(batch))})
	}

	for _, folder := range []struct{ dir, prefix string }{
		{p.KitFolder, "kits"},
		{p.LogoFolder, "logos"},
	} {
		found, err := collect(folder.dir, folder.prefix)
		if err != nil {
			return res, err
		}
		if len(found) == 0 {
			logging.Warn(log, "asset folder empty or missing", logging.FieldPath, folder.dir)
		}
		entries = append(entries, found...)
	}
	if len(entries) == 0 {
		return res, ErrNothingToPackage
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	res.Path = filepath.Join(p.OutputDir, Prefix+timeutil.Stamp(now())+".zip")
	if err := writeZip(ctx, res.Path, entries); err != nil {
		return Result{}, fmt.Errorf("write package: %w", err)
	}
	res.Entries = len(entries)
	logging.Info(log, "update package written", logging.FieldPath, res.Path, logging.FieldCount, res.Entries)

	if _, err := fsutil.Prune(ctx, p.OutputDir, Prefix, p.Retention); err != nil {
		logging.Warn(log, "package pruning failed", logging.FieldPath, p.OutputDir, "error", err)
	}
	return res, nil
}

// collect lists the regular files below dir as zip entries under prefix.
func collect(dir, prefix string) ([]entry, error) {
	if dir == "" {
		return nil, nil
	}
	ok, err := fsutil.Exists(dir)
	if err != nil || !ok {
		return nil, err
	}
	var out []entry
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, entry{src: p, name: path.Join(prefix, filepath.ToSlash(rel))})
		return nil
	})
	return out, err
}

func writeZip(ctx context.Context, dest string, entries []entry) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".package-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			tmp.Close()
			return err
		}
		if err := addFile(zw, e); err != nil {
			zw.Close()
			tmp.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func addFile(zw *zip.Writer, e entry) error {
	f, err := os.Open(e.src)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = e.name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
