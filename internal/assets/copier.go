package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

// Copier installs the kit and logo folders into the game folder as
// <PESFolder>/kits and <PESFolder>/logos. Existing files are overwritten.
type Copier struct {
	KitFolder  string
	LogoFolder string
	PESFolder  string
	Logger     *slog.Logger
}

// CopyResult counts the files copied per folder.
type CopyResult struct {
	Kits  int
	Logos int
}

// Copy copies both folders. A missing source folder is an error.
func (c Copier) Copy(ctx context.Context) (CopyResult, error) {
	var res CopyResult
	for _, job := range []struct {
		src, name string
		count     *int
	}{
		{c.KitFolder, "kits", &res.Kits},
		{c.LogoFolder, "logos", &res.Logos},
	} {
		ok, err := fsutil.Exists(job.src)
		if err != nil {
			return res, err
		}
		if !ok {
			return res, fmt.Errorf("copy %s: source folder %q does not exist", job.name, job.src)
		}
		n, err := fsutil.CopyTree(ctx, job.src, filepath.Join(c.PESFolder, job.name))
		if err != nil {
			return res, fmt.Errorf("copy %s: %w", job.name, err)
		}
		*job.count = n
	}
	logging.Info(c.Logger, "kits and logos updated",
		logging.FieldPath, c.PESFolder,
		"kits", res.Kits,
		"logos", res.Logos,
	)
	return res, nil
}
