package playerdb

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	apptransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/app/transfers"
)

// ErrNoTransferFile is returned when the transfer directory holds no batch.
var ErrNoTransferFile = errors.New("no transfer batch found")

// ErrNoStore is returned when the player store file does not exist.
var ErrNoStore = errors.New("player store not found")

// LatestBatch returns the most recently modified transfers_*.csv in dir.
// Equal modification times are broken by name so the result is stable.
func LatestBatch(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, apptransfers.BatchPattern))
	if err != nil {
		return "", err
	}

	var (
		best     string
		bestInfo fs.FileInfo
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if bestInfo == nil ||
			info.ModTime().After(bestInfo.ModTime()) ||
			(info.ModTime().Equal(bestInfo.ModTime()) && path > best) {
			best, bestInfo = path, info
		}
	}
	if best == "" {
		return "", ErrNoTransferFile
	}
	return best, nil
}
