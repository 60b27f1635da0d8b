// Package playerdb rewrites the player store CSV with transfer batches.
package playerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/csvtable"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/fsutil"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
)

// Archiver receives every new backup file, e.g. to mirror it off-machine.
type Archiver interface {
	Archive(ctx context.Context, path string) error
}

// Config wires an Updater.
type Config struct {
	StorePath   string
	BackupDir   string
	TransferDir string
	// Retention keeps this many store backups; 0 keeps all.
	Retention int
	Archiver  Archiver
	Recorder  *metrics.Recorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Result describes one update.
type Result struct {
	TransfersPath string
	BackupPath    string
	Rows          int
	Transfers     int
	Matched       int
}

// Updated reports whether the batch carried any transfers.
func (r Result) Updated() bool { return r.Transfers > 0 }

// Updater applies transfer batches to the player store.
type Updater struct {
	cfg   Config
	state atomic.Int32
}

// New constructs an Updater.
func New(cfg Config) *Updater {
	return &Updater{cfg: cfg}
}

// State reports where the current or last update is.
func (u *Updater) State() State {
	return State(u.state.Load())
}

func (u *Updater) setState(s State) {
	u.state.Store(int32(s))
	logging.Debug(u.cfg.Logger, "player store state", "state", s.String())
}

func (u *Updater) now() time.Time {
	if u.cfg.Now != nil {
		return u.cfg.Now()
	}
	return time.Now()
}

func (u *Updater) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, u.cfg.Logger)
}

// Update applies the batch at transfersPath, or the newest batch in the
// transfer directory when transfersPath is empty. It reports false when there
// is no store, no batch or the batch has no records; true otherwise, even if
// no transfer matched a player.
func (u *Updater) Update(ctx context.Context, transfersPath string) (bool, error) {
	res, err := u.Run(ctx, transfersPath)
	if err != nil {
		if errors.Is(err, ErrNoTransferFile) || errors.Is(err, ErrNoStore) {
			return false, nil
		}
		return false, err
	}
	return res.Updated(), nil
}

// Run is Update with the details of what happened.
func (u *Updater) Run(ctx context.Context, transfersPath string) (Result, error) {
	defer u.setState(StateIdle)
	log := u.logger(ctx)

	if transfersPath == "" {
		latest, err := LatestBatch(u.cfg.TransferDir)
		if err != nil {
			logging.Warn(log, "no transfer data found for database update", logging.FieldPath, u.cfg.TransferDir)
			return Result{}, err
		}
		transfersPath = latest
	} else if ok, err := fsutil.Exists(transfersPath); err != nil {
		return Result{}, err
	} else if !ok {
		logging.Warn(log, "transfer batch not found", logging.FieldPath, transfersPath)
		return Result{}, fmt.Errorf("%w: %s", ErrNoTransferFile, transfersPath)
	}
	res := Result{TransfersPath: transfersPath}

	if ok, err := fsutil.Exists(u.cfg.StorePath); err != nil {
		return res, err
	} else if !ok {
		logging.Warn(log, "player store not found, nothing to update", logging.FieldPath, u.cfg.StorePath)
		return res, fmt.Errorf("%w: %s", ErrNoStore, u.cfg.StorePath)
	}

	backupPath, err := u.Backup(ctx, u.cfg.StorePath)
	if err != nil {
		return res, err
	}
	res.BackupPath = backupPath
	u.setState(StateBackedUp)

	store, err := csvtable.Read(u.cfg.StorePath)
	if err != nil {
		return res, fmt.Errorf("read player store: %w", err)
	}
	batch, err := csvtable.Read(transfersPath)
	if err != nil {
		return res, fmt.Errorf("read transfer batch: %w", err)
	}
	if err := store.Require(ColumnName, ColumnTeam); err != nil {
		return res, fmt.Errorf("player store %s: %w", u.cfg.StorePath, err)
	}
	if err := batch.Require(batchColumns...); err != nil {
		return res, fmt.Errorf("transfer batch %s: %w", transfersPath, err)
	}
	res.Rows = store.Len()
	res.Transfers = batch.Len()
	u.setState(StateRead)

	if batch.Len() == 0 {
		logging.Warn(log, "transfer batch has no records", logging.FieldPath, transfersPath)
		return res, nil
	}

	matched, err := Apply(store, batch)
	if err != nil {
		return res, fmt.Errorf("apply %s: %w", transfersPath, err)
	}
	res.Matched = matched
	u.setState(StateMerged)

	if err := store.Write(u.cfg.StorePath); err != nil {
		return res, fmt.Errorf("write player store: %w", err)
	}
	u.setState(StateWritten)

	u.cfg.Recorder.RecordDatabaseUpdate(res.Transfers, res.Matched)
	logging.Info(log, "player store updated",
		logging.FieldPath, u.cfg.StorePath,
		logging.FieldCount, res.Transfers,
		logging.FieldMatched, res.Matched,
		"rows", res.Rows,
	)
	return res, nil
}
