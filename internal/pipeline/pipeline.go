package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/assets"
	domaintransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/playerdb"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/retry"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

// FolderBackup snapshots the game folder; backup.Folder satisfies it.
type FolderBackup interface {
	Run(ctx context.Context) (string, error)
}

// TransferFetcher is the part of transfers.Processor the pipeline uses.
type TransferFetcher interface {
	FetchTransferData(ctx context.Context) domaintransfers.RecordSet
	SaveBatch(set domaintransfers.RecordSet) (string, error)
}

// DatabaseUpdater applies a batch to the player store.
type DatabaseUpdater interface {
	Run(ctx context.Context, transfersPath string) (playerdb.Result, error)
}

// AssetDownloader fetches kits and logos for a list of teams.
type AssetDownloader interface {
	FetchAll(ctx context.Context, teams []string) map[string]*assets.TeamResult
}

// AssetInstaller copies the asset folders into the game folder.
type AssetInstaller interface {
	Copy(ctx context.Context) (assets.CopyResult, error)
}

// Config wires a Pipeline. A nil component skips its step.
type Config struct {
	Backup    FolderBackup
	Transfers TransferFetcher
	Database  DatabaseUpdater
	Downloads AssetDownloader
	Installer AssetInstaller
	Teams     []string

	Attempts  int
	BaseDelay time.Duration

	Journal  store.Journal
	Recorder *metrics.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline runs the update steps in order.
type Pipeline struct {
	cfg Config
}

// New constructs a Pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) now() time.Time {
	if p.cfg.Now != nil {
		return p.cfg.Now()
	}
	return time.Now()
}

type run struct {
	p      *Pipeline
	ctx    context.Context
	logger *slog.Logger
	report *Report
}

// Run executes the selected steps. The folder backup always runs first.
// Completed steps are not rolled back when a later one fails.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	opts = opts.normalize()
	start := time.Now()
	report := Report{StartedAt: p.now()}

	logger := p.cfg.Logger
	if p.cfg.Journal != nil {
		rec, err := p.cfg.Journal.StartRun(ctx, report.StartedAt)
		if err != nil {
			logging.Warn(logger, "run journal unavailable", "error", err)
		} else {
			report.RunID = rec.ID
			if logger != nil {
				logger = logger.With(logging.FieldRunID, rec.ID)
			}
		}
	}
	r := &run{p: p, ctx: logging.WithLogger(ctx, logger), logger: logger, report: &report}

	logging.Info(logger, "update started",
		"transfers", opts.Transfers,
		"database", opts.Database,
		"assets", opts.Assets,
	)
	err := r.execute(opts)

	report.FinishedAt = p.now()
	p.cfg.Recorder.RecordPipelineRun(time.Since(start), err)
	if p.cfg.Journal != nil && report.RunID != "" {
		if jerr := p.cfg.Journal.FinishRun(ctx, report.RunID, report.FinishedAt, err); jerr != nil {
			logging.Warn(logger, "run journal finish failed", "error", jerr)
		}
	}
	if err != nil {
		logging.Error(logger, "update aborted", err, logging.FieldDurationMS, time.Since(start).Milliseconds())
		return report, err
	}
	logging.Info(logger, "update completed", logging.FieldDurationMS, time.Since(start).Milliseconds())
	return report, nil
}

func (r *run) execute(opts Options) error {
	cfg := r.p.cfg

	if err := r.step(StepBackup, cfg.Backup != nil, r.backup); err != nil {
		return err
	}

	fetched := false
	if opts.Transfers {
		if err := r.step(StepFetchTransfers, cfg.Transfers != nil, r.fetchTransfers); err != nil {
			return err
		}
		fetched = true
	}

	if opts.Database {
		// A fetch that produced nothing leaves no batch worth applying.
		enabled := cfg.Database != nil && (!fetched || r.report.BatchPath != "")
		if fetched && r.report.BatchPath == "" {
			logging.Warn(r.logger, "no transfers fetched, skipping database update")
		}
		if err := r.step(StepUpdateDatabase, enabled, r.updateDatabase); err != nil {
			return err
		}
	}

	if opts.Assets {
		enabled := cfg.Installer != nil || (cfg.Downloads != nil && len(cfg.Teams) > 0)
		if err := r.step(StepCopyAssets, enabled, r.copyAssets); err != nil {
			return err
		}
	}
	return nil
}

// step runs fn through the retry policy and journals the outcome.
func (r *run) step(name string, enabled bool, fn func(ctx context.Context, attempt int) error) error {
	cfg := r.p.cfg
	rec := store.Step{Name: name, StartedAt: r.p.now()}
	if !enabled {
		rec.Status = store.StatusSkipped
		rec.FinishedAt = rec.StartedAt
		r.record(rec)
		logging.Debug(r.logger, "step skipped", logging.FieldStep, name)
		return nil
	}

	logging.Info(r.logger, "step started", logging.FieldStep, name)
	policy := retry.Exponential(cfg.Attempts, cfg.BaseDelay).Named(name, r.logger)
	err := retry.Do(r.ctx, policy, func(ctx context.Context, attempt int) error {
		rec.Attempts = attempt
		began := time.Now()
		err := fn(ctx, attempt)
		cfg.Recorder.RecordStepAttempt(name, time.Since(began), err)
		return err
	})
	rec.FinishedAt = r.p.now()
	rec.Status = store.StepStatus(err)
	if err != nil {
		rec.Error = err.Error()
	}
	r.record(rec)
	if err != nil {
		var exhausted *retry.Error
		if errors.As(err, &exhausted) {
			err = exhausted.Err
		}
		return &StepError{Step: name, Attempts: rec.Attempts, Err: err}
	}
	logging.Info(r.logger, "step completed",
		logging.FieldStep, name,
		logging.FieldAttempt, rec.Attempts,
		logging.FieldDurationMS, rec.FinishedAt.Sub(rec.StartedAt).Milliseconds(),
	)
	return nil
}

func (r *run) record(step store.Step) {
	r.report.Steps = append(r.report.Steps, step)
	j := r.p.cfg.Journal
	if j == nil || r.report.RunID == "" {
		return
	}
	if err := j.RecordStep(r.ctx, r.report.RunID, step); err != nil {
		logging.Warn(r.logger, "run journal step failed", logging.FieldStep, step.Name, "error", err)
	}
}

func (r *run) backup(ctx context.Context, _ int) error {
	path, err := r.p.cfg.Backup.Run(ctx)
	if err != nil {
		return err
	}
	r.report.BackupPath = path
	return nil
}

func (r *run) fetchTransfers(ctx context.Context, _ int) error {
	set := r.p.cfg.Transfers.FetchTransferData(ctx)
	r.report.Transfers = set.Len()
	if set.Empty() {
		return nil
	}
	path, err := r.p.cfg.Transfers.SaveBatch(set)
	if err != nil {
		return err
	}
	r.report.BatchPath = path
	return nil
}

func (r *run) updateDatabase(ctx context.Context, _ int) error {
	res, err := r.p.cfg.Database.Run(ctx, r.report.BatchPath)
	switch {
	case errors.Is(err, playerdb.ErrNoTransferFile), errors.Is(err, playerdb.ErrNoStore):
		return nil
	case errors.Is(err, playerdb.ErrMissingColumn):
		// a malformed file will not fix itself between attempts
		return retry.Permanent(err)
	case err != nil:
		return err
	}
	r.report.Database = res
	if !res.Updated() {
		logging.Warn(r.logger, "transfer batch was empty, player store unchanged", logging.FieldPath, res.TransfersPath)
	}
	return nil
}

func (r *run) copyAssets(ctx context.Context, attempt int) error {
	cfg := r.p.cfg
	// Downloads retry per file already; a retried step only repeats the copy.
	if attempt == 1 && cfg.Downloads != nil && len(cfg.Teams) > 0 {
		r.report.Assets = assets.Summarize(cfg.Downloads.FetchAll(ctx, cfg.Teams))
	}
	if cfg.Installer == nil {
		return nil
	}
	res, err := cfg.Installer.Copy(ctx)
	if err != nil {
		return err
	}
	r.report.Copied = res
	return nil
}
