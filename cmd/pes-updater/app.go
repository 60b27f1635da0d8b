package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	apptransfers "github.com/GOLDENPLIX/pes-2013-updater/internal/app/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/assets"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/backup"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/blob"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/cache"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/config"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/metrics"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/packager"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/pipeline"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/playerdb"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers/fixture"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/providers/footballdata"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/server"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

// app holds what every command shares: configuration, the logger and the
// metrics recorder. Components are built per command from it.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	promHTTP http.Handler

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config) *app {
	logger, closeLog := logging.Open(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		File:    cfg.Logging.File,
		Service: cfg.Metrics.ServiceName,
		Version: appVersion,
		Output:  os.Stderr,
	})
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func(context.Context) error { return closeLog() })

	recorder, handler, stop := server.SetupMetrics(ctx, cfg, logger)
	a.recorder, a.promHTTP = recorder, handler
	if stop != nil {
		a.closers = append(a.closers, stop)
	}
	return a
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logging.Warn(a.logger, "shutdown step failed", "error", err)
		}
	}
}

func (a *app) sources() []providers.TransferSource {
	var out []providers.TransferSource
	for _, name := range a.cfg.Transfers.Sources {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "footballdata":
			out = append(out, footballdata.NewSources(footballdata.Config{
				BaseURL: a.cfg.FootballData.BaseURL,
				APIKey:  a.cfg.FootballData.APIKey,
			}, a.cfg.FootballData.Competitions, a.logger)...)
		case "fixture":
			out = append(out, fixture.New())
		default:
			logging.Warn(a.logger, "unknown transfer source ignored", logging.FieldProvider, name)
		}
	}
	for i, src := range out {
		out[i] = providers.NewInstrumentedSource(src, a.logger, a.recorder)
	}
	return out
}

// processor is built per run so its in-memory memo never outlives one update.
func (a *app) processor() *apptransfers.Processor {
	return apptransfers.NewProcessor(apptransfers.Config{
		Sources:   a.sources(),
		Cache:     cache.NewFSStore(a.cfg.Transfers.CacheDir, a.cfg.Transfers.CacheTTL),
		CacheFile: cache.DefaultFile,
		DataDir:   a.cfg.Transfers.DataDir,
		Logger:    a.logger,
	})
}

func (a *app) mirror(ctx context.Context) (*backup.Mirror, error) {
	st, err := blob.Open(ctx, a.cfg.Backup.Mirror)
	if err != nil {
		return nil, fmt.Errorf("open backup mirror: %w", err)
	}
	return backup.NewMirror(st, backup.MirrorConfig{
		Prefix:    a.cfg.Backup.Mirror.Prefix,
		Compress:  a.cfg.Backup.Mirror.Compress,
		Retention: a.cfg.Backup.Retention,
		Logger:    a.logger,
	}), nil
}

func (a *app) updater(ctx context.Context) (*playerdb.Updater, error) {
	m, err := a.mirror(ctx)
	if err != nil {
		return nil, err
	}
	cfg := playerdb.Config{
		StorePath:   a.cfg.Paths.PlayerStore,
		BackupDir:   a.cfg.Paths.DBBackupDir,
		TransferDir: a.cfg.Transfers.DataDir,
		Retention:   a.cfg.Backup.Retention,
		Recorder:    a.recorder,
		Logger:      a.logger,
	}
	if m != nil {
		cfg.Archiver = m
	}
	return playerdb.New(cfg), nil
}

func (a *app) folderBackup() backup.Folder {
	return backup.Folder{
		Source:    a.cfg.Paths.PESFolder,
		Dir:       a.cfg.Paths.BackupDir,
		Retention: a.cfg.Backup.Retention,
		Logger:    a.logger,
	}
}

func (a *app) dispatcher() *assets.Dispatcher {
	return assets.NewDispatcher(assets.DispatcherConfig{
		Downloader: assets.NewFetcher(assets.FetcherConfig{
			Attempts: a.cfg.Assets.Attempts,
			Delay:    a.cfg.Assets.Delay,
			Logger:   a.logger,
		}),
		Workers:     a.cfg.Assets.Workers,
		LogoBaseURL: a.cfg.Assets.LogoBaseURL,
		KitBaseURL:  a.cfg.Assets.KitBaseURL,
		LogoFolder:  a.cfg.Paths.LogoFolder,
		KitFolder:   a.cfg.Paths.KitFolder,
		Normalizer:  assets.NewNormalizer(a.cfg.Assets.MaxDimension),
		Recorder:    a.recorder,
		Logger:      a.logger,
	})
}

func (a *app) copier() assets.Copier {
	return assets.Copier{
		KitFolder:  a.cfg.Paths.KitFolder,
		LogoFolder: a.cfg.Paths.LogoFolder,
		PESFolder:  a.cfg.Paths.PESFolder,
		Logger:     a.logger,
	}
}

func (a *app) packager() packager.Packager {
	return packager.Packager{
		OutputDir:   a.cfg.Paths.PackageDir,
		TransferDir: a.cfg.Transfers.DataDir,
		KitFolder:   a.cfg.Paths.KitFolder,
		LogoFolder:  a.cfg.Paths.LogoFolder,
		Retention:   a.cfg.Backup.Retention,
		Logger:      a.logger,
	}
}

func (a *app) journal(ctx context.Context) (store.Journal, error) {
	j, err := store.Open(ctx, a.cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	return j, nil
}

func (a *app) pipeline(ctx context.Context, journal store.Journal) (*pipeline.Pipeline, error) {
	updater, err := a.updater(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Backup:    a.folderBackup(),
		Transfers: a.processor(),
		Database:  updater,
		Downloads: a.dispatcher(),
		Installer: a.copier(),
		Teams:     a.cfg.Assets.Teams,
		Attempts:  a.cfg.Retry.Attempts,
		BaseDelay: a.cfg.Retry.BaseDelay,
		Journal:   journal,
		Recorder:  a.recorder,
		Logger:    a.logger,
	}), nil
}

func checksFor(opts pipeline.Options) config.Check {
	if !opts.Transfers && !opts.Database && !opts.Assets {
		return config.CheckAll
	}
	checks := config.CheckBackup
	if opts.Transfers {
		checks |= config.CheckTransfers
	}
	if opts.Database {
		checks |= config.CheckDatabase
	}
	if opts.Assets {
		checks |= config.CheckAssets
	}
	return checks
}
