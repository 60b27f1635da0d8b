package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/assets"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/config"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/pipeline"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/schedule"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/server"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/store"
)

type rootFlags struct {
	envFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		a     *app
	)
	root := &cobra.Command{
		Use:           "pes-updater",
		Short:         "Keep a PES 2013 install current with transfers, kits and logos",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(flags.envFile)
			if err != nil {
				return fmt.Errorf("load %s: %w", flags.envFile, err)
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}
			if flags.logFormat != "" {
				cfg.Logging.Format = flags.logFormat
			}
			a = newApp(cmd.Context(), cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close(context.Background())
			}
		},
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file merged into the environment")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "text|json (overrides LOG_FORMAT)")

	get := func() *app { return a }
	root.AddCommand(
		runCmd(get),
		backupCmd(get),
		transfersCmd(get),
		databaseCmd(get),
		assetsCmd(get),
		packageCmd(get),
		scheduleCmd(get),
		runsCmd(get),
	)
	return root
}

func runCmd(get func() *app) *cobra.Command {
	var opts pipeline.Options
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Back up, fetch transfers, update the player store and install assets",
		Long:  "Runs the selected steps in order. With no step flags every step runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(checksFor(opts)); err != nil {
				return err
			}
			ctx := cmd.Context()
			journal, err := a.journal(ctx)
			if err != nil {
				return err
			}
			defer journal.Close()
			p, err := a.pipeline(ctx, journal)
			if err != nil {
				return err
			}
			report, err := p.Run(ctx, opts)
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.Transfers, "transfers", false, "fetch transfers")
	cmd.Flags().BoolVar(&opts.Database, "database", false, "update the player store")
	cmd.Flags().BoolVar(&opts.Assets, "assets", false, "download and install kits and logos")
	return cmd
}

func backupCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the game folder and the player store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(config.CheckBackup); err != nil {
				return err
			}
			ctx := cmd.Context()
			folder, err := a.folderBackup().Run(ctx)
			if err != nil {
				return err
			}
			updater, err := a.updater(ctx)
			if err != nil {
				return err
			}
			dbBackup, err := updater.Backup(ctx, a.cfg.Paths.PlayerStore)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "game folder: %s\nplayer store: %s\n", orNone(folder), orNone(dbBackup))
			return nil
		},
	}
	cmd.AddCommand(restoreCmd(get))
	return cmd
}

func restoreCmd(get func() *app) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "restore KEY",
		Short: "Download a mirrored player store backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			m, err := a.mirror(cmd.Context())
			if err != nil {
				return err
			}
			if m == nil {
				return errors.New("no backup mirror configured (BACKUP_MIRROR_DRIVER)")
			}
			if dest == "" {
				dest = filepath.Join(a.cfg.Paths.DBBackupDir, "restored_"+filepath.Base(args[0]))
			}
			if err := m.Restore(cmd.Context(), args[0], dest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "where to write the restored file")
	return cmd
}

func transfersCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfers",
		Short: "Fetch transfers and save them as a new batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(config.CheckTransfers); err != nil {
				return err
			}
			p := a.processor()
			set := p.FetchTransferData(cmd.Context())
			if set.Empty() {
				logging.Warn(a.logger, "no transfers fetched")
				return nil
			}
			path, err := p.SaveBatch(set)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d transfers saved to %s\n", set.Len(), path)
			return nil
		},
	}
}

func databaseCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Player store maintenance",
	}
	var file string
	update := &cobra.Command{
		Use:   "update",
		Short: "Apply a transfer batch to the player store",
		Long:  "Applies --file, or the newest transfers_*.csv in TRANSFER_DATA_DIR.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(config.CheckDatabase); err != nil {
				return err
			}
			updater, err := a.updater(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := updater.Update(cmd.Context(), file)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no transfers applied")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "player store updated")
			return nil
		},
	}
	update.Flags().StringVar(&file, "file", "", "transfer batch to apply")
	cmd.AddCommand(update)
	return cmd
}

func assetsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Team kits and logos",
	}
	var teams []string
	download := &cobra.Command{
		Use:   "download",
		Short: "Download kits and logos for DOWNLOAD_TEAMS (or --team)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if len(teams) == 0 {
				teams = a.cfg.Assets.Teams
			}
			if len(teams) == 0 {
				return errors.New("no teams given (DOWNLOAD_TEAMS or --team)")
			}
			if a.cfg.Assets.LogoBaseURL == "" || a.cfg.Assets.KitBaseURL == "" {
				return errors.New("LOGO_BASE_URL and KIT_BASE_URL are required")
			}
			report := assets.Summarize(a.dispatcher().FetchAll(cmd.Context(), teams))
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d teams complete, %d partial, %d failed\n",
				report.Full, report.Total, report.Partial, report.Failed)
			if report.Total > 0 && report.Failed == report.Total {
				return errors.New("every team failed to download")
			}
			return nil
		},
	}
	download.Flags().StringSliceVar(&teams, "team", nil, "team to download (repeatable)")

	install := &cobra.Command{
		Use:   "copy",
		Short: "Copy the kit and logo folders into the game folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(config.CheckAssets); err != nil {
				return err
			}
			res, err := a.copier().Copy(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d kits, %d logos copied\n", res.Kits, res.Logos)
			return nil
		},
	}
	cmd.AddCommand(download, install)
	return cmd
}

func packageCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "package",
		Short: "Zip the newest transfer batch with the kits and logos",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := get().packager().Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d files)\n", res.Path, res.Entries)
			return nil
		},
	}
}

func scheduleCmd(get func() *app) *cobra.Command {
	var opts pipeline.Options
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the update every SCHEDULE_INTERVAL and serve status on STATUS_PORT",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.cfg.Validate(checksFor(opts)); err != nil {
				return err
			}
			ctx, stop := context.WithCancel(cmd.Context())
			defer stop()

			journal, err := a.journal(ctx)
			if err != nil {
				return err
			}
			defer journal.Close()

			sched := schedule.New(func(ctx context.Context) error {
				p, err := a.pipeline(ctx, journal)
				if err != nil {
					return err
				}
				_, err = p.Run(ctx, opts)
				return err
			}, a.logger, a.cfg.Schedule.Interval)

			srv := server.New(a.cfg, a.logger, server.Deps{
				Scheduler:      sched,
				Journal:        journal,
				Recorder:       a.recorder,
				MetricsHandler: a.promHTTP,
			})
			srv.Run(ctx, stop)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Transfers, "transfers", false, "fetch transfers")
	cmd.Flags().BoolVar(&opts.Database, "database", false, "update the player store")
	cmd.Flags().BoolVar(&opts.Assets, "assets", false, "download and install kits and logos")
	return cmd
}

func runsCmd(get func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the run journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := get().journal(cmd.Context())
			if err != nil {
				return err
			}
			defer journal.Close()
			runs, err := journal.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func printReport(w io.Writer, r pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSTATUS\tATTEMPTS\tERROR")
	for _, s := range r.Steps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Status, s.Attempts, s.Error)
	}
	_ = tw.Flush()
	if r.Database.Transfers > 0 {
		fmt.Fprintf(w, "player store: %d rows, %d transfers, %d matched\n", r.Database.Rows, r.Database.Transfers, r.Database.Matched)
	}
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tDURATION\tSTEPS\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status,
			r.Duration().Round(time.Second), len(r.Steps), r.Error)
	}
	_ = tw.Flush()
}

func orNone(path string) string {
	if path == "" {
		return "(nothing to back up)"
	}
	return path
}
