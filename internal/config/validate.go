package config

import (
	"errors"
	"fmt"
	"slices"
)

// Check selects which parts of the configuration a command depends on.
type Check uint8

const (
	CheckTransfers Check = 1 << iota
	CheckDatabase
	CheckAssets
	CheckBackup

	CheckAll = CheckTransfers | CheckDatabase | CheckAssets | CheckBackup
)

var (
	mirrorDrivers  = []string{"", "none", "fs", "memory", "s3"}
	journalDrivers = []string{"", "none", "memory", "sqlite", "mysql", "postgres"}
)

// Validate reports every missing or invalid setting needed by the selected checks.
func (c Config) Validate(checks Check) error {
	var errs []error
	require := func(key, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	if checks&CheckTransfers != 0 {
		require(envTransferDataDir, c.Transfers.DataDir)
		if slices.Contains(c.Transfers.Sources, "footballdata") {
			require(envFootballDataKey, c.FootballData.APIKey)
		}
		if len(c.Transfers.Sources) == 0 {
			errs = append(errs, fmt.Errorf("%s must name at least one source", envTransferSources))
		}
	}
	if checks&CheckDatabase != 0 {
		require(envPlayerStore, c.Paths.PlayerStore)
		require(envDBBackupDir, c.Paths.DBBackupDir)
		require(envTransferDataDir, c.Transfers.DataDir)
	}
	if checks&CheckAssets != 0 {
		require(envPESFolder, c.Paths.PESFolder)
		require(envKitFolder, c.Paths.KitFolder)
		require(envLogoFolder, c.Paths.LogoFolder)
		if len(c.Assets.Teams) > 0 {
			require(envLogoBaseURL, c.Assets.LogoBaseURL)
			require(envKitBaseURL, c.Assets.KitBaseURL)
		}
	}
	if checks&CheckBackup != 0 {
		require(envPESFolder, c.Paths.PESFolder)
		require(envBackupDir, c.Paths.BackupDir)
	}

	if !slices.Contains(mirrorDrivers, c.Backup.Mirror.Driver) {
		errs = append(errs, fmt.Errorf("%s: unsupported driver %q", envMirrorDriver, c.Backup.Mirror.Driver))
	}
	if c.Backup.Mirror.Driver == "s3" {
		require(envMirrorBucket, c.Backup.Mirror.Bucket)
	}
	if !slices.Contains(journalDrivers, c.Journal.Driver) {
		errs = append(errs, fmt.Errorf("%s: unsupported driver %q", envJournalDriver, c.Journal.Driver))
	}

	return errors.Join(errs...)
}
