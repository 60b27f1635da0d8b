package config

// BackupConfig controls backup retention and the optional offsite mirror.
type BackupConfig struct {
	Retention int // backups kept per kind; 0 keeps everything
	Mirror    MirrorConfig
}

// MirrorConfig selects the blob driver backups are copied to.
type MirrorConfig struct {
	Driver   string // none|fs|memory|s3
	Path     string
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
	Compress bool
}

// JournalConfig selects where pipeline runs are recorded.
type JournalConfig struct {
	Driver string // memory|sqlite|mysql|postgres
	DSN    string
}

func loadBackup() BackupConfig {
	return BackupConfig{
		Retention: intEnvOrDefault(envBackupRetention, 0),
		Mirror: MirrorConfig{
			Driver:   envOrDefault(envMirrorDriver, defaultMirrorDriver),
			Path:     envOrDefault(envMirrorPath, "data/mirror"),
			Bucket:   envOrDefault(envMirrorBucket, ""),
			Region:   envOrDefault(envMirrorRegion, "us-east-1"),
			Endpoint: envOrDefault(envMirrorEndpoint, ""),
			Prefix:   envOrDefault(envMirrorPrefix, "pes-backups"),
			Compress: boolEnvOrDefault(envMirrorCompress, false),
		},
	}
}

func loadJournal() JournalConfig {
	return JournalConfig{
		Driver: envOrDefault(envJournalDriver, defaultJournalDriver),
		DSN:    envOrDefault(envJournalDSN, defaultJournalDSN),
	}
}
