package config

// PathsConfig locates the game install, the player store and the asset folders.
type PathsConfig struct {
	PlayerStore string
	PESFolder   string
	KitFolder   string
	LogoFolder  string
	BackupDir   string // folder backups of the game install
	DBBackupDir string // timestamped copies of the player store
	PackageDir  string
}

func loadPaths() PathsConfig {
	return PathsConfig{
		PlayerStore: envOrDefault(envPlayerStore, defaultPlayerStore),
		PESFolder:   envOrDefault(envPESFolder, defaultPESFolder),
		KitFolder:   envOrDefault(envKitFolder, defaultKitFolder),
		LogoFolder:  envOrDefault(envLogoFolder, defaultLogoFolder),
		BackupDir:   envOrDefault(envBackupDir, defaultBackupDir),
		DBBackupDir: envOrDefault(envDBBackupDir, defaultDBBackupDir),
		PackageDir:  envOrDefault(envPackageDir, defaultPackageDir),
	}
}
