package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the updater. It is built once at
// startup and passed to each component.
type Config struct {
	FootballData FootballDataConfig
	Transfers    TransfersConfig
	Paths        PathsConfig
	Assets       AssetsConfig
	Retry        RetryConfig
	Backup       BackupConfig
	Journal      JournalConfig
	Schedule     ScheduleConfig
	Metrics      MetricsConfig
	Logging      LoggingConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		FootballData: loadFootballData(),
		Transfers:    loadTransfers(),
		Paths:        loadPaths(),
		Assets:       loadAssets(),
		Retry:        loadRetry(),
		Backup:       loadBackup(),
		Journal:      loadJournal(),
		Schedule:     loadSchedule(),
		Metrics:      loadMetrics(),
		Logging:      loadLogging(),
	}
}

// LoadFile merges key/value pairs from a dotenv file into the process
// environment (existing variables win) and then calls Load. A missing file is
// not an error.
func LoadFile(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	return Load(), nil
}
