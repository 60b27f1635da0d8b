package config

import "time"

const (
	envFootballDataKey  = "FOOTBALL_DATA_API_KEY"
	envFootballDataURL  = "FOOTBALL_DATA_BASE_URL"
	envCompetitions     = "COMPETITIONS"
	envTransferSources  = "TRANSFER_SOURCES"
	envTransferDataDir  = "TRANSFER_DATA_DIR"
	envTransferCacheDir = "TRANSFER_CACHE_DIR"
	envTransferCacheTTL = "TRANSFER_CACHE_TTL"

	envPlayerStore = "PES_DB_PATH"
	envPESFolder   = "PES_FOLDER"
	envKitFolder   = "KIT_FOLDER"
	envLogoFolder  = "LOGO_FOLDER"
	envBackupDir   = "BACKUP_FOLDER"
	envDBBackupDir = "DB_BACKUP_DIR"
	envPackageDir  = "PACKAGE_DIR"

	envDownloadTeams   = "DOWNLOAD_TEAMS"
	envDownloadWorkers = "MAX_DOWNLOAD_WORKERS"
	envLogoBaseURL     = "LOGO_BASE_URL"
	envKitBaseURL      = "KIT_BASE_URL"
	envAssetMaxDim     = "ASSET_MAX_DIMENSION"
	envRetryAttempts   = "RETRY_ATTEMPTS"
	envRetryDelay      = "RETRY_DELAY"

	envPipelineAttempts = "PIPELINE_RETRY_ATTEMPTS"
	envPipelineDelay    = "PIPELINE_RETRY_DELAY"

	envBackupRetention = "BACKUP_RETENTION"
	envMirrorDriver    = "BACKUP_MIRROR_DRIVER"
	envMirrorPath      = "BACKUP_MIRROR_PATH"
	envMirrorBucket    = "BACKUP_MIRROR_BUCKET"
	envMirrorRegion    = "BACKUP_MIRROR_REGION"
	envMirrorEndpoint  = "BACKUP_MIRROR_ENDPOINT"
	envMirrorPrefix    = "BACKUP_MIRROR_PREFIX"
	envMirrorCompress  = "BACKUP_MIRROR_COMPRESS"

	envJournalDriver = "JOURNAL_DRIVER"
	envJournalDSN    = "JOURNAL_DSN"

	envScheduleInterval = "SCHEDULE_INTERVAL"
	envStatusPort       = "STATUS_PORT"

	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel      = "LOG_LEVEL"
	envLogFormat     = "LOG_FORMAT"
	envLogFile       = "LOG_FILE"
	defaultService   = "pes-updater"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"

	defaultFootballDataURL  = "https://api.football-data.org/v4"
	defaultTransferDataDir  = "data/transfers"
	defaultTransferCacheDir = ".transfer_cache"
	defaultTransferCacheTTL = 24 * time.Hour

	defaultPlayerStore = "data/pes_database/players.csv"
	defaultPESFolder   = "PES2013"
	defaultKitFolder   = "assets/kits"
	defaultLogoFolder  = "assets/logos"
	defaultBackupDir   = "backups"
	defaultDBBackupDir = "data/backup"
	defaultPackageDir  = "data/packages"

	defaultDownloadWorkers = 5
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 5 * time.Second

	defaultPipelineAttempts = 3
	defaultPipelineDelay    = 5 * time.Second

	defaultMirrorDriver  = "none"
	defaultJournalDriver = "sqlite"
	defaultJournalDSN    = "data/pes_updater.db"

	// Transfer windows move slowly; a daily run is plenty.
	defaultScheduleInterval = 24 * time.Hour
	defaultStatusPort       = "8080"
)

var (
	defaultTransferSources = []string{"footballdata", "fixture"}
	defaultCompetitions    = []string{"PL"}
)
