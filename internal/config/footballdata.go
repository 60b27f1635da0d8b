package config

// FootballDataConfig holds football-data.org API settings.
type FootballDataConfig struct {
	BaseURL      string
	APIKey       string
	Competitions []string
}

// TransfersConfig controls transfer sources, the batch directory and the disk cache.
type TransfersConfig struct {
	Sources  []string
	DataDir  string
	CacheDir string
	CacheTTL Duration
}

func loadFootballData() FootballDataConfig {
	return FootballDataConfig{
		BaseURL:      envOrDefault(envFootballDataURL, defaultFootballDataURL),
		APIKey:       envOrDefault(envFootballDataKey, ""),
		Competitions: listEnvOrDefault(envCompetitions, defaultCompetitions),
	}
}

func loadTransfers() TransfersConfig {
	return TransfersConfig{
		Sources:  listEnvOrDefault(envTransferSources, defaultTransferSources),
		DataDir:  envOrDefault(envTransferDataDir, defaultTransferDataDir),
		CacheDir: envOrDefault(envTransferCacheDir, defaultTransferCacheDir),
		CacheTTL: durationEnvOrDefault(envTransferCacheTTL, defaultTransferCacheTTL),
	}
}
