package config

// AssetsConfig drives team kit/logo downloads.
type AssetsConfig struct {
	Teams        []string
	Workers      int
	LogoBaseURL  string
	KitBaseURL   string
	MaxDimension int // 0 keeps images at their original size
	Attempts     int
	Delay        Duration
}

// RetryConfig controls the orchestrator's per-step retry.
type RetryConfig struct {
	Attempts  int
	BaseDelay Duration
}

func loadAssets() AssetsConfig {
	return AssetsConfig{
		Teams:        listEnvOrDefault(envDownloadTeams, nil),
		Workers:      intEnvOrDefault(envDownloadWorkers, defaultDownloadWorkers),
		LogoBaseURL:  envOrDefault(envLogoBaseURL, ""),
		KitBaseURL:   envOrDefault(envKitBaseURL, ""),
		MaxDimension: intEnvOrDefault(envAssetMaxDim, 0),
		Attempts:     intEnvOrDefault(envRetryAttempts, defaultRetryAttempts),
		Delay:        durationEnvOrDefault(envRetryDelay, defaultRetryDelay),
	}
}

func loadRetry() RetryConfig {
	return RetryConfig{
		Attempts:  intEnvOrDefault(envPipelineAttempts, defaultPipelineAttempts),
		BaseDelay: durationEnvOrDefault(envPipelineDelay, defaultPipelineDelay),
	}
}
