package config

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

// ScheduleConfig controls the long-running schedule mode.
type ScheduleConfig struct {
	Interval   Duration
	StatusPort string
}

// LoggingConfig mirrors logging.Config so main can build the logger from env.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

func loadMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
		ServiceName:  envOrDefault(envOtelService, defaultService),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
}

func loadSchedule() ScheduleConfig {
	return ScheduleConfig{
		Interval:   durationEnvOrDefault(envScheduleInterval, defaultScheduleInterval),
		StatusPort: envOrDefault(envStatusPort, defaultStatusPort),
	}
}

func loadLogging() LoggingConfig {
	return LoggingConfig{
		Level:  envOrDefault(envLogLevel, defaultLogLevel),
		Format: envOrDefault(envLogFormat, defaultLogFormat),
		File:   envOrDefault(envLogFile, ""),
	}
}
