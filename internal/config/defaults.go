package config

const (
	defaultBaseURL        = "https://api.github.com"
	defaultTimeoutSeconds = 30

	defaultMaxLength = 150
	defaultMinLength = 30
	defaultBatchSize = 5

	defaultCacheBackend = "memory"
	defaultCachePath    = "issuelens/cache"
	defaultTTLSeconds   = 1800
	defaultKeyPrefix    = "issuelens"
)

// ApplyDefaults fills in zero values with working defaults so a minimal
// config file is enough to run.
func ApplyDefaults(cfg *Config) {
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = defaultBaseURL
	}
	if cfg.GitHub.TimeoutSeconds <= 0 {
		cfg.GitHub.TimeoutSeconds = defaultTimeoutSeconds
	}

	if cfg.Summary.MaxLength <= 0 {
		cfg.Summary.MaxLength = defaultMaxLength
	}
	if cfg.Summary.MinLength <= 0 {
		cfg.Summary.MinLength = defaultMinLength
	}
	if cfg.Summary.BatchSize <= 0 {
		cfg.Summary.BatchSize = defaultBatchSize
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = defaultCacheBackend
	}
	if cfg.Cache.Path == "" && cfg.Cache.Backend != "memory" {
		cfg.Cache.Path = defaultCachePath
	}
	if cfg.Cache.DefaultTTLSeconds <= 0 {
		cfg.Cache.DefaultTTLSeconds = defaultTTLSeconds
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = defaultKeyPrefix
	}
}
