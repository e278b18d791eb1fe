package config

import "github.com/spf13/viper"

const (
	defaultBackend = "sqlite"
	defaultPath    = "wizard.db"
	defaultAddr    = "127.0.0.1:8080"
)

// bindDefaults registers every key with viper so that WIZARD_* env vars are
// picked up by Unmarshal even without a config file.
func bindDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", defaultBackend)
	v.SetDefault("storage.path", defaultPath)
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.addr", defaultAddr)
	v.SetDefault("api.admin_key", "")
	v.SetDefault("api.rate_limit.requests", 5)
	v.SetDefault("api.rate_limit.burst", 20)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("tuning_path", "")
}

// SetDefaults fills zero values.
func SetDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultBackend
	}
	if cfg.Storage.Path == "" && cfg.Storage.Backend != "memory" {
		if cfg.Storage.Backend == "file" {
			cfg.Storage.Path = "saves"
		} else {
			cfg.Storage.Path = defaultPath
		}
	}

	if cfg.API.Addr == "" {
		cfg.API.Addr = defaultAddr
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 5
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
