package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	// Timezone is the IANA zone calendar days are counted in.
	Timezone        string        `mapstructure:"TIMEZONE"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	CachePurgeCron  string        `mapstructure:"CACHE_PURGE_CRON"`
	Workers         int           `mapstructure:"AGGREGATION_WORKERS"`
	ForecastHorizon int           `mapstructure:"FORECAST_HORIZON"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// Unmarshal only sees keys viper already knows, so env-only keys
	// without a default need binding.
	for _, key := range []string{"DATABASE_URL", "ADMIN_KEY"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_PURGE_CRON", "0 0 * * *")
	v.SetDefault("AGGREGATION_WORKERS", 4)
	v.SetDefault("FORECAST_HORIZON", 3)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
