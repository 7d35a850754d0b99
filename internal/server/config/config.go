package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configurable aspects of the server.
//
// Sources, in order of precedence: environment variables (FILEDEN_*),
// then defaults. The defaults mirror the original deployment: a 1-minute
// token good for 5 calls, 99 files per user, and 1 MiB of download
// traffic per trailing 5-minute window.
type Config struct {
	Port        string `mapstructure:"port" validate:"required"`
	BaseURL     string `mapstructure:"base_url" validate:"required,url"`
	StoragePath string `mapstructure:"storage_path" validate:"required"`

	// Credentials for the single tenant. There is no account system.
	UserID   string `mapstructure:"user_id" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`

	TokenTTL       time.Duration `mapstructure:"token_ttl" validate:"required,gt=0"`
	TokenCallQuota int           `mapstructure:"token_call_quota" validate:"required,gt=0"`

	MaxUserFiles int `mapstructure:"max_user_files" validate:"required,gt=0"`

	DownloadQuotaBytes  int64         `mapstructure:"download_quota_bytes" validate:"required,gt=0"`
	DownloadQuotaWindow time.Duration `mapstructure:"download_quota_window" validate:"required,gt=0"`

	// Per-IP request rate limit on the auth endpoint.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gt=0"`

	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=text json"`
}

// Load builds the configuration from defaults and FILEDEN_* environment
// variables, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FILEDEN")
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("storage_path", "./files")

	v.SetDefault("user_id", "username")
	v.SetDefault("password", "password")

	v.SetDefault("token_ttl", "1m")
	v.SetDefault("token_call_quota", 5)

	v.SetDefault("max_user_files", 99)

	v.SetDefault("download_quota_bytes", 1<<20) // 1 MiB
	v.SetDefault("download_quota_window", "5m")

	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 20)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}
