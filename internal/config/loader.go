package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads the TOML file at path over the defaults, applies a .env file if
// one is present, and then applies POLYSTREAM_* environment overrides. The
// result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// A missing .env file is not an error; it is only a convenience for
	// local development.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr("POLYSTREAM_MODE", &cfg.Mode)
	setStr("POLYSTREAM_LOG_LEVEL", &cfg.LogLevel)

	setStr("POLYSTREAM_CTF_EXCHANGE", &cfg.Contracts.CTFExchange)
	setStr("POLYSTREAM_NEG_RISK_EXCHANGE", &cfg.Contracts.NegRiskExchange)

	setStr("POLYSTREAM_POSTGRES_DSN", &cfg.Postgres.DSN)
	setStr("POLYSTREAM_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("POLYSTREAM_POSTGRES_PORT", &cfg.Postgres.Port)
	setStr("POLYSTREAM_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setStr("POLYSTREAM_POSTGRES_USER", &cfg.Postgres.User)
	setStr("POLYSTREAM_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setStr("POLYSTREAM_POSTGRES_SSL_MODE", &cfg.Postgres.SSLMode)
	setBool("POLYSTREAM_POSTGRES_RUN_MIGRATIONS", &cfg.Postgres.RunMigrations)

	setStr("POLYSTREAM_REDIS_ADDR", &cfg.Redis.Addr)
	setStr("POLYSTREAM_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("POLYSTREAM_REDIS_DB", &cfg.Redis.DB)
	setBool("POLYSTREAM_REDIS_TLS", &cfg.Redis.TLSEnabled)

	setStr("POLYSTREAM_S3_ENDPOINT", &cfg.S3.Endpoint)
	setStr("POLYSTREAM_S3_REGION", &cfg.S3.Region)
	setStr("POLYSTREAM_S3_BUCKET", &cfg.S3.Bucket)
	setStr("POLYSTREAM_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	setStr("POLYSTREAM_S3_SECRET_KEY", &cfg.S3.SecretKey)
	setBool("POLYSTREAM_S3_USE_SSL", &cfg.S3.UseSSL)

	setStr("POLYSTREAM_FEED_WS_URL", &cfg.Feed.WsURL)

	setStr("POLYSTREAM_BLOCK_ARCHIVE_PREFIX", &cfg.Pipeline.BlockArchivePrefix)
	setStr("POLYSTREAM_ANALYTICS_PREFIX", &cfg.Pipeline.AnalyticsPrefix)
	setBool("POLYSTREAM_ARCHIVE_ANALYTICS", &cfg.Pipeline.ArchiveAnalytics)
	setBool("POLYSTREAM_EMIT_ANALYTICS_TABLES", &cfg.Pipeline.EmitAnalyticsTables)
}

func setStr(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
