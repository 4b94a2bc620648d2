// Package config defines the top-level configuration for the polystream
// indexer and provides validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYSTREAM_* environment
// variables.
type Config struct {
	Contracts ContractsConfig `toml:"contracts"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Feed      FeedConfig      `toml:"feed"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ContractsConfig holds the watched exchange contract addresses.
type ContractsConfig struct {
	CTFExchange     string `toml:"ctf_exchange"`
	NegRiskExchange string `toml:"neg_risk_exchange"`
}

// PostgresConfig holds PostgreSQL connection parameters for the change sink.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the checkpoint store.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// FeedConfig holds the streaming block feed endpoint.
type FeedConfig struct {
	WsURL string `toml:"ws_url"`
}

// PipelineConfig holds pipeline behavior switches.
type PipelineConfig struct {
	// BlockArchivePrefix is the object key prefix backfill blocks are read
	// from.
	BlockArchivePrefix string `toml:"block_archive_prefix"`

	// AnalyticsPrefix is the object key prefix per-block analytics
	// snapshots are written under.
	AnalyticsPrefix string `toml:"analytics_prefix"`

	// ArchiveAnalytics enables uploading each block's consolidated
	// analytics snapshot to object storage.
	ArchiveAnalytics bool `toml:"archive_analytics"`

	// EmitAnalyticsTables additionally emits the denormalized *_analytics
	// table variants alongside the normalized tables.
	EmitAnalyticsTables bool `toml:"emit_analytics_tables"`
}

var validModes = map[string]bool{
	"stream":   true,
	"backfill": true,
	"replay":   true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Contracts: ContractsConfig{
			CTFExchange:     "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E",
			NegRiskExchange: "0xC5d563A36AE78145C45a50134d48A1215220f80a",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "polystream",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polystream-data",
			ForcePathStyle: true,
		},
		Feed: FeedConfig{
			WsURL: "ws://localhost:8546/blocks",
		},
		Pipeline: PipelineConfig{
			BlockArchivePrefix:  "blocks",
			AnalyticsPrefix:     "analytics",
			ArchiveAnalytics:    false,
			EmitAnalyticsTables: true,
		},
		Mode:     "stream",
		LogLevel: "info",
	}
}

// NeedsPostgres reports whether the configured mode writes to the change
// sink.
func (c *Config) NeedsPostgres() bool {
	switch strings.ToLower(c.Mode) {
	case "stream", "backfill":
		return true
	default:
		return false
	}
}

// NeedsS3 reports whether the configured mode touches object storage.
func (c *Config) NeedsS3() bool {
	switch strings.ToLower(c.Mode) {
	case "backfill", "replay":
		return true
	default:
		return c.Pipeline.ArchiveAnalytics
	}
}

// Validate checks the configuration for the configured mode and returns an
// error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: stream, backfill, replay)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if !common.IsHexAddress(c.Contracts.CTFExchange) {
		errs = append(errs, fmt.Sprintf("contracts: ctf_exchange %q is not a valid address", c.Contracts.CTFExchange))
	}
	if !common.IsHexAddress(c.Contracts.NegRiskExchange) {
		errs = append(errs, fmt.Sprintf("contracts: neg_risk_exchange %q is not a valid address", c.Contracts.NegRiskExchange))
	}

	if mode == "stream" && c.Feed.WsURL == "" {
		errs = append(errs, "feed: ws_url is required for stream mode")
	}

	if c.NeedsPostgres() {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
	}

	if c.NeedsS3() {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
