package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/alanyoungcy/polystream/internal/blob/s3"
	"github.com/alanyoungcy/polystream/internal/cache/redis"
	"github.com/alanyoungcy/polystream/internal/config"
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/store/postgres"
)

// Dependencies bundles every infrastructure dependency the application modes
// need to operate. It is constructed by Wire and torn down by the returned
// cleanup function. Fields not required by the configured mode stay nil.
type Dependencies struct {
	// Postgres sink for entity change records.
	Changes domain.ChangeWriter

	// Redis-backed pipeline checkpoints.
	Checkpoints domain.CheckpointStore

	// Blob storage access for block archives and analytics snapshots.
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader

	// Archiver uploads each block's consolidated analytics snapshot.
	// Nil unless archiving is enabled.
	Archiver domain.AnalyticsArchiver
}

// Wire constructs all concrete dependency implementations required by the
// configured mode and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	if cfg.NeedsPostgres() {
		pg, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: postgres client: %w", err)
		}
		closers = append(closers, pg.Close)

		if cfg.Postgres.RunMigrations {
			if err := pg.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("app: run migrations: %w", err)
			}
			logger.Info("database migrations applied")
		}

		deps.Changes = postgres.NewChangeWriter(pg)
	}

	// The checkpoint store is best-effort: a run without Redis still works,
	// it just restarts from the beginning of the source.
	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			logger.Warn("redis unavailable, running without checkpoints",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			closers = append(closers, func() { _ = rdb.Close() })
			deps.Checkpoints = redis.NewCheckpointStore(rdb)
		}
	}

	if cfg.NeedsS3() {
		s3c, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: s3 client: %w", err)
		}
		closers = append(closers, func() { _ = s3c.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3c)
		deps.BlobReader = s3blob.NewReader(s3c)

		if cfg.Pipeline.ArchiveAnalytics || strings.ToLower(cfg.Mode) == "replay" {
			deps.Archiver = s3blob.NewAnalyticsArchiver(deps.BlobWriter, cfg.Pipeline.AnalyticsPrefix)
		}
	}

	return deps, cleanup, nil
}
