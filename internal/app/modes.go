package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	s3blob "github.com/alanyoungcy/polystream/internal/blob/s3"
	"github.com/alanyoungcy/polystream/internal/feed"
	"github.com/alanyoungcy/polystream/internal/pipeline"
)

func (a *App) newProcessor() *pipeline.BlockProcessor {
	return pipeline.NewBlockProcessor(pipeline.ProcessorConfig{
		CTFExchange:         common.HexToAddress(a.cfg.Contracts.CTFExchange),
		NegRiskExchange:     common.HexToAddress(a.cfg.Contracts.NegRiskExchange),
		EmitAnalyticsTables: a.cfg.Pipeline.EmitAnalyticsTables,
	}, a.logger)
}

// StreamMode consumes live blocks from the websocket feed and runs the full
// pipeline over them: extraction, aggregation, change sink, checkpoints, and
// optional analytics archiving.
func (a *App) StreamMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting stream mode",
		slog.String("ws_url", a.cfg.Feed.WsURL),
	)

	blockFeed := feed.NewBlockFeed(a.cfg.Feed.WsURL, a.logger)
	if err := blockFeed.Start(ctx); err != nil {
		return fmt.Errorf("app: start block feed: %w", err)
	}
	defer blockFeed.Close()

	orch := pipeline.NewOrchestrator(
		blockFeed, a.newProcessor(),
		deps.Changes, deps.Checkpoints, deps.Archiver,
		a.logger,
	)
	return orch.Run(ctx)
}

// BackfillMode replays archived blocks from object storage through the full
// pipeline, writing change records exactly as stream mode would. The
// checkpoint cursor makes interrupted backfills resumable.
func (a *App) BackfillMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting backfill mode",
		slog.String("bucket", a.cfg.S3.Bucket),
		slog.String("prefix", a.cfg.Pipeline.BlockArchivePrefix),
	)

	source := s3blob.NewBlockArchive(deps.BlobReader, a.cfg.Pipeline.BlockArchivePrefix)
	orch := pipeline.NewOrchestrator(
		source, a.newProcessor(),
		deps.Changes, deps.Checkpoints, deps.Archiver,
		a.logger,
	)

	if err := orch.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("backfill complete")
	return nil
}

// ReplayMode recomputes analytics snapshots from archived blocks without
// touching the database or checkpoints. It is used to rebuild the analytics
// archive after a projection change.
func (a *App) ReplayMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting replay mode",
		slog.String("bucket", a.cfg.S3.Bucket),
		slog.String("prefix", a.cfg.Pipeline.BlockArchivePrefix),
	)

	source := s3blob.NewBlockArchive(deps.BlobReader, a.cfg.Pipeline.BlockArchivePrefix)
	orch := pipeline.NewOrchestrator(
		source, a.newProcessor(),
		nil, nil, deps.Archiver,
		a.logger,
	)

	if err := orch.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("replay complete")
	return nil
}
