package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/domain"
)

// BlockSource produces decoded blocks in strictly increasing block order.
// Next returns io.EOF when the source is exhausted.
type BlockSource interface {
	Next(ctx context.Context) (*chain.Block, error)
}

// Orchestrator drives the processor over a block source, one block at a
// time, and fans the results out to the optional collaborators: the change
// sink, the checkpoint store, and the analytics archiver. Any of the three
// may be nil.
type Orchestrator struct {
	source      BlockSource
	processor   *BlockProcessor
	changes     domain.ChangeWriter
	checkpoints domain.CheckpointStore
	archiver    domain.AnalyticsArchiver

	runID  string
	cursor uint64
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator with a fresh run id.
func NewOrchestrator(
	source BlockSource,
	processor *BlockProcessor,
	changes domain.ChangeWriter,
	checkpoints domain.CheckpointStore,
	archiver domain.AnalyticsArchiver,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:      source,
		processor:   processor,
		changes:     changes,
		checkpoints: checkpoints,
		archiver:    archiver,
		runID:       uuid.NewString(),
		logger:      logger.With(slog.String("component", "orchestrator")),
	}
}

// RunID returns this run's identifier, attached to every sink batch.
func (o *Orchestrator) RunID() string { return o.runID }

// Run restores the latest checkpoint, then processes blocks until the
// source is exhausted or the context is cancelled. Blocks at or below the
// checkpoint cursor are skipped so a source that re-delivers processed
// blocks stays idempotent. Processing is strictly sequential; each block's
// results are written and checkpointed before the next block is read.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.restore(ctx); err != nil {
		return err
	}

	o.logger.Info("pipeline starting",
		slog.String("run_id", o.runID),
		slog.Uint64("cursor", o.cursor),
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		blk, err := o.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				o.logger.Info("block source exhausted", slog.Uint64("cursor", o.cursor))
				return nil
			}
			return fmt.Errorf("pipeline: next block: %w", err)
		}

		if o.cursor != 0 && blk.Number <= o.cursor {
			o.logger.Warn("skipping already-processed block",
				slog.Uint64("block", blk.Number),
				slog.Uint64("cursor", o.cursor),
			)
			continue
		}

		result, err := o.processor.Process(ctx, blk)
		if err != nil {
			return err
		}

		if o.changes != nil && len(result.Changes) > 0 {
			if err := o.changes.WriteChanges(ctx, o.runID, result.BlockNumber, result.Changes); err != nil {
				return fmt.Errorf("pipeline: write changes for block %d: %w", result.BlockNumber, err)
			}
		}

		if o.archiver != nil && result.Analytics != nil {
			if err := o.archiver.ArchiveAnalytics(ctx, result.Analytics); err != nil {
				return fmt.Errorf("pipeline: archive analytics for block %d: %w", result.BlockNumber, err)
			}
		}

		o.cursor = blk.Number
		if o.checkpoints != nil {
			cp := o.processor.Checkpoint(o.runID, o.cursor)
			if err := o.checkpoints.Save(ctx, cp); err != nil {
				return fmt.Errorf("pipeline: save checkpoint at block %d: %w", o.cursor, err)
			}
		}
	}
}

// restore loads the most recent checkpoint, if a checkpoint store is
// configured and one exists.
func (o *Orchestrator) restore(ctx context.Context) error {
	if o.checkpoints == nil {
		return nil
	}

	cp, err := o.checkpoints.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			o.logger.Info("no checkpoint found, starting fresh")
			return nil
		}
		return fmt.Errorf("pipeline: load checkpoint: %w", err)
	}

	o.processor.Restore(cp)
	o.cursor = cp.Cursor
	o.logger.Info("checkpoint restored",
		slog.Uint64("cursor", cp.Cursor),
		slog.Int("markets", len(cp.Markets)),
		slog.Int("traders", len(cp.Traders)),
	)
	return nil
}
