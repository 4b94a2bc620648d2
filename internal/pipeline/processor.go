// Package pipeline drives the per-block processing pass: parallel
// extraction, the merge barrier, sequential store aggregation, delta
// projection, and change-record formatting.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polystream/internal/aggregate"
	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/chain/exchange"
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/extract"
	"github.com/alanyoungcy/polystream/internal/project"
	"github.com/alanyoungcy/polystream/internal/sink"
	"github.com/alanyoungcy/polystream/internal/store"
)

// ProcessorConfig selects the contracts to watch and which table variants
// the formatter emits.
type ProcessorConfig struct {
	CTFExchange         common.Address
	NegRiskExchange     common.Address
	EmitAnalyticsTables bool
}

// BlockResult is everything one block pass produced.
type BlockResult struct {
	BlockNumber uint64
	BlockHash   string
	Timestamp   int64
	Fills       domain.OrderFilledBatch
	Matches     domain.OrdersMatchedBatch
	Analytics   *domain.OrderbookAnalytics
	Changes     []domain.EntityChange
}

// BlockProcessor owns the snapshot stores and runs one logical pass per
// block. Blocks must be fed strictly in order: block N's final store state
// is the only valid input to block N+1.
type BlockProcessor struct {
	ctfFilled      *extract.OrderFilledExtractor
	negRiskFilled  *extract.OrderFilledExtractor
	ctfMatched     *extract.OrdersMatchedExtractor
	negRiskMatched *extract.OrdersMatchedExtractor

	markets *aggregate.MarketAggregator
	traders *aggregate.TraderAggregator
	global  *aggregate.GlobalAggregator

	emitAnalyticsTables bool
	logger              *slog.Logger
}

// NewBlockProcessor creates a processor with empty stores, watching the
// configured exchange contracts.
func NewBlockProcessor(cfg ProcessorConfig, logger *slog.Logger) *BlockProcessor {
	return &BlockProcessor{
		ctfFilled:      extract.NewOrderFilledExtractor(cfg.CTFExchange, exchange.DecodeOrderFilled),
		negRiskFilled:  extract.NewOrderFilledExtractor(cfg.NegRiskExchange, exchange.DecodeOrderFilled),
		ctfMatched:     extract.NewOrdersMatchedExtractor(cfg.CTFExchange, exchange.DecodeOrdersMatched),
		negRiskMatched: extract.NewOrdersMatchedExtractor(cfg.NegRiskExchange, exchange.DecodeOrdersMatched),

		markets: aggregate.NewMarketAggregator(store.New[domain.MarketOrderbook]()),
		traders: aggregate.NewTraderAggregator(store.New[domain.TraderAccount]()),
		global:  aggregate.NewGlobalAggregator(store.New[domain.GlobalOrderbookStats]()),

		emitAnalyticsTables: cfg.EmitAnalyticsTables,
		logger:              logger.With(slog.String("component", "processor")),
	}
}

// Process runs one pass over blk. The four extractors run concurrently;
// the errgroup wait is the merge barrier, after which the stores are
// mutated sequentially. The returned result carries the consolidated
// analytics snapshot and the entity changes for the sink.
func (p *BlockProcessor) Process(ctx context.Context, blk *chain.Block) (*BlockResult, error) {
	var (
		ctfFills, negRiskFills     domain.OrderFilledBatch
		ctfMatches, negRiskMatches domain.OrdersMatchedBatch
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ctfFills, err = p.ctfFilled.Extract(blk)
		return err
	})
	g.Go(func() error {
		var err error
		negRiskFills, err = p.negRiskFilled.Extract(blk)
		return err
	})
	g.Go(func() error {
		var err error
		ctfMatches, err = p.ctfMatched.Extract(blk)
		return err
	})
	g.Go(func() error {
		var err error
		negRiskMatches, err = p.negRiskMatched.Extract(blk)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: block %d: %w", blk.Number, err)
	}

	fills := extract.MergeFilled(ctfFills, negRiskFills)
	matches := extract.MergeMatched(ctfMatches, negRiskMatches)

	p.markets.Apply(fills)
	p.traders.Apply(fills)

	uniqueTraders := uint64(p.traders.Store().Len())
	var activeMarkets uint64
	p.markets.Store().Range(func(_ string, m domain.MarketOrderbook) bool {
		if m.TradesQuantity > 0 {
			activeMarkets++
		}
		return true
	})
	p.global.Apply(fills, uniqueTraders, activeMarkets)

	marketDeltas := p.markets.Store().Flush()
	traderDeltas := p.traders.Store().Flush()
	globalDeltas := p.global.Store().Flush()

	meta := project.BlockMeta{
		Number:    fills.BlockNumber,
		Hash:      fills.BlockHash,
		Timestamp: fills.Timestamp,
	}
	analytics := project.Combine(
		project.Markets(marketDeltas, meta),
		project.Traders(traderDeltas, meta),
		project.Global(globalDeltas),
	)

	changes := sink.FillChanges(fills)
	changes = append(changes, sink.MarketChanges(marketDeltas)...)
	changes = append(changes, sink.TraderChanges(traderDeltas)...)
	changes = append(changes, sink.GlobalChanges(globalDeltas)...)
	if p.emitAnalyticsTables {
		changes = append(changes, sink.MarketAnalyticsChanges(marketDeltas)...)
		changes = append(changes, sink.TraderAnalyticsChanges(traderDeltas)...)
		changes = append(changes, sink.GlobalAnalyticsChanges(globalDeltas)...)
	}

	p.logger.Debug("block processed",
		slog.Uint64("block", blk.Number),
		slog.Int("fills", len(fills.Events)),
		slog.Int("matches", len(matches.Events)),
		slog.Int("markets_changed", len(marketDeltas)),
		slog.Int("traders_changed", len(traderDeltas)),
		slog.Int("changes", len(changes)),
	)

	return &BlockResult{
		BlockNumber: blk.Number,
		BlockHash:   fills.BlockHash,
		Timestamp:   fills.Timestamp,
		Fills:       fills,
		Matches:     matches,
		Analytics:   analytics,
		Changes:     changes,
	}, nil
}

// Checkpoint snapshots the full store state for resumption after cursor.
func (p *BlockProcessor) Checkpoint(runID string, cursor uint64) domain.Checkpoint {
	return domain.Checkpoint{
		RunID:   runID,
		Cursor:  cursor,
		Markets: p.markets.Store().Snapshot(),
		Traders: p.traders.Store().Snapshot(),
		Global:  p.global.Store().Snapshot(),
	}
}

// Restore replaces the store state with a previously saved checkpoint.
func (p *BlockProcessor) Restore(cp domain.Checkpoint) {
	p.markets.Store().Restore(cp.Markets)
	p.traders.Store().Restore(cp.Traders)
	p.global.Store().Restore(cp.Global)
}
