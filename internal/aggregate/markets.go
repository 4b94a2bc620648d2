// Package aggregate implements the incremental per-block aggregation rules
// over the snapshot stores: one aggregator per keyspace (markets, traders,
// global stats). Each aggregator batches its updates per key and writes each
// key at most once per block.
package aggregate

import (
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/numeric"
	"github.com/alanyoungcy/polystream/internal/store"
)

// collateralDecimals is the USDC decimal scale used for the scaled volume
// fields.
const collateralDecimals = 6

// MarketAggregator folds fill events into per-market orderbook snapshots.
// The market key is the fill's maker asset id.
type MarketAggregator struct {
	store *store.Store[domain.MarketOrderbook]
}

// NewMarketAggregator creates an aggregator over the given store.
func NewMarketAggregator(st *store.Store[domain.MarketOrderbook]) *MarketAggregator {
	return &MarketAggregator{store: st}
}

// Store exposes the underlying snapshot store for projection and
// checkpointing.
func (a *MarketAggregator) Store() *store.Store[domain.MarketOrderbook] {
	return a.store
}

func newMarket(id string, batch domain.OrderFilledBatch) domain.MarketOrderbook {
	return domain.MarketOrderbook{
		ID:                     id,
		ConditionID:            numeric.ConditionID(id),
		CollateralVolume:       "0",
		ScaledCollateralVolume: "0",
		AverageTradeSize:       "0",
		TotalFees:              "0",
		LastActiveDay:          numeric.TimestampToDay(batch.Timestamp),
		LastUpdatedBlock:       batch.BlockNumber,
		MidPrice:               "0",
		Spread:                 "0",
		Volume24h:              "0",
		Volume7d:               "0",
		PriceChange24h:         "0",
		Volatility:             "0",
		LiquidityScore:         "0",
		MarketDepth:            "0",
	}
}

// Apply folds one merged batch of fills into the market store. For every
// fill the market's counts and cumulative volumes grow monotonically; the
// average trade size, activity day, and block watermark are recomputed.
// Updates are batched per market and written once, in first-seen order, so
// repeated processing of equal input produces identical deltas.
func (a *MarketAggregator) Apply(batch domain.OrderFilledBatch) {
	updates := make(map[string]domain.MarketOrderbook)
	var order []string

	for _, ev := range batch.Events {
		marketID := ev.MakerAssetID

		market, seen := updates[marketID]
		if !seen {
			var ok bool
			market, ok = a.store.GetLast(marketID)
			if !ok {
				market = newMarket(marketID, batch)
			}
			order = append(order, marketID)
		}

		market.TradesQuantity++
		switch ev.Side {
		case domain.SideBuy:
			market.BuysQuantity++
		case domain.SideSell:
			market.SellsQuantity++
		}

		volume := numeric.Parse(market.CollateralVolume).Add(numeric.Parse(ev.TakerAmountFilled))
		market.CollateralVolume = volume.String()
		market.ScaledCollateralVolume = numeric.ScaledDecimal(market.CollateralVolume, collateralDecimals).String()

		fees := numeric.Parse(market.TotalFees).Add(numeric.Parse(ev.Fee))
		market.TotalFees = fees.String()

		market.AverageTradeSize = numeric.AverageTradeSize(volume, market.TradesQuantity).String()
		market.LastActiveDay = numeric.TimestampToDay(batch.Timestamp)
		market.LastUpdatedBlock = batch.BlockNumber

		updates[marketID] = market
	}

	for _, marketID := range order {
		a.store.Set(0, marketID, updates[marketID])
	}
}
