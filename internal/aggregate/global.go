package aggregate

import (
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/numeric"
	"github.com/alanyoungcy/polystream/internal/store"
)

// GlobalAggregator maintains the single platform-wide stats row.
type GlobalAggregator struct {
	store *store.Store[domain.GlobalOrderbookStats]
}

// NewGlobalAggregator creates an aggregator over the given store.
func NewGlobalAggregator(st *store.Store[domain.GlobalOrderbookStats]) *GlobalAggregator {
	return &GlobalAggregator{store: st}
}

// Store exposes the underlying snapshot store for projection and
// checkpointing.
func (a *GlobalAggregator) Store() *store.Store[domain.GlobalOrderbookStats] {
	return a.store
}

func newGlobalStats() domain.GlobalOrderbookStats {
	return domain.GlobalOrderbookStats{
		ID:                     domain.GlobalStatsKey,
		CollateralVolume:       "0",
		ScaledCollateralVolume: "0",
		TotalFees:              "0",
		AverageTradeSize:       "0",
		PlatformFeeRevenue:     "0",
		TotalLiquidity:         "0",
		MarketCap:              "0",
		Volume24h:              "0",
		Volume7d:               "0",
		AverageSpread:          "0",
		MakerTakerRate:         "0",
	}
}

// Apply folds one merged batch of fills into the global row. uniqueTraders
// and activeMarkets are computed by the caller from the sibling stores after
// their updates for this block have completed. Platform fee revenue equals
// accumulated fees. A batch with no events writes nothing.
func (a *GlobalAggregator) Apply(batch domain.OrderFilledBatch, uniqueTraders, activeMarkets uint64) {
	if len(batch.Events) == 0 {
		return
	}

	stats, ok := a.store.GetLast(domain.GlobalStatsKey)
	if !ok {
		stats = newGlobalStats()
	}

	volume := numeric.Parse(stats.CollateralVolume)
	fees := numeric.Parse(stats.TotalFees)

	for _, ev := range batch.Events {
		stats.TradesQuantity++
		switch ev.Side {
		case domain.SideBuy:
			stats.BuysQuantity++
		case domain.SideSell:
			stats.SellsQuantity++
		}
		volume = volume.Add(numeric.Parse(ev.TakerAmountFilled))
		fees = fees.Add(numeric.Parse(ev.Fee))
	}

	stats.CollateralVolume = volume.String()
	stats.ScaledCollateralVolume = numeric.ScaledDecimal(stats.CollateralVolume, collateralDecimals).String()
	stats.TotalFees = fees.String()
	stats.PlatformFeeRevenue = stats.TotalFees
	stats.AverageTradeSize = numeric.AverageTradeSize(volume, stats.TradesQuantity).String()
	stats.UniqueTraders = uniqueTraders
	stats.ActiveMarkets = activeMarkets
	stats.LastUpdated = batch.Timestamp

	a.store.Set(0, domain.GlobalStatsKey, stats)
}
