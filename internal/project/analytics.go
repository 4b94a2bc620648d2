package project

import (
	"sort"
	"strconv"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// topTraderCount is the size of the per-block trader ranking.
const topTraderCount = 10

// Combine joins the three projections for one block into the consolidated
// analytics snapshot. The top-traders ranking sorts the changed accounts by
// the numeric value of their cumulative volume, descending; accounts whose
// volume fails to parse rank as zero, and ties keep their input order. The
// alert, arbitrage, and sentiment fields are extension points and are
// emitted empty.
func Combine(
	markets domain.MarketOrderbooks,
	traders domain.TraderAccounts,
	global *domain.GlobalOrderbookStats,
) *domain.OrderbookAnalytics {
	top := make([]domain.TraderAccount, len(traders.Accounts))
	copy(top, traders.Accounts)

	sort.SliceStable(top, func(i, j int) bool {
		return traderVolume(top[i]) > traderVolume(top[j])
	})
	if len(top) > topTraderCount {
		top = top[:topTraderCount]
	}

	return &domain.OrderbookAnalytics{
		MarketOrderbooks: markets.Orderbooks,
		TopTraders:       top,
		GlobalStats:      global,
		BlockNumber:      markets.BlockNumber,
		BlockHash:        markets.BlockHash,
		Timestamp:        markets.Timestamp,
		MarketAlerts:     []domain.MarketAlert{},
		ArbOpportunities: []domain.ArbitrageOpportunity{},
	}
}

func traderVolume(a domain.TraderAccount) float64 {
	v, err := strconv.ParseFloat(a.TotalVolume, 64)
	if err != nil {
		return 0
	}
	return v
}
