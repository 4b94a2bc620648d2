package aggregate

import (
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/numeric"
	"github.com/alanyoungcy/polystream/internal/store"
)

// TraderAggregator folds fill events into per-address account snapshots.
// Every fill touches two independent entries: its maker and its taker.
type TraderAggregator struct {
	store *store.Store[domain.TraderAccount]
}

// NewTraderAggregator creates an aggregator over the given store.
func NewTraderAggregator(st *store.Store[domain.TraderAccount]) *TraderAggregator {
	return &TraderAggregator{store: st}
}

// Store exposes the underlying snapshot store for projection and
// checkpointing.
func (a *TraderAggregator) Store() *store.Store[domain.TraderAccount] {
	return a.store
}

func newTrader(id string, firstTrade int64) domain.TraderAccount {
	return domain.TraderAccount{
		ID:            id,
		TotalVolume:   "0",
		TotalFees:     "0",
		FirstTrade:    firstTrade,
		LastTrade:     firstTrade,
		IsActive:      true,
		TraderType:    domain.TraderRetail,
		TradedMarkets: make(map[string]bool),
		Volume24h:     "0",
		Volume7d:      "0",
		PnlRealized:   "0",
		PnlUnrealized: "0",
		WinRate:       "0",
		SharpeRatio:   "0",
		MaxDrawdown:   "0",
		PositionSize:  "0",
		Leverage:      "1",
		RiskScore:     "0",
	}
}

// Apply folds one merged batch of fills into the trader store. Both sides of
// a fill accumulate the fill's taker amount as volume: that is the total
// notional of the fill, applied to each participant independently, not
// double counting within one entry. Only the taker side accumulates the
// fee. The distinct-market set grows with the fill's market key and feeds
// the classification tag.
func (a *TraderAggregator) Apply(batch domain.OrderFilledBatch) {
	updates := make(map[string]domain.TraderAccount)
	var order []string

	touch := func(id string, ev domain.OrderFilledEvent, isTaker bool) {
		account, seen := updates[id]
		if !seen {
			prev, ok := a.store.GetLast(id)
			if ok {
				account = prev.CloneMarkets()
			} else {
				account = newTrader(id, ev.Timestamp)
			}
			order = append(order, id)
		}

		account.TradesQuantity++

		volume := numeric.Parse(account.TotalVolume).Add(numeric.Parse(ev.TakerAmountFilled))
		account.TotalVolume = volume.String()

		if isTaker {
			fees := numeric.Parse(account.TotalFees).Add(numeric.Parse(ev.Fee))
			account.TotalFees = fees.String()
		}

		account.TradedMarkets[ev.MakerAssetID] = true
		account.MarketsTraded = uint64(len(account.TradedMarkets))

		account.LastTrade = ev.Timestamp
		account.IsActive = true
		account.TraderType = numeric.ClassifyTraderType(
			account.TradesQuantity, volume, account.MarketsTraded)

		updates[id] = account
	}

	for _, ev := range batch.Events {
		touch(ev.Maker, ev, false)
		touch(ev.Taker, ev, true)
	}

	for _, id := range order {
		a.store.Set(0, id, updates[id])
	}
}
