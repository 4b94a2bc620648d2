// Package sink formats store deltas into the generic entity-change records
// the external sink consumes. A change carries the table, the row id, a
// create/update operation, and a flat column → string-value map; create is
// used when the delta had no prior value.
package sink

import (
	"strconv"

	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/store"
)

func opFor[T any](d store.Delta[T]) domain.ChangeOp {
	if d.Old == nil {
		return domain.OpCreate
	}
	return domain.OpUpdate
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func i64(v int64) string  { return strconv.FormatInt(v, 10) }

// FillChanges renders every fill in the batch as a create into order_fills.
// Fill ids are deterministic, so re-processing a block produces the same
// rows.
func FillChanges(batch domain.OrderFilledBatch) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(batch.Events))
	for _, ev := range batch.Events {
		changes = append(changes, domain.EntityChange{
			Table: domain.TableOrderFills,
			ID:    ev.ID,
			Op:    domain.OpCreate,
			Fields: map[string]string{
				"transaction_hash":    ev.TransactionHash,
				"timestamp":           i64(ev.Timestamp),
				"order_hash":          ev.OrderHash,
				"maker":               ev.Maker,
				"taker":               ev.Taker,
				"maker_asset_id":      ev.MakerAssetID,
				"taker_asset_id":      ev.TakerAssetID,
				"maker_amount_filled": ev.MakerAmountFilled,
				"taker_amount_filled": ev.TakerAmountFilled,
				"fee":                 ev.Fee,
				"block_number":        u64(ev.BlockNumber),
				"side":                ev.Side,
				"price":               ev.Price,
				"ordinal":             u64(ev.Ordinal),
			},
		})
	}
	return changes
}

// MarketChanges renders market deltas into the normalized market_orderbooks
// table.
func MarketChanges(deltas []store.Delta[domain.MarketOrderbook]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		m := d.New
		changes = append(changes, domain.EntityChange{
			Table: domain.TableMarketBooks,
			ID:    m.ID,
			Op:    opFor(d),
			Fields: map[string]string{
				"condition_id":             m.ConditionID,
				"trades_quantity":          u64(m.TradesQuantity),
				"buys_quantity":            u64(m.BuysQuantity),
				"sells_quantity":           u64(m.SellsQuantity),
				"collateral_volume":        m.CollateralVolume,
				"scaled_collateral_volume": m.ScaledCollateralVolume,
				"average_trade_size":       m.AverageTradeSize,
				"total_fees":               m.TotalFees,
				"last_active_day":          i64(m.LastActiveDay),
				"last_updated_block":       u64(m.LastUpdatedBlock),
			},
		})
	}
	return changes
}

// MarketAnalyticsChanges renders the same market deltas into the
// denormalized market_analytics table, which additionally carries the
// extension metric columns.
func MarketAnalyticsChanges(deltas []store.Delta[domain.MarketOrderbook]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		m := d.New
		changes = append(changes, domain.EntityChange{
			Table: domain.TableMarketAnalytics,
			ID:    m.ID,
			Op:    opFor(d),
			Fields: map[string]string{
				"condition_id":             m.ConditionID,
				"trades_quantity":          u64(m.TradesQuantity),
				"buys_quantity":            u64(m.BuysQuantity),
				"sells_quantity":           u64(m.SellsQuantity),
				"collateral_volume":        m.CollateralVolume,
				"scaled_collateral_volume": m.ScaledCollateralVolume,
				"average_trade_size":       m.AverageTradeSize,
				"total_fees":               m.TotalFees,
				"last_active_day":          i64(m.LastActiveDay),
				"last_updated_block":       u64(m.LastUpdatedBlock),
				"mid_price":                m.MidPrice,
				"spread":                   m.Spread,
				"volume_24h":               m.Volume24h,
				"volume_7d":                m.Volume7d,
				"price_change_24h":         m.PriceChange24h,
				"volatility":               m.Volatility,
				"unique_traders_24h":       u64(m.UniqueTraders24),
				"liquidity_score":          m.LiquidityScore,
				"market_depth":             m.MarketDepth,
			},
		})
	}
	return changes
}

// TraderChanges renders trader deltas into the normalized trader_accounts
// table.
func TraderChanges(deltas []store.Delta[domain.TraderAccount]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		a := d.New
		changes = append(changes, domain.EntityChange{
			Table: domain.TableTraderAccounts,
			ID:    a.ID,
			Op:    opFor(d),
			Fields: map[string]string{
				"trades_quantity": u64(a.TradesQuantity),
				"total_volume":    a.TotalVolume,
				"total_fees":      a.TotalFees,
				"first_trade":     i64(a.FirstTrade),
				"last_trade":      i64(a.LastTrade),
				"is_active":       strconv.FormatBool(a.IsActive),
				"trader_type":     a.TraderType,
				"markets_traded":  u64(a.MarketsTraded),
			},
		})
	}
	return changes
}

// TraderAnalyticsChanges renders the same trader deltas into the
// denormalized trader_analytics table.
func TraderAnalyticsChanges(deltas []store.Delta[domain.TraderAccount]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		a := d.New
		changes = append(changes, domain.EntityChange{
			Table: domain.TableTraderAnalytics,
			ID:    a.ID,
			Op:    opFor(d),
			Fields: map[string]string{
				"trades_quantity": u64(a.TradesQuantity),
				"total_volume":    a.TotalVolume,
				"total_fees":      a.TotalFees,
				"first_trade":     i64(a.FirstTrade),
				"last_trade":      i64(a.LastTrade),
				"is_active":       strconv.FormatBool(a.IsActive),
				"trader_type":     a.TraderType,
				"markets_traded":  u64(a.MarketsTraded),
				"volume_24h":      a.Volume24h,
				"volume_7d":       a.Volume7d,
				"pnl_realized":    a.PnlRealized,
				"pnl_unrealized":  a.PnlUnrealized,
				"win_rate":        a.WinRate,
				"sharpe_ratio":    a.SharpeRatio,
				"max_drawdown":    a.MaxDrawdown,
				"position_size":   a.PositionSize,
				"leverage":        a.Leverage,
				"risk_score":      a.RiskScore,
			},
		})
	}
	return changes
}

func globalFields(s domain.GlobalOrderbookStats) map[string]string {
	return map[string]string{
		"trades_quantity":          u64(s.TradesQuantity),
		"buys_quantity":            u64(s.BuysQuantity),
		"sells_quantity":           u64(s.SellsQuantity),
		"collateral_volume":        s.CollateralVolume,
		"scaled_collateral_volume": s.ScaledCollateralVolume,
		"total_fees":               s.TotalFees,
		"average_trade_size":       s.AverageTradeSize,
		"unique_traders":           u64(s.UniqueTraders),
		"active_markets":           u64(s.ActiveMarkets),
		"last_updated":             i64(s.LastUpdated),
		"platform_fee_revenue":     s.PlatformFeeRevenue,
	}
}

// GlobalChanges renders global-stats deltas into the global_stats table.
func GlobalChanges(deltas []store.Delta[domain.GlobalOrderbookStats]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		changes = append(changes, domain.EntityChange{
			Table:  domain.TableGlobalStats,
			ID:     d.New.ID,
			Op:     opFor(d),
			Fields: globalFields(d.New),
		})
	}
	return changes
}

// GlobalAnalyticsChanges renders the same deltas into the denormalized
// global_analytics table with the extension columns included.
func GlobalAnalyticsChanges(deltas []store.Delta[domain.GlobalOrderbookStats]) []domain.EntityChange {
	changes := make([]domain.EntityChange, 0, len(deltas))
	for _, d := range deltas {
		s := d.New
		fields := globalFields(s)
		fields["total_liquidity"] = s.TotalLiquidity
		fields["market_cap"] = s.MarketCap
		fields["volume_24h"] = s.Volume24h
		fields["volume_7d"] = s.Volume7d
		fields["new_traders_24h"] = u64(s.NewTraders24h)
		fields["new_markets_24h"] = u64(s.NewMarkets24h)
		fields["average_spread"] = s.AverageSpread
		fields["maker_taker_ratio"] = s.MakerTakerRate
		changes = append(changes, domain.EntityChange{
			Table:  domain.TableGlobalAnalytics,
			ID:     s.ID,
			Op:     opFor(d),
			Fields: fields,
		})
	}
	return changes
}
