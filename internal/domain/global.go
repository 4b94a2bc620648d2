package domain

// GlobalStatsKey is the single key under which the platform-wide aggregate
// row is stored.
const GlobalStatsKey = "global"

// GlobalOrderbookStats is the single platform-wide aggregate row. Like the
// per-market aggregates, the 24h/7d and liquidity fields are extension points
// the core leaves at zero.
type GlobalOrderbookStats struct {
	ID                     string `json:"id"`
	TradesQuantity         uint64 `json:"trades_quantity"`
	BuysQuantity           uint64 `json:"buys_quantity"`
	SellsQuantity          uint64 `json:"sells_quantity"`
	CollateralVolume       string `json:"collateral_volume"`
	ScaledCollateralVolume string `json:"scaled_collateral_volume"`
	TotalFees              string `json:"total_fees"`
	AverageTradeSize       string `json:"average_trade_size"`
	UniqueTraders          uint64 `json:"unique_traders"`
	ActiveMarkets          uint64 `json:"active_markets"`
	LastUpdated            int64  `json:"last_updated"`
	PlatformFeeRevenue     string `json:"platform_fee_revenue"`

	// Extension points, not computed by the core.
	TotalLiquidity string `json:"total_liquidity"`
	MarketCap      string `json:"market_cap"`
	Volume24h      string `json:"volume_24h"`
	Volume7d       string `json:"volume_7d"`
	NewTraders24h  uint64 `json:"new_traders_24h"`
	NewMarkets24h  uint64 `json:"new_markets_24h"`
	AverageSpread  string `json:"average_spread"`
	MakerTakerRate string `json:"maker_taker_ratio"`
}
