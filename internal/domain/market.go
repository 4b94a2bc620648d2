package domain

// MarketOrderbook is the incrementally maintained per-market aggregate. The
// key is the normalized asset id of the maker side of each fill. Counts and
// cumulative volumes only ever increase; entries are never deleted.
//
// Volume, fee, and size fields are base-10 decimal strings. The 24h/7d and
// depth fields are declared extension points and stay at their zero values;
// the core never computes them.
type MarketOrderbook struct {
	ID                     string `json:"id"`
	ConditionID            string `json:"condition_id"`
	TradesQuantity         uint64 `json:"trades_quantity"`
	BuysQuantity           uint64 `json:"buys_quantity"`
	SellsQuantity          uint64 `json:"sells_quantity"`
	CollateralVolume       string `json:"collateral_volume"`
	ScaledCollateralVolume string `json:"scaled_collateral_volume"`
	AverageTradeSize       string `json:"average_trade_size"`
	TotalFees              string `json:"total_fees"`
	LastActiveDay          int64  `json:"last_active_day"`
	LastUpdatedBlock       uint64 `json:"last_updated_block"`

	// Extension points, not computed by the core.
	MidPrice        string `json:"mid_price"`
	Spread          string `json:"spread"`
	Volume24h       string `json:"volume_24h"`
	Volume7d        string `json:"volume_7d"`
	PriceChange24h  string `json:"price_change_24h"`
	Volatility      string `json:"volatility"`
	UniqueTraders24 uint64 `json:"unique_traders_24h"`
	LiquidityScore  string `json:"liquidity_score"`
	MarketDepth     string `json:"market_depth"`
}

// MarketOrderbooks is the block-scoped projection of all markets that changed
// during one block.
type MarketOrderbooks struct {
	Orderbooks  []MarketOrderbook `json:"orderbooks"`
	BlockNumber uint64            `json:"block_number"`
	BlockHash   string            `json:"block_hash"`
	Timestamp   int64             `json:"timestamp"`
}
