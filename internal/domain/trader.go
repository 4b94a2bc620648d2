package domain

// Trader classification tags produced by numeric.ClassifyTraderType.
const (
	TraderRetail      = "retail"
	TraderWhale       = "whale"
	TraderArbitrageur = "arbitrageur"
	TraderMarketMaker = "market_maker"
)

// TraderAccount is the incrementally maintained per-address aggregate. Both
// the maker and the taker of every fill get independent entries. TotalVolume
// accumulates the fill's taker amount on both sides (the total notional of
// the fill); TotalFees accumulates on the taker side only.
type TraderAccount struct {
	ID             string `json:"id"`
	TradesQuantity uint64 `json:"trades_quantity"`
	TotalVolume    string `json:"total_volume"`
	TotalFees      string `json:"total_fees"`
	FirstTrade     int64  `json:"first_trade"`
	LastTrade      int64  `json:"last_trade"`
	IsActive       bool   `json:"is_active"`
	TraderType     string `json:"trader_type"`

	// MarketsTraded counts the distinct markets this trader has touched;
	// TradedMarkets is the backing set, persisted with the snapshot so the
	// count survives checkpoints.
	MarketsTraded uint64          `json:"markets_traded"`
	TradedMarkets map[string]bool `json:"traded_markets,omitempty"`

	// Extension points, not computed by the core.
	Volume24h     string `json:"volume_24h"`
	Volume7d      string `json:"volume_7d"`
	PnlRealized   string `json:"pnl_realized"`
	PnlUnrealized string `json:"pnl_unrealized"`
	WinRate       string `json:"win_rate"`
	SharpeRatio   string `json:"sharpe_ratio"`
	MaxDrawdown   string `json:"max_drawdown"`
	PositionSize  string `json:"position_size"`
	Leverage      string `json:"leverage"`
	RiskScore     string `json:"risk_score"`
}

// CloneMarkets returns a copy of the account with its own traded-markets set,
// so a new snapshot can be mutated without aliasing the previous one.
func (a TraderAccount) CloneMarkets() TraderAccount {
	markets := make(map[string]bool, len(a.TradedMarkets)+1)
	for k, v := range a.TradedMarkets {
		markets[k] = v
	}
	a.TradedMarkets = markets
	return a
}

// TraderAccounts is the block-scoped projection of all traders that changed
// during one block.
type TraderAccounts struct {
	Accounts    []TraderAccount `json:"accounts"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	Timestamp   int64           `json:"timestamp"`
}
