package domain

// MarketAlert flags unusual activity on a market. Alert detection is an
// extension point; the combiner always emits an empty list.
type MarketAlert struct {
	MarketID  string `json:"market_id"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ArbitrageOpportunity is a detected cross-market mispricing. Detection is an
// extension point; the combiner always emits an empty list.
type ArbitrageOpportunity struct {
	MarketA        string `json:"market_a"`
	MarketB        string `json:"market_b"`
	SpreadBps      string `json:"spread_bps"`
	EstimatedValue string `json:"estimated_value"`
}

// MarketSentiment is an aggregate sentiment reading. Not computed by the
// core; the combiner emits nil.
type MarketSentiment struct {
	Score      string `json:"score"`
	BuyPct     string `json:"buy_pressure_pct"`
	SellPct    string `json:"sell_pressure_pct"`
	SampleSize uint64 `json:"sample_size"`
}

// OrderbookAnalytics is the consolidated per-block snapshot: every market and
// trader that changed this block, the global stats row, and a top-10 ranking
// of the changed traders by cumulative volume.
type OrderbookAnalytics struct {
	MarketOrderbooks []MarketOrderbook      `json:"market_orderbooks"`
	TopTraders       []TraderAccount        `json:"top_traders"`
	GlobalStats      *GlobalOrderbookStats  `json:"global_stats"`
	BlockNumber      uint64                 `json:"block_number"`
	BlockHash        string                 `json:"block_hash"`
	Timestamp        int64                  `json:"timestamp"`
	MarketAlerts     []MarketAlert          `json:"market_alerts"`
	ArbOpportunities []ArbitrageOpportunity `json:"arbitrage_opportunities"`
	Sentiment        *MarketSentiment       `json:"sentiment,omitempty"`
}
