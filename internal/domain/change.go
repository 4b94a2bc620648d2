package domain

import "context"

// ChangeOp is the operation an EntityChange asks the sink to perform.
type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
)

// Sink table names. For each aggregate both a normalized and a denormalized
// analytics variant exist as alternative exports of the same deltas.
const (
	TableOrderFills      = "order_fills"
	TableMarketBooks     = "market_orderbooks"
	TableMarketAnalytics = "market_analytics"
	TableTraderAccounts  = "trader_accounts"
	TableTraderAnalytics = "trader_analytics"
	TableGlobalStats     = "global_stats"
	TableGlobalAnalytics = "global_analytics"
)

// EntityChange is a generic insert/update record handed to the external sink.
// Fields maps column name to its string-rendered value.
type EntityChange struct {
	Table  string            `json:"table"`
	ID     string            `json:"id"`
	Op     ChangeOp          `json:"op"`
	Fields map[string]string `json:"fields"`
}

// ChangeWriter is the external sink for entity changes. blockNumber lets the
// sink attribute a batch to its block; runID is the pipeline run's id.
type ChangeWriter interface {
	WriteChanges(ctx context.Context, runID string, blockNumber uint64, changes []EntityChange) error
}
