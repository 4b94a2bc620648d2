package domain

import "fmt"

// Trade side labels assigned by the asset-id parity heuristic.
const (
	SideBuy     = "buy"
	SideSell    = "sell"
	SideUnknown = "unknown"
)

// OrderFilledEvent is a decoded OrderFilled log enriched with derived fields.
// All monetary amounts and asset ids are base-10 decimal strings; Ordinal is
// the log's position in the block's canonical log order and is the only valid
// sort key when merging events from multiple contracts.
type OrderFilledEvent struct {
	ID                string `json:"id"`
	TransactionHash   string `json:"transaction_hash"`
	Timestamp         int64  `json:"timestamp"`
	OrderHash         string `json:"order_hash"`
	Maker             string `json:"maker"`
	Taker             string `json:"taker"`
	MakerAssetID      string `json:"maker_asset_id"`
	TakerAssetID      string `json:"taker_asset_id"`
	MakerAmountFilled string `json:"maker_amount_filled"`
	TakerAmountFilled string `json:"taker_amount_filled"`
	Fee               string `json:"fee"`
	BlockNumber       uint64 `json:"block_number"`
	Side              string `json:"side"`
	Price             string `json:"price"`
	Ordinal           uint64 `json:"ordinal"`
}

// OrdersMatchedEvent is a decoded OrdersMatched log.
type OrdersMatchedEvent struct {
	ID                string `json:"id"`
	Timestamp         int64  `json:"timestamp"`
	MakerAssetID      string `json:"maker_asset_id"`
	TakerAssetID      string `json:"taker_asset_id"`
	MakerAmountFilled string `json:"maker_amount_filled"`
	TakerAmountFilled string `json:"taker_amount_filled"`
	BlockNumber       uint64 `json:"block_number"`
	Ordinal           uint64 `json:"ordinal"`
}

// OrderFilledBatch is the output of one OrderFilled extractor pass over a
// single block.
type OrderFilledBatch struct {
	Events      []OrderFilledEvent `json:"events"`
	BlockNumber uint64             `json:"block_number"`
	BlockHash   string             `json:"block_hash"`
	Timestamp   int64              `json:"timestamp"`
}

// OrdersMatchedBatch is the output of one OrdersMatched extractor pass over a
// single block.
type OrdersMatchedBatch struct {
	Events      []OrdersMatchedEvent `json:"events"`
	BlockNumber uint64               `json:"block_number"`
	BlockHash   string               `json:"block_hash"`
	Timestamp   int64                `json:"timestamp"`
}

// FillID builds the deterministic id for an OrderFilled event.
func FillID(txHash, orderHash string) string {
	return fmt.Sprintf("%s-%s", txHash, orderHash)
}

// MatchID builds the deterministic id for an OrdersMatched event.
func MatchID(txHash string, ordinal uint64) string {
	return fmt.Sprintf("%s-%d", txHash, ordinal)
}
