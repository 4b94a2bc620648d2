// Package chain defines the decoded-block input model handed to the pipeline
// by the host. Block acquisition and trace decoding happen upstream; the
// pipeline only reads these structures.
package chain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Log is a single decoded event log. Ordinal is the log's position in the
// block's canonical log order, monotonically increasing across the whole
// block, and is assigned by the host.
type Log struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    []byte         `json:"data"`
	Ordinal uint64         `json:"ordinal"`
}

// Transaction is a decoded transaction with its receipt logs in execution
// order.
type Transaction struct {
	Hash common.Hash `json:"hash"`
	Logs []Log       `json:"logs"`
}

// Block is a fully decoded block: ordered transactions, each with ordered
// logs, plus the block header fields the pipeline needs.
type Block struct {
	Number       uint64        `json:"number"`
	Hash         common.Hash   `json:"hash"`
	Timestamp    time.Time     `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
}

// UnixSeconds returns the block timestamp as unix seconds.
func (b *Block) UnixSeconds() int64 {
	return b.Timestamp.Unix()
}
