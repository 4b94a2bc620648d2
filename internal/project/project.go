// Package project turns store deltas into block-scoped output collections.
// Projection is stateless and side-effect free: running it twice over the
// same delta list yields identical output.
package project

import (
	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/store"
)

// BlockMeta identifies the block a projection belongs to.
type BlockMeta struct {
	Number    uint64
	Hash      string
	Timestamp int64
}

// Markets projects market deltas into the changed-markets collection for one
// block. Only the new value of each delta is emitted.
func Markets(deltas []store.Delta[domain.MarketOrderbook], meta BlockMeta) domain.MarketOrderbooks {
	out := domain.MarketOrderbooks{
		Orderbooks:  make([]domain.MarketOrderbook, 0, len(deltas)),
		BlockNumber: meta.Number,
		BlockHash:   meta.Hash,
		Timestamp:   meta.Timestamp,
	}
	for _, d := range deltas {
		out.Orderbooks = append(out.Orderbooks, d.New)
	}
	return out
}

// Traders projects trader deltas into the changed-accounts collection for
// one block.
func Traders(deltas []store.Delta[domain.TraderAccount], meta BlockMeta) domain.TraderAccounts {
	out := domain.TraderAccounts{
		Accounts:    make([]domain.TraderAccount, 0, len(deltas)),
		BlockNumber: meta.Number,
		BlockHash:   meta.Hash,
		Timestamp:   meta.Timestamp,
	}
	for _, d := range deltas {
		out.Accounts = append(out.Accounts, d.New)
	}
	return out
}

// Global projects the global-stats delta list into the single stats row, or
// nil when the row did not change this block.
func Global(deltas []store.Delta[domain.GlobalOrderbookStats]) *domain.GlobalOrderbookStats {
	if len(deltas) == 0 {
		return nil
	}
	stats := deltas[len(deltas)-1].New
	return &stats
}
