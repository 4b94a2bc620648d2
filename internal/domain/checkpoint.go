package domain

import "context"

// Checkpoint captures everything needed to resume processing after block
// Cursor: the latest snapshot of every store key. Snapshots are the full
// state; the event history is never retained.
type Checkpoint struct {
	RunID   string                          `json:"run_id"`
	Cursor  uint64                          `json:"cursor"`
	Markets map[string]MarketOrderbook      `json:"markets"`
	Traders map[string]TraderAccount        `json:"traders"`
	Global  map[string]GlobalOrderbookStats `json:"global"`
}

// CheckpointStore persists and restores pipeline checkpoints between runs.
// Load returns ErrNotFound when no checkpoint has been saved yet.
type CheckpointStore interface {
	Save(ctx context.Context, cp Checkpoint) error
	Load(ctx context.Context) (Checkpoint, error)
}
