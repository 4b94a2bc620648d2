package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// ChangeWriter implements domain.ChangeWriter by batch-upserting entity
// changes into the entity_changes table. Re-delivery of a block overwrites
// the same rows, so writes are idempotent per (block, table, row).
type ChangeWriter struct {
	pool *pgxpool.Pool
}

// NewChangeWriter creates a ChangeWriter backed by the given client.
func NewChangeWriter(c *Client) *ChangeWriter {
	return &ChangeWriter{pool: c.Pool()}
}

// WriteChanges inserts one row per entity change using a pgx batch.
func (w *ChangeWriter) WriteChanges(ctx context.Context, runID string, blockNumber uint64, changes []domain.EntityChange) error {
	if len(changes) == 0 {
		return nil
	}

	const query = `
		INSERT INTO entity_changes (run_id, block_number, table_name, row_id, op, fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (block_number, table_name, row_id)
		DO UPDATE SET run_id = EXCLUDED.run_id, op = EXCLUDED.op, fields = EXCLUDED.fields`

	batch := &pgx.Batch{}
	for i, ch := range changes {
		fields, err := json.Marshal(ch.Fields)
		if err != nil {
			return fmt.Errorf("postgres: marshal change %d (%s/%s): %w", i, ch.Table, ch.ID, err)
		}
		batch.Queue(query, runID, blockNumber, ch.Table, ch.ID, string(ch.Op), fields)
	}

	br := w.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range changes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: write change batch item %d: %w", i, err)
		}
	}
	return nil
}
