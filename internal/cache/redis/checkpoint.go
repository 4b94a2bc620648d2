package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// checkpointKey holds the single JSON-serialized checkpoint. Only one
// logical pipeline per keyspace is supported; the store contract assumes a
// single linear history.
const checkpointKey = "polystream:checkpoint"

// CheckpointStore implements domain.CheckpointStore on Redis with a single
// JSON value. Snapshots are full state, so each save replaces the previous
// checkpoint atomically.
type CheckpointStore struct {
	rdb *redis.Client
}

// NewCheckpointStore creates a CheckpointStore backed by the given Client.
func NewCheckpointStore(c *Client) *CheckpointStore {
	return &CheckpointStore{rdb: c.Underlying()}
}

// Save serializes and stores the checkpoint. Checkpoints have no TTL; a
// resumed run needs the latest one regardless of age.
func (s *CheckpointStore) Save(ctx context.Context, cp domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("redis: marshal checkpoint at block %d: %w", cp.Cursor, err)
	}

	if err := s.rdb.Set(ctx, checkpointKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: save checkpoint at block %d: %w", cp.Cursor, err)
	}
	return nil
}

// Load retrieves the latest checkpoint. It returns domain.ErrNotFound when
// none has been saved.
func (s *CheckpointStore) Load(ctx context.Context) (domain.Checkpoint, error) {
	data, err := s.rdb.Get(ctx, checkpointKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Checkpoint{}, domain.ErrNotFound
		}
		return domain.Checkpoint{}, fmt.Errorf("redis: load checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("redis: unmarshal checkpoint: %w", err)
	}
	return cp, nil
}
