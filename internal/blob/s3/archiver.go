package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// AnalyticsArchiver implements domain.AnalyticsArchiver by serializing each
// consolidated per-block snapshot to JSON and uploading it under a
// block-number-keyed path. Paths are deterministic, so re-processing a
// block overwrites its own object.
type AnalyticsArchiver struct {
	writer domain.BlobWriter
	prefix string
}

// NewAnalyticsArchiver creates an archiver writing under the given key
// prefix (for example "analytics").
func NewAnalyticsArchiver(writer domain.BlobWriter, prefix string) *AnalyticsArchiver {
	if prefix == "" {
		prefix = "analytics"
	}
	return &AnalyticsArchiver{writer: writer, prefix: prefix}
}

// ArchiveAnalytics uploads one block's analytics snapshot.
func (a *AnalyticsArchiver) ArchiveAnalytics(ctx context.Context, analytics *domain.OrderbookAnalytics) error {
	data, err := json.Marshal(analytics)
	if err != nil {
		return fmt.Errorf("s3blob: marshal analytics for block %d: %w", analytics.BlockNumber, err)
	}

	path := fmt.Sprintf("%s/block-%012d.json", a.prefix, analytics.BlockNumber)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive analytics for block %d: %w", analytics.BlockNumber, err)
	}
	return nil
}
