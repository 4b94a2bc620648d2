package s3blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/domain"
)

// BlockArchive reads decoded blocks back out of object storage for
// backfills. Blocks are stored one JSON object per key; keys embed the
// zero-padded block number, so lexicographic key order is block order.
type BlockArchive struct {
	reader domain.BlobReader
	prefix string

	keys []string
	pos  int
}

// NewBlockArchive creates a source over all block objects under prefix.
func NewBlockArchive(reader domain.BlobReader, prefix string) *BlockArchive {
	if prefix == "" {
		prefix = "blocks"
	}
	return &BlockArchive{reader: reader, prefix: prefix, pos: -1}
}

// Next returns the next archived block, listing the archive lazily on first
// call. It returns io.EOF after the last block.
func (s *BlockArchive) Next(ctx context.Context) (*chain.Block, error) {
	if s.pos < 0 {
		infos, err := s.reader.List(ctx, s.prefix)
		if err != nil {
			return nil, fmt.Errorf("s3blob: list block archive %s: %w", s.prefix, err)
		}
		s.keys = make([]string, 0, len(infos))
		for _, info := range infos {
			s.keys = append(s.keys, info.Path)
		}
		sort.Strings(s.keys)
		s.pos = 0
	}

	if s.pos >= len(s.keys) {
		return nil, io.EOF
	}

	key := s.keys[s.pos]
	s.pos++

	body, err := s.reader.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("s3blob: get block %s: %w", key, err)
	}
	defer body.Close()

	var blk chain.Block
	if err := json.NewDecoder(body).Decode(&blk); err != nil {
		return nil, fmt.Errorf("s3blob: decode block %s: %w", key, err)
	}
	return &blk, nil
}
