package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/domain"
)

// memBlob is an in-memory BlobWriter/BlobReader for tests.
type memBlob struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemBlob() *memBlob {
	return &memBlob{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memBlob) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[path] = b
	m.types[path] = contentType
	return nil
}

func (m *memBlob) PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error {
	return m.Put(ctx, path, data, "application/octet-stream")
}

func (m *memBlob) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	b, ok := m.objects[path]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlob) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo
	for k := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			infos = append(infos, domain.BlobInfo{Path: k, Size: int64(len(m.objects[k]))})
		}
	}
	return infos, nil
}

func (m *memBlob) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func TestAnalyticsArchiver(t *testing.T) {
	blob := newMemBlob()
	arch := NewAnalyticsArchiver(blob, "analytics")

	analytics := &domain.OrderbookAnalytics{
		BlockNumber: 42,
		BlockHash:   "abc",
		Timestamp:   1000,
	}
	if err := arch.ArchiveAnalytics(context.Background(), analytics); err != nil {
		t.Fatalf("archive: %v", err)
	}

	wantPath := "analytics/block-000000000042.json"
	data, ok := blob.objects[wantPath]
	if !ok {
		t.Fatalf("object %s not written; have %v", wantPath, blob.objects)
	}
	if blob.types[wantPath] != "application/json" {
		t.Errorf("content type = %s, want application/json", blob.types[wantPath])
	}

	var got domain.OrderbookAnalytics
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal archived snapshot: %v", err)
	}
	if got.BlockNumber != 42 || got.BlockHash != "abc" {
		t.Errorf("round trip = %+v", got)
	}

	// Re-archiving the same block overwrites the same object.
	if err := arch.ArchiveAnalytics(context.Background(), analytics); err != nil {
		t.Fatalf("re-archive: %v", err)
	}
	if len(blob.objects) != 1 {
		t.Errorf("got %d objects after re-archive, want 1", len(blob.objects))
	}
}

func TestAnalyticsArchiverDefaultPrefix(t *testing.T) {
	arch := NewAnalyticsArchiver(newMemBlob(), "")
	if arch.prefix != "analytics" {
		t.Errorf("prefix = %s, want the analytics default", arch.prefix)
	}
}

func putBlock(t *testing.T, blob *memBlob, key string, blk chain.Block) {
	t.Helper()
	data, err := json.Marshal(blk)
	if err != nil {
		t.Fatal(err)
	}
	blob.objects[key] = data
}

func TestBlockArchiveReadsInKeyOrder(t *testing.T) {
	blob := newMemBlob()
	ts := time.Unix(1700000000, 0).UTC()
	putBlock(t, blob, "blocks/block-000000000002.json", chain.Block{Number: 2, Timestamp: ts})
	putBlock(t, blob, "blocks/block-000000000001.json", chain.Block{Number: 1, Timestamp: ts})
	putBlock(t, blob, "other/ignored.json", chain.Block{Number: 99, Timestamp: ts})

	source := NewBlockArchive(blob, "blocks")
	ctx := context.Background()

	first, err := source.Next(ctx)
	if err != nil {
		t.Fatalf("first next: %v", err)
	}
	if first.Number != 1 {
		t.Errorf("first block = %d, want 1 (lexicographic key order)", first.Number)
	}

	second, err := source.Next(ctx)
	if err != nil {
		t.Fatalf("second next: %v", err)
	}
	if second.Number != 2 {
		t.Errorf("second block = %d, want 2", second.Number)
	}

	if _, err := source.Next(ctx); err != io.EOF {
		t.Errorf("after last block err = %v, want io.EOF", err)
	}
}

func TestBlockArchiveEmpty(t *testing.T) {
	source := NewBlockArchive(newMemBlob(), "blocks")
	if _, err := source.Next(context.Background()); err != io.EOF {
		t.Errorf("empty archive err = %v, want io.EOF", err)
	}
}

func TestBlockArchiveMalformedObject(t *testing.T) {
	blob := newMemBlob()
	blob.objects["blocks/bad.json"] = []byte("{not json")

	source := NewBlockArchive(blob, "blocks")
	if _, err := source.Next(context.Background()); err == nil {
		t.Fatal("expected a decode error")
	}
}
