package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/chain/exchange"
	"github.com/alanyoungcy/polystream/internal/domain"
)

// sliceSource serves a fixed list of blocks and then io.EOF.
type sliceSource struct {
	blocks []*chain.Block
	pos    int
}

func (s *sliceSource) Next(ctx context.Context) (*chain.Block, error) {
	if s.pos >= len(s.blocks) {
		return nil, io.EOF
	}
	blk := s.blocks[s.pos]
	s.pos++
	return blk, nil
}

type recordingWriter struct {
	batches []writtenBatch
}

type writtenBatch struct {
	runID       string
	blockNumber uint64
	changes     []domain.EntityChange
}

func (w *recordingWriter) WriteChanges(ctx context.Context, runID string, blockNumber uint64, changes []domain.EntityChange) error {
	w.batches = append(w.batches, writtenBatch{runID, blockNumber, changes})
	return nil
}

type memCheckpoints struct {
	cp    domain.Checkpoint
	saved int
	has   bool
}

func (m *memCheckpoints) Save(ctx context.Context, cp domain.Checkpoint) error {
	m.cp = cp
	m.saved++
	m.has = true
	return nil
}

func (m *memCheckpoints) Load(ctx context.Context) (domain.Checkpoint, error) {
	if !m.has {
		return domain.Checkpoint{}, domain.ErrNotFound
	}
	return m.cp, nil
}

func fillBlock(number uint64, takerAmount int64) *chain.Block {
	return testChainBlock(number,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, takerAmount, 1),
	)
}

func TestOrchestratorRun(t *testing.T) {
	source := &sliceSource{blocks: []*chain.Block{fillBlock(1, 100), fillBlock(2, 200)}}
	writer := &recordingWriter{}
	cps := &memCheckpoints{}

	orch := NewOrchestrator(source, NewBlockProcessor(testConfig(), discard), writer, cps, nil, discard)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(writer.batches) != 2 {
		t.Fatalf("got %d written batches, want 2", len(writer.batches))
	}
	if writer.batches[0].blockNumber != 1 || writer.batches[1].blockNumber != 2 {
		t.Errorf("batch blocks = %d,%d, want 1,2",
			writer.batches[0].blockNumber, writer.batches[1].blockNumber)
	}
	for _, b := range writer.batches {
		if b.runID != orch.RunID() {
			t.Errorf("batch run id = %s, want %s", b.runID, orch.RunID())
		}
	}

	if cps.saved != 2 {
		t.Errorf("checkpoints saved = %d, want one per block", cps.saved)
	}
	if cps.cp.Cursor != 2 {
		t.Errorf("final cursor = %d, want 2", cps.cp.Cursor)
	}
	if cps.cp.RunID != orch.RunID() {
		t.Errorf("checkpoint run id = %s, want %s", cps.cp.RunID, orch.RunID())
	}
}

func TestOrchestratorSkipsProcessedBlocks(t *testing.T) {
	// First run processes blocks 1 and 2 and checkpoints at 2.
	cps := &memCheckpoints{}
	first := NewOrchestrator(
		&sliceSource{blocks: []*chain.Block{fillBlock(1, 100), fillBlock(2, 200)}},
		NewBlockProcessor(testConfig(), discard), nil, cps, nil, discard,
	)
	if err := first.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second run re-delivers all blocks; only block 3 may be processed.
	writer := &recordingWriter{}
	second := NewOrchestrator(
		&sliceSource{blocks: []*chain.Block{fillBlock(1, 100), fillBlock(2, 200), fillBlock(3, 300)}},
		NewBlockProcessor(testConfig(), discard), writer, cps, nil, discard,
	)
	if err := second.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(writer.batches) != 1 {
		t.Fatalf("got %d written batches, want 1 (blocks at or below the cursor skipped)", len(writer.batches))
	}
	if writer.batches[0].blockNumber != 3 {
		t.Errorf("processed block = %d, want 3", writer.batches[0].blockNumber)
	}

	// The restored state carries the first run's aggregates forward.
	for _, c := range writer.batches[0].changes {
		if c.Table == domain.TableMarketBooks {
			if c.Fields["trades_quantity"] != "3" {
				t.Errorf("market trades = %s, want 3 (two restored + one new)", c.Fields["trades_quantity"])
			}
		}
	}

	if cps.cp.Cursor != 3 {
		t.Errorf("cursor = %d, want 3", cps.cp.Cursor)
	}
}

func TestOrchestratorRunWithoutCollaborators(t *testing.T) {
	source := &sliceSource{blocks: []*chain.Block{fillBlock(1, 100)}}
	orch := NewOrchestrator(source, NewBlockProcessor(testConfig(), discard), nil, nil, nil, discard)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run with nil collaborators: %v", err)
	}
}

func TestOrchestratorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &sliceSource{blocks: []*chain.Block{fillBlock(1, 100)}}
	orch := NewOrchestrator(source, NewBlockProcessor(testConfig(), discard), nil, nil, nil, discard)
	if err := orch.Run(ctx); err == nil {
		t.Fatal("expected a context error")
	}
	if source.pos != 0 {
		t.Errorf("source consumed %d blocks after cancel, want 0", source.pos)
	}
}
