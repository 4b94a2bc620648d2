package pipeline

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polystream/internal/chain"
	"github.com/alanyoungcy/polystream/internal/chain/exchange"
	"github.com/alanyoungcy/polystream/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() ProcessorConfig {
	return ProcessorConfig{
		CTFExchange:         exchange.CTFExchangeAddress,
		NegRiskExchange:     exchange.NegRiskExchangeAddress,
		EmitAnalyticsTables: true,
	}
}

func packWords(vals ...*big.Int) []byte {
	out := make([]byte, 0, len(vals)*32)
	for _, v := range vals {
		out = append(out, common.LeftPadBytes(v.Bytes(), 32)...)
	}
	return out
}

func filledLog(contract common.Address, ordinal uint64, makerAsset, takerAsset, makerAmt, takerAmt, fee int64) chain.Log {
	return chain.Log{
		Address: contract,
		Topics: []common.Hash{
			exchange.OrderFilledTopic,
			common.BytesToHash([]byte{byte(ordinal)}),
			common.BytesToHash(common.HexToAddress("0xaaaa").Bytes()),
			common.BytesToHash(common.HexToAddress("0xbbbb").Bytes()),
		},
		Data: packWords(
			big.NewInt(makerAsset), big.NewInt(takerAsset),
			big.NewInt(makerAmt), big.NewInt(takerAmt), big.NewInt(fee),
		),
		Ordinal: ordinal,
	}
}

func testChainBlock(number uint64, logs ...chain.Log) *chain.Block {
	return &chain.Block{
		Number:    number,
		Hash:      common.BytesToHash([]byte{byte(number)}),
		Timestamp: time.Unix(1700000000, 0),
		Transactions: []chain.Transaction{
			{Hash: common.BytesToHash([]byte{0xf0, byte(number)}), Logs: logs},
		},
	}
}

func TestProcessBlock(t *testing.T) {
	p := NewBlockProcessor(testConfig(), discard)

	// One fill on each exchange; the NegRisk log lands first in block
	// order.
	blk := testChainBlock(5,
		filledLog(exchange.NegRiskExchangeAddress, 1, 100, 101, 50, 200, 1),
		filledLog(exchange.CTFExchangeAddress, 2, 200, 201, 80, 400, 2),
	)

	res, err := p.Process(context.Background(), blk)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if res.BlockNumber != 5 {
		t.Errorf("block number = %d, want 5", res.BlockNumber)
	}
	if len(res.Fills.Events) != 2 {
		t.Fatalf("got %d fills, want 2", len(res.Fills.Events))
	}

	// Merged fills follow the block's ordinal order regardless of which
	// contract emitted them.
	if res.Fills.Events[0].Ordinal != 1 || res.Fills.Events[1].Ordinal != 2 {
		t.Errorf("fill ordinals = %d,%d, want 1,2",
			res.Fills.Events[0].Ordinal, res.Fills.Events[1].Ordinal)
	}
	if res.Fills.Events[0].MakerAssetID != "100" {
		t.Errorf("first fill market = %s, want the NegRisk fill (100)", res.Fills.Events[0].MakerAssetID)
	}

	if res.Analytics == nil {
		t.Fatal("analytics snapshot missing")
	}
	if len(res.Analytics.MarketOrderbooks) != 2 {
		t.Errorf("got %d changed markets, want 2", len(res.Analytics.MarketOrderbooks))
	}
	if res.Analytics.GlobalStats == nil {
		t.Fatal("global stats missing")
	}
	g := res.Analytics.GlobalStats
	if g.TradesQuantity != 2 {
		t.Errorf("global trades = %d, want 2", g.TradesQuantity)
	}
	if g.CollateralVolume != "600" {
		t.Errorf("global volume = %s, want 600 (sum of taker amounts)", g.CollateralVolume)
	}
	if g.TotalFees != "3" {
		t.Errorf("global fees = %s, want 3", g.TotalFees)
	}
	if g.UniqueTraders != 2 || g.ActiveMarkets != 2 {
		t.Errorf("traders/markets = %d/%d, want 2/2", g.UniqueTraders, g.ActiveMarkets)
	}

	// Change records: 2 fills + 2 markets + 2 traders + 1 global, doubled
	// minus the fills for the analytics variants.
	wantChanges := 2 + 2 + 2 + 1 + 2 + 2 + 1
	if len(res.Changes) != wantChanges {
		t.Errorf("got %d changes, want %d", len(res.Changes), wantChanges)
	}

	tables := map[string]int{}
	for _, c := range res.Changes {
		tables[c.Table]++
	}
	if tables[domain.TableOrderFills] != 2 {
		t.Errorf("order_fills changes = %d, want 2", tables[domain.TableOrderFills])
	}
	if tables[domain.TableMarketAnalytics] != 2 {
		t.Errorf("market_analytics changes = %d, want 2", tables[domain.TableMarketAnalytics])
	}
}

func TestProcessWithoutAnalyticsTables(t *testing.T) {
	cfg := testConfig()
	cfg.EmitAnalyticsTables = false
	p := NewBlockProcessor(cfg, discard)

	blk := testChainBlock(5,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 200, 1),
	)
	res, err := p.Process(context.Background(), blk)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	for _, c := range res.Changes {
		switch c.Table {
		case domain.TableMarketAnalytics, domain.TableTraderAnalytics, domain.TableGlobalAnalytics:
			t.Errorf("analytics table %s emitted while disabled", c.Table)
		}
	}
}

func TestProcessDeterministic(t *testing.T) {
	blk := testChainBlock(5,
		filledLog(exchange.NegRiskExchangeAddress, 1, 100, 101, 50, 200, 1),
		filledLog(exchange.CTFExchangeAddress, 2, 100, 101, 80, 400, 2),
		filledLog(exchange.CTFExchangeAddress, 3, 200, 201, 10, 100, 1),
	)

	a, err := NewBlockProcessor(testConfig(), discard).Process(context.Background(), blk)
	if err != nil {
		t.Fatalf("first process: %v", err)
	}
	b, err := NewBlockProcessor(testConfig(), discard).Process(context.Background(), blk)
	if err != nil {
		t.Fatalf("second process: %v", err)
	}

	if !reflect.DeepEqual(a.Fills, b.Fills) {
		t.Error("fills differ between identical runs")
	}
	if !reflect.DeepEqual(a.Changes, b.Changes) {
		t.Error("change records differ between identical runs")
	}
	if !reflect.DeepEqual(a.Analytics, b.Analytics) {
		t.Error("analytics differ between identical runs")
	}
}

func TestProcessAccumulatesAcrossBlocks(t *testing.T) {
	p := NewBlockProcessor(testConfig(), discard)
	ctx := context.Background()

	if _, err := p.Process(ctx, testChainBlock(1,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 200, 1),
	)); err != nil {
		t.Fatalf("block 1: %v", err)
	}

	res, err := p.Process(ctx, testChainBlock(2,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 300, 1),
	))
	if err != nil {
		t.Fatalf("block 2: %v", err)
	}

	if len(res.Analytics.MarketOrderbooks) != 1 {
		t.Fatalf("got %d changed markets, want 1", len(res.Analytics.MarketOrderbooks))
	}
	m := res.Analytics.MarketOrderbooks[0]
	if m.TradesQuantity != 2 {
		t.Errorf("market trades after two blocks = %d, want 2", m.TradesQuantity)
	}
	if m.CollateralVolume != "500" {
		t.Errorf("market volume = %s, want 500", m.CollateralVolume)
	}

	// The second block's market change is an update, not a create.
	for _, c := range res.Changes {
		if c.Table == domain.TableMarketBooks && c.Op != domain.OpUpdate {
			t.Errorf("market op = %s, want update", c.Op)
		}
	}
}

func TestCheckpointRestore(t *testing.T) {
	p := NewBlockProcessor(testConfig(), discard)
	ctx := context.Background()

	if _, err := p.Process(ctx, testChainBlock(1,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 200, 1),
	)); err != nil {
		t.Fatalf("block 1: %v", err)
	}

	cp := p.Checkpoint("run-1", 1)
	if cp.RunID != "run-1" || cp.Cursor != 1 {
		t.Errorf("checkpoint meta = %s/%d, want run-1/1", cp.RunID, cp.Cursor)
	}
	if len(cp.Markets) != 1 || len(cp.Traders) != 2 {
		t.Errorf("checkpoint sizes = %d markets %d traders, want 1/2", len(cp.Markets), len(cp.Traders))
	}

	// A fresh processor restored from the checkpoint continues where the
	// original left off.
	fresh := NewBlockProcessor(testConfig(), discard)
	fresh.Restore(cp)

	res, err := fresh.Process(ctx, testChainBlock(2,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 300, 1),
	))
	if err != nil {
		t.Fatalf("block 2 after restore: %v", err)
	}
	if res.Analytics.MarketOrderbooks[0].TradesQuantity != 2 {
		t.Errorf("restored market trades = %d, want 2",
			res.Analytics.MarketOrderbooks[0].TradesQuantity)
	}
}

func TestProcessMissingTimestampFailsBlock(t *testing.T) {
	p := NewBlockProcessor(testConfig(), discard)
	blk := testChainBlock(5,
		filledLog(exchange.CTFExchangeAddress, 1, 100, 101, 50, 200, 1),
	)
	blk.Timestamp = time.Time{}

	if _, err := p.Process(context.Background(), blk); err == nil {
		t.Fatal("expected a missing-timestamp error")
	}
}
