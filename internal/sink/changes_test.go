package sink

import (
	"testing"

	"github.com/alanyoungcy/polystream/internal/domain"
	"github.com/alanyoungcy/polystream/internal/store"
)

func TestFillChanges(t *testing.T) {
	batch := domain.OrderFilledBatch{
		Events: []domain.OrderFilledEvent{
			{
				ID:                "tx1-order1",
				TransactionHash:   "tx1",
				Timestamp:         1000,
				OrderHash:         "order1",
				Maker:             "alice",
				Taker:             "bob",
				MakerAssetID:      "100",
				TakerAssetID:      "101",
				MakerAmountFilled: "50",
				TakerAmountFilled: "100",
				Fee:               "2",
				BlockNumber:       5,
				Side:              domain.SideBuy,
				Price:             "0.5",
				Ordinal:           3,
			},
		},
	}

	changes := FillChanges(batch)
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}

	c := changes[0]
	if c.Table != domain.TableOrderFills {
		t.Errorf("table = %s, want %s", c.Table, domain.TableOrderFills)
	}
	if c.ID != "tx1-order1" {
		t.Errorf("id = %s, want tx1-order1", c.ID)
	}
	if c.Op != domain.OpCreate {
		t.Errorf("op = %s, want create (fills are append-only)", c.Op)
	}
	want := map[string]string{
		"transaction_hash":    "tx1",
		"maker":               "alice",
		"taker":               "bob",
		"side":                "buy",
		"price":               "0.5",
		"ordinal":             "3",
		"block_number":        "5",
		"taker_amount_filled": "100",
	}
	for k, v := range want {
		if c.Fields[k] != v {
			t.Errorf("field %s = %s, want %s", k, c.Fields[k], v)
		}
	}
}

func TestMarketChangesOp(t *testing.T) {
	prev := domain.MarketOrderbook{ID: "100", TradesQuantity: 1}
	deltas := []store.Delta[domain.MarketOrderbook]{
		{Key: "100", Old: nil, New: domain.MarketOrderbook{ID: "100", TradesQuantity: 1, CollateralVolume: "10"}},
		{Key: "100", Old: &prev, New: domain.MarketOrderbook{ID: "100", TradesQuantity: 2, CollateralVolume: "30"}},
	}

	changes := MarketChanges(deltas)
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Op != domain.OpCreate {
		t.Errorf("first op = %s, want create (no prior value)", changes[0].Op)
	}
	if changes[1].Op != domain.OpUpdate {
		t.Errorf("second op = %s, want update", changes[1].Op)
	}
	if changes[0].Table != domain.TableMarketBooks {
		t.Errorf("table = %s, want %s", changes[0].Table, domain.TableMarketBooks)
	}
	if changes[1].Fields["trades_quantity"] != "2" || changes[1].Fields["collateral_volume"] != "30" {
		t.Errorf("update fields = %v", changes[1].Fields)
	}

	// Normalized table omits the extension columns.
	if _, ok := changes[0].Fields["volatility"]; ok {
		t.Error("normalized market table should not carry extension columns")
	}
}

func TestMarketAnalyticsChangesCarriesExtensions(t *testing.T) {
	deltas := []store.Delta[domain.MarketOrderbook]{
		{Key: "100", New: domain.MarketOrderbook{ID: "100", Volatility: "0.2", LiquidityScore: "5"}},
	}
	changes := MarketAnalyticsChanges(deltas)
	if changes[0].Table != domain.TableMarketAnalytics {
		t.Errorf("table = %s, want %s", changes[0].Table, domain.TableMarketAnalytics)
	}
	if changes[0].Fields["volatility"] != "0.2" || changes[0].Fields["liquidity_score"] != "5" {
		t.Errorf("extension fields = %v", changes[0].Fields)
	}
}

func TestTraderChanges(t *testing.T) {
	deltas := []store.Delta[domain.TraderAccount]{
		{Key: "alice", New: domain.TraderAccount{
			ID:             "alice",
			TradesQuantity: 3,
			TotalVolume:    "900",
			TraderType:     domain.TraderRetail,
			MarketsTraded:  2,
			IsActive:       true,
		}},
	}

	changes := TraderChanges(deltas)
	c := changes[0]
	if c.Table != domain.TableTraderAccounts || c.ID != "alice" {
		t.Errorf("change = %s/%s, want trader_accounts/alice", c.Table, c.ID)
	}
	if c.Fields["trader_type"] != domain.TraderRetail {
		t.Errorf("trader_type = %s, want retail", c.Fields["trader_type"])
	}
	if c.Fields["markets_traded"] != "2" || c.Fields["is_active"] != "true" {
		t.Errorf("fields = %v", c.Fields)
	}
}

func TestGlobalChanges(t *testing.T) {
	stats := domain.GlobalOrderbookStats{
		ID:                 domain.GlobalStatsKey,
		TradesQuantity:     10,
		BuysQuantity:       6,
		SellsQuantity:      4,
		CollateralVolume:   "5000",
		TotalFees:          "12",
		PlatformFeeRevenue: "12",
		UniqueTraders:      7,
		ActiveMarkets:      3,
	}
	deltas := []store.Delta[domain.GlobalOrderbookStats]{
		{Key: domain.GlobalStatsKey, New: stats},
	}

	changes := GlobalChanges(deltas)
	c := changes[0]
	if c.Table != domain.TableGlobalStats || c.ID != domain.GlobalStatsKey {
		t.Errorf("change = %s/%s, want global_stats/global", c.Table, c.ID)
	}
	if c.Fields["buys_quantity"] != "6" || c.Fields["sells_quantity"] != "4" {
		t.Errorf("buy/sell fields = %v", c.Fields)
	}
	if c.Fields["platform_fee_revenue"] != "12" {
		t.Errorf("platform_fee_revenue = %s, want 12", c.Fields["platform_fee_revenue"])
	}

	ext := GlobalAnalyticsChanges(deltas)
	if ext[0].Table != domain.TableGlobalAnalytics {
		t.Errorf("analytics table = %s, want %s", ext[0].Table, domain.TableGlobalAnalytics)
	}
	if _, ok := ext[0].Fields["maker_taker_ratio"]; !ok {
		t.Error("analytics variant should carry the extension columns")
	}
}
