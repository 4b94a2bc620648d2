package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
)

func decimals(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestVolatility(t *testing.T) {
	// Population stddev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	got := Volatility(decimals(2, 4, 4, 4, 5, 5, 7, 9))
	if got.String() != "2" {
		t.Errorf("volatility = %s, want 2", got)
	}

	if got := Volatility(decimals(5)); !got.IsZero() {
		t.Errorf("volatility of one sample = %s, want 0", got)
	}
	if got := Volatility(nil); !got.IsZero() {
		t.Errorf("volatility of empty series = %s, want 0", got)
	}
	if got := Volatility(decimals(3, 3, 3)); !got.IsZero() {
		t.Errorf("volatility of flat series = %s, want 0", got)
	}
}

func TestLiquidityScore(t *testing.T) {
	got := LiquidityScore(decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.NewFromInt(4))
	if got.String() != "200" {
		t.Errorf("score = %s, want 200", got)
	}
	if got := LiquidityScore(decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(4)); !got.IsZero() {
		t.Errorf("score with zero spread = %s, want 0", got)
	}
	if got := LiquidityScore(decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.Zero); !got.IsZero() {
		t.Errorf("score with zero depth = %s, want 0", got)
	}
}

func TestDetectUnusualActivity(t *testing.T) {
	avg := decimal.NewFromInt(100)
	if !DetectUnusualActivity(decimal.NewFromInt(301), avg, 3.0) {
		t.Error("expected 301 > 3x100 to be unusual")
	}
	if DetectUnusualActivity(decimal.NewFromInt(300), avg, 3.0) {
		t.Error("expected exactly 3x not to be unusual")
	}
}

func TestSharpeRatio(t *testing.T) {
	if got := SharpeRatio(nil, decimal.Zero); !got.IsZero() {
		t.Errorf("sharpe of empty series = %s, want 0", got)
	}

	// A single return falls back to the raw excess return.
	got := SharpeRatio(decimals(5), decimal.NewFromInt(2))
	if got.String() != "3" {
		t.Errorf("sharpe of single return = %s, want 3", got)
	}

	// Constant returns have zero deviation.
	if got := SharpeRatio(decimals(4, 4, 4), decimal.NewFromInt(1)); !got.IsZero() {
		t.Errorf("sharpe with zero deviation = %s, want 0", got)
	}

	// {1, 3} has mean 2 and sample stddev sqrt(2); excess over 1 is 1.
	got = SharpeRatio(decimals(1, 3), decimal.NewFromInt(1))
	f, _ := got.Float64()
	if f < 0.7 || f > 0.72 {
		t.Errorf("sharpe = %v, want ~0.7071", f)
	}
}
