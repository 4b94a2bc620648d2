package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// sqrt takes the square root through float64. The analytics helpers below
// are advisory metrics, not ledger arithmetic, so the float round-trip is
// acceptable.
func sqrt(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	if f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Sqrt(f))
}

func mean(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// Volatility is the population standard deviation of the given price series.
// Fewer than two samples yield zero.
func Volatility(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) < 2 {
		return decimal.Zero
	}

	m := mean(prices)
	variance := decimal.Zero
	for _, p := range prices {
		diff := p.Sub(m)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(prices))))

	return sqrt(variance)
}

// LiquidityScore scores a market as volume * depth / spread, zero when
// spread or depth is zero.
func LiquidityScore(totalVolume, spread, depth decimal.Decimal) decimal.Decimal {
	if spread.IsZero() || depth.IsZero() {
		return decimal.Zero
	}
	return totalVolume.Mul(depth).Div(spread)
}

// DetectUnusualActivity reports whether current volume exceeds the
// historical average by more than the given multiplier.
func DetectUnusualActivity(currentVolume, historicalAvg decimal.Decimal, multiplier float64) bool {
	threshold := historicalAvg.Mul(decimal.NewFromFloat(multiplier))
	return currentVolume.GreaterThan(threshold)
}

// SharpeRatio computes the Sharpe ratio of a return series against a
// risk-free rate, using the sample standard deviation. Degenerate inputs
// (empty series, zero deviation) fall back to zero or the raw excess return.
func SharpeRatio(returns []decimal.Decimal, riskFreeRate decimal.Decimal) decimal.Decimal {
	if len(returns) == 0 {
		return decimal.Zero
	}

	excess := mean(returns).Sub(riskFreeRate)
	if len(returns) < 2 {
		return excess
	}

	m := mean(returns)
	variance := decimal.Zero
	for _, r := range returns {
		diff := r.Sub(m)
		variance = variance.Add(diff.Mul(diff))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(returns) - 1)))

	stdDev := sqrt(variance)
	if stdDev.IsZero() {
		return decimal.Zero
	}
	return excess.Div(stdDev)
}
