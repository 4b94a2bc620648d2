// Package numeric holds the pure arithmetic helpers shared by the extractors
// and aggregators. All monetary values travel as base-10 decimal strings; a
// string that fails to parse is treated as zero so that one malformed value
// never aborts a block.
package numeric

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// Classification thresholds.
const (
	highFrequencyTrades   = 100
	marketMakerMarketsMin = 5
)

// largeTradeThreshold is the average trade size (in collateral units) above
// which a trader counts as a whale.
var largeTradeThreshold = decimal.NewFromInt(10000)

// Parse converts a base-10 decimal string to a decimal.Decimal, returning
// zero for empty or malformed input.
func Parse(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CalculatePrice divides the maker amount by the taker amount. A zero taker
// amount yields zero rather than an error.
func CalculatePrice(makerAmount, takerAmount string) decimal.Decimal {
	taker := Parse(takerAmount)
	if taker.IsZero() {
		return decimal.Zero
	}
	return Parse(makerAmount).Div(taker)
}

// DetermineTradeSide classifies a fill by the parity of its asset ids:
// collateral ids are conventionally even and outcome-token ids odd, so an
// even maker asset against an odd taker asset means the maker is paying
// collateral for tokens (a buy), and the reverse is a sell. Anything else is
// unknown. This is a convention of how the exchange assigns ids, not a
// property of the contract.
func DetermineTradeSide(makerAssetID, takerAssetID string) string {
	maker, mok := new(big.Int).SetString(makerAssetID, 10)
	taker, tok := new(big.Int).SetString(takerAssetID, 10)
	if !mok {
		maker = new(big.Int)
	}
	if !tok {
		taker = new(big.Int)
	}

	switch {
	case maker.Bit(0) == 0 && taker.Bit(0) == 1:
		return domain.SideBuy
	case maker.Bit(0) == 1 && taker.Bit(0) == 0:
		return domain.SideSell
	default:
		return domain.SideUnknown
	}
}

// AverageTradeSize divides total volume by trade count, yielding zero when
// the count is zero.
func AverageTradeSize(totalVolume decimal.Decimal, trades uint64) decimal.Decimal {
	if trades == 0 {
		return decimal.Zero
	}
	return totalVolume.Div(decimal.NewFromUint64(trades))
}

// ScaledDecimal shifts a raw integer amount down by the given number of
// decimals (6 for USDC collateral).
func ScaledDecimal(value string, decimals int32) decimal.Decimal {
	return Parse(value).Shift(-decimals)
}

// ConditionID derives the normalized market condition key for an asset id.
func ConditionID(assetID string) string {
	return "condition_" + assetID
}

// TimestampToDay buckets a unix timestamp into whole days.
func TimestampToDay(ts int64) int64 {
	return ts / 86400
}

// ClassifyTraderType tags a trader from trade count, cumulative volume, and
// the number of distinct markets traded. High-frequency traders spread over
// many markets are market makers; large average sizes are whales; many
// markets at low frequency are arbitrageurs; everyone else is retail.
func ClassifyTraderType(trades uint64, totalVolume decimal.Decimal, uniqueMarkets uint64) string {
	avg := AverageTradeSize(totalVolume, trades)

	switch {
	case trades >= highFrequencyTrades && uniqueMarkets >= marketMakerMarketsMin:
		return domain.TraderMarketMaker
	case avg.GreaterThanOrEqual(largeTradeThreshold):
		return domain.TraderWhale
	case uniqueMarkets >= marketMakerMarketsMin:
		return domain.TraderArbitrageur
	default:
		return domain.TraderRetail
	}
}

// PercentageChange returns the relative change from old to new in percent,
// zero when old is zero.
func PercentageChange(oldValue, newValue decimal.Decimal) decimal.Decimal {
	if oldValue.IsZero() {
		return decimal.Zero
	}
	return newValue.Sub(oldValue).Div(oldValue).Mul(decimal.NewFromInt(100))
}
