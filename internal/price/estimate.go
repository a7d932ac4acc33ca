package price

import (
	"github.com/shopspring/decimal"

	"github.com/seojun-dev/geumbang/internal/domain"
)

// ComputeEstimate converts an amount in the given unit to grams and prices
// it with the snapshot's reference price for the metal. Unrecognized metal
// or unit values normalize (silver, grams) instead of erroring; a missing or
// non-positive amount is ErrInvalidAmount and an incomplete snapshot is
// ErrPricesUnavailable. The total is rounded half-up to 2 decimal places.
// No margin is applied here: margin is a display-layer concern.
func ComputeEstimate(metal, unit string, amount decimal.Decimal, snap domain.PriceSnapshot) (domain.Estimate, error) {
	m := domain.NormalizeMetal(metal)
	u := domain.NormalizeUnit(unit)

	if amount.Sign() <= 0 {
		return domain.Estimate{}, domain.ErrInvalidAmount
	}
	if !snap.Complete() {
		return domain.Estimate{}, domain.ErrPricesUnavailable
	}

	perGram := snap.PricePerGram(m).Decimal
	grams := u.Grams(amount)

	return domain.Estimate{
		Grams:        grams,
		PricePerGram: perGram,
		Total:        perGram.Mul(grams).Round(2),
	}, nil
}

var hundred = decimal.NewFromInt(100)

// ApplyMargin adds a caller-supplied margin percentage (0..100) on top of a
// reference total. The margin never touches the stored reference price.
func ApplyMargin(total, marginPercent decimal.Decimal) (decimal.Decimal, error) {
	if marginPercent.Sign() < 0 || marginPercent.GreaterThan(hundred) {
		return decimal.Decimal{}, domain.ErrInvalidMargin
	}
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(hundred))
	return total.Mul(factor).Round(2), nil
}
