package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mass conversion factors used throughout pricing. Spot feeds quote per troy
// ounce; the don is the traditional unit customers quote jewelry in.
const (
	GramsPerTroyOunce = 31.1035
	GramsPerDon       = 3.75
)

// Metal identifies which reference price applies.
type Metal string

const (
	MetalSilver Metal = "silver"
	MetalGold   Metal = "gold"
)

// NormalizeMetal maps any unrecognized value to silver rather than erroring.
func NormalizeMetal(s string) Metal {
	if Metal(s) == MetalGold {
		return MetalGold
	}
	return MetalSilver
}

// Unit is a user-facing mass unit for quote input.
type Unit string

const (
	UnitGram      Unit = "g"
	UnitKilogram  Unit = "kg"
	UnitTroyOunce Unit = "oz"
	UnitDon       Unit = "don"
)

// NormalizeUnit maps any unrecognized value to grams rather than erroring.
func NormalizeUnit(s string) Unit {
	switch Unit(s) {
	case UnitKilogram, UnitTroyOunce, UnitDon:
		return Unit(s)
	default:
		return UnitGram
	}
}

// Grams converts an amount expressed in this unit to grams.
func (u Unit) Grams(amount decimal.Decimal) decimal.Decimal {
	switch u {
	case UnitKilogram:
		return amount.Mul(decimal.NewFromInt(1000))
	case UnitTroyOunce:
		return amount.Mul(decimal.NewFromFloat(GramsPerTroyOunce))
	case UnitDon:
		return amount.Mul(decimal.NewFromFloat(GramsPerDon))
	default:
		return amount
	}
}

// PriceSnapshot is the point-in-time copy of cached reference prices.
// The three price fields are all populated or all null: a refresh either
// fully succeeds and replaces the whole snapshot, or leaves it untouched.
type PriceSnapshot struct {
	Silver    decimal.NullDecimal // KRW per gram
	Gold      decimal.NullDecimal // KRW per gram
	USDKRW    decimal.NullDecimal
	UpdatedAt time.Time
}

// Complete reports whether every price field is populated.
func (s PriceSnapshot) Complete() bool {
	return s.Silver.Valid && s.Gold.Valid && s.USDKRW.Valid
}

// Stale reports whether the snapshot needs a refresh: missing fields count
// as stale, as does an update timestamp older than ttl.
func (s PriceSnapshot) Stale(now time.Time, ttl time.Duration) bool {
	if !s.Complete() {
		return true
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// PricePerGram returns the reference price for the given metal.
func (s PriceSnapshot) PricePerGram(m Metal) decimal.NullDecimal {
	if m == MetalGold {
		return s.Gold
	}
	return s.Silver
}

// Estimate is the result of a quote computation against a snapshot.
type Estimate struct {
	Grams        decimal.Decimal
	PricePerGram decimal.Decimal
	Total        decimal.Decimal
}
