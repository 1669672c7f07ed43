// Package fx supplies the foreign-to-local exchange rate used for pricing.
//
// The rate handed to callers is always the adjusted rate: the commercial base
// rate multiplied by the handling and conversion surcharges, rounded to cents.
package fx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/money"
)

var (
	// HandlingFee is the 3.5% handling charge applied on top of the base rate.
	HandlingFee = decimal.RequireFromString("0.035")
	// ConversionFee is the 1.9% card conversion fee.
	ConversionFee = decimal.RequireFromString("0.019")
	// SurchargeFactor is 1 + HandlingFee + ConversionFee (1.054).
	SurchargeFactor = decimal.NewFromInt(1).Add(HandlingFee).Add(ConversionFee)
	// DefaultFallbackRate is the base rate used whenever the feed cannot be read.
	DefaultFallbackRate = decimal.RequireFromString("5.30")
)

const (
	// DefaultTTL is how long an adjusted rate is served from cache.
	DefaultTTL = 10 * time.Minute
	// DefaultFetchTimeout bounds a single fetch from the feed.
	DefaultFetchTimeout = 3 * time.Second
	// DefaultPair is the quote key requested from the feed.
	DefaultPair = "USDBRL"
)

// Adjust applies the surcharge factor to a base rate and rounds to cents.
func Adjust(base decimal.Decimal) decimal.Decimal {
	return money.Round2(base.Mul(SurchargeFactor))
}

// Quote is a resolved rate together with its provenance.
type Quote struct {
	Pair      string          `json:"pair"`
	Base      decimal.Decimal `json:"base"`
	Adjusted  decimal.Decimal `json:"adjusted"`
	Fallback  bool            `json:"fallback"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
