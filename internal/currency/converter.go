// Package currency converts monetary amounts into the CHF base using a fixed
// rate table. The converter is pure: no persistence, no side effects.
package currency

import (
	"fmt"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Converter holds CHF-per-unit rates keyed by ISO currency code.
type Converter struct {
	rates map[string]decimal.Decimal
}

// NewConverter returns a converter with the built-in static table.
func NewConverter() *Converter {
	return &Converter{rates: map[string]decimal.Decimal{
		"CHF": decimal.NewFromInt(1),
		"EUR": decimal.NewFromFloat(0.94),
		"USD": decimal.NewFromFloat(0.88),
		"GBP": decimal.NewFromFloat(1.12),
	}}
}

// Rate returns the CHF-per-unit rate for code. Unknown codes fail with
// apperrors.ErrUnknownCurrency, never a 1.0 fallback.
func (c *Converter) Rate(code string) (decimal.Decimal, error) {
	rate, ok := c.rates[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, code)
	}
	return rate, nil
}

// ToCHF converts amount from the given currency into CHF.
func (c *Converter) ToCHF(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	rate, err := c.Rate(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// Known reports whether the converter has a rate for code. Used by input
// validation so bad codes are rejected at the boundary instead of failing
// later inside an aggregate.
func (c *Converter) Known(code string) bool {
	_, ok := c.rates[code]
	return ok
}
