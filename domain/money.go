package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money columns hold two decimal places: unit amounts are NUMERIC(10,2), order totals
// and expense amounts NUMERIC(12,2).
var (
	MaxUnitAmount  = decimal.RequireFromString("99999999.99")
	MaxTotalAmount = decimal.RequireFromString("9999999999.99")
)

// CheckAmount fails with ErrInvalidInput when d has more than two decimal places, is
// negative or exceeds max.
func CheckAmount(field string, d, max decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%w: %s must have at most two decimal places", ErrInvalidInput, field)
	}
	if d.GreaterThan(max) {
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidInput, field, max.StringFixed(2))
	}
	return nil
}
