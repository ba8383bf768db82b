package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrInvalidAmount is returned for amounts that are not positive or carry
// fractions of a cent.
var ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")

// Amount converts a request amount to a money value. Amounts are never
// rounded; anything IsMoney rejects is an ErrInvalidAmount.
func Amount(v float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(v)
	if !IsMoney(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// IsMoney reports whether d is above zero with at most two decimal places.
func IsMoney(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}
