package service

import (
	"context"
	"strconv"

	"care_wallet/internal/domain"
	"care_wallet/internal/store"

	"github.com/shopspring/decimal"
)

type settings map[string]string

func loadSettings(ctx context.Context, s store.Settings) (settings, error) {
	m, err := s.GetSettings(ctx)
	return settings(m), err
}

func (s settings) enabled(key string) bool {
	v, err := strconv.ParseBool(s[key])
	if err != nil {
		v, _ = strconv.ParseBool(domain.DefaultSettings[key])
	}
	return v
}

// limit returns the configured cap, or false when the value is unset or not
// a positive number.
func (s settings) limit(key string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s[key])
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
