package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"care_wallet/internal/domain"
	"care_wallet/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Admin backs the dashboard actions that change state.
type Admin struct {
	store store.Store
}

func NewAdmin(s store.Store) *Admin {
	return &Admin{store: s}
}

// SetPaymentStatus overrides a payment's status. Balances are not touched:
// refunds and cancellations here are bookkeeping only.
func (a *Admin) SetPaymentStatus(ctx context.Context, adminID, paymentID uint, status, reason, ip string) (*domain.Payment, Outcome, error) {
	if !domain.ValidPaymentStatus(status) {
		return nil, Outcome{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	before, err := a.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Outcome{}, ErrPaymentNotFound
		}
		return nil, Outcome{}, err
	}
	previous := before.Status
	payment, err := a.store.UpdatePaymentStatus(ctx, paymentID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Outcome{}, ErrPaymentNotFound
		}
		return nil, Outcome{}, fmt.Errorf("update payment status: %w", err)
	}
	fields := logrus.Fields{"admin_id": adminID, "payment_id": paymentID, "status": status, "op": "payment_status"}
	out := bestEffort(ctx, fields,
		side("audit_log", func(ctx context.Context) error {
			return a.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     adminID,
				Action:     domain.AuditPaymentStatusChanged,
				Resource:   "payment",
				ResourceID: fmt.Sprint(paymentID),
				Details:    map[string]any{"from": previous, "to": status, "reason": reason},
				IPAddress:  ip,
			})
		}),
	)
	logrus.WithFields(fields).Info("Payment status changed")
	return payment, out, nil
}

// UpdateSettings writes known keys only. Boolean and numeric settings are
// checked before anything is saved.
func (a *Admin) UpdateSettings(ctx context.Context, adminID uint, values map[string]string, ip string) (map[string]string, Outcome, error) {
	for k, v := range values {
		if _, ok := domain.DefaultSettings[k]; !ok {
			return nil, Outcome{}, fmt.Errorf("%w: %s", ErrUnknownSetting, k)
		}
		if err := checkSetting(k, v); err != nil {
			return nil, Outcome{}, err
		}
	}
	if err := a.store.SaveSettings(ctx, values, adminID); err != nil {
		return nil, Outcome{}, fmt.Errorf("save settings: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	fields := logrus.Fields{"admin_id": adminID, "op": "settings"}
	out := bestEffort(ctx, fields,
		side("audit_log", func(ctx context.Context) error {
			return a.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:    adminID,
				Action:    domain.AuditSettingsUpdated,
				Resource:  "admin_settings",
				Details:   map[string]any{"keys": keys},
				IPAddress: ip,
			})
		}),
	)
	current, err := a.store.GetSettings(ctx)
	if err != nil {
		return nil, out, err
	}
	return current, out, nil
}

func checkSetting(key, value string) error {
	switch key {
	case domain.SettingPaymentsEnabled, domain.SettingBookingsEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalidSetting, key)
		}
	case domain.SettingMaxPayment:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidSetting, key)
		}
	}
	return nil
}
