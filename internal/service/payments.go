package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/sirupsen/logrus"
)

// Payments sends money from the caller's wallet to a named recipient.
type Payments struct {
	store store.Store
}

func NewPayments(s store.Store) *Payments {
	return &Payments{store: s}
}

// Pay runs the payment flow:
//  1. the user must still exist and payments must be enabled,
//  2. the amount must not exceed max_payment_amount,
//  3. the wallet is debited and the payment row inserted atomically,
//  4. history, audit and receipt rows are written best-effort.
//
// store.ErrInsufficientBalance is returned unwrapped when the wallet cannot
// cover the amount; in that case nothing has been written.
func (p *Payments) Pay(ctx context.Context, userID uint, req schema.PaymentRequest, ip string) (*domain.Payment, Outcome, error) {
	user, err := p.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Outcome{}, ErrUserNotFound
		}
		return nil, Outcome{}, err
	}
	cfg, err := loadSettings(ctx, p.store)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("load settings: %w", err)
	}
	if !cfg.enabled(domain.SettingPaymentsEnabled) {
		return nil, Outcome{}, ErrPaymentsDisabled
	}
	amount, err := domain.Amount(req.Amount)
	if err != nil {
		return nil, Outcome{}, err
	}
	if max, ok := cfg.limit(domain.SettingMaxPayment); ok && amount.GreaterThan(max) {
		return nil, Outcome{}, ErrAmountLimit
	}
	if user.Wallet == nil {
		return nil, Outcome{}, ErrWalletNotFound
	}
	if !user.Wallet.IsActive {
		return nil, Outcome{}, ErrWalletInactive
	}

	payment := &domain.Payment{
		UserID:         userID,
		WalletID:       &user.Wallet.ID,
		Amount:         amount,
		RecipientName:  strings.TrimSpace(req.RecipientName),
		RecipientEmail: strings.ToLower(strings.TrimSpace(req.RecipientEmail)),
		RecipientPhone: strings.TrimSpace(req.RecipientPhone),
		Description:    strings.TrimSpace(req.Description),
		Status:         domain.StatusCompleted,
		TxReference:    utils.NewMockReference(),
	}
	fields := logrus.Fields{"user_id": userID, "wallet_id": user.Wallet.ID, "amount": amount.String(), "op": "payment"}
	if err := p.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			return nil, Outcome{}, err
		}
		logrus.WithFields(fields).WithField("error", err.Error()).Error("Payment failed")
		return nil, Outcome{}, fmt.Errorf("create payment: %w", err)
	}
	fields["payment_id"] = payment.ID

	writes := []sideWrite{
		side("wallet_transaction", func(ctx context.Context) error {
			return p.store.CreateWalletTransaction(ctx, &domain.WalletTransaction{
				WalletID:    user.Wallet.ID,
				UserID:      userID,
				PaymentID:   &payment.ID,
				Amount:      amount.Neg(),
				Type:        domain.TxTypePayment,
				TxReference: payment.TxReference,
				Description: "Payment to " + payment.RecipientName,
			})
		}),
		side("audit_log", func(ctx context.Context) error {
			return p.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     userID,
				Action:     domain.AuditPaymentCreated,
				Resource:   "payment",
				ResourceID: fmt.Sprint(payment.ID),
				Details: map[string]any{
					"amount":       amount.String(),
					"recipient":    payment.RecipientName,
					"tx_reference": payment.TxReference,
				},
				IPAddress: ip,
			})
		}),
		side("email_notification", func(ctx context.Context) error {
			return p.store.CreateEmailNotification(ctx, &domain.EmailNotification{
				UserID:    userID,
				Recipient: user.Email,
				Type:      domain.NotifyPaymentReceipt,
				Subject:   "Payment receipt",
				Body:      fmt.Sprintf("You paid %s to %s. Reference %s.", amount.StringFixed(2), payment.RecipientName, payment.TxReference),
				Status:    domain.StatusPending,
			})
		}),
	}
	if payment.RecipientEmail != "" {
		writes = append(writes, side("recipient_notification", func(ctx context.Context) error {
			return p.store.CreateEmailNotification(ctx, &domain.EmailNotification{
				UserID:    userID,
				Recipient: payment.RecipientEmail,
				Type:      domain.NotifyPaymentReceipt,
				Subject:   "You received a payment",
				Body:      fmt.Sprintf("%s sent you %s. Reference %s.", user.Profile.FullName, amount.StringFixed(2), payment.TxReference),
				Status:    domain.StatusPending,
			})
		}))
	}
	out := bestEffort(ctx, fields, writes...)
	logrus.WithFields(fields).Info("Payment transaction")
	return payment, out, nil
}

// List returns the caller's payments, newest first.
func (p *Payments) List(ctx context.Context, userID uint, page utils.Page) ([]domain.Payment, int64, error) {
	return p.store.ListPayments(ctx, store.PaymentFilter{UserID: userID, Page: page})
}
