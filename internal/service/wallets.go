package service

import (
	"context"
	"errors"
	"fmt"

	"care_wallet/internal/domain"
	"care_wallet/internal/schema"
	"care_wallet/internal/store"
	"care_wallet/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Wallets completes account setup and handles simulated top-ups.
type Wallets struct {
	store store.Store
}

func NewWallets(s store.Store) *Wallets {
	return &Wallets{store: s}
}

// Setup saves the profile and creates the user's single wallet with a zero
// balance. A second call fails with store.ErrWalletExists.
func (w *Wallets) Setup(ctx context.Context, userID uint, req schema.WalletSetupRequest, ip string) (*domain.Wallet, Outcome, error) {
	user, err := w.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Outcome{}, ErrUserNotFound
		}
		return nil, Outcome{}, err
	}
	if user.Wallet != nil {
		return nil, Outcome{}, store.ErrWalletExists
	}
	if _, err := w.store.UpdateProfile(ctx, userID, req.Profile()); err != nil {
		return nil, Outcome{}, fmt.Errorf("update profile: %w", err)
	}
	wallet := &domain.Wallet{
		UserID:   userID,
		Address:  utils.NewMockAddress(),
		Balance:  decimal.Zero,
		IsActive: true,
	}
	if err := w.store.CreateWallet(ctx, wallet); err != nil {
		if errors.Is(err, store.ErrWalletExists) {
			return nil, Outcome{}, err
		}
		return nil, Outcome{}, fmt.Errorf("create wallet: %w", err)
	}

	fields := logrus.Fields{"user_id": userID, "wallet_id": wallet.ID, "op": "wallet_setup"}
	out := bestEffort(ctx, fields,
		side("audit_log", func(ctx context.Context) error {
			return w.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     userID,
				Action:     domain.AuditWalletCreated,
				Resource:   "wallet",
				ResourceID: fmt.Sprint(wallet.ID),
				Details:    map[string]any{"address": wallet.Address},
				IPAddress:  ip,
			})
		}),
		side("email_notification", func(ctx context.Context) error {
			return w.store.CreateEmailNotification(ctx, &domain.EmailNotification{
				UserID:    userID,
				Recipient: user.Email,
				Type:      domain.NotifyWalletCreated,
				Subject:   "Your wallet is ready",
				Body:      "Your wallet " + wallet.Address + " has been created.",
				Status:    domain.StatusPending,
			})
		}),
	)
	logrus.WithFields(fields).Info("Wallet created")
	return wallet, out, nil
}

// Get returns the user's wallet.
func (w *Wallets) Get(ctx context.Context, userID uint) (*domain.Wallet, error) {
	wallet, err := w.store.GetWalletByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	return wallet, err
}

// Deposit credits a simulated top-up. The balance change is the primary
// write; the history row and audit log are side writes.
func (w *Wallets) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, ip string) (*domain.Wallet, Outcome, error) {
	if !domain.IsMoney(amount) {
		return nil, Outcome{}, domain.ErrInvalidAmount
	}
	wallet, err := w.Get(ctx, userID)
	if err != nil {
		return nil, Outcome{}, err
	}
	if !wallet.IsActive {
		return nil, Outcome{}, ErrWalletInactive
	}
	updated, err := w.store.Deposit(ctx, wallet.ID, amount)
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("deposit: %w", err)
	}
	ref := utils.NewMockReference()
	fields := logrus.Fields{"user_id": userID, "wallet_id": wallet.ID, "amount": amount.String(), "op": "deposit"}
	out := bestEffort(ctx, fields,
		side("wallet_transaction", func(ctx context.Context) error {
			return w.store.CreateWalletTransaction(ctx, &domain.WalletTransaction{
				WalletID:    wallet.ID,
				UserID:      userID,
				Amount:      amount,
				Type:        domain.TxTypeDeposit,
				TxReference: ref,
				Description: "Wallet top-up",
			})
		}),
		side("audit_log", func(ctx context.Context) error {
			return w.store.CreateAuditLog(ctx, &domain.AuditLog{
				UserID:     userID,
				Action:     domain.AuditWalletDeposit,
				Resource:   "wallet",
				ResourceID: fmt.Sprint(wallet.ID),
				Details:    map[string]any{"amount": amount.String(), "tx_reference": ref},
				IPAddress:  ip,
			})
		}),
	)
	logrus.WithFields(fields).Info("Deposit transaction")
	return updated, out, nil
}

// History pages through the wallet's transaction rows.
func (w *Wallets) History(ctx context.Context, userID uint, page utils.Page) ([]domain.WalletTransaction, int64, error) {
	wallet, err := w.Get(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return w.store.ListWalletTransactions(ctx, wallet.ID, page)
}
