// Package store persists every record the service owns. The gorm
// implementation is used against MySQL; the memory implementation backs local
// runs and tests. Both enforce the same conditional wallet debit.
package store

import (
	"context"
	"errors"
	"time"

	"care_wallet/internal/domain"
	"care_wallet/internal/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate record")
	ErrWalletExists        = errors.New("wallet already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// PaymentFilter narrows payment listings. Zero values match everything.
type PaymentFilter struct {
	UserID uint
	Status string
	From   *time.Time
	To     *time.Time
	Page   utils.Page
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	UserID uint
	Action string
	Page   utils.Page
}

// DashboardStats are the admin dashboard counters.
type DashboardStats struct {
	Users         int64           `json:"users"`
	Wallets       int64           `json:"wallets"`
	Payments      int64           `json:"payments"`
	PaymentVolume decimal.Decimal `json:"payment_volume"`
	Bookings      int64           `json:"bookings"`
	ChatSessions  int64           `json:"chat_sessions"`
}

type Users interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uint, p domain.Profile) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id uint, at time.Time) error
	ListUsers(ctx context.Context, page utils.Page) ([]domain.User, int64, error)
}

type Wallets interface {
	CreateWallet(ctx context.Context, w *domain.Wallet) error
	GetWalletByUser(ctx context.Context, userID uint) (*domain.Wallet, error)
	// Deposit credits the wallet and returns its new state.
	Deposit(ctx context.Context, walletID uint, amount decimal.Decimal) (*domain.Wallet, error)
	ListWalletTransactions(ctx context.Context, walletID uint, page utils.Page) ([]domain.WalletTransaction, int64, error)
}

type Payments interface {
	// CreatePayment debits p.Amount from wallet p.WalletID and inserts p as
	// one unit. The debit only happens while balance >= amount, so concurrent
	// payments can never drive a balance negative; the losing caller gets
	// ErrInsufficientBalance and nothing is written.
	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPayment(ctx context.Context, id uint) (*domain.Payment, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]domain.Payment, int64, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status string) (*domain.Payment, error)
}

type HealthServices interface {
	CreateHealthService(ctx context.Context, h *domain.HealthService) error
	ListHealthServices(ctx context.Context, userID uint, page utils.Page) ([]domain.HealthService, int64, error)
}

type Chats interface {
	GetChatSession(ctx context.Context, userID uint, sessionID string) (*domain.ChatSession, error)
	LatestChatSession(ctx context.Context, userID uint) (*domain.ChatSession, error)
	// SaveChatSession inserts or replaces the whole message list of the
	// (user, session) pair.
	SaveChatSession(ctx context.Context, s *domain.ChatSession) error
}

// Records are the append-only side tables.
type Records interface {
	CreateWalletTransaction(ctx context.Context, t *domain.WalletTransaction) error
	CreateHealthToolUsage(ctx context.Context, u *domain.HealthToolUsage) error
	CreateAuditLog(ctx context.Context, l *domain.AuditLog) error
	CreateEmailNotification(ctx context.Context, n *domain.EmailNotification) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]domain.AuditLog, int64, error)
}

type Settings interface {
	// GetSettings returns stored values layered over domain.DefaultSettings.
	GetSettings(ctx context.Context) (map[string]string, error)
	SaveSettings(ctx context.Context, values map[string]string, updatedBy uint) error
}

// Store is everything the service persists.
type Store interface {
	Users
	Wallets
	Payments
	HealthServices
	Chats
	Records
	Settings
	Stats(ctx context.Context) (*DashboardStats, error)
}

func mergeDefaults(stored map[string]string) map[string]string {
	out := make(map[string]string, len(domain.DefaultSettings)+len(stored))
	for k, v := range domain.DefaultSettings {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
