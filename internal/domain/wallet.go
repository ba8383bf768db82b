package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet Model
//
// Address is an opaque mock identifier. It is not derived from any key pair and
// has no meaning on any ledger.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	UserID    uint            `gorm:"uniqueIndex" json:"user_id"`                           // Foreign key to User
	Address   string          `gorm:"size:66;uniqueIndex" json:"address"`                   // Mock wallet address
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // Wallet balance
	IsActive  bool            `gorm:"default:true" json:"is_active"`                        // Inactive wallets cannot pay
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Wallet transaction types
const (
	TxTypePayment = "payment"
	TxTypeDeposit = "deposit"
)

// WalletTransaction is the per-wallet history row written next to a balance change.
type WalletTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	WalletID    uint            `gorm:"index;not null" json:"wallet_id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	PaymentID   *uint           `gorm:"index" json:"payment_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // positive = credit, negative = debit
	Type        string          `gorm:"size:20;index;not null" json:"type"`
	TxReference string          `gorm:"size:66" json:"tx_reference"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
