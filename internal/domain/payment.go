package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

var paymentStatuses = map[string]bool{
	StatusPending:   true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
	StatusRefunded:  true,
}

// ValidPaymentStatus reports whether an admin may set status on a payment.
func ValidPaymentStatus(status string) bool {
	return paymentStatuses[status]
}

// Payment Model
//
// TxReference is an opaque mock identifier shown to the user as a receipt
// number. It is not a blockchain transaction hash.
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	WalletID       *uint           `gorm:"index" json:"wallet_id,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	RecipientName  string          `gorm:"size:120;not null" json:"recipient_name"`
	RecipientEmail string          `gorm:"size:191" json:"recipient_email"`
	RecipientPhone string          `gorm:"size:40" json:"recipient_phone"`
	Description    string          `gorm:"size:500" json:"description"`
	Status         string          `gorm:"size:20;index;not null" json:"status"`
	TxReference    string          `gorm:"size:66;index" json:"tx_reference"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
