package domain

import "time"

// Notification types
const (
	NotifyVerifyEmail     = "verify_email"
	NotifyPaymentReceipt  = "payment_receipt"
	NotifyBookingReceived = "booking_confirmation"
	NotifyWalletCreated   = "wallet_created"
)

// EmailNotification is an outbox row. Delivery happens outside this service;
// rows are written with status pending and never retried from here.
type EmailNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Recipient string    `gorm:"size:191;not null" json:"recipient"`
	Type      string    `gorm:"size:40;index;not null" json:"type"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	Status    string    `gorm:"size:20;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (EmailNotification) TableName() string {
	return "email_notifications"
}
