package domain

import "time"

// Audit actions
const (
	AuditUserRegistered       = "user.registered"
	AuditEmailVerified        = "user.email_verified"
	AuditPaymentCreated       = "payment.created"
	AuditPaymentStatusChanged = "payment.status_changed"
	AuditHealthServiceBooked  = "health_service.booked"
	AuditWalletCreated        = "wallet.created"
	AuditWalletDeposit        = "wallet.deposit"
	AuditSettingsUpdated      = "settings.updated"
)

// AuditLog Model
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"`
	Action     string         `gorm:"size:60;index;not null" json:"action"`
	Resource   string         `gorm:"size:60" json:"resource"`
	ResourceID string         `gorm:"size:64" json:"resource_id"`
	Details    map[string]any `gorm:"serializer:json;type:text" json:"details"`
	IPAddress  string         `gorm:"size:45" json:"ip_address"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
