package domain

import "time"

// Admin setting keys
const (
	SettingPaymentsEnabled  = "payments_enabled"
	SettingMaxPayment       = "max_payment_amount"
	SettingBookingsEnabled  = "bookings_enabled"
	SettingChatSystemPrompt = "chat_system_prompt"
)

// DefaultSettings are used for keys that have never been written.
var DefaultSettings = map[string]string{
	SettingPaymentsEnabled:  "true",
	SettingMaxPayment:       "10000",
	SettingBookingsEnabled:  "true",
	SettingChatSystemPrompt: "",
}

// AdminSetting is a single key/value row managed from the admin dashboard.
type AdminSetting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:2000" json:"value"`
	UpdatedBy uint      `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminSetting) TableName() string {
	return "admin_settings"
}
