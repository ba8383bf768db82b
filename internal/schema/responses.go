package schema

import (
	"care_wallet/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type WalletResult struct {
	Success bool           `json:"success"`
	Wallet  *domain.Wallet `json:"wallet"`
}

type PaymentResult struct {
	Success bool            `json:"success"`
	Payment *domain.Payment `json:"payment"`
}

type BookingResult struct {
	Success bool                  `json:"success"`
	Booking *domain.HealthService `json:"booking"`
}

// Chat modes
const (
	ChatModeServer = "server"
	ChatModeLocal  = "local"
)

type ChatResponse struct {
	Reply     string               `json:"reply"`
	SessionID string               `json:"session_id,omitempty"`
	Messages  []domain.ChatMessage `json:"messages"`
	Mode      string               `json:"mode"`
}

type ChatHistoryResponse struct {
	SessionID string               `json:"session_id,omitempty"`
	Messages  []domain.ChatMessage `json:"messages"`
	Mode      string               `json:"mode"`
}
