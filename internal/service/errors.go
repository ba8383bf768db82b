package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWalletInactive     = errors.New("wallet inactive")
	ErrPaymentsDisabled   = errors.New("payments are disabled")
	ErrBookingsDisabled   = errors.New("bookings are disabled")
	ErrAmountLimit        = errors.New("amount exceeds limit")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrUnknownSetting     = errors.New("unknown setting")
	ErrInvalidSetting     = errors.New("invalid setting value")
	ErrInvalidStatus      = errors.New("invalid payment status")
	ErrUnknownService     = errors.New("unknown service type")
	ErrChatUnavailable    = errors.New("chat service unavailable")
)
