package api

import (
	"context"  // Context for cache operations
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"care_wallet/internal/cache"      // Read cache
	"care_wallet/internal/domain"     // Money validation errors
	"care_wallet/internal/middleware" // Authenticated user lookup
	"care_wallet/internal/schema"     // Request validation errors
	"care_wallet/internal/service"    // Service errors
	"care_wallet/internal/store"      // Store errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ChatFallbackMessage is shown when the model cannot be reached
const ChatFallbackMessage = "I'm having trouble responding right now. Please try again in a moment."

// bindJSON binds the body into req and answers 400 with the failing fields
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": schema.Describe(err).Error()})
		return false
	}
	return true
}

// requireUser returns the authenticated user ID or answers 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c) // Get userID from context
	if !ok {
		// If not, return unauthorized
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// errorStatus maps a service or store error to the HTTP status and message the
// client sees. ok is false for unexpected errors.
func errorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, store.ErrInsufficientBalance):
		return http.StatusBadRequest, "Insufficient balance", true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, "User not found", true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", true
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid or expired token", true
	case errors.Is(err, service.ErrPasswordTooLong):
		return http.StatusBadRequest, "Invalid fields: password", true
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "Email already registered", true
	case errors.Is(err, service.ErrWalletNotFound):
		return http.StatusNotFound, "Wallet not found", true
	case errors.Is(err, store.ErrWalletExists):
		return http.StatusConflict, "Wallet already exists", true
	case errors.Is(err, service.ErrWalletInactive):
		return http.StatusForbidden, "Wallet is inactive", true
	case errors.Is(err, service.ErrPaymentsDisabled):
		return http.StatusForbidden, "Payments are currently disabled", true
	case errors.Is(err, service.ErrBookingsDisabled):
		return http.StatusForbidden, "Bookings are currently disabled", true
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "Amount must be positive with at most 2 decimal places", true
	case errors.Is(err, service.ErrAmountLimit):
		return http.StatusBadRequest, "Amount exceeds the maximum allowed payment", true
	case errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound, "Payment not found", true
	case errors.Is(err, service.ErrUnknownSetting),
		errors.Is(err, service.ErrInvalidSetting),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrUnknownService):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrChatUnavailable):
		return http.StatusInternalServerError, ChatFallbackMessage, true
	}
	return http.StatusInternalServerError, "", false
}

// respondError writes err as {"error": ...}. Unexpected errors are logged and
// reported with fallback so internals never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	status, msg, known := errorStatus(err)
	if !known {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route template
			"error": err.Error(),  // Error message
		}).Error(fallback)
		msg = fallback
	}
	c.JSON(status, gin.H{"error": msg})
}

// paginated is the listing envelope shared by every paged endpoint
func paginated(key string, items any, page, pageSize int, total int64, totalPages int) gin.H {
	return gin.H{
		key:           items,      // Rows for this page
		"page":        page,       // Current page
		"page_size":   pageSize,   // Page size
		"total":       total,      // Total rows
		"total_pages": totalPages, // Total pages
	}
}

// invalidateWallet drops every cached read that depends on the user's wallet
func invalidateWallet(ctx context.Context, rc cache.Cache, userID uint) {
	_ = rc.Delete(ctx, cache.WalletKey(userID))             // Invalidate wallet cache
	_ = rc.DeletePrefix(ctx, cache.TxHistoryPrefix(userID)) // Invalidate all paginated history pages
	_ = rc.DeletePrefix(ctx, cache.AdminPrefix)             // Admin listings include balances and payments
}

// cacheTTL falls back to the 60 second default
func cacheTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 60 * time.Second
	}
	return ttl
}
