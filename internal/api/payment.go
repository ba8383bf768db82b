package api

import (
	"bytes"         // Re-reading the request body
	"context"       // Context for cache writes
	"crypto/sha256" // Request fingerprint for idempotency
	"encoding/hex"  // Fingerprint encoding
	"encoding/json" // Stored responses
	"io"            // Body reading
	"net/http"      // HTTP status codes
	"time"          // Reservation TTL

	"care_wallet/internal/cache"   // Idempotency reservations
	"care_wallet/internal/schema"  // Request and response bodies
	"care_wallet/internal/service" // Payment operations
	"care_wallet/internal/utils"   // Pagination

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// IdempotencyHeader carries an optional client key that makes POST /api/payment safe to retry
const IdempotencyHeader = "Idempotency-Key"

// idempotencyTTL is how long a key and its stored response are kept
const idempotencyTTL = 24 * time.Hour

// idempotentResponse is what is stored under an Idempotency-Key. Status 0
// means the first request is still running.
type idempotentResponse struct {
	Hash   string          `json:"hash"`           // sha256 of the request body
	Status int             `json:"status"`         // Final HTTP status
	Body   json.RawMessage `json:"body,omitempty"` // Final response body
}

// CreatePaymentHandler debits the caller's wallet and records the payment
func CreatePaymentHandler(payments *service.Payments, rc cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		// Keep the raw body so it can be fingerprinted and then bound
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		var req schema.PaymentRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context() // Context for store and cache operations
		idemKey := c.GetHeader(IdempotencyHeader)
		var cacheKey, hash string
		// Reserve the key before doing any work
		if idemKey != "" {
			sum := sha256.Sum256(body)
			hash = hex.EncodeToString(sum[:])
			cacheKey = cache.IdempotencyKey(userID, idemKey)
			reserved, err := rc.SetNX(ctx, cacheKey, idempotentResponse{Hash: hash}, idempotencyTTL)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // User ID
					"error":   err.Error(), // Error message
				}).Error("Idempotency reservation failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
				return
			}
			// Someone already used this key
			if !reserved {
				replayPayment(c, rc, cacheKey, hash)
				return
			}
		}

		// Create the payment
		payment, _, err := payments.Pay(ctx, userID, req, c.ClientIP())
		if err != nil {
			// Free the key so the client can retry after fixing the problem
			if cacheKey != "" {
				_ = rc.Delete(ctx, cacheKey)
			}
			respondError(c, err, "Failed to process payment")
			return
		}
		invalidateWallet(ctx, rc, userID) // Invalidate wallet and history cache

		resp := schema.PaymentResult{Success: true, Payment: payment}
		if cacheKey != "" {
			rememberPayment(ctx, rc, cacheKey, hash, resp) // Remember the response for retries
		}
		c.JSON(http.StatusOK, resp) // Return the created payment
	}
}

// rememberPayment stores the final response under the reserved key. If the
// cache rejects it twice the reservation is released, otherwise every retry
// would see "in progress" until the key expires.
func rememberPayment(ctx context.Context, rc cache.Cache, cacheKey, hash string, resp schema.PaymentResult) {
	stored, _ := json.Marshal(resp)
	final := idempotentResponse{Hash: hash, Status: http.StatusOK, Body: stored}
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = rc.Set(ctx, cacheKey, final, idempotencyTTL); err == nil {
			return
		}
	}
	logrus.WithFields(logrus.Fields{
		"key":   cacheKey,    // Idempotency cache key
		"error": err.Error(), // Error message
	}).Warn("Failed to store idempotent response; releasing key")
	_ = rc.Delete(ctx, cacheKey)
}

// replayPayment answers a request whose Idempotency-Key was seen before
func replayPayment(c *gin.Context, rc cache.Cache, cacheKey, hash string) {
	var prev idempotentResponse
	found, err := rc.Get(c.Request.Context(), cacheKey, &prev)
	switch {
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
	case !found:
		// Expired or released between the two calls; ask the client to retry
		c.JSON(http.StatusConflict, gin.H{"error": "Request in progress"})
	case prev.Hash != hash:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key reused with a different request"})
	case prev.Status == 0:
		c.JSON(http.StatusConflict, gin.H{"error": "Request in progress"})
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
	}
}

// ListPaymentsHandler returns the caller's payments, newest first
func ListPaymentsHandler(payments *service.Payments) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		list, total, err := payments.List(c.Request.Context(), userID, page)
		if err != nil {
			respondError(c, err, "Failed to fetch payments")
			return
		}
		c.JSON(http.StatusOK, paginated("payments", list, page.Number, page.Size, total, page.TotalPages(total)))
	}
}
