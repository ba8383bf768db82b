package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Date filters and cache TTLs

	"care_wallet/internal/cache"   // Admin listing cache
	"care_wallet/internal/domain"  // Importing domain models
	"care_wallet/internal/schema"  // Request bodies
	"care_wallet/internal/service" // Admin operations
	"care_wallet/internal/store"   // Listings and filters
	"care_wallet/internal/utils"   // Pagination

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint           `json:"id"`        // User ID
	Email    string         `json:"email"`     // Login email
	FullName string         `json:"full_name"` // Display name
	Role     string         `json:"role"`      // User role
	Verified bool           `json:"verified"`  // Email verified
	Wallet   *domain.Wallet `json:"wallet"`    // Associated wallet, if set up
}

// serveCached writes the cached listing at key if present
func serveCached(c *gin.Context, rc cache.Cache, key string) bool {
	var cached map[string]any
	found, err := rc.Get(c.Request.Context(), key, &cached)
	// If cached data found, return it
	if err == nil && found {
		cached["cached"] = true // Indicate response is from cache
		c.JSON(http.StatusOK, cached)
		return true
	}
	return false
}

// storeCached caches resp under key and writes it
func storeCached(c *gin.Context, rc cache.Cache, key string, resp gin.H, ttl time.Duration) {
	_ = rc.Set(c.Request.Context(), key, resp, ttl) // Cache the response for future requests
	resp["cached"] = false                          // Indicate response is not from cache
	c.JSON(http.StatusOK, resp)                     // Return the response
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(users store.Users, rc cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		// Create a cache key based on pagination parameters
		cacheKey := cache.AdminPrefix + "users:page=" + strconv.Itoa(page.Number) + ":size=" + strconv.Itoa(page.Size)
		if serveCached(c, rc, cacheKey) {
			return
		}
		list, total, err := users.ListUsers(c.Request.Context(), page) // Users with wallets preloaded
		if err != nil {
			respondError(c, err, "Failed to fetch users")
			return
		}
		// Map users to response format
		resp := make([]UserAdminResponse, len(list))
		for i, u := range list {
			resp[i] = UserAdminResponse{
				ID:       u.ID,               // User ID
				Email:    u.Email,            // Email
				FullName: u.Profile.FullName, // Display name
				Role:     u.Role,             // User role
				Verified: u.IsVerified(),     // Email verified
				Wallet:   u.Wallet,           // Associated wallet
			}
		}
		storeCached(c, rc, cacheKey, paginated("users", resp, page.Number, page.Size, total, page.TotalPages(total)), ttl)
	}
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates
func parseDate(v string, endOfDay bool) (*time.Time, bool) {
	if v == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond) // Include the whole day
	}
	return &t, true
}

// ListAllPaymentsHandler returns all payments, with optional filtering by user, status, or date
func ListAllPaymentsHandler(payments store.Payments, rc cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		filter := store.PaymentFilter{Status: c.Query("status"), Page: page}
		// Filter by user ID
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = uint(id)
		}
		var ok bool
		// Filter by start and end date
		if filter.From, ok = parseDate(c.Query("from"), false); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		if filter.To, ok = parseDate(c.Query("to"), true); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"user_id", "status", "from", "to"} {
			keyParts = append(keyParts, k+"="+c.Query(k)) // Append key-value pair
		}
		keyParts = append(keyParts, "page="+strconv.Itoa(page.Number), "size="+strconv.Itoa(page.Size))
		cacheKey := cache.AdminPrefix + "payments:" + strings.Join(keyParts, ":")
		if serveCached(c, rc, cacheKey) {
			return
		}
		list, total, err := payments.ListPayments(c.Request.Context(), filter) // Fetch filtered payments
		if err != nil {
			respondError(c, err, "Failed to fetch payments")
			return
		}
		storeCached(c, rc, cacheKey, paginated("payments", list, page.Number, page.Size, total, page.TotalPages(total)), ttl)
	}
}

// UpdatePaymentStatusHandler lets an admin override a payment's status
func UpdatePaymentStatusHandler(admin *service.Admin, rc cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Payment ID from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment id"})
			return
		}
		var req schema.PaymentStatusRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		payment, _, err := admin.SetPaymentStatus(c.Request.Context(), adminID, uint(id), req.Status, req.Reason, c.ClientIP())
		if err != nil {
			respondError(c, err, "Failed to update payment")
			return
		}
		_ = rc.DeletePrefix(c.Request.Context(), cache.AdminPrefix) // Invalidate admin listings
		c.JSON(http.StatusOK, schema.PaymentResult{Success: true, Payment: payment})
	}
}

// ListAuditLogsHandler returns audit log rows, optionally filtered by user or action
func ListAuditLogsHandler(records store.Records) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		filter := store.AuditFilter{Action: c.Query("action"), Page: page}
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
				return
			}
			filter.UserID = uint(id)
		}
		logs, total, err := records.ListAuditLogs(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, "Failed to fetch audit logs")
			return
		}
		c.JSON(http.StatusOK, paginated("audit_logs", logs, page.Number, page.Size, total, page.TotalPages(total)))
	}
}

// GetSettingsHandler returns every admin setting with defaults filled in
func GetSettingsHandler(settings store.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := settings.GetSettings(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load settings")
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": values})
	}
}

// UpdateSettingsHandler writes the given keys and returns the full set
func UpdateSettingsHandler(admin *service.Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		var req schema.SettingsRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		values, _, err := admin.UpdateSettings(c.Request.Context(), adminID, req.Settings, c.ClientIP())
		if err != nil {
			respondError(c, err, "Failed to save settings")
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": values})
	}
}

// StatsHandler returns the dashboard counters
func StatsHandler(s store.Store, rc cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cacheKey := cache.AdminPrefix + "stats"
		if serveCached(c, rc, cacheKey) {
			return
		}
		stats, err := s.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load stats")
			return
		}
		storeCached(c, rc, cacheKey, gin.H{"stats": stats}, ttl)
	}
}
