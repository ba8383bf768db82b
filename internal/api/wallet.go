package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache TTLs

	"care_wallet/internal/cache"   // Read cache
	"care_wallet/internal/domain"  // Importing domain models
	"care_wallet/internal/schema"  // Request and response bodies
	"care_wallet/internal/service" // Wallet operations
	"care_wallet/internal/utils"   // Pagination

	"github.com/gin-gonic/gin" // Gin web framework
)

// SetupWalletHandler completes account setup: saves the profile and creates the wallet (one wallet per user)
func SetupWalletHandler(wallets *service.Wallets, rc cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		var req schema.WalletSetupRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		// Create the wallet with zero balance
		wallet, _, err := wallets.Setup(c.Request.Context(), userID, req, c.ClientIP())
		if err != nil {
			respondError(c, err, "Failed to create wallet")
			return
		}
		invalidateWallet(c.Request.Context(), rc, userID) // Invalidate wallet cache
		// Return success response
		c.JSON(http.StatusCreated, schema.WalletResult{Success: true, Wallet: wallet})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(wallets *service.Wallets, rc cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		ctx := c.Request.Context()                   // Context for cache operations
		cacheKey := cache.WalletKey(userID)          // Cache key for wallet
		var cached domain.Wallet                     // Wallet struct to hold data
		found, err := rc.Get(ctx, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": cached, "cached": true})
			return
		}
		// If not in cache, fetch from the store
		wallet, err := wallets.Get(ctx, userID)
		if err != nil {
			respondError(c, err, "Failed to load wallet")
			return
		}
		_ = rc.Set(ctx, cacheKey, wallet, ttl)                          // Cache the wallet
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}

// GetTransactionHistoryHandler returns the wallet history rows for the authenticated user
func GetTransactionHistoryHandler(wallets *service.Wallets, rc cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		// Cache key per page
		cacheKey := cache.TxHistoryPrefix(userID) + "page:" + strconv.Itoa(page.Number) + ":size:" + strconv.Itoa(page.Size)
		ctx := c.Request.Context() // Context for cache operations
		var cached map[string]any
		// Try to get from cache
		found, err := rc.Get(ctx, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}
		txs, total, err := wallets.History(ctx, userID, page) // Fetch paginated rows
		if err != nil {
			respondError(c, err, "Failed to fetch transactions")
			return
		}
		resp := paginated("transactions", txs, page.Number, page.Size, total, page.TotalPages(total))
		_ = rc.Set(ctx, cacheKey, resp, ttl) // Cache the result
		resp["cached"] = false               // Not from cache
		c.JSON(http.StatusOK, resp)          // Return transaction history
	}
}

// DepositHandler adds simulated funds to the user's wallet
func DepositHandler(wallets *service.Wallets, rc cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		var req schema.DepositRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		amount, err := domain.Amount(req.Amount) // Reject sub-cent amounts instead of rounding
		if err != nil {
			respondError(c, err, "Deposit failed")
			return
		}
		// Credit the wallet
		wallet, _, err := wallets.Deposit(c.Request.Context(), userID, amount, c.ClientIP())
		if err != nil {
			respondError(c, err, "Deposit failed")
			return
		}
		invalidateWallet(c.Request.Context(), rc, userID) // Invalidate wallet and history cache
		// Return success response
		c.JSON(http.StatusOK, schema.WalletResult{Success: true, Wallet: wallet})
	}
}
