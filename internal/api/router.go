package api

import (
	"net/http" // HTTP status codes
	"sync"     // One-time validator setup
	"time"     // Cache TTL

	"care_wallet/internal/cache"      // Read cache and idempotency keys
	"care_wallet/internal/middleware" // Auth, metrics and rate limiting
	"care_wallet/internal/schema"     // JSON field names in validation errors
	"care_wallet/internal/service"    // Business operations
	"care_wallet/internal/store"      // Persistence

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/gin-gonic/gin/binding"                        // Gin's validator engine
	"github.com/go-playground/validator/v10"                  // Validator used by gin binding
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics handler
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	Store          store.Store       // Persistence
	Cache          cache.Cache       // Read cache and idempotency reservations
	LLM            service.Completer // Chat-completion client
	JWTSecret      string            // Signing secret for bearer tokens
	CacheTTL       time.Duration     // TTL for cached reads
	ChatRatePerMin int               // Chat requests per client per minute
	TrustedProxies []string          // Proxies whose X-Forwarded-For is honoured
}

var validatorOnce sync.Once

// useJSONFieldNames makes gin's binding errors name fields the way clients send them
// and teaches gin the schema's custom rules
func useJSONFieldNames() {
	validatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			schema.Configure(v)
		}
	})
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) (*gin.Engine, error) {
	useJSONFieldNames()

	// Setup Gin
	r := gin.Default()                    // Gin router instance with logger and recovery
	r.Use(middleware.MetricsMiddleware()) // Request metrics

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	ttl := cacheTTL(d.CacheTTL)
	rate := d.ChatRatePerMin
	if rate <= 0 {
		rate = 20 // Default chat rate
	}

	accounts := service.NewAccounts(d.Store, d.JWTSecret)
	wallets := service.NewWallets(d.Store)
	payments := service.NewPayments(d.Store)
	bookings := service.NewBookings(d.Store)
	chat := service.NewChat(d.Store, d.LLM)
	admin := service.NewAdmin(d.Store)

	auth := middleware.JWTAuthMiddleware(d.JWTSecret)

	// Liveness and metrics
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", RegisterHandler(accounts))          // Registration endpoint
	authGroup.POST("/login", LoginHandler(accounts))                // Login endpoint
	authGroup.POST("/verify-email", VerifyEmailHandler(accounts))   // Email verification endpoint
	authGroup.GET("/me", auth, MeHandler(accounts))                 // Current identity endpoint
	authGroup.PUT("/profile", auth, UpdateProfileHandler(accounts)) // Profile update endpoint

	// Wallet routes (protected by JWT)
	walletGroup := apiGroup.Group("/wallet", auth)
	walletGroup.POST("/setup", SetupWalletHandler(wallets, d.Cache))                      // Account setup endpoint
	walletGroup.GET("", GetWalletHandler(wallets, d.Cache, ttl))                          // Get wallet endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(wallets, d.Cache, ttl)) // Transaction history endpoint
	walletGroup.POST("/deposit", DepositHandler(wallets, d.Cache))                        // Deposit endpoint

	// Payment routes (protected by JWT)
	apiGroup.POST("/payment", auth, CreatePaymentHandler(payments, d.Cache)) // Payment endpoint
	apiGroup.GET("/payment", auth, ListPaymentsHandler(payments))            // Payment history endpoint

	// Health service routes (protected by JWT)
	apiGroup.POST("/health-service", auth, CreateHealthServiceHandler(bookings, d.Cache)) // Booking endpoint
	apiGroup.GET("/health-service", auth, ListHealthServicesHandler(bookings))            // Booking history endpoint

	// Therapist chat (anonymous callers allowed, rate limited)
	chatGroup := apiGroup.Group("/therapist-chat",
		middleware.NewRateLimiter(rate).Middleware(),
		middleware.OptionalJWTMiddleware(d.JWTSecret),
	)
	chatGroup.POST("", ChatHandler(chat, accounts))       // Chat turn endpoint
	chatGroup.GET("", ChatHistoryHandler(chat, accounts)) // Chat history endpoint

	// Admin routes (protected, admin only)
	adminGroup := apiGroup.Group("/admin", auth, middleware.AdminOnlyMiddleware(d.Store))
	adminGroup.GET("/users", ListUsersHandler(d.Store, d.Cache, ttl))                    // List users endpoint
	adminGroup.GET("/payments", ListAllPaymentsHandler(d.Store, d.Cache, ttl))           // List payments endpoint
	adminGroup.PATCH("/payments/:id/status", UpdatePaymentStatusHandler(admin, d.Cache)) // Payment status override endpoint
	adminGroup.GET("/audit-logs", ListAuditLogsHandler(d.Store))                         // Audit log endpoint
	adminGroup.GET("/settings", GetSettingsHandler(d.Store))                             // Read settings endpoint
	adminGroup.PUT("/settings", UpdateSettingsHandler(admin))                            // Update settings endpoint
	adminGroup.GET("/stats", StatsHandler(d.Store, d.Cache, ttl))                        // Dashboard counters endpoint

	return r, nil
}
