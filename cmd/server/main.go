package main

import (
	"context" // context package is needed for Redis operations

	"care_wallet/internal/api"    // Custom package for API handlers
	"care_wallet/internal/cache"  // Read cache and idempotency keys
	"care_wallet/internal/config" // Custom package for configuration
	"care_wallet/internal/db"     // Database connection and seeding
	"care_wallet/internal/llm"    // Chat-completion client
	"care_wallet/internal/store"  // Persistence backends

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// setupLogger picks the formatter and level for the environment
func setupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// openStore returns the configured persistence backend
func openStore(cfg *config.Config) store.Store {
	if cfg.StoreDriver == config.StoreMemory {
		logrus.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore()
	}
	conn, err := db.Open(cfg.DSN(), cfg.IsProd) // Connect to MySQL
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	return store.NewGormStore(conn)
}

// openCache returns redis when configured, otherwise the in-process cache
func openCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		logrus.Warn("REDIS_ADDR not set; using in-process cache")
		return cache.NewMemory()
	}
	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return cache.NewRedis(redisClient)
}

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	s := openStore(cfg)
	// The in-memory store starts empty, so seed the admin here as well
	if cfg.StoreDriver == config.StoreMemory {
		if err := db.SeedAdmin(context.Background(), s, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logrus.Fatalf("failed to seed admin: %v", err)
		}
	}

	r, err := api.NewRouter(api.Deps{
		Store:          s,
		Cache:          openCache(cfg),
		LLM:            llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout),
		JWTSecret:      cfg.JWTSecret,
		CacheTTL:       cfg.CacheTTL,
		ChatRatePerMin: cfg.ChatRatePerMin,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":  cfg.AppPort,     // Listening port
		"store": cfg.StoreDriver, // Persistence backend
	}).Info("Server running") // Log server start

	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
