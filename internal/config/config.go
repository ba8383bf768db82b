package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Store drivers
const (
	StoreMySQL  = "mysql"  // gorm over MySQL
	StoreMemory = "memory" // in-process store for local runs and tests
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	StoreDriver    string        // mysql or memory
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	JWTSecret      string        // JWT secret key
	RedisAddr      string        // Redis server address, empty for the in-process cache
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	CacheTTL       time.Duration // TTL for cached reads
	IsProd         bool          // Is production environment
	LogLevel       string        // logrus level name
	LLMBaseURL     string        // Chat-completion API base URL
	LLMAPIKey      string        // Chat-completion API key
	LLMModel       string        // Chat-completion model name
	LLMTimeout     time.Duration // Upper bound for one completion call
	ChatRatePerMin int           // Chat requests allowed per client per minute
	AdminEmail     string        // Seeded admin account (migrate only)
	AdminPassword  string        // Seeded admin password (migrate only)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:        envOr("APP_PORT", "8080"),
		StoreDriver:    envOr("STORE_DRIVER", StoreMySQL),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         envOr("DB_HOST", "127.0.0.1"),
		DBPort:         envOr("DB_PORT", "3306"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		CacheTTL:       durationOr("CACHE_TTL", 60*time.Second),
		IsProd:         os.Getenv("IS_PROD") == "true",
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LLMBaseURL:     envOr("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       envOr("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:     durationOr("LLM_TIMEOUT", 30*time.Second),
		ChatRatePerMin: intOr("CHAT_RATE_PER_MIN", 20),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
