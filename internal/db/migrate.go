package db

import (
	"context" // Context for seeding
	"errors"  // Error inspection
	"strings" // Email normalisation
	"time"    // Verification timestamp

	"care_wallet/internal/domain" // Importing domain models
	"care_wallet/internal/store"  // Store used for seeding

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels
)

// Models lists every table owned by the service
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Wallet{},
		&domain.WalletTransaction{},
		&domain.Payment{},
		&domain.HealthService{},
		&domain.HealthToolUsage{},
		&domain.ChatSession{},
		&domain.AuditLog{},
		&domain.EmailNotification{},
		&domain.AdminSetting{},
	}
}

// Open connects to MySQL with unique violations translated to gorm.ErrDuplicatedKey
func Open(dsn string, isProd bool) (*gorm.DB, error) {
	level := logger.Info
	if isProd {
		level = logger.Warn
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.")
	return nil
}

// SeedAdmin creates a verified admin account unless the email is already taken
func SeedAdmin(ctx context.Context, s store.Users, email, password string) error {
	if email == "" || password == "" {
		return nil // Nothing to seed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &domain.User{
		Email:           strings.ToLower(email),
		Password:        string(hash),
		Role:            domain.RoleAdmin,
		EmailVerifiedAt: &now,
		Profile:         domain.Profile{FullName: "Administrator"},
	}
	if err := s.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			logrus.WithField("email", admin.Email).Info("Admin already exists")
			return nil
		}
		return err
	}
	logrus.WithField("email", admin.Email).Info("Admin seeded")
	return nil
}
