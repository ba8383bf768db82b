package main

import (
	"context" // Context for seeding

	"care_wallet/internal/config" // Custom import path (Config)
	"care_wallet/internal/db"     // Custom import path (Database)
	"care_wallet/internal/store"  // Store used for seeding

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	conn, err := db.Open(cfg.DSN(), cfg.IsProd) // Connect to MySQL
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	// Seed the admin account if ADMIN_EMAIL and ADMIN_PASSWORD are set
	if err := db.SeedAdmin(context.Background(), store.NewGormStore(conn), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
}
