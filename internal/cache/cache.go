// Package cache holds the read cache and idempotency reservations used by the
// API. Values are stored as JSON so the redis and in-process backends behave
// the same way.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Cache is the subset of redis behaviour the handlers rely on.
type Cache interface {
	// Get unmarshals the value at key into dest. found is false when the key
	// does not exist.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// WalletKey is the cache key for a user's wallet.
func WalletKey(userID uint) string {
	return "wallet:user:" + strconv.FormatUint(uint64(userID), 10)
}

// TxHistoryPrefix prefixes every cached page of a user's wallet history.
func TxHistoryPrefix(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// IdempotencyKey namespaces a client supplied Idempotency-Key per user.
func IdempotencyKey(userID uint, key string) string {
	return "idem:user:" + strconv.FormatUint(uint64(userID), 10) + ":" + key
}

// AdminPrefix prefixes cached admin dashboard listings.
const AdminPrefix = "admin:"
