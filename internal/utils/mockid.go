package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewMockReference returns a 0x-prefixed 64 hex character string used as a
// receipt number for payments and bookings. It is random and opaque: nothing
// is signed and nothing is recorded on a ledger.
func NewMockReference() string {
	return "0x" + hex32() + hex32()
}

// NewMockAddress returns a 0x-prefixed 40 hex character placeholder wallet
// address. Like NewMockReference it carries no cryptographic meaning.
func NewMockAddress() string {
	return "0x" + (hex32() + hex32())[:40]
}

// NewSessionID returns a fresh chat session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func hex32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
