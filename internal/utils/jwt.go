package utils

import (
	"errors" // Error values
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token purposes
const (
	PurposeAccess      = "access"       // Bearer token for API calls
	PurposeVerifyEmail = "verify_email" // One-off email verification link
)

// ErrWrongPurpose is returned when a valid token is used for something it was not issued for
var ErrWrongPurpose = errors.New("token purpose mismatch")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"` // Custom claim for user ID
	Purpose              string `json:"purpose"` // What the token may be used for
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates an access token for a given user ID
func GenerateJWT(userID uint, secret string) (string, error) {
	return generate(userID, PurposeAccess, 24*time.Hour, secret)
}

// GenerateVerificationToken creates a token embedded in the verification email
func GenerateVerificationToken(userID uint, secret string) (string, error) {
	return generate(userID, PurposeVerifyEmail, 48*time.Hour, secret)
}

func generate(userID uint, purpose string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a token string and checks it was issued for purpose
func ParseJWT(tokenStr, secret, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
