package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret", PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	_, err = ParseJWT(token, "other-secret", PurposeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTPurposeIsEnforced(t *testing.T) {
	token, err := GenerateVerificationToken(7, "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret", PurposeAccess)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := ParseJWT(token, "secret", PurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestMockIdentifiers(t *testing.T) {
	ref := NewMockReference()
	assert.Len(t, ref, 66)
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, ref)
	assert.NotEqual(t, ref, NewMockReference())

	assert.Regexp(t, `^0x[0-9a-f]{40}$`, NewMockAddress())
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		page, size string
		want       Page
	}{
		{"", "", Page{1, 20}},
		{"3", "50", Page{3, 50}},
		{"0", "500", Page{1, 20}},
		{"abc", "-1", Page{1, 20}},
		{"9223372036854775807", "20", Page{MaxPageNumber, 20}},
		{"99999999999999999999", "20", Page{1, 20}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.page, tt.size))
	}

	p := Page{Number: 2, Size: 20}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 3, p.TotalPages(41))
	assert.Positive(t, ParsePage("9223372036854775807", "100").Offset())
	assert.Equal(t, 0, p.TotalPages(0))
}
