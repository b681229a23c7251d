package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	raw, err := tokens.Issue(&User{ID: "u-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(raw, "."), 3, "JWT should have 3 parts: header.payload.signature")

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "a@example.com", id.Email)
}

func TestTokens_VerifyRejects(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)
	user := &User{ID: "u-1", Email: "a@example.com"}

	expired := NewTokens(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredRaw, err := expired.Issue(user)
	require.NoError(t, err)

	otherKey, err := NewTokens("another-secret-that-is-long-enough-32", time.Hour).Issue(user)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "u-1", "email": "a@example.com", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	missingClaims, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1", "email": "a@example.com",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"expired", expiredRaw, ErrInvalidToken},
		{"wrong key", otherKey, ErrInvalidToken},
		{"alg none", noneAlg, ErrInvalidToken},
		{"missing identity claims", missingClaims, ErrInvalidToken},
		{"missing expiry", noExpiry, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
