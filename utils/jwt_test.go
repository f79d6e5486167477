package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, "staff")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "staff", claims.Role)
	assert.NotEmpty(t, claims.ID)

	other, err := GenerateToken(42, "staff")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := wrongKey.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err = expired.SignedString(JWTSecret)
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = wrongIssuer.SignedString(JWTSecret)
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestBlacklistedTokenFailsValidation(t *testing.T) {
	token, err := GenerateToken(9, "admin")
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.NoError(t, err)

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
	_, err = ValidateToken(token)
	assert.Error(t, err)

	BlacklistToken("stale", time.Now().Add(-time.Second))
	assert.False(t, IsTokenBlacklisted("stale"))
}
