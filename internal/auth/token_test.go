package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	token, err := GenerateToken("2", "agent@bridge.com", "AGENT", "sid-1", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGenerateToken_NoSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := GenerateToken("2", "agent@bridge.com", "AGENT", "sid-1", time.Hour)
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	tokenStr, err := GenerateToken("1", "admin@bridge.com", "ADMIN", "sid-9", time.Hour)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		claims, err := ParseToken(tokenStr)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.UserID)
		assert.Equal(t, "ADMIN", claims.Role)
		assert.Equal(t, "sid-9", claims.SessionID)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := ParseToken("invalid-token-string")
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, err := GenerateToken("1", "admin@bridge.com", "ADMIN", "sid-9", -time.Minute)
		require.NoError(t, err)
		_, err = ParseToken(expired)
		assert.Error(t, err)
	})

	t.Run("MissingSession", func(t *testing.T) {
		noSid, err := GenerateToken("1", "admin@bridge.com", "ADMIN", "", time.Hour)
		require.NoError(t, err)
		_, err = ParseToken(noSid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret1")
		token, _ := GenerateToken("1", "admin@bridge.com", "ADMIN", "sid-9", time.Hour)

		t.Setenv("JWT_SECRET", "secret2")
		_, err := ParseToken(token)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature is invalid")
	})
}

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie_token"})
		// Add header as well to ensure cookie takes precedence
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "cookie_token", token)
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "header_token", token)
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		token := ExtractAccessToken(req)
		assert.Equal(t, "header_token", token)
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		token := ExtractAccessToken(req)
		assert.Empty(t, token)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")

		token := ExtractAccessToken(req)
		assert.Empty(t, token)
	})
}
