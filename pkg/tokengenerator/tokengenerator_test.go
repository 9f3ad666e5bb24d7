package tokengenerator

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestJwtTokenGenerator_RoundTrip(t *testing.T) {
	generator := NewJwtTokenGenerator(testSecret, "simple-verify", "simple-verify-app")

	tokenStr, expiry, err := generator.GenerateToken("user-123", 15*time.Minute, map[string]interface{}{
		"2fa_verified": true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), expiry, 5*time.Second)

	token, err := generator.ParseToken(tokenStr)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "simple-verify", claims["iss"])

	extra, ok := claims["extra_claims"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, extra["2fa_verified"])
}

func TestJwtTokenGenerator_RejectsWrongSecret(t *testing.T) {
	generator := NewJwtTokenGenerator(testSecret, "simple-verify", "simple-verify-app")
	other := NewJwtTokenGenerator("different-secret", "simple-verify", "simple-verify-app")

	tokenStr, _, err := generator.GenerateToken("user-123", time.Minute, nil)
	require.NoError(t, err)

	_, err = other.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_IssueAndSetAccessToken(t *testing.T) {
	generator := NewJwtTokenGenerator(testSecret, "simple-verify", "simple-verify-app")
	service := NewTokenService(generator, WithAccessTokenExpiry(5*time.Minute))

	w := httptest.NewRecorder()
	tokenStr, err := service.IssueAndSetAccessToken(w, "user-123", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ACCESS_TOKEN_NAME, cookies[0].Name)
	assert.Equal(t, tokenStr, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestTokenService_ClearAccessToken(t *testing.T) {
	generator := NewJwtTokenGenerator(testSecret, "simple-verify", "simple-verify-app")
	service := NewTokenService(generator)

	w := httptest.NewRecorder()
	require.NoError(t, service.ClearAccessToken(w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ACCESS_TOKEN_NAME, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
