package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FifiSALIOU/correction-sub000/internal/auth"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func mintToken(t *testing.T, secret string, userID uuid.UUID, role string, expiresAt time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenManager_ValidateToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret)

	t.Run("valid token round-trips the claims", func(t *testing.T) {
		userID := uuid.New()
		token := mintToken(t, testSecret, userID, "dispatcher", time.Now().Add(time.Hour))

		claims, err := tm.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "dispatcher", claims.Role)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		token := mintToken(t, "some-other-secret", uuid.New(), "technician", time.Now().Add(time.Hour))

		claims, err := tm.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := mintToken(t, testSecret, uuid.New(), "technician", time.Now().Add(-time.Minute))

		claims, err := tm.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects a non-HMAC signing method", func(t *testing.T) {
		// alg=none tokens must never pass verification.
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{
			UserID: uuid.New(),
			Role:   "dispatcher",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		claims, err := tm.ValidateToken(unsigned)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		claims, err := tm.ValidateToken("not.a.token")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestClaims_IsDispatcher(t *testing.T) {
	assert.True(t, (&auth.Claims{Role: "dispatcher"}).IsDispatcher())
	assert.False(t, (&auth.Claims{Role: "technician"}).IsDispatcher())
	assert.False(t, (&auth.Claims{}).IsDispatcher())
}
