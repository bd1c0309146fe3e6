package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewTokenService("", time.Hour)
		assert.Error(t, err)
	})

	t.Run("zero ttl falls back to default", func(t *testing.T) {
		svc, err := NewTokenService("test-secret", 0)
		require.NoError(t, err)
		assert.Equal(t, DefaultTokenTTL, svc.TTL())
	})
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(42)
	require.NoError(t, err)

	// Move the service clock past the token's expiry.
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("garbage string", func(t *testing.T) {
		_, err := svc.Decode("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := NewTokenService("different-secret", time.Hour)
		require.NoError(t, err)

		token, err := other.Issue(42)
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := svc.Decode("")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestTokenService_TokensDiffer(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	base := time.Now()
	svc.now = func() time.Time { return base }
	first, err := svc.Issue(1)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(time.Second) }
	second, err := svc.Issue(1)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
