package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	token, exp, err := tm.GenerateToken(domain.Principal{UID: "u1", Email: "a@b.c", Role: domain.RoleDoctor})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{UID: "u1", Email: "a@b.c", Role: domain.RoleDoctor}, claims.Principal())
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	token, _, err := tm.GenerateToken(domain.Principal{UID: "u1", Role: domain.RoleCashier})
	require.NoError(t, err)

	_, err = NewTokenManager("other", 15).ParseToken(token)
	assert.Error(t, err, "wrong secret")

	_, err = tm.ParseToken("not-a-jwt")
	assert.Error(t, err)

	expired := NewTokenManager("secret", 15)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateToken(domain.Principal{UID: "u1", Role: domain.RoleCashier})
	require.NoError(t, err)
	_, err = tm.ParseToken(old)
	assert.Error(t, err, "expired")

	bad, _, err := tm.GenerateToken(domain.Principal{UID: "u1", Role: "janitor"})
	require.NoError(t, err)
	_, err = tm.ParseToken(bad)
	assert.Error(t, err, "unknown role")
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("short", 4)
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong horse"), ErrInvalidCredentials)
	assert.ErrorIs(t, ComparePassword("", "anything"), ErrInvalidCredentials)
}

func TestMemoryRevocationStore(t *testing.T) {
	s := NewMemoryRevocationStore()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti", time.Now().Add(time.Minute)))
	revoked, err = s.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	revoked, err = s.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked, "revocations lapse once the token would have expired")
}
