package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "test"})
}

func TestIssueAndResolveRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueToken(42, 0)
	require.NoError(t, err)

	id, err := m.ResolveToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestDefaultExpiryIsEightDays(t *testing.T) {
	m := newTestManager()
	assert.Equal(t, 8*24*time.Hour, m.Expiry())

	token, err := m.IssueToken(7, 0)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, DefaultTokenTTL, lifetime)
	assert.Equal(t, "7", claims.Subject)
}

func TestExpiredTokenFails(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-10 * 24 * time.Hour) }
	token, err := m.IssueToken(1, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ResolveToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecretFails(t *testing.T) {
	token, err := newTestManager().IssueToken(1, 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another-secret"})
	_, err = other.ResolveToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingSubjectFails(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestManager().ResolveToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNonNumericSubjectFails(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "alice@example.com", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestManager().ResolveToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenFails(t *testing.T) {
	_, err := newTestManager().ResolveToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
