package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret-test-secret-test-secret"))
	require.NoError(t, err)
	return s
}

func TestAvailableRequiresBothFields(t *testing.T) {
	now := time.Now()
	assert.False(t, Credentials{}.Available(now))
	assert.False(t, Credentials{UserID: "u"}.Available(now))
	assert.False(t, Credentials{Token: "t"}.Available(now))
	assert.True(t, Credentials{UserID: "u", Token: "opaque"}.Available(now))
}

func TestAvailableHonorsJWTExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	live := Credentials{UserID: "u", Token: signedToken(t, now.Add(time.Hour))}
	assert.True(t, live.Available(now))

	expired := Credentials{UserID: "u", Token: signedToken(t, now.Add(-time.Minute))}
	assert.False(t, expired.Available(now))

	exp, ok := expired.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, now.Add(-time.Minute).Unix(), exp.Unix())
}
