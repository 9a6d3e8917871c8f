package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials identify the user to the remote goal and workout endpoints.
// Tokens are issued elsewhere; this package only decides whether a stored
// pair is usable.
type Credentials struct {
	UserID string
	Token  string
}

// Available reports whether both fields are present and the token is not
// known to be expired at now. Opaque tokens that do not parse as JWTs are
// taken at face value. The signature is never checked here.
func (c Credentials) Available(now time.Time) bool {
	if strings.TrimSpace(c.UserID) == "" || strings.TrimSpace(c.Token) == "" {
		return false
	}
	exp, ok := c.ExpiresAt()
	if !ok {
		return true
	}
	return now.Before(exp)
}

// ExpiresAt returns the exp claim of a JWT token.
func (c Credentials) ExpiresAt() (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
