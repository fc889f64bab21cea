// Package credential carries the operator's bearer token explicitly from the
// HTTP edge down to every backend call. Nothing in the service reads a token
// from ambient state.
package credential

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissing = errors.New("credencial requerida")

// Credential is an opaque bearer token issued by the shop backend.
type Credential struct {
	token string
}

func New(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Credential{}, ErrMissing
	}
	return Credential{token: token}, nil
}

// FromAuthorizationHeader accepts "Bearer <token>" (scheme is case-insensitive).
func FromAuthorizationHeader(header string) (Credential, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Credential{}, ErrMissing
	}
	return New(token)
}

func (c Credential) IsZero() bool { return c.token == "" }

// Authorization is the header value sent to the backend.
func (c Credential) Authorization() string { return "Bearer " + c.token }

// Expiry reads the exp claim without verifying the signature: the terminal
// service does not hold the signing key, it only avoids sending tokens it
// already knows are dead. Opaque (non-JWT) tokens report ok=false.
func (c Credential) Expiry() (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (c Credential) Expired(now time.Time) bool {
	exp, ok := c.Expiry()
	return ok && !now.Before(exp)
}

// String never prints the token.
func (c Credential) String() string {
	if c.IsZero() {
		return "Bearer <none>"
	}
	return "Bearer ****"
}
