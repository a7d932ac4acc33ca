// Package identity issues stable pseudonymous identifiers for browsers and
// cosmetic display aliases for listings.
package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seojun-dev/geumbang/internal/domain"
)

const (
	// CookieName is the persistent cookie the identity token lives in.
	CookieName = "anon_user_id"
	// TokenTTL is the cookie validity window.
	TokenTTL = 365 * 24 * time.Hour
)

// Assigner mints and validates anonymous identity tokens. Tokens are opaque
// UUIDs owned by the client; the server stores no identity records.
type Assigner struct{}

// NewAssigner creates an Assigner.
func NewAssigner() *Assigner {
	return &Assigner{}
}

// Identify returns the caller's identity id. A valid incoming token is
// reused as-is, so repeated calls with the same token always yield the same
// identity; anything else gets a freshly minted token, which the caller
// must persist (minted=true).
func (a *Assigner) Identify(token string) (uid string, minted bool) {
	if _, err := uuid.Parse(token); err == nil {
		return token, false
	}
	return uuid.NewString(), true
}

// Alias produces a display pseudonym for the given side, e.g. "Buyer #A3F0".
// Uniqueness is not enforced; aliases are cosmetic, not access keys.
func (a *Assigner) Alias(side domain.Side) string {
	code := strings.ToUpper(uuid.NewString()[:4])
	if side == domain.SideBuy {
		return "Buyer #" + code
	}
	return "Seller #" + code
}
