package contacts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenScope names which of the token kinds a decoded token legitimately
// is. Validators reject any token whose scope does not match the kind they
// were asked for, so tokens are never substitutable across kinds.
type TokenScope = string

const (
	// ScopeAccess is the short lived API token.
	ScopeAccess TokenScope = "access_token"
	// ScopeRefresh is the long lived token exchanged for new pairs.
	ScopeRefresh TokenScope = "refresh_token"
	// ScopeEmailVerification authorizes the one-time confirm-email action.
	ScopeEmailVerification TokenScope = "email_token"
	// ScopePasswordRecovery authorizes a one-time password change.
	// Recovery tokens also carry the address under an email claim; older
	// issuers left the scope out entirely, so the recovery validator
	// accepts both shapes.
	ScopePasswordRecovery TokenScope = "password_recovery"
)

// TokenClaims is the claim set shared by all four token kinds.
type TokenClaims struct {
	jwt.RegisteredClaims
	Scope TokenScope `json:"scope,omitempty"`
	Email string     `json:"email,omitempty"`
}

// SubjectEmail returns the address the token identifies: the sub claim for
// access/refresh/verification tokens, the email claim for recovery tokens.
func (c *TokenClaims) SubjectEmail() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}
	return c.Email
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued at time
func (c *TokenClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// isRecoveryShape reports whether the claim set looks like a password
// recovery token: explicit recovery scope, or the legacy shape with no
// scope at all and the address under email.
func (c *TokenClaims) isRecoveryShape() bool {
	if c.Scope == ScopePasswordRecovery && c.Email != "" {
		return true
	}
	return c.Scope == "" && c.Email != ""
}
