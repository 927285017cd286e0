package contacts

import (
	"time"
)

// Session is the request-scoped view of a validated access token. The
// protected-route middleware builds one per authenticated request and
// stores it in the request locals under SessionKey.
type Session interface {
	GetEmail() string
	GetScope() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

var _ Session = &SessionObject{}

type SessionObject struct {
	Email          string     `json:"email,omitempty"`
	Scope          string     `json:"scope,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetScope() string {
	return s.Scope
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// NewSessionFromClaims maps decoded token claims into a session.
func NewSessionFromClaims(claims *TokenClaims) *SessionObject {
	session := &SessionObject{
		Email: claims.SubjectEmail(),
		Scope: string(claims.Scope),
	}

	if issued := claims.Issued(); !issued.IsZero() {
		session.IssuedAt = &issued
	}

	if expires := claims.Expires(); !expires.IsZero() {
		session.ExpirationDate = &expires
	}

	return session
}
