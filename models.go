package contacts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultAvatarURL is the placeholder avatar assigned to new accounts until
// the owner uploads one.
var DefaultAvatarURL = "https://res.cloudinary.com/demo/image/upload/avatar_default.png"

// Account is the account model. Username and email are unique and immutable
// after creation; RefreshToken holds the single active refresh token for the
// account (empty means no active session) and is the server side revocation
// mechanism.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Confirmed     bool       `bun:"confirmed" json:"confirmed"`
	RefreshToken  string     `bun:"refresh_token,nullzero" json:"-"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// The transitions below are value returning: they never persist anything.
// Callers apply the returned Account through the AccountDirectory, so a
// failed operation leaves no partial state behind.

// ConfirmEmail marks the address verified. The second return reports whether
// anything changed; confirming twice is a no-op.
func (a Account) ConfirmEmail() (Account, bool) {
	if a.Confirmed {
		return a, false
	}
	a.Confirmed = true
	return a, true
}

// BeginSession installs a freshly issued refresh token, displacing whatever
// session was active before.
func (a Account) BeginSession(refreshToken string) Account {
	a.RefreshToken = refreshToken
	return a
}

// EndSession clears the stored refresh token, revoking the active session.
func (a Account) EndSession() Account {
	a.RefreshToken = ""
	return a
}

// WithPasswordHash replaces the password hash. Confirmed and RefreshToken
// are left untouched.
func (a Account) WithPasswordHash(hash string) Account {
	a.PasswordHash = hash
	return a
}

// WithAvatarURL replaces the avatar URL.
func (a Account) WithAvatarURL(url string) Account {
	a.AvatarURL = url
	return a
}

// HasActiveSession reports whether a refresh token is currently stored.
func (a Account) HasActiveSession() bool {
	return a.RefreshToken != ""
}
