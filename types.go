package contacts

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options the token and account services need. All values
// are supplied by the caller; the package keeps no ambient configuration.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetEmailTokenTTL() time.Duration
	GetRecoveryTokenTTL() time.Duration
	GetBaseURL() string
}

// Authenticator holds the account lifecycle operations
type Authenticator interface {
	Signup(ctx context.Context, input SignupInput) (Account, error)
	Confirm(ctx context.Context, token string) (Account, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	RequestEmailVerification(ctx context.Context, email string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	RecoverPassword(ctx context.Context, token, newPassword string) error
	CurrentAccount(ctx context.Context, accessToken string) (Account, error)
	SessionFromToken(raw string) (Session, error)
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// SignupInput carries the fields needed to create an account.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONTACTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CONTACTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONTACTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONTACTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
