package contacts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService issues and validates the four token kinds. Issuance is a
// pure function of the input, the configured secret, and the wall clock;
// persistence of refresh tokens is the caller's job.
type TokenService struct {
	signingKey    []byte
	signingMethod jwt.SigningMethod
	accessTTL     time.Duration
	refreshTTL    time.Duration
	emailTTL      time.Duration
	recoveryTTL   time.Duration
	logger        Logger
}

// Default TTLs, used when the Config supplies zero values.
const (
	DefaultAccessTokenTTL   = 15 * time.Minute
	DefaultRefreshTokenTTL  = 7 * 24 * time.Hour
	DefaultEmailTokenTTL    = 7 * 24 * time.Hour
	DefaultRecoveryTokenTTL = 15 * time.Minute
)

// NewTokenService creates a TokenService from the given configuration.
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	method := jwt.GetSigningMethod(cfg.GetSigningMethod())
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &TokenService{
		signingKey:    []byte(cfg.GetSigningKey()),
		signingMethod: method,
		accessTTL:     durationOrDefault(cfg.GetAccessTokenTTL(), DefaultAccessTokenTTL),
		refreshTTL:    durationOrDefault(cfg.GetRefreshTokenTTL(), DefaultRefreshTokenTTL),
		emailTTL:      durationOrDefault(cfg.GetEmailTokenTTL(), DefaultEmailTokenTTL),
		recoveryTTL:   durationOrDefault(cfg.GetRecoveryTokenTTL(), DefaultRecoveryTokenTTL),
		logger:        logger,
	}
}

func durationOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// AccessToken mints a short lived API token for the given subject. An
// optional ttl overrides the configured default.
func (ts *TokenService) AccessToken(subject string, ttl ...time.Duration) (string, error) {
	return ts.sign(newClaims(subject, ScopeAccess, pickTTL(ts.accessTTL, ttl)))
}

// RefreshToken mints the long lived token the subject can later exchange
// for a new pair.
func (ts *TokenService) RefreshToken(subject string, ttl ...time.Duration) (string, error) {
	return ts.sign(newClaims(subject, ScopeRefresh, pickTTL(ts.refreshTTL, ttl)))
}

// EmailVerificationToken mints the token embedded in the confirm-email
// link.
func (ts *TokenService) EmailVerificationToken(email string, ttl ...time.Duration) (string, error) {
	return ts.sign(newClaims(email, ScopeEmailVerification, pickTTL(ts.emailTTL, ttl)))
}

// PasswordRecoveryToken mints the token embedded in the password recovery
// link. The address travels in the email claim alongside the explicit
// recovery scope.
func (ts *TokenService) PasswordRecoveryToken(email string, ttl ...time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(pickTTL(ts.recoveryTTL, ttl))),
		},
		Scope: ScopePasswordRecovery,
		Email: email,
	}
	return ts.sign(claims)
}

// newClaims includes a unique jti so two tokens minted within the same
// second never collide; rotation depends on the new refresh token differing
// from the one it displaces.
func newClaims(subject string, scope TokenScope, ttl time.Duration) *TokenClaims {
	now := time.Now()
	return &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}
}

func pickTTL(def time.Duration, override []time.Duration) time.Duration {
	if len(override) > 0 && override[0] > 0 {
		return override[0]
	}
	return def
}

// SignClaims signs an arbitrary claim set using the configured key.
func (ts *TokenService) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}
	return ts.sign(claims)
}

func (ts *TokenService) sign(claims *TokenClaims) (string, error) {
	token := jwt.NewWithClaims(ts.signingMethod, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode parses and verifies a raw token, returning its claims. Expiry and
// signature failures stay distinguishable: ErrTokenExpired for a token past
// its exp claim, ErrTokenMalformed for anything forged or structurally
// invalid.
func (ts *TokenService) Decode(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token decode could not recover claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ValidateAccess decodes raw and returns the subject, requiring the access
// scope.
func (ts *TokenService) ValidateAccess(raw string) (string, error) {
	return ts.validateScoped(raw, ScopeAccess)
}

// ValidateRefresh decodes raw and returns the subject, requiring the
// refresh scope.
func (ts *TokenService) ValidateRefresh(raw string) (string, error) {
	return ts.validateScoped(raw, ScopeRefresh)
}

// ValidateEmailVerification decodes raw and returns the subject, requiring
// the email verification scope.
func (ts *TokenService) ValidateEmailVerification(raw string) (string, error) {
	return ts.validateScoped(raw, ScopeEmailVerification)
}

func (ts *TokenService) validateScoped(raw string, scope TokenScope) (string, error) {
	claims, err := ts.Decode(raw)
	if err != nil {
		return "", err
	}

	if claims.Scope != scope {
		return "", ErrWrongScope
	}

	return claims.RegisteredClaims.Subject, nil
}

// ValidatePasswordRecovery decodes raw and returns the recovery address.
// It accepts the explicit recovery scope as well as the legacy scope-less
// shape; every other claim shape fails WrongScope, so a recovery token can
// never pass the access, refresh or verification validators and vice versa.
func (ts *TokenService) ValidatePasswordRecovery(raw string) (string, error) {
	claims, err := ts.Decode(raw)
	if err != nil {
		return "", err
	}

	if !claims.isRecoveryShape() {
		return "", ErrWrongScope
	}

	return claims.Email, nil
}
