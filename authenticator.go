package contacts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"

	"github.com/contactio/go-contacts/notify"
)

// Auther drives the account lifecycle: signup, email confirmation, login,
// refresh rotation and password recovery. State transitions are computed as
// Account values and persisted through the directory in an explicit second
// step, so a failed operation leaves no partial mutation behind.
type Auther struct {
	directory  AccountDirectory
	tokens     *TokenService
	dispatcher Dispatcher
	baseURL    string
	logger     Logger
}

// NewAuthenticator returns a new Auther backed by the given directory.
func NewAuthenticator(directory AccountDirectory, cfg Config) *Auther {
	return &Auther{
		directory:  directory,
		tokens:     NewTokenService(cfg, defLogger{}),
		dispatcher: notify.Discard,
		baseURL:    cfg.GetBaseURL(),
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithDispatcher sets the email dispatcher used for verification and
// recovery messages.
func (s *Auther) WithDispatcher(d Dispatcher) *Auther {
	if d != nil {
		s.dispatcher = d
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther.
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Signup creates an account in the unconfirmed state and dispatches the
// verification email. Username uniqueness is checked before email, so
// ErrDuplicateUsername wins when both collide.
func (s *Auther) Signup(ctx context.Context, input SignupInput) (Account, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return Account{}, err
	}

	if _, err := s.directory.FindByUsername(ctx, input.Username); err == nil {
		return Account{}, ErrDuplicateUsername
	} else if !errors.IsNotFound(err) {
		return Account{}, errors.Wrap(err, errors.CategoryInternal, "failed to check username availability")
	}

	if _, err := s.directory.FindByEmail(ctx, input.Email); err == nil {
		return Account{}, ErrDuplicateEmail
	} else if !errors.IsNotFound(err) {
		return Account{}, errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}

	account := &Account{
		ID:           accountID(input.Email),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		AvatarURL:    DefaultAvatarURL,
	}

	created, err := s.directory.Insert(ctx, account)
	if err != nil {
		return Account{}, errors.Wrap(err, errors.CategoryConflict, "could not create account")
	}

	s.dispatch(*created, notify.PurposeVerification)

	return *created, nil
}

// Confirm validates an email verification token and marks the account
// confirmed. Confirming an already confirmed account succeeds without a
// state change.
func (s *Auther) Confirm(ctx context.Context, token string) (Account, error) {
	email, err := s.tokens.ValidateEmailVerification(token)
	if err != nil {
		return Account{}, err
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}

	next, changed := account.ConfirmEmail()
	if !changed {
		return account, nil
	}

	updated, err := s.directory.Save(ctx, &next)
	if err != nil {
		return Account{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist email confirmation")
	}

	return *updated, nil
}

// Login verifies the password and issues a fresh access/refresh pair. The
// new refresh token displaces any previously stored one, so logging in
// elsewhere revokes the old session. No state is mutated unless both
// tokens were issued.
func (s *Auther) Login(ctx context.Context, email, password string) (TokenPair, error) {
	account, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
	}

	if !account.Confirmed {
		return TokenPair{}, ErrEmailNotConfirmed
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to verify password")
	}

	pair, err := s.issuePair(account.Email)
	if err != nil {
		return TokenPair{}, err
	}

	next := account.BeginSession(pair.RefreshToken)
	if _, err := s.directory.Save(ctx, &next); err != nil {
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist session")
	}

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// stored token so the presented one is no longer accepted. A token that
// decodes but does not match the stored one is treated as replay: the
// stored token is cleared, forcing a fresh login.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	email, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", "error", err)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	account, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during refresh")
	}

	if account.RefreshToken != refreshToken {
		revoked := account.EndSession()
		if _, err := s.directory.Save(ctx, &revoked); err != nil {
			s.logger.Error("failed to clear refresh token after mismatch", "error", err)
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(account.Email)
	if err != nil {
		return TokenPair{}, err
	}

	next := account.BeginSession(pair.RefreshToken)
	if _, err := s.directory.Save(ctx, &next); err != nil {
		return TokenPair{}, errors.Wrap(err, errors.CategoryInternal, "failed to rotate refresh token")
	}

	return pair, nil
}

// RequestEmailVerification re-sends the confirmation email. Requesting a
// confirmation for an already confirmed account is a no-op.
func (s *Auther) RequestEmailVerification(ctx context.Context, email string) error {
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if account.Confirmed {
		return nil
	}

	s.dispatch(account, notify.PurposeVerification)
	return nil
}

// RequestPasswordRecovery dispatches a recovery email carrying a short
// lived recovery token.
func (s *Auther) RequestPasswordRecovery(ctx context.Context, email string) error {
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	s.dispatch(account, notify.PurposeRecovery)
	return nil
}

// RecoverPassword validates a recovery token and installs the new password.
// Confirmed and the stored refresh token are left untouched.
func (s *Auther) RecoverPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.ValidatePasswordRecovery(token)
	if err != nil {
		s.logger.Debug("recovery token rejected", "error", err)
		return ErrInvalidRecoveryToken
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	next := account.WithPasswordHash(hash)
	if _, err := s.directory.Save(ctx, &next); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist new password")
	}

	return nil
}

// CurrentAccount resolves an access token to its account. This is the
// protected-request path.
func (s *Auther) CurrentAccount(ctx context.Context, accessToken string) (Account, error) {
	email, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return Account{}, err
	}

	return s.findByEmail(ctx, email)
}

// SessionFromToken decodes an access token into its session view without
// touching the directory.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokens.Decode(raw)
	if err != nil {
		s.logger.Debug("session token rejected", "error", err)
		return nil, err
	}

	if claims.Scope != ScopeAccess {
		return nil, ErrWrongScope
	}

	return NewSessionFromClaims(claims), nil
}

func (s *Auther) findByEmail(ctx context.Context, email string) (Account, error) {
	account, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account")
	}
	return *account, nil
}

func (s *Auther) issuePair(subject string) (TokenPair, error) {
	access, err := s.tokens.AccessToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := s.tokens.RefreshToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// dispatch issues the email-action token for the purpose and hands the
// message to the dispatcher on a separate goroutine. Delivery failures are
// logged and swallowed: account state never depends on email
// deliverability.
func (s *Auther) dispatch(account Account, purpose notify.Purpose) {
	var token string
	var err error

	switch purpose {
	case notify.PurposeRecovery:
		token, err = s.tokens.PasswordRecoveryToken(account.Email)
	default:
		token, err = s.tokens.EmailVerificationToken(account.Email)
	}

	if err != nil {
		s.logger.Error("failed to issue notification token", "purpose", string(purpose), "error", err)
		return
	}

	msg := notify.Notification{
		To:       account.Email,
		Username: account.Username,
		BaseURL:  s.baseURL,
		Purpose:  purpose,
		Token:    token,
	}

	go func() {
		if err := s.dispatcher.Send(context.Background(), msg); err != nil {
			s.logger.Error("notification dispatch failed", "to", msg.To, "purpose", string(purpose), "error", err)
		}
	}()
}

// accountID derives a stable account ID from the email so repeated imports
// of the same address produce the same identifier, falling back to a random
// UUID when derivation fails.
func accountID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}
