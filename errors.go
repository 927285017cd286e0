package contacts

import (
	"github.com/goliatone/go-errors"
)

// Sentinel rich errors for the account and token lifecycle. Callers match
// with errors.Is; the HTTP layer maps categories and codes to responses.
var (
	// ErrDuplicateUsername means the username is already taken. Signup
	// checks username before email, so this wins when both collide.
	ErrDuplicateUsername = errors.New("username already taken", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode("DUPLICATE_USERNAME")

	// ErrDuplicateEmail means an account with the email already exists.
	ErrDuplicateEmail = errors.New("account with this email already exists", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode("DUPLICATE_EMAIL")

	// ErrInvalidCredentials covers both unknown account and password
	// mismatch so the two are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_CREDENTIALS")

	// ErrEmailNotConfirmed blocks login until the address is verified.
	ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("EMAIL_NOT_CONFIRMED")

	// ErrTokenExpired is returned when a token is past its exp claim,
	// regardless of signature validity.
	ErrTokenExpired = errors.New("token has expired", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	// ErrTokenMalformed covers forged signatures and structurally invalid
	// tokens.
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_MALFORMED")

	// ErrWrongScope is returned when a structurally valid token is
	// presented to a validator for a different token kind.
	ErrWrongScope = errors.New("invalid scope for token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("WRONG_SCOPE")

	// ErrInvalidRefreshToken covers refresh decode failures and the
	// stored token mismatch that implements revocation.
	ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_REFRESH_TOKEN")

	// ErrInvalidRecoveryToken is the recovery specific failure for an
	// expired, forged or wrong-kind recovery token.
	ErrInvalidRecoveryToken = errors.New("invalid or expired recovery token", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_RECOVERY_TOKEN")

	// ErrAccountNotFound means a token decoded fine but its subject no
	// longer resolves to an account.
	ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound).
				WithTextCode("ACCOUNT_NOT_FOUND")

	// ErrNoEmptyString rejects empty passwords before hashing.
	ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest).
				WithTextCode("EMPTY_VALUE")

	// ErrMismatchedHashAndPassword is the bcrypt mismatch, normalized.
	ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized).
					WithTextCode("PASSWORD_MISMATCH")
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsMalformedError will check for forged or structurally invalid tokens
func IsMalformedError(err error) bool {
	return errors.Is(err, ErrTokenMalformed)
}
