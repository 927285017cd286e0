package addressbook

import "github.com/goliatone/go-errors"

// ErrContactNotFound is returned when a contact does not exist or belongs
// to a different account. The two cases are indistinguishable on purpose.
var ErrContactNotFound = errors.New("contact not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("CONTACT_NOT_FOUND")

// ErrInvalidPhoneNumber is returned when a phone number cannot be parsed
// into a valid E.164 number.
var ErrInvalidPhoneNumber = errors.New("invalid phone number", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("INVALID_PHONE_NUMBER")
