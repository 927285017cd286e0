// Package addressbook manages per-account contact records: CRUD, filtered
// search and the upcoming-birthdays window. Every operation is scoped to an
// owner account; a contact is never visible outside the account that
// created it.
package addressbook

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Contact is one address book entry.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:con"`

	ID               uuid.UUID `bun:"id,pk,notnull" json:"id"`
	OwnerID          uuid.UUID `bun:"owner_id,notnull" json:"owner_id"`
	FirstName        string    `bun:"first_name,notnull" json:"first_name"`
	LastName         string    `bun:"last_name" json:"last_name"`
	Email            string    `bun:"email" json:"email"`
	PhoneNumber      string    `bun:"phone_number" json:"phone_number"`
	Birthday         time.Time `bun:"birthday,nullzero" json:"birthday"`
	OtherInformation string    `bun:"other_information" json:"other_information,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Merge returns a copy of c with the non-zero fields of patch applied.
// Zero-valued patch fields leave the existing data untouched, so a partial
// update never blanks a contact.
func (c Contact) Merge(patch Contact) Contact {
	next := c

	if patch.FirstName != "" {
		next.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		next.LastName = patch.LastName
	}
	if patch.Email != "" {
		next.Email = patch.Email
	}
	if patch.PhoneNumber != "" {
		next.PhoneNumber = patch.PhoneNumber
	}
	if !patch.Birthday.IsZero() {
		next.Birthday = patch.Birthday
	}
	if patch.OtherInformation != "" {
		next.OtherInformation = patch.OtherInformation
	}

	return next
}

// BirthdayInWindow reports whether the contact's birthday falls between
// from and from+days, inclusive on both ends, comparing month and day only
// so the birth year is irrelevant. The window may straddle a month
// boundary.
func (c Contact) BirthdayInWindow(from time.Time, days int) bool {
	if c.Birthday.IsZero() {
		return false
	}

	bMonth, bDay := c.Birthday.Month(), c.Birthday.Day()
	until := from.AddDate(0, 0, days)

	if from.Month() == until.Month() {
		return bMonth == from.Month() && bDay >= from.Day() && bDay <= until.Day()
	}

	if bMonth == from.Month() && bDay >= from.Day() {
		return true
	}
	return bMonth == until.Month() && bDay <= until.Day()
}
