package addressbook

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Filter holds the optional search terms. A contact matches when any
// provided term equals the corresponding field, compared case
// insensitively.
type Filter struct {
	FirstName string
	LastName  string
	Email     string
}

// Empty reports whether no term was provided.
func (f Filter) Empty() bool {
	return f.FirstName == "" && f.LastName == "" && f.Email == ""
}

func (f Filter) matches(c *Contact) bool {
	if f.FirstName != "" && strings.EqualFold(c.FirstName, f.FirstName) {
		return true
	}
	if f.LastName != "" && strings.EqualFold(c.LastName, f.LastName) {
		return true
	}
	if f.Email != "" && strings.EqualFold(c.Email, f.Email) {
		return true
	}
	return false
}

// BirthdayWindowDays is how far ahead the upcoming-birthdays lookup
// reaches, inclusive of both endpoints.
const BirthdayWindowDays = 7

// Contacts is the persistence surface for Contact records.
type Contacts interface {
	repository.Repository[*Contact]

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error)
	GetForOwner(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error)
	Add(ctx context.Context, record *Contact) (*Contact, error)
	Modify(ctx context.Context, ownerID, contactID uuid.UUID, patch Contact) (*Contact, error)
	Remove(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error)
	Search(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]*Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]*Contact, error)
}

type contacts struct {
	repository.Repository[*Contact]
	db *bun.DB
}

var (
	_ Contacts                        = (*contacts)(nil)
	_ repository.Repository[*Contact] = (*contacts)(nil)
)

func NewContactsRepository(db *bun.DB) Contacts {
	repo := repository.NewRepository[*Contact](db, repository.ModelHandlers[*Contact]{
		NewRecord: func() *Contact { return &Contact{} },
		GetID: func(c *Contact) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Contact, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &contacts{
		Repository: repo,
		db:         db,
	}
}

func (r *contacts) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Contact, error) {
	var records []*Contact
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("first_name ASC", "last_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *contacts) GetForOwner(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error) {
	record := &Contact{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", contactID).
		Where("?TableAlias.owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *contacts) Add(ctx context.Context, record *Contact) (*Contact, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	normalized, err := NormalizePhone(record.PhoneNumber, "")
	if err != nil {
		return nil, err
	}
	record.PhoneNumber = normalized

	return r.Repository.CreateTx(ctx, r.db, record)
}

// Modify merges the non-zero fields of patch into the stored contact.
func (r *contacts) Modify(ctx context.Context, ownerID, contactID uuid.UUID, patch Contact) (*Contact, error) {
	current, err := r.GetForOwner(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	if patch.PhoneNumber != "" {
		normalized, err := NormalizePhone(patch.PhoneNumber, "")
		if err != nil {
			return nil, err
		}
		patch.PhoneNumber = normalized
	}

	next := current.Merge(patch)
	next.UpdatedAt = time.Now()

	return r.Repository.UpdateTx(ctx, r.db, &next, repository.UpdateByID(next.ID.String()))
}

// Remove deletes the contact and returns the deleted record.
func (r *contacts) Remove(ctx context.Context, ownerID, contactID uuid.UUID) (*Contact, error) {
	record, err := r.GetForOwner(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}

	_, err = r.db.NewDelete().
		Model((*Contact)(nil)).
		Where("?TableAlias.id = ?", record.ID).
		Where("?TableAlias.owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Search fetches the owner's contacts and filters them in memory. Contact
// lists are small per account; keeping the matching in Go sidesteps
// per-dialect collation differences.
func (r *contacts) Search(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]*Contact, error) {
	records, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if filter.Empty() {
		return []*Contact{}, nil
	}

	result := []*Contact{}
	for _, c := range records {
		if filter.matches(c) {
			result = append(result, c)
		}
	}

	return result, nil
}

// UpcomingBirthdays returns contacts whose birthday falls within
// BirthdayWindowDays of from, month and day only.
func (r *contacts) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, from time.Time) ([]*Contact, error) {
	records, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := []*Contact{}
	for _, c := range records {
		if c.BirthdayInWindow(from, BirthdayWindowDays) {
			result = append(result, c)
		}
	}

	return result, nil
}
