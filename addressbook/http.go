package addressbook

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// OwnerResolver resolves the authenticated account for a request. The auth
// middleware provides one; every handler scopes its queries to the
// resolved owner.
type OwnerResolver func(c *fiber.Ctx) (uuid.UUID, error)

// Controller exposes the address book as a JSON API.
type Controller struct {
	Repo    Contacts
	Resolve OwnerResolver

	// Now lets tests pin the birthday window start.
	Now func() time.Time
}

func NewController(repo Contacts, resolve OwnerResolver) *Controller {
	return &Controller{
		Repo:    repo,
		Resolve: resolve,
		Now:     time.Now,
	}
}

// RegisterRoutes mounts the contact endpoints. The fixed paths go first so
// the :id parameter does not shadow them.
func (ct *Controller) RegisterRoutes(app fiber.Router) {
	group := app.Group("/contact")

	group.Get("/search_by", ct.Search)
	group.Get("/birthdays", ct.UpcomingBirthdays)
	group.Get("/", ct.List)
	group.Post("/", ct.Create)
	group.Get("/:id", ct.GetByID)
	group.Patch("/:id", ct.Update)
	group.Delete("/:id", ct.Delete)
}

// ContactPayload is the request body for creating and updating contacts.
type ContactPayload struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	Birthday         string `json:"birthday"`
	OtherInformation string `json:"other_information"`
}

// Validate runs the creation rules.
func (r ContactPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.LastName, validation.Length(0, 32)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 128), is.Email),
		validation.Field(&r.PhoneNumber, validation.Required),
		validation.Field(&r.Birthday, validation.Required, validation.Date("2006-01-02")),
	)
}

// ValidatePartial runs the update rules, where every field is optional.
func (r ContactPayload) ValidatePartial() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 32)),
		validation.Field(&r.LastName, validation.Length(0, 32)),
		validation.Field(&r.Email, validation.Length(6, 128), is.Email),
		validation.Field(&r.Birthday, validation.Date("2006-01-02")),
	)
}

func (r ContactPayload) toContact() (Contact, error) {
	record := Contact{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		PhoneNumber:      r.PhoneNumber,
		OtherInformation: r.OtherInformation,
	}

	if r.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", r.Birthday)
		if err != nil {
			return Contact{}, errors.Wrap(err, errors.CategoryBadInput, "invalid birthday format, expected yyyy-mm-dd").
				WithCode(errors.CodeBadRequest)
		}
		record.Birthday = birthday
	}

	return record, nil
}

func (ct *Controller) List(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	records, err := ct.Repo.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (ct *Controller) GetByID(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrContactNotFound
	}

	record, err := ct.Repo.GetForOwner(c.UserContext(), ownerID, contactID)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	payload := new(ContactPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid contact payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	record, err := payload.toContact()
	if err != nil {
		return err
	}
	record.OwnerID = ownerID

	created, err := ct.Repo.Add(c.UserContext(), &record)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (ct *Controller) Update(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrContactNotFound
	}

	payload := new(ContactPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid contact payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.ValidatePartial(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	patch, err := payload.toContact()
	if err != nil {
		return err
	}

	updated, err := ct.Repo.Modify(c.UserContext(), ownerID, contactID, patch)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (ct *Controller) Delete(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	contactID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrContactNotFound
	}

	if _, err := ct.Repo.Remove(c.UserContext(), ownerID, contactID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Search filters contacts by exact first name, last name or email. An
// empty result is a 404, matching the lookup-by-id behavior.
func (ct *Controller) Search(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	filter := Filter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}

	records, err := ct.Repo.Search(c.UserContext(), ownerID, filter)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return ErrContactNotFound
	}

	return c.JSON(records)
}

func (ct *Controller) UpcomingBirthdays(c *fiber.Ctx) error {
	ownerID, err := ct.Resolve(c)
	if err != nil {
		return err
	}

	records, err := ct.Repo.UpcomingBirthdays(c.UserContext(), ownerID, ct.Now())
	if err != nil {
		return err
	}

	return c.JSON(records)
}
