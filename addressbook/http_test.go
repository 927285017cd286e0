package addressbook_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactio/go-contacts/addressbook"
)

func newTestApp(t *testing.T) (*fiber.App, addressbook.Contacts, uuid.UUID) {
	t.Helper()

	repo, ownerID := setupContactsRepo(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				status := fiber.StatusInternalServerError
				switch richErr.Category {
				case errors.CategoryNotFound:
					status = fiber.StatusNotFound
				case errors.CategoryBadInput, errors.CategoryValidation:
					status = fiber.StatusBadRequest
				}
				return c.Status(status).JSON(fiber.Map{"detail": richErr.Message})
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})

	controller := addressbook.NewController(repo, func(c *fiber.Ctx) (uuid.UUID, error) {
		return ownerID, nil
	})
	controller.RegisterRoutes(app)

	return app, repo, ownerID
}

func TestController_CreateAndFetch(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/contact/",
		strings.NewReader(`{
			"first_name": "Jack",
			"last_name": "Sparrow",
			"email": "jack@pearl.sea",
			"phone_number": "+14155552671",
			"birthday": "1985-06-15"
		}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := addressbook.Contact{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEqual(t, uuid.Nil, created.ID)

	t.Run("fetch by id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/contact/"+created.ID.String(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/contact/"+uuid.NewString(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/contact/not-a-uuid", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("search hit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/contact/search_by?first_name=Jack", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("search miss is a 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/contact/search_by?first_name=Davy", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestController_CreateValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing first name",
			body: `{"email":"jack@pearl.sea","phone_number":"+14155552671","birthday":"1985-06-15"}`,
		},
		{
			name: "bad email",
			body: `{"first_name":"Jack","email":"nope","phone_number":"+14155552671","birthday":"1985-06-15"}`,
		},
		{
			name: "bad birthday format",
			body: `{"first_name":"Jack","email":"jack@pearl.sea","phone_number":"+14155552671","birthday":"15-06-1985"}`,
		},
		{
			name: "bad phone number",
			body: `{"first_name":"Jack","email":"jack@pearl.sea","phone_number":"12","birthday":"1985-06-15"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/contact/", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestController_UpcomingBirthdays(t *testing.T) {
	app, repo, ownerID := newTestApp(t)

	_, err := repo.Add(context.Background(), &addressbook.Contact{
		OwnerID:   ownerID,
		FirstName: "Jack",
		Birthday:  birthday(t, "1985-06-12"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/contact/birthdays", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
