package contacts

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/contactio/go-contacts/avatar"
)

// Locals keys the protected-route middleware stores the request session
// and resolved account under.
const (
	SessionKey = "contacts:session"
	AccountKey = "contacts:account"
)

// HTTPErrorHandler maps rich errors to JSON responses. Wire it as the
// fiber app's ErrorHandler so route handlers can return errors unwrapped.
func HTTPErrorHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"detail": fiberErr.Message,
			})
		}
		richErr = errors.Wrap(err, errors.CategoryInternal, "an unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusForCategory(richErr.Category)

	body := fiber.Map{"detail": richErr.Message}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return c.Status(status).JSON(body)
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// AuthController exposes the account lifecycle as a JSON API.
type AuthController struct {
	Debug    bool
	Logger   Logger
	Auther   Authenticator
	Accounts Accounts
	Avatars  avatar.Store
}

type AuthControllerOption func(*AuthController)

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(a *AuthController) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

func WithAvatarStore(store avatar.Store) AuthControllerOption {
	return func(a *AuthController) {
		a.Avatars = store
	}
}

func NewAuthController(auther Authenticator, accounts Accounts, opts ...AuthControllerOption) *AuthController {
	controller := &AuthController{
		Logger:   defLogger{},
		Auther:   auther,
		Accounts: accounts,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(controller)
		}
	}

	return controller
}

// RegisterRoutes mounts the auth and account endpoints on the router.
func (a *AuthController) RegisterRoutes(app fiber.Router) {
	auth := app.Group("/auth")
	auth.Post("/signup", a.Signup)
	auth.Post("/login", a.Login)
	auth.Get("/refresh_token", a.RefreshToken)
	auth.Get("/confirmed_email/:token", a.ConfirmedEmail)
	auth.Post("/request_email", a.RequestEmail)
	auth.Post("/password_recovery", a.PasswordRecoveryRequest)
	auth.Post("/password_recovery/:token", a.PasswordRecoveryExecute)

	users := app.Group("/users", a.ProtectedRoute())
	users.Get("/me", a.Me)
	users.Patch("/avatar", a.UpdateAvatar)
}

// ProtectedRoute validates the bearer token, resolves the account and
// stores both the session view and the account in the request locals.
func (a *AuthController) ProtectedRoute() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return err
		}

		session, err := a.Auther.SessionFromToken(token)
		if err != nil {
			a.Logger.Debug("rejected access token", "error", err)
			return err
		}

		account, err := a.Auther.CurrentAccount(c.UserContext(), token)
		if err != nil {
			a.Logger.Debug("rejected access token", "error", err)
			return err
		}

		c.Locals(SessionKey, session)
		c.Locals(AccountKey, &account)

		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrTokenMalformed
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrTokenMalformed
	}

	return strings.TrimSpace(parts[1]), nil
}

// SessionFromLocals returns the session the protected-route middleware
// built for this request.
func SessionFromLocals(c *fiber.Ctx) (Session, error) {
	session, ok := c.Locals(SessionKey).(Session)
	if !ok || session == nil {
		return nil, ErrTokenMalformed
	}
	return session, nil
}

// AccountFromLocals returns the account the protected-route middleware
// resolved for this request.
func AccountFromLocals(c *fiber.Ctx) (*Account, error) {
	account, ok := c.Locals(AccountKey).(*Account)
	if !ok || account == nil {
		return nil, ErrTokenMalformed
	}
	return account, nil
}

// SignupPayload is the signup request body.
type SignupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(2, 150)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 128), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid signup payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	if a.Debug {
		a.Logger.Debug("signup payload", "payload", print.MaybePrettyJSON(payload))
	}

	account, err := a.Auther.Signup(c.UserContext(), SignupInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":   account,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// LoginPayload is the login request body.
type LoginPayload struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid login payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	pair, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}

// RefreshToken exchanges the bearer refresh token for a new pair.
func (a *AuthController) RefreshToken(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	pair, err := a.Auther.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}

func (a *AuthController) ConfirmedEmail(c *fiber.Ctx) error {
	if _, err := a.Auther.Confirm(c.UserContext(), c.Params("token")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Email confirmed"})
}

// EmailPayload is the body for the request_email and password_recovery
// request endpoints.
type EmailPayload struct {
	Email string `json:"email"`
}

func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) RequestEmail(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	if err := a.Auther.RequestEmailVerification(c.UserContext(), payload.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Check your email for confirmation."})
}

func (a *AuthController) PasswordRecoveryRequest(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	if err := a.Auther.RequestPasswordRecovery(c.UserContext(), payload.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Check your email for recovery instructions."})
}

// PasswordPayload carries the replacement password for recovery.
type PasswordPayload struct {
	Password string `json:"password"`
}

func (r PasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) PasswordRecoveryExecute(c *fiber.Ctx) error {
	payload := new(PasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	if err := a.Auther.RecoverPassword(c.UserContext(), c.Params("token"), payload.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	account, err := AccountFromLocals(c)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// UpdateAvatar stores the uploaded image and persists its URL on the
// account.
func (a *AuthController) UpdateAvatar(c *fiber.Ctx) error {
	if a.Avatars == nil {
		return errors.New("avatar storage is not configured", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}

	account, err := AccountFromLocals(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "missing avatar file").
			WithCode(errors.CodeBadRequest)
	}

	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "could not read avatar file").
			WithCode(errors.CodeBadRequest)
	}
	defer file.Close()

	url, err := a.Avatars.Upload(c.UserContext(), account.ID, header.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store avatar").
			WithCode(errors.CodeInternal)
	}

	next := account.WithAvatarURL(url)
	updated, err := a.Accounts.Save(c.UserContext(), &next)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist avatar").
			WithCode(errors.CodeInternal)
	}

	return c.JSON(updated)
}

// OwnerResolver adapts the middleware locals into the owner lookup the
// address book handlers need.
func OwnerResolver() func(c *fiber.Ctx) (uuid.UUID, error) {
	return func(c *fiber.Ctx) (uuid.UUID, error) {
		account, err := AccountFromLocals(c)
		if err != nil {
			return uuid.Nil, err
		}
		return account.ID, nil
	}
}
