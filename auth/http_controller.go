package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LoginPayload is the login request body
type LoginPayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Password, validation.Required, validation.Length(1, 100)),
	)
}

// AccountDTO is the public projection of an account returned on login
type AccountDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
}

// NewAccountDTO maps an account record to its public projection
func NewAccountDTO(account *Account) AccountDTO {
	return AccountDTO{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
	}
}

type HTTPControllerRoutes struct {
	Login string
}

type HTTPController struct {
	Logger   Logger
	Auther   Authenticator
	Accounts AccountTracker
	Routes   *HTTPControllerRoutes
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Routes: &HTTPControllerRoutes{
			Login: "/auth/login",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// RegisterAuthRoutes mounts the login route. It is the only route that
// does not sit behind the guard middleware.
func RegisterAuthRoutes(app fiber.Router, opts ...HTTPControllerOption) {
	controller := NewHTTPController(opts...)
	app.Post(controller.Routes.Login, controller.LoginPost)
}

// LoginPost exchanges credentials for a session token. On success the
// response carries the account projection and the signed token.
func (a *HTTPController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid login request payload",
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		if IsInvalidCredentialsError(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		}

		a.Logger.Error("login storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	account, err := a.Accounts.GetByIdentifier(c.UserContext(), payload.Username)
	if err != nil {
		a.Logger.Error("login account lookup error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"user":  NewAccountDTO(account),
		"token": token,
	})
}
