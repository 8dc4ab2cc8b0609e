package guard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/fleetops/driverhub/auth"
	"github.com/fleetops/driverhub/middleware/guard"
)

var testSigningKey = []byte("test-signing-secret")

const testIssuer = "driverhub"

type testIdentity struct {
	id          string
	username    string
	displayName string
	role        string
}

func (t testIdentity) ID() string          { return t.id }
func (t testIdentity) Username() string    { return t.username }
func (t testIdentity) DisplayName() string { return t.displayName }
func (t testIdentity) Role() string        { return t.role }

func newTokenService(t *testing.T) auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testSigningKey, 30, testIssuer, nil)
	assert.NoError(t, err)
	return ts
}

func newGuardedApp(validator auth.TokenValidator) *fiber.App {
	app := fiber.New()
	app.Get("/api/ping", guard.New(guard.Config{
		TokenValidator:  validator,
		ContextEnricher: auth.WithClaimsContext,
	}), func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromFiber(c, "user")
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		if _, ok := auth.GetClaims(c.UserContext()); !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return c.JSON(fiber.Map{
			"uid":  claims.UserID(),
			"role": claims.Role(),
		})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authorization string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	body := map[string]any{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return resp, body
}

func TestGuardAllowsValidToken(t *testing.T) {
	ts := newTokenService(t)
	app := newGuardedApp(ts)

	token, err := ts.Generate(testIdentity{
		id:          "9a164b55-0b9e-4a22-8e3c-5a7d0a4f6f01",
		username:    "dispatcher.one",
		displayName: "Dispatcher One",
		role:        "dispatcher",
	})
	assert.NoError(t, err)

	resp, body := doRequest(t, app, "Bearer "+token)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "9a164b55-0b9e-4a22-8e3c-5a7d0a4f6f01", body["uid"])
	assert.Equal(t, "dispatcher", body["role"])
}

func TestGuardRejectsMissingToken(t *testing.T) {
	app := newGuardedApp(newTokenService(t))

	resp, body := doRequest(t, app, "")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access denied. No token provided.", body["message"])
}

func TestGuardRejectsSchemeOnlyHeader(t *testing.T) {
	app := newGuardedApp(newTokenService(t))

	resp, body := doRequest(t, app, "Bearer")

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access denied. No token provided.", body["message"])
}

func TestGuardRejectsGarbageToken(t *testing.T) {
	app := newGuardedApp(newTokenService(t))

	resp, body := doRequest(t, app, "Token not-a-real-token")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid token.", body["message"])
}

func TestGuardRejectsTamperedToken(t *testing.T) {
	ts := newTokenService(t)
	app := newGuardedApp(ts)

	token, err := ts.Generate(testIdentity{id: "user-1", role: "admin"})
	assert.NoError(t, err)

	// swap the last signature character for one whose data bits differ
	replacement := byte('x')
	switch token[len(token)-1] {
	case 'w', 'x', 'y', 'z':
		replacement = 'Q'
	}
	tampered := token[:len(token)-1] + string(replacement)

	resp, body := doRequest(t, app, "Bearer "+tampered)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid token.", body["message"])
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	ts := newTokenService(t)
	app := newGuardedApp(ts)

	now := time.Now()
	token, err := ts.SignClaims(&auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		UID: "user-1",
	})
	assert.NoError(t, err)

	resp, body := doRequest(t, app, "Bearer "+token)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has expired. Please log in again.", body["message"])
}

func TestGuardDecisionIsRepeatable(t *testing.T) {
	ts := newTokenService(t)
	app := newGuardedApp(ts)

	token, err := ts.Generate(testIdentity{id: "user-1", role: "admin"})
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		resp, body := doRequest(t, app, "Bearer "+token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-1", body["uid"])
	}
}

func TestGuardRejectsUnknownLookupSource(t *testing.T) {
	ts := newTokenService(t)

	app := fiber.New()
	app.Get("/api/ping", guard.New(guard.Config{
		TokenValidator: ts,
		TokenLookup:    "body:token",
	}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	token, err := ts.Generate(testIdentity{id: "user-1"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := map[string]any{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Access denied. No token provided.", body["message"])
}

func TestGuardQueryExtractor(t *testing.T) {
	ts := newTokenService(t)

	app := fiber.New()
	app.Get("/api/ping", guard.New(guard.Config{
		TokenValidator: ts,
		TokenLookup:    "query:auth_token",
	}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	token, err := ts.Generate(testIdentity{id: "user-1"})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/ping?auth_token="+token, nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGuardFilterSkipsValidation(t *testing.T) {
	app := fiber.New()
	app.Get("/health", guard.New(guard.Config{
		TokenValidator: newTokenService(t),
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGuardValidatorFunc(t *testing.T) {
	called := false
	validator := guard.TokenValidatorFunc(func(tokenString string) (auth.AuthClaims, error) {
		called = true
		return nil, auth.ErrTokenInvalid
	})

	app := newGuardedApp(validator)

	resp, body := doRequest(t, app, "Bearer whatever")

	assert.True(t, called)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid token.", body["message"])
}
