// Package guard implements the request interceptor that gates every
// resource route: it extracts the bearer token, verifies signature and
// expiry, attaches the decoded claims to the request, and short-circuits
// rejected requests with a categorized response before any resource
// logic runs.
package guard

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/fleetops/driverhub/auth"
)

var defaultTokenLookup = "header:" + fiber.HeaderAuthorization

// TokenValidatorFunc adapts a function into an auth.TokenValidator.
type TokenValidatorFunc func(tokenString string) (auth.AuthClaims, error)

// Validate satisfies the auth.TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (auth.AuthClaims, error) {
	if f == nil {
		return nil, auth.ErrTokenInvalid
	}
	return f(tokenString)
}

// ContextEnricher propagates claims to the standard Go context. If
// provided, it is called after successful token validation.
type ContextEnricher func(ctx context.Context, claims auth.AuthClaims) context.Context

type Config struct {
	// Filter skips the guard entirely when it returns true
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   func(*fiber.Ctx, error) error
	// ContextKey is the locals key the decoded claims are stored under
	ContextKey string
	// TokenLookup is a comma separated chain in the form
	// "header:Authorization,query:auth_token,cookie:token"
	TokenLookup string
	// TokenValidator is required for token validation
	TokenValidator  auth.TokenValidator
	ContextEnricher ContextEnricher
}

// New builds the guard middleware. Each invocation is a pure function of
// the request, the configured validator, and wall-clock time; the guard
// holds no per-request state across calls.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("GUARD: middleware configuration: TokenValidator is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	return cfg
}

// DefaultErrorHandler converts guard rejections to their terminal HTTP
// response: 401 for a missing token or an expired one, 400 for anything
// malformed or tampered. Rejections never reach resource handlers.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		rich = errors.Wrap(err, auth.ErrTokenInvalid.Category, auth.ErrTokenInvalid.Message).
			WithCode(auth.ErrTokenInvalid.Code).
			WithTextCode(auth.ErrTokenInvalid.TextCode)
	}

	status := rich.Code
	if status == 0 {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{
		"message": rich.Message,
	})
}

// TokenExtractor pulls a raw token candidate out of a request.
type TokenExtractor func(c *fiber.Ctx) (string, error)

// ExtractRawToken tries extractors in order until one yields a token.
// An empty chain, such as a misspelled lookup source, counts as no token
// rather than an invalid one.
func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		return "", auth.ErrNoToken
	}

	return raw, err
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup)
}

// GetExtractors parses a token lookup chain into extractors.
func GetExtractors(tokenLookup string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	// header:Authorization,query:auth_token,cookie:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1]))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts the token from the
// request header. The header value is split on whitespace and the second
// segment is taken as the raw token; the scheme itself is not enforced,
// so a wrong scheme still surfaces a candidate that will fail signature
// verification downstream.
func tokenFromHeader(header string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		segments := strings.Fields(c.Get(header))
		if len(segments) < 2 {
			return "", auth.ErrNoToken
		}
		return segments[1], nil
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", auth.ErrNoToken
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", auth.ErrNoToken
		}
		return token, nil
	}
}
