package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced on structured auth errors so clients can branch
// without matching on message strings.
const (
	TextCodeNoToken           = "NO_TOKEN"
	TextCodeTokenInvalid      = "INVALID_TOKEN"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodeSigningKeyMissing = "SIGNING_KEY_MISSING"
	TextCodeSigningMethod     = "UNSUPPORTED_SIGNING_METHOD"
)

// ErrNoToken is returned when a request carries no bearer token at all.
var ErrNoToken = errors.New("Access denied. No token provided.", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeNoToken)

// ErrTokenInvalid is returned for malformed or tampered tokens.
var ErrTokenInvalid = errors.New("Invalid token.", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeTokenInvalid)

// ErrTokenExpired is returned for correctly signed tokens past their expiry,
// distinct from ErrTokenInvalid so clients know a fresh login will help.
var ErrTokenExpired = errors.New("Token has expired. Please log in again.", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrSigningKeyMissing means the process has no signing secret configured.
// This is a fatal startup condition, never a per-request one.
var ErrSigningKeyMissing = errors.New("signing key is not configured", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeSigningKeyMissing)

// ErrUnsupportedSigningMethod rejects configurations asking for anything
// other than HMAC signing. Like a missing key, this fails at startup.
var ErrUnsupportedSigningMethod = errors.New("unsupported signing method", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeSigningMethod)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrMismatchedHashAndPassword is returned when a password does not match
// the stored hash. The login boundary surfaces it as "Invalid credentials".
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsTokenInvalidError will check for malformed or tampered tokens
func IsTokenInvalidError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenInvalid {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "signature is invalid") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsInvalidCredentialsError will check for failed credential verification
func IsInvalidCredentialsError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeInvalidCreds {
		return true
	}

	return errors.Is(err, ErrIdentityNotFound)
}
