package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is higher than bcrypt.DefaultCost. Operator logins are
// infrequent and interactive, so they can absorb the extra hashing time.
const hashCost = 14

// HashPassword derives the stored hash for an operator credential.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(h), err
}

// ComparePasswordAndHash checks a login attempt's cleartext password
// against the account's stored hash.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
