package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash using the default work factor
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, 0)
}

// HashPasswordWithCost hashes with an explicit work factor. A cost of zero
// falls back to the package default.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	if cost <= 0 {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password. Malformed hashes read as a failed
// match rather than a distinct error so verification never crashes and
// never leaks why it failed.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
