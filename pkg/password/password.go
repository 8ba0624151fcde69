// Package password provides one-way password hashing and verification
// backed by bcrypt. Hashing embeds a per-password salt; verification is
// constant-time and never fails loudly on malformed digests.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted bcrypt digest from the plaintext password using the
// default cost.
func Hash(password string) (string, error) {
	return HashWithCost(password, bcrypt.DefaultCost)
}

// HashWithCost derives a salted bcrypt digest with an explicit cost factor.
// Lower costs are useful in tests; production callers should stay at
// bcrypt.DefaultCost or above.
func HashWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored digest.
// Malformed or truncated digests return false rather than an error, so a
// corrupted row can never be mistaken for a match.
func Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
