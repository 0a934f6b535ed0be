// Package auth - linkpassword.go implements the one-way hashing primitive for
// shareable link passwords. bcrypt is deliberately slow and salted, and its
// comparison is constant-time, so a stored hash leaks nothing about the
// plaintext and cannot be brute-forced cheaply.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the cost factor used when the configuration does not
// override it.
const DefaultBcryptCost = 12

// HashLinkPassword hashes a plaintext link password for storage. The plaintext
// is only ever held transiently; callers must not persist it.
func HashLinkPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash link password: %w", err)
	}
	return string(hash), nil
}

// CheckLinkPassword reports whether a supplied plaintext password matches the
// stored hash.
func CheckLinkPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
