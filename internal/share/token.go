// token.go generates the unguessable public identifiers embedded in shareable
// URLs.
package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the amount of randomness per token. 32 bytes (256 bits) is far
// above the ~122-bit threshold where collisions become cryptographically
// negligible, so issuance does not probe the store for uniqueness; the UNIQUE
// constraint on the token column is the backstop.
const tokenBytes = 32

// GenerateToken returns a fresh URL-safe link token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
