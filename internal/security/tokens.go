package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ShareTokenBytes is the entropy of a share token; its hex form is twice as long.
const ShareTokenBytes = 32

// NewShareToken returns a fresh hex encoded share token. Only HashToken of it
// is ever persisted.
func NewShareToken() (string, error) {
	raw := make([]byte, ShareTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashToken returns the lowercase hex SHA-256 digest of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
