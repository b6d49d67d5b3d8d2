package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/meterly-io/meterly/internal/domain/apikey"
)

// secretBytes is the entropy behind each generated key. 32 bytes hex-encoded
// gives a 64-character secret after the prefix.
const secretBytes = 32

// KeyGenerator mints API key material. The plaintext is returned exactly once;
// callers persist only the hash and an encrypted copy.
type KeyGenerator struct{}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

// Generate returns a fresh plaintext key of the form "pk_" + 64 hex chars.
func (g *KeyGenerator) Generate() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return apikey.SecretPrefix + hex.EncodeToString(buf), nil
}

// Hash returns the hex SHA-256 digest used for storage and lookup. The digest
// covers the full key including the prefix.
func (g *KeyGenerator) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
