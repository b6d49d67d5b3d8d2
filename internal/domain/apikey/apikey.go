// Package apikey contains the per-user API credential. Only a one-way hash
// (for verification) and a symmetrically encrypted copy (for display) are
// ever stored; the plaintext leaves the process exactly once, at creation.
package apikey

import (
	"fmt"
	"time"

	"github.com/meterly-io/meterly/internal/shared/biztime"
)

// SecretPrefix is the human-recognizable prefix on generated key material.
const SecretPrefix = "pk_"

type APIKey struct {
	id           uint
	userID       string
	hashedKey    string
	encryptedKey string
	createdAt    time.Time
}

// NewAPIKey creates a key record from already-derived hash and ciphertext.
func NewAPIKey(userID, hashedKey, encryptedKey string) (*APIKey, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if hashedKey == "" {
		return nil, fmt.Errorf("hashed key is required")
	}
	if encryptedKey == "" {
		return nil, fmt.Errorf("encrypted key is required")
	}
	return &APIKey{
		userID:       userID,
		hashedKey:    hashedKey,
		encryptedKey: encryptedKey,
		createdAt:    biztime.NowUTC(),
	}, nil
}

// ReconstructAPIKey rebuilds a key record from persisted state.
func ReconstructAPIKey(id uint, userID, hashedKey, encryptedKey string, createdAt time.Time) *APIKey {
	return &APIKey{
		id:           id,
		userID:       userID,
		hashedKey:    hashedKey,
		encryptedKey: encryptedKey,
		createdAt:    createdAt,
	}
}

func (k *APIKey) ID() uint             { return k.id }
func (k *APIKey) UserID() string       { return k.userID }
func (k *APIKey) HashedKey() string    { return k.hashedKey }
func (k *APIKey) EncryptedKey() string { return k.encryptedKey }
func (k *APIKey) CreatedAt() time.Time { return k.createdAt }

// SetID is called by the repository after insert.
func (k *APIKey) SetID(id uint) {
	k.id = id
}
