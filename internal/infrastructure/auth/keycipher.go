package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// ErrUndecryptable marks ciphertext that cannot be recovered with the current
// passphrase, typically after a secret rotation. Callers degrade to a partial
// response instead of failing the request.
var ErrUndecryptable = errors.New("ciphertext cannot be decrypted")

// scrypt parameters for deriving the AES-256 key from the passphrase.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	scryptSalt   = "salt"
)

// KeyCipher encrypts API keys for at-rest storage so the dashboard can show
// the full key back to its owner. AES-256-CBC with a random IV per message;
// output is hex(iv) + ":" + hex(ciphertext).
type KeyCipher struct {
	key []byte
}

// NewKeyCipher derives the AES key once from the configured passphrase.
func NewKeyCipher(passphrase string) (*KeyCipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase is required")
	}
	key, err := scrypt.Key([]byte(passphrase), []byte(scryptSalt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return &KeyCipher{key: key}, nil
}

// Encrypt seals plaintext under a fresh IV.
func (c *KeyCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	sealed := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(sealed, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed input, a wrong passphrase, or corrupt
// padding all come back as ErrUndecryptable.
func (c *KeyCipher) Decrypt(encoded string) (string, error) {
	parts := strings.SplitN(encoded, ":", 2)
	if len(parts) != 2 {
		return "", ErrUndecryptable
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrUndecryptable
	}
	sealed, err := hex.DecodeString(parts[1])
	if err != nil || len(sealed) == 0 || len(sealed)%aes.BlockSize != 0 {
		return "", ErrUndecryptable
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, sealed)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", ErrUndecryptable
	}
	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
