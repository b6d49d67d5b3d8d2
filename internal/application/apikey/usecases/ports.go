package usecases

// KeyGenerator mints key material and derives the storage digest.
type KeyGenerator interface {
	Generate() (string, error)
	Hash(plaintext string) string
}

// KeyCipher seals keys for at-rest storage and recovers them for display.
// Decrypt returns a typed error for ciphertext the current secret cannot
// open; callers treat that as "no key available", not as a failure.
type KeyCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
