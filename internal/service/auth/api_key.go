package auth

import "golang.org/x/crypto/bcrypt"

// APIKeyVerifier defines the interface for checking a presented API key
// against the configured key hash.
type APIKeyVerifier interface {
	// Compare compares a hashed API key with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedKey, key string) error
}

// BcryptVerifier implements APIKeyVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the APIKeyVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedKey, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
}

// HashAPIKey produces a bcrypt hash of the given key, suitable for the
// auth configuration's key hash setting. Used by the keygen command.
func HashAPIKey(key string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
