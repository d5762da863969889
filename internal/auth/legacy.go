package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LegacyPrefix marks a reversibly encrypted credential.
const LegacyPrefix = "enc:"

var (
	// ErrNoLegacyKey is returned when no key was configured.
	ErrNoLegacyKey = errors.New("legacy credential key not configured")
	// ErrMalformedLegacy is returned for values that cannot be decrypted.
	ErrMalformedLegacy = errors.New("malformed legacy credential")
)

// LegacyCipher reads credentials stored as "enc:" followed by base64 of an
// AES-GCM nonce and ciphertext. A nil *LegacyCipher has no key.
type LegacyCipher struct {
	aead cipher.AEAD
}

// NewLegacyCipher creates a cipher for a 16, 24 or 32 byte AES key. An empty
// key yields a nil cipher.
func NewLegacyCipher(key []byte) (*LegacyCipher, error) {
	if len(key) == 0 {
		return nil, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("legacy cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("legacy cipher: %w", err)
	}
	return &LegacyCipher{aead: aead}, nil
}

// IsLegacy reports whether stored uses the legacy format.
func IsLegacy(stored string) bool {
	return strings.HasPrefix(stored, LegacyPrefix)
}

// Encrypt produces a legacy-format value. Only used to seed fixtures and by
// migration tooling.
func (c *LegacyCipher) Encrypt(plaintext string) (string, error) {
	if c == nil {
		return "", ErrNoLegacyKey
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return LegacyPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns the plaintext of a legacy-format value.
func (c *LegacyCipher) Decrypt(stored string) (string, error) {
	if c == nil {
		return "", ErrNoLegacyKey
	}
	if !IsLegacy(stored) {
		return "", ErrMalformedLegacy
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, LegacyPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedLegacy, err)
	}
	n := c.aead.NonceSize()
	if len(payload) < n+c.aead.Overhead() {
		return "", ErrMalformedLegacy
	}
	plain, err := c.aead.Open(nil, payload[:n], payload[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedLegacy, err)
	}
	return string(plain), nil
}
