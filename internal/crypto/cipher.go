package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// KeyLen is the required symmetric key length (AES-256).
	KeyLen = 32

	nonceLen = 12
)

// Encrypted is an opaque ciphertext blob: nonce followed by the
// GCM-sealed payload. It is safe to hold in memory indefinitely;
// only Decrypt recovers the plaintext.
type Encrypted []byte

// DecryptionError indicates the ciphertext is malformed or was
// produced under a different key.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return "decryption failed: " + e.Reason
}

// IsDecryptionError checks if error is DecryptionError
func IsDecryptionError(err error) bool {
	_, ok := err.(*DecryptionError)
	return ok
}

// Cipher encrypts and decrypts secret material with a single
// process-wide AES-256-GCM key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a Cipher sealed over the given 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("invalid cipher key length: expected %d bytes, got %d", KeyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
// The caller should zero the plaintext after use.
func (c *Cipher) Encrypt(plaintext []byte) (Encrypted, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, nonceLen+len(plaintext)+c.aead.Overhead())
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, plaintext, nil)
	return Encrypted(out), nil
}

// Decrypt opens a blob produced by Encrypt. Returns DecryptionError
// if the blob is malformed or was sealed under a different key.
// The caller must zero the returned plaintext after use.
func (c *Cipher) Decrypt(blob Encrypted) ([]byte, error) {
	if len(blob) < nonceLen+c.aead.Overhead() {
		return nil, &DecryptionError{Reason: "ciphertext too short"}
	}

	nonce := blob[:nonceLen]
	ciphertext := blob[nonceLen:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &DecryptionError{Reason: "wrong key or corrupt ciphertext"}
	}
	return plaintext, nil
}
