package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeyLen)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	plaintext := []byte("64 bytes of very secret key material, more or less, padded out!!")

	blob, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "secret key material")

	got, err := c.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncrypt_NonceVaries(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	a, err := c.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)
	b, err := c.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two encryptions of the same plaintext must differ")
}

func TestDecrypt_WrongKey(t *testing.T) {
	c1, err := NewCipher(testKey(t))
	require.NoError(t, err)
	c2, err := NewCipher(testKey(t))
	require.NoError(t, err)

	blob, err := c1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = c2.Decrypt(blob)
	require.Error(t, err)
	assert.True(t, IsDecryptionError(err))
}

func TestDecrypt_Malformed(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	for _, blob := range []Encrypted{nil, {}, []byte("short"), make([]byte, nonceLen)} {
		_, err := c.Decrypt(blob)
		require.Error(t, err)
		assert.True(t, IsDecryptionError(err))
	}

	// Flipped bit in an otherwise valid blob
	blob, err := c.Encrypt([]byte("secret"))
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0x01
	_, err = c.Decrypt(blob)
	assert.True(t, IsDecryptionError(err))
}

func TestNewCipher_BadKeyLength(t *testing.T) {
	_, err := NewCipher(make([]byte, 16))
	assert.Error(t, err)
	_, err = NewCipher(nil)
	assert.Error(t, err)
}
