// Package vault holds wallet identities: an encrypted private key plus
// its derived public address. Plaintext key material exists only inside
// CreateIdentity and SignTransaction and is wiped before returning.
package vault

import (
	"crypto/ed25519"
	"crypto/subtle"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/solfleet/solfleet/internal/crypto"
)

// secretLen is the full Ed25519 private key: 32-byte seed followed by
// the 32-byte public half, the form Solana tooling exports.
const secretLen = 64

// MalformedSecretError indicates secret material that is not a JSON
// byte array or whitespace-separated decimal integers, or that does
// not form a valid keypair.
type MalformedSecretError struct {
	Reason string
}

func (e *MalformedSecretError) Error() string {
	return "malformed secret: " + e.Reason
}

// IsMalformedSecretError checks if error is MalformedSecretError
func IsMalformedSecretError(err error) bool {
	_, ok := err.(*MalformedSecretError)
	return ok
}

// Identity is a wallet: display name, public address, and the private
// key held only in encrypted form.
type Identity struct {
	Name    string
	Address solana.PublicKey

	secret crypto.Encrypted
}

// SetName assigns the display name. Meant to be called once right
// after creation; later batch reports refer to wallets by this name.
func (id *Identity) SetName(name string) {
	id.Name = name
}

// Vault creates identities and signs on their behalf.
type Vault struct {
	cipher *crypto.Cipher
}

// New creates a Vault over the process-wide cipher.
func New(cipher *crypto.Cipher) *Vault {
	return &Vault{cipher: cipher}
}

// CreateIdentity parses secret material, derives the public address,
// and stores the key encrypted. The address is trustworthy because
// derivation and encryption happen here atomically from the same
// plaintext.
func (v *Vault) CreateIdentity(secretText string) (*Identity, error) {
	raw, err := parseSecret(secretText)
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	// The embedded public half must match the seed, otherwise the
	// pasted secret is corrupt and would sign for a different address.
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	defer clear(derived)
	if subtle.ConstantTimeCompare(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) != 1 {
		return nil, &MalformedSecretError{Reason: "public key half does not match seed"}
	}

	key := solana.PrivateKey(raw)
	address := key.PublicKey()

	blob, err := v.cipher.Encrypt(raw)
	if err != nil {
		return nil, err
	}

	return &Identity{Address: address, secret: blob}, nil
}

// SignTransaction decrypts the identity's key just-in-time, signs the
// transaction, and wipes the plaintext before returning.
func (v *Vault) SignTransaction(id *Identity, tx *solana.Transaction) error {
	raw, err := v.cipher.Decrypt(id.secret)
	if err != nil {
		return err
	}
	defer clear(raw)

	key := solana.PrivateKey(raw)
	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(id.Address) {
			return &key
		}
		return nil
	})
	return err
}

// parseSecret accepts a JSON byte array ("[1, 2, ...]") or
// whitespace-separated decimal integers ("1 2 ..."), both naming the
// 64 byte values of the private key.
func parseSecret(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &MalformedSecretError{Reason: "empty input"}
	}

	var values []int
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &values); err != nil {
			return nil, &MalformedSecretError{Reason: "invalid JSON array"}
		}
	} else {
		for _, field := range strings.Fields(text) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, &MalformedSecretError{Reason: "expected decimal integers, got " + strconv.Quote(field)}
			}
			values = append(values, n)
		}
	}

	if len(values) != secretLen {
		return nil, &MalformedSecretError{Reason: "expected " + strconv.Itoa(secretLen) + " byte values, got " + strconv.Itoa(len(values))}
	}

	raw := make([]byte, secretLen)
	for i, n := range values {
		if n < 0 || n > 255 {
			clear(raw)
			return nil, &MalformedSecretError{Reason: "value " + strconv.Itoa(n) + " out of byte range"}
		}
		raw[i] = byte(n)
	}
	return raw, nil
}
