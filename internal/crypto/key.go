package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/term"
)

// scrypt parameters for deriving the cipher key from an operator
// passphrase. Same cost profile as a local wallet: brute force stays
// expensive while startup remains tolerable on commodity hardware.
const (
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = KeyLen
)

// keySalt keeps passphrase-derived keys stable across restarts. The
// salt guards against precomputed tables, not against a captured
// ciphertext + passphrase pair, so a fixed value is acceptable here.
var keySalt = []byte("solfleet.cipher.v1")

// LoadKey resolves the process-wide cipher key, in order of preference:
// the configured base64 key, an interactively entered passphrase, or -
// only when demoMode is set - a fresh ephemeral key. Without any source
// in production mode the process must not start.
func LoadKey(configuredKey string, demoMode bool, log *zap.Logger) ([]byte, error) {
	if configuredKey != "" {
		key, err := base64.StdEncoding.DecodeString(configuredKey)
		if err != nil {
			return nil, fmt.Errorf("CIPHER_KEY is not valid base64: %w", err)
		}
		if len(key) != KeyLen {
			return nil, fmt.Errorf("CIPHER_KEY must decode to %d bytes, got %d", KeyLen, len(key))
		}
		return key, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return promptForKey()
	}

	if demoMode {
		log.Warn("DEMO MODE: no cipher key configured, using an ephemeral random key; " +
			"every secret stored this run becomes UNRECOVERABLE after restart")
		key := make([]byte, KeyLen)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral key: %w", err)
		}
		return key, nil
	}

	return nil, errors.New("no cipher key: set CIPHER_KEY, run interactively to enter a passphrase, or set DEMO_MODE=true")
}

// promptForKey reads a passphrase without echo and derives the key.
func promptForKey() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Enter cipher passphrase: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	defer clear(raw)

	if len(raw) == 0 {
		return nil, errors.New("passphrase cannot be empty")
	}

	key, err := scrypt.Key(raw, keySalt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
