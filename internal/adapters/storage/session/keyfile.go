package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const keyLen = 32

// LoadOrCreateKey reads the hex-encoded secretbox key from path, generating
// and writing a fresh one (mode 0600) when the file does not exist.
// POST: Returned key is exactly 32 bytes
func LoadOrCreateKey(path string) (*[keyLen]byte, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return createKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil || len(decoded) != keyLen {
		return nil, fmt.Errorf("key file %s is corrupt", path)
	}
	var key [keyLen]byte
	copy(key[:], decoded)
	return &key, nil
}

func createKey(path string) (*[keyLen]byte, error) {
	var key [keyLen]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key[:])+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return &key, nil
}
